package planner

import (
	"context"
	"math"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/planning/frame"
	"go.viam.com/planning/logging"
	"go.viam.com/planning/messages"
	"go.viam.com/planning/stboundary"
	"go.viam.com/planning/trajectory"
	"go.viam.com/planning/utils"
)

const (
	// closer than this to the allowed s the vehicle holds still rather than creeping forward.
	standstillDistance = 0.5
	// below this final speed the plan is reported as a stop.
	stoppedSpeed = 1e-3
)

// SpeedConfig tunes the speed planner.
type SpeedConfig struct {
	CruiseSpeed       float64 `json:"cruise_speed"`
	MaxAcceleration   float64 `json:"max_acceleration"`
	MaxDeceleration   float64 `json:"max_deceleration"`
	FollowDistance    float64 `json:"follow_distance"`
	TimeResolution    float64 `json:"time_resolution"`
	Horizon           float64 `json:"horizon"`
	LaneChangePenalty float64 `json:"lane_change_penalty"`
}

// DefaultSpeedConfig returns the default speed planner configuration.
func DefaultSpeedConfig() SpeedConfig {
	return SpeedConfig{
		CruiseSpeed:       10,
		MaxAcceleration:   2,
		MaxDeceleration:   4,
		FollowDistance:    5,
		TimeResolution:    0.1,
		Horizon:           8,
		LaneChangePenalty: 10,
	}
}

// Validate ensures all parts of the config are valid.
func (c SpeedConfig) Validate() error {
	switch {
	case c.CruiseSpeed < 0:
		return errors.New("cruise_speed must not be negative")
	case c.MaxAcceleration <= 0 || c.MaxDeceleration <= 0:
		return errors.New("max_acceleration and max_deceleration must be positive")
	case c.TimeResolution <= 0 || c.Horizon < c.TimeResolution:
		return errors.New("time_resolution must be positive and no longer than horizon")
	}
	return nil
}

// SpeedPlanner follows each candidate's reference line, accelerating toward the cruise speed while
// staying FollowDistance behind every obstacle the vehicle must not pass.
type SpeedPlanner struct {
	cfg    SpeedConfig
	clk    clock.Clock
	logger logging.Logger
}

// Name returns the planner type.
func (p *SpeedPlanner) Name() string { return SpeedType }

// Plan plans every drivable candidate of f. Candidates are planned concurrently; each goroutine
// only writes to its own candidate.
func (p *SpeedPlanner) Plan(ctx context.Context, start messages.TrajectoryPoint, f *frame.Frame) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, info := range f.ReferenceLineInfos {
		if !info.IsDrivable() {
			continue
		}
		g.Go(func() error {
			began := p.clk.Now()
			if err := p.planCandidate(start, info); err != nil {
				return errors.Wrapf(err, "reference line %q", info.ReferenceLine().ID)
			}
			info.AddTaskStats("SpeedPlanner", float64(p.clk.Since(began).Microseconds())/1000)
			p.logger.CDebugw(ctx, "candidate planned", "reference_line", info.ReferenceLine().ID, "cost", info.Cost())
			return nil
		})
	}
	return g.Wait()
}

func (p *SpeedPlanner) planCandidate(start messages.TrajectoryPoint, info *frame.ReferenceLineInfo) error {
	cfg := p.cfg
	line := info.ReferenceLine()
	adcS, adcL := info.AdcSL()
	steps := numSteps(cfg.Horizon, cfg.TimeResolution)
	dt := cfg.TimeResolution

	tr := make(trajectory.Trajectory, 0, steps+1)
	tr.AppendPoint(start)
	deficits := make([]float64, 0, steps)
	v := math.Max(start.V, 0)
	s := 0.0
	for k := 1; k <= steps; k++ {
		t := float64(k) * dt
		a := utils.Clamp((cfg.CruiseSpeed-v)/dt, -cfg.MaxDeceleration, cfg.MaxAcceleration)
		allowed := p.sLimit(info.Boundaries(), start.RelativeTime+t) - cfg.FollowDistance - s
		if allowed <= standstillDistance {
			a = -cfg.MaxDeceleration
		} else if brake := v * v / (2 * allowed); brake >= cfg.MaxDeceleration/2 {
			a = math.Max(math.Min(a, -brake), -cfg.MaxDeceleration)
		}

		next := math.Max(0, v+a*dt)
		s += (v + next) / 2 * dt
		point := messages.TrajectoryPoint{
			PathPoint:    lanePoint(line, adcS, adcL, s, t, cfg.Horizon),
			V:            next,
			A:            (next - v) / dt,
			RelativeTime: start.RelativeTime + t,
		}
		point.PathPoint.S = start.PathPoint.S + s
		tr.AppendPoint(point)
		deficits = append(deficits, cfg.CruiseSpeed-next)
		v = next
	}

	cost := floats.Dot(deficits, deficits) * dt
	if info.IsChangeLanePath() {
		cost += cfg.LaneChangePenalty
	}
	info.SetTrajectory(tr)
	info.SetCost(cost)
	if v < stoppedSpeed {
		info.SetMainDecision(messages.MainDecision{Stop: &messages.StopDecision{Reason: "blocked by obstacle", StopS: s}})
	} else {
		info.SetMainDecision(messages.MainDecision{Cruise: &messages.Cruise{LaneIDs: info.TargetLaneIDs()}})
	}
	return nil
}

// sLimit is the furthest s the vehicle may reach at cycle time t given the obstacles it must stay
// behind. Boundaries share the frame's time base, where zero is the cycle start.
func (p *SpeedPlanner) sLimit(boundaries []*stboundary.StBoundary, t float64) float64 {
	limit := math.Inf(1)
	for _, b := range boundaries {
		switch b.Type() {
		case stboundary.Stop, stboundary.Follow, stboundary.Yield:
		default:
			continue
		}
		r, err := b.UnblockedSRange(t)
		if err != nil {
			p.logger.Warnw("ignoring boundary", "id", b.ID(), "error", err)
			continue
		}
		limit = math.Min(limit, r.Hi)
	}
	return limit
}
