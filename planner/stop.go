package planner

import (
	"context"
	"math"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/planning/frame"
	"go.viam.com/planning/logging"
	"go.viam.com/planning/messages"
	"go.viam.com/planning/trajectory"
)

// StopConfig tunes the stop planner.
type StopConfig struct {
	Deceleration   float64 `json:"deceleration"`
	TimeResolution float64 `json:"time_resolution"`
	Horizon        float64 `json:"horizon"`
}

// DefaultStopConfig returns the default stop planner configuration.
func DefaultStopConfig() StopConfig {
	return StopConfig{Deceleration: 2, TimeResolution: 0.1, Horizon: 8}
}

// Validate ensures all parts of the config are valid.
func (c StopConfig) Validate() error {
	if c.Deceleration <= 0 {
		return errors.New("deceleration must be positive")
	}
	if c.TimeResolution <= 0 || c.Horizon < c.TimeResolution {
		return errors.New("time_resolution must be positive and no longer than horizon")
	}
	return nil
}

// StopPlanner brings the vehicle to a standstill along each candidate at a fixed deceleration.
type StopPlanner struct {
	cfg    StopConfig
	clk    clock.Clock
	logger logging.Logger
}

// Name returns the planner type.
func (p *StopPlanner) Name() string { return StopType }

// Plan plans every drivable candidate of f.
func (p *StopPlanner) Plan(ctx context.Context, start messages.TrajectoryPoint, f *frame.Frame) error {
	for _, info := range f.ReferenceLineInfos {
		if !info.IsDrivable() {
			continue
		}
		began := p.clk.Now()
		line := info.ReferenceLine()
		adcS, adcL := info.AdcSL()
		dt := p.cfg.TimeResolution

		tr := trajectory.Trajectory{start}
		v, s := math.Max(start.V, 0), 0.0
		for k := 1; k <= numSteps(p.cfg.Horizon, dt); k++ {
			t := float64(k) * dt
			next := math.Max(0, v-p.cfg.Deceleration*dt)
			s += (v + next) / 2 * dt
			point := messages.TrajectoryPoint{
				PathPoint:    lanePoint(line, adcS, adcL, s, t, p.cfg.Horizon),
				V:            next,
				A:            (next - v) / dt,
				RelativeTime: start.RelativeTime + t,
			}
			point.PathPoint.S = start.PathPoint.S + s
			tr.AppendPoint(point)
			v = next
		}

		info.SetTrajectory(tr)
		info.SetCost(0)
		info.SetMainDecision(messages.MainDecision{Stop: &messages.StopDecision{Reason: "stop planner", StopS: s}})
		info.AddTaskStats("StopPlanner", float64(p.clk.Since(began).Microseconds())/1000)
		p.logger.CDebugw(ctx, "candidate planned", "reference_line", line.ID, "stop_s", s)
	}
	return nil
}
