package frame

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"go.viam.com/planning/logging"
	"go.viam.com/planning/messages"
	"go.viam.com/planning/referenceline"
	"go.viam.com/planning/stboundary"
	"go.viam.com/planning/vehiclestate"
)

const (
	// obstacles without a predicted trajectory are extrapolated at this step.
	constantVelocityStepSec = 0.5
	// predicted samples closer in time than this are merged.
	minSampleGapSec = 1e-3
)

// BuilderConfig configures frame construction.
type BuilderConfig struct {
	SHighLimit         float64 `json:"st_boundary_s_high_limit"`
	PlanningHorizonSec float64 `json:"planning_horizon_sec"`
}

// DefaultBuilderConfig returns the default frame configuration.
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{SHighLimit: stboundary.DefaultSHighLimit, PlanningHorizonSec: 10}
}

// LineSource provides the latest reference lines.
type LineSource interface {
	ReferenceLines() []*referenceline.ReferenceLine
}

// Builder creates the frame of each cycle: one candidate per reference line, each carrying the st
// boundaries of the obstacles predicted to enter its lane.
type Builder struct {
	cfg    BuilderConfig
	lines  LineSource
	logger logging.Logger
}

// NewBuilder returns a frame builder reading lines from the given source.
func NewBuilder(cfg BuilderConfig, lines LineSource, logger logging.Logger) *Builder {
	return &Builder{cfg: cfg, lines: lines, logger: logger}
}

// Build returns the frame of a cycle. The frame is returned even when construction fails so that
// it can be archived.
func (b *Builder) Build(
	ctx context.Context,
	seq uint32,
	start messages.TrajectoryPoint,
	startTime float64,
	state vehiclestate.State,
	prediction *messages.PredictionObstacles,
) (*Frame, error) {
	f := &Frame{
		SequenceNum:  seq,
		StartPoint:   start,
		StartTime:    startTime,
		VehicleState: state,
	}
	timeOffset := 0.0
	if prediction != nil {
		f.Obstacles = append([]messages.PredictionObstacle(nil), prediction.Obstacles...)
		if prediction.Header.TimestampSec > 0 {
			timeOffset = prediction.Header.TimestampSec - startTime
		}
	}

	lines := b.lines.ReferenceLines()
	if len(lines) == 0 {
		return f, errors.New("no reference line available")
	}

	for _, line := range lines {
		info := NewReferenceLineInfo(line, start)
		for _, obstacle := range f.Obstacles {
			boundary, err := b.obstacleBoundary(line, info.adcS, obstacle, timeOffset)
			if err != nil {
				return f, errors.Wrapf(err, "obstacle %q on reference line %q", obstacle.ID, line.ID)
			}
			if boundary != nil {
				info.AddBoundary(boundary)
			}
		}
		f.ReferenceLineInfos = append(f.ReferenceLineInfos, info)
	}
	b.logger.CDebugw(ctx, "frame built",
		"sequence_num", seq, "candidates", len(f.ReferenceLineInfos), "obstacles", len(f.Obstacles))
	return f, nil
}

// obstacleBoundary returns the st boundary of an obstacle on line, or nil when fewer than two of
// its samples within the planning horizon overlap the lane.
func (b *Builder) obstacleBoundary(
	line *referenceline.ReferenceLine,
	adcS float64,
	obstacle messages.PredictionObstacle,
	timeOffset float64,
) (*stboundary.StBoundary, error) {
	halfCorridor := (line.LaneWidth + obstacle.Width) / 2
	var pairs []stboundary.PointPair
	for _, sample := range b.samples(obstacle, timeOffset) {
		if sample.RelativeTime < 0 || sample.RelativeTime > b.cfg.PlanningHorizonSec {
			continue
		}
		if n := len(pairs); n > 0 && sample.RelativeTime <= pairs[n-1].Lower.T+minSampleGapSec {
			continue
		}
		s, l := line.XYToSL(sample.X, sample.Y)
		if math.Abs(l) > halfCorridor {
			continue
		}
		lower := s - adcS - obstacle.Length/2
		pairs = append(pairs, stboundary.NewPointPair(sample.RelativeTime, lower, lower+obstacle.Length))
	}
	if len(pairs) < 2 {
		return nil, nil
	}
	return stboundary.New(pairs,
		stboundary.WithID(obstacle.ID),
		stboundary.WithCharacteristicLength(obstacle.Length),
		stboundary.WithSHighLimit(b.cfg.SHighLimit),
	)
}

// samples returns the obstacle positions over time, with times relative to the cycle start.
func (b *Builder) samples(obstacle messages.PredictionObstacle, timeOffset float64) []messages.PredictedPoint {
	if !obstacle.IsStatic && len(obstacle.Trajectory) > 0 {
		out := make([]messages.PredictedPoint, 0, len(obstacle.Trajectory))
		for _, p := range obstacle.Trajectory {
			p.RelativeTime += timeOffset
			out = append(out, p)
		}
		return out
	}

	speed := obstacle.Speed
	if obstacle.IsStatic {
		speed = 0
	}
	steps := int(math.Ceil(b.cfg.PlanningHorizonSec / constantVelocityStepSec))
	out := make([]messages.PredictedPoint, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := math.Min(float64(i)*constantVelocityStepSec, b.cfg.PlanningHorizonSec)
		out = append(out, messages.PredictedPoint{
			X:            obstacle.X + speed*t*math.Cos(obstacle.Heading),
			Y:            obstacle.Y + speed*t*math.Sin(obstacle.Heading),
			Heading:      obstacle.Heading,
			V:            speed,
			RelativeTime: t,
		})
	}
	return out
}
