// Package planner contains the trajectory optimizers. A configuration selects one of them at
// startup; it then plans every drivable candidate of each frame.
package planner

import (
	"context"
	"math"

	"github.com/benbjohnson/clock"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"go.viam.com/planning/frame"
	"go.viam.com/planning/logging"
	"go.viam.com/planning/messages"
	"go.viam.com/planning/referenceline"
)

// Planner types.
const (
	SpeedType = "speed"
	StopType  = "stop"
)

// Planner fills the trajectory and cost of every drivable candidate of a frame. Each trajectory
// begins exactly at the start point.
type Planner interface {
	Name() string
	Plan(ctx context.Context, start messages.TrajectoryPoint, f *frame.Frame) error
}

// Config selects a planner and carries its attributes.
type Config struct {
	Type       string                 `json:"type"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// New returns the planner named by cfg.Type configured from its attributes.
func New(cfg Config, clk clock.Clock, logger logging.Logger) (Planner, error) {
	logger = logger.Sublogger(cfg.Type)
	switch cfg.Type {
	case SpeedType:
		conf := DefaultSpeedConfig()
		if err := decodeAttributes(cfg.Attributes, &conf); err != nil {
			return nil, err
		}
		if err := conf.Validate(); err != nil {
			return nil, err
		}
		return &SpeedPlanner{cfg: conf, clk: clk, logger: logger}, nil
	case StopType:
		conf := DefaultStopConfig()
		if err := decodeAttributes(cfg.Attributes, &conf); err != nil {
			return nil, err
		}
		if err := conf.Validate(); err != nil {
			return nil, err
		}
		return &StopPlanner{cfg: conf, clk: clk, logger: logger}, nil
	default:
		return nil, errors.Errorf("unknown planner type %q", cfg.Type)
	}
}

func decodeAttributes(attributes map[string]interface{}, into interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: into})
	if err != nil {
		return err
	}
	return errors.Wrap(decoder.Decode(attributes), "invalid planner attributes")
}

// lanePoint returns the pose at arc length s past the start projection. The lateral offset of the
// start decays linearly to the lane center over the horizon.
func lanePoint(line *referenceline.ReferenceLine, adcS, adcL, s, t, horizon float64) messages.PathPoint {
	ref := line.Interpolate(adcS + s)
	lat := adcL * math.Max(0, 1-t/horizon)
	return messages.PathPoint{
		X:      ref.X - math.Sin(ref.Heading)*lat,
		Y:      ref.Y + math.Cos(ref.Heading)*lat,
		Theta:  ref.Heading,
		Kappa:  ref.Kappa,
		DKappa: ref.DKappa,
	}
}

func numSteps(horizon, resolution float64) int {
	return int(math.Round(horizon / resolution))
}
