package planning

import (
	"github.com/benbjohnson/clock"

	"go.viam.com/planning/frame"
	"go.viam.com/planning/logging"
	"go.viam.com/planning/planner"
	"go.viam.com/planning/referenceline"
	"go.viam.com/planning/traffic"
	"go.viam.com/planning/trajectory"
	"go.viam.com/planning/vehiclestate"
)

// NewDefault returns a controller wired to the default collaborators configured by cfg.
func NewDefault(
	cfg Config,
	inputs *Inputs,
	publisher Publisher,
	clk clock.Clock,
	logger logging.Logger,
) (*Controller, error) {
	if err := cfg.Validate(moduleName); err != nil {
		return nil, err
	}
	rules, err := traffic.NewDecider(cfg.TrafficRules, logger.Sublogger("traffic"))
	if err != nil {
		return nil, err
	}
	optimizer, err := planner.New(cfg.Planner, clk, logger.Sublogger("planner"))
	if err != nil {
		return nil, err
	}
	lines := referenceline.NewProvider(cfg.ReferenceLine, clk, logger.Sublogger("reference_line"))
	deps := Collaborators{
		Estimator:      vehiclestate.NewEstimator(cfg.UseNavigationMode, logger.Sublogger("vehicle_state")),
		Continuity:     trajectory.NewStitcher(cfg.Stitching, logger.Sublogger("stitcher")),
		Frames:         frame.NewBuilder(cfg.Frame, lines, logger.Sublogger("frame")),
		Rules:          rules,
		Optimizer:      optimizer,
		ReferenceLines: lines,
	}
	return NewController(cfg, inputs, publisher, deps, clk, logger)
}
