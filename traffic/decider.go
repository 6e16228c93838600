// Package traffic evaluates traffic rules against the candidates of a planning frame.
package traffic

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/planning/frame"
	"go.viam.com/planning/logging"
)

// Rule names.
const (
	BacksideObstacle   = "backside_obstacle"
	ObstacleClassifier = "obstacle_classifier"
	BlockedStart       = "blocked_start"
	Destination        = "destination"
	ReferenceLineEnd   = "reference_line_end"
)

// Config selects and tunes the rules. Rules run in the listed order.
type Config struct {
	Rules []string `json:"rules"`
	// obstacles whose heading differs from the lane by more than this, in degrees, are yielded to.
	CrossingHeadingDeg float64 `json:"crossing_heading_deg"`
	// candidates with less road ahead of the vehicle than this, in meters, are not drivable.
	MinReferenceLineLength float64 `json:"min_reference_line_length"`
	// time window at the start of a boundary, in seconds, in which it can block the start point.
	BlockedStartWindowSec float64 `json:"blocked_start_window_sec"`
	// a pull over starts once the end of a candidate is closer than this, in meters.
	DestinationPullOverDistance float64 `json:"destination_pull_over_distance"`
}

// DefaultConfig runs every rule.
func DefaultConfig() Config {
	return Config{
		Rules:                       []string{BacksideObstacle, ObstacleClassifier, BlockedStart, Destination, ReferenceLineEnd},
		CrossingHeadingDeg:          45,
		MinReferenceLineLength:      5,
		BlockedStartWindowSec:       0.1,
		DestinationPullOverDistance: 20,
	}
}

// Rule is one traffic rule. A rule may replace the boundaries of a candidate, mark it as not
// drivable or update the planning status of the frame.
type Rule interface {
	Name() string
	Apply(ctx context.Context, f *frame.Frame, candidate *frame.ReferenceLineInfo) error
}

// Decider applies the configured rules to a candidate.
type Decider struct {
	rules  []Rule
	logger logging.Logger
}

// NewDecider builds the rules named in cfg.
func NewDecider(cfg Config, logger logging.Logger) (*Decider, error) {
	d := &Decider{logger: logger}
	for _, name := range cfg.Rules {
		var rule Rule
		switch name {
		case BacksideObstacle:
			rule = &backsideObstacle{}
		case ObstacleClassifier:
			rule = newObstacleClassifier(cfg.CrossingHeadingDeg)
		case BlockedStart:
			rule = &blockedStart{window: cfg.BlockedStartWindowSec}
		case Destination:
			rule = &destination{distance: cfg.DestinationPullOverDistance, logger: d.logger}
		case ReferenceLineEnd:
			rule = &referenceLineEnd{minLength: cfg.MinReferenceLineLength}
		default:
			return nil, errors.Errorf("unknown traffic rule %q", name)
		}
		d.rules = append(d.rules, rule)
	}
	return d, nil
}

// Evaluate runs every rule on candidate in order and stops at the first failure.
func (d *Decider) Evaluate(ctx context.Context, f *frame.Frame, candidate *frame.ReferenceLineInfo) error {
	for _, rule := range d.rules {
		if err := rule.Apply(ctx, f, candidate); err != nil {
			return errors.Wrapf(err, "traffic rule %s", rule.Name())
		}
		if !candidate.IsDrivable() {
			d.logger.CDebugw(ctx, "candidate not drivable",
				"reference_line", candidate.ReferenceLine().ID, "rule", rule.Name())
			return nil
		}
	}
	return nil
}
