// Package sim closes the planning loop without a vehicle: it feeds a scenario's route and
// obstacles into the planning inputs and drives a point vehicle along every published trajectory.
package sim

import (
	"encoding/json"
	"math"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/planning/messages"
)

// Pose is the initial state of the simulated vehicle.
type Pose struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
	Speed   float64 `json:"speed"`
}

// Obstacle moves at constant velocity along its heading. A zero speed makes it static.
type Obstacle struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
	Speed   float64 `json:"speed"`
	Length  float64 `json:"length"`
	Width   float64 `json:"width"`
}

// Scenario is a route, the starting pose and the obstacles around it.
type Scenario struct {
	Route     []messages.RoadSegment `json:"route"`
	Start     Pose                   `json:"start"`
	Obstacles []Obstacle             `json:"obstacles,omitempty"`
	// horizon and step of the predicted trajectory attached to each moving obstacle.
	PredictionHorizonSec float64 `json:"prediction_horizon_sec"`
	PredictionStepSec    float64 `json:"prediction_step_sec"`
}

// LoadScenario reads a JSON scenario file.
func LoadScenario(path string) (Scenario, error) {
	scn := Scenario{PredictionHorizonSec: 8, PredictionStepSec: 0.5}
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, errors.Wrap(err, "cannot read scenario")
	}
	if err := json.Unmarshal(data, &scn); err != nil {
		return Scenario{}, errors.Wrapf(err, "cannot parse scenario %q", path)
	}
	if err := scn.Validate(); err != nil {
		return Scenario{}, errors.Wrapf(err, "invalid scenario %q", path)
	}
	return scn, nil
}

// Validate checks that the scenario routes somewhere and every obstacle has a footprint.
func (scn *Scenario) Validate() error {
	if scn.Routing(0).Empty() {
		return errors.New("route has no waypoints")
	}
	if scn.PredictionHorizonSec < 0 || scn.PredictionStepSec <= 0 {
		return errors.New("prediction horizon must not be negative and its step must be positive")
	}
	var errs error
	seen := make(map[string]bool, len(scn.Obstacles))
	for _, o := range scn.Obstacles {
		if o.ID == "" {
			errs = multierr.Append(errs, errors.New("obstacle without id"))
			continue
		}
		if seen[o.ID] {
			errs = multierr.Append(errs, errors.Errorf("duplicate obstacle %q", o.ID))
		}
		seen[o.ID] = true
		if o.Length <= 0 || o.Width <= 0 {
			errs = multierr.Append(errs, errors.Errorf("obstacle %q has no footprint", o.ID))
		}
	}
	return errs
}

// Routing returns the route as a routing response stamped at ts.
func (scn *Scenario) Routing(ts float64) *messages.RoutingResponse {
	return &messages.RoutingResponse{
		Header:       messages.Header{TimestampSec: ts, SequenceNum: 1, ModuleName: "sim"},
		RoadSegments: scn.Route,
	}
}

// Prediction returns every obstacle elapsed seconds after the scenario start, stamped at ts.
func (scn *Scenario) Prediction(ts, elapsed float64, seq uint32) *messages.PredictionObstacles {
	out := &messages.PredictionObstacles{
		Header:    messages.Header{TimestampSec: ts, SequenceNum: seq, ModuleName: "sim"},
		Obstacles: make([]messages.PredictionObstacle, 0, len(scn.Obstacles)),
	}
	for _, o := range scn.Obstacles {
		x, y := o.positionAt(elapsed)
		obs := messages.PredictionObstacle{
			ID:       o.ID,
			X:        x,
			Y:        y,
			Heading:  o.Heading,
			Speed:    o.Speed,
			Length:   o.Length,
			Width:    o.Width,
			IsStatic: o.Speed == 0,
		}
		if !obs.IsStatic {
			for t := 0.; t <= scn.PredictionHorizonSec+1e-9; t += scn.PredictionStepSec {
				px, py := o.positionAt(elapsed + t)
				obs.Trajectory = append(obs.Trajectory, messages.PredictedPoint{
					X: px, Y: py, Heading: o.Heading, V: o.Speed, RelativeTime: t,
				})
			}
		}
		out.Obstacles = append(out.Obstacles, obs)
	}
	return out
}

func (o Obstacle) positionAt(t float64) (float64, float64) {
	return o.X + o.Speed*t*math.Cos(o.Heading), o.Y + o.Speed*t*math.Sin(o.Heading)
}
