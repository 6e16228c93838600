package sim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/planning/logging"
	"go.viam.com/planning/messages"
	"go.viam.com/planning/planning"
	"go.viam.com/planning/trajectory"
	"go.viam.com/planning/utils"
)

// Vehicle is a point vehicle that tracks the latest published trajectory perfectly. It is the
// publisher the controller writes to and the source of the localization and chassis it reads.
type Vehicle struct {
	scn    Scenario
	inputs *planning.Inputs
	clk    clock.Clock
	logger logging.Logger

	mu         sync.Mutex
	started    time.Time
	x, y       float64
	heading    float64
	v          float64
	plan       trajectory.Trajectory
	planTime   float64
	seq        uint32
	lastStep   time.Time
	stops      int
	trajectory *messages.ADCTrajectory

	workers utils.StoppableWorkers
}

// NewVehicle places a vehicle at the scenario start and writes the route and the first samples
// into inputs.
func NewVehicle(scn Scenario, inputs *planning.Inputs, clk clock.Clock, logger logging.Logger) *Vehicle {
	now := clk.Now()
	veh := &Vehicle{
		scn:      scn,
		inputs:   inputs,
		clk:      clk,
		logger:   logger,
		started:  now,
		x:        scn.Start.X,
		y:        scn.Start.Y,
		heading:  scn.Start.Heading,
		v:        scn.Start.Speed,
		lastStep: now,
	}
	inputs.SetRouting(scn.Routing(seconds(now)))
	inputs.SetMapReady(true)
	veh.mu.Lock()
	veh.report(now)
	veh.mu.Unlock()
	return veh
}

// Start steps the vehicle every interval until Stop.
func (veh *Vehicle) Start(interval time.Duration) {
	veh.workers = utils.NewStoppableWorkerWithTicker(veh.clk, interval, func(ctx context.Context) {
		veh.Step(veh.clk.Now())
	})
}

// Stop stops stepping.
func (veh *Vehicle) Stop() {
	if veh.workers != nil {
		veh.workers.Stop()
	}
}

// Publish implements planning.Publisher. A trajectory with points replaces the one being followed;
// an emergency stop halts the vehicle where it is.
func (veh *Vehicle) Publish(ctx context.Context, msg *messages.ADCTrajectory) error {
	veh.mu.Lock()
	defer veh.mu.Unlock()
	veh.trajectory = msg
	switch {
	case msg.IsEStop():
		veh.logger.CWarnw(ctx, "emergency stop", "reason", msg.EStop.Reason)
		veh.plan = nil
		veh.v = 0
		veh.stops++
	case len(msg.TrajectoryPoints) > 0:
		veh.plan = append(trajectory.Trajectory(nil), msg.TrajectoryPoints...)
		veh.planTime = msg.Header.TimestampSec
	}
	return nil
}

// Step moves the vehicle to its position on the followed trajectory at now and reports the new
// samples. Without a trajectory the vehicle keeps its heading and speed.
func (veh *Vehicle) Step(now time.Time) {
	veh.mu.Lock()
	defer veh.mu.Unlock()

	if len(veh.plan) > 0 {
		p := veh.plan.Evaluate(seconds(now) - veh.planTime)
		veh.x, veh.y, veh.heading, veh.v = p.PathPoint.X, p.PathPoint.Y, p.PathPoint.Theta, p.V
	} else {
		dt := now.Sub(veh.lastStep).Seconds()
		veh.x += veh.v * dt * math.Cos(veh.heading)
		veh.y += veh.v * dt * math.Sin(veh.heading)
	}
	veh.lastStep = now
	veh.report(now)
}

// report writes the current samples into the inputs. The caller holds mu.
func (veh *Vehicle) report(now time.Time) {
	ts := seconds(now)
	veh.seq++
	heading := veh.heading
	speed := veh.v
	veh.inputs.SetLocalization(&messages.Localization{
		Header: messages.Header{TimestampSec: ts, SequenceNum: veh.seq, ModuleName: "sim"},
		Pose: &messages.Pose{
			Position: &messages.Point3D{X: veh.x, Y: veh.y},
			Heading:  &heading,
		},
	})
	gear := messages.GearDrive
	veh.inputs.SetChassis(&messages.Chassis{
		Header:       messages.Header{TimestampSec: ts, SequenceNum: veh.seq, ModuleName: "sim"},
		SpeedMps:     &speed,
		GearLocation: &gear,
		DrivingMode:  messages.CompleteAutoDrive,
	})
	veh.inputs.SetPrediction(veh.scn.Prediction(ts, now.Sub(veh.started).Seconds(), veh.seq))
}

// Pose returns the current pose and speed.
func (veh *Vehicle) Pose() Pose {
	veh.mu.Lock()
	defer veh.mu.Unlock()
	return Pose{X: veh.x, Y: veh.y, Heading: veh.heading, Speed: veh.v}
}

// Last returns the last trajectory received and the number of emergency stops so far.
func (veh *Vehicle) Last() (*messages.ADCTrajectory, int) {
	veh.mu.Lock()
	defer veh.mu.Unlock()
	return veh.trajectory, veh.stops
}

func seconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
