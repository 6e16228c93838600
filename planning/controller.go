// Package planning runs the planning cycle: every tick it plans a trajectory from the latest
// inputs, keeps it continuous with the previously published one and degrades to a fallback or
// an emergency stop when planning fails.
package planning

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"go.viam.com/planning/frame"
	"go.viam.com/planning/logging"
	"go.viam.com/planning/messages"
	"go.viam.com/planning/planner"
	"go.viam.com/planning/referenceline"
	"go.viam.com/planning/trajectory"
	"go.viam.com/planning/vehiclestate"
)

const moduleName = "planning"

// Reasons reported in the not-ready decision or the emergency stop.
const (
	reasonUpdateFailed        = "Update VehicleStateProvider failed"
	reasonRoutingUpdateFailed = "Failed to update routing in reference line provider"
	reasonFrameInitFailed     = "Failed to init frame"
	reasonNoDrivingPlan       = "planner failed to make a driving plan"
)

// VehicleStateEstimator turns localization and chassis samples into a vehicle state.
type VehicleStateEstimator interface {
	Update(loc *messages.Localization, chassis *messages.Chassis) error
	State() vehiclestate.State
	EstimateFuturePosition(t float64) r2.Point
}

// ContinuityService decides which part of the previous trajectory the next one starts with.
type ContinuityService interface {
	ComputeStitchingTrajectory(
		state vehiclestate.State,
		cycleStart, period float64,
		prev *trajectory.Publishable,
	) (trajectory.Trajectory, bool)
	TransformLastPublishedTrajectory(dx, dy, dtheta float64, prev *trajectory.Publishable)
}

// FrameBuilder builds the frame of a cycle. It returns the frame, possibly incomplete, even when
// it fails.
type FrameBuilder interface {
	Build(
		ctx context.Context,
		seq uint32,
		start messages.TrajectoryPoint,
		startTime float64,
		state vehiclestate.State,
		prediction *messages.PredictionObstacles,
	) (*frame.Frame, error)
}

// RuleEvaluator applies traffic rules to one candidate and may mark it as not drivable.
type RuleEvaluator interface {
	Evaluate(ctx context.Context, f *frame.Frame, candidate *frame.ReferenceLineInfo) error
}

// ReferenceLineService maintains the reference lines of the current route in the background.
type ReferenceLineService interface {
	Start()
	Stop()
	UpdateRoutingResponse(routing *messages.RoutingResponse) bool
	UpdateVehicleState(state vehiclestate.State)
	LastTimeDelay() float64
}

// Collaborators are the components a cycle delegates to.
type Collaborators struct {
	Estimator      VehicleStateEstimator
	Continuity     ContinuityService
	Frames         FrameBuilder
	Rules          RuleEvaluator
	Optimizer      planner.Planner
	ReferenceLines ReferenceLineService
}

func (deps Collaborators) validate() error {
	switch {
	case deps.Estimator == nil:
		return errors.New("missing vehicle state estimator")
	case deps.Continuity == nil:
		return errors.New("missing trajectory continuity service")
	case deps.Frames == nil:
		return errors.New("missing frame builder")
	case deps.Rules == nil:
		return errors.New("missing rule evaluator")
	case deps.Optimizer == nil:
		return errors.New("missing optimizer")
	case deps.ReferenceLines == nil:
		return errors.New("missing reference line service")
	}
	return nil
}

// VehicleConfig is the pose of the vehicle in navigation mode, used to move the previous
// trajectory into the frame of the vehicle.
type VehicleConfig struct {
	X, Y, Theta float64
	IsValid     bool
}

// State is carried from one cycle to the next.
type State struct {
	// the trajectory the next cycle stitches onto.
	LastPublishable *trajectory.Publishable
	// the last message published, used as fallback.
	LastPublished     *messages.ADCTrajectory
	LastRouting       *messages.RoutingResponse
	PullOver          frame.PullOverStatus
	LastVehicleConfig VehicleConfig
	SequenceNum       uint32
}

// Controller runs planning cycles. Cycles never overlap; the controller is the only writer of its
// State and frame history.
type Controller struct {
	cfg       Config
	inputs    *Inputs
	publisher Publisher
	deps      Collaborators
	clk       clock.Clock
	logger    logging.Logger
	latency   *LatencyStats

	mu      sync.Mutex
	state   State
	history *frame.History
}

// NewController returns a controller planning from inputs and publishing to publisher.
func NewController(
	cfg Config,
	inputs *Inputs,
	publisher Publisher,
	deps Collaborators,
	clk clock.Clock,
	logger logging.Logger,
) (*Controller, error) {
	if err := cfg.Validate(moduleName); err != nil {
		return nil, err
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	return &Controller{
		cfg:       cfg,
		inputs:    inputs,
		publisher: publisher,
		deps:      deps,
		clk:       clk,
		logger:    logger,
		latency:   NewLatencyStats(cfg.LatencyReportCycles, logger.Sublogger("latency")),
		history:   frame.NewHistory(cfg.FrameHistoryCapacity),
	}, nil
}

// Start starts the background collaborators.
func (c *Controller) Start() {
	c.deps.ReferenceLines.Start()
	c.logger.Info("planning started")
}

// Stop stops the background collaborators and drops everything retained across cycles.
func (c *Controller) Stop() {
	c.logger.Info("planning stop is called")
	c.deps.ReferenceLines.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.LastPublishable = nil
	c.history.Clear()
}

// State returns a copy of the state retained across cycles.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// History returns the archived frames.
func (c *Controller) History() *frame.History {
	return c.history
}

// Latency returns the cycle latency statistics.
func (c *Controller) Latency() *LatencyStats {
	return c.latency
}

// RunOnce runs one cycle on the latest inputs and publishes its result. A failed cycle still
// publishes; only a publishing failure is returned.
func (c *Controller) RunOnce(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	began := c.clk.Now()
	msg, err := c.RunCycle(ctx, &c.state, c.inputs.Observe())
	c.latency.Record(ctx, elapsedMs(c.clk, began))
	if err != nil {
		c.logger.CDebugw(ctx, "cycle failed", "code", CodeOf(err), "error", err)
	}
	return errors.Wrap(c.publisher.Publish(ctx, msg), "cannot publish trajectory")
}

// RunCycle plans one cycle from snap, reading and updating st. It always returns the message to
// publish; the error classifies why the cycle did not produce a plan.
func (c *Controller) RunCycle(ctx context.Context, st *State, snap Snapshot) (*messages.ADCTrajectory, error) {
	began := c.clk.Now()
	start := unixSeconds(began)

	if reason := CheckInput(snap, c.cfg.UseNavigationMode); reason != "" {
		c.logger.CErrorw(ctx, reason+"; skip the planning cycle")
		out := &messages.ADCTrajectory{}
		out.SetNotReady(reason)
		return c.finalize(st, snap, out, start, false), newCycleError(messages.NotReadyError, errors.New(reason))
	}

	updateErr := c.deps.Estimator.Update(snap.Localization, snap.Chassis)
	state := c.deps.Estimator.State()
	if updateErr == nil && !state.IsValid() {
		updateErr = errors.New("vehicle state is not valid")
	}
	if updateErr != nil {
		return c.abort(ctx, st, snap, start, reasonUpdateFailed,
			newCycleError(messages.UpdateFailure, errors.Wrap(updateErr, reasonUpdateFailed)))
	}

	if gap := start - state.Timestamp; c.cfg.EstimateCurrentVehicleState && gap >= 0 && gap < c.cfg.MaxStateExtrapolationSec {
		future := c.deps.Estimator.EstimateFuturePosition(gap)
		state.X, state.Y = future.X, future.Y
		state.Timestamp = start
	}

	if c.cfg.UseNavigationMode {
		c.rebaseLastPublished(st, snap.Localization)
	}

	switch {
	case !c.cfg.UseNavigationMode:
		if !c.deps.ReferenceLines.UpdateRoutingResponse(snap.Routing) {
			return c.abort(ctx, st, snap, start, reasonRoutingUpdateFailed,
				newCycleError(messages.NotReadyError, errors.New(reasonRoutingUpdateFailed)))
		}
	case !snap.Routing.Empty():
		c.deps.ReferenceLines.UpdateRoutingResponse(snap.Routing)
	}
	if c.cfg.EnablePrediction && snap.Prediction == nil {
		c.logger.CDebugw(ctx, "prediction is enabled but no prediction provided")
	}
	c.deps.ReferenceLines.UpdateVehicleState(state)
	if !c.cfg.UseNavigationMode {
		c.resetPullOver(ctx, st, snap.Routing)
	}

	period := 1 / c.cfg.LoopRateHz
	stitching, isReplan := c.deps.Continuity.ComputeStitchingTrajectory(state, start, period, st.LastPublishable)
	planningStart := stitching.EndPoint()

	seq := st.SequenceNum + 1
	f, err := c.deps.Frames.Build(ctx, seq, planningStart, start, state, snap.Prediction)
	if f == nil {
		f = &frame.Frame{SequenceNum: seq, StartPoint: planningStart, StartTime: start, VehicleState: state}
	}
	out := &messages.ADCTrajectory{}
	f.Trajectory = out
	out.LatencyStats.InitFrameTimeMs = elapsedMs(c.clk, began)
	if err != nil {
		cycleErr := newCycleError(messages.ConstructionFailure, errors.Wrap(err, reasonFrameInitFailed))
		c.logger.CErrorw(ctx, "cannot build frame", "error", cycleErr)
		c.recordDebug(out, f)
		msg := c.failureMessage(out, cycleErr)
		c.history.Add(f)
		return c.finalize(st, snap, msg, start, !msg.IsEStop()), cycleErr
	}

	f.PlanningStatus.PullOver = st.PullOver
	for _, info := range f.ReferenceLineInfos {
		if err := c.deps.Rules.Evaluate(ctx, f, info); err != nil || !info.IsDrivable() {
			info.SetDrivable(false)
			c.logger.CWarnw(ctx, "reference line traffic decider failed",
				"reference_line", info.ReferenceLine().ID, "error", err)
		}
	}
	st.PullOver = f.PlanningStatus.PullOver

	planErr := c.plan(ctx, st, start, stitching, out, f)
	out.LatencyStats.TotalTimeMs = elapsedMs(c.clk, began)
	out.AddTaskStats("ReferenceLineProvider", c.deps.ReferenceLines.LastTimeDelay()*1000)
	out.IsReplan = isReplan
	c.recordDebug(out, f)
	c.history.Add(f)
	if planErr != nil {
		c.logger.CErrorw(ctx, "planning failed", "error", planErr)
		msg := c.failureMessage(out, planErr)
		return c.finalize(st, snap, msg, start, !msg.IsEStop()), planErr
	}
	out.Header.Status = &messages.Status{Code: messages.OK}
	return c.finalize(st, snap, out, start, false), nil
}

// plan runs the optimizer over the frame and assembles the best candidate into out.
func (c *Controller) plan(
	ctx context.Context,
	st *State,
	start float64,
	stitching trajectory.Trajectory,
	out *messages.ADCTrajectory,
	f *frame.Frame,
) *CycleError {
	planningStart := stitching.EndPoint()
	if err := c.deps.Optimizer.Plan(ctx, planningStart, f); err != nil {
		return newCycleError(messages.PlanningFailure, errors.Wrap(err, reasonNoDrivingPlan))
	}

	best := f.FindDriveReferenceLineInfo()
	if best == nil {
		// the next cycle must not stitch onto a trajectory that could not be continued.
		st.LastPublishable = nil
		return newCycleError(messages.PlanningFailure, errors.New(reasonNoDrivingPlan))
	}
	tail := best.Trajectory()
	if len(tail) == 0 || tail.StartPoint() != planningStart {
		return newCycleError(messages.PlanningFailure,
			errors.Errorf("trajectory of reference line %q does not start at the planning start point", best.ReferenceLine().ID))
	}

	for _, ts := range best.TaskStats() {
		out.AddTaskStats(ts.Name, ts.TimeMs)
	}
	out.RightOfWay = best.RightOfWay()
	out.LaneIDs = best.TargetLaneIDs()
	best.ExportDecision(&out.Decision)

	pub := trajectory.NewPublishable(start, tail)
	pub.Trajectory.PrependPoints(stitching[:len(stitching)-1])
	st.LastPublishable = pub
	pub.PopulateMessage(out)

	advice := best.ExportEngageAdvice(f.VehicleState.DrivingMode)
	out.EngageAdvice = &advice
	c.logger.CDebugw(ctx, "planned",
		"reference_line", best.ReferenceLine().ID, "cost", best.Cost(), "points", pub.Trajectory.NumPoints())
	return nil
}

// abort ends a cycle that failed before a frame was built.
func (c *Controller) abort(
	ctx context.Context,
	st *State,
	snap Snapshot,
	start float64,
	reason string,
	err *CycleError,
) (*messages.ADCTrajectory, error) {
	c.logger.CErrorw(ctx, reason, "code", err.Code, "error", err.Err)
	out := &messages.ADCTrajectory{}
	out.SetNotReady(reason)
	out.Header.Status = err.Status()
	return c.finalize(st, snap, out, start, true), err
}

// failureMessage is the emergency stop when it is configured, otherwise out marked not ready.
func (c *Controller) failureMessage(out *messages.ADCTrajectory, err *CycleError) *messages.ADCTrajectory {
	if c.cfg.PublishEstop {
		return &messages.ADCTrajectory{
			Header: messages.Header{Status: err.Status()},
			EStop:  &messages.EStop{IsEStop: true, Reason: err.Err.Error()},
		}
	}
	out.SetNotReady(err.Error())
	out.Header.Status = err.Status()
	return out
}

// finalize stamps out, fills in a fallback trajectory when allowed and shifts relative times to
// the publish time.
func (c *Controller) finalize(
	st *State,
	snap Snapshot,
	out *messages.ADCTrajectory,
	start float64,
	allowFallback bool,
) *messages.ADCTrajectory {
	st.SequenceNum++
	out.Header.TimestampSec = start
	out.Header.SequenceNum = st.SequenceNum
	out.Header.ModuleName = moduleName
	out.Gear = messages.GearDrive
	if !snap.Routing.Empty() {
		routingHeader := snap.Routing.Header
		out.RoutingHeader = &routingHeader
	}
	if allowFallback && c.cfg.UsePlanningFallback && len(out.TrajectoryPoints) == 0 {
		c.setFallbackTrajectory(st, out)
	}
	if !c.cfg.TestMode {
		dt := start - unixSeconds(c.clk.Now())
		for i := range out.TrajectoryPoints {
			out.TrajectoryPoints[i].RelativeTime += dt
		}
	}
	st.LastPublished = out.Clone()
	return out
}

func (c *Controller) setFallbackTrajectory(st *State, out *messages.ADCTrajectory) {
	if c.cfg.UseNavigationMode {
		v := c.deps.Estimator.State().LinearVelocity
		step := c.cfg.FallbackTimeStepSec
		for k := 0; float64(k)*step < c.cfg.NavigationFallbackCruiseTimeSec; k++ {
			t := float64(k) * step
			s := v * t
			out.TrajectoryPoints = append(out.TrajectoryPoints, messages.TrajectoryPoint{
				PathPoint:    messages.PathPoint{X: s, S: s},
				V:            v,
				RelativeTime: t,
			})
		}
		return
	}

	last := st.LastPublished
	if last == nil {
		return
	}
	out.PlanID = last.PlanID
	shift := last.Header.TimestampSec - out.Header.TimestampSec
	for _, p := range last.TrajectoryPoints {
		p.RelativeTime += shift
		out.TrajectoryPoints = append(out.TrajectoryPoints, p)
	}
}

// rebaseLastPublished moves the retained trajectory into the frame of the current pose.
func (c *Controller) rebaseLastPublished(st *State, loc *messages.Localization) {
	current := vehicleConfigFromLocalization(loc)
	if last := st.LastVehicleConfig; last.IsValid && current.IsValid {
		dx, dy := current.X-last.X, current.Y-last.Y
		cosTheta, sinTheta := math.Cos(last.Theta), math.Sin(last.Theta)
		c.deps.Continuity.TransformLastPublishedTrajectory(
			cosTheta*dx+sinTheta*dy,
			-sinTheta*dx+cosTheta*dy,
			current.Theta-last.Theta,
			st.LastPublishable,
		)
	}
	st.LastVehicleConfig = current
}

func (c *Controller) resetPullOver(ctx context.Context, st *State, routing *messages.RoutingResponse) {
	if st.LastRouting == nil {
		st.LastRouting = routing
		st.PullOver = frame.PullOverStatus{}
		return
	}
	if !st.PullOver.InPullOver {
		return
	}
	if referenceline.IsNewRouting(st.LastRouting, routing) {
		st.PullOver = frame.PullOverStatus{}
		st.LastRouting = routing
		c.logger.CInfow(ctx, "cleared pull over status after receiving a new routing")
	}
}

func (c *Controller) recordDebug(out *messages.ADCTrajectory, f *frame.Frame) {
	if !c.cfg.EnableRecordDebug {
		return
	}
	out.Debug = &messages.Debug{PlanningData: f.DebugData()}
}

func vehicleConfigFromLocalization(loc *messages.Localization) VehicleConfig {
	if loc == nil || loc.Pose == nil || loc.Pose.Position == nil {
		return VehicleConfig{}
	}
	cfg := VehicleConfig{X: loc.Pose.Position.X, Y: loc.Pose.Position.Y, IsValid: true}
	switch {
	case loc.Pose.Heading != nil:
		cfg.Theta = *loc.Pose.Heading
	case loc.Pose.Orientation != nil:
		cfg.Theta = vehiclestate.QuaternionToHeading(*loc.Pose.Orientation)
	}
	return cfg
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func elapsedMs(clk clock.Clock, since time.Time) float64 {
	return float64(clk.Since(since).Microseconds()) / 1000
}
