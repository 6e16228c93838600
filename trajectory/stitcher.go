package trajectory

import (
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/planning/logging"
	"go.viam.com/planning/messages"
	"go.viam.com/planning/vehiclestate"
)

// StitchingConfig bounds how far the vehicle may drift from the previous trajectory before the
// stitcher gives up on it and replans.
type StitchingConfig struct {
	ReplanLateralDistanceThreshold      float64 `json:"replan_lateral_distance_threshold"`
	ReplanLongitudinalDistanceThreshold float64 `json:"replan_longitudinal_distance_threshold"`
}

// DefaultStitchingConfig returns the default replan thresholds in meters.
func DefaultStitchingConfig() StitchingConfig {
	return StitchingConfig{
		ReplanLateralDistanceThreshold:      0.5,
		ReplanLongitudinalDistanceThreshold: 2.5,
	}
}

// Stitcher computes the prefix of each new trajectory from the previously published one.
type Stitcher struct {
	cfg    StitchingConfig
	logger logging.Logger
}

// NewStitcher returns a stitcher using the given thresholds.
func NewStitcher(cfg StitchingConfig, logger logging.Logger) *Stitcher {
	return &Stitcher{cfg: cfg, logger: logger}
}

// ComputeStitchingTrajectory returns the prefix the next trajectory must start with and whether it
// is a replan. The last point of the prefix is the planning start point. A replan prefix is the
// single point at the vehicle state with relative time zero. Otherwise the prefix is the part of
// prev that covers [cycleStart, cycleStart+period], re-based so that relative time zero is
// cycleStart and s is zero at the last point.
func (s *Stitcher) ComputeStitchingTrajectory(
	state vehiclestate.State,
	cycleStart, period float64,
	prev *Publishable,
) (Trajectory, bool) {
	replan := func(reason string) (Trajectory, bool) {
		s.logger.Debugw("replanning from the vehicle state", "reason", reason)
		return Trajectory{reinitPoint(state)}, true
	}

	if prev == nil {
		return replan("no previous trajectory")
	}
	if state.DrivingMode != messages.CompleteAutoDrive {
		return replan("vehicle is not in autonomous mode")
	}
	if len(prev.Trajectory) == 0 {
		return replan("previous trajectory is empty")
	}

	vehRelTime := cycleStart - prev.HeaderTime
	timeMatched := prev.Trajectory.QueryLowerBoundPoint(vehRelTime)
	if timeMatched == 0 && vehRelTime < prev.Trajectory.StartPoint().RelativeTime {
		return replan("cycle start is before the previous trajectory")
	}
	if timeMatched+1 >= len(prev.Trajectory) {
		return replan("cycle start is beyond the previous trajectory")
	}

	positionMatched := prev.Trajectory.QueryNearestPoint(state.X, state.Y)
	lon, lat := frenetProjection(state.X, state.Y, prev.Trajectory[positionMatched].PathPoint)
	if math.Abs(lat) > s.cfg.ReplanLateralDistanceThreshold ||
		math.Abs(lon) > s.cfg.ReplanLongitudinalDistanceThreshold {
		s.logger.Debugw("vehicle deviates from the previous trajectory", "lon", lon, "lat", lat)
		return replan("vehicle deviates from the previous trajectory")
	}

	forwardIndex := prev.Trajectory.QueryLowerBoundPoint(vehRelTime + period)
	matched := min(timeMatched, positionMatched)
	begin := max(0, matched-1)
	if begin > forwardIndex {
		begin = forwardIndex
	}

	stitch := make(Trajectory, 0, forwardIndex-begin+1)
	stitch = append(stitch, prev.Trajectory[begin:forwardIndex+1]...)
	zeroS := stitch.EndPoint().PathPoint.S
	for i := range stitch {
		stitch[i].RelativeTime += prev.HeaderTime - cycleStart
		stitch[i].PathPoint.S -= zeroS
	}
	return stitch, false
}

// TransformLastPublishedTrajectory moves prev into a frame translated by (dx, dy) and rotated by
// dtheta. It is a no-op when prev is nil.
func (s *Stitcher) TransformLastPublishedTrajectory(dx, dy, dtheta float64, prev *Publishable) {
	if prev == nil {
		return
	}
	prev.Trajectory.Transform(dx, dy, dtheta)
}

func reinitPoint(state vehiclestate.State) messages.TrajectoryPoint {
	return messages.TrajectoryPoint{
		PathPoint: messages.PathPoint{
			X:     state.X,
			Y:     state.Y,
			Theta: state.Heading,
			Kappa: state.Kappa,
		},
		V: state.LinearVelocity,
		A: state.LinearAcceleration,
	}
}

// frenetProjection returns the longitudinal and lateral offsets of (x, y) from p along p's
// heading.
func frenetProjection(x, y float64, p messages.PathPoint) (lon, lat float64) {
	v := r2.Point{X: x - p.X, Y: y - p.Y}
	n := r2.Point{X: math.Cos(p.Theta), Y: math.Sin(p.Theta)}
	return v.Dot(n), n.Cross(v)
}
