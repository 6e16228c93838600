// Package trajectory holds the time-parameterized trajectories produced by planning and the
// stitcher that keeps consecutive cycles continuous.
package trajectory

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"go.viam.com/planning/messages"
	"go.viam.com/planning/utils"
)

// Trajectory is a sequence of points ordered by non-decreasing relative time.
type Trajectory []messages.TrajectoryPoint

// NumPoints returns the number of points.
func (tr Trajectory) NumPoints() int { return len(tr) }

// StartPoint returns the first point. The trajectory must not be empty.
func (tr Trajectory) StartPoint() messages.TrajectoryPoint { return tr[0] }

// EndPoint returns the last point. The trajectory must not be empty.
func (tr Trajectory) EndPoint() messages.TrajectoryPoint { return tr[len(tr)-1] }

// AppendPoint adds p at the end.
func (tr *Trajectory) AppendPoint(p messages.TrajectoryPoint) {
	*tr = append(*tr, p)
}

// PrependPoints inserts points before the first point.
func (tr *Trajectory) PrependPoints(points []messages.TrajectoryPoint) {
	merged := make(Trajectory, 0, len(points)+len(*tr))
	merged = append(merged, points...)
	*tr = append(merged, *tr...)
}

// QueryLowerBoundPoint returns the index of the first point whose relative time is not before
// relativeTime, or the last index when every point is earlier.
func (tr Trajectory) QueryLowerBoundPoint(relativeTime float64) int {
	if len(tr) == 0 {
		return 0
	}
	if relativeTime >= tr[len(tr)-1].RelativeTime {
		return len(tr) - 1
	}
	return sort.Search(len(tr), func(i int) bool { return tr[i].RelativeTime >= relativeTime })
}

// Evaluate returns the point at relativeTime, interpolated between the neighboring samples and
// clamped to the ends. The trajectory must not be empty.
func (tr Trajectory) Evaluate(relativeTime float64) messages.TrajectoryPoint {
	i := tr.QueryLowerBoundPoint(relativeTime)
	if i == 0 || relativeTime >= tr[i].RelativeTime {
		return tr[i]
	}
	p0, p1 := tr[i-1], tr[i]
	r := (relativeTime - p0.RelativeTime) / (p1.RelativeTime - p0.RelativeTime)
	return messages.TrajectoryPoint{
		PathPoint: messages.PathPoint{
			X:      utils.Lerp(p0.PathPoint.X, p1.PathPoint.X, r),
			Y:      utils.Lerp(p0.PathPoint.Y, p1.PathPoint.Y, r),
			Theta:  utils.NormalizeAngle(p0.PathPoint.Theta + r*utils.NormalizeAngle(p1.PathPoint.Theta-p0.PathPoint.Theta)),
			Kappa:  utils.Lerp(p0.PathPoint.Kappa, p1.PathPoint.Kappa, r),
			DKappa: utils.Lerp(p0.PathPoint.DKappa, p1.PathPoint.DKappa, r),
			S:      utils.Lerp(p0.PathPoint.S, p1.PathPoint.S, r),
		},
		V:            utils.Lerp(p0.V, p1.V, r),
		A:            utils.Lerp(p0.A, p1.A, r),
		RelativeTime: relativeTime,
	}
}

// QueryNearestPoint returns the index of the point closest to (x, y).
func (tr Trajectory) QueryNearestPoint(x, y float64) int {
	best, bestDistSq := 0, math.Inf(1)
	for i, p := range tr {
		dx, dy := p.PathPoint.X-x, p.PathPoint.Y-y
		if d := dx*dx + dy*dy; d < bestDistSq {
			best, bestDistSq = i, d
		}
	}
	return best
}

// ShiftRelativeTime returns a copy with dt added to every relative time.
func (tr Trajectory) ShiftRelativeTime(dt float64) Trajectory {
	out := make(Trajectory, len(tr))
	for i, p := range tr {
		p.RelativeTime += dt
		out[i] = p
	}
	return out
}

// Transform expresses every point in a frame translated by (dx, dy) and rotated by dtheta
// relative to the current one. Points are updated in place.
func (tr Trajectory) Transform(dx, dy, dtheta float64) {
	cosTheta := math.Cos(dtheta)
	sinTheta := -math.Sin(dtheta)
	tx := -(cosTheta*dx - sinTheta*dy)
	ty := -(sinTheta*dx + cosTheta*dy)
	for i := range tr {
		p := &tr[i].PathPoint
		x, y := p.X, p.Y
		p.X = cosTheta*x - sinTheta*y + tx
		p.Y = sinTheta*x + cosTheta*y + ty
		p.Theta = utils.NormalizeAngle(p.Theta - dtheta)
	}
}

// TotalPathLength is the arc length covered from the first to the last point.
func (tr Trajectory) TotalPathLength() float64 {
	if len(tr) == 0 {
		return 0
	}
	return tr[len(tr)-1].PathPoint.S - tr[0].PathPoint.S
}

// TotalTime is the time covered from the first to the last point.
func (tr Trajectory) TotalTime() float64 {
	if len(tr) == 0 {
		return 0
	}
	return tr[len(tr)-1].RelativeTime - tr[0].RelativeTime
}

// Publishable is a trajectory whose relative times are measured from HeaderTime.
type Publishable struct {
	ID         uuid.UUID
	HeaderTime float64
	Trajectory Trajectory
}

// NewPublishable copies tr into a new publishable trajectory stamped at headerTime.
func NewPublishable(headerTime float64, tr Trajectory) *Publishable {
	return &Publishable{
		ID:         uuid.New(),
		HeaderTime: headerTime,
		Trajectory: append(Trajectory(nil), tr...),
	}
}

// PopulateMessage copies the plan id, the points and their totals into msg.
func (p *Publishable) PopulateMessage(msg *messages.ADCTrajectory) {
	msg.PlanID = p.ID.String()
	msg.TrajectoryPoints = append([]messages.TrajectoryPoint(nil), p.Trajectory...)
	msg.TotalPathLength = p.Trajectory.TotalPathLength()
	msg.TotalPathTime = p.Trajectory.TotalTime()
}
