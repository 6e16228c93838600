package trajectory

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.viam.com/test"

	"go.viam.com/planning/messages"
)

// straightLine runs along +x at 1 m/s with a point every 0.1 s.
func straightLine(n int) Trajectory {
	tr := make(Trajectory, 0, n)
	for i := 0; i < n; i++ {
		x := float64(i) / 10
		tr.AppendPoint(messages.TrajectoryPoint{
			PathPoint:    messages.PathPoint{X: x, S: x},
			V:            1,
			RelativeTime: float64(i) / 10,
		})
	}
	return tr
}

func TestQueryLowerBoundPoint(t *testing.T) {
	tr := straightLine(11)
	test.That(t, tr.QueryLowerBoundPoint(-1), test.ShouldEqual, 0)
	test.That(t, tr.QueryLowerBoundPoint(0), test.ShouldEqual, 0)
	test.That(t, tr.QueryLowerBoundPoint(0.25), test.ShouldEqual, 3)
	test.That(t, tr.QueryLowerBoundPoint(0.3), test.ShouldEqual, 3)
	test.That(t, tr.QueryLowerBoundPoint(5), test.ShouldEqual, 10)
	test.That(t, Trajectory{}.QueryLowerBoundPoint(1), test.ShouldEqual, 0)
}

func TestQueryNearestPoint(t *testing.T) {
	tr := straightLine(11)
	test.That(t, tr.QueryNearestPoint(0.52, 0.3), test.ShouldEqual, 5)
	test.That(t, tr.QueryNearestPoint(-4, 0), test.ShouldEqual, 0)
}

func TestEvaluate(t *testing.T) {
	tr := straightLine(11)
	p := tr.Evaluate(0.25)
	test.That(t, p.PathPoint.X, test.ShouldAlmostEqual, 0.25)
	test.That(t, p.PathPoint.S, test.ShouldAlmostEqual, 0.25)
	test.That(t, p.V, test.ShouldAlmostEqual, 1)
	test.That(t, p.RelativeTime, test.ShouldEqual, 0.25)

	test.That(t, tr.Evaluate(-1), test.ShouldResemble, tr[0])
	test.That(t, tr.Evaluate(5), test.ShouldResemble, tr[10])
	test.That(t, tr.Evaluate(0.3), test.ShouldResemble, tr[3])

	turning := Trajectory{
		{PathPoint: messages.PathPoint{Theta: math.Pi - 0.1}},
		{PathPoint: messages.PathPoint{Theta: -math.Pi + 0.1}, RelativeTime: 1},
	}
	// the heading wraps through pi instead of sweeping back through zero
	test.That(t, math.Abs(turning.Evaluate(0.5).PathPoint.Theta), test.ShouldAlmostEqual, math.Pi, 1e-9)
}

func TestPrependAndShift(t *testing.T) {
	tr := straightLine(3)
	prefix := straightLine(2).ShiftRelativeTime(-1)
	tr.PrependPoints(prefix)
	test.That(t, tr.NumPoints(), test.ShouldEqual, 5)
	test.That(t, tr.StartPoint().RelativeTime, test.ShouldAlmostEqual, -1)
	test.That(t, tr.EndPoint().RelativeTime, test.ShouldAlmostEqual, 0.2)
	test.That(t, tr.TotalTime(), test.ShouldAlmostEqual, 1.2)

	// shifting copies
	shifted := tr.ShiftRelativeTime(2)
	test.That(t, shifted.StartPoint().RelativeTime, test.ShouldAlmostEqual, 1)
	test.That(t, tr.StartPoint().RelativeTime, test.ShouldAlmostEqual, -1)
}

func TestTransform(t *testing.T) {
	tr := Trajectory{{PathPoint: messages.PathPoint{X: 1, Y: 0}}}
	tr.Transform(1, 0, 0)
	test.That(t, tr[0].PathPoint.X, test.ShouldAlmostEqual, 0)
	test.That(t, tr[0].PathPoint.Y, test.ShouldAlmostEqual, 0)

	tr = Trajectory{{PathPoint: messages.PathPoint{X: 1, Y: 0}}}
	tr.Transform(0, 0, math.Pi/2)
	test.That(t, tr[0].PathPoint.X, test.ShouldAlmostEqual, 0)
	test.That(t, tr[0].PathPoint.Y, test.ShouldAlmostEqual, -1)
	test.That(t, tr[0].PathPoint.Theta, test.ShouldAlmostEqual, -math.Pi/2)

	// seen from (1, 1) facing +y, the point (2, 1) is 1 to the right
	tr = Trajectory{{PathPoint: messages.PathPoint{X: 2, Y: 1}}}
	tr.Transform(1, 1, math.Pi/2)
	test.That(t, tr[0].PathPoint.X, test.ShouldAlmostEqual, 0)
	test.That(t, tr[0].PathPoint.Y, test.ShouldAlmostEqual, -1)
}

func TestPublishable(t *testing.T) {
	tr := straightLine(4)
	pub := NewPublishable(12.5, tr)
	tr[0].V = 42
	test.That(t, pub.Trajectory[0].V, test.ShouldEqual, 1.)
	test.That(t, pub.HeaderTime, test.ShouldEqual, 12.5)

	other := NewPublishable(12.5, tr)
	test.That(t, other.ID, test.ShouldNotEqual, pub.ID)

	var msg messages.ADCTrajectory
	pub.PopulateMessage(&msg)
	test.That(t, msg.PlanID, test.ShouldEqual, pub.ID.String())
	test.That(t, len(msg.TrajectoryPoints), test.ShouldEqual, 4)
	test.That(t, msg.TotalPathLength, test.ShouldAlmostEqual, 0.3)
	test.That(t, msg.TotalPathTime, test.ShouldAlmostEqual, 0.3)
	test.That(t, cmp.Diff([]messages.TrajectoryPoint(pub.Trajectory), msg.TrajectoryPoints,
		cmpopts.EquateApprox(0, 1e-12)), test.ShouldBeEmpty)
}
