package trajectory

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/planning/logging"
	"go.viam.com/planning/messages"
	"go.viam.com/planning/vehiclestate"
)

func autoState(x, y float64) vehiclestate.State {
	return vehiclestate.State{
		X:                  x,
		Y:                  y,
		Heading:            0.1,
		Kappa:              0.01,
		LinearVelocity:     1,
		LinearAcceleration: 0.2,
		DrivingMode:        messages.CompleteAutoDrive,
	}
}

func TestStitchingReplan(t *testing.T) {
	s := NewStitcher(DefaultStitchingConfig(), logging.NewTestLogger(t))
	prev := NewPublishable(0, straightLine(11))

	manual := autoState(0.3, 0)
	manual.DrivingMode = messages.CompleteManual

	for _, tc := range []struct {
		name       string
		state      vehiclestate.State
		cycleStart float64
		prev       *Publishable
	}{
		{"no previous trajectory", autoState(0.3, 0), 0.3, nil},
		{"manual driving", manual, 0.3, prev},
		{"empty previous trajectory", autoState(0.3, 0), 0.3, NewPublishable(0, nil)},
		{"before the previous trajectory", autoState(0.3, 0), -0.5, prev},
		{"beyond the previous trajectory", autoState(0.3, 0), 1.0, prev},
		{"lateral deviation", autoState(0.3, 1), 0.3, prev},
		{"longitudinal deviation", autoState(4, 0), 0.3, prev},
	} {
		t.Run(tc.name, func(t *testing.T) {
			stitch, isReplan := s.ComputeStitchingTrajectory(tc.state, tc.cycleStart, 0.1, tc.prev)
			test.That(t, isReplan, test.ShouldBeTrue)
			test.That(t, stitch.NumPoints(), test.ShouldEqual, 1)
			p := stitch.StartPoint()
			test.That(t, p.PathPoint.X, test.ShouldEqual, tc.state.X)
			test.That(t, p.PathPoint.Y, test.ShouldEqual, tc.state.Y)
			test.That(t, p.PathPoint.Theta, test.ShouldEqual, 0.1)
			test.That(t, p.PathPoint.Kappa, test.ShouldEqual, 0.01)
			test.That(t, p.V, test.ShouldEqual, 1.)
			test.That(t, p.A, test.ShouldEqual, 0.2)
			test.That(t, p.RelativeTime, test.ShouldEqual, 0.)
		})
	}
}

func TestStitchingContinues(t *testing.T) {
	s := NewStitcher(DefaultStitchingConfig(), logging.NewTestLogger(t))
	prev := NewPublishable(0, straightLine(11))

	stitch, isReplan := s.ComputeStitchingTrajectory(autoState(0.3, 0.05), 0.3, 0.1, prev)
	test.That(t, isReplan, test.ShouldBeFalse)
	test.That(t, stitch.NumPoints(), test.ShouldEqual, 3)

	end := stitch.EndPoint()
	test.That(t, end.PathPoint.X, test.ShouldAlmostEqual, 0.4)
	test.That(t, end.PathPoint.S, test.ShouldEqual, 0.)
	test.That(t, end.RelativeTime, test.ShouldAlmostEqual, 0.1)
	test.That(t, stitch.StartPoint().PathPoint.S, test.ShouldAlmostEqual, -0.2)
	test.That(t, stitch.StartPoint().RelativeTime, test.ShouldAlmostEqual, -0.1)

	// the previous trajectory is not modified
	test.That(t, prev.Trajectory[4].PathPoint.S, test.ShouldAlmostEqual, 0.4)
	test.That(t, prev.Trajectory[4].RelativeTime, test.ShouldAlmostEqual, 0.4)
}

func TestTransformLastPublishedTrajectory(t *testing.T) {
	s := NewStitcher(DefaultStitchingConfig(), logging.NewTestLogger(t))
	s.TransformLastPublishedTrajectory(1, 0, 0, nil)

	prev := NewPublishable(0, straightLine(3))
	s.TransformLastPublishedTrajectory(0.1, 0, 0, prev)
	test.That(t, prev.Trajectory[0].PathPoint.X, test.ShouldAlmostEqual, -0.1)
	test.That(t, prev.Trajectory[2].PathPoint.X, test.ShouldAlmostEqual, 0.1)
}
