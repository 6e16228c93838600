package frame

import (
	"context"
	"testing"

	"go.viam.com/test"

	"go.viam.com/planning/logging"
	"go.viam.com/planning/messages"
	"go.viam.com/planning/referenceline"
	"go.viam.com/planning/stboundary"
	"go.viam.com/planning/vehiclestate"
)

type staticLines []*referenceline.ReferenceLine

func (s staticLines) ReferenceLines() []*referenceline.ReferenceLine { return s }

func straightLine(t *testing.T, id string, y float64) *referenceline.ReferenceLine {
	t.Helper()
	line, err := referenceline.New(id, []string{id, id}, 3.5, []messages.Waypoint{{X: 0, Y: y}, {X: 100, Y: y}})
	test.That(t, err, test.ShouldBeNil)
	return line
}

func startAt(x, y, theta float64) messages.TrajectoryPoint {
	return messages.TrajectoryPoint{PathPoint: messages.PathPoint{X: x, Y: y, Theta: theta}, V: 5}
}

func TestBuildWithoutReferenceLine(t *testing.T) {
	b := NewBuilder(DefaultBuilderConfig(), staticLines(nil), logging.NewTestLogger(t))
	f, err := b.Build(context.Background(), 7, startAt(0, 0, 0), 10, vehiclestate.State{}, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, f, test.ShouldNotBeNil)
	test.That(t, f.SequenceNum, test.ShouldEqual, uint32(7))
	test.That(t, f.ReferenceLineInfos, test.ShouldBeEmpty)
}

func TestBuildBoundaries(t *testing.T) {
	crossing := make([]messages.PredictedPoint, 0, 11)
	for i := 0; i <= 10; i++ {
		ti := float64(i)
		crossing = append(crossing, messages.PredictedPoint{X: 30, Y: -10 + 2*ti, RelativeTime: ti})
	}
	prediction := &messages.PredictionObstacles{
		Header: messages.Header{TimestampSec: 10},
		Obstacles: []messages.PredictionObstacle{
			{ID: "parked", X: 20, Length: 4, Width: 2, IsStatic: true},
			{ID: "other_lane", X: 20, Y: 5, Length: 4, Width: 2, IsStatic: true},
			{ID: "crossing", Length: 4, Width: 2, Trajectory: crossing},
		},
	}

	b := NewBuilder(DefaultBuilderConfig(), staticLines{straightLine(t, "lane", 0)}, logging.NewTestLogger(t))
	f, err := b.Build(context.Background(), 1, startAt(0, 0, 0), 10, vehiclestate.State{}, prediction)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(f.Obstacles), test.ShouldEqual, 3)
	test.That(t, len(f.ReferenceLineInfos), test.ShouldEqual, 1)

	boundaries := f.ReferenceLineInfos[0].Boundaries()
	test.That(t, len(boundaries), test.ShouldEqual, 2)

	parked := boundaries[0]
	test.That(t, parked.ID(), test.ShouldEqual, "parked")
	test.That(t, parked.Type(), test.ShouldEqual, stboundary.Unknown)
	test.That(t, parked.CharacteristicLength(), test.ShouldEqual, 4.)
	test.That(t, parked.MinS(), test.ShouldAlmostEqual, 18)
	test.That(t, parked.MaxS(), test.ShouldAlmostEqual, 22)
	test.That(t, parked.MinT(), test.ShouldEqual, 0.)
	test.That(t, parked.MaxT(), test.ShouldEqual, 10.)

	cross := boundaries[1]
	test.That(t, cross.ID(), test.ShouldEqual, "crossing")
	test.That(t, cross.MinT(), test.ShouldEqual, 4.)
	test.That(t, cross.MaxT(), test.ShouldEqual, 6.)
	test.That(t, cross.MinS(), test.ShouldAlmostEqual, 28)

	// a prediction stamped one second after the cycle start is shifted later
	prediction.Header.TimestampSec = 11
	f, err = b.Build(context.Background(), 2, startAt(0, 0, 0), 10, vehiclestate.State{}, prediction)
	test.That(t, err, test.ShouldBeNil)
	cross = f.ReferenceLineInfos[0].Boundaries()[1]
	test.That(t, cross.MinT(), test.ShouldEqual, 5.)
	test.That(t, cross.MaxT(), test.ShouldEqual, 7.)
}

func TestBoundariesRelativeToStart(t *testing.T) {
	b := NewBuilder(DefaultBuilderConfig(), staticLines{straightLine(t, "lane", 0)}, logging.NewTestLogger(t))
	prediction := &messages.PredictionObstacles{Obstacles: []messages.PredictionObstacle{
		{ID: "ahead", X: 50, Speed: 2, Length: 4, Width: 2},
	}}
	f, err := b.Build(context.Background(), 1, startAt(10, 0.5, 0), 0, vehiclestate.State{}, prediction)
	test.That(t, err, test.ShouldBeNil)
	boundary := f.ReferenceLineInfos[0].Boundaries()[0]
	r, err := boundary.BoundarySRange(0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Lo, test.ShouldAlmostEqual, 38)
	r, err = boundary.BoundarySRange(8)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Lo, test.ShouldAlmostEqual, 54)
}

func TestFindDriveReferenceLineInfo(t *testing.T) {
	f := &Frame{}
	test.That(t, f.FindDriveReferenceLineInfo(), test.ShouldBeNil)

	cheap := NewReferenceLineInfo(straightLine(t, "cheap", 0), startAt(0, 0, 0))
	cheap.SetCost(1)
	cheap.SetDrivable(false)
	mid := NewReferenceLineInfo(straightLine(t, "mid", 0), startAt(0, 0, 0))
	mid.SetCost(2)
	costly := NewReferenceLineInfo(straightLine(t, "costly", 0), startAt(0, 0, 0))
	costly.SetCost(1)
	costly.AddCost(2)
	f.ReferenceLineInfos = []*ReferenceLineInfo{cheap, costly, mid}

	test.That(t, f.FindDriveReferenceLineInfo(), test.ShouldEqual, mid)
	mid.SetDrivable(false)
	test.That(t, f.FindDriveReferenceLineInfo(), test.ShouldEqual, costly)
	costly.SetDrivable(false)
	test.That(t, f.FindDriveReferenceLineInfo(), test.ShouldBeNil)
}

func TestFindObstacle(t *testing.T) {
	f := &Frame{Obstacles: []messages.PredictionObstacle{{ID: "a"}, {ID: "b", Length: 3}}}
	o, ok := f.FindObstacle("b")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, o.Length, test.ShouldEqual, 3.)
	_, ok = f.FindObstacle("c")
	test.That(t, ok, test.ShouldBeFalse)
}

func TestDebugData(t *testing.T) {
	info := NewReferenceLineInfo(straightLine(t, "lane", 0), startAt(0, 0, 0))
	boundary, err := stboundary.New([]stboundary.PointPair{
		stboundary.NewPointPair(0, 10, 14),
		stboundary.NewPointPair(2, 10, 14),
	}, stboundary.WithID("car"), stboundary.WithType(stboundary.Follow))
	test.That(t, err, test.ShouldBeNil)
	info.AddBoundary(boundary)
	info.SetCost(4)
	f := &Frame{StartPoint: startAt(0, 0, 0), ReferenceLineInfos: []*ReferenceLineInfo{info}}

	data := f.DebugData()
	test.That(t, data.InitPoint.V, test.ShouldEqual, 5.)
	test.That(t, data.ReferenceLines, test.ShouldResemble, []messages.CandidateDebug{
		{ID: "lane", Length: 100, Cost: 4, IsDrivable: true, IsProtected: true},
	})
	test.That(t, data.Boundaries, test.ShouldResemble, []messages.BoundaryDebug{
		{ID: "car", Type: "FOLLOW", MinS: 10, MaxS: 14, MinT: 0, MaxT: 2},
	})
}
