package traffic

import (
	"context"
	"math"
	"testing"

	"go.viam.com/test"

	"go.viam.com/planning/frame"
	"go.viam.com/planning/logging"
	"go.viam.com/planning/messages"
	"go.viam.com/planning/referenceline"
	"go.viam.com/planning/stboundary"
)

func candidate(t *testing.T, length, startX float64, boundaries ...*stboundary.StBoundary) *frame.ReferenceLineInfo {
	t.Helper()
	line, err := referenceline.New("lane", []string{"lane"}, 3.5, []messages.Waypoint{{X: 0}, {X: length}})
	test.That(t, err, test.ShouldBeNil)
	info := frame.NewReferenceLineInfo(line, messages.TrajectoryPoint{PathPoint: messages.PathPoint{X: startX}})
	info.SetBoundaries(boundaries)
	return info
}

func boundary(t *testing.T, id string, t0, lower, upper float64) *stboundary.StBoundary {
	t.Helper()
	b, err := stboundary.New([]stboundary.PointPair{
		stboundary.NewPointPair(t0, lower, upper),
		stboundary.NewPointPair(t0+2, lower, upper),
	}, stboundary.WithID(id))
	test.That(t, err, test.ShouldBeNil)
	return b
}

func idsAndTypes(info *frame.ReferenceLineInfo) map[string]stboundary.BoundaryType {
	out := map[string]stboundary.BoundaryType{}
	for _, b := range info.Boundaries() {
		out[b.ID()] = b.Type()
	}
	return out
}

func TestNewDeciderUnknownRule(t *testing.T) {
	_, err := NewDecider(Config{Rules: []string{"stop_sign"}}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "stop_sign")
}

func TestEvaluate(t *testing.T) {
	d, err := NewDecider(DefaultConfig(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	f := &frame.Frame{Obstacles: []messages.PredictionObstacle{
		{ID: "parked", IsStatic: true},
		{ID: "lead", Heading: 0.2},
		{ID: "crossing", Heading: math.Pi / 2},
		{ID: "oncoming", Heading: math.Pi},
		{ID: "behind"},
	}}
	info := candidate(t, 100, 0,
		boundary(t, "parked", 0, 30, 34),
		boundary(t, "lead", 0, 10, 14),
		boundary(t, "crossing", 1, 20, 22),
		boundary(t, "oncoming", 0, 40, 44),
		boundary(t, "behind", 0, -10, -6),
		boundary(t, "untracked", 0, 50, 54),
	)
	test.That(t, d.Evaluate(context.Background(), f, info), test.ShouldBeNil)
	test.That(t, info.IsDrivable(), test.ShouldBeTrue)
	test.That(t, idsAndTypes(info), test.ShouldResemble, map[string]stboundary.BoundaryType{
		"parked":    stboundary.Stop,
		"lead":      stboundary.Follow,
		"crossing":  stboundary.Yield,
		"oncoming":  stboundary.Yield,
		"untracked": stboundary.Follow,
	})
}

func TestBlockedStart(t *testing.T) {
	d, err := NewDecider(DefaultConfig(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	f := &frame.Frame{Obstacles: []messages.PredictionObstacle{{ID: "on_top", IsStatic: true}, {ID: "later"}}}

	blocked := candidate(t, 100, 0, boundary(t, "on_top", 0, -1, 3))
	test.That(t, d.Evaluate(context.Background(), f, blocked), test.ShouldBeNil)
	test.That(t, blocked.IsDrivable(), test.ShouldBeFalse)

	// an obstacle that covers the start point only later does not block it now
	later := candidate(t, 100, 0, boundary(t, "later", 1, -1, 3))
	test.That(t, d.Evaluate(context.Background(), f, later), test.ShouldBeNil)
	test.That(t, later.IsDrivable(), test.ShouldBeTrue)
}

func TestDestination(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	d, err := NewDecider(Config{Rules: []string{Destination}, DestinationPullOverDistance: 20}, logger)
	test.That(t, err, test.ShouldBeNil)

	f := &frame.Frame{}
	far := candidate(t, 100, 50)
	test.That(t, d.Evaluate(context.Background(), f, far), test.ShouldBeNil)
	test.That(t, f.PlanningStatus.PullOver.InPullOver, test.ShouldBeFalse)

	near := candidate(t, 100, 85)
	test.That(t, d.Evaluate(context.Background(), f, near), test.ShouldBeNil)
	test.That(t, near.IsDrivable(), test.ShouldBeTrue)
	test.That(t, f.PlanningStatus.PullOver, test.ShouldResemble, frame.PullOverStatus{InPullOver: true, ReferenceLineID: "lane"})
	test.That(t, logs.FilterMessageSnippet("pulling over").Len(), test.ShouldEqual, 1)

	// a pull over in progress is not started again
	test.That(t, d.Evaluate(context.Background(), f, near), test.ShouldBeNil)
	test.That(t, logs.FilterMessageSnippet("pulling over").Len(), test.ShouldEqual, 1)
}

func TestReferenceLineEnd(t *testing.T) {
	d, err := NewDecider(Config{Rules: []string{ReferenceLineEnd}, MinReferenceLineLength: 5}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	short := candidate(t, 100, 97)
	test.That(t, d.Evaluate(context.Background(), &frame.Frame{}, short), test.ShouldBeNil)
	test.That(t, short.IsDrivable(), test.ShouldBeFalse)

	long := candidate(t, 100, 50)
	test.That(t, d.Evaluate(context.Background(), &frame.Frame{}, long), test.ShouldBeNil)
	test.That(t, long.IsDrivable(), test.ShouldBeTrue)
}

func TestRulesRunInOrder(t *testing.T) {
	f := &frame.Frame{Obstacles: []messages.PredictionObstacle{{ID: "parked", IsStatic: true}}}

	// unclassified boundaries never block the start point
	d, err := NewDecider(Config{Rules: []string{BlockedStart, ObstacleClassifier}, CrossingHeadingDeg: 45, BlockedStartWindowSec: 0.1},
		logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	info := candidate(t, 100, 0, boundary(t, "parked", 0, -1, 3))
	test.That(t, d.Evaluate(context.Background(), f, info), test.ShouldBeNil)
	test.That(t, info.IsDrivable(), test.ShouldBeTrue)
	test.That(t, info.Boundaries()[0].Type(), test.ShouldEqual, stboundary.Stop)
}
