package frame

import (
	"math"
	"testing"

	"go.viam.com/test"

	"go.viam.com/planning/messages"
	"go.viam.com/planning/stboundary"
)

func TestReferenceLineInfoLane(t *testing.T) {
	line := straightLine(t, "lane", 0)

	onLane := NewReferenceLineInfo(line, startAt(10, 1, 0))
	s, l := onLane.AdcSL()
	test.That(t, s, test.ShouldAlmostEqual, 10)
	test.That(t, l, test.ShouldAlmostEqual, 1)
	test.That(t, onLane.IsChangeLanePath(), test.ShouldBeFalse)
	test.That(t, onLane.RightOfWay(), test.ShouldEqual, messages.Protected)
	test.That(t, onLane.TargetLaneIDs(), test.ShouldResemble, []string{"lane"})

	changing := NewReferenceLineInfo(line, startAt(10, 3.5, 0))
	test.That(t, changing.IsChangeLanePath(), test.ShouldBeTrue)
	test.That(t, changing.RightOfWay(), test.ShouldEqual, messages.Unprotected)
}

func TestExportDecision(t *testing.T) {
	info := NewReferenceLineInfo(straightLine(t, "lane", 0), startAt(0, 0, 0))
	stop, err := stboundary.New([]stboundary.PointPair{
		stboundary.NewPointPair(0, 10, 14),
		stboundary.NewPointPair(2, 10, 14),
	}, stboundary.WithID("parked"), stboundary.WithType(stboundary.Stop))
	test.That(t, err, test.ShouldBeNil)
	info.AddBoundary(stop)
	info.SetMainDecision(messages.MainDecision{Stop: &messages.StopDecision{StopS: 9}})

	var d messages.DecisionResult
	info.ExportDecision(&d)
	test.That(t, d.MainDecision.Stop.StopS, test.ShouldEqual, 9.)
	test.That(t, d.ObjectDecisions, test.ShouldResemble, []messages.ObjectDecision{{ID: "parked", Decision: "STOP"}})

	info.SetBoundaries(nil)
	test.That(t, info.Boundaries(), test.ShouldBeEmpty)
}

func TestExportEngageAdvice(t *testing.T) {
	line := straightLine(t, "lane", 0)

	info := NewReferenceLineInfo(line, startAt(10, 0, 0.1))
	test.That(t, info.ExportEngageAdvice(messages.CompleteManual).Advice, test.ShouldEqual, messages.ReadyToEngage)
	test.That(t, info.ExportEngageAdvice(messages.CompleteAutoDrive).Advice, test.ShouldEqual, messages.KeepEngaged)

	misaligned := NewReferenceLineInfo(line, startAt(10, 0, math.Pi/4))
	advice := misaligned.ExportEngageAdvice(messages.CompleteManual)
	test.That(t, advice.Advice, test.ShouldEqual, messages.DisallowEngage)
	test.That(t, advice.Reason, test.ShouldEqual, "Vehicle heading is not aligned")

	offLane := NewReferenceLineInfo(line, startAt(10, 4, 0))
	test.That(t, offLane.ExportEngageAdvice(messages.CompleteManual).Reason, test.ShouldEqual, "Not on reference line")

	info.SetDrivable(false)
	test.That(t, info.ExportEngageAdvice(messages.CompleteAutoDrive).Reason, test.ShouldEqual, "Reference line not drivable")
}
