package frame

import (
	"math"

	"github.com/samber/lo"

	"go.viam.com/planning/messages"
	"go.viam.com/planning/referenceline"
	"go.viam.com/planning/stboundary"
	"go.viam.com/planning/trajectory"
	"go.viam.com/planning/utils"
)

// a vehicle heading further than this from the lane is not advised to engage.
const maxEngageHeadingDiff = math.Pi / 6

// ReferenceLineInfo is one candidate of a cycle: a reference line, the st boundaries of the
// obstacles on it, and the trajectory and cost the planner assigns to it.
type ReferenceLineInfo struct {
	referenceLine *referenceline.ReferenceLine
	adcS          float64
	adcL          float64
	adcHeading    float64

	boundaries []*stboundary.StBoundary
	drivable   bool
	cost       float64
	trajectory trajectory.Trajectory

	mainDecision messages.MainDecision
	taskStats    []messages.TaskStats
}

// NewReferenceLineInfo returns a drivable candidate following line from the start point.
func NewReferenceLineInfo(line *referenceline.ReferenceLine, start messages.TrajectoryPoint) *ReferenceLineInfo {
	s, l := line.XYToSL(start.PathPoint.X, start.PathPoint.Y)
	return &ReferenceLineInfo{
		referenceLine: line,
		adcS:          s,
		adcL:          l,
		adcHeading:    start.PathPoint.Theta,
		drivable:      true,
	}
}

// ReferenceLine returns the followed line.
func (info *ReferenceLineInfo) ReferenceLine() *referenceline.ReferenceLine { return info.referenceLine }

// AdcSL returns the projection of the planning start point on the reference line.
func (info *ReferenceLineInfo) AdcSL() (float64, float64) { return info.adcS, info.adcL }

// Boundaries returns the st boundaries of the candidate. Boundary s is measured from the start
// point projection.
func (info *ReferenceLineInfo) Boundaries() []*stboundary.StBoundary {
	return append([]*stboundary.StBoundary(nil), info.boundaries...)
}

// AddBoundary attaches a boundary to the candidate.
func (info *ReferenceLineInfo) AddBoundary(b *stboundary.StBoundary) {
	info.boundaries = append(info.boundaries, b)
}

// SetBoundaries replaces every boundary of the candidate.
func (info *ReferenceLineInfo) SetBoundaries(bs []*stboundary.StBoundary) {
	info.boundaries = append([]*stboundary.StBoundary(nil), bs...)
}

// IsDrivable reports whether the candidate may be selected.
func (info *ReferenceLineInfo) IsDrivable() bool { return info.drivable }

// SetDrivable marks the candidate.
func (info *ReferenceLineInfo) SetDrivable(drivable bool) { info.drivable = drivable }

// Cost returns the planner cost of the candidate.
func (info *ReferenceLineInfo) Cost() float64 { return info.cost }

// SetCost sets the planner cost.
func (info *ReferenceLineInfo) SetCost(cost float64) { info.cost = cost }

// AddCost adds to the planner cost.
func (info *ReferenceLineInfo) AddCost(cost float64) { info.cost += cost }

// Trajectory returns the planned trajectory of the candidate.
func (info *ReferenceLineInfo) Trajectory() trajectory.Trajectory { return info.trajectory }

// SetTrajectory sets the planned trajectory.
func (info *ReferenceLineInfo) SetTrajectory(tr trajectory.Trajectory) { info.trajectory = tr }

// SetMainDecision records the planner decision for the candidate.
func (info *ReferenceLineInfo) SetMainDecision(d messages.MainDecision) { info.mainDecision = d }

// AddTaskStats records time spent on the candidate.
func (info *ReferenceLineInfo) AddTaskStats(name string, timeMs float64) {
	info.taskStats = append(info.taskStats, messages.TaskStats{Name: name, TimeMs: timeMs})
}

// TaskStats returns the recorded latencies.
func (info *ReferenceLineInfo) TaskStats() []messages.TaskStats {
	return append([]messages.TaskStats(nil), info.taskStats...)
}

// IsChangeLanePath reports whether the vehicle starts outside the lane of the candidate.
func (info *ReferenceLineInfo) IsChangeLanePath() bool {
	return !info.referenceLine.IsOnLane(info.adcS, info.adcL)
}

// RightOfWay is protected when the candidate keeps the current lane.
func (info *ReferenceLineInfo) RightOfWay() messages.RightOfWayStatus {
	if info.IsChangeLanePath() {
		return messages.Unprotected
	}
	return messages.Protected
}

// TargetLaneIDs returns the lanes the candidate drives on.
func (info *ReferenceLineInfo) TargetLaneIDs() []string {
	return lo.Uniq(info.referenceLine.LaneIDs)
}

// ExportDecision writes the main decision and one object decision per boundary into d.
func (info *ReferenceLineInfo) ExportDecision(d *messages.DecisionResult) {
	d.MainDecision = info.mainDecision
	d.ObjectDecisions = lo.Map(info.boundaries, func(b *stboundary.StBoundary, _ int) messages.ObjectDecision {
		return messages.ObjectDecision{ID: b.ID(), Decision: stboundary.TypeName(b.Type())}
	})
}

// ExportEngageAdvice advises whether autonomy may be engaged on this candidate.
func (info *ReferenceLineInfo) ExportEngageAdvice(mode messages.DrivingMode) messages.EngageAdvice {
	switch {
	case !info.drivable:
		return messages.EngageAdvice{Advice: messages.DisallowEngage, Reason: "Reference line not drivable"}
	case info.IsChangeLanePath():
		return messages.EngageAdvice{Advice: messages.DisallowEngage, Reason: "Not on reference line"}
	}
	lineHeading := info.referenceLine.HeadingAt(info.adcS)
	if math.Abs(utils.NormalizeAngle(info.adcHeading-lineHeading)) >= maxEngageHeadingDiff {
		return messages.EngageAdvice{Advice: messages.DisallowEngage, Reason: "Vehicle heading is not aligned"}
	}
	if mode == messages.CompleteAutoDrive {
		return messages.EngageAdvice{Advice: messages.KeepEngaged}
	}
	return messages.EngageAdvice{Advice: messages.ReadyToEngage}
}

// DebugInfo summarizes the candidate.
func (info *ReferenceLineInfo) DebugInfo() messages.CandidateDebug {
	return messages.CandidateDebug{
		ID:          info.referenceLine.ID,
		Length:      info.referenceLine.Length(),
		Cost:        info.cost,
		IsDrivable:  info.drivable,
		IsProtected: info.RightOfWay() == messages.Protected,
	}
}
