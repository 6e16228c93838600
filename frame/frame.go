// Package frame holds the per-cycle planning frame, its reference line candidates and the
// bounded history of past frames.
package frame

import (
	"github.com/samber/lo"

	"go.viam.com/planning/messages"
	"go.viam.com/planning/stboundary"
	"go.viam.com/planning/vehiclestate"
)

// PullOverStatus is the progress of a pull over maneuver.
type PullOverStatus struct {
	InPullOver bool
	// the reference line whose end triggered the pull over.
	ReferenceLineID string
}

// PlanningStatus is the part of the planner state that rules may change. It is seeded from the
// previous cycle and read back once the rules have run.
type PlanningStatus struct {
	PullOver PullOverStatus
}

// Frame is everything one planning cycle works on.
type Frame struct {
	SequenceNum        uint32
	StartPoint         messages.TrajectoryPoint
	StartTime          float64
	VehicleState       vehiclestate.State
	Obstacles          []messages.PredictionObstacle
	ReferenceLineInfos []*ReferenceLineInfo
	PlanningStatus     PlanningStatus

	// output of the cycle, set once it is assembled.
	Trajectory *messages.ADCTrajectory
}

// FindDriveReferenceLineInfo returns the drivable candidate with the lowest cost, or nil.
func (f *Frame) FindDriveReferenceLineInfo() *ReferenceLineInfo {
	drivable := lo.Filter(f.ReferenceLineInfos, func(info *ReferenceLineInfo, _ int) bool {
		return info.IsDrivable()
	})
	if len(drivable) == 0 {
		return nil
	}
	return lo.MinBy(drivable, func(a, b *ReferenceLineInfo) bool { return a.Cost() < b.Cost() })
}

// FindObstacle looks up an obstacle by id.
func (f *Frame) FindObstacle(id string) (messages.PredictionObstacle, bool) {
	return lo.Find(f.Obstacles, func(o messages.PredictionObstacle) bool { return o.ID == id })
}

// DebugData summarizes the candidates and boundaries of the frame.
func (f *Frame) DebugData() messages.PlanningData {
	start := f.StartPoint
	data := messages.PlanningData{InitPoint: &start}
	for _, info := range f.ReferenceLineInfos {
		data.ReferenceLines = append(data.ReferenceLines, info.DebugInfo())
		for _, b := range info.boundaries {
			data.Boundaries = append(data.Boundaries, messages.BoundaryDebug{
				ID:   b.ID(),
				Type: stboundary.TypeName(b.Type()),
				MinS: b.MinS(),
				MaxS: b.MaxS(),
				MinT: b.MinT(),
				MaxT: b.MaxT(),
			})
		}
	}
	return data
}
