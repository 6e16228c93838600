package messages

// PathPoint is a pose along a path.
type PathPoint struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Theta  float64 `json:"theta"`
	Kappa  float64 `json:"kappa"`
	DKappa float64 `json:"dkappa"`
	S      float64 `json:"s"`
}

// TrajectoryPoint is a path pose with its speed profile sample.
type TrajectoryPoint struct {
	PathPoint    PathPoint `json:"path_point"`
	V            float64   `json:"v"`
	A            float64   `json:"a"`
	RelativeTime float64   `json:"relative_time"`
}

// NotReady carries why no plan was made this cycle.
type NotReady struct {
	Reason string `json:"reason"`
}

// Cruise means the vehicle keeps moving along the plan.
type Cruise struct {
	LaneIDs []string `json:"lane_ids,omitempty"`
}

// StopDecision means the plan ends at a standstill.
type StopDecision struct {
	Reason string  `json:"reason,omitempty"`
	StopS  float64 `json:"stop_s"`
}

// MainDecision holds exactly one of its members.
type MainDecision struct {
	NotReady *NotReady     `json:"not_ready,omitempty"`
	Cruise   *Cruise       `json:"cruise,omitempty"`
	Stop     *StopDecision `json:"stop,omitempty"`
}

// ObjectDecision is the decision made for a single obstacle.
type ObjectDecision struct {
	ID       string `json:"id"`
	Decision string `json:"decision"`
}

// DecisionResult is the decision tree of a cycle.
type DecisionResult struct {
	MainDecision    MainDecision     `json:"main_decision"`
	ObjectDecisions []ObjectDecision `json:"object_decisions,omitempty"`
}

// EStop asks control to brake immediately.
type EStop struct {
	IsEStop bool   `json:"is_estop"`
	Reason  string `json:"reason,omitempty"`
}

// TaskStats is the time spent in one stage of the cycle.
type TaskStats struct {
	Name   string  `json:"name"`
	TimeMs float64 `json:"time_ms"`
}

// LatencyStats is the time breakdown of a cycle.
type LatencyStats struct {
	TotalTimeMs     float64     `json:"total_time_ms"`
	InitFrameTimeMs float64     `json:"init_frame_time_ms"`
	TaskStats       []TaskStats `json:"task_stats,omitempty"`
}

// EngageAdvice is the engage recommendation and its reason.
type EngageAdvice struct {
	Advice EngageAdviceKind `json:"advice"`
	Reason string           `json:"reason,omitempty"`
}

// CandidateDebug summarizes one evaluated reference line candidate.
type CandidateDebug struct {
	ID          string  `json:"id"`
	Length      float64 `json:"length"`
	Cost        float64 `json:"cost"`
	IsDrivable  bool    `json:"is_drivable"`
	IsProtected bool    `json:"is_protected"`
}

// BoundaryDebug summarizes one st boundary.
type BoundaryDebug struct {
	ID   string  `json:"id"`
	Type string  `json:"type"`
	MinS float64 `json:"min_s"`
	MaxS float64 `json:"max_s"`
	MinT float64 `json:"min_t"`
	MaxT float64 `json:"max_t"`
}

// PlanningData is the optional debug payload.
type PlanningData struct {
	InitPoint      *TrajectoryPoint `json:"init_point,omitempty"`
	ReferenceLines []CandidateDebug `json:"reference_lines,omitempty"`
	Boundaries     []BoundaryDebug  `json:"boundaries,omitempty"`
}

// Debug wraps debug data attached to the output.
type Debug struct {
	PlanningData PlanningData `json:"planning_data"`
}

// ADCTrajectory is the message produced by every planning cycle.
type ADCTrajectory struct {
	Header           Header            `json:"header"`
	PlanID           string            `json:"plan_id,omitempty"`
	TotalPathLength  float64           `json:"total_path_length"`
	TotalPathTime    float64           `json:"total_path_time"`
	Gear             Gear              `json:"gear"`
	RoutingHeader    *Header           `json:"routing_header,omitempty"`
	TrajectoryPoints []TrajectoryPoint `json:"trajectory_point"`
	Decision         DecisionResult    `json:"decision"`
	EStop            *EStop            `json:"estop,omitempty"`
	RightOfWay       RightOfWayStatus  `json:"right_of_way_status"`
	LaneIDs          []string          `json:"lane_id,omitempty"`
	IsReplan         bool              `json:"is_replan"`
	LatencyStats     LatencyStats      `json:"latency_stats"`
	EngageAdvice     *EngageAdvice     `json:"engage_advice,omitempty"`
	Debug            *Debug            `json:"debug,omitempty"`
}

// SetNotReady replaces the main decision with a not-ready decision.
func (t *ADCTrajectory) SetNotReady(reason string) {
	t.Decision.MainDecision = MainDecision{NotReady: &NotReady{Reason: reason}}
}

// NotReadyReason returns the not-ready reason, or "" when the cycle produced a decision.
func (t *ADCTrajectory) NotReadyReason() string {
	if t.Decision.MainDecision.NotReady == nil {
		return ""
	}
	return t.Decision.MainDecision.NotReady.Reason
}

// IsEStop reports whether the message asks for an emergency stop.
func (t *ADCTrajectory) IsEStop() bool {
	return t.EStop != nil && t.EStop.IsEStop
}

// AddTaskStats appends one latency entry.
func (t *ADCTrajectory) AddTaskStats(name string, timeMs float64) {
	t.LatencyStats.TaskStats = append(t.LatencyStats.TaskStats, TaskStats{Name: name, TimeMs: timeMs})
}

// Clone returns a deep copy of the points and the slices the controller mutates.
func (t *ADCTrajectory) Clone() *ADCTrajectory {
	if t == nil {
		return nil
	}
	cp := *t
	cp.TrajectoryPoints = append([]TrajectoryPoint(nil), t.TrajectoryPoints...)
	cp.LaneIDs = append([]string(nil), t.LaneIDs...)
	cp.LatencyStats.TaskStats = append([]TaskStats(nil), t.LatencyStats.TaskStats...)
	return &cp
}
