package planning

import (
	"sync"

	"go.viam.com/planning/messages"
)

// Snapshot is the set of latest messages a cycle plans from. Absent inputs are nil.
type Snapshot struct {
	Localization *messages.Localization
	Chassis      *messages.Chassis
	Routing      *messages.RoutingResponse
	Prediction   *messages.PredictionObstacles
	MapReady     bool
}

// Inputs buffers the latest message of every input. Producers write from their own goroutines and
// the controller observes all of them at once at the start of a cycle. Stored messages must not be
// modified after they are set.
type Inputs struct {
	mu     sync.RWMutex
	latest Snapshot
}

// NewInputs returns an empty buffer.
func NewInputs() *Inputs {
	return &Inputs{}
}

// SetLocalization stores the latest localization.
func (in *Inputs) SetLocalization(loc *messages.Localization) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.latest.Localization = loc
}

// SetChassis stores the latest chassis report.
func (in *Inputs) SetChassis(chassis *messages.Chassis) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.latest.Chassis = chassis
}

// SetRouting stores the latest routing response.
func (in *Inputs) SetRouting(routing *messages.RoutingResponse) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.latest.Routing = routing
}

// SetPrediction stores the latest prediction.
func (in *Inputs) SetPrediction(prediction *messages.PredictionObstacles) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.latest.Prediction = prediction
}

// SetMapReady records whether map data is loaded.
func (in *Inputs) SetMapReady(ready bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.latest.MapReady = ready
}

// Observe returns the latest messages without waiting on producers beyond the lock.
func (in *Inputs) Observe() Snapshot {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.latest
}

// CheckInput returns why snap cannot be planned from, or "" when it can.
func CheckInput(snap Snapshot, navigationMode bool) string {
	switch {
	case snap.Localization == nil:
		return "localization not ready"
	case snap.Chassis == nil:
		return "chassis not ready"
	case !navigationMode && snap.Routing.Empty():
		return "routing not ready"
	case !snap.MapReady:
		return "map not ready"
	default:
		return ""
	}
}
