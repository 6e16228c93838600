package referenceline

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/planning/logging"
	"go.viam.com/planning/messages"
	"go.viam.com/planning/utils"
	"go.viam.com/planning/vehiclestate"
)

// Config configures reference line generation.
type Config struct {
	UpdateIntervalSec float64 `json:"update_interval_sec"`
	LaneWidth         float64 `json:"lane_width"`
}

// DefaultConfig refreshes reference lines at 20 Hz for 3.5 m lanes.
func DefaultConfig() Config {
	return Config{UpdateIntervalSec: 0.05, LaneWidth: 3.5}
}

// Provider owns the reference lines derived from the latest routing response. Lines are
// regenerated synchronously when the route changes and refreshed by a background updater
// otherwise; readers get the latest snapshot without waiting on either.
type Provider struct {
	cfg    Config
	clk    clock.Clock
	logger logging.Logger

	mu            sync.Mutex
	routing       *messages.RoutingResponse
	generatedFrom *messages.RoutingResponse
	vehicleState  *vehiclestate.State
	lines         []*ReferenceLine
	lastDelay     time.Duration

	workers utils.StoppableWorkers
}

// NewProvider returns a provider with no route.
func NewProvider(cfg Config, clk clock.Clock, logger logging.Logger) *Provider {
	return &Provider{cfg: cfg, clk: clk, logger: logger}
}

// Start launches the background updater.
func (p *Provider) Start() {
	interval := time.Duration(p.cfg.UpdateIntervalSec * float64(time.Second))
	p.workers = utils.NewStoppableWorkerWithTicker(p.clk, interval, func(ctx context.Context) {
		if err := p.update(); err != nil {
			p.logger.CDebugw(ctx, "reference line refresh skipped", "error", err)
		}
	})
}

// Stop stops the background updater and waits for it to exit.
func (p *Provider) Stop() {
	if p.workers != nil {
		p.workers.Stop()
	}
}

// UpdateRoutingResponse records the route to follow. It returns false when the route is empty or
// no reference line can be built from it.
func (p *Provider) UpdateRoutingResponse(routing *messages.RoutingResponse) bool {
	if routing.Empty() {
		p.logger.Warn("routing response is empty")
		return false
	}
	p.mu.Lock()
	p.routing = routing
	stale := IsNewRouting(p.generatedFrom, routing)
	p.mu.Unlock()

	if !stale {
		return true
	}
	if err := p.update(); err != nil {
		p.logger.Errorw("failed to generate reference lines", "error", err)
		return false
	}
	return true
}

// UpdateVehicleState records the vehicle state used to order candidates.
func (p *Provider) UpdateVehicleState(state vehiclestate.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vehicleState = &state
}

// ReferenceLines returns the latest generated lines, the one closest to the vehicle first.
func (p *Provider) ReferenceLines() []*ReferenceLine {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*ReferenceLine(nil), p.lines...)
}

// LastTimeDelay returns how long the latest generation took, in seconds.
func (p *Provider) LastTimeDelay() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastDelay.Seconds()
}

func (p *Provider) update() error {
	start := p.clk.Now()
	p.mu.Lock()
	routing := p.routing
	state := p.vehicleState
	p.mu.Unlock()
	if routing == nil {
		return errors.New("no routing response")
	}

	lines := make([]*ReferenceLine, 0, len(routing.RoadSegments))
	for _, seg := range routing.RoadSegments {
		if len(seg.Waypoints) == 0 {
			continue
		}
		line, err := New(seg.ID, []string{seg.ID}, p.cfg.LaneWidth, seg.Waypoints)
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}
	if state != nil {
		offsets := make(map[string]float64, len(lines))
		for _, line := range lines {
			_, l := line.XYToSL(state.X, state.Y)
			offsets[line.ID] = math.Abs(l)
		}
		sort.SliceStable(lines, func(i, j int) bool { return offsets[lines[i].ID] < offsets[lines[j].ID] })
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.routing != routing {
		// a newer route arrived while generating; it triggers its own update.
		return nil
	}
	p.lines = lines
	p.generatedFrom = routing
	p.lastDelay = p.clk.Since(start)
	return nil
}
