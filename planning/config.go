package planning

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/planning/frame"
	"go.viam.com/planning/planner"
	"go.viam.com/planning/referenceline"
	"go.viam.com/planning/traffic"
	"go.viam.com/planning/trajectory"
)

// Config configures the planning cycle and the default collaborators.
type Config struct {
	LoopRateHz                  float64 `json:"loop_rate_hz"`
	UseNavigationMode           bool    `json:"use_navigation_mode"`
	EstimateCurrentVehicleState bool    `json:"estimate_current_vehicle_state"`
	// the vehicle state is moved forward to the cycle start only when it is younger than this.
	MaxStateExtrapolationSec float64 `json:"max_state_extrapolation_sec"`
	PublishEstop             bool    `json:"publish_estop"`
	UsePlanningFallback      bool    `json:"use_planning_fallback"`
	// horizon and sampling of the straight cruise trajectory used as navigation mode fallback.
	NavigationFallbackCruiseTimeSec float64 `json:"navigation_fallback_cruise_time_sec"`
	FallbackTimeStepSec             float64 `json:"fallback_time_step_sec"`
	// test mode publishes relative times unshifted and stops after TestDurationSec when positive.
	TestMode             bool    `json:"test_mode"`
	TestDurationSec      float64 `json:"test_duration_sec"`
	FrameHistoryCapacity int     `json:"frame_history_capacity"`
	EnableRecordDebug    bool    `json:"enable_record_debug"`
	EnablePrediction     bool    `json:"enable_prediction"`
	// cycle latency percentiles are logged every this many cycles; zero disables the report.
	LatencyReportCycles int `json:"latency_report_cycles"`

	Planner       planner.Config             `json:"planner"`
	TrafficRules  traffic.Config             `json:"traffic_rules"`
	Stitching     trajectory.StitchingConfig `json:"stitching"`
	ReferenceLine referenceline.Config       `json:"reference_line"`
	Frame         frame.BuilderConfig        `json:"frame"`
	Record        RecordConfig               `json:"record"`
}

// RecordConfig configures the trajectory recorder. Recording is off when Dir is empty.
type RecordConfig struct {
	Dir        string `json:"dir,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
}

// DefaultConfig returns the configuration used for every field a config file leaves out.
func DefaultConfig() Config {
	return Config{
		LoopRateHz:                      10,
		EstimateCurrentVehicleState:     true,
		MaxStateExtrapolationSec:        0.020,
		UsePlanningFallback:             true,
		NavigationFallbackCruiseTimeSec: 4.0,
		FallbackTimeStepSec:             0.1,
		FrameHistoryCapacity:            3,
		EnablePrediction:                true,
		LatencyReportCycles:             100,
		Planner:                         planner.Config{Type: planner.SpeedType},
		TrafficRules:                    traffic.DefaultConfig(),
		Stitching:                       trajectory.DefaultStitchingConfig(),
		ReferenceLine:                   referenceline.DefaultConfig(),
		Frame:                           frame.DefaultBuilderConfig(),
		Record:                          RecordConfig{MaxSizeMB: 100, MaxBackups: 3},
	}
}

// LoadConfig reads a JSON config file on top of DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "cannot read planning config")
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "cannot parse planning config %q", path)
	}
	if err := cfg.Validate(path); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.LoopRateHz <= 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "loop_rate_hz")
	}
	if cfg.Planner.Type == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "planner.type")
	}
	if cfg.MaxStateExtrapolationSec < 0 {
		return goutils.NewConfigValidationError(path, errors.New("max_state_extrapolation_sec must not be negative"))
	}
	if cfg.UsePlanningFallback && cfg.UseNavigationMode {
		if cfg.FallbackTimeStepSec <= 0 {
			return goutils.NewConfigValidationError(path, errors.New("fallback_time_step_sec must be positive"))
		}
	}
	if cfg.FrameHistoryCapacity < 1 {
		return goutils.NewConfigValidationError(path, errors.New("frame_history_capacity must be at least 1"))
	}
	if cfg.TestDurationSec < 0 {
		return goutils.NewConfigValidationError(path, errors.New("test_duration_sec must not be negative"))
	}
	if cfg.ReferenceLine.UpdateIntervalSec <= 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "reference_line.update_interval_sec")
	}
	if cfg.ReferenceLine.LaneWidth <= 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "reference_line.lane_width")
	}
	if cfg.Frame.PlanningHorizonSec <= 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "frame.planning_horizon_sec")
	}
	if cfg.Record.Dir != "" && cfg.Record.MaxSizeMB <= 0 {
		return goutils.NewConfigValidationError(path, errors.New("record.max_size_mb must be positive"))
	}
	return nil
}

// Period is the nominal duration of one cycle.
func (cfg *Config) Period() time.Duration {
	return time.Duration(float64(time.Second) / cfg.LoopRateHz)
}
