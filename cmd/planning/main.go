// Package main runs the planning loop against a simulated vehicle.
package main

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/planning/internal/trajfile"
	"go.viam.com/planning/logging"
	"go.viam.com/planning/planning"
	"go.viam.com/planning/sim"
)

var logger = logging.NewLogger("planning")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	Scenario  string `flag:"0,required,usage=scenario file"`
	Config    string `flag:"config,usage=planning config file"`
	RecordDir string `flag:"record-dir,usage=directory to record published trajectories to"`
	SimRateHz int    `flag:"sim-rate,usage=simulated vehicle update rate"`
	Debug     bool   `flag:"debug,usage=enable debug logging"`
}

func mainWithArgs(ctx context.Context, args []string, logger logging.Logger) (err error) {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	if argsParsed.Debug {
		logger.SetLevel(logging.DEBUG)
	}
	if argsParsed.SimRateHz <= 0 {
		argsParsed.SimRateHz = 100
	}

	cfg := planning.DefaultConfig()
	if argsParsed.Config != "" {
		if cfg, err = planning.LoadConfig(argsParsed.Config); err != nil {
			return err
		}
	}
	if argsParsed.RecordDir != "" {
		cfg.Record.Dir = argsParsed.RecordDir
	}
	scn, err := sim.LoadScenario(argsParsed.Scenario)
	if err != nil {
		return err
	}

	clk := clock.New()
	inputs := planning.NewInputs()
	vehicle := sim.NewVehicle(scn, inputs, clk, logger.Sublogger("sim"))
	publishers := planning.MultiPublisher{vehicle}
	if cfg.Record.Dir != "" {
		recorder, err := trajfile.NewRecorder(cfg.Record.Dir, "planning.jsonl", cfg.Record.MaxSizeMB, cfg.Record.MaxBackups)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Combine(err, recorder.Close())
		}()
		publishers = append(publishers, recorder)
	}

	ctrl, err := planning.NewDefault(cfg, inputs, publishers, clk, logger)
	if err != nil {
		return err
	}
	scheduler, err := planning.NewScheduler(cfg, ctrl, clk, logger.Sublogger("scheduler"))
	if err != nil {
		return err
	}

	ctrl.Start()
	vehicle.Start(time.Second / time.Duration(argsParsed.SimRateHz))
	if err := scheduler.Start(ctx); err != nil {
		vehicle.Stop()
		ctrl.Stop()
		return err
	}

	select {
	case <-ctx.Done():
	case <-scheduler.Done():
	}

	err = multierr.Combine(err, scheduler.Shutdown())
	vehicle.Stop()
	ctrl.Stop()

	pose := vehicle.Pose()
	logger.Infow("planning stopped", "x", pose.X, "y", pose.Y, "speed", pose.Speed)
	if summary, err := ctrl.Latency().Summary(); err == nil {
		logger.Infow("cycle latency", "cycles", summary.Count, "p50_ms", summary.P50, "p95_ms", summary.P95, "max_ms", summary.Max)
	}
	return err
}
