package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/signalsfoundry/traffic-simulator/core"
	"github.com/signalsfoundry/traffic-simulator/internal/config"
	"github.com/signalsfoundry/traffic-simulator/internal/logging"
	"github.com/signalsfoundry/traffic-simulator/internal/observability"
	"github.com/signalsfoundry/traffic-simulator/kb"
	"github.com/signalsfoundry/traffic-simulator/timectrl"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	scenarioPath := flag.String("scenario", "", "path to a JSON traffic scenario (overrides config)")
	duration := flag.Duration("duration", 0, "total simulated duration (overrides config)")
	tick := flag.Duration("tick", 0, "tick interval (overrides config)")
	accelerated := flag.Bool("accelerated", true, "run in accelerated mode (vs real-time)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *scenarioPath != "" {
		cfg.Simulation.Scenario = *scenarioPath
	}
	if *duration > 0 {
		cfg.Simulation.Duration = *duration
	}
	if *tick > 0 {
		cfg.Simulation.Tick = *tick
	}
	cfg.Simulation.Accelerated = *accelerated

	ctx := context.Background()
	log := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
	})

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	}, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewProximityCollector(nil)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		go func() {
			log.Info(ctx, "metrics endpoint listening", logging.String("addr", cfg.Metrics.ListenAddr))
			if err := http.ListenAndServe(cfg.Metrics.ListenAddr, mux); err != nil {
				log.Error(ctx, "metrics endpoint failed", logging.Err(err))
			}
		}()
	}

	store := kb.NewKnowledgeBase()
	if cfg.Simulation.Scenario == "" {
		return fmt.Errorf("no scenario given; pass -scenario or set simulation.scenario")
	}
	f, err := os.Open(cfg.Simulation.Scenario)
	if err != nil {
		return fmt.Errorf("open scenario: %w", err)
	}
	scenario, err := core.LoadTrafficScenario(store, f)
	f.Close()
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	log.Info(ctx, "scenario loaded",
		logging.String("path", cfg.Simulation.Scenario),
		logging.Int("vehicles", len(scenario.VehicleIDs)),
	)

	start := time.Now().UTC()
	engine := core.NewSimulationEngine(store, start, cfg.Simulation.Tick)
	engine.Proximity.QueryRadius = cfg.Proximity.QueryRadiusM
	engine.Proximity.MinSeparation = cfg.Proximity.MinSeparationM

	mode := timectrl.RealTime
	if cfg.Simulation.Accelerated {
		mode = timectrl.Accelerated
	}
	tc := timectrl.NewTimeController(start, cfg.Simulation.Tick, mode)

	tickIndex := 0
	tc.AddListener(func(simTime time.Time) {
		tickIndex++
		fleet := len(store.ListVehicles())
		spanCtx, span := observability.StartTickSpan(ctx, tickIndex, fleet)
		defer span.End()

		sweepStart := time.Now()
		report, err := engine.Step(simTime)
		if err != nil {
			log.Error(spanCtx, "tick failed", logging.Int("tick", tickIndex), logging.Err(err))
			return
		}
		collector.ObserveTick(fleet, report.ConflictCount(), time.Since(sweepStart))

		for _, vp := range report.Vehicles {
			for _, conflictID := range vp.Conflicts {
				log.Warn(spanCtx, "separation conflict",
					logging.Int("tick", tickIndex),
					logging.String("vehicle", vp.VehicleID),
					logging.String("other", conflictID),
				)
			}
		}
		log.Debug(spanCtx, "tick complete",
			logging.Int("tick", tickIndex),
			logging.Int("vehicles", fleet),
			logging.Int("conflicts", report.ConflictCount()),
		)
	})

	log.Info(ctx, "starting simulation",
		logging.Duration("duration", cfg.Simulation.Duration),
		logging.Duration("tick", cfg.Simulation.Tick),
		logging.Int("mode", int(mode)),
	)
	<-tc.Run(ctx, cfg.Simulation.Duration)
	log.Info(ctx, "simulation complete", logging.Int("ticks", tickIndex))
	return nil
}
