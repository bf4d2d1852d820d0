package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/traffic-simulator/core"
	"github.com/signalsfoundry/traffic-simulator/internal/config"
	"github.com/signalsfoundry/traffic-simulator/internal/httpapi"
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
	listenAddr := flag.String("listen-addr", ":8080", "TCP address the HTTP query server listens on")
	configPath := flag.String("config", "", "path to a YAML configuration file")
	scenarioPath := flag.String("scenario", "", "path to a JSON traffic scenario (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *scenarioPath != "" {
		cfg.Simulation.Scenario = *scenarioPath
	}

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewProximityCollector(nil)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	store := kb.NewKnowledgeBase()
	if cfg.Simulation.Scenario != "" {
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
	}

	start := time.Now().UTC()
	engine := core.NewSimulationEngine(store, start, cfg.Simulation.Tick)
	engine.Proximity.QueryRadius = cfg.Proximity.QueryRadiusM
	engine.Proximity.MinSeparation = cfg.Proximity.MinSeparationM

	// A real-time clock keeps poses live while queries come in.
	tc := timectrl.NewTimeController(start, cfg.Simulation.Tick, timectrl.RealTime)
	tick := 0
	tc.AddListener(func(simTime time.Time) {
		tick++
		fleet := len(store.ListVehicles())
		sweepStart := time.Now()
		report, err := engine.Step(simTime)
		if err != nil {
			log.Error(ctx, "tick failed", logging.Int("tick", tick), logging.Err(err))
			return
		}
		collector.ObserveTick(fleet, report.ConflictCount(), time.Since(sweepStart))
	})

	runCtx, stopClock := context.WithCancel(ctx)
	clockDone := tc.Run(runCtx, 0)

	api := httpapi.NewServer(store, engine.Proximity, log, collector)
	srv := &http.Server{
		Addr:    *listenAddr,
		Handler: api.Handler(),
	}

	go func() {
		log.Info(ctx, "starting proximity query server", logging.String("addr", *listenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server exited", logging.Err(err))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down proximity server")
	stopClock()
	<-clockDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
