package main

import (
	"context"
	"fmt"

	"devmcp-agent/src/broker"
	"devmcp-agent/src/build"
	"devmcp-agent/src/config"
	"devmcp-agent/src/logger"
	"devmcp-agent/src/notify"
	"devmcp-agent/src/store"
)

// app holds the components shared by the serve and build commands.
type app struct {
	cfg          *config.Config
	logger       logger.Logger
	results      store.ResultStore
	broker       broker.Broker
	orchestrator *build.Orchestrator
	closers      []func() error
}

// newApp wires the result store, the optional event broker and the orchestrator.
func newApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: log}

	if cfg.PostgresDSN != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.PostgresDSN, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
		if err := pg.Load(ctx); err != nil {
			log.Error("[App] Could not load last build result: %v", err)
		}
		a.results = pg
		a.closers = append(a.closers, pg.Close)
		log.Info("[App] Mirroring build results to Postgres")
	} else {
		a.results = store.NewMemoryStore()
	}

	opts := []build.Option{build.WithLogger(log)}
	if cfg.EventsEnabled() {
		rp, err := broker.NewRedpandaBroker(cfg.RedpandaBrokers, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to Redpanda: %w", err)
		}
		a.broker = rp
		a.closers = append(a.closers, rp.Close)
		opts = append(opts, build.WithEventObserver(notify.NewBrokerObserver(rp, cfg.EventsTopic)))
		log.Info("[App] Publishing build events to %s", cfg.EventsTopic)
	}

	a.orchestrator = build.NewOrchestrator(a.results, opts...)
	return a, nil
}

// Close releases connections in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("[App] Close failed: %v", err)
		}
	}
	a.closers = nil
}

// newEventsBroker connects a consumer-side broker for the events command.
func newEventsBroker(cfg *config.Config, log logger.Logger) (broker.Broker, error) {
	rp, err := broker.NewRedpandaBroker(cfg.RedpandaBrokers, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redpanda: %w", err)
	}
	return rp, nil
}
