// Package app assembles the sync daemon: local store, transport client,
// orchestrator, background trigger worker, and the status API server. It
// owns startup order and graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ortano/docsync/internal/adapter"
	"github.com/ortano/docsync/internal/config"
	handlerhttp "github.com/ortano/docsync/internal/handler/http"
	"github.com/ortano/docsync/internal/logger"
	"github.com/ortano/docsync/internal/service"
	"github.com/ortano/docsync/internal/store"
	"github.com/ortano/docsync/internal/workers"
)

// TriggerReasonStartup labels the cycle requested right after boot.
const TriggerReasonStartup = "startup"

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg *config.StructuredConfig
	log *logger.Logger

	db           *store.DB
	mutations    store.MutationStore
	orchestrator service.Orchestrator
	trigger      workers.TriggerJob
	statusServer *http.Server
}

// New wires every component from the merged configuration. The returned App
// is inert until Run is called.
func New(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger) (*App, error) {
	db, err := store.NewConnectSQLite(ctx, cfg.Storage.DB, log)
	if err != nil {
		return nil, fmt.Errorf("connect local database: %w", err)
	}
	if err = db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate local database: %w", err)
	}

	mutations := store.NewLocalStore(db, cfg.Sync, log)

	tokens := adapter.NewCachingTokenProvider(adapter.StaticTokenSource(cfg.Adapter.AuthToken), log)
	transport, err := adapter.NewHTTPSyncTransport(cfg.Adapter, tokens, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sync transport: %w", err)
	}

	orchestrator := service.NewOrchestrator(mutations, transport, cfg.Sync, log)

	a := &App{
		cfg:          cfg,
		log:          log,
		db:           db,
		mutations:    mutations,
		orchestrator: orchestrator,
		trigger:      workers.NewTriggerJob(orchestrator),
	}

	if cfg.Status.Address != "" {
		handler := handlerhttp.NewHandler(orchestrator, mutations, log)
		a.statusServer = &http.Server{
			Addr:    cfg.Status.Address,
			Handler: handler.Init(),
		}
	}

	return a, nil
}

// Run starts the engine and blocks until ctx is canceled, then shuts every
// component down in reverse startup order.
func (a *App) Run(ctx context.Context) error {
	a.orchestrator.Start(ctx)
	a.trigger.Start(ctx, a.cfg.Sync.Interval)

	serverErrors := make(chan error, 1)
	if a.statusServer != nil {
		go func() {
			a.log.Info().Str("address", a.statusServer.Addr).Msg("status api listening")
			if err := a.statusServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErrors <- err
			}
		}()
	}

	a.orchestrator.TriggerSync(TriggerReasonStartup)

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serverErrors:
		runErr = fmt.Errorf("status api: %w", err)
	}

	a.shutdown()
	return runErr
}

func (a *App) shutdown() {
	a.log.Info().Msg("shutting down")

	if a.statusServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.statusServer.Shutdown(shutdownCtx); err != nil {
			a.log.Err(err).Msg("status api shutdown")
		}
		cancel()
	}

	a.trigger.Stop()
	a.orchestrator.Stop()

	if err := a.db.Close(); err != nil {
		a.log.Err(err).Msg("close local database")
	}

	a.log.Info().Msg("shutdown complete")
}
