package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/grave-assignment/internal/config"
	"github.com/iliyamo/grave-assignment/internal/database"
	"github.com/iliyamo/grave-assignment/internal/middleware"
	"github.com/iliyamo/grave-assignment/internal/server"
	"github.com/iliyamo/grave-assignment/internal/service"
)

func newServeCommand() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func runServe(ctx context.Context, migrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if migrate || cfg.DBDriver == config.DriverSQLite {
		if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rl := config.LoadRateLimitConfig()
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb != nil {
		defer rdb.Close()
	}
	local := middleware.NewLocalStore(rl)
	local.StartJanitor(ctx, 2*time.Minute)

	var pub service.Publisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		pub = service.NewAMQPPublisher(cfg.AMQPURL, cfg.EventsQueue)
	}

	e := server.New(server.Deps{
		Config:       cfg,
		RateLimit:    rl,
		Cache:        config.LoadCacheConfig(),
		DB:           db,
		Redis:        rdb,
		LocalLimiter: local,
		Publisher:    pub,
	})
	if rdb == nil {
		e.Logger.Warn("redis unavailable: rate limiting in process, response cache off")
	}

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		e.Logger.Infof("listening on %s (env=%s, driver=%s, prefix=%s)", addr, cfg.Env, cfg.DBDriver, cfg.APIPrefix)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	e.Logger.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}
