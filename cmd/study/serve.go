package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/phrazzld/studyhall/internal/api"
	"github.com/phrazzld/studyhall/internal/generation/local"
	"github.com/phrazzld/studyhall/internal/query"
	"github.com/phrazzld/studyhall/internal/redact"
	"github.com/phrazzld/studyhall/internal/service"
	"github.com/phrazzld/studyhall/internal/task"
)

func (c *cli) newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", fmt.Sprintf(":%d", c.cfg.Server.Port))
			if err != nil {
				return fmt.Errorf("failed to listen: %w", err)
			}
			return c.serve(ctx, ln)
		},
	}
}

// serve runs the API on ln until ctx is canceled, then shuts the server and
// the background workers down within the configured timeout.
func (c *cli) serve(ctx context.Context, ln net.Listener) error {
	log := c.logger

	lib, err := c.openLibrary(ctx, true)
	if err != nil {
		_ = ln.Close()
		return err
	}

	gen, err := local.New(local.Config{Latency: c.cfg.Generation.Latency}, log)
	if err != nil {
		_ = ln.Close()
		_ = lib.Close()
		return fmt.Errorf("failed to create generator: %w", err)
	}

	runner := task.NewTaskRunner(task.TaskRunnerConfig{
		WorkerCount: c.cfg.Generation.Workers,
		QueueSize:   c.cfg.Generation.QueueSize,
	}, log)
	runner.SetErrorHandler(func(t task.Task, err error) {
		log.Warn("background task failed",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()),
			slog.String("error", redact.Error(err)))
	})
	runner.Start()

	timeout := c.cfg.Generation.Timeout
	generation := service.NewGenerationService(lib, gen, runner, timeout, log)
	if c.cfg.Generation.AutoGenerate {
		lib.Subscribe(generation)
	}

	router := api.NewRouter(api.Deps{
		Library:    lib,
		Queries:    query.NewEngine(lib, nil),
		Review:     service.NewReviewService(lib, c.srsService(), log),
		Tutor:      service.NewTutorService(lib, gen, runner, timeout, log),
		Generation: generation,
		Logger:     log,
	})

	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server",
			slog.String("addr", ln.Addr().String()),
			slog.String("storage", c.cfg.Storage.Driver))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown failed: %w", err))
		}
		if err := runner.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("task runner shutdown failed: %w", err))
		}
		if err := lib.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
		}
		return errors.Join(errs...)
	})

	err = g.Wait()
	if err == nil {
		stats := runner.Stats()
		log.Info("server shutdown completed",
			slog.Int64("tasks_completed", stats.Completed),
			slog.Int64("tasks_failed", stats.Failed))
	}
	return err
}
