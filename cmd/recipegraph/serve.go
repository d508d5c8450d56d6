package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/siherrmann/recipegraph"
	"github.com/siherrmann/recipegraph/config"
	"github.com/siherrmann/recipegraph/server"
	"github.com/spf13/cobra"
)

func newServeCmd(envFile *string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Example: `  recipegraph serve
  recipegraph serve --port 9000 --env-file prod.env`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *envFile, port)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (overrides RECIPES_PORT)")

	return cmd
}

func runServe(ctx context.Context, envFile string, port string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Server.Port = port
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handle, err := recipegraph.NewRecipeGraph(ctx, cfg)
	if err != nil {
		return err
	}
	defer handle.Close(context.Background())

	logger := handle.Logger()
	srv := server.NewServer(handle, cfg.Server, logger)

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Start()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", slog.String("error", err.Error()))
			return err
		}
		return nil
	}
}
