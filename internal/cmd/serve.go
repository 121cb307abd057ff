package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/suggestibility-service/internal/handlers"
	"github.com/SAP-F-2025/suggestibility-service/internal/middleware"
	"github.com/SAP-F-2025/suggestibility-service/internal/utils"
	"github.com/SAP-F-2025/suggestibility-service/pkg"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

// NewServeCommand creates the 'suggestibility serve' command
func NewServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "run database migrations before serving")
	return cmd
}

func runServe(ctx context.Context, migrate bool) error {
	rt, err := newRuntime(ctx, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	if migrate {
		if err := pkg.MigrateDatabase(rt.db); err != nil {
			return err
		}
	}

	auth, err := middleware.NewAuth(rt.cfg.Auth, rt.logger)
	if err != nil {
		return fmt.Errorf("failed to configure authentication: %w", err)
	}

	if rt.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestContext(rt.logger), utils.LoggerMiddleware(rt.logger))

	opts := handlers.RouteOptions{
		Auth:  auth,
		Ready: pkg.PingDatabase(rt.db),
	}
	if rt.metrics != nil {
		opts.Metrics = rt.metrics.Handler()
	}
	handlers.NewHandlerManager(rt.services, rt.logger).SetupRoutes(router, opts)

	server := &http.Server{
		Addr:              ":" + rt.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		rt.logger.Info("Starting suggestibility service", "port", rt.cfg.Port, "environment", rt.cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, failed := <-serveErr:
		if failed {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	rt.logger.Info("Shutting down suggestibility service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
