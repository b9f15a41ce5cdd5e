package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"polycode/task-agent-app/services/dashboard_service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer syncLogger(a.logger)

	if !a.cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	svc, err := dashboard_service.NewService(a.newSession, a.validate, a.logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	server := &http.Server{
		Addr:    a.cfg.Server.Address,
		Handler: dashboard_service.NewEngine(svc, a.cfg.Server, a.logger),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("Dashboard API listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		a.logger.Error("Server stopped", zap.Error(err))
		return err
	}
	a.logger.Info("Shutdown complete")
	return nil
}
