package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LavaJover/shvark-kiosk-service/internal/app/background"
	"github.com/LavaJover/shvark-kiosk-service/internal/app/setup"
	"github.com/LavaJover/shvark-kiosk-service/internal/config"
	"github.com/LavaJover/shvark-kiosk-service/internal/delivery/grpcapi"
	"github.com/LavaJover/shvark-kiosk-service/internal/delivery/http/handlers"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"google.golang.org/grpc"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()

	logger, logCloser, err := setup.NewLogger(cfg.LogConfig)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := setup.InitializeDependencies(cfg)
	defer deps.Close()

	uc, err := setup.InitializeUseCases(deps, logger)
	if err != nil {
		log.Fatalf("failed to init usecases: %v", err)
	}

	// gRPC health
	healthHandler := grpcapi.NewHealthHandler()
	grpcServer := grpc.NewServer()
	healthHandler.Register(grpcServer)

	// Provider probe feeds both grpc health and metrics
	tasks := background.NewBackgroundTasks(deps.RateProvider, cfg.Rates.HealthInterval, logger, healthHandler, deps.Metrics)
	tasks.StartAll(ctx)

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(
		handlers.NewKioskHandler(uc.AssetUsecase, uc.PaymentUsecase),
		handlers.NewSessionHandler(uc.SessionManager, uc.AssetUsecase, logger),
		logger,
	)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%s", cfg.GRPCServer.Host, cfg.GRPCServer.Port))
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	errCh := make(chan error, 2)
	go func() {
		slog.Info("gRPC server started", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc: %w", err)
		}
	}()
	go func() {
		slog.Info("HTTP server started", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		slog.Error("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uc.SessionManager.CloseAll()
	healthHandler.Shutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "error", err)
	}
	grpcServer.GracefulStop()
}
