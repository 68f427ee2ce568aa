package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Amity808/entrytagv1/internal/di"
	"github.com/Amity808/entrytagv1/pkg/config"
	"github.com/Amity808/entrytagv1/pkg/logger"
	"github.com/Amity808/entrytagv1/pkg/middleware"
	"github.com/Amity808/entrytagv1/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("starting ticket ledger",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment))

	ctx := context.Background()

	tel, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	})
	if err != nil {
		appLog.Fatal("failed to initialize telemetry", zap.Error(err))
	}
	if err := telemetry.InitMetrics(); err != nil {
		appLog.Warn("failed to initialize metrics", zap.Error(err))
	}

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		appLog.Fatal("failed to build container", zap.Error(err))
	}
	defer container.Close()

	if container.OutboxWorker != nil {
		if err := container.OutboxWorker.Start(ctx); err != nil {
			appLog.Fatal("failed to start outbox worker", zap.Error(err))
		}
	}

	router := buildRouter(cfg, container)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLog.Info("ticket ledger listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("forced shutdown", zap.Error(err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		appLog.Warn("telemetry shutdown failed", zap.Error(err))
	}

	appLog.Info("server exited")
}

func buildRouter(cfg *config.Config, container *di.Container) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(logger.Get()))
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName))
	}

	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	auth := middleware.Auth(&middleware.AuthConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	})

	// settlement-bearing endpoints also guard against duplicate submits
	var dedupe gin.HandlerFunc
	if container.Redis != nil {
		dedupe = middleware.Idempotency(container.Redis.Client, 24*time.Hour)
	} else {
		dedupe = func(c *gin.Context) { c.Next() }
	}

	v1 := router.Group("/api/v1")
	{
		events := v1.Group("/events")
		{
			events.GET("", container.EventHandler.List)
			events.GET("/:id", container.EventHandler.Get)
			events.GET("/:id/listings", container.MarketplaceHandler.ListByEvent)
			events.POST("", auth, container.EventHandler.Create)
			events.POST("/:id/activate", auth, container.EventHandler.Activate)
			events.POST("/:id/cancel", auth, container.EventHandler.Cancel)
			events.POST("/:id/complete", auth, container.EventHandler.Complete)
			events.GET("/:id/tickets", auth, container.TicketHandler.ListByEvent)
			events.GET("/:id/fees", auth, container.FeeHandler.EventStatement)
		}

		v1.POST("/purchases", auth, dedupe, container.PurchaseHandler.Purchase)

		tickets := v1.Group("/tickets", auth)
		{
			tickets.GET("", container.TicketHandler.ListMine)
			tickets.GET("/:id", container.TicketHandler.Get)
			tickets.POST("/:id/transfer", container.TicketHandler.Transfer)
			tickets.POST("/:id/redeem", container.TicketHandler.Redeem)
		}

		listings := v1.Group("/listings")
		{
			listings.GET("", auth, container.MarketplaceHandler.ListMine)
			listings.GET("/:id", container.MarketplaceHandler.Get)
			listings.POST("", auth, container.MarketplaceHandler.Create)
			listings.PUT("/:id/price", auth, container.MarketplaceHandler.UpdatePrice)
			listings.POST("/:id/cancel", auth, container.MarketplaceHandler.Cancel)
			listings.POST("/:id/buy", auth, dedupe, container.MarketplaceHandler.Buy)
		}

		fees := v1.Group("/fees", auth)
		{
			fees.GET("", container.FeeHandler.MyStatement)
			fees.GET("/platform", middleware.RequireRole("admin"), container.FeeHandler.PlatformFees)
		}

		v1.POST("/payouts/withdraw", auth, dedupe, container.FeeHandler.Withdraw)
	}

	return router
}
