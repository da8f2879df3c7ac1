package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"liyu1981.xyz/sensor-api-service/pkg/common"
	"liyu1981.xyz/sensor-api-service/pkg/config"
	"liyu1981.xyz/sensor-api-service/pkg/db"
	sensorHttp "liyu1981.xyz/sensor-api-service/pkg/http"
	"liyu1981.xyz/sensor-api-service/pkg/sensor"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := common.GetLogger()
	defer common.SyncLogger()

	connector := db.NewConnector(cfg.DB)

	if cfg.DB.AutoMigrate {
		if err := connector.Migrate(context.Background()); err != nil {
			log.Fatal("Failed to migrate database: ", err)
		}
	}

	var limiterStore *sensor.RateLimiterStore
	if cfg.RateLimitEnabled() {
		limiterStore = sensor.NewRateLimiterStore(rate.Limit(cfg.InsertRate), cfg.InsertBurst)
	}

	if common.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rs := &sensorHttp.RestfulServer{
		Server:             gin.New(),
		Sensors:            sensor.NewCore(connector),
		RateLimiterStore:   limiterStore,
		Metrics:            sensorHttp.NewMetrics(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	rs.Setup()

	logger.Info("http server created with:",
		zap.String("db_type", cfg.DB.Type),
		zap.Bool("insert_limiter", limiterStore != nil),
		zap.Float64("insert_rate", cfg.InsertRate),
		zap.Int("insert_burst", cfg.InsertBurst),
		zap.Strings("cors_allowed_origins", cfg.CORSAllowedOrigins),
	)

	server := &http.Server{
		Addr:    cfg.HttpHostPort,
		Handler: rs.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting HTTP server on: " + cfg.HttpHostPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server failed to serve: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
}
