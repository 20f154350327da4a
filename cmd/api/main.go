package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"catalog-service/internal/app"
	"catalog-service/internal/core/config"
	"catalog-service/internal/core/logger"
	"catalog-service/internal/core/server"
	"catalog-service/internal/transport/http/handler"
	"catalog-service/internal/transport/http/router"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, flush := app.NewLogger(cfg.Log)
	defer flush()
	defer logger.RedirectStdLog(log)()
	gin.DefaultWriter = logger.ToWriter(log.Named("gin"), zapcore.DebugLevel)

	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer a.Close()

	reg := router.NewRegistry(handler.NewCategoryHandler(a.Service))
	r := router.NewAPIEngine(log, reg, app.RouterOptions(cfg.App.HTTP))

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := fmt.Sprintf("http://%s:%d", host4human, cfg.App.HTTP.Port)
	log.Info("catalog api starting",
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1/categories"),
	)

	go func() {
		if err := server.StartHTTP(srv, log); err != nil {
			log.Fatal("catalog api start FAILED", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	if err := server.Shutdown(srv, 10*time.Second); err != nil {
		log.Warn("catalog api shutdown", zap.Error(err))
	}
	log.Info("catalog api stopped gracefully")
}
