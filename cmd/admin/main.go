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

	if cfg.JWT.Secret == "" {
		log.Fatal("jwt.secret is required for the admin api")
	}

	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer a.Close()

	reg := router.NewRegistry(handler.NewCategoryHandler(a.Service))
	r := router.NewAdminEngine(log, reg, a.JWT, app.RouterOptions(cfg.App.Admin))

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.Admin.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.Admin.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.Admin.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.Admin.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := fmt.Sprintf("http://%s:%d", host4human, cfg.App.Admin.Port)
	log.Info("catalog admin starting",
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1/categories"),
	)

	go func() {
		if err := server.StartHTTP(srv, log); err != nil {
			log.Fatal("catalog admin start FAILED", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	if err := server.Shutdown(srv, 10*time.Second); err != nil {
		log.Warn("catalog admin shutdown", zap.Error(err))
	}
	log.Info("catalog admin stopped gracefully")
}
