package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"catalog-service/internal/core/auth"
	"catalog-service/internal/core/cache"
	"catalog-service/internal/core/config"
	"catalog-service/internal/core/database"
	"catalog-service/internal/core/logger"
	"catalog-service/internal/repo"
	"catalog-service/internal/service"
	"catalog-service/internal/transport/http/router"
)

// App 三个入口（api / admin / catalogctl）共用的依赖
type App struct {
	Cfg     *config.Config
	Log     *zap.Logger
	DB      *gorm.DB
	Catalog *repo.Catalog
	Service *service.CategoryService
	JWT     *auth.JWTer

	closers []func()
}

// NewLogger 按配置构造 zap logger
func NewLogger(c config.Log) (*zap.Logger, func()) {
	return logger.New(logger.Options{
		Level: c.Level,
		JSON:  c.JSON,
		Rotate: logger.FileRotate{
			Enable:     c.Rotate.Enable,
			Filename:   c.Rotate.Filename,
			MaxSizeMB:  c.Rotate.MaxSizeMB,
			MaxBackups: c.Rotate.MaxBackups,
			MaxAgeDays: c.Rotate.MaxAgeDays,
			Compress:   c.Rotate.Compress,
		},
	})
}

// New 连库、按需迁移、组装服务；redis 未启用或不可达时树缓存退化为不缓存
func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, error) {
	if err := repo.ParseIsolation(cfg.Catalog.TxIsolation); err != nil {
		return nil, err
	}

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		SlowThresholdMs:    cfg.DB.SlowThresholdMs,
		Log:                logger.ToStdLogger(l.Named("gorm"), zapcore.WarnLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	a := &App{Cfg: cfg, Log: l, DB: db}
	a.closers = append(a.closers, func() { _ = database.Close(db) })
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := repo.Migrate(db); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		l.Info("automigrate done")
	}

	a.Catalog = repo.NewCatalog(db, repo.WithIsolation(cfg.Catalog.TxIsolation))
	a.Service = service.NewCategoryService(a.Catalog, service.Config{
		TxMaxRetries:     cfg.Catalog.TxMaxRetries,
		TxRetryBase:      time.Duration(cfg.Catalog.TxRetryBaseMs) * time.Millisecond,
		ListDefaultLimit: cfg.Catalog.ListDefaultLimit,
		ListMaxLimit:     cfg.Catalog.ListMaxLimit,
		Cache:            a.treeCache(ctx),
	}, l.Named("category"))
	a.JWT = auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.AccessTokenTTLMin)*time.Minute)
	return a, nil
}

func (a *App) treeCache(ctx context.Context) service.TreeCache {
	rc := a.Cfg.Redis
	if !rc.Enable {
		return nil
	}
	c := cache.New(cache.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB, DialTimeout: 2 * time.Second})
	if err := c.Ping(ctx); err != nil {
		a.Log.Warn("redis unreachable, tree cache disabled", zap.String("addr", rc.Addr), zap.Error(err))
		_ = c.Close()
		return nil
	}
	a.closers = append(a.closers, func() { _ = c.Close() })
	a.Log.Info("redis connected", zap.String("addr", rc.Addr))
	return cache.NewTreeCache(c, time.Duration(a.Cfg.Catalog.TreeCacheTTLSec)*time.Second)
}

// Close 逆序释放
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// RouterOptions 把某一端的 HTTP 配置换成 router.Options
func RouterOptions(h config.HTTP) router.Options {
	return router.Options{
		RatePerSec:     h.RatePerSec,
		RateBurst:      h.RateBurst,
		MaxConcurrent:  h.MaxConcurrent,
		MaxBodyBytes:   h.MaxBodyBytes,
		RequestTimeout: time.Duration(h.RequestTimeoutSec) * time.Second,
		CORSOrigins:    h.CORSOrigins,
	}
}
