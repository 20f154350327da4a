package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string
	Port              int
	ReadTimeoutSec    int
	WriteTimeoutSec   int
	IdleTimeoutSec    int
	RequestTimeoutSec int
	MaxBodyBytes      int64
	RatePerSec        float64
	RateBurst         int
	MaxConcurrent     int64
	CORSOrigins       []string
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin HTTP
}

type LogRotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate LogRotate
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Enable   bool   `mapstructure:"enable"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
	SlowThresholdMs    int
}

// Catalog 分类服务自身的参数
type Catalog struct {
	TreeCacheTTLSec  int
	TxIsolation      string
	TxMaxRetries     uint64
	TxRetryBaseMs    int
	ListDefaultLimit int
	ListMaxLimit     int
}

type Config struct {
	App     App
	Log     Log
	JWT     JWT
	DB      DB
	Redis   Redis `mapstructure:"redis"`
	Catalog Catalog
}

func defaults(v *viper.Viper) {
	v.SetDefault("app.name", "catalog-service")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.requestTimeoutSec", 10)
	v.SetDefault("app.http.maxBodyBytes", 1<<20)
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("app.admin.requestTimeoutSec", 30)
	v.SetDefault("app.admin.maxBodyBytes", 1<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.issuer", "catalog-service")
	v.SetDefault("jwt.accessTokenTTLMin", 60)
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "catalog.db")
	v.SetDefault("db.logLevel", "warn")
	v.SetDefault("db.slowThresholdMs", 200)
	v.SetDefault("catalog.treeCacheTTLSec", 300)
	v.SetDefault("catalog.txMaxRetries", 3)
	v.SetDefault("catalog.txRetryBaseMs", 50)
	v.SetDefault("catalog.listDefaultLimit", 50)
	v.SetDefault("catalog.listMaxLimit", 100)
}

// Load 读取 yaml 配置，APP_ 前缀环境变量覆盖（如 APP_DB_DSN）。
// path 为空时依次取 CONFIG_PATH、./configs/config.local.yaml；.env 存在则先加载。
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	defaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if strings.TrimSpace(c.Catalog.TxIsolation) == "" {
		c.Catalog.TxIsolation = DefaultTxIsolation(c.DB.Driver)
	}
	return &c, nil
}

// DefaultTxIsolation 未配置隔离级别时按驱动取值。事务内的环路与路径唯一性校验要求
// postgres/mysql 跑在 serializable 下；sqlite 单写者，沿用驱动默认。
func DefaultTxIsolation(driver string) string {
	switch driver {
	case "postgres", "mysql":
		return "serializable"
	}
	return "default"
}
