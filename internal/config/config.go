// Package config 从 .env 与环境变量加载运行配置
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultAccessSecret  = "secret-key"
	defaultRefreshSecret = "refresh-key"
)

type Config struct {
	Env            string        `mapstructure:"APP_ENV"`
	HTTPAddr       string        `mapstructure:"HTTP_ADDR"`
	MySQLDSN       string        `mapstructure:"MYSQL_DSN"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int           `mapstructure:"REDIS_DB"`
	AccessSecret   string        `mapstructure:"JWT_ACCESS_SECRET"`
	RefreshSecret  string        `mapstructure:"JWT_REFRESH_SECRET"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	PageCacheTTL   time.Duration `mapstructure:"PAGE_CACHE_TTL"`
	PageCacheStore string        `mapstructure:"PAGE_CACHE_STORE"`
	PostsPerPage   int           `mapstructure:"POSTS_PER_PAGE"`
	MediaRoot      string        `mapstructure:"MEDIA_ROOT"`
	KafkaBrokers   string        `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic     string        `mapstructure:"KAFKA_TOPIC"`
	SMTPHost       string        `mapstructure:"SMTP_HOST"`
	SMTPPort       int           `mapstructure:"SMTP_PORT"`
	SMTPUsername   string        `mapstructure:"SMTP_USERNAME"`
	SMTPPassword   string        `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom       string        `mapstructure:"SMTP_FROM"`
	AllowedOrigins string        `mapstructure:"ALLOWED_ORIGINS"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("MYSQL_DSN", "root:root@tcp(127.0.0.1:3306)/blog?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_ACCESS_SECRET", defaultAccessSecret)
	v.SetDefault("JWT_REFRESH_SECRET", defaultRefreshSecret)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PAGE_CACHE_TTL", "20s")
	v.SetDefault("PAGE_CACHE_STORE", "redis")
	v.SetDefault("POSTS_PER_PAGE", 10)
	v.SetDefault("MEDIA_ROOT", "media")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "social-follow")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "NoReply <no-reply@example.com>")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
}

// Load .env 不存在时忽略，环境变量优先
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

func (c *Config) Validate() error {
	if c.MySQLDSN == "" {
		return errors.New("MYSQL_DSN is required")
	}
	if c.PostsPerPage <= 0 {
		return errors.New("POSTS_PER_PAGE must be positive")
	}
	if c.PageCacheTTL < 0 {
		return errors.New("PAGE_CACHE_TTL must not be negative")
	}
	if c.PageCacheStore != "redis" && c.PageCacheStore != "memory" {
		return fmt.Errorf("PAGE_CACHE_STORE must be redis or memory, got %q", c.PageCacheStore)
	}
	if c.IsProduction() {
		if c.AccessSecret == defaultAccessSecret || c.RefreshSecret == defaultRefreshSecret {
			return errors.New("jwt secrets must be changed from the default value in production")
		}
		if c.AllowedOrigins == "*" {
			return errors.New("ALLOWED_ORIGINS must not be '*' in production")
		}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) Origins() []string { return splitList(c.AllowedOrigins) }

func (c *Config) Brokers() []string { return splitList(c.KafkaBrokers) }
