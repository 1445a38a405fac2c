package infra

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config: корневая структура конфигурации консоли.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig описывает HTTP-сервер консоли.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MetricsPath     string        `mapstructure:"metrics_path"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// UpstreamConfig: сервис анализа логов (/api/analyze-log, /api/dashboard-data).
type UpstreamConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	AnalyzePath    string        `mapstructure:"analyze_path"`
	DashboardPath  string        `mapstructure:"dashboard_path"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`

	// Лимитер исходящих запросов
	RateLimit float64 `mapstructure:"rate_limit"` // запросов в секунду
	RateBurst int     `mapstructure:"rate_burst"`

	// Circuit Breaker: быстрый отказ, пока сервис анализа лежит. Повторов нет.
	CBMaxRequests         uint32        `mapstructure:"cb_max_requests"`
	CBInterval            time.Duration `mapstructure:"cb_interval"`
	CBTimeout             time.Duration `mapstructure:"cb_timeout"`
	CBConsecutiveFailures uint32        `mapstructure:"cb_consecutive_failures"`
}

// DashboardConfig: поведение UI-цикла и графиков.
type DashboardConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"` // 0: только вручную
	TemplatePath    string        `mapstructure:"template_path"`    // пусто: встроенный шаблон
	HasResults      bool          `mapstructure:"has_results"`
	ChartWidth      int           `mapstructure:"chart_width"`
	ChartHeight     int           `mapstructure:"chart_height"`
	LoopBuffer      int           `mapstructure:"loop_buffer"`
}

// RedisConfig: внешний триггер обновления через Pub/Sub.
type RedisConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Addr           string `mapstructure:"addr"`
	Password       string `mapstructure:"password"`
	DB             int    `mapstructure:"db"`
	RefreshChannel string `mapstructure:"refresh_channel"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig инициализирует конфигурацию, объединяя значения из файла и ENV.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. Настройка поиска файла
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// 2. ENV перекрывает файл: UPSTREAM_BASE_URL=... перекроет upstream.base_url
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 3. Дефолты
	setDefaults(v)

	// 4. Чтение файла
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Если файла нет: работаем на ENV и дефолтах
	}

	// 5. Маппинг в структуру
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ловит значения, с которыми консоль заведомо не заработает.
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return errors.New("config: upstream.base_url is required")
	}
	if c.Upstream.MaxUploadBytes <= 0 {
		return errors.New("config: upstream.max_upload_bytes must be positive")
	}
	if c.Dashboard.RefreshInterval < 0 {
		return errors.New("config: dashboard.refresh_interval must not be negative")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("config: redis.addr is required when redis.enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.metrics_path", "/metrics")

	v.SetDefault("upstream.base_url", "http://localhost:5000")
	v.SetDefault("upstream.analyze_path", "/api/analyze-log")
	v.SetDefault("upstream.dashboard_path", "/api/dashboard-data")
	v.SetDefault("upstream.timeout", 30*time.Second)
	v.SetDefault("upstream.max_upload_bytes", 32<<20)
	v.SetDefault("upstream.rate_limit", 20)
	v.SetDefault("upstream.rate_burst", 5)
	v.SetDefault("upstream.cb_max_requests", 1)
	v.SetDefault("upstream.cb_interval", 10*time.Second)
	v.SetDefault("upstream.cb_timeout", 15*time.Second)
	v.SetDefault("upstream.cb_consecutive_failures", 5)

	v.SetDefault("dashboard.refresh_interval", 60*time.Second)
	v.SetDefault("dashboard.template_path", "")
	v.SetDefault("dashboard.has_results", false)
	v.SetDefault("dashboard.chart_width", 640)
	v.SetDefault("dashboard.chart_height", 320)
	v.SetDefault("dashboard.loop_buffer", 256)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.refresh_channel", RedisChanDashboardRefresh)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
}
