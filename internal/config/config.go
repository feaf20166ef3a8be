package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/core/services/arbitrage"
	"github.com/nulzo/model-radar/internal/core/services/benchmark"
	"github.com/nulzo/model-radar/internal/core/services/pipeline"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig                `mapstructure:"server"`
	Log       LogConfig                   `mapstructure:"log"`
	Database  DatabaseConfig              `mapstructure:"database"`
	Redis     RedisConfig                 `mapstructure:"redis"`
	Cache     CacheConfig                 `mapstructure:"cache"`
	RateLimit RateLimitConfig             `mapstructure:"rate_limit"`
	Tracing   TracingConfig               `mapstructure:"tracing"`
	Pipeline  PipelineConfig              `mapstructure:"pipeline"`
	Catalog   CatalogConfig               `mapstructure:"catalog"`
	Benchmark BenchmarkConfig             `mapstructure:"benchmark"`
	Arbitrage arbitrage.Thresholds        `mapstructure:"arbitrage"`
	Feed      FeedConfig                  `mapstructure:"feed"`
	Providers []domain.ProviderDescriptor `mapstructure:"providers" validate:"dive"`
}

type ServerConfig struct {
	Port string `mapstructure:"port" validate:"required,numeric"`
	Env  string `mapstructure:"env" validate:"oneof=development production test"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
	Color  bool   `mapstructure:"color"`
}

type DatabaseConfig struct {
	// Path of the SQLite file, or a full "file:" DSN.
	Path string `mapstructure:"path" validate:"required"`
}

// DSN returns the sqlite3 connection string.
func (d DatabaseConfig) DSN() string {
	if strings.HasPrefix(d.Path, "file:") {
		return d.Path
	}
	return "file:" + d.Path + "?cache=shared&mode=rwc&_journal_mode=WAL&_busy_timeout=5000"
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" validate:"gte=0"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// stdout, stderr or a file path
	Output string `mapstructure:"output"`
}

type PipelineConfig struct {
	Mode string `mapstructure:"mode" validate:"oneof=strict best_effort"`
}

type CatalogConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type BenchmarkConfig struct {
	SampleSize int              `mapstructure:"sample_size" validate:"gte=1"`
	Keywords   []string         `mapstructure:"keywords"`
	RealMode   string           `mapstructure:"real_mode" validate:"oneof=auto always never"`
	Timeout    time.Duration    `mapstructure:"timeout"`
	MaxTokens  int              `mapstructure:"max_tokens" validate:"gte=1"`
	Seed       uint64           `mapstructure:"seed"`
	Tasks      []benchmark.Task `mapstructure:"tasks" validate:"dive"`
}

type FeedConfig struct {
	Path       string               `mapstructure:"path"`
	TopN       int                  `mapstructure:"top_n" validate:"gte=1"`
	Thresholds arbitrage.Thresholds `mapstructure:"thresholds"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.color", true)

	v.SetDefault("database.path", "data/radar.db")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("cache.ttl", "10m")

	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.output", "stderr")

	v.SetDefault("pipeline.mode", string(pipeline.Strict))

	v.SetDefault("catalog.timeout", "10s")

	v.SetDefault("benchmark.sample_size", benchmark.DefaultSampleSize)
	v.SetDefault("benchmark.keywords", benchmark.DefaultKeywords())
	v.SetDefault("benchmark.real_mode", string(benchmark.RealAuto))
	v.SetDefault("benchmark.timeout", "15s")
	v.SetDefault("benchmark.max_tokens", benchmark.DefaultMaxTokens)
	v.SetDefault("benchmark.seed", 0)

	d := arbitrage.DefaultThresholds()
	v.SetDefault("arbitrage.performance_floor", d.PerformanceFloor)
	v.SetDefault("arbitrage.value_cost_ceiling", d.ValueCostCeiling)
	v.SetDefault("arbitrage.speed_floor", d.SpeedFloor)
	v.SetDefault("arbitrage.speed_cost_ceiling", d.SpeedCostCeiling)

	f := arbitrage.FeedThresholds()
	v.SetDefault("feed.path", "data/live_intel.json")
	v.SetDefault("feed.top_n", 10)
	v.SetDefault("feed.thresholds.performance_floor", f.PerformanceFloor)
	v.SetDefault("feed.thresholds.value_cost_ceiling", f.ValueCostCeiling)
	v.SetDefault("feed.thresholds.speed_floor", f.SpeedFloor)
	v.SetDefault("feed.thresholds.speed_cost_ceiling", f.SpeedCostCeiling)
}

// LoadConfig reads configuration from file or environment variables. An empty path
// searches for config.yaml in the working directory and ./config.
func LoadConfig(path string) (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.SetEnvPrefix("RADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if len(cfg.Benchmark.Tasks) == 0 {
		cfg.Benchmark.Tasks = benchmark.DefaultTasks()
	}

	// Resolve API Keys
	for i, p := range cfg.Providers {
		if envVar, ok := strings.CutPrefix(p.APIKey, "ENV:"); ok {
			val := os.Getenv(envVar)
			if val == "" {
				val = v.GetString(envVar)
			}
			cfg.Providers[i].APIKey = val
		}
	}

	return &cfg, nil
}

// Validate reports the first configuration problem as a *domain.ConfigError. It makes
// no network calls.
func (c *Config) Validate() error {
	if err := domain.NewValidator().Struct(c); err != nil {
		fields := domain.ParseValidationError(err)
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return &domain.ConfigError{Field: keys[0], Reason: fields[keys[0]]}
	}

	if len(c.Providers) == 0 {
		return &domain.ConfigError{Field: "providers", Reason: "at least one provider is required"}
	}

	seen := make(map[string]struct{}, len(c.Providers))
	for _, p := range c.Providers {
		if _, dup := seen[p.Name]; dup {
			return &domain.ConfigError{Field: "providers", Reason: fmt.Sprintf("duplicate provider name %q", p.Name)}
		}
		seen[p.Name] = struct{}{}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return &domain.ConfigError{Field: "redis.addr", Reason: "required when redis is enabled"}
	}

	return nil
}
