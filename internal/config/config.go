package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Reasoning ReasoningConfig
	Pipeline  PipelineConfig
	AMQP      AMQPConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	LogJSON     bool
	LogDebug    bool
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
	DSN        string

	AutoMigrate   bool
	MigrationsDir string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type JWTConfig struct {
	AccessSecret    string
	AccessExpiresIn time.Duration
	Issuer          string
}

type StorageConfig struct {
	Driver    string
	LocalDir  string
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

type ReasoningConfig struct {
	Provider       string
	GeminiAPIKey   string
	GeminiModel    string
	OpenAIAPIKey   string
	OpenAIModel    string
	AttemptTimeout time.Duration
	MaxAttempts    int
}

type PipelineConfig struct {
	Workers           int
	QueueSize         int
	TopN              int
	MaxUploadBytes    int64
	BaseBackoff       time.Duration
	MaxBackoff        time.Duration
	RunLockTTL        time.Duration
	StaleAfter        time.Duration
	ReaperSchedule    string
	RecommendMinScore int
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

// Load reads .env when present and resolves configuration from the environment.
func Load() (Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom resolves configuration from v, which may carry bound CLI flags.
func LoadFrom(v *viper.Viper) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v.AutomaticEnv()
	setDefaults(v)

	var missing []string
	req := func(key string) string {
		s := strings.TrimSpace(v.GetString(key))
		if s == "" {
			missing = append(missing, key)
		}
		return s
	}
	opt := func(key string) string {
		return strings.TrimSpace(v.GetString(key))
	}

	cfg := Config{}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: opt("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		LogJSON:     v.GetBool("LOG_JSON"),
		LogDebug:    v.GetBool("LOG_DEBUG"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:                opt("DB_HOST"),
		DBPort:                opt("DB_PORT"),
		DBName:                opt("DB_NAME"),
		DBUser:                opt("DB_USER"),
		DBPassword:            v.GetString("DB_PASSWORD"),
		DBSSLMode:             opt("DB_SSL_MODE"),
		DSN:                   opt("DATABASE_URL"),
		AutoMigrate:           v.GetBool("DB_AUTO_MIGRATE"),
		MigrationsDir:         opt("DB_MIGRATIONS_DIR"),
		ConnectTimeout:        v.GetDuration("DB_CONNECT_TIMEOUT"),
		PoolMaxConns:          v.GetInt32("DB_POOL_MAX_CONNS"),
		PoolMinConns:          v.GetInt32("DB_POOL_MIN_CONNS"),
		PoolMaxConnLifetime:   v.GetDuration("DB_POOL_MAX_CONN_LIFETIME"),
		PoolMaxConnIdleTime:   v.GetDuration("DB_POOL_MAX_CONN_IDLE_TIME"),
		PoolHealthCheckPeriod: v.GetDuration("DB_POOL_HEALTH_CHECK_PERIOD"),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST"),
		Port:     opt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		TTL:      v.GetDuration("REDIS_TTL"),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:    req("JWT_ACCESS_SECRET"),
		AccessExpiresIn: v.GetDuration("JWT_ACCESS_EXPIRES_IN"),
		Issuer:          opt("JWT_ISSUER"),
	}

	cfg.Storage = StorageConfig{
		Driver:    strings.ToLower(opt("STORAGE_DRIVER")),
		LocalDir:  opt("STORAGE_LOCAL_DIR"),
		Bucket:    opt("S3_BUCKET"),
		Endpoint:  opt("S3_ENDPOINT"),
		Region:    opt("S3_REGION"),
		AccessKey: opt("S3_ACCESS_KEY_ID"),
		SecretKey: v.GetString("S3_SECRET_ACCESS_KEY"),
	}

	cfg.Reasoning = ReasoningConfig{
		Provider:       strings.ToLower(opt("REASONING_PROVIDER")),
		GeminiAPIKey:   opt("GEMINI_API_KEY"),
		GeminiModel:    opt("GEMINI_MODEL"),
		OpenAIAPIKey:   opt("OPENAI_API_KEY"),
		OpenAIModel:    opt("OPENAI_MODEL"),
		AttemptTimeout: v.GetDuration("REASONING_ATTEMPT_TIMEOUT"),
		MaxAttempts:    v.GetInt("REASONING_MAX_ATTEMPTS"),
	}

	cfg.Pipeline = PipelineConfig{
		Workers:           v.GetInt("PIPELINE_WORKERS"),
		QueueSize:         v.GetInt("PIPELINE_QUEUE_SIZE"),
		TopN:              v.GetInt("PIPELINE_TOP_N"),
		MaxUploadBytes:    v.GetInt64("RESUME_MAX_BYTES"),
		BaseBackoff:       v.GetDuration("PIPELINE_BASE_BACKOFF"),
		MaxBackoff:        v.GetDuration("PIPELINE_MAX_BACKOFF"),
		RunLockTTL:        v.GetDuration("PIPELINE_RUN_LOCK_TTL"),
		StaleAfter:        v.GetDuration("PIPELINE_STALE_AFTER"),
		ReaperSchedule:    opt("PIPELINE_REAPER_SCHEDULE"),
		RecommendMinScore: v.GetInt("RECOMMEND_MIN_SCORE"),
	}

	cfg.AMQP = AMQPConfig{
		URL:      opt("AMQP_URL"),
		Exchange: opt("AMQP_EXCHANGE"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	switch cfg.Storage.Driver {
	case "local", "s3":
	default:
		return Config{}, fmt.Errorf("invalid STORAGE_DRIVER %q", cfg.Storage.Driver)
	}
	if cfg.Storage.Driver == "s3" && cfg.Storage.Bucket == "" {
		return Config{}, fmt.Errorf("%w: S3_BUCKET", errMissingRequiredEnv)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_CONNECT_TIMEOUT", 5*time.Second)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_TTL", 10*time.Minute)

	v.SetDefault("JWT_ACCESS_EXPIRES_IN", 24*time.Hour)
	v.SetDefault("JWT_ISSUER", "jobmatch")

	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("STORAGE_LOCAL_DIR", "uploads")
	v.SetDefault("S3_REGION", "auto")

	v.SetDefault("REASONING_PROVIDER", "heuristic")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("REASONING_ATTEMPT_TIMEOUT", 60*time.Second)
	v.SetDefault("REASONING_MAX_ATTEMPTS", 3)

	v.SetDefault("PIPELINE_WORKERS", 4)
	v.SetDefault("PIPELINE_QUEUE_SIZE", 64)
	v.SetDefault("PIPELINE_TOP_N", 10)
	v.SetDefault("RESUME_MAX_BYTES", 5<<20)
	v.SetDefault("PIPELINE_BASE_BACKOFF", time.Second)
	v.SetDefault("PIPELINE_MAX_BACKOFF", 30*time.Second)
	v.SetDefault("PIPELINE_RUN_LOCK_TTL", 15*time.Minute)
	v.SetDefault("PIPELINE_STALE_AFTER", 30*time.Minute)
	v.SetDefault("PIPELINE_REAPER_SCHEDULE", "@every 1m")
	v.SetDefault("RECOMMEND_MIN_SCORE", 20)

	v.SetDefault("AMQP_EXCHANGE", "resume_updates")
}
