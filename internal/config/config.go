package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ModeStrict   = "strict"
	ModeDegraded = "degraded"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	Gemini   GeminiConfig
	Analysis AnalysisConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	CORSOrigins string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

// Enabled reports whether a Qdrant endpoint is configured.
func (q QdrantConfig) Enabled() bool {
	return strings.TrimSpace(q.URL) != ""
}

type GeminiConfig struct {
	APIKey            string
	Model             string
	EmbedModel        string
	Temperature       float32
	RequestsPerMinute int
}

type AnalysisConfig struct {
	Mode              string
	Concurrency       int
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

// Enabled reports whether a Redis reply cache is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:8000")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "resumatch")

	v.SetDefault("QDRANT_URL", "")
	v.SetDefault("QDRANT_API_KEY", "")
	v.SetDefault("QDRANT_COLLECTION", "resumatch_cvs")

	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("GEMINI_EMBED_MODEL", "text-embedding-004")
	v.SetDefault("GEMINI_TEMPERATURE", 0.3)
	v.SetDefault("GEMINI_REQUESTS_PER_MINUTE", 0)

	v.SetDefault("ANALYSIS_MODE", ModeDegraded)
	v.SetDefault("ANALYSIS_CONCURRENCY", 3)
	v.SetDefault("RETRY_MAX_ATTEMPTS", 1)
	v.SetDefault("RETRY_INITIAL_DELAY", "2s")

	v.SetDefault("UPLOAD_PATH", "./uploads")
	v.SetDefault("MAX_FILE_SIZE", 10485760)

	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_CACHE_TTL", "24h")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        v.GetString("PORT"),
			Env:         v.GetString("ENV"),
			CORSOrigins: v.GetString("CORS_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
		},
		Qdrant: QdrantConfig{
			URL:        v.GetString("QDRANT_URL"),
			APIKey:     v.GetString("QDRANT_API_KEY"),
			Collection: v.GetString("QDRANT_COLLECTION"),
		},
		Gemini: GeminiConfig{
			APIKey:            strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
			Model:             v.GetString("GEMINI_MODEL"),
			EmbedModel:        v.GetString("GEMINI_EMBED_MODEL"),
			Temperature:       float32(v.GetFloat64("GEMINI_TEMPERATURE")),
			RequestsPerMinute: v.GetInt("GEMINI_REQUESTS_PER_MINUTE"),
		},
		Analysis: AnalysisConfig{
			Mode:              strings.ToLower(strings.TrimSpace(v.GetString("ANALYSIS_MODE"))),
			Concurrency:       v.GetInt("ANALYSIS_CONCURRENCY"),
			RetryMaxAttempts:  v.GetInt("RETRY_MAX_ATTEMPTS"),
			RetryInitialDelay: v.GetDuration("RETRY_INITIAL_DELAY"),
		},
		Storage: StorageConfig{
			UploadPath:  v.GetString("UPLOAD_PATH"),
			MaxFileSize: v.GetInt64("MAX_FILE_SIZE"),
		},
		Redis: RedisConfig{
			URL:      v.GetString("REDIS_URL"),
			CacheTTL: v.GetDuration("REDIS_CACHE_TTL"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	switch c.Analysis.Mode {
	case ModeStrict, ModeDegraded:
	default:
		return fmt.Errorf("invalid ANALYSIS_MODE %q: must be %q or %q", c.Analysis.Mode, ModeStrict, ModeDegraded)
	}

	if c.Analysis.Concurrency <= 0 {
		return fmt.Errorf("invalid ANALYSIS_CONCURRENCY %d: must be positive", c.Analysis.Concurrency)
	}

	if c.Analysis.RetryMaxAttempts <= 0 {
		return fmt.Errorf("invalid RETRY_MAX_ATTEMPTS %d: must be positive", c.Analysis.RetryMaxAttempts)
	}

	if c.Storage.MaxFileSize <= 0 {
		return fmt.Errorf("invalid MAX_FILE_SIZE %d: must be positive", c.Storage.MaxFileSize)
	}

	return nil
}

// AllowedOrigins splits CORS_ORIGINS into trimmed entries.
func (s ServerConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}
