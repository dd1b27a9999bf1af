package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	JWTTTL    time.Duration `env:"JWT_TTL,   default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	// CORSAllowedOrigins is a comma separated list; "*" allows any origin.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS, default=*"`
	// AuthRateLimit is the number of login attempts per minute per client IP.
	AuthRateLimit float64 `env:"AUTH_RATE_LIMIT, default=20"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Session SessionConfig
	Upload  UploadConfig
	Sync    SyncConfig
}

type MongoConfig struct {
	URI         string        `env:"MONGO_URI,      default=mongodb://localhost:27017"`
	Database    string        `env:"MONGO_DB,       default=inspections"`
	Timeout     time.Duration `env:"MONGO_TIMEOUT,  default=10s"`
	MaxPoolSize uint64        `env:"MONGO_MAX_POOL, default=100"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type SessionConfig struct {
	TTL time.Duration `env:"SESSION_TTL, default=720h"`
}

type UploadConfig struct {
	MaxFiles    int   `env:"UPLOAD_MAX_FILES,     default=10"`
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE, default=10485760"`
}

type SyncConfig struct {
	Workers     int `env:"SYNC_WORKERS,      default=8"`
	MaxAttempts int `env:"SYNC_MAX_ATTEMPTS, default=5"`
}

// Load reads configuration from environment variables using go-envconfig.
// A .env file in the working directory, when present, fills variables that
// are not already set.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.JWTTTL <= 0:
		return fmt.Errorf("JWT_TTL must be positive")
	case c.Session.TTL <= 0:
		return fmt.Errorf("SESSION_TTL must be positive")
	case c.Upload.MaxFiles <= 0 || c.Upload.MaxFileSize <= 0:
		return fmt.Errorf("upload limits must be positive")
	case c.AuthRateLimit <= 0:
		return fmt.Errorf("AUTH_RATE_LIMIT must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// AllowedOrigins splits CORSAllowedOrigins.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
