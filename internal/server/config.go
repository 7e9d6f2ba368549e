package server

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration. Values come from flags, then the
// environment, then a .env file, then defaults.
type Config struct {
	Port            string
	AllowedOrigins  []string
	UploadDir       string
	DBPath          string
	AdminToken      string
	Environment     string
	LogLevel        string
	MonsterCatalog  string
	MonsterImageExt string
	RemoteImageBase string
	WriteRateLimit  float64
	WriteRateBurst  int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxBodySize     int64
}

const (
	defaultPort            = "8080"
	defaultAllowedOrigin   = "*"
	defaultUploadDir       = "uploads"
	defaultDBPath          = "data/siegemap.db"
	defaultEnvironment     = "development"
	defaultLogLevel        = "info"
	defaultMonsterCatalog  = "data/monsters.yaml"
	defaultMonsterImageExt = "png"
	defaultRemoteBase      = "https://swarfarm.com/static/herders/images/monsters"
	defaultWriteRateLimit  = 5.0
	defaultWriteRateBurst  = 20
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultMaxBodySize     = int64(1 << 20) // 1 MiB
)

// LoadConfig builds a Config from args (without the program name), the
// environment and an optional .env file in the working directory.
func LoadConfig(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Port:            getEnv("PORT", defaultPort),
		AllowedOrigins:  parseAllowedOrigins(getEnv("ALLOWED_ORIGINS", defaultAllowedOrigin)),
		UploadDir:       getEnv("UPLOAD_DIR", defaultUploadDir),
		DBPath:          getEnv("DB_PATH", defaultDBPath),
		AdminToken:      os.Getenv("ADMIN_TOKEN"),
		Environment:     getEnv("ENV", defaultEnvironment),
		LogLevel:        getEnv("LOG_LEVEL", defaultLogLevel),
		MonsterCatalog:  getEnv("MONSTER_CATALOG", defaultMonsterCatalog),
		MonsterImageExt: getEnv("MONSTER_IMAGE_EXT", defaultMonsterImageExt),
		RemoteImageBase: getEnv("REMOTE_IMAGE_BASE", defaultRemoteBase),
		WriteRateLimit:  defaultWriteRateLimit,
		WriteRateBurst:  defaultWriteRateBurst,
		ReadTimeout:     defaultReadTimeout,
		WriteTimeout:    defaultWriteTimeout,
		IdleTimeout:     defaultIdleTimeout,
		MaxBodySize:     defaultMaxBodySize,
	}

	if raw := os.Getenv("WRITE_RATE_LIMIT"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			cfg.WriteRateLimit = v
		}
	}
	if raw := os.Getenv("WRITE_RATE_BURST"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.WriteRateBurst = v
		}
	}
	cfg.ReadTimeout = getDuration("READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = getDuration("WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.IdleTimeout = getDuration("IDLE_TIMEOUT", cfg.IdleTimeout)

	fs := flag.NewFlagSet("siegemap", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Port, "port", cfg.Port, "listen port")
	fs.StringVar(&cfg.UploadDir, "uploads", cfg.UploadDir, "upload directory")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite database path")
	fs.StringVar(&cfg.MonsterCatalog, "catalog", cfg.MonsterCatalog, "monster catalog yaml")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if v, err := time.ParseDuration(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}

func parseAllowedOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	var origins []string
	for _, origin := range parts {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		origins = []string{defaultAllowedOrigin}
	}
	return origins
}
