package providers

import (
	"log/slog"
	"os"

	"github.com/samber/do/v2"

	"siegemap/internal/logger"
	"siegemap/internal/server"
)

// ProvideConfig loads configuration from the command line, environment and .env.
func ProvideConfig(i do.Injector) (*server.Config, error) {
	cfg, err := server.LoadConfig(os.Args[1:])
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*slog.Logger, error) {
	cfg := do.MustInvoke[*server.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.LogLevel),
		AddSource:   cfg.Environment == "development",
		Environment: cfg.Environment,
	})
	slog.SetDefault(log)

	log.Info("Starting siegemap server",
		"environment", cfg.Environment,
		"log_level", cfg.LogLevel,
		"db_path", cfg.DBPath,
		"upload_dir", cfg.UploadDir,
	)
	return log, nil
}
