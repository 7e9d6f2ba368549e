// Command siegectl drives the siege map from a terminal: it lists towers and
// edits their number, stars, color and assignments against a running server.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"siegemap/internal/collab"
	"siegemap/internal/editor"
	"siegemap/internal/logger"
	"siegemap/internal/render"
)

// cli holds the global flags and the clients built from them.
type cli struct {
	apiURL      string
	token       string
	catalogPath string
	verbose     bool
	timeout     time.Duration

	log     *zap.Logger
	client  *collab.Client
	catalog *render.Catalog
	// confirm answers the delete prompt; nil reads stdin.
	confirm func(prompt string) bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "siegectl",
		Short:         "Inspect and edit siege map towers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.apiURL, "api", "", "server base URL (or set SIEGEMAP_API)")
	root.PersistentFlags().StringVar(&c.token, "token", "", "admin token (or set SIEGEMAP_TOKEN)")
	root.PersistentFlags().StringVar(&c.catalogPath, "catalog", "", "monster catalog yaml (or set SIEGEMAP_CATALOG)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 30*time.Second, "request timeout")

	root.AddCommand(c.towersCmd())
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	config := zap.NewProductionConfig()
	config.Encoding = "console"
	if c.verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	log, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.log = log

	if c.apiURL == "" {
		c.apiURL = envOr("SIEGEMAP_API", "http://localhost:8080")
	}
	if c.token == "" {
		c.token = os.Getenv("SIEGEMAP_TOKEN")
	}
	if c.catalogPath == "" {
		c.catalogPath = os.Getenv("SIEGEMAP_CATALOG")
	}

	c.catalog = render.NewCatalog(nil)
	if c.catalogPath != "" {
		catalog, err := render.LoadCatalog(c.catalogPath)
		if err != nil {
			c.log.Warn("monster catalog unavailable", zap.String("path", c.catalogPath), zap.Error(err))
		} else {
			c.catalog = catalog
		}
	}

	c.client = collab.New(c.apiURL, c.token, c.sharedLogger())
	c.log.Debug("client ready", zap.String("api", c.apiURL), zap.Int("monsters", c.catalog.Len()))
	return nil
}

// sharedLogger is the logger handed to the shared packages.
func (c *cli) sharedLogger() *slog.Logger {
	if !c.verbose {
		return logger.Discard()
	}
	return logger.New(logger.Config{Writer: os.Stderr, Level: slog.LevelDebug})
}

func (c *cli) deps() editor.Deps {
	return editor.Deps{
		API:      c.client,
		Resolver: collab.NewResolver(c.client, c.sharedLogger()),
		Registry: collab.NewRegistry(c.client),
		Catalog:  c.catalog,
		Logger:   c.sharedLogger(),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
