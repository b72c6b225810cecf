// Package seed wires the seed CLI: flag and environment parsing plus the
// run entrypoint.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/caarlos0/env/v11"

	"github.com/mcalhoun/shelfie/internal/platform/otel"
	"github.com/mcalhoun/shelfie/internal/tools/seed"
)

// Config holds seed command configuration.
type Config struct {
	SeedConfig seed.Config
}

type envConfig struct {
	DBPath string `env:"SHELFIE_DB_PATH"`
}

// ParseConfig parses environment variables and flags into a Config. Flags
// take precedence over the environment.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var envCfg envConfig
	if err := env.Parse(&envCfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := Config{SeedConfig: seed.DefaultConfig()}
	if envCfg.DBPath != "" {
		cfg.SeedConfig.DBPath = envCfg.DBPath
	}

	fs.StringVar(&cfg.SeedConfig.DBPath, "db-path", cfg.SeedConfig.DBPath, "path to sqlite database (default: SHELFIE_DB_PATH or data/shelfie.db)")
	fs.BoolVar(&cfg.SeedConfig.Verbose, "v", false, "verbose output")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the seed command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	shutdown, err := otel.Setup(ctx, "shelfie-seed")
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		_ = shutdown(context.Background())
	}()

	return seed.Run(ctx, cfg.SeedConfig, out)
}
