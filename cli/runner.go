package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Run executes the pollbase command line with the given arguments.
func Run(args []string) error {
	// a missing .env simply means the environment is already set
	_ = godotenv.Load()

	envCfg := &EnvConfig{}
	if err := env.Parse(envCfg); err != nil {
		return err
	}
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}
	options.applyEnv(envCfg)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return newService(options, logger, os.Stdout).Run(context.Background())
}
