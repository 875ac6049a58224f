package main

import (
	"fmt"
	"os"

	"github.com/devbydaniel/greenrec/config"
	"github.com/devbydaniel/greenrec/internal/app"
	"github.com/devbydaniel/greenrec/internal/cli"
	"github.com/devbydaniel/greenrec/internal/logging"
	"github.com/devbydaniel/greenrec/internal/output"
)

func main() {
	if err := run(); err != nil {
		formatter := output.NewFormatter(os.Stderr)
		formatter.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)

	application, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	defer application.Close()

	deps := &cli.Dependencies{
		App:    application,
		Config: cfg,
	}

	return cli.NewRootCmd(deps).Execute()
}
