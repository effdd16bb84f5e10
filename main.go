package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/soocke/mystic-booth/app"
	"github.com/soocke/mystic-booth/cli"
	"github.com/soocke/mystic-booth/config"
)

func main() {
	cmd := cli.NewRootCommand(cli.Hooks{NewLogger: NewLogger, RunBooth: runBooth})
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func runBooth(cfg *config.Config, cfgPath string, logger *slog.Logger) error {
	application, err := app.NewApp("Mystic Booth", cfg, cfgPath, logger)
	if err != nil {
		return err
	}
	application.Start()
	return nil
}
