// Package cli defines the mystic-booth command tree.
package cli

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/soocke/mystic-booth/config"
)

// DefaultConfigPath is used when --config is not given.
const DefaultConfigPath = "mystic-booth.toml"

// Hooks supplies the pieces the command tree does not own.
type Hooks struct {
	// NewLogger builds the process logger from the configured level and format.
	NewLogger func(level, format string) *slog.Logger
	// RunBooth opens the booth window and blocks until it closes.
	RunBooth func(cfg *config.Config, cfgPath string, logger *slog.Logger) error
}

type commandContext struct {
	hooks      Hooks
	configFlag *string
	debugFlag  *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
	logger     *slog.Logger
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil || strings.TrimSpace(*c.configFlag) == "" {
		return DefaultConfigPath
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		if c.debugFlag != nil && *c.debugFlag {
			cfg.Debug = true
			cfg.LogLevel = "debug"
		}
		c.config = cfg
		if c.hooks.NewLogger != nil {
			c.logger = c.hooks.NewLogger(cfg.LogLevel, cfg.LogFormat)
		} else {
			c.logger = slog.New(slog.DiscardHandler)
		}
	})
	return c.config, c.configErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// NewRootCommand builds the command tree. Without a subcommand it opens the
// booth window.
func NewRootCommand(hooks Hooks) *cobra.Command {
	var configFlag string
	var debugFlag bool
	ctx := &commandContext{hooks: hooks, configFlag: &configFlag, debugFlag: &debugFlag}

	rootCmd := &cobra.Command{
		Use:           "mystic-booth",
		Short:         "Photo booth that composes shots into a strip",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if hooks.RunBooth == nil {
				return cmd.Help()
			}
			return hooks.RunBooth(ctx.config, ctx.configPath(), ctx.logger)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (.toml or .json)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging and memory stats")

	rootCmd.AddCommand(newComposeCommand(ctx))
	rootCmd.AddCommand(newShootCommand(ctx))
	rootCmd.AddCommand(newGalleryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	return rootCmd
}
