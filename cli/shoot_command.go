package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/soocke/mystic-booth/booth"
	"github.com/soocke/mystic-booth/domain/session"
)

func newShootCommand(ctx *commandContext) *cobra.Command {
	var timeout time.Duration
	var timer int

	cmd := &cobra.Command{
		Use:   "shoot",
		Short: "Run one unattended session against the screen and save the strip",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *ctx.config
			if cmd.Flags().Changed("timer") {
				if !session.ValidTimer(timer) {
					return fmt.Errorf("timer must be one of %v", session.TimerChoices)
				}
				cfg.TimerSeconds = timer
			}
			svc, err := booth.New(&cfg, ctx.logger)
			if err != nil {
				return err
			}
			defer svc.Close()

			runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			runCtx, cancel := context.WithTimeout(runCtx, timeout)
			defer cancel()

			res, err := svc.Shoot(runCtx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", res.Path, humanize.Bytes(uint64(res.Bytes)))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Give up after this long")
	cmd.Flags().IntVar(&timer, "timer", 3, "Countdown seconds per shot (0, 3, 5 or 10)")
	return cmd
}
