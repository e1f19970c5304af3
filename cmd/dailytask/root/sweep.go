package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dailytask/internal/alarm"
	"dailytask/internal/config"
	"dailytask/internal/sweep"
	"dailytask/internal/timer"
)

// newSweepCmd reports what a reminder sweep would arm right now. Useful for
// checking which reminders are live without starting the TUI.
func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "List reminders that currently have a future trigger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.RuntimeConfigFromEnv(config.DefaultRuntimeConfig())
			repo, err := openRepository(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = repo.Close() }()

			engine := timer.NewEngine(timer.Options{
				BufferSize:   cfg.TimerBuffer,
				ExactAllowed: cfg.ExactAlarms,
				InexactSlack: cfg.InexactSlack,
			})
			scheduler := alarm.NewScheduler(engine, nil, nil)
			sweeper := sweep.New(repo, scheduler, time.Local, nil)

			armed, err := sweeper.RearmAll(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d reminder(s) with a future trigger\n", armed)
			return nil
		},
	}
}
