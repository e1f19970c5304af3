package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"dailytask/internal/config"
	"dailytask/internal/storage"
)

func newMigrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply (or roll back) the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.RuntimeConfigFromEnv(config.DefaultRuntimeConfig())
			repo, err := storage.OpenSQLite(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = repo.Close() }()

			if down {
				if err := storage.MigrateDown(repo.DB()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema rolled back:", cfg.DBPath)
				return nil
			}
			if err := storage.MigrateUp(repo.DB()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date:", cfg.DBPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll the schema back instead of applying it")
	return cmd
}
