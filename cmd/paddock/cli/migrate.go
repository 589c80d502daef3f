package cli

import (
	"github.com/spf13/cobra"

	"github.com/mkoziy/paddock/internal/migrations"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var rollback bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Apply every pending migration, or roll back the last group with --rollback.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := opts.openDB(ctx)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if rollback {
				return migrations.Rollback(ctx, db)
			}
			return migrations.RunMigrations(ctx, db)
		},
	}

	cmd.Flags().BoolVar(&rollback, "rollback", false, "Roll back the last migration group")
	return cmd
}
