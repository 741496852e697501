package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/saldo/internal/database"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect()
			if err != nil {
				return err
			}
			defer e.db.Close()

			applied, err := database.Migrate(cmd.Context(), e.db, e.dialect)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if len(applied) == 0 {
				fmt.Fprintln(out, "database is up to date")
				return nil
			}

			for _, name := range applied {
				fmt.Fprintf(out, "applied %s\n", name)
			}

			return nil
		},
	}
}
