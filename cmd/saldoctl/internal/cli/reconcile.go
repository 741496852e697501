package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/saldo/internal/transaction"
	txStore "github.com/MrJamesThe3rd/saldo/internal/transaction/store"
)

type reconcileOptions struct {
	users  []string
	repair bool
}

// NewReconcileCommand checks stored balances against their ledgers. Without
// --repair it fails when any balance has drifted, so it can run from cron.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &reconcileOptions{}

	cmd := &cobra.Command{
		Use:   "reconcile --user <id> [--user <id>...]",
		Short: "Compare stored balances with their transaction ledgers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect()
			if err != nil {
				return err
			}
			defer e.db.Close()

			svc := transaction.NewService(txStore.New(e.db, e.dialect))
			out := cmd.OutOrStdout()
			styles := newStatusStyles(out)
			drifted := 0

			for _, uid := range opts.users {
				check := svc.Reconcile
				if opts.repair {
					check = svc.Repair
				}

				rec, err := check(cmd.Context(), uid)
				if err != nil {
					return fmt.Errorf("%s: %w", uid, err)
				}

				status := styles.ok.Render("ok")

				if rec.Drift {
					drifted++
					status = styles.drift.Render("drift")

					if opts.repair {
						status = styles.repaired.Render("repaired")
					}

					slog.Warn("balance drift", "user_id", uid, "stored", rec.Stored, "computed", rec.Computed)
				}

				fmt.Fprintf(out, "%s\tstored=%s\tcomputed=%s\t%s\n", uid,
					transaction.FormatAmount(rec.Stored), transaction.FormatAmount(rec.Computed), status)
			}

			if drifted > 0 && !opts.repair {
				return fmt.Errorf("%d balance(s) drifted; rerun with --repair", drifted)
			}

			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&opts.users, "user", "u", nil, "user id to check (repeatable)")
	cmd.Flags().BoolVar(&opts.repair, "repair", false, "overwrite drifted balances with the ledger sum")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

type statusStyles struct {
	ok, drift, repaired lipgloss.Style
}

// newStatusStyles colors statuses only when w is a color-capable terminal.
func newStatusStyles(w io.Writer) statusStyles {
	r := lipgloss.NewRenderer(w)

	return statusStyles{
		ok:       r.NewStyle().Foreground(lipgloss.Color("46")),
		drift:    r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		repaired: r.NewStyle().Foreground(lipgloss.Color("214")),
	}
}
