package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/saldo/internal/category"
	categoryStore "github.com/MrJamesThe3rd/saldo/internal/category/store"
)

func NewCategoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage expense categories",
	}

	cmd.AddCommand(newCategoryAddCommand())
	cmd.AddCommand(newCategorySeedCommand())

	return cmd
}

func categoryService(e *env) *category.Service {
	return category.NewService(categoryStore.New(e.db, e.dialect))
}

func newCategoryAddCommand() *cobra.Command {
	var isDefault bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create or update a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect()
			if err != nil {
				return err
			}
			defer e.db.Close()

			c, err := categoryService(e).Create(cmd.Context(), category.CreateParams{Name: args[0], Default: isDefault})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "category %q saved\n", c.Name)

			return nil
		},
	}

	cmd.Flags().BoolVar(&isDefault, "default", false, "mark as a default category")

	return cmd
}

func newCategorySeedCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed -f <categories.yaml>",
		Short: "Upsert the categories listed in a YAML file (- reads stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()

			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()

				r = f
			}

			params, err := category.ParseSeed(r)
			if err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}

			e, err := connect()
			if err != nil {
				return err
			}
			defer e.db.Close()

			n, err := categoryService(e).Seed(cmd.Context(), params)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d categories\n", n)

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with a list of {name, default} entries")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
