package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/msomdec/catalog-admin/internal/service"
)

// SecretsOptions holds flags for the secrets generate command.
type SecretsOptions struct {
	*RootOptions
	Count    int
	Prefix   string
	Category string
}

// NewSecretsCommand creates the secrets command group.
func NewSecretsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage registration keys",
	}
	cmd.AddCommand(newSecretsGenerateCommand(rootOpts))
	cmd.AddCommand(newSecretsListCommand(rootOpts))
	return cmd
}

func newSecretsGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SecretsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Issue new single-use registration keys",
		Long: `Issue new single-use registration keys of the form PREFIX-CATEGORY-XXXXXX.

Example:
  catalog secrets generate --count 10 --prefix 2026 --category USER`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			created, err := service.NewSecretService(db.Secrets()).Generate(cmd.Context(), opts.Count, opts.Prefix, opts.Category)
			for _, s := range created {
				fmt.Fprintln(cmd.OutOrStdout(), s.Secret)
			}
			return err
		},
	}

	cmd.Flags().IntVar(&opts.Count, "count", 5, "number of keys to generate")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", fmt.Sprint(time.Now().Year()), "key prefix")
	cmd.Flags().StringVar(&opts.Category, "category", "USER", "key category")

	return cmd
}

func newSecretsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registration keys and whether they were used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rootOpts.openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			secrets, err := service.NewSecretService(db.Secrets()).List(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SECRET\tUSED\tUSER\tCREATED")
			for _, s := range secrets {
				user := "-"
				if s.UserID != nil {
					user = fmt.Sprint(*s.UserID)
				}
				fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", s.Secret, s.IsUsed, user, s.CreatedAt.Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
}
