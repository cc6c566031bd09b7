package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/store"
)

// storeCommand creates the layout store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage stored layouts",
	}

	cmd.AddCommand(c.storePruneCommand())
	cmd.AddCommand(c.storePathCommand())

	return cmd
}

// storePruneCommand creates the "store prune" subcommand.
func (c *CLI) storePruneCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove layouts that have not been opened recently",
		RunE: func(cmd *cobra.Command, args []string) error {
			expiry := c.Config.Store.Expiry()
			if cmd.Flags().Changed("days") {
				if days <= 0 {
					return fmt.Errorf("--days must be positive, got %d", days)
				}
				expiry = time.Duration(days) * 24 * time.Hour
			}

			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := st.Prune(cmd.Context(), expiry)
			if err != nil {
				return err
			}
			printSuccess("Removed %d layouts", n)
			printDetail("Older than %d days", int(expiry/(24*time.Hour)))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "expiry in days (default from config, 90)")
	return cmd
}

// storePathCommand creates the "store path" subcommand.
func (c *CLI) storePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file store directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			fs, ok := st.(*store.FileStore)
			if !ok {
				return fmt.Errorf("store backend %q has no directory", c.Config.Store.Backend)
			}
			fmt.Fprintln(cmd.OutOrStdout(), fs.Path())
			return nil
		},
	}
}
