package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bankist-dev/bankist/internal/clock"
	"github.com/bankist-dev/bankist/internal/directory"
	"github.com/bankist-dev/bankist/internal/statement"
)

func newStatementCommand(configPath *string) *cobra.Command {
	var sorted bool

	cmd := &cobra.Command{
		Use:   "statement <username>",
		Short: "Export an account's movements as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			dir, err := openDirectory(cfg)
			if err != nil {
				return err
			}

			acct, ok := dir.Find(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", directory.ErrNotFound, args[0])
			}
			return statement.Write(cmd.OutOrStdout(), acct, clock.New().Now(), sorted)
		},
	}

	cmd.Flags().BoolVar(&sorted, "sorted", false, "order movements by amount")

	return cmd
}
