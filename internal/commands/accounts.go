package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bankist-dev/bankist/internal/directory"
	"github.com/bankist-dev/bankist/internal/format"
	"github.com/bankist-dev/bankist/internal/ledger"
)

func newAccountsCommand(configPath *string) *cobra.Command {
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List registered accounts and their balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			dir, err := openDirectory(cfg)
			if err != nil {
				return err
			}

			if asCSV {
				return directory.WriteAccounts(cmd.OutOrStdout(), dir.All())
			}

			f := format.New()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "USERNAME\tOWNER\tMOVEMENTS\tBALANCE")
			for _, acct := range dir.All() {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
					acct.Username,
					acct.Owner,
					len(acct.Movements),
					f.Currency(ledger.Balance(acct), acct.Locale, acct.Currency))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV instead of a table")

	return cmd
}
