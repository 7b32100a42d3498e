package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bankist-dev/bankist/internal/buildinfo"
	"github.com/bankist-dev/bankist/internal/config"
	"github.com/bankist-dev/bankist/internal/directory"
	"github.com/bankist-dev/bankist/internal/logging"
)

// DefaultConfigFile is read from the working directory when --config is not
// given.
const DefaultConfigFile = "bankist.yaml"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "bankist",
		Short:   "In-memory banking ledger simulator",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./"+DefaultConfigFile+" when present)")

	rootCmd.AddCommand(newShellCommand(&configPath))
	rootCmd.AddCommand(newAccountsCommand(&configPath))
	rootCmd.AddCommand(newStatementCommand(&configPath))
	rootCmd.AddCommand(newInitCommand())

	return rootCmd
}

// loadConfig reads path, or DefaultConfigFile when path is empty. A missing
// default file falls back to the built-in configuration.
func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	cfg, err := config.Load(path)
	switch {
	case err == nil:
	case !explicit && errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	default:
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// openDirectory builds the account directory from the configured seed
// accounts, or the demo accounts when none are configured.
func openDirectory(cfg *config.Config) (*directory.Directory, error) {
	accts, err := cfg.SeedAccounts()
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	if len(accts) == 0 {
		accts = directory.DefaultAccounts()
	}
	return directory.New(accts)
}

func newLogger(cfg *config.Config, w io.Writer) (*log.Logger, error) {
	logger, err := logging.New(cfg.Log, w)
	if err != nil {
		return nil, fmt.Errorf("configuring logging: %w", err)
	}
	return logger, nil
}
