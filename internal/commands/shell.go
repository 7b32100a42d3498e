package commands

import (
	"github.com/spf13/cobra"

	"github.com/bankist-dev/bankist/internal/activity"
	"github.com/bankist-dev/bankist/internal/clock"
	"github.com/bankist-dev/bankist/internal/shell"
)

func newShellCommand(configPath *string) *cobra.Command {
	var activityPath string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive banking session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			dir, err := openDirectory(cfg)
			if err != nil {
				return err
			}

			logger.Debug("starting shell", "accounts", dir.Len())
			sh := shell.New(dir, clock.New(), cfg, cmd.OutOrStdout(), logger)
			if activityPath != "" {
				sh.RecordActivity(activity.NewRecorder(activityPath, logger))
			}
			return sh.Run(cmd.Context(), cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&activityPath, "activity", "", "append a CSV activity log to this file")

	return cmd
}
