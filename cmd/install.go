package cmd

import (
	"fmt"
	"os"

	"ingestmon/internal/autostart"

	"github.com/spf13/cobra"
)

const serviceName = "ingestmon"

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Start the daemon automatically at login",
	RunE: func(cmd *cobra.Command, args []string) error {
		as := autostart.New(serviceName)

		installed, err := as.IsInstalled()
		if err != nil {
			return err
		}
		if installed {
			fmt.Fprintln(cmd.OutOrStdout(), "ingestmon daemon is already registered")
			return nil
		}

		execPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to get executable path: %w", err)
		}

		if err := as.Install(autostart.Service{
			Name:        serviceName,
			Description: "Media ingest monitor",
			ExecPath:    execPath,
			Args:        []string{"watch"},
		}); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "ingestmon daemon registered for autostart")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
