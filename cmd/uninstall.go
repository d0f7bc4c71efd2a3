package cmd

import (
	"fmt"

	"ingestmon/internal/autostart"

	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the autostart registration",
	RunE: func(cmd *cobra.Command, args []string) error {
		as := autostart.New(serviceName)
		if err := as.Uninstall(); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "ingestmon daemon autostart removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
