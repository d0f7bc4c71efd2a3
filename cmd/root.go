package cmd

import (
	"fmt"
	"os"

	"ingestmon/internal/config"
	"ingestmon/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfg   *config.Config
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "ingestmon",
	Short: "Monitor a media ingest from its transfer log",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		logger.Init(debug)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func daemonURL(path string) string {
	return fmt.Sprintf("http://localhost:%d%s", cfg.Port, path)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode")
}
