package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ingestmon/internal/model"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the transfer in flight and recent completions",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Get(daemonURL("/status"))
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		var status model.Status
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			return fmt.Errorf("failed to decode status response: %w", err)
		}

		printStatus(cmd.OutOrStdout(), status, time.Now())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
