package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ingestmon/internal/model"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var historyN int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived completed ingests",
	RunE: func(cmd *cobra.Command, args []string) error {
		url := fmt.Sprintf("%s?n=%d", daemonURL("/api/history"), historyN)
		resp, err := http.Get(url)
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("history unavailable: %s", resp.Status)
		}

		var ingests []model.Ingest
		if err := json.NewDecoder(resp.Body).Decode(&ingests); err != nil {
			return err
		}

		printHistory(cmd.OutOrStdout(), ingests, time.Now())
		return nil
	},
}

func printHistory(w io.Writer, ingests []model.Ingest, now time.Time) {
	if len(ingests) == 0 {
		_, _ = fmt.Fprintln(w, "no ingests yet")
		return
	}

	for _, in := range ingests {
		_, _ = fmt.Fprintf(w, "✓ [%s] %-40s %-12s %-8s %s\n",
			in.CompletedAt.Local().Format("2006-01-02 15:04:05"),
			in.Filename,
			in.Throughput,
			in.Size,
			humanize.RelTime(in.CompletedAt, now, "ago", "from now"),
		)
	}
}

func init() {
	historyCmd.Flags().IntVar(&historyN, "n", 20, "number of entries to show")
	rootCmd.AddCommand(historyCmd)
}
