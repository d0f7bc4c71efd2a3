package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"ingestmon/internal/logsource"
	"ingestmon/internal/model"
	"ingestmon/internal/parser"

	"github.com/spf13/cobra"
)

var (
	parseLines int
	parseJSON  bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Parse a log once and print the derived state",
	Long: "Parse the tail of a transfer log (the configured log_path by default, " +
		"or - for stdin) and print the transfer in flight and recent completions.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.LogPath
		if len(args) == 1 {
			path = args[0]
		}

		n := parseLines
		if n <= 0 {
			n = cfg.TailLines
		}

		var (
			lines []string
			err   error
		)
		if path == "-" {
			lines, err = tailReader(cmd.InOrStdin(), n)
		} else {
			lines, err = logsource.Tail(path, n)
		}
		if err != nil {
			return err
		}

		state := parser.New(cfg.ParserConfig()).Parse(lines, model.State{})

		out := cmd.OutOrStdout()
		if parseJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(state)
		}

		printState(out, state, time.Now())
		return nil
	},
}

// tailReader keeps the last n lines of r.
func tailReader(r io.Reader, n int) ([]string, error) {
	lines := make([]string, 0, n)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(lines) == n {
			lines = lines[1:]
		}
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	return lines, nil
}

func init() {
	parseCmd.Flags().IntVar(&parseLines, "lines", 0, "number of trailing lines to parse (default tail_lines)")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print JSON")
	rootCmd.AddCommand(parseCmd)
}
