// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf2comic/internal/ledger"
	"github.com/pdiddy/pdf2comic/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past conversions",
	Long: `History lists the outcome of recently converted documents, newest
first, from the SQLite history database in the state directory.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 0, "maximum entries to list (0 = default 50)")
	historyCmd.Flags().String("format", "table", "output format: table, yaml, or json")

	rootCmd.AddCommand(historyCmd)
}

func historyConfig() types.HistoryConfig {
	return types.HistoryConfig{StateDir: viper.GetString("state_dir")}
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	store, err := ledger.NewStore(historyConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(context.Background(), limit)
	if err != nil {
		return err
	}

	switch format {
	case "table", "":
		printHistoryTable(entries)
		return nil
	case "yaml":
		return ledger.WriteYAML(os.Stdout, entries)
	case "json":
		return ledger.WriteJSON(os.Stdout, entries)
	default:
		return fmt.Errorf("unsupported format %q: use table, yaml, or json", format)
	}
}

func printHistoryTable(entries []ledger.Entry) {
	if len(entries) == 0 {
		fmt.Println("No conversions recorded.")
		return
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-9s  %-30s  %-5s  %s\n", "When", "Status", "Source", "Pages", "Error")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, e := range entries {
		fmt.Fprintf(os.Stdout, "%-20s  %-9s  %-30s  %-5d  %s\n",
			e.RecordedAt.Local().Format("2006-01-02 15:04:05"), e.Status,
			truncate(filepath.Base(e.Source), 30), e.Pages, truncate(e.Error, 30))
	}
	fmt.Fprintf(os.Stdout, "\n%d entries\n", len(entries))
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
