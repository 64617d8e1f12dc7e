package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent extractions",
	RunE:  historyRun,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of entries to show")
}

func historyRun(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	entries, err := store.Recent(cmd.Context(), flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No history entries found.")
		return nil
	}

	for _, e := range entries {
		mark := " "
		if e.Transcoded {
			mark = "T"
		}
		title := e.Title
		if title == "" {
			title = e.VideoURL
		}
		fmt.Printf("%s  %-4s %s  %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Extension, mark, title)
	}
	return nil
}
