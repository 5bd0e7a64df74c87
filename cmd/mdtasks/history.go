package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/mdtasks/internal/logging"
	"github.com/ShayCichocki/mdtasks/internal/state"
	"github.com/ShayCichocki/mdtasks/internal/workspace"
)

var (
	historyLimit int
	historyPurge time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent saves",
	Long: `List the files written by recent saves, newest first.

Saves from the TUI, check, uncheck, and normalize are all recorded.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if historyPurge > 0 {
			n, err := db.PurgeOldSaves(historyPurge)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d saves older than %s\n", n, historyPurge)
			return nil
		}

		saves, err := db.ListSaves(historyLimit)
		if err != nil {
			return err
		}
		writeHistory(cmd.OutOrStdout(), saves)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of saves to show (0 for all)")
	historyCmd.Flags().DurationVar(&historyPurge, "purge", 0, "Delete saves older than this duration instead of listing")
}

func writeHistory(w io.Writer, saves []state.SaveRecord) {
	if len(saves) == 0 {
		fmt.Fprintln(w, "No saves recorded")
		return
	}
	for _, s := range saves {
		batch := s.BatchID
		if len(batch) > 8 {
			batch = batch[:8]
		}
		fmt.Fprintf(w, "%s  %-8s  %4d  %s\n", s.SavedAt.Local().Format("2006-01-02 15:04:05"), batch, s.Replaced, s.File)
	}
}

// recordHistory logs the files written by a CLI save. Failures only warn;
// the files are already written.
func recordHistory(batchID string, result workspace.SaveResult, at time.Time) {
	if len(result.Replaced) == 0 {
		return
	}
	logger := logging.For("history")

	db, err := openStore()
	if err != nil {
		logger.Warn("save not recorded", "err", err)
		return
	}
	defer db.Close()

	if err := db.RecordSaves(batchID, result.Replaced, at); err != nil {
		logger.Warn("save not recorded", "err", err)
	}
}
