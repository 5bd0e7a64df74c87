package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/mdtasks/internal/workspace"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [DIR]",
	Short: "Rewrite every task line in canonical form",
	Long: `Load every task under DIR and write it straight back.

Each checkbox line is rewritten as "- [x] description" or "- [ ] description".
Running normalize twice changes nothing the second time. Indentation is
stripped unless rewrite.preserve_indent is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := rootDir(args)
		ws := workspace.New(nil, cfg.RewriteOptions())

		batch, err := ws.Load(root, workspace.Filter{})
		if errors.Is(err, workspace.ErrNoFilesFound) {
			printStatus(cmd.ErrOrStderr(), "⚠", fmt.Sprintf("No markdown files found in %s", root), color.FgYellow)
			return nil
		}
		if err != nil {
			return err
		}

		result, err := ws.Save(batch.Records)
		recordHistory(batch.ID, result, time.Now())

		out := cmd.OutOrStdout()
		for _, file := range result.Files {
			printStatus(out, "✓", fmt.Sprintf("%s (%d lines)", file, result.Replaced[file]), color.FgGreen)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nNormalized %d tasks in %d files\n", result.TotalReplaced(), len(result.Files))
		return nil
	},
}
