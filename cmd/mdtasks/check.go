package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/mdtasks/internal/markdown"
	"github.com/ShayCichocki/mdtasks/internal/workspace"
	"github.com/ShayCichocki/mdtasks/pkg/models"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE:LINE...",
	Short: "Mark tasks as completed",
	Long: `Mark the checkbox tasks at the given locations as completed.

Only the named lines are rewritten, keeping their indentation; every other
line in the file is left untouched. Locations are printed by "mdtasks list --flat".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetStatus(cmd, args, models.TaskStatusCompleted)
	},
}

var uncheckCmd = &cobra.Command{
	Use:   "uncheck FILE:LINE...",
	Short: "Mark tasks as pending",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetStatus(cmd, args, models.TaskStatusPending)
	},
}

func runSetStatus(cmd *cobra.Command, locations []string, status models.TaskStatus) error {
	opts := cfg.RewriteOptions()
	opts.Match = markdown.MatchLine
	opts.PreserveIndent = true
	ws := workspace.New(nil, opts)

	records, err := selectRecords(ws, locations)
	if err != nil {
		return err
	}
	for i := range records {
		records[i].Status = status
	}

	result, err := ws.Save(records)
	recordHistory(uuid.New().String(), result, time.Now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range records {
		printStatus(out, "✓", fmt.Sprintf("%s %s %s", r.Location(), checkbox(status), r.Description), color.FgGreen)
	}
	return nil
}

// selectRecords resolves FILE:LINE locations to the task records on those
// lines. Each file is read once.
func selectRecords(ws *workspace.Workspace, locations []string) ([]models.TaskRecord, error) {
	byFile := make(map[string][]models.TaskRecord)
	seen := make(map[string]bool)
	var selected []models.TaskRecord

	for _, loc := range locations {
		file, line, err := workspace.ParseLocation(loc)
		if err != nil {
			return nil, err
		}

		records, ok := byFile[file]
		if !ok {
			records, err = ws.LoadFile(file)
			if err != nil {
				return nil, err
			}
			byFile[file] = records
		}

		r, ok := findLine(records, line)
		if !ok {
			return nil, fmt.Errorf("%s: no task on line %d", file, line)
		}
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		selected = append(selected, r)
	}
	return selected, nil
}

func findLine(records []models.TaskRecord, line int) (models.TaskRecord, bool) {
	for _, r := range records {
		if r.Line == line {
			return r, true
		}
	}
	return models.TaskRecord{}, false
}
