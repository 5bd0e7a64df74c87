package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/mdtasks/internal/workspace"
	"github.com/ShayCichocki/mdtasks/pkg/models"
)

var (
	listTag  string
	listFlat bool
	listJSON bool
)

var listCmd = &cobra.Command{
	Use:   "list [DIR]",
	Short: "Print the task tree",
	Long: `Print every checkbox task found in Markdown files under DIR.

Tasks nest under the nearest preceding task with less indentation.
Use --flat for one task per line with its FILE:LINE location, which is
the form the check and uncheck commands accept.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := rootDir(args)
		ws := workspace.New(nil, cfg.RewriteOptions())

		tag := listTag
		if !cmd.Flags().Changed("tag") {
			tag = cfg.Workspace.FilterTag
		}

		batch, err := ws.Load(root, workspace.Filter{Tag: tag})
		if errors.Is(err, workspace.ErrNoFilesFound) {
			printStatus(cmd.ErrOrStderr(), "⚠", fmt.Sprintf("No markdown files found in %s", root), color.FgYellow)
			return nil
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case listJSON:
			return writeJSON(out, batch.Records)
		case listFlat:
			writeFlat(out, root, batch.Records)
		default:
			writeTree(out, root, batch.Records)
		}
		writeSummary(out, batch)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listTag, "tag", "", "Only show tasks whose tag contains this text (case-insensitive)")
	listCmd.Flags().BoolVar(&listFlat, "flat", false, "Print one task per line with its location")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print records as JSON")
}

// checkbox renders a status the way it appears in Markdown.
func checkbox(status models.TaskStatus) string {
	return "[" + status.Marker() + "]"
}

// relLocation returns FILE:LINE with FILE relative to root when possible.
func relLocation(root string, r models.TaskRecord) string {
	path := r.SourceFile
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		path = rel
	}
	return fmt.Sprintf("%s:%d", path, r.Line)
}

// writeTree prints records nested by indentation, grouped under their file.
func writeTree(w io.Writer, root string, records []models.TaskRecord) {
	done := color.New(color.FgGreen)
	dim := color.New(color.Faint)

	file := ""
	roots := models.BuildForestPerFile(records)
	models.Walk(roots, func(n *models.Node) bool {
		r := n.Record
		if r.SourceFile != file {
			file = r.SourceFile
			rel := file
			if p, err := filepath.Rel(root, file); err == nil {
				rel = p
			}
			fmt.Fprintln(w, color.New(color.Bold).Sprint(rel))
		}

		line := fmt.Sprintf("%s%s %s", strings.Repeat("  ", n.Depth()+1), checkbox(r.Status), r.Description)
		if r.Status == models.TaskStatusCompleted {
			line = done.Sprint(line)
		}
		fmt.Fprintf(w, "%s %s\n", line, dim.Sprintf(":%d", r.Line))
		return true
	})
}

// writeFlat prints one record per line with its location.
func writeFlat(w io.Writer, root string, records []models.TaskRecord) {
	for _, r := range records {
		fmt.Fprintf(w, "%s %s %s\n", relLocation(root, r), checkbox(r.Status), r.Description)
	}
}

func writeJSON(w io.Writer, records []models.TaskRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func writeSummary(w io.Writer, batch *workspace.Batch) {
	done := 0
	for _, r := range batch.Records {
		if r.Status == models.TaskStatusCompleted {
			done++
		}
	}
	fmt.Fprintf(w, "\n%d tasks (%d done, %d pending) in %d files\n",
		len(batch.Records), done, len(batch.Records)-done, len(batch.Files))
}
