// Package workspace loads and saves checkbox tasks across a directory tree of
// Markdown files.
//
// Loads and saves run one file at a time in walk order and stop at the first
// failing file. There is no caching: every Load re-reads every file.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/ShayCichocki/mdtasks/internal/logging"
	"github.com/ShayCichocki/mdtasks/internal/markdown"
	"github.com/ShayCichocki/mdtasks/pkg/models"
)

// MarkdownExt is the extension of files scanned for tasks.
const MarkdownExt = ".md"

// ErrNoFilesFound is returned by Load when the walk finds no Markdown files.
// It is informational: the accompanying batch is valid and empty.
var ErrNoFilesFound = errors.New("no markdown files found")

// Filter narrows the records shown after a load.
type Filter struct {
	// Tag keeps records whose tag contains this text, ignoring case.
	Tag string
}

// Match reports whether the record passes the filter.
func (f Filter) Match(r models.TaskRecord) bool {
	tag := strings.TrimSpace(f.Tag)
	if tag == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Tag), strings.ToLower(tag))
}

// Apply returns the records that pass the filter, keeping order.
func (f Filter) Apply(records []models.TaskRecord) []models.TaskRecord {
	if strings.TrimSpace(f.Tag) == "" {
		return records
	}
	out := make([]models.TaskRecord, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Batch is the result of one load.
type Batch struct {
	// ID is unique per load; records carry no identity across loads beyond
	// their file and line.
	ID       string
	Root     string
	Files    []string
	Records  []models.TaskRecord
	LoadedAt time.Time
}

// SaveResult summarizes a save.
type SaveResult struct {
	Files    []string
	Replaced map[string]int
}

// TotalReplaced returns the number of lines replaced across all files.
func (r SaveResult) TotalReplaced() int {
	total := 0
	for _, n := range r.Replaced {
		total += n
	}
	return total
}

// Workspace ties the extractor and rewriter to a filesystem.
type Workspace struct {
	fs        afero.Fs
	extractor *markdown.Extractor
	rewriter  *markdown.Rewriter
	logger    *log.Logger
}

// New creates a Workspace. A nil fs means the OS filesystem.
func New(fsys afero.Fs, opts markdown.RewriteOptions) *Workspace {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Workspace{
		fs:        fsys,
		extractor: markdown.NewExtractor(fsys),
		rewriter:  markdown.NewRewriter(fsys, opts),
		logger:    logging.For("workspace"),
	}
}

// RewriteOptions returns the options used when saving.
func (w *Workspace) RewriteOptions() markdown.RewriteOptions {
	return w.rewriter.Options()
}

// FindMarkdownFiles returns every .md file below root, in lexical walk order.
// A missing root is an error; entries below it that cannot be listed or
// stat'ed are logged and skipped.
func (w *Workspace) FindMarkdownFiles(root string) ([]string, error) {
	var files []string
	err := afero.Walk(w.fs, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			if path == root && info == nil {
				return err
			}
			w.logger.Warn("skipping unreadable path", "path", path, "err", err)
			return nil
		}
		if !info.IsDir() && strings.HasSuffix(info.Name(), MarkdownExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// LoadFile extracts the tasks of a single file, unfiltered.
func (w *Workspace) LoadFile(path string) ([]models.TaskRecord, error) {
	return w.extractor.Extract(path)
}

// Load extracts tasks from every Markdown file under root. The first
// unreadable file aborts the load. When no files exist the returned batch is
// empty and the error is ErrNoFilesFound.
func (w *Workspace) Load(root string, filter Filter) (*Batch, error) {
	batch := &Batch{
		ID:       uuid.New().String(),
		Root:     root,
		Records:  make([]models.TaskRecord, 0),
		LoadedAt: time.Now(),
	}

	files, err := w.FindMarkdownFiles(root)
	if err != nil {
		return nil, err
	}
	batch.Files = files
	if len(files) == 0 {
		w.logger.Info("no markdown files", "root", root)
		return batch, ErrNoFilesFound
	}

	for _, file := range files {
		records, err := w.extractor.Extract(file)
		if err != nil {
			return nil, err
		}
		batch.Records = append(batch.Records, records...)
	}
	batch.Records = filter.Apply(batch.Records)

	w.logger.Debug("loaded tasks", "batch", batch.ID, "files", len(files), "tasks", len(batch.Records))
	return batch, nil
}

// Save groups records by source file and rewrites each file in turn. It stops
// at the first file that fails; files already written stay written.
func (w *Workspace) Save(records []models.TaskRecord) (SaveResult, error) {
	files, grouped := models.GroupByFile(records)
	result := SaveResult{Replaced: make(map[string]int, len(files))}

	for _, file := range files {
		n, err := w.rewriter.Rewrite(file, grouped[file])
		if err != nil {
			w.logger.Error("save failed", "path", file, "err", err)
			return result, err
		}
		result.Files = append(result.Files, file)
		result.Replaced[file] = n
	}

	w.logger.Info("saved tasks", "files", len(result.Files), "replaced", result.TotalReplaced())
	return result, nil
}

// FindMarkdownFiles walks root on the OS filesystem.
func FindMarkdownFiles(root string) ([]string, error) {
	return New(nil, markdown.DefaultRewriteOptions()).FindMarkdownFiles(root)
}

// ParseLocation splits a "file:line" argument.
func ParseLocation(loc string) (string, int, error) {
	i := strings.LastIndex(loc, ":")
	if i <= 0 || i == len(loc)-1 {
		return "", 0, fmt.Errorf("invalid location %q: want FILE:LINE", loc)
	}
	line, err := strconv.Atoi(loc[i+1:])
	if err != nil || line <= 0 {
		return "", 0, fmt.Errorf("invalid line number in %q", loc)
	}
	return loc[:i], line, nil
}
