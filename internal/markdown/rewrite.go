package markdown

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/ShayCichocki/mdtasks/internal/logging"
	"github.com/ShayCichocki/mdtasks/pkg/models"
)

// MatchMode selects how edits are paired with task lines on save.
type MatchMode string

const (
	// MatchTag replaces a task line with the first edit whose tag occurs in the
	// original line text. Edits are not consumed and an empty tag matches every
	// task line, so duplicate or missing tags can pair the wrong edit.
	MatchTag MatchMode = "tag"
	// MatchLine replaces exactly the line an edit was extracted from.
	// Edits without a line number are ignored.
	MatchLine MatchMode = "line"
)

// Valid returns true if the mode is a known value.
func (m MatchMode) Valid() bool {
	return m == MatchTag || m == MatchLine
}

// RewriteOptions controls how task lines are regenerated.
type RewriteOptions struct {
	// PreserveIndent keeps the original leading whitespace of a replaced line.
	// When false every replaced line starts at column 0.
	PreserveIndent bool
	// Match selects the edit-to-line pairing strategy.
	Match MatchMode
	// Atomic writes through a temporary file renamed over the original, so a
	// failed write never leaves a truncated file behind.
	Atomic bool
}

// DefaultRewriteOptions returns the legacy tag-matching, column-0 behavior with
// atomic writes.
func DefaultRewriteOptions() RewriteOptions {
	return RewriteOptions{
		PreserveIndent: false,
		Match:          MatchTag,
		Atomic:         true,
	}
}

// FormatLine renders an edit as a canonical checkbox line without terminator.
func FormatLine(edit models.TaskEdit, indent string) string {
	return fmt.Sprintf("%s- [%s] %s", indent, edit.Status.Marker(), edit.Description)
}

// RewriteContent applies edits to content and returns the new content with the
// number of lines replaced. Line count and all non-task lines are preserved.
func RewriteContent(content string, edits []models.TaskEdit, opts RewriteOptions) (string, int) {
	lines := splitLines(content)

	var byLine map[int]models.TaskEdit
	if opts.Match == MatchLine {
		byLine = make(map[int]models.TaskEdit, len(edits))
		for _, e := range edits {
			if e.Line <= 0 {
				continue
			}
			if _, dup := byLine[e.Line]; !dup {
				byLine[e.Line] = e
			}
		}
	}

	var b strings.Builder
	b.Grow(len(content))
	replaced := 0
	for i, line := range lines {
		m, ok := ParseLine(line)
		if !ok {
			b.WriteString(line)
			continue
		}

		var (
			edit  models.TaskEdit
			found bool
		)
		if opts.Match == MatchLine {
			edit, found = byLine[i+1]
		} else {
			edit, found = findByTag(edits, line)
		}
		if !found {
			b.WriteString(line)
			continue
		}

		indent := ""
		if opts.PreserveIndent {
			indent = m.Indent
		}
		_, term := splitTerminator(line)
		b.WriteString(FormatLine(edit, indent))
		b.WriteString(term)
		replaced++
	}
	return b.String(), replaced
}

// findByTag returns the first edit whose tag is a substring of the original line.
func findByTag(edits []models.TaskEdit, line string) (models.TaskEdit, bool) {
	for _, e := range edits {
		if strings.Contains(line, e.Tag) {
			return e, true
		}
	}
	return models.TaskEdit{}, false
}

// Rewriter writes edited tasks back into their source files.
type Rewriter struct {
	fs     afero.Fs
	opts   RewriteOptions
	logger *log.Logger
}

// NewRewriter creates a Rewriter over fs. A nil fs means the OS filesystem.
func NewRewriter(fs afero.Fs, opts RewriteOptions) *Rewriter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if !opts.Match.Valid() {
		opts.Match = MatchTag
	}
	return &Rewriter{
		fs:     fs,
		opts:   opts,
		logger: logging.For("rewrite"),
	}
}

// Options returns the options the rewriter was created with.
func (rw *Rewriter) Options() RewriteOptions {
	return rw.opts
}

// Rewrite replaces the matching task lines of path with edits and returns the
// number of lines replaced. The whole file is rewritten even when nothing
// changed.
func (rw *Rewriter) Rewrite(path string, edits []models.TaskEdit) (int, error) {
	data, err := afero.ReadFile(rw.fs, path)
	if err != nil {
		return 0, &ReadError{Path: path, Err: err}
	}

	content, replaced := RewriteContent(string(data), edits, rw.opts)

	perm := os.FileMode(0644)
	if info, err := rw.fs.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	if rw.opts.Atomic {
		target, lerr := rw.resolveLinks(path)
		if lerr != nil {
			return 0, &WriteError{Path: path, Err: lerr}
		}
		err = rw.writeAtomic(target, []byte(content), perm)
	} else {
		err = afero.WriteFile(rw.fs, path, []byte(content), perm)
	}
	if err != nil {
		return 0, &WriteError{Path: path, Err: err}
	}

	rw.logger.Debug("rewrote file", "path", path, "edits", len(edits), "replaced", replaced)
	return replaced, nil
}

// maxLinkHops bounds symlink chains, matching the usual kernel limit.
const maxLinkHops = 40

// resolveLinks follows symlinks from path to the file they point at, so an
// atomic rename replaces the target and not the link. Filesystems without
// symlink support return path unchanged.
func (rw *Rewriter) resolveLinks(path string) (string, error) {
	lstater, ok := rw.fs.(afero.Lstater)
	if !ok {
		return path, nil
	}
	reader, ok := rw.fs.(afero.LinkReader)
	if !ok {
		return path, nil
	}

	for i := 0; i < maxLinkHops; i++ {
		info, lstatCalled, err := lstater.LstatIfPossible(path)
		if err != nil || !lstatCalled || info.Mode()&os.ModeSymlink == 0 {
			return path, nil
		}
		target, err := reader.ReadlinkIfPossible(path)
		if err != nil {
			return "", fmt.Errorf("read link %s: %w", path, err)
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = target
	}
	return "", fmt.Errorf("too many links at %s", path)
}

// writeAtomic writes data to a sibling temp file and renames it over path.
func (rw *Rewriter) writeAtomic(path string, data []byte, perm os.FileMode) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := afero.TempFile(rw.fs, dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		rw.fs.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		rw.fs.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		rw.fs.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := rw.fs.Chmod(tmpName, perm); err != nil {
		rw.fs.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := rw.fs.Rename(tmpName, path); err != nil {
		rw.fs.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Rewrite applies edits to path on the OS filesystem with default options.
func Rewrite(path string, edits []models.TaskEdit) error {
	_, err := NewRewriter(nil, DefaultRewriteOptions()).Rewrite(path, edits)
	return err
}
