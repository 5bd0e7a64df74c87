// Package markdown extracts checkbox tasks from Markdown files and writes
// edited tasks back in place.
//
// Only the single list-item pattern
//
//	<ws>* "-" <ws>* "[" <char> "]" <ws>* <description>
//
// is recognized. Every other line is inert context and is never modified.
package markdown

import (
	"bufio"
	"errors"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/afero"

	"github.com/ShayCichocki/mdtasks/pkg/models"
)

// ws is the Unicode whitespace class: RE2's \s is ASCII only.
const ws = `[\s\x0B\x1C-\x1F\x{85}\p{Z}]`

var (
	// taskLinePattern captures indent, marker and the rest of the line.
	taskLinePattern = regexp.MustCompile(`^(` + ws + `*)-` + ws + `*\[(.)\]` + ws + `*(.*)`)
	// tagPattern matches an @word tag of letters, digits and underscores in any
	// script; only the first occurrence is used.
	tagPattern = regexp.MustCompile(`@[\p{L}\p{N}_]+`)
)

// isSpace reports whether r belongs to the ws class.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Z, r) || (r >= 0x1C && r <= 0x1F)
}

// LineMatch is the result of matching a single line against the task pattern.
type LineMatch struct {
	// Indent is the leading whitespace exactly as it appears in the line.
	Indent      string
	Marker      string
	Description string
	Tag         string
}

// Status returns Completed only for a lowercase "x" marker.
func (m LineMatch) Status() models.TaskStatus {
	if strings.TrimSpace(m.Marker) == "x" {
		return models.TaskStatusCompleted
	}
	return models.TaskStatusPending
}

// IndentWidth is the number of whitespace characters before the dash.
// Tabs count as one.
func (m LineMatch) IndentWidth() int {
	return utf8.RuneCountInString(m.Indent)
}

// ParseLine matches one line of text, with or without its terminator.
func ParseLine(line string) (LineMatch, bool) {
	text, _ := splitTerminator(line)
	groups := taskLinePattern.FindStringSubmatch(text)
	if groups == nil {
		return LineMatch{}, false
	}
	desc := strings.TrimFunc(groups[3], isSpace)
	return LineMatch{
		Indent:      groups[1],
		Marker:      groups[2],
		Description: desc,
		Tag:         tagPattern.FindString(desc),
	}, true
}

// Extractor reads task records from files on a filesystem.
type Extractor struct {
	fs afero.Fs
}

// NewExtractor creates an Extractor over fs. A nil fs means the OS filesystem.
func NewExtractor(fs afero.Fs) *Extractor {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Extractor{fs: fs}
}

// Extract returns the task records of path in line order.
// A file without task lines yields an empty slice and no error.
func (e *Extractor) Extract(path string) ([]models.TaskRecord, error) {
	f, err := e.fs.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	records, err := ExtractReader(path, f)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return records, nil
}

// Extract reads path from the OS filesystem.
func Extract(path string) ([]models.TaskRecord, error) {
	return NewExtractor(nil).Extract(path)
}

// ExtractReader parses tasks from r, attributing them to sourceFile.
func ExtractReader(sourceFile string, r io.Reader) ([]models.TaskRecord, error) {
	records := make([]models.TaskRecord, 0)
	br := bufio.NewReader(r)
	lineNo := 0
	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if line == "" && err != nil {
			break
		}
		lineNo++

		if m, ok := ParseLine(line); ok {
			records = append(records, models.TaskRecord{
				ID:          models.RecordID(sourceFile, lineNo),
				Indent:      m.IndentWidth(),
				Status:      m.Status(),
				Description: m.Description,
				Tag:         m.Tag,
				SourceFile:  sourceFile,
				Line:        lineNo,
				RawLine:     line,
			})
		}

		if err != nil {
			break
		}
	}
	return records, nil
}

// splitTerminator separates a line from its "\n" or "\r\n" ending.
func splitTerminator(line string) (text, term string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	default:
		return line, ""
	}
}

// splitLines splits content into lines that keep their terminators, so joining
// the result reproduces content exactly.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
