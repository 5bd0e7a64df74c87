package models

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// TaskStatus represents the checkbox state of a task line.
type TaskStatus string

const (
	// TaskStatusPending is any checkbox whose marker is not a lowercase x.
	TaskStatusPending TaskStatus = "Pending"
	// TaskStatusCompleted is a checkbox marked with exactly "x".
	TaskStatusCompleted TaskStatus = "Completed"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// Marker returns the character written between the checkbox brackets.
func (s TaskStatus) Marker() string {
	if s == TaskStatusCompleted {
		return "x"
	}
	return " "
}

// Toggle returns the opposite status.
func (s TaskStatus) Toggle() TaskStatus {
	if s == TaskStatusCompleted {
		return TaskStatusPending
	}
	return TaskStatusCompleted
}

// ParseTaskStatus converts a display string back into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown task status: %q", s)
	}
	return status, nil
}

// recordNamespace scopes record IDs so they never collide with other SHA1 uuids.
var recordNamespace = uuid.MustParse("4f1c6a52-2a7e-4d0e-9a57-2b1f6f0c9e11")

// RecordID returns the stable identifier of the task on the given line of a file.
// The same file and line always yield the same ID, across loads.
func RecordID(sourceFile string, line int) string {
	return uuid.NewSHA1(recordNamespace, []byte(sourceFile+":"+strconv.Itoa(line))).String()
}

// TaskRecord is one parsed checkbox line.
type TaskRecord struct {
	// ID identifies the source line (file + line number).
	ID string `json:"id"`
	// Indent is the raw count of leading whitespace characters.
	// It is only meaningful relative to other records.
	Indent int `json:"indent"`
	// Status is Completed iff the marker is exactly "x".
	Status TaskStatus `json:"status"`
	// Description is the trimmed text after the checkbox.
	Description string `json:"description"`
	// Tag is the first @word token in Description, or empty.
	Tag string `json:"tag,omitempty"`
	// SourceFile is the path the record was read from.
	SourceFile string `json:"source_file"`
	// Line is the 1-based line number in SourceFile.
	Line int `json:"line"`
	// RawLine is the unmodified source text, including its terminator.
	RawLine string `json:"raw_line"`
}

// Location returns "file:line" for display and command arguments.
func (r TaskRecord) Location() string {
	return fmt.Sprintf("%s:%d", r.SourceFile, r.Line)
}

// Edit returns the edit that writes this record back with its current fields.
func (r TaskRecord) Edit() TaskEdit {
	return TaskEdit{
		Status:      r.Status,
		Description: r.Description,
		Tag:         r.Tag,
		Line:        r.Line,
		ID:          r.ID,
	}
}

// TaskEdit is the data the consumer hands back for one task when saving a file.
type TaskEdit struct {
	Status      TaskStatus `json:"status"`
	Description string     `json:"description"`
	Tag         string     `json:"tag"`
	// Line is the source line the edit came from, 0 when unknown.
	Line int `json:"line,omitempty"`
	// ID is the originating record ID, if any.
	ID string `json:"id,omitempty"`
}

// GroupByFile collects edits per source file. Files are returned in the order
// they first appear in records; edits keep record order within a file.
func GroupByFile(records []TaskRecord) ([]string, map[string][]TaskEdit) {
	var files []string
	grouped := make(map[string][]TaskEdit)
	for _, r := range records {
		if _, ok := grouped[r.SourceFile]; !ok {
			files = append(files, r.SourceFile)
		}
		grouped[r.SourceFile] = append(grouped[r.SourceFile], r.Edit())
	}
	return files, grouped
}
