package models

import (
	"testing"
)

func TestTaskStatus_Valid(t *testing.T) {
	tests := []struct {
		name   string
		status TaskStatus
		want   bool
	}{
		{"pending is valid", TaskStatusPending, true},
		{"completed is valid", TaskStatusCompleted, true},
		{"empty string is invalid", TaskStatus(""), false},
		{"lowercase is invalid", TaskStatus("pending"), false},
		{"unknown status is invalid", TaskStatus("done"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("TaskStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestTaskStatus_MarkerAndToggle(t *testing.T) {
	if got := TaskStatusCompleted.Marker(); got != "x" {
		t.Errorf("Completed.Marker() = %q, want %q", got, "x")
	}
	if got := TaskStatusPending.Marker(); got != " " {
		t.Errorf("Pending.Marker() = %q, want %q", got, " ")
	}
	if got := TaskStatusPending.Toggle(); got != TaskStatusCompleted {
		t.Errorf("Pending.Toggle() = %q, want Completed", got)
	}
	if got := TaskStatusCompleted.Toggle(); got != TaskStatusPending {
		t.Errorf("Completed.Toggle() = %q, want Pending", got)
	}
}

func TestParseTaskStatus(t *testing.T) {
	if s, err := ParseTaskStatus("Completed"); err != nil || s != TaskStatusCompleted {
		t.Errorf("ParseTaskStatus(Completed) = %q, %v", s, err)
	}
	if _, err := ParseTaskStatus("finished"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestRecordID_Stable(t *testing.T) {
	a := RecordID("notes/todo.md", 3)
	b := RecordID("notes/todo.md", 3)
	if a != b {
		t.Errorf("RecordID not stable: %s != %s", a, b)
	}
	if a == RecordID("notes/todo.md", 4) {
		t.Error("different lines should give different IDs")
	}
	if a == RecordID("notes/other.md", 3) {
		t.Error("different files should give different IDs")
	}
}

func TestTaskRecord_Edit(t *testing.T) {
	r := TaskRecord{
		ID:          RecordID("a.md", 2),
		Indent:      2,
		Status:      TaskStatusPending,
		Description: "Buy milk @home",
		Tag:         "@home",
		SourceFile:  "a.md",
		Line:        2,
	}

	e := r.Edit()
	if e.Status != r.Status || e.Description != r.Description || e.Tag != r.Tag {
		t.Errorf("Edit() = %+v, fields do not match record", e)
	}
	if e.Line != 2 || e.ID != r.ID {
		t.Errorf("Edit() lost identity: line=%d id=%q", e.Line, e.ID)
	}
	if r.Location() != "a.md:2" {
		t.Errorf("Location() = %q, want a.md:2", r.Location())
	}
}

func TestGroupByFile(t *testing.T) {
	records := []TaskRecord{
		{SourceFile: "b.md", Description: "one", Line: 1},
		{SourceFile: "a.md", Description: "two", Line: 1},
		{SourceFile: "b.md", Description: "three", Line: 5},
	}

	files, grouped := GroupByFile(records)

	if len(files) != 2 || files[0] != "b.md" || files[1] != "a.md" {
		t.Fatalf("files = %v, want [b.md a.md]", files)
	}
	if len(grouped["b.md"]) != 2 {
		t.Fatalf("b.md edits = %d, want 2", len(grouped["b.md"]))
	}
	if grouped["b.md"][0].Description != "one" || grouped["b.md"][1].Description != "three" {
		t.Errorf("b.md edits out of order: %+v", grouped["b.md"])
	}
}
