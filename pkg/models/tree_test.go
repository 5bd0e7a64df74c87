package models

import "testing"

func descriptions(nodes []*Node) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Record.Description)
	}
	return out
}

func TestBuildForest(t *testing.T) {
	records := []TaskRecord{
		{Indent: 0, Description: "a"},
		{Indent: 2, Description: "a1"},
		{Indent: 4, Description: "a1x"},
		{Indent: 2, Description: "a2"},
		{Indent: 0, Description: "b"},
		{Indent: 4, Description: "b1"},
		{Indent: 2, Description: "b2"},
	}

	roots := BuildForest(records)

	if got := descriptions(roots); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("roots = %v, want [a b]", got)
	}
	a := roots[0]
	if got := descriptions(a.Children); len(got) != 2 || got[0] != "a1" || got[1] != "a2" {
		t.Errorf("a children = %v, want [a1 a2]", got)
	}
	if got := descriptions(a.Children[0].Children); len(got) != 1 || got[0] != "a1x" {
		t.Errorf("a1 children = %v, want [a1x]", got)
	}
	if a.Children[0].Children[0].Depth() != 2 {
		t.Errorf("a1x depth = %d, want 2", a.Children[0].Children[0].Depth())
	}

	// b2 has indent 2: nearest preceding smaller indent is b (0), not b1 (4).
	b := roots[1]
	if got := descriptions(b.Children); len(got) != 2 || got[0] != "b1" || got[1] != "b2" {
		t.Errorf("b children = %v, want [b1 b2]", got)
	}
}

func TestBuildForest_OrphanIndentIsRoot(t *testing.T) {
	records := []TaskRecord{
		{Indent: 4, Description: "orphan"},
		{Indent: 6, Description: "child"},
	}

	roots := BuildForest(records)

	if len(roots) != 1 || roots[0].Record.Description != "orphan" {
		t.Fatalf("roots = %v, want [orphan]", descriptions(roots))
	}
	if len(roots[0].Children) != 1 {
		t.Errorf("orphan children = %d, want 1", len(roots[0].Children))
	}
}

func TestBuildForest_FileBoundary(t *testing.T) {
	records := []TaskRecord{
		{Indent: 0, Description: "a", SourceFile: "a.md"},
		{Indent: 2, Description: "a1", SourceFile: "a.md"},
		{Indent: 2, Description: "b1", SourceFile: "b.md"},
	}

	tests := []struct {
		name      string
		build     func([]TaskRecord) []*Node
		wantRoots []string
		wantKids  int
	}{
		{
			name:      "batch wide nests across files",
			build:     BuildForest,
			wantRoots: []string{"a"},
			wantKids:  2,
		},
		{
			name:      "per file starts each file fresh",
			build:     BuildForestPerFile,
			wantRoots: []string{"a", "b1"},
			wantKids:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := make([]TaskRecord, len(records))
			copy(input, records)

			roots := tt.build(input)

			got := descriptions(roots)
			if len(got) != len(tt.wantRoots) {
				t.Fatalf("roots = %v, want %v", got, tt.wantRoots)
			}
			for i := range got {
				if got[i] != tt.wantRoots[i] {
					t.Errorf("root %d = %q, want %q", i, got[i], tt.wantRoots[i])
				}
			}
			if len(roots[0].Children) != tt.wantKids {
				t.Errorf("a children = %d, want %d", len(roots[0].Children), tt.wantKids)
			}
		})
	}
}

func TestBuildForest_IndentZeroAlwaysRoot(t *testing.T) {
	records := []TaskRecord{
		{Indent: 0, Description: "a"},
		{Indent: 0, Description: "b"},
	}
	roots := BuildForest(records)
	if len(roots) != 2 {
		t.Errorf("roots = %d, want 2", len(roots))
	}
}

func TestWalk_SkipsChildren(t *testing.T) {
	records := []TaskRecord{
		{Indent: 0, Description: "a"},
		{Indent: 2, Description: "a1"},
		{Indent: 0, Description: "b"},
	}
	roots := BuildForest(records)

	var seen []string
	Walk(roots, func(n *Node) bool {
		seen = append(seen, n.Record.Description)
		return n.Record.Description != "a"
	})

	if len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Errorf("walk = %v, want [a b]", seen)
	}
}
