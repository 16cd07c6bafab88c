package main

import (
	"path/filepath"
	"testing"

	"github.com/scholarmind/scholarmind/internal/reference"
	"github.com/scholarmind/scholarmind/internal/storage"
)

func TestCatalogAgrees(t *testing.T) {
	tmpDir := t.TempDir()
	jsonlPath := filepath.Join(tmpDir, "papers.jsonl")
	refs := []reference.Reference{
		{ID: "1706.03762", Title: "Attention Is All You Need", NormalizedPopularity: 1},
		{ID: "1512.03385", Title: "Deep Residual Learning", NormalizedPopularity: 0.2},
	}
	if err := storage.WriteAll(jsonlPath, refs); err != nil {
		t.Fatal(err)
	}

	db, err := storage.OpenDB(filepath.Join(tmpDir, "papers.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	if catalogAgrees(db, "1706.03762", 0) {
		t.Error("empty catalog should not agree")
	}

	if _, err := db.RebuildFromJSONL(jsonlPath); err != nil {
		t.Fatalf("RebuildFromJSONL() error = %v", err)
	}

	tests := []struct {
		id   string
		row  int
		want bool
	}{
		{"1706.03762", 0, true},
		{"1512.03385", 1, true},
		{"1512.03385", 0, false},
		{"2106.09685", 2, false},
	}
	for _, tt := range tests {
		if got := catalogAgrees(db, tt.id, tt.row); got != tt.want {
			t.Errorf("catalogAgrees(%s, %d) = %v, want %v", tt.id, tt.row, got, tt.want)
		}
	}
}
