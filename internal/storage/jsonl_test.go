package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/scholarmind/scholarmind/internal/reference"
)

func testPapers() []reference.Reference {
	return []reference.Reference{
		{
			ID:                   "1706.03762",
			Title:                "Attention Is All You Need",
			Abstract:             "The dominant sequence transduction models are based on recurrent networks.",
			Authors:              "Ashish Vaswani, Noam Shazeer",
			Year:                 2017,
			MainCategory:         "cs.CL",
			NormalizedPopularity: 1.0,
			Link:                 "https://arxiv.org/abs/1706.03762",
		},
		{
			ID:                   "1512.03385",
			Title:                "Deep Residual Learning for Image Recognition",
			Abstract:             "Deeper neural networks are more difficult to train.",
			Authors:              "Kaiming He, Xiangyu Zhang",
			Year:                 2015,
			MainCategory:         "cs.CV",
			NormalizedPopularity: 0.8,
		},
		{
			ID:                   "2106.09685",
			Title:                "LoRA: Low-Rank Adaptation of Large Language Models",
			Authors:              "Edward Hu",
			Year:                 2021,
			MainCategory:         "cs.CL",
			NormalizedPopularity: 0.8,
		},
	}
}

func TestWriteAllReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".scholarmind", "papers.jsonl")
	papers := testPapers()

	if err := WriteAll(path, papers); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	got, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !reflect.DeepEqual(got, papers) {
		t.Errorf("ReadAll() = %+v, want %+v", got, papers)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not survive a successful write")
	}
}

func TestReadAll_MissingFile(t *testing.T) {
	refs, err := ReadAll(filepath.Join(t.TempDir(), "nope.jsonl"))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("expected no papers, got %d", len(refs))
	}
}

func TestReadAll_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.jsonl")
	content := `{"id":"a","title":"A","normalized_popularity":0.1}

{"id":"b","title":"B","normalized_popularity":0.2}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	refs, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(refs) != 2 || refs[0].ID != "a" || refs[1].ID != "b" {
		t.Errorf("ReadAll() = %+v, want papers a and b in order", refs)
	}
}

func TestReadAll_ReportsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.jsonl")
	content := "{\"id\":\"a\",\"title\":\"A\"}\n{not json}\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadAll(path)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("ReadAll() error = %v, want mention of line 2", err)
	}
}

func TestWriteAll_ReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.jsonl")
	papers := testPapers()

	if err := WriteAll(path, papers); err != nil {
		t.Fatal(err)
	}
	if err := WriteAll(path, papers[:1]); err != nil {
		t.Fatal(err)
	}

	got, err := ReadAll(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != papers[0].ID {
		t.Errorf("ReadAll() after rewrite = %+v, want only %s", got, papers[0].ID)
	}
}
