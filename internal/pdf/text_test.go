package pdf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", ""},
		{"Attention\nIs  All\tYou Need", "Attention Is All You Need"},
		{"\n\nAbstract\n  We propose ", "Abstract We propose"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "graph neural networks", 100, "graph neural networks"},
		{"exact", "abc", 3, "abc"},
		{"word boundary", "graph neural networks", 15, "graph neural"},
		{"no space", "transformers", 5, "trans"},
		{"multibyte", "réseaux neuronaux", 7, "réseaux"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if n := len([]rune(got)); n > tt.max {
				t.Errorf("Truncate returned %d runes, max %d", n, tt.max)
			}
		})
	}
}

func TestExtractText_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := ExtractText(filepath.Join(dir, "missing.pdf"), 1); err == nil {
		t.Error("ExtractText() should fail for a missing file")
	}

	bogus := filepath.Join(dir, "bogus.pdf")
	if err := os.WriteFile(bogus, []byte("this is not a pdf"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ExtractText(bogus, 1); err == nil {
		t.Error("ExtractText() should fail for a non-PDF file")
	}
}
