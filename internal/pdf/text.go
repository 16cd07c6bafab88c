// Package pdf turns a PDF document into a search query.
package pdf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultMaxPages is how many leading pages ExtractText reads by default.
// Title, abstract, and introduction are enough to place a paper.
const DefaultMaxPages = 2

// ErrNoText is returned when a PDF has no extractable text, e.g. a scan.
var ErrNoText = errors.New("no extractable text in PDF")

// ExtractText returns the plain text of the first maxPages pages of the PDF
// at filePath with runs of whitespace collapsed. Pages that fail to decode
// are skipped. maxPages <= 0 means DefaultMaxPages.
func ExtractText(filePath string, maxPages int) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}

	var b strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteByte(' ')
	}

	text := Normalize(b.String())
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// Normalize collapses all whitespace runs to single spaces and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Truncate shortens text to at most max runes, cutting at a word boundary
// when one is available.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut
}
