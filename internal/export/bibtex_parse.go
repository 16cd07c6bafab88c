package export

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/scholarmind/scholarmind/internal/reference"
)

// BibTeXIndex indexes existing BibTeX entries for deduplication.
type BibTeXIndex struct {
	// Keys holds every citation key in the file.
	Keys map[string]bool
	// Eprints maps arXiv identifiers, version stripped, to citation keys.
	Eprints map[string]string
}

// NewBibTeXIndex creates an empty BibTeX index.
func NewBibTeXIndex() *BibTeXIndex {
	return &BibTeXIndex{
		Keys:    make(map[string]bool),
		Eprints: make(map[string]string),
	}
}

// HasEntry reports whether a paper is already in the file,
// matching on the arXiv eprint first and the citation key otherwise.
func (idx *BibTeXIndex) HasEntry(ref reference.Reference) bool {
	if IsArXivID(ref.ID) {
		if _, ok := idx.Eprints[normalizeEprint(ref.ID)]; ok {
			return true
		}
	}
	return idx.Keys[ref.ID]
}

var (
	entryStartRegex  = regexp.MustCompile(`@\w+\{([^,]+),`)
	eprintFieldRegex = regexp.MustCompile(`(?i)^\s*eprint\s*=\s*[\{"]([^\}"]+)[\}"]`)
)

// ParseBibTeXFile builds an index from an existing .bib file.
// A missing file yields an empty index.
func ParseBibTeXFile(path string) (*BibTeXIndex, error) {
	idx := NewBibTeXIndex()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var currentKey string

	for scanner.Scan() {
		line := scanner.Text()

		if matches := entryStartRegex.FindStringSubmatch(line); len(matches) > 1 {
			currentKey = strings.TrimSpace(matches[1])
			idx.Keys[currentKey] = true
		}

		if matches := eprintFieldRegex.FindStringSubmatch(line); len(matches) > 1 && currentKey != "" {
			if eprint := normalizeEprint(matches[1]); eprint != "" {
				idx.Eprints[eprint] = currentKey
			}
		}
	}

	return idx, scanner.Err()
}

// normalizeEprint strips an "arXiv:" prefix and a trailing version.
func normalizeEprint(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(strings.TrimPrefix(id, "arXiv:"), "arxiv:")
	if i := strings.LastIndex(id, "v"); i > 0 && IsArXivID(id) {
		id = id[:i]
	}
	return strings.ToLower(id)
}

// AppendToBibFile appends entries for the papers not already in path and
// returns how many were written and how many were skipped.
func AppendToBibFile(path string, refs []reference.Reference, includeAbstract bool) (written, skipped int, err error) {
	idx, err := ParseBibTeXFile(path)
	if err != nil {
		return 0, 0, err
	}

	var fresh []reference.Reference
	for _, ref := range refs {
		if idx.HasEntry(ref) {
			skipped++
			continue
		}
		fresh = append(fresh, ref)
	}
	if len(fresh) == 0 {
		return 0, skipped, nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return 0, skipped, err
	}
	defer file.Close()

	if _, err := file.WriteString("\n" + ToBibTeXList(fresh, includeAbstract)); err != nil {
		return 0, skipped, err
	}
	return len(fresh), skipped, nil
}
