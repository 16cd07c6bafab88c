// Package importer converts external paper metadata into corpus references.
package importer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/scholarmind/scholarmind/internal/reference"
)

// maxLineCapacity bounds one snapshot record; abstracts plus author lists stay well below it.
const maxLineCapacity = 4 * 1024 * 1024

// arxivLinkTemplate builds the abstract page URL for an arXiv id.
const arxivLinkTemplate = "https://arxiv.org/abs/%s"

// versionDateLayout matches the "created" field of snapshot versions,
// e.g. "Mon, 2 Apr 2007 19:18:42 GMT".
const versionDateLayout = "Mon, 2 Jan 2006 15:04:05 MST"

// FlexibleString can unmarshal from either string or number JSON values.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// ArXivEntry is one record of the arXiv metadata snapshot (one JSON object per line).
// CitationCount is not part of the upstream snapshot; enriched dumps add it.
type ArXivEntry struct {
	ID         FlexibleString `json:"id"`
	Title      string         `json:"title"`
	Abstract   string         `json:"abstract"`
	Authors    string         `json:"authors"`
	Categories string         `json:"categories"`
	UpdateDate string         `json:"update_date"`
	Versions   []struct {
		Version string `json:"version"`
		Created string `json:"created"`
	} `json:"versions"`
	CitationCount FlexibleString `json:"citation_count"`
}

// ArXivOptions filters a snapshot import.
type ArXivOptions struct {
	// CategoryPrefix keeps papers whose primary category starts with it, e.g. "cs.".
	CategoryPrefix string
	// Limit stops after this many accepted papers; 0 means no limit.
	Limit int
}

// ParseArXivSnapshot reads snapshot records from r and returns references with
// normalized popularity. Malformed records are reported in errs and skipped;
// err is set only when reading r fails.
func ParseArXivSnapshot(r io.Reader, opts ArXivOptions) (refs []reference.Reference, errs []error, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineCapacity)

	var citations []float64
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry ArXivEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}
		ref, cites, err := arxivEntryToReference(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d (%s): %w", lineNum, entry.ID, err))
			continue
		}
		if opts.CategoryPrefix != "" && !strings.HasPrefix(ref.MainCategory, opts.CategoryPrefix) {
			continue
		}

		refs = append(refs, ref)
		citations = append(citations, cites)
		if opts.Limit > 0 && len(refs) >= opts.Limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errs, fmt.Errorf("reading snapshot: %w", err)
	}

	for i, p := range NormalizePopularity(citations) {
		refs[i].NormalizedPopularity = p
	}
	return refs, errs, nil
}

// arxivEntryToReference converts a snapshot record and returns its raw citation count.
func arxivEntryToReference(entry ArXivEntry) (reference.Reference, float64, error) {
	id := strings.TrimSpace(entry.ID.String())
	if id == "" {
		return reference.Reference{}, 0, fmt.Errorf("missing required field 'id'")
	}
	title := collapseSpace(entry.Title)
	if title == "" {
		return reference.Reference{}, 0, fmt.Errorf("missing required field 'title'")
	}

	var cites float64
	if s := entry.CitationCount.String(); s != "" {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			return reference.Reference{}, 0, fmt.Errorf("invalid citation_count: %s", s)
		}
		cites = n
	}

	ref := reference.Reference{
		ID:           id,
		Title:        title,
		Abstract:     collapseSpace(entry.Abstract),
		Authors:      collapseSpace(entry.Authors),
		Year:         entryYear(entry),
		MainCategory: primaryCategory(entry.Categories),
		Link:         fmt.Sprintf(arxivLinkTemplate, id),
	}
	return ref, cites, nil
}

// entryYear prefers the first version's submission date over update_date.
func entryYear(entry ArXivEntry) int {
	if len(entry.Versions) > 0 {
		if t, err := time.Parse(versionDateLayout, entry.Versions[0].Created); err == nil {
			return t.Year()
		}
	}
	if t, err := time.Parse(time.DateOnly, entry.UpdateDate); err == nil {
		return t.Year()
	}
	return 0
}

// primaryCategory returns the first of the space-separated categories.
func primaryCategory(categories string) string {
	fields := strings.Fields(categories)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizePopularity maps raw counts into [0, 1] by min-max scaling their
// log1p. When every count is equal all papers get 0.
func NormalizePopularity(counts []float64) []float64 {
	out := make([]float64, len(counts))
	if len(counts) == 0 {
		return out
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for i, c := range counts {
		out[i] = math.Log1p(c)
		lo = math.Min(lo, out[i])
		hi = math.Max(hi, out[i])
	}
	span := hi - lo
	for i := range out {
		if span == 0 {
			out[i] = 0
			continue
		}
		out[i] = (out[i] - lo) / span
	}
	return out
}
