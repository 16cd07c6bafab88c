// Package export renders corpus papers as BibTeX.
package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/scholarmind/scholarmind/internal/reference"
)

// arxivIDPattern matches new-style arXiv identifiers such as 1706.03762 or 2106.09685v2.
var arxivIDPattern = regexp.MustCompile(`^\d{4}\.\d{4,5}(v\d+)?$`)

// IsArXivID reports whether id looks like an arXiv identifier.
func IsArXivID(id string) bool {
	return arxivIDPattern.MatchString(id)
}

// ToBibTeX converts a paper to a BibTeX entry keyed by its id.
// arXiv papers become @misc entries with eprint fields.
func ToBibTeX(ref reference.Reference, includeAbstract bool) string {
	arxiv := IsArXivID(ref.ID)
	entryType := "article"
	if arxiv {
		entryType = "misc"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", entryType, ref.ID)

	if authors := formatAuthors(ref.Authors); authors != "" {
		fmt.Fprintf(&b, "  author = {%s},\n", escapeLatex(authors))
	}
	fmt.Fprintf(&b, "  title = {%s},\n", escapeLatex(ref.Title))
	if ref.Year > 0 {
		fmt.Fprintf(&b, "  year = {%d},\n", ref.Year)
	}

	if arxiv {
		fmt.Fprintf(&b, "  eprint = {%s},\n", ref.ID)
		b.WriteString("  archivePrefix = {arXiv},\n")
		if ref.MainCategory != "" {
			fmt.Fprintf(&b, "  primaryClass = {%s},\n", ref.MainCategory)
		}
	}
	if ref.Link != "" {
		fmt.Fprintf(&b, "  url = {%s},\n", ref.Link)
	}
	if includeAbstract && ref.Abstract != "" {
		fmt.Fprintf(&b, "  abstract = {%s},\n", escapeLatex(ref.Abstract))
	}

	b.WriteString("}\n")
	return b.String()
}

// ToBibTeXList converts multiple papers to BibTeX, one blank line between entries.
func ToBibTeXList(refs []reference.Reference, includeAbstract bool) string {
	var entries []string
	for _, ref := range refs {
		entries = append(entries, ToBibTeX(ref, includeAbstract))
	}
	return strings.Join(entries, "\n")
}

// formatAuthors turns "A, B, C" into "A and B and C".
func formatAuthors(authors string) string {
	var names []string
	for _, name := range strings.Split(authors, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, " and ")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// & first so later replacements are not re-escaped
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
