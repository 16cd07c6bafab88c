package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/scholarmind/scholarmind/internal/ranking"
	"github.com/scholarmind/scholarmind/internal/reference"
)

// Constants for output formatting.
const (
	SearchTitleMaxLen = 70 // Used in result listings
	DetailTitleMaxLen = 90 // Used in the get detail view

	TextWrapWidth       = 68
	authorsPreviewCount = 3
)

// Styles for --human output. lipgloss drops colour when stdout is not a terminal.
var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	savedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError writes an error message to stderr and returns the exit code.
func outputError(code int, format string, args ...interface{}) int {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return code
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// PaperResult is one ranked paper in JSON output.
type PaperResult struct {
	Rank         int     `json:"rank"`
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Authors      string  `json:"authors,omitempty"`
	Year         int     `json:"year,omitempty"`
	MainCategory string  `json:"main_category,omitempty"`
	Link         string  `json:"link,omitempty"`
	Similarity   float64 `json:"similarity"`
	Popularity   float64 `json:"popularity"`
	Score        float64 `json:"score"`
	Abstract     string  `json:"abstract,omitempty"`
}

// buildPaperResults flattens engine results for output.
func buildPaperResults(results []ranking.Result, includeAbstract bool) []PaperResult {
	out := make([]PaperResult, 0, len(results))
	for i, r := range results {
		p := PaperResult{
			Rank:         i + 1,
			ID:           r.Paper.ID,
			Title:        r.Paper.Title,
			Authors:      r.Paper.Authors,
			Year:         r.Paper.Year,
			MainCategory: r.Paper.MainCategory,
			Link:         r.Paper.Link,
			Similarity:   r.Similarity,
			Popularity:   r.Popularity,
			Score:        r.Score,
		}
		if includeAbstract {
			p.Abstract = r.Paper.Abstract
		}
		out = append(out, p)
	}
	return out
}

// isSaved reports whether a paper is saved; nil means nothing is.
type isSaved func(id string) bool

// printResultsHuman prints a ranked list, one numbered entry per paper.
func printResultsHuman(w io.Writer, results []ranking.Result, saved isSaved) {
	if len(results) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No papers found."))
		return
	}
	for i, r := range results {
		mark := ""
		if saved != nil && saved(r.Paper.ID) {
			mark = " " + savedStyle.Render("★")
		}
		fmt.Fprintf(w, "%2d. %s %s%s\n", i+1,
			scoreStyle.Render(fmt.Sprintf("[%.2f]", r.Score)),
			titleStyle.Render(truncateString(r.Paper.Title, SearchTitleMaxLen)),
			mark)
		fmt.Fprintf(w, "    %s\n", dimStyle.Render(paperByline(r.Paper)))
	}
}

// printPaperHuman prints the detail view of one paper.
func printPaperHuman(w io.Writer, ref reference.Reference, saved bool) {
	fmt.Fprintln(w, headerStyle.Render(truncateString(ref.Title, DetailTitleMaxLen)))
	fmt.Fprintln(w, dimStyle.Render(paperByline(ref)))
	if ref.Authors != "" {
		fmt.Fprintf(w, "Authors: %s\n", wrapText(ref.Authors, TextWrapWidth, "         "))
	}
	fmt.Fprintf(w, "Popularity: %.2f\n", ref.NormalizedPopularity)
	if ref.Link != "" {
		fmt.Fprintf(w, "Link: %s\n", ref.Link)
	}
	if saved {
		fmt.Fprintln(w, savedStyle.Render("★ saved"))
	}
	if ref.Abstract != "" {
		fmt.Fprintf(w, "\n%s\n", wrapText(ref.Abstract, TextWrapWidth, ""))
	}
}

// paperByline formats "id · category · year · first authors".
func paperByline(ref reference.Reference) string {
	parts := []string{ref.ID}
	if ref.MainCategory != "" {
		parts = append(parts, ref.MainCategory)
	}
	if ref.Year != 0 {
		parts = append(parts, fmt.Sprintf("%d", ref.Year))
	}
	if a := shortAuthors(ref.Authors, authorsPreviewCount); a != "" {
		parts = append(parts, a)
	}
	return strings.Join(parts, " · ")
}

// shortAuthors keeps the first maxCount comma-separated names and adds "et al.".
func shortAuthors(authors string, maxCount int) string {
	if strings.TrimSpace(authors) == "" {
		return ""
	}
	names := strings.Split(authors, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	if len(names) > maxCount {
		return strings.Join(names[:maxCount], ", ") + " et al."
	}
	return strings.Join(names, ", ")
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// wrapText wraps text to the specified width with indentation on subsequent lines.
func wrapText(text string, width int, indent string) string {
	if len(text) <= width {
		return text
	}

	var lines []string
	words := strings.Fields(text)
	var currentLine strings.Builder

	for _, word := range words {
		if currentLine.Len() == 0 {
			currentLine.WriteString(word)
		} else if currentLine.Len()+1+len(word) <= width {
			currentLine.WriteString(" ")
			currentLine.WriteString(word)
		} else {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
		}
	}
	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return strings.Join(lines, "\n"+indent)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

// formatBytes formats bytes in a human-readable way.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
