package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/scholarmind/scholarmind/internal/clipboard"
	"github.com/scholarmind/scholarmind/internal/config"
	"github.com/scholarmind/scholarmind/internal/export"
	"github.com/scholarmind/scholarmind/internal/reference"
	"github.com/scholarmind/scholarmind/internal/storage"
	"github.com/spf13/cobra"
)

// clipboardUnavailableMsg is the standard warning when no clipboard helper exists.
const clipboardUnavailableMsg = "clipboard unavailable (install wl-copy, xclip or xsel on Linux)"

var (
	exportAppend   string
	exportAbstract bool
	exportCopy     bool
)

func init() {
	exportCmd.Flags().StringVar(&exportAppend, "append", "", "Append to a .bib file, skipping papers already in it")
	exportCmd.Flags().BoolVar(&exportAbstract, "abstract", false, "Include abstracts")
	exportCmd.Flags().BoolVar(&exportCopy, "copy", false, "Copy the BibTeX to the system clipboard")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [id...]",
	Short: "Export papers as BibTeX",
	Long: `Export papers as BibTeX. With no ids every paper in the catalog is exported.

BibTeX is always written as text, never JSON, unless --append is used.

Examples:
  sm export 1706.03762 1512.03385
  sm export 1706.03762 --copy
  sm export 1706.03762 --append refs.bib`,
	RunE: runExport,
}

// ExportResult is the response for export --append.
type ExportResult struct {
	Path    string `json:"path"`
	Written int    `json:"written"`
	Skipped int    `json:"skipped"`
}

// lookupPapers fetches ids from the catalog, or every paper when ids is empty.
func lookupPapers(db *storage.DB, ids []string) []reference.Reference {
	if len(ids) == 0 {
		refs, err := db.ListAll(0)
		if err != nil {
			exitWithError(ExitError, "listing papers: %v", err)
		}
		return refs
	}

	refs := make([]reference.Reference, 0, len(ids))
	for _, id := range ids {
		ref, err := db.GetByID(id)
		if err != nil {
			exitWithError(ExitError, "looking up %s: %v", id, err)
		}
		if ref == nil {
			exitWithError(ExitNotFound, "paper not found: %s", id)
		}
		refs = append(refs, *ref)
	}
	return refs
}

func runExport(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	refs := lookupPapers(db, args)

	if exportAppend != "" {
		path := config.ExpandPath(exportAppend)
		written, skipped, err := export.AppendToBibFile(path, refs, exportAbstract)
		if err != nil {
			exitWithError(ExitError, "appending to %s: %v", path, err)
		}
		if humanOutput {
			fmt.Printf("Appended %d entries to %s (%d already present)\n", written, path, skipped)
		} else {
			outputJSON(ExportResult{Path: path, Written: written, Skipped: skipped})
		}
		return nil
	}

	bibtex := export.ToBibTeXList(refs, exportAbstract)
	if exportCopy {
		if err := clipboard.Copy(bibtex); err != nil {
			if errors.Is(err, clipboard.ErrClipboardUnavailable) {
				fmt.Fprintf(os.Stderr, "warning: %s\n", clipboardUnavailableMsg)
			} else {
				fmt.Fprintf(os.Stderr, "warning: copying to clipboard: %v\n", err)
			}
		}
	}
	fmt.Print(bibtex)
	return nil
}
