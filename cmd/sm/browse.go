package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/scholarmind/scholarmind/internal/clipboard"
	"github.com/scholarmind/scholarmind/internal/config"
	"github.com/scholarmind/scholarmind/internal/export"
	"github.com/scholarmind/scholarmind/internal/library"
	"github.com/scholarmind/scholarmind/internal/ranking"
	"github.com/scholarmind/scholarmind/internal/reference"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(browseCmd)
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactive search and reading session",
	Long: `Start a line-oriented session for exploring the corpus.

Commands:
  search <query>   semantic search
  popular          a fresh sample of popular papers
  open <n|id>      show a paper and its recommendations
  save [n|id]      save or unsave a paper (default: the open one)
  saved            list saved papers
  back             return to the previous list
  copy [n|id]      copy a paper's BibTeX to the clipboard
  export <file>    append saved papers to a .bib file
  help             show this help
  quit             leave; saved papers are not kept`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

const browseHelp = `search <query> | popular | open <n|id> | save [n|id] | saved | back | copy [n|id] | export <file> | help | quit`

type view struct {
	title   string
	results []ranking.Result
}

// browser holds the state of one browse session.
type browser struct {
	engine  *ranking.Engine
	session *library.Session
	out     io.Writer
	rng     *rand.Rand

	searchLimit    int
	recommendLimit int

	current view
	prev    *view
}

func newBrowser(engine *ranking.Engine, out io.Writer, rng *rand.Rand, searchLimit, recommendLimit int) *browser {
	return &browser{
		engine:         engine,
		session:        library.NewSession(),
		out:            out,
		rng:            rng,
		searchLimit:    searchLimit,
		recommendLimit: recommendLimit,
	}
}

func (b *browser) show(v view) {
	b.current = v
	fmt.Fprintf(b.out, "\n%s\n\n", headerStyle.Render(v.title))
	printResultsHuman(b.out, v.results, b.session.Saved.Has)
}

func (b *browser) errorf(format string, args ...interface{}) {
	fmt.Fprintf(b.out, "error: "+format+"\n", args...)
}

// resolve turns a list position or a paper id into a paper id.
func (b *browser) resolve(arg string) (string, bool) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n >= 1 && n <= len(b.current.results) {
			return b.current.results[n-1].Paper.ID, true
		}
	}
	if _, ok := b.engine.Corpus().Row(arg); ok {
		return arg, true
	}
	return "", false
}

// exec runs one command line and reports whether the session should end.
func (b *browser) exec(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(b.out, browseHelp)
	case "search", "s":
		b.search(ctx, arg)
	case "popular", "p":
		b.popular()
	case "open", "o":
		b.open(arg)
	case "save":
		b.save(arg)
	case "saved":
		b.listSaved()
	case "back", "b":
		b.back()
	case "copy":
		b.copy(arg)
	case "export":
		b.export(arg)
	default:
		b.errorf("unknown command %q (%s)", cmd, browseHelp)
	}
	return false
}

func (b *browser) search(ctx context.Context, query string) {
	results, err := b.engine.SemanticSearch(ctx, query, b.searchLimit)
	if err != nil {
		b.errorf("%v", err)
		return
	}
	b.session.Back()
	b.prev = nil
	b.show(view{title: fmt.Sprintf("Results for %q", query), results: results})
}

func (b *browser) popular() {
	results, err := ranking.Popular(b.engine.Corpus(), ranking.DefaultPopularPool, ranking.DefaultPopularCount, b.rng)
	if err != nil {
		b.errorf("%v", err)
		return
	}
	b.session.Back()
	b.prev = nil
	b.show(view{title: "Popular papers", results: results})
}

func (b *browser) open(arg string) {
	id, ok := b.resolve(arg)
	if !ok {
		b.errorf("no paper %q", arg)
		return
	}
	ref, err := b.engine.Corpus().Lookup(id)
	if err != nil {
		b.errorf("%v", err)
		return
	}
	recs, err := b.engine.RecommendByID(id, b.recommendLimit)
	if err != nil {
		b.errorf("%v", err)
		return
	}

	if _, viewing := b.session.Selected(); !viewing {
		saved := b.current
		b.prev = &saved
	}
	b.session.Select(id)

	fmt.Fprintln(b.out)
	printPaperHuman(b.out, ref, b.session.Saved.Has(id))
	b.show(view{title: "Related", results: recs})
}

// target resolves arg, falling back to the open paper when arg is empty.
func (b *browser) target(verb, arg string) (string, bool) {
	if arg == "" {
		selected, ok := b.session.Selected()
		if !ok {
			b.errorf("nothing open; use %s <n|id>", verb)
		}
		return selected, ok
	}
	id, ok := b.resolve(arg)
	if !ok {
		b.errorf("no paper %q", arg)
	}
	return id, ok
}

func (b *browser) save(arg string) {
	id, ok := b.target("save", arg)
	if !ok {
		return
	}

	if b.session.Saved.Toggle(id) {
		fmt.Fprintf(b.out, "%s %s\n", savedStyle.Render("★ saved"), id)
	} else {
		fmt.Fprintf(b.out, "removed %s\n", id)
	}
}

func (b *browser) copy(arg string) {
	id, ok := b.target("copy", arg)
	if !ok {
		return
	}
	ref, err := b.engine.Corpus().Lookup(id)
	if err != nil {
		b.errorf("%v", err)
		return
	}
	if err := clipboard.Copy(export.ToBibTeX(ref, false)); err != nil {
		if errors.Is(err, clipboard.ErrClipboardUnavailable) {
			b.errorf("%s", clipboardUnavailableMsg)
		} else {
			b.errorf("copying to clipboard: %v", err)
		}
		return
	}
	fmt.Fprintf(b.out, "copied BibTeX for %s\n", id)
}

func (b *browser) export(path string) {
	if path == "" {
		b.errorf("usage: export <file.bib>")
		return
	}
	ids := b.session.Saved.IDs()
	if len(ids) == 0 {
		b.errorf("no saved papers to export")
		return
	}

	c := b.engine.Corpus()
	refs := make([]reference.Reference, 0, len(ids))
	for _, id := range ids {
		if ref, err := c.Lookup(id); err == nil {
			refs = append(refs, ref)
		}
	}

	path = config.ExpandPath(path)
	written, skipped, err := export.AppendToBibFile(path, refs, false)
	if err != nil {
		b.errorf("exporting: %v", err)
		return
	}
	fmt.Fprintf(b.out, "appended %d entries to %s (%d already present)\n", written, path, skipped)
}

func (b *browser) listSaved() {
	c := b.engine.Corpus()
	var results []ranking.Result
	for _, id := range b.session.Saved.IDs() {
		row, ok := c.Row(id)
		if !ok {
			continue
		}
		ref := c.At(row)
		results = append(results, ranking.Result{Paper: ref, Row: row, Popularity: ref.NormalizedPopularity, Score: ref.NormalizedPopularity})
	}
	b.session.Back()
	b.prev = nil
	b.show(view{title: fmt.Sprintf("Saved papers (%d)", len(results)), results: results})
}

func (b *browser) back() {
	if b.prev == nil {
		b.errorf("nothing to go back to")
		return
	}
	b.session.Back()
	v := *b.prev
	b.prev = nil
	b.show(v)
}

// run reads commands from in until quit or end of input.
func (b *browser) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(b.out, dimStyle.Render("session "+b.session.ID+" (type help for commands)"))
	b.popular()

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(b.out, dimStyle.Render("\nsm> "))
		if !scanner.Scan() {
			fmt.Fprintln(b.out)
			return scanner.Err()
		}
		if b.exec(ctx, scanner.Text()) {
			return nil
		}
	}
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	provider := newProvider(cfg)
	if err := provider.IsAvailable(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: Ollama is not running; search is unavailable until it starts")
	}
	engine := mustLoadEngine(repoRoot, provider)

	seed := uint64(time.Now().UnixNano())
	b := newBrowser(engine, cmd.OutOrStdout(), rand.New(rand.NewPCG(seed, seed>>7)), cfg.SearchLimit, cfg.RecommendLimit)
	return b.run(ctx, cmd.InOrStdin())
}
