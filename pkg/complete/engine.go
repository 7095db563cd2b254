package complete

import (
	"bytes"
	"cmp"
	"slices"

	"github.com/yaklabco/gosage/pkg/recognize"
	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

// DefaultWindowSize bounds how far back from the cursor matchers look.
const DefaultWindowSize = 256

// Options configures an Engine.
type Options struct {
	// WindowSize is the maximum number of bytes before the cursor a matcher
	// sees. The window also stops at the start of the cursor's line.
	WindowSize int

	// AutoInsert enables auto-insertion suggestions.
	AutoInsert bool
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{WindowSize: DefaultWindowSize, AutoInsert: true}
}

// Candidate is a ranked completion.
type Candidate struct {
	Label      string
	Detail     string
	InsertText string
	Replace    source.Range
	Kind       spanindex.Kind
	Matcher    string

	// SortRank is the candidate's position in the ranked list.
	SortRank int
}

// Context describes the construct recognized at the cursor.
type Context struct {
	Cursor  int
	Window  Window
	Kind    spanindex.Kind
	Matcher string

	// Match is the recognized prefix in document coordinates.
	Match source.Range
}

// AutoInsertion is text that can be inserted at Offset without asking.
type AutoInsertion struct {
	Offset int
	Text   string
}

// Result is the outcome of one completion request.
type Result struct {
	// Context is nil when no matcher recognized anything.
	Context    *Context
	Candidates []Candidate
	AutoInsert *AutoInsertion
}

// Engine runs a catalog of matchers against documents.
// It holds no per-document state and is safe for concurrent use.
type Engine struct {
	catalog *Catalog
	opts    Options
}

// NewEngine creates an Engine.
func NewEngine(catalog *Catalog, opts Options) *Engine {
	if opts.WindowSize <= 0 {
		opts.WindowSize = DefaultWindowSize
	}
	return &Engine{catalog: catalog, opts: opts}
}

// NewDefaultEngine creates an Engine with the built-in matchers.
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultCatalog(DefaultMatcherOptions()), DefaultOptions())
}

// maxContext bounds how much text before the cursor is classified to decide
// whether the cursor sits in code. Triple-quoted strings opened further back
// than this are not seen.
const maxContext = 64 << 10

// inCode reports whether the byte before cursor is code. Classification starts
// at a line boundary so strings and comments opened on earlier lines count.
func inCode(text []byte, cursor int) bool {
	from := 0
	if cursor > maxContext {
		from = cursor - maxContext
		from += bytes.IndexByte(text[from:cursor], '\n') + 1
	}
	t := recognize.NewText(text[from:cursor])
	return t.Len() > 0 && t.IsCode(t.Len()-1)
}

type ranked struct {
	Candidate
	matched  int
	priority int
	order    int
}

// Complete proposes completions for the cursor position in text.
// Nothing is proposed inside comments or string literals.
func (e *Engine) Complete(text []byte, cursor int) Result {
	cursor = max(0, min(cursor, len(text)))
	lineStart := bytes.LastIndexByte(text[:cursor], '\n') + 1
	if cursor == lineStart {
		return Result{}
	}
	if !inCode(text, cursor) {
		return Result{}
	}

	start := max(lineStart, cursor-e.opts.WindowSize)
	window := Window{Text: string(text[start:cursor]), Start: start}

	type hit struct {
		matcher  Matcher
		proposal Proposal
	}
	var hits []hit
	var candidates []ranked
	for _, m := range e.catalog.Matchers() {
		proposal, ok := m.Match(window)
		if !ok || len(proposal.Suggestions) == 0 {
			continue
		}
		hits = append(hits, hit{matcher: m, proposal: proposal})
		for _, s := range proposal.Suggestions {
			matched := proposal.Matched
			if s.Fuzzy {
				matched = 0
			}
			candidates = append(candidates, ranked{
				Candidate: Candidate{
					Label:      s.Label,
					Detail:     s.Detail,
					InsertText: s.InsertText,
					Replace:    s.Replace,
					Kind:       m.Kind(),
					Matcher:    m.ID(),
				},
				matched:  matched,
				priority: m.Priority(),
				order:    len(candidates),
			})
		}
	}
	if len(hits) == 0 {
		return Result{}
	}

	slices.SortStableFunc(candidates, func(a, b ranked) int {
		return cmp.Or(
			cmp.Compare(b.matched, a.matched),
			cmp.Compare(a.priority, b.priority),
			cmp.Compare(a.Label, b.Label),
			cmp.Compare(a.order, b.order),
		)
	})

	res := Result{Candidates: make([]Candidate, len(candidates))}
	for i, c := range candidates {
		c.SortRank = i
		res.Candidates[i] = c.Candidate
	}

	best := slices.MinFunc(hits, func(a, b hit) int {
		return cmp.Or(
			cmp.Compare(b.proposal.Matched, a.proposal.Matched),
			cmp.Compare(a.matcher.Priority(), b.matcher.Priority()),
		)
	})
	res.Context = &Context{
		Cursor:  cursor,
		Window:  window,
		Kind:    best.matcher.Kind(),
		Matcher: best.matcher.ID(),
		Match:   source.NewRange(cursor-best.proposal.Matched, cursor),
	}

	if e.opts.AutoInsert && len(hits) == 1 && hits[0].proposal.AutoInsert != "" {
		res.AutoInsert = &AutoInsertion{Offset: cursor, Text: hits[0].proposal.AutoInsert}
	}
	return res
}
