// Package sagedoc holds reference documentation for common Sage functions
// and ring constructors. The documentation is written in Markdown, embedded
// in the binary and parsed once with goldmark.
package sagedoc

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

//go:embed functions.md
var functionsMarkdown []byte

// Kind separates plain functions from constructors usable in a generator
// declaration.
type Kind string

const (
	KindFunction    Kind = "function"
	KindConstructor Kind = "constructor"
)

// Entry documents one name.
type Entry struct {
	Name      string
	Kind      Kind
	Signature string
	Summary   string
	Examples  []string
}

// Catalog is an ordered, read-only set of entries.
type Catalog struct {
	entries []Entry
	byName  map[string]int
}

//nolint:gochecknoglobals // Parsed once from embedded data.
var (
	defaultCatalog     *Catalog
	defaultCatalogErr  error
	defaultCatalogOnce sync.Once
)

// Default returns the built-in catalog. It panics if the embedded document
// is malformed, which the package tests rule out.
func Default() *Catalog {
	defaultCatalogOnce.Do(func() {
		defaultCatalog, defaultCatalogErr = Parse(functionsMarkdown)
	})
	if defaultCatalogErr != nil {
		panic(defaultCatalogErr)
	}
	return defaultCatalog
}

// Parse reads a catalog from Markdown: each level-two heading opens an entry,
// a "kind:" line sets its kind, the first code span is the signature, the
// next paragraph the summary and fenced code blocks are examples.
func Parse(src []byte) (*Catalog, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	cat := &Catalog{byName: make(map[string]int)}
	var current *Entry
	flush := func() error {
		if current == nil {
			return nil
		}
		if current.Signature == "" {
			return fmt.Errorf("sagedoc: entry %q has no signature", current.Name)
		}
		if _, dup := cat.byName[current.Name]; dup {
			return fmt.Errorf("sagedoc: duplicate entry %q", current.Name)
		}
		cat.byName[current.Name] = len(cat.entries)
		cat.entries = append(cat.entries, *current)
		return nil
	}

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			if n.Level != 2 {
				continue
			}
			if err := flush(); err != nil {
				return nil, err
			}
			current = &Entry{Name: inlineText(n, src), Kind: KindFunction}
		case *ast.Paragraph:
			if current == nil {
				continue
			}
			para := inlineText(n, src)
			switch {
			case strings.HasPrefix(para, "kind:"):
				current.Kind = Kind(strings.TrimSpace(strings.TrimPrefix(para, "kind:")))
			case current.Signature == "" && isCodeSpanOnly(n):
				current.Signature = para
			case current.Summary == "":
				current.Summary = para
			}
		case *ast.FencedCodeBlock:
			if current == nil {
				continue
			}
			current.Examples = append(current.Examples, strings.TrimRight(blockText(n, src), "\n"))
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cat, nil
}

func isCodeSpanOnly(n ast.Node) bool {
	first := n.FirstChild()
	return first != nil && first == n.LastChild() && first.Kind() == ast.KindCodeSpan
}

// inlineText concatenates the text of all inline descendants of n.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := child.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func blockText(n ast.Node, src []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}

// Entries returns every entry in document order.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Lookup finds an entry by exact name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	idx, ok := c.byName[name]
	if !ok {
		return Entry{}, false
	}
	return c.entries[idx], true
}

// OfKind returns the entries of one kind in document order.
func (c *Catalog) OfKind(kind Kind) []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// WithPrefix returns the entries whose name starts with prefix, sorted by name.
func (c *Catalog) WithPrefix(prefix string) []Entry {
	var out []Entry
	for _, e := range c.entries {
		if strings.HasPrefix(e.Name, prefix) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Markdown renders an entry for display in an editor hover.
func (e Entry) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "```python\n%s\n```\n\n%s\n", e.Signature, e.Summary)
	for _, ex := range e.Examples {
		fmt.Fprintf(&b, "\n```python\n%s\n```\n", ex)
	}
	return b.String()
}
