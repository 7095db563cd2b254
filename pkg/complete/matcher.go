// Package complete recognizes, from the text just before the cursor, which
// Sage construct is being typed and proposes completions for it. It works on
// incomplete text and never needs a full rewrite of the document.
package complete

import (
	"sync"

	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

// Window is the bounded stretch of text a matcher may inspect. It ends at
// the cursor and never crosses a line break.
type Window struct {
	// Text is the window content.
	Text string

	// Start is the offset of Text in the document.
	Start int
}

// Cursor returns the document offset of the cursor.
func (w Window) Cursor() int {
	return w.Start + len(w.Text)
}

// Suggestion is one completion a matcher offers.
type Suggestion struct {
	Label  string
	Detail string

	// InsertText replaces Replace. For plain prefix completions Replace is
	// empty at the cursor and InsertText is the missing remainder.
	InsertText string
	Replace    source.Range

	// Fuzzy marks suggestions found by similarity rather than by prefix.
	Fuzzy bool
}

// Proposal is a matcher's response to a window.
type Proposal struct {
	// Matched is the length of the recognized prefix ending at the cursor.
	Matched int

	Suggestions []Suggestion

	// AutoInsert is the text to insert without asking, set only when the
	// completion is unambiguous.
	AutoInsert string
}

// Matcher recognizes the prefix forms of one construct.
type Matcher interface {
	// ID returns the unique identifier for this matcher.
	ID() string

	// Kind returns the kind of construct the matcher completes.
	Kind() spanindex.Kind

	// Priority orders matchers whose prefixes are equally long; lower first.
	Priority() int

	// Match inspects the window and reports a proposal if it recognizes a
	// prefix form ending at the cursor.
	Match(w Window) (Proposal, bool)
}

// Catalog holds matchers in declaration order.
type Catalog struct {
	mu       sync.RWMutex
	byID     map[string]int
	matchers []Matcher
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byID: make(map[string]int)}
}

// Register appends a matcher. A matcher with an existing ID replaces the old
// one in place.
func (c *Catalog) Register(m Matcher) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx, ok := c.byID[m.ID()]; ok {
		c.matchers[idx] = m
		return
	}
	c.byID[m.ID()] = len(c.matchers)
	c.matchers = append(c.matchers, m)
}

// Matchers returns the matchers in declaration order.
func (c *Catalog) Matchers() []Matcher {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Matcher(nil), c.matchers...)
}

// Get retrieves a matcher by ID.
func (c *Catalog) Get(id string) (Matcher, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return c.matchers[idx], true
}
