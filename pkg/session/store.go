package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/yaklabco/gosage/pkg/diagmap"
	"github.com/yaklabco/gosage/pkg/edit"
	"github.com/yaklabco/gosage/pkg/langdetect"
	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/sourcemap"
)

var (
	// ErrUnknownDocument is returned for changes to a document that is not open.
	ErrUnknownDocument = errors.New("unknown document")

	// ErrStaleVersion is returned for changes that do not advance the version.
	ErrStaleVersion = errors.New("stale document version")
)

// Change is an editor content change. A nil Range replaces the whole text.
type Change struct {
	Range *source.LSPRange
	Text  string
}

type entry struct {
	doc       *Document
	diags     []diagmap.Diagnostic
	diagsOf   int32
	published bool
}

// Store holds the current version of every open document.
type Store struct {
	mu      sync.RWMutex
	docs    map[string]*entry
	builder *sourcemap.Builder
	dialect langdetect.Dialect
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithDialect fixes the dialect of every document. Unknown, the default,
// detects it per document when the document is opened.
func WithDialect(d langdetect.Dialect) StoreOption {
	return func(s *Store) {
		s.dialect = d
	}
}

// NewStore creates an empty store whose documents build maps with builder.
func NewStore(builder *sourcemap.Builder, opts ...StoreOption) *Store {
	s := &Store{docs: make(map[string]*entry), builder: builder, dialect: langdetect.Unknown}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open registers a document, replacing any previous state for uri.
func (s *Store) Open(uri string, version int32, text []byte) *Document {
	dialect := langdetect.Resolve(s.dialect, PathFromURI(uri), text)
	doc := newDocument(uri, version, text, dialect, s.builder)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = &entry{doc: doc}
	return doc
}

// Change applies content changes in order and stores the result as version.
func (s *Store) Change(uri string, version int32, changes []Change) (*Document, error) {
	current, ok := s.Get(uri)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	if version <= current.Version {
		return nil, fmt.Errorf("%w: %s version %d, have %d", ErrStaleVersion, uri, version, current.Version)
	}

	content := current.Text.Content
	for i, c := range changes {
		if c.Range == nil {
			content = []byte(c.Text)
			continue
		}
		snap := source.NewSnapshot("", content)
		next, err := edit.ApplySequential(content, []edit.TextEdit{{
			Range:   snap.RangeFromLSP(*c.Range),
			NewText: c.Text,
		}})
		if err != nil {
			return nil, fmt.Errorf("applying change %d to %s: %w", i, uri, err)
		}
		content = next
	}
	doc := newDocument(uri, version, content, current.Dialect, s.builder)

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.docs[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	if version <= e.doc.Version {
		return nil, fmt.Errorf("%w: %s version %d, have %d", ErrStaleVersion, uri, version, e.doc.Version)
	}
	e.doc = doc
	return doc, nil
}

// Close forgets a document. It reports whether the document was open.
func (s *Store) Close(uri string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.docs[uri]
	delete(s.docs, uri)
	return ok
}

// Get returns the current version of a document.
func (s *Store) Get(uri string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.docs[uri]
	if !ok {
		return nil, false
	}
	return e.doc, true
}

// IsCurrent reports whether version is the current version of uri.
func (s *Store) IsCurrent(uri string, version int32) bool {
	doc, ok := s.Get(uri)
	return ok && doc.Version == version
}

// URIs returns the open documents in sorted order.
func (s *Store) URIs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// SetDiagnostics records diagnostics computed for version. They are stored
// only if version is still current; the result reports whether they were.
func (s *Store) SetDiagnostics(uri string, version int32, diags []diagmap.Diagnostic) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.docs[uri]
	if !ok || e.doc.Version != version {
		return false
	}
	e.diags = diags
	e.diagsOf = version
	e.published = true
	return true
}

// Diagnostics returns the latest stored diagnostics for uri and the version
// they were computed for.
func (s *Store) Diagnostics(uri string) ([]diagmap.Diagnostic, int32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.docs[uri]
	if !ok || !e.published {
		return nil, 0, false
	}
	return e.diags, e.diagsOf, true
}
