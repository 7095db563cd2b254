// Package session keeps the open documents of an editor session and runs
// conversion and analysis for each new version in the background.
package session

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yaklabco/gosage/pkg/langdetect"
	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/sourcemap"
)

// Document is one immutable version of an open document. Its source map is
// built on first use and shared by everyone holding the version.
type Document struct {
	URI     string
	Version int32
	Text    *source.Snapshot

	// Dialect is Python for documents analyzed without rewriting.
	Dialect langdetect.Dialect

	builder *sourcemap.Builder
	once    sync.Once
	m       *sourcemap.Map
	mapErr  error
}

func newDocument(uri string, version int32, text []byte, dialect langdetect.Dialect, builder *sourcemap.Builder) *Document {
	return &Document{
		URI:     uri,
		Version: version,
		Text:    source.NewSnapshot(PathFromURI(uri), text),
		Dialect: dialect,
		builder: builder,
	}
}

// Map returns the source map for this version, building it once. Python
// documents get an identity map.
func (d *Document) Map(ctx context.Context) (*sourcemap.Map, error) {
	d.once.Do(func() {
		if d.Dialect == langdetect.Python {
			d.m = sourcemap.Identity(d.Text.Content)
			return
		}
		d.m, d.mapErr = d.builder.Build(ctx, d.Text.Content)
	})
	return d.m, d.mapErr
}

// PathFromURI returns the file system path of a file URI, or the URI itself
// for other schemes.
func PathFromURI(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		return strings.TrimPrefix(uri, "file://")
	}
	return filepath.FromSlash(u.Path)
}
