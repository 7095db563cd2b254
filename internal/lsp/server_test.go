package lsp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/yaklabco/gosage/internal/lsp"
	"github.com/yaklabco/gosage/pkg/diagmap"
	"github.com/yaklabco/gosage/pkg/recognize"
	"github.com/yaklabco/gosage/pkg/session"
	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/sourcemap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	powerURI = "file:///work/power.sage"
	ringURI  = "file:///work/ring.sage"
)

// powerAnalyzer reports every "**" in the text it is given.
type powerAnalyzer struct{}

func (powerAnalyzer) Analyze(_ context.Context, _ string, text []byte) ([]diagmap.Diagnostic, error) {
	var diags []diagmap.Diagnostic
	for off := 0; ; {
		i := bytes.Index(text[off:], []byte("**"))
		if i < 0 {
			return diags, nil
		}
		start := off + i
		diags = append(diags, diagmap.Diagnostic{
			Range:    source.NewRange(start, start+2),
			Severity: diagmap.SeverityWarning,
			Code:     "PLR6104",
			Message:  "power operator",
			Source:   "ruff",
		})
		off = start + 2
	}
}

type client struct {
	t      *testing.T
	conn   *lsp.Conn
	in     chan *lsp.Message
	notes  []*lsp.Message
	nextID int
}

type harness struct {
	*client
	done      chan error
	clientOut *io.PipeWriter
	serverOut *io.PipeWriter
}

func start(t *testing.T) *harness {
	t.Helper()

	clientIn, serverOut := io.Pipe()
	serverIn, clientOut := io.Pipe()

	store := session.NewStore(sourcemap.NewBuilder(recognize.NewDefault(), "test", nil))
	srv := lsp.NewServer(lsp.NewConn(serverIn, serverOut), lsp.Config{
		Store:    store,
		Pipeline: &session.Pipeline{Analyzer: powerAnalyzer{}},
		Version:  "test",
	})

	h := &harness{
		client: &client{
			t:    t,
			conn: lsp.NewConn(clientIn, clientOut),
			in:   make(chan *lsp.Message, 64),
		},
		done:      make(chan error, 1),
		clientOut: clientOut,
		serverOut: serverOut,
	}
	go func() {
		defer close(h.in)
		for {
			msg, err := h.conn.Read()
			if err != nil {
				return
			}
			h.in <- msg
		}
	}()
	go func() {
		h.done <- srv.Serve(context.Background())
	}()
	return h
}

// stop ends the session and waits for both sides to finish.
func (h *harness) stop(exitErr bool) {
	h.t.Helper()
	var err error
	select {
	case err = <-h.done:
	case <-time.After(5 * time.Second):
		h.t.Fatal("server did not stop")
	}
	if exitErr {
		require.ErrorIs(h.t, err, lsp.ErrExitWithoutShutdown)
	} else {
		require.NoError(h.t, err)
	}
	_ = h.serverOut.Close()
	_ = h.clientOut.Close()
	for range h.in {
	}
}

func (c *client) next() *lsp.Message {
	c.t.Helper()
	select {
	case msg, ok := <-c.in:
		require.True(c.t, ok, "connection closed")
		return msg
	case <-time.After(5 * time.Second):
		c.t.Fatal("timed out waiting for a message")
		return nil
	}
}

func (c *client) request(method string, params any) *lsp.Message {
	c.t.Helper()
	c.nextID++
	id := c.nextID
	require.NoError(c.t, c.conn.Call(id, method, params))
	want := mustJSON(c.t, id)
	for {
		msg := c.next()
		if msg.IsResponse() && bytes.Equal(msg.ID, want) {
			return msg
		}
		c.notes = append(c.notes, msg)
	}
}

func (c *client) notify(method string, params any) {
	c.t.Helper()
	require.NoError(c.t, c.conn.Notify(method, params))
}

// diagnostics waits for diagnostics published for uri.
func (c *client) diagnostics(uri string) lsp.PublishDiagnosticsParams {
	c.t.Helper()
	for i, msg := range c.notes {
		if p, ok := c.published(msg, uri); ok {
			c.notes = append(c.notes[:i], c.notes[i+1:]...)
			return p
		}
	}
	for {
		if p, ok := c.published(c.next(), uri); ok {
			return p
		}
	}
}

func (c *client) published(msg *lsp.Message, uri string) (lsp.PublishDiagnosticsParams, bool) {
	var p lsp.PublishDiagnosticsParams
	if msg.Method != "textDocument/publishDiagnostics" {
		return p, false
	}
	require.NoError(c.t, json.Unmarshal(msg.Params, &p))
	return p, p.URI == uri
}

func (c *client) initialize() lsp.InitializeResult {
	c.t.Helper()
	resp := c.request("initialize", lsp.InitializeParams{RootURI: "file:///work"})
	require.Nil(c.t, resp.Error)
	var res lsp.InitializeResult
	require.NoError(c.t, json.Unmarshal(resp.Result, &res))
	c.notify("initialized", struct{}{})
	return res
}

func (c *client) open(uri string, version int32, text string) {
	c.t.Helper()
	c.notify("textDocument/didOpen", lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: uri, LanguageID: "sage", Version: version, Text: text},
	})
}

func (c *client) shutdown() {
	c.t.Helper()
	resp := c.request("shutdown", nil)
	require.Nil(c.t, resp.Error)
	c.notify("exit", nil)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func decodeResult[T any](t *testing.T, msg *lsp.Message) T {
	t.Helper()
	require.Nil(t, msg.Error)
	var v T
	require.NoError(t, json.Unmarshal(msg.Result, &v))
	return v
}

func at(uri string, line, char int) lsp.TextDocumentPositionParams {
	return lsp.TextDocumentPositionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri},
		Position:     lsp.Position{Line: line, Character: char},
	}
}

func TestServerSession(t *testing.T) {
	t.Parallel()

	h := start(t)

	res := h.initialize()
	assert.Equal(t, lsp.SyncIncremental, res.Capabilities.TextDocumentSync.Change)
	assert.Equal(t, "utf-16", res.Capabilities.PositionEncoding)
	require.NotNil(t, res.Capabilities.CompletionProvider)
	assert.Contains(t, res.Capabilities.CompletionProvider.TriggerCharacters, "*")
	require.NotNil(t, res.ServerInfo)
	assert.Equal(t, "gosage", res.ServerInfo.Name)

	h.open(powerURI, 1, "x = 2^3\n")
	pub := h.diagnostics(powerURI)
	require.NotNil(t, pub.Version)
	assert.Equal(t, int32(1), *pub.Version)
	require.Len(t, pub.Diagnostics, 1)
	assert.Equal(t, lsp.Range{Start: lsp.Position{Line: 0, Character: 5}, End: lsp.Position{Line: 0, Character: 6}},
		pub.Diagnostics[0].Range)
	assert.Equal(t, int(diagmap.SeverityWarning), pub.Diagnostics[0].Severity)
	assert.Equal(t, "PLR6104", pub.Diagnostics[0].Code)

	hov := decodeResult[lsp.Hover](t, h.request("textDocument/hover", at(powerURI, 0, 5)))
	assert.Equal(t, "markdown", hov.Contents.Kind)
	assert.Contains(t, hov.Contents.Value, "exponentiation")
	assert.Contains(t, hov.Contents.Value, "`**`")

	h.notify("textDocument/didChange", lsp.DidChangeTextDocumentParams{
		TextDocument: lsp.VersionedTextDocumentIdentifier{URI: powerURI, Version: 2},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{{
			Range: &lsp.Range{Start: lsp.Position{Line: 0, Character: 5}, End: lsp.Position{Line: 0, Character: 7}},
			Text:  "*",
		}},
	})
	pub = h.diagnostics(powerURI)
	require.NotNil(t, pub.Version)
	assert.Equal(t, int32(2), *pub.Version)
	assert.Empty(t, pub.Diagnostics)

	list := decodeResult[lsp.CompletionList](t, h.request("textDocument/completion", at(powerURI, 0, 6)))
	require.NotEmpty(t, list.Items)
	first := list.Items[0]
	assert.True(t, first.Preselect)
	assert.Equal(t, lsp.CompletionKindOperator, first.Kind)
	require.NotNil(t, first.TextEdit)
	assert.Equal(t, "*", first.TextEdit.NewText)
	assert.Equal(t, lsp.Position{Line: 0, Character: 6}, first.TextEdit.Range.Start)
	assert.Equal(t, "0000", first.SortText)

	h.open(ringURI, 1, "P.<x> = PolynomialRing(QQ)\n")
	syms := decodeResult[[]lsp.DocumentSymbol](t, h.request("textDocument/documentSymbol",
		lsp.DocumentSymbolParams{TextDocument: lsp.TextDocumentIdentifier{URI: ringURI}}))
	require.Len(t, syms, 1)
	assert.Equal(t, "P", syms[0].Name)
	assert.Equal(t, "PolynomialRing", syms[0].Detail)
	require.Len(t, syms[0].Children, 1)
	assert.Equal(t, "x", syms[0].Children[0].Name)
	assert.Equal(t, lsp.Position{Line: 0, Character: 3}, syms[0].Children[0].Range.Start)

	h.notify("textDocument/didClose", lsp.DidCloseTextDocumentParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: powerURI},
	})
	for {
		pub = h.diagnostics(powerURI)
		if pub.Version == nil {
			break
		}
	}
	assert.Empty(t, pub.Diagnostics)

	h.shutdown()
	h.stop(false)
}

func TestServerLifecycleErrors(t *testing.T) {
	t.Parallel()

	h := start(t)

	resp := h.request("textDocument/hover", at(powerURI, 0, 0))
	require.NotNil(t, resp.Error)
	assert.Equal(t, lsp.CodeServerNotInitialized, resp.Error.Code)

	h.initialize()

	resp = h.request("initialize", lsp.InitializeParams{})
	require.NotNil(t, resp.Error)
	assert.Equal(t, lsp.CodeInvalidRequest, resp.Error.Code)

	resp = h.request("workspace/symbol", struct{}{})
	require.NotNil(t, resp.Error)
	assert.Equal(t, lsp.CodeMethodNotFound, resp.Error.Code)

	resp = h.request("textDocument/hover", at("file:///missing.sage", 0, 0))
	require.NotNil(t, resp.Error)
	assert.Equal(t, lsp.CodeInvalidParams, resp.Error.Code)

	resp = h.request("shutdown", nil)
	require.Nil(t, resp.Error)

	resp = h.request("textDocument/hover", at(powerURI, 0, 0))
	require.NotNil(t, resp.Error)
	assert.Equal(t, lsp.CodeInvalidRequest, resp.Error.Code)

	h.notify("exit", nil)
	h.stop(false)
}

func TestServerExitWithoutShutdown(t *testing.T) {
	t.Parallel()

	h := start(t)
	h.initialize()
	h.notify("exit", nil)
	h.stop(true)
}

func TestServerPythonDocumentHasNoCompletions(t *testing.T) {
	t.Parallel()

	h := start(t)
	h.initialize()

	const pyURI = "file:///work/script.py"
	h.open(pyURI, 1, "x = 2*")
	h.diagnostics(pyURI)

	list := decodeResult[lsp.CompletionList](t, h.request("textDocument/completion", at(pyURI, 0, 6)))
	assert.Empty(t, list.Items)

	h.shutdown()
	h.stop(false)
}
