package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yaklabco/gosage/internal/logging"
	"github.com/yaklabco/gosage/pkg/complete"
	"github.com/yaklabco/gosage/pkg/diagmap"
	"github.com/yaklabco/gosage/pkg/hover"
	"github.com/yaklabco/gosage/pkg/langdetect"
	"github.com/yaklabco/gosage/pkg/session"
	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

func (s *Server) didOpen(ctx context.Context, params json.RawMessage) error {
	p, rerr := decode[DidOpenTextDocumentParams](params)
	if rerr != nil {
		return rerr
	}
	doc := s.store.Open(p.TextDocument.URI, p.TextDocument.Version, []byte(p.TextDocument.Text))
	logging.FromContext(ctx).Debug("opened document",
		logging.FieldURI, doc.URI, logging.FieldVersion, doc.Version, "dialect", doc.Dialect)
	s.currentScheduler().Schedule(doc)
	return nil
}

func (s *Server) didChange(ctx context.Context, params json.RawMessage) error {
	p, rerr := decode[DidChangeTextDocumentParams](params)
	if rerr != nil {
		return rerr
	}
	changes := make([]session.Change, len(p.ContentChanges))
	for i, c := range p.ContentChanges {
		changes[i] = session.Change{Range: c.Range, Text: c.Text}
	}
	doc, err := s.store.Change(p.TextDocument.URI, p.TextDocument.Version, changes)
	if err != nil {
		if errors.Is(err, session.ErrStaleVersion) {
			logging.FromContext(ctx).Warn("ignoring stale change",
				logging.FieldURI, p.TextDocument.URI, logging.FieldVersion, p.TextDocument.Version)
			return nil
		}
		return err
	}
	s.currentScheduler().Schedule(doc)
	return nil
}

func (s *Server) didClose(_ context.Context, params json.RawMessage) error {
	p, rerr := decode[DidCloseTextDocumentParams](params)
	if rerr != nil {
		return rerr
	}
	uri := p.TextDocument.URI
	s.currentScheduler().Cancel(uri)
	if !s.store.Close(uri) {
		return fmt.Errorf("%w: %s", session.ErrUnknownDocument, uri)
	}
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	return s.conn.Notify("textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []Diagnostic{},
	})
}

func (s *Server) document(uri string) (*session.Document, *ResponseError) {
	doc, ok := s.store.Get(uri)
	if !ok {
		return nil, Errorf(CodeInvalidParams, "%v: %s", session.ErrUnknownDocument, uri)
	}
	return doc, nil
}

func (s *Server) completion(_ context.Context, params json.RawMessage) (any, *ResponseError) {
	p, rerr := decode[TextDocumentPositionParams](params)
	if rerr != nil {
		return nil, rerr
	}
	doc, rerr := s.document(p.TextDocument.URI)
	if rerr != nil {
		return nil, rerr
	}
	list := CompletionList{Items: []CompletionItem{}}
	if doc.Dialect == langdetect.Python {
		return list, nil
	}

	text := doc.Text
	res := s.currentEngine().Complete(text.Content, text.FromLSP(p.Position))
	list.Items = completionItems(text, res)
	return list, nil
}

// completionItems converts engine candidates in rank order. An automatic
// insertion becomes the preselected first item.
func completionItems(text *source.Snapshot, res complete.Result) []CompletionItem {
	items := make([]CompletionItem, 0, len(res.Candidates)+1)
	preselected := -1
	for i, c := range res.Candidates {
		if res.AutoInsert != nil && preselected < 0 &&
			c.InsertText == res.AutoInsert.Text && c.Replace == source.Point(res.AutoInsert.Offset) {
			preselected = i
		}
		items = append(items, completionItem(text, c))
	}

	switch {
	case res.AutoInsert == nil:
	case preselected >= 0:
		item := items[preselected]
		item.Preselect = true
		copy(items[1:preselected+1], items[:preselected])
		items[0] = item
	default:
		start, end := text.RangeToLSP(source.Point(res.AutoInsert.Offset))
		items = append([]CompletionItem{{
			Label:     res.AutoInsert.Text,
			Kind:      CompletionKindOperator,
			Preselect: true,
			TextEdit:  &TextEdit{Range: Range{Start: start, End: end}, NewText: res.AutoInsert.Text},
		}}, items...)
	}
	for i := range items {
		items[i].SortText = fmt.Sprintf("%04d", i)
	}
	return items
}

func completionItem(text *source.Snapshot, c complete.Candidate) CompletionItem {
	start, end := text.RangeToLSP(c.Replace)
	return CompletionItem{
		Label:    c.Label,
		Kind:     completionKind(c.Kind),
		Detail:   c.Detail,
		TextEdit: &TextEdit{Range: Range{Start: start, End: end}, NewText: c.InsertText},
	}
}

func completionKind(kind spanindex.Kind) int {
	switch kind {
	case spanindex.KindOperator:
		return CompletionKindOperator
	case spanindex.KindExpansion:
		return CompletionKindSnippet
	case spanindex.KindLiteral:
		return CompletionKindValue
	default:
		return CompletionKindFunction
	}
}

func (s *Server) hover(ctx context.Context, params json.RawMessage) (any, *ResponseError) {
	p, rerr := decode[TextDocumentPositionParams](params)
	if rerr != nil {
		return nil, rerr
	}
	doc, rerr := s.document(p.TextDocument.URI)
	if rerr != nil {
		return nil, rerr
	}
	m, err := doc.Map(ctx)
	if err != nil {
		return nil, Errorf(CodeInternalError, "building source map: %v", err)
	}

	h, ok := hover.At(m, s.docs, doc.Text.FromLSP(p.Position))
	if !ok {
		return nil, nil
	}
	start, end := doc.Text.RangeToLSP(h.Range)
	return Hover{
		Contents: MarkupContent{Kind: "markdown", Value: h.Markdown},
		Range:    &Range{Start: start, End: end},
	}, nil
}

func (s *Server) documentSymbol(ctx context.Context, params json.RawMessage) (any, *ResponseError) {
	p, rerr := decode[DocumentSymbolParams](params)
	if rerr != nil {
		return nil, rerr
	}
	doc, rerr := s.document(p.TextDocument.URI)
	if rerr != nil {
		return nil, rerr
	}
	m, err := doc.Map(ctx)
	if err != nil {
		return nil, Errorf(CodeInternalError, "building source map: %v", err)
	}
	return documentSymbols(doc.Text, hover.Symbols(m)), nil
}

func documentSymbols(text *source.Snapshot, syms []hover.Symbol) []DocumentSymbol {
	out := make([]DocumentSymbol, len(syms))
	for i, sym := range syms {
		rs, re := text.RangeToLSP(sym.Range)
		ss, se := text.RangeToLSP(sym.Selection)
		out[i] = DocumentSymbol{
			Name:           sym.Name,
			Detail:         sym.Detail,
			Kind:           int(sym.Kind),
			Range:          Range{Start: rs, End: re},
			SelectionRange: Range{Start: ss, End: se},
		}
		if len(sym.Children) > 0 {
			out[i].Children = documentSymbols(text, sym.Children)
		}
	}
	return out
}

// publish sends a report to the client if its version is still the one
// the client has open.
func (s *Server) publish(rep session.Report) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	doc, ok := s.store.Get(rep.URI)
	if !ok || doc.Version != rep.Version {
		return
	}

	diags := make([]Diagnostic, len(rep.Diagnostics))
	for i, d := range rep.Diagnostics {
		diags[i] = toProtocol(doc.Text, d)
	}
	version := rep.Version
	err := s.conn.Notify("textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         rep.URI,
		Version:     &version,
		Diagnostics: diags,
	})
	if err != nil {
		logging.Default().Warn("publishing diagnostics failed",
			logging.FieldURI, rep.URI, logging.FieldError, err)
	}
}

func toProtocol(text *source.Snapshot, d diagmap.Diagnostic) Diagnostic {
	start, end := text.RangeToLSP(d.Range)
	out := Diagnostic{
		Range:    Range{Start: start, End: end},
		Severity: int(d.Severity),
		Code:     d.Code,
		Source:   d.Source,
		Message:  d.Message,
	}
	if d.Origin != "" && d.Origin != diagmap.OriginDirect {
		out.Data = map[string]any{"origin": string(d.Origin)}
	}
	return out
}
