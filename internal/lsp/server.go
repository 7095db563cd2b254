// Package lsp serves Sage documents to editors over the language server
// protocol on a pair of streams, usually the process's stdin and stdout.
package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/yaklabco/gosage/internal/logging"
	"github.com/yaklabco/gosage/pkg/complete"
	"github.com/yaklabco/gosage/pkg/sagedoc"
	"github.com/yaklabco/gosage/pkg/session"
)

// ErrExitWithoutShutdown is returned by Serve when the client sends exit
// before shutdown. The process should exit with status 1.
var ErrExitWithoutShutdown = errors.New("exit received before shutdown")

// Config holds the components a Server drives.
type Config struct {
	Store    *session.Store
	Pipeline *session.Pipeline
	Engine   *complete.Engine
	Docs     *sagedoc.Catalog

	// Version is reported to the client in serverInfo.
	Version string
}

type lifecycle int

const (
	stateStarting lifecycle = iota
	stateRunning
	stateShutdown
)

// Server is a language server for one client connection.
type Server struct {
	conn    *Conn
	store   *session.Store
	docs    *sagedoc.Catalog
	version string

	// publishMu orders diagnostics notifications: the version check and the
	// send happen together.
	publishMu sync.Mutex

	mu        sync.RWMutex
	state     lifecycle
	engine    *complete.Engine
	pipeline  *session.Pipeline
	scheduler *session.Scheduler
	base      context.Context
}

// NewServer creates a server speaking on conn.
func NewServer(conn *Conn, cfg Config) *Server {
	if cfg.Engine == nil {
		cfg.Engine = complete.NewDefaultEngine()
	}
	if cfg.Docs == nil {
		cfg.Docs = sagedoc.Default()
	}
	if cfg.Pipeline == nil {
		cfg.Pipeline = &session.Pipeline{}
	}
	return &Server{
		conn:     conn,
		store:    cfg.Store,
		docs:     cfg.Docs,
		version:  cfg.Version,
		engine:   cfg.Engine,
		pipeline: cfg.Pipeline,
	}
}

// Serve handles messages until the client sends exit or closes the stream.
// Pending analysis is cancelled and awaited before Serve returns.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.base = ctx
	s.scheduler = session.NewScheduler(ctx, s.store, s.pipeline, s.publish)
	s.mu.Unlock()
	defer func() {
		s.mu.RLock()
		sched := s.scheduler
		s.mu.RUnlock()
		sched.Close()
	}()

	logger := logging.FromContext(ctx)
	for {
		msg, err := s.conn.Read()
		if err != nil {
			var rerr *ResponseError
			if errors.As(err, &rerr) {
				_ = s.conn.ReplyError(nil, rerr)
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading message: %w", err)
		}
		if ctx.Err() != nil {
			return nil
		}

		if msg.Method == "exit" {
			if s.currentState() != stateShutdown {
				return ErrExitWithoutShutdown
			}
			return nil
		}

		if msg.IsRequest() {
			result, rerr := s.call(ctx, msg.Method, msg.Params)
			if rerr != nil {
				logger.Debug("request failed", logging.FieldMethod, msg.Method, logging.FieldError, rerr)
				err = s.conn.ReplyError(msg.ID, rerr)
			} else {
				err = s.conn.Reply(msg.ID, result)
			}
			if err != nil {
				return fmt.Errorf("replying to %s: %w", msg.Method, err)
			}
			continue
		}
		if msg.Method != "" {
			s.notified(ctx, msg.Method, msg.Params)
		}
	}
}

// Reload replaces the pipeline and completion engine, for example after a
// configuration change, and reanalyzes every open document.
func (s *Server) Reload(pipeline *session.Pipeline, engine *complete.Engine) {
	s.mu.Lock()
	old := s.scheduler
	if engine != nil {
		s.engine = engine
	}
	if pipeline != nil {
		s.pipeline = pipeline
	}
	if s.base != nil {
		s.scheduler = session.NewScheduler(s.base, s.store, s.pipeline, s.publish)
	}
	sched := s.scheduler
	s.mu.Unlock()

	if old == nil || sched == nil {
		return
	}
	old.Close()
	for _, uri := range s.store.URIs() {
		if doc, ok := s.store.Get(uri); ok {
			sched.Schedule(doc)
		}
	}
}

func (s *Server) currentState() lifecycle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Server) currentEngine() *complete.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

func (s *Server) currentScheduler() *session.Scheduler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scheduler
}

func (s *Server) call(ctx context.Context, method string, params json.RawMessage) (any, *ResponseError) {
	switch state := s.currentState(); {
	case method == "initialize":
		if state != stateStarting {
			return nil, Errorf(CodeInvalidRequest, "server already initialized")
		}
		return s.initialize(params)
	case state == stateStarting:
		return nil, Errorf(CodeServerNotInitialized, "server not initialized")
	case state == stateShutdown:
		return nil, Errorf(CodeInvalidRequest, "server is shutting down")
	}

	switch method {
	case "shutdown":
		s.mu.Lock()
		s.state = stateShutdown
		s.mu.Unlock()
		return nil, nil
	case "textDocument/completion":
		return s.completion(ctx, params)
	case "textDocument/hover":
		return s.hover(ctx, params)
	case "textDocument/documentSymbol":
		return s.documentSymbol(ctx, params)
	default:
		return nil, Errorf(CodeMethodNotFound, "method not found: %s", method)
	}
}

func (s *Server) notified(ctx context.Context, method string, params json.RawMessage) {
	if s.currentState() != stateRunning {
		return
	}
	logger := logging.FromContext(ctx).With(logging.FieldMethod, method)

	var err error
	switch method {
	case "initialized":
	case "textDocument/didOpen":
		err = s.didOpen(ctx, params)
	case "textDocument/didChange":
		err = s.didChange(ctx, params)
	case "textDocument/didClose":
		err = s.didClose(ctx, params)
	default:
		logger.Debug("ignoring notification")
	}
	if err != nil {
		logger.Warn("notification failed", logging.FieldError, err)
	}
}

func (s *Server) initialize(params json.RawMessage) (any, *ResponseError) {
	var p InitializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, Errorf(CodeInvalidParams, "initialize: %v", err)
		}
	}

	s.mu.Lock()
	s.state = stateRunning
	s.mu.Unlock()

	return InitializeResult{
		Capabilities: ServerCapabilities{
			PositionEncoding: "utf-16",
			TextDocumentSync: TextDocumentSyncOptions{OpenClose: true, Change: SyncIncremental},
			CompletionProvider: &CompletionOptions{
				TriggerCharacters: []string{".", "<", ">", "=", "*", "^", ","},
			},
			HoverProvider:          true,
			DocumentSymbolProvider: true,
		},
		ServerInfo: &ServerInfo{Name: "gosage", Version: s.version},
	}, nil
}

func decode[T any](params json.RawMessage) (T, *ResponseError) {
	var v T
	if err := json.Unmarshal(params, &v); err != nil {
		return v, Errorf(CodeInvalidParams, "%v", err)
	}
	return v, nil
}
