package session

import (
	"context"
	"sync"

	"github.com/yaklabco/gosage/internal/logging"
)

// PublishFunc receives reports for versions that are still current.
type PublishFunc func(Report)

type job struct {
	version int32
	cancel  context.CancelFunc
}

// Scheduler runs the pipeline for each new document version in the
// background. Scheduling a version cancels work for older versions of the
// same document, and results for superseded versions are discarded.
type Scheduler struct {
	base     context.Context
	store    *Store
	pipeline *Pipeline
	publish  PublishFunc

	mu      sync.Mutex
	pending map[string]*job
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. Work runs under contexts derived from
// ctx.
func NewScheduler(ctx context.Context, store *Store, pipeline *Pipeline, publish PublishFunc) *Scheduler {
	return &Scheduler{
		base:     ctx,
		store:    store,
		pipeline: pipeline,
		publish:  publish,
		pending:  make(map[string]*job),
	}
}

// Schedule starts analysis of doc.
func (s *Scheduler) Schedule(doc *Document) {
	ctx, cancel := context.WithCancel(s.base)
	j := &job{version: doc.Version, cancel: cancel}

	s.mu.Lock()
	if prev, ok := s.pending[doc.URI]; ok {
		prev.cancel()
	}
	s.pending[doc.URI] = j
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(ctx, j, doc)
}

func (s *Scheduler) run(ctx context.Context, j *job, doc *Document) {
	defer s.wg.Done()
	defer j.cancel()

	rep, err := s.pipeline.Run(ctx, doc)

	s.mu.Lock()
	if s.pending[doc.URI] == j {
		delete(s.pending, doc.URI)
	}
	s.mu.Unlock()

	logger := logging.FromContext(ctx).With(logging.FieldURI, doc.URI, logging.FieldVersion, doc.Version)
	if err != nil {
		logger.Debug("analysis cancelled", logging.FieldError, err)
		return
	}
	if !s.store.SetDiagnostics(doc.URI, doc.Version, rep.Diagnostics) {
		logger.Debug("discarding stale analysis")
		return
	}
	if s.publish != nil {
		s.publish(rep)
	}
}

// Cancel stops pending work for uri.
func (s *Scheduler) Cancel(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j, ok := s.pending[uri]; ok {
		j.cancel()
		delete(s.pending, uri)
	}
}

// Close cancels all pending work and waits for it to finish.
func (s *Scheduler) Close() {
	s.mu.Lock()
	for uri, j := range s.pending {
		j.cancel()
		delete(s.pending, uri)
	}
	s.mu.Unlock()

	s.wg.Wait()
}
