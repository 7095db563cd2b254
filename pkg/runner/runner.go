package runner

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/yaklabco/gosage/internal/logging"
	"github.com/yaklabco/gosage/pkg/fsutil"
	"github.com/yaklabco/gosage/pkg/session"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

// Runner checks files with a session pipeline. Each file is opened in a
// private store, analyzed once and closed.
type Runner struct {
	// Store resolves dialects and builds source maps.
	Store *session.Store

	// Pipeline converts and analyzes each file.
	Pipeline *session.Pipeline
}

// New creates a new Runner.
func New(store *session.Store, pipeline *session.Pipeline) *Runner {
	return &Runner{Store: store, Pipeline: pipeline}
}

// Run discovers files under opts.Paths and processes them concurrently.
// It returns a deterministic collection of FileOutcome values and aggregate stats.
//
// The runner:
//   - Discovers files matching the options criteria
//   - Processes files concurrently using a worker pool
//   - Aggregates results into a single Result with statistics
//   - Respects context cancellation
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Files: make([]FileOutcome, 0, len(files)),
		Stats: newStats(),
	}
	result.Stats.FilesDiscovered = len(files)
	logging.FromContext(ctx).Debug("discovered files", logging.FieldFilesDiscovered, len(files))

	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, workCh, outCh)
		}()
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	// Workers finish out of order.
	outcomes := make(map[string]FileOutcome, len(files))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}
	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}
	return result, nil
}

// worker processes files from workCh and sends outcomes to outCh.
func (r *Runner) worker(ctx context.Context, workCh <-chan string, outCh chan<- FileOutcome) {
	for path := range workCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		outcome, err := r.CheckFile(ctx, path)
		if err != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}

// CheckFile analyzes one file. The error is non-nil only when ctx is done;
// unreadable files are reported in the outcome.
func (r *Runner) CheckFile(ctx context.Context, path string) (FileOutcome, error) {
	outcome := FileOutcome{Path: path}

	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return outcome, ctxErr
		}
		outcome.Error = err
		return outcome, nil
	}

	uri := FileURI(path)
	doc := r.Store.Open(uri, 1, content)
	defer r.Store.Close(uri)
	outcome.Dialect = doc.Dialect
	outcome.Text = doc.Text

	if m, err := doc.Map(ctx); err == nil {
		kinds := m.Index().Kinds()
		outcome.Spans = m.Index().Len() - kinds[spanindex.KindPassthrough]
	}

	rep, err := r.Pipeline.Run(ctx, doc)
	if err != nil {
		return outcome, err
	}
	rep.URI = path
	outcome.Report = rep
	return outcome, nil
}

// FileURI returns the file URI of a local path.
func FileURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
