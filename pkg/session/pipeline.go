package session

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/gosage/internal/logging"
	"github.com/yaklabco/gosage/pkg/diagmap"
	"github.com/yaklabco/gosage/pkg/external"
	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

// CodeAnalysisUnavailable marks the diagnostic published when a version
// could not be analyzed.
const CodeAnalysisUnavailable = "analysis-unavailable"

// Report is the analysis outcome for one document version.
type Report struct {
	URI         string
	Version     int32
	Diagnostics []diagmap.Diagnostic

	// Dropped counts analyzer findings whose ranges could not be mapped.
	Dropped int

	// Unavailable holds the reason analysis failed, if it did.
	Unavailable error
}

// Pipeline checks a document version: the converter, when configured,
// confirms the text is valid Sage while the analyzer runs on the rewritten
// text. Either may be nil.
type Pipeline struct {
	Converter external.Converter
	Analyzer  external.Analyzer
}

// Run analyzes doc. It returns an error only when ctx is done; tool and
// mapping failures become a single informational diagnostic.
func (p *Pipeline) Run(ctx context.Context, doc *Document) (Report, error) {
	ctx = logging.WithFields(ctx, logging.FieldURI, doc.URI, logging.FieldVersion, doc.Version)
	logger := logging.FromContext(ctx)
	rep := Report{URI: doc.URI, Version: doc.Version}

	var mapped diagmap.Result
	g, gctx := errgroup.WithContext(ctx)
	if p.Converter != nil {
		g.Go(func() error {
			if _, err := p.Converter.Convert(gctx, doc.Text.Content); err != nil {
				return fmt.Errorf("converting: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		m, err := doc.Map(gctx)
		if err != nil {
			return fmt.Errorf("building source map: %w", err)
		}
		if p.Analyzer == nil {
			return nil
		}
		diags, err := p.Analyzer.Analyze(gctx, doc.Text.Path, m.Rewritten().Content)
		if err != nil {
			return fmt.Errorf("analyzing: %w", err)
		}
		mapped = diagmap.MapContext(gctx, diags, m)
		return nil
	})
	err := g.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Report{}, ctxErr
	}
	if err != nil {
		if errors.Is(err, spanindex.ErrInvariant) {
			logger.Error("analysis unavailable", logging.FieldError, err)
		} else {
			logger.Warn("analysis unavailable", logging.FieldError, err)
		}
		rep.Unavailable = err
		rep.Diagnostics = []diagmap.Diagnostic{unavailable(err)}
		return rep, nil
	}

	if mapped.Dropped > 0 {
		logger.Error("diagnostics dropped", logging.FieldDropped, mapped.Dropped)
	}
	rep.Diagnostics = mapped.Diagnostics
	rep.Dropped = mapped.Dropped
	return rep, nil
}

func unavailable(err error) diagmap.Diagnostic {
	return diagmap.Diagnostic{
		Range:    source.Point(0),
		Severity: diagmap.SeverityInformation,
		Code:     CodeAnalysisUnavailable,
		Message:  "analysis unavailable for this version: " + err.Error(),
		Source:   "gosage",
		Origin:   diagmap.OriginSynthetic,
	}
}
