package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gosage/internal/configloader"
	"github.com/yaklabco/gosage/internal/logging"
	"github.com/yaklabco/gosage/internal/resilience"
	"github.com/yaklabco/gosage/pkg/complete"
	"github.com/yaklabco/gosage/pkg/config"
	"github.com/yaklabco/gosage/pkg/diagmap"
	"github.com/yaklabco/gosage/pkg/external"
	"github.com/yaklabco/gosage/pkg/langdetect"
	"github.com/yaklabco/gosage/pkg/recognize"
	"github.com/yaklabco/gosage/pkg/session"
	"github.com/yaklabco/gosage/pkg/sourcemap"
)

// ErrConfig wraps configuration loading and validation failures.
var ErrConfig = errors.New("invalid configuration")

// loadConfig resolves the configuration for cmd, layering overrides from
// flags on top of files and the environment.
func loadConfig(cmd *cobra.Command, overrides *config.Config) (*configloader.LoadResult, error) {
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	res, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    overrides,
	})
	if err != nil {
		return nil, errors.Join(ErrConfig, err)
	}
	for _, warning := range res.Warnings {
		logger.Warn(warning)
	}
	if len(res.LoadedFrom) > 0 {
		logger.Debug("loaded configuration", logging.FieldFiles, res.LoadedFrom)
	}

	validation := configloader.Validate(res.Config)
	for _, w := range validation.Warnings {
		logger.Warn(w.Error())
	}
	if !validation.Valid() {
		errs := make([]error, 0, len(validation.Errors)+1)
		errs = append(errs, ErrConfig)
		for _, e := range validation.Errors {
			errs = append(errs, &e)
		}
		return nil, errors.Join(errs...)
	}

	if !cmd.Flags().Changed("debug") {
		logging.SetLevel(res.Config.LogLevel)
	}
	return res, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// components holds everything built from one configuration.
type components struct {
	cfg        *config.Config
	recognizer *recognize.Recognizer
	cache      *sourcemap.Cache
	store      *session.Store
	pipeline   *session.Pipeline
	engine     *complete.Engine

	tools toolset
}

// toolset holds the external tools of a pipeline, enabled or not.
type toolset struct {
	converter *external.Tool
	analyzer  *external.Tool
}

// buildComponents wires a configuration into a recognizer, a store, an
// analysis pipeline and a completion engine. Callers must call close.
func buildComponents(cfg *config.Config) (*components, error) {
	c := &components{cfg: cfg}

	prelude := ""
	variant := "plain"
	if config.BoolValue(cfg.Prelude, true) {
		prelude = recognize.DefaultPrelude
		variant = "prelude"
	}
	c.recognizer = recognize.New(recognize.DefaultRegistry(), recognize.WithPrelude(prelude))

	if cfg.Cache.MaxBytes > 0 {
		cache, err := sourcemap.NewCache(cfg.Cache.MaxBytes, cfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
		c.cache = cache
	}

	dialect, ok := langdetect.ParseDialect(cfg.Dialect)
	if !ok {
		c.close()
		return nil, fmt.Errorf("%w: unknown dialect %q", ErrConfig, cfg.Dialect)
	}
	c.store = session.NewStore(
		sourcemap.NewBuilder(c.recognizer, variant, c.cache),
		session.WithDialect(dialect),
	)

	pipeline, tools, err := buildPipeline(cfg)
	if err != nil {
		c.close()
		return nil, err
	}
	c.pipeline = pipeline
	c.tools = tools

	c.engine = newEngine(cfg.Completion)
	return c, nil
}

// buildPipeline creates the external tools and the analysis pipeline using
// them. The tools share one process pool and have a breaker each.
func buildPipeline(cfg *config.Config) (*session.Pipeline, toolset, error) {
	pool := external.NewPool(cfg.Concurrency.MaxProcesses)
	newTool := func(command []string, timeout time.Duration) *external.Tool {
		return &external.Tool{
			Command: command,
			Timeout: timeout,
			Pool:    pool,
			Breaker: resilience.NewBreaker(cfg.Concurrency.BreakerFailures, cfg.Concurrency.BreakerCooldown),
		}
	}
	tools := toolset{
		converter: newTool(cfg.Converter.Command, cfg.Converter.Timeout),
		analyzer:  newTool(cfg.Analyzer.Command, cfg.Analyzer.Timeout),
	}

	pipeline := &session.Pipeline{}
	if config.BoolValue(cfg.Converter.Enabled, false) {
		pipeline.Converter = external.NewExecConverter(tools.converter, cfg.Converter.OutputSuffix)
	}
	if config.BoolValue(cfg.Analyzer.Enabled, true) {
		analyzer, err := newAnalyzer(tools.analyzer, cfg.Analyzer)
		if err != nil {
			return nil, tools, err
		}
		pipeline.Analyzer = analyzer
	}
	return pipeline, tools, nil
}

func newAnalyzer(tool *external.Tool, cfg config.AnalyzerConfig) (*external.RuffAnalyzer, error) {
	def := diagmap.SeverityWarning
	if cfg.SeverityDefault != "" {
		parsed, err := diagmap.ParseSeverity(cfg.SeverityDefault)
		if err != nil {
			return nil, fmt.Errorf("%w: analyzer.severity_default: %w", ErrConfig, err)
		}
		def = parsed
	}
	severities := make(map[string]diagmap.Severity, len(cfg.Severity))
	for code, name := range cfg.Severity {
		sev, err := diagmap.ParseSeverity(name)
		if err != nil {
			return nil, fmt.Errorf("%w: analyzer.severity.%s: %w", ErrConfig, code, err)
		}
		severities[code] = sev
	}
	analyzer := external.NewRuffAnalyzer(tool, severities, def)
	analyzer.IgnoreCodes = cfg.IgnoreCodes
	return analyzer, nil
}

func newEngine(cfg config.CompletionConfig) *complete.Engine {
	matchers := complete.DefaultMatcherOptions()
	matchers.Fuzzy = config.BoolValue(cfg.Fuzzy, matchers.Fuzzy)
	if cfg.FuzzyThreshold > 0 {
		matchers.FuzzyThreshold = float32(cfg.FuzzyThreshold)
	}

	opts := complete.DefaultOptions()
	opts.AutoInsert = config.BoolValue(cfg.AutoInsert, opts.AutoInsert)
	if cfg.Window > 0 {
		opts.WindowSize = cfg.Window
	}
	return complete.NewEngine(complete.DefaultCatalog(matchers), opts)
}

func (c *components) close() {
	if c.cache != nil {
		c.cache.Close()
	}
}
