package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/gosage/internal/configloader"
	"github.com/yaklabco/gosage/internal/logging"
	"github.com/yaklabco/gosage/internal/lsp"
	"github.com/yaklabco/gosage/pkg/config"
	"github.com/yaklabco/gosage/pkg/sagedoc"
)

type serveFlags struct {
	stdio   bool
	noWatch bool
}

func newServeCommand(info BuildInfo) *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the language server on stdin and stdout",
		Long: `Run gosage as a language server. Editors start this command and talk
to it over stdin and stdout; diagnostics, completion, hover and document
symbols are provided for Sage files.

Logs go to stderr. Configuration files are watched and changes to the
analyzer and completion settings apply without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags, info)
		},
	}

	cmd.Flags().BoolVar(&flags.stdio, "stdio", false, "serve even when stdin is a terminal")
	cmd.Flags().BoolVar(&flags.noWatch, "no-watch", false, "do not reload configuration on change")

	return cmd
}

func runServe(cmd *cobra.Command, flags *serveFlags, info BuildInfo) error {
	stdin, stdout := cmd.InOrStdin(), cmd.OutOrStdout()
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) && !flags.stdio {
		return fmt.Errorf("%w: stdin is a terminal; serve expects an editor on the other end (use --stdio to override)", ErrUsage)
	}

	loaded, err := loadConfig(cmd, &config.Config{})
	if err != nil {
		return err
	}
	comps, err := buildComponents(loaded.Config)
	if err != nil {
		return err
	}
	defer comps.close()

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()
	ctx = logging.WithLogger(ctx, logging.Default())

	srv := lsp.NewServer(lsp.NewConn(stdin, stdout), lsp.Config{
		Store:    comps.store,
		Pipeline: comps.pipeline,
		Engine:   comps.engine,
		Docs:     sagedoc.Default(),
		Version:  info.Version,
	})

	var wg sync.WaitGroup
	if !flags.noWatch {
		paths := watchPaths(loaded)
		wg.Add(1)
		go func() {
			defer wg.Done()
			reload := func() { reloadServer(cmd, srv, loaded.Config) }
			if err := configloader.Watch(ctx, paths, reload); err != nil {
				logging.FromContext(ctx).Warn("configuration will not be reloaded", logging.FieldError, err)
			}
		}()
	}

	logging.FromContext(ctx).Info("language server started", logging.FieldVersion, info.Version)
	err = srv.Serve(ctx)
	cancel()
	wg.Wait()

	if err != nil && !errors.Is(err, lsp.ErrExitWithoutShutdown) {
		return fmt.Errorf("language server: %w", err)
	}
	return err
}

// watchPaths lists the configuration files to watch. Without a project
// file, the default project file name in the working directory is watched
// so that creating one takes effect.
func watchPaths(loaded *configloader.LoadResult) []string {
	if loaded.Paths == nil {
		return nil
	}
	paths := loaded.Paths.All()
	if loaded.Paths.Project == "" {
		if wd, err := os.Getwd(); err == nil {
			paths = append(paths, filepath.Join(wd, ".gosage.yml"))
		}
	}
	return paths
}

// reloadServer applies a changed configuration. Dialect, prelude and cache
// settings belong to open documents and need a restart.
func reloadServer(cmd *cobra.Command, srv *lsp.Server, previous *config.Config) {
	logger := logging.Default()

	loaded, err := loadConfig(cmd, &config.Config{})
	if err != nil {
		logger.Warn("keeping previous configuration", logging.FieldError, err)
		return
	}
	cfg := loaded.Config
	pipeline, _, err := buildPipeline(cfg)
	if err != nil {
		logger.Warn("keeping previous configuration", logging.FieldError, err)
		return
	}

	if cfg.Dialect != previous.Dialect ||
		config.BoolValue(cfg.Prelude, true) != config.BoolValue(previous.Prelude, true) ||
		cfg.Cache != previous.Cache {
		logger.Warn("dialect, prelude and cache changes apply after a restart")
	}

	srv.Reload(pipeline, newEngine(cfg.Completion))
	logger.Info("configuration reloaded", logging.FieldFiles, loaded.LoadedFrom)
}
