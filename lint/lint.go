package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/jsxlint/internal"
	"github.com/gnolang/jsxlint/internal/parser"
	tt "github.com/gnolang/jsxlint/internal/types"
)

type LintEngine interface {
	Run(filePath string) ([]tt.Issue, error)
	RunSource(source []byte) ([]tt.Issue, error)
	IgnoreRule(rule string)
	IgnorePath(path string)
}

// Option configures New.
type Option func(*engineOptions)

type engineOptions struct {
	logger   *zap.Logger
	cacheDir string
}

// WithLogger sets the logger handed to the engine.
func WithLogger(logger *zap.Logger) Option {
	return func(o *engineOptions) { o.logger = logger }
}

// WithCacheDir enables the result cache stored in dir.
func WithCacheDir(dir string) Option {
	return func(o *engineOptions) { o.cacheDir = dir }
}

// New creates a lint engine configured from configurationPath. An empty
// path looks for a default configuration file in rootDir and falls back
// to the built-in rules when there is none.
func New(rootDir string, configurationPath string, opts ...Option) (*internal.Engine, error) {
	o := engineOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	if configurationPath == "" {
		configurationPath = FindConfig(rootDir)
	}
	config := DefaultConfig()
	if configurationPath != "" {
		var err error
		if config, err = LoadConfig(configurationPath); err != nil {
			return nil, err
		}
	}

	engineOpts := []internal.EngineOption{internal.WithLogger(o.logger)}
	if o.cacheDir != "" {
		var deps []string
		if configurationPath != "" {
			deps = append(deps, configurationPath)
		}
		cache, err := internal.NewCache(o.cacheDir, deps...)
		if err != nil {
			return nil, err
		}
		engineOpts = append(engineOpts, internal.WithCache(cache))
	}

	engine, err := internal.NewEngine(rootDir, config.Rules, engineOpts...)
	if err != nil {
		return nil, err
	}
	for _, path := range config.IgnorePaths {
		engine.IgnorePath(path)
	}
	return engine, nil
}

// Processor lints a single file.
type Processor func(LintEngine, string) ([]tt.Issue, error)

// ProcessOption configures ProcessFiles and ProcessPath.
type ProcessOption func(*processOptions)

type processOptions struct {
	jobs     int
	progress io.Writer
}

// WithJobs bounds the number of files linted at once. Zero or less uses
// the number of CPUs.
func WithJobs(n int) ProcessOption {
	return func(o *processOptions) { o.jobs = n }
}

// WithProgress renders a progress bar to w while linting directories.
func WithProgress(w io.Writer) ProcessOption {
	return func(o *processOptions) { o.progress = w }
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	sources [][]byte,
	processor func(LintEngine, []byte) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		issues, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

// ProcessFiles lints every supported file below paths. Files are linted
// in parallel; the issues are returned ordered by file path. A file that
// fails to lint does not stop the others: its error is logged and joined
// into the returned error, next to the issues of the remaining files.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	paths []string,
	processor Processor,
	opts ...ProcessOption,
) ([]tt.Issue, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := processOptions{jobs: runtime.NumCPU()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.jobs <= 0 {
		o.jobs = runtime.NumCPU()
	}

	files, err := collectFiles(engine, paths)
	if err != nil {
		logger.Error("Error processing path", zap.Error(err))
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if o.progress != nil && len(files) > 1 {
		bar = newProgressBar(o.progress, len(files))
	}

	results := make([][]tt.Issue, len(files))
	errs := make([]error, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.jobs)
	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			issues, err := processor(engine, file)
			if err != nil {
				logger.Error("Error processing file", zap.String("file", file), zap.Error(err))
				errs[i] = err
			} else {
				results[i] = issues
			}
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	waitErr := g.Wait()

	allIssues := make([]tt.Issue, 0)
	for _, issues := range results {
		allIssues = append(allIssues, issues...)
	}

	if waitErr != nil {
		return allIssues, waitErr
	}
	if err := ctx.Err(); err != nil {
		return allIssues, err
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return allIssues, errors.Join(errs...)
}

// ProcessPath lints a single file or directory.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	path string,
	processor Processor,
	opts ...ProcessOption,
) ([]tt.Issue, error) {
	return ProcessFiles(ctx, logger, engine, []string{path}, processor, opts...)
}

func ProcessFile(engine LintEngine, filePath string) ([]tt.Issue, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine LintEngine, source []byte) ([]tt.Issue, error) {
	return engine.RunSource(source)
}

// CollectFiles returns the supported source files below paths, sorted and
// without duplicates.
func CollectFiles(paths []string) ([]string, error) {
	return collectFiles(nil, paths)
}

func collectFiles(engine LintEngine, paths []string) ([]string, error) {
	ignored := func(string) bool { return false }
	if e, ok := engine.(interface{ IsIgnoredPath(string) bool }); ok {
		ignored = e.IsIgnoredPath
	}

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			// explicitly named files are linted whatever their extension
			add(filepath.Clean(path))
			continue
		}

		err = filepath.WalkDir(path, func(filePath string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrPermission) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				if filePath != path && (internal.SkipDir(d.Name()) || ignored(filePath)) {
					return filepath.SkipDir
				}
				return nil
			}
			if parser.Supported(filePath) && !ignored(filePath) {
				add(filePath)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking %s: %w", path, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("linting"),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
