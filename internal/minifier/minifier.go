// Package minifier runs the read, minify and write pipeline for single
// stylesheets and for batches of them.
package minifier

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/seanhalberthal/cssminify/internal/cache"
	"github.com/seanhalberthal/cssminify/internal/config"
	"github.com/seanhalberthal/cssminify/internal/cssfile"
	"github.com/seanhalberthal/cssminify/internal/cssmin"
	"github.com/seanhalberthal/cssminify/internal/filewriter"
	"github.com/seanhalberthal/cssminify/internal/types"
)

// Minifier processes stylesheets.
type Minifier struct {
	writer      *filewriter.Writer
	cache       *cache.Cache
	concurrency int
	warnings    bool
}

// Option configures a Minifier.
type Option func(*Minifier)

// WithWriter sets the writer used for output files.
func WithWriter(w *filewriter.Writer) Option {
	return func(m *Minifier) {
		m.writer = w
	}
}

// WithCache sets the cache used by incremental batches.
func WithCache(c *cache.Cache) Option {
	return func(m *Minifier) {
		m.cache = c
	}
}

// WithConcurrency limits the number of files processed at once.
// Values below 1 select runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(m *Minifier) {
		m.concurrency = n
	}
}

// WithWarnings enables or disables lint warnings in results.
func WithWarnings(enabled bool) Option {
	return func(m *Minifier) {
		m.warnings = enabled
	}
}

// New creates a new minifier. Without options it writes plain files only,
// keeps its cache in memory and reports warnings.
func New(opts ...Option) *Minifier {
	m := &Minifier{warnings: true}
	for _, opt := range opts {
		opt(m)
	}
	if m.writer == nil {
		m.writer, _ = filewriter.New(nil)
	}
	if m.cache == nil {
		m.cache, _ = cache.Open("")
	}
	if m.concurrency < 1 {
		m.concurrency = runtime.NumCPU()
	}
	return m
}

// NewFromConfig creates a minifier from loaded settings.
func NewFromConfig(cfg *config.Config) (*Minifier, error) {
	w, err := filewriter.New(cfg.Compress)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithWriter(w),
		WithConcurrency(cfg.Concurrency),
		WithWarnings(cfg.WarnUnterminated),
	}

	if cfg.Incremental {
		file := cfg.Cache
		if file == "" {
			if file, err = cache.DefaultFile(); err != nil {
				return nil, err
			}
		}
		c, err := cache.Open(file)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithCache(c))
	}

	return New(opts...), nil
}

// Status describes the minifier's capabilities.
func (m *Minifier) Status() types.StatusResponse {
	return types.StatusResponse{
		Version:             types.Version,
		SupportedExtensions: types.SupportedExtensions,
		CompressionMethods:  filewriter.Methods,
	}
}

// Source minifies an in-memory stylesheet.
func (m *Minifier) Source(text string) types.MinifyResult {
	out, report := cssmin.Analyze(text)
	return types.MinifyResult{
		Output:     out,
		InputSize:  report.InputSize,
		OutputSize: report.OutputSize,
		Saved:      report.InputSize - report.OutputSize,
		Warnings:   m.warningsFor(report),
	}
}

func (m *Minifier) warningsFor(r cssmin.Report) []types.Warning {
	if !m.warnings || !r.UnterminatedComment {
		return nil
	}
	return []types.Warning{{
		Kind:    types.WarningUnterminatedComment,
		Line:    r.CommentLine,
		Message: fmt.Sprintf("comment opened on line %d is never closed; the rest of the file was dropped", r.CommentLine),
	}}
}

// File minifies the stylesheet at in and writes it to out.
// Both paths must pass the .css admission check.
func (m *Minifier) File(in, out string) (*types.FileResult, error) {
	for _, p := range []string{in, out} {
		if !cssfile.Validate(p) {
			return nil, &FileError{Op: OpValidate, Path: p, Err: ErrNotStylesheet}
		}
	}
	return m.process(in, out, false)
}

// FileToWriter minifies the stylesheet at in and writes the result to w.
func (m *Minifier) FileToWriter(in string, w io.Writer) (*types.FileResult, error) {
	if !cssfile.Validate(in) {
		return nil, &FileError{Op: OpValidate, Path: in, Err: ErrNotStylesheet}
	}

	data, err := readSource(in)
	if err != nil {
		return nil, err
	}

	out, report := cssmin.Analyze(string(data))
	if _, err := io.WriteString(w, out); err != nil {
		return nil, &FileError{Op: OpWrite, Path: "-", Err: err}
	}

	return &types.FileResult{
		Input:      in,
		Output:     "-",
		InputSize:  report.InputSize,
		OutputSize: report.OutputSize,
		Saved:      report.InputSize - report.OutputSize,
		Warnings:   m.warningsFor(report),
	}, nil
}

// readSource reads a whole stylesheet and checks that it is text.
func readSource(path string) ([]byte, error) {
	// #nosec G304 -- reading user-supplied stylesheets is the point
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Op: OpOpen, Path: path, Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &FileError{Op: OpRead, Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &FileError{Op: OpRead, Path: path, Err: errInvalidText}
	}
	return data, nil
}

func cacheKey(in, out string) string {
	return in + "\x00" + out
}

func (m *Minifier) process(in, out string, incremental bool) (*types.FileResult, error) {
	res := &types.FileResult{Input: in, Output: out}

	data, err := readSource(in)
	if err != nil {
		return res, err
	}
	res.InputSize = len(data)

	key := cacheKey(in, out)
	if incremental && m.cache.Seen(key, data) {
		if _, err := os.Stat(out); err == nil {
			res.Skipped = true
			return res, nil
		}
	}

	minified, report := cssmin.Analyze(string(data))
	res.OutputSize = report.OutputSize
	res.Saved = report.InputSize - report.OutputSize
	res.Warnings = m.warningsFor(report)

	if err := m.writer.WriteFile(out, []byte(minified)); err != nil {
		if incremental {
			m.cache.Forget(key)
		}
		return res, outputError(out, err)
	}
	res.Compressed = m.writer.Siblings(out)
	if len(res.Compressed) == 0 {
		res.Compressed = nil
	}
	return res, nil
}

// BatchOptions configures a batch run.
type BatchOptions struct {
	// Inputs are stylesheet paths or directories to search.
	Inputs []string
	// OutputDir receives one minified file per input, named after it.
	OutputDir   string
	Recursive   bool
	Incremental bool
	// Progress, if set, is called after each file with the number of
	// files finished so far. Calls are serialised.
	Progress func(done, total int)
}

type job struct {
	in, out string
	err     error
}

// plan expands directory inputs and assigns output paths.
func plan(opts BatchOptions) ([]job, error) {
	var jobs []job
	owners := make(map[string]string)

	add := func(in string) {
		out := cssfile.OutputPath(opts.OutputDir, in)
		j := job{in: in, out: out}
		switch {
		case !cssfile.Validate(in):
			j.err = &FileError{Op: OpValidate, Path: in, Err: ErrNotStylesheet}
		case owners[out] != "":
			j.err = &FileError{Op: OpCreate, Path: out, Err: fmt.Errorf("%w (%s)", errDuplicateOut, owners[out])}
		default:
			owners[out] = in
		}
		jobs = append(jobs, j)
	}

	for _, in := range opts.Inputs {
		info, err := os.Stat(in)
		if err != nil || !info.IsDir() {
			add(in)
			continue
		}
		sheets, err := cssfile.FindStylesheets(in, opts.Recursive)
		if err != nil {
			return nil, err
		}
		for _, s := range sheets {
			add(s)
		}
	}
	return jobs, nil
}

// Batch minifies every input into opts.OutputDir. A failing file is
// recorded in its result and does not stop the others. Results keep the
// order of the inputs. Cancelling ctx stops files that have not started.
func (m *Minifier) Batch(ctx context.Context, opts BatchOptions) (*types.BatchResult, error) {
	if opts.OutputDir == "" {
		return nil, errNoOutputDir
	}

	jobs, err := plan(opts)
	if err != nil {
		return nil, err
	}

	results := make([]types.FileResult, len(jobs))
	var (
		mu   sync.Mutex
		done int
	)
	finish := func() {
		if opts.Progress == nil {
			return
		}
		mu.Lock()
		done++
		opts.Progress(done, len(jobs))
		mu.Unlock()
	}

	g := &errgroup.Group{}
	g.SetLimit(m.concurrency)

	for i, j := range jobs {
		if j.err != nil {
			results[i] = types.FileResult{Input: j.in, Output: j.out, Error: j.err.Error()}
			finish()
			continue
		}
		if err := ctx.Err(); err != nil {
			results[i] = types.FileResult{Input: j.in, Output: j.out, Error: err.Error()}
			continue
		}

		g.Go(func() error {
			res, err := m.process(j.in, j.out, opts.Incremental)
			if err != nil {
				res.Error = err.Error()
			}
			results[i] = *res
			finish()
			return nil // Errors tracked per file
		})
	}

	_ = g.Wait()

	result := &types.BatchResult{
		Summary: summarise(results),
		Files:   results,
	}

	if opts.Incremental {
		if err := m.cache.Save(); err != nil {
			return result, fmt.Errorf("failed to save cache: %w", err)
		}
	}

	return result, ctx.Err()
}

// summarise counts batch outcomes.
func summarise(results []types.FileResult) types.BatchSummary {
	s := types.BatchSummary{Files: len(results)}
	for _, r := range results {
		switch {
		case r.Error != "":
			s.Failed++
		case r.Skipped:
			s.Skipped++
		default:
			s.Minified++
			s.InputBytes += r.InputSize
			s.OutputBytes += r.OutputSize
		}
	}
	return s
}
