// Package cli provides the command-line interface for cssminify.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"

	"github.com/seanhalberthal/cssminify/internal/config"
	"github.com/seanhalberthal/cssminify/internal/cssfile"
	"github.com/seanhalberthal/cssminify/internal/minifier"
	"github.com/seanhalberthal/cssminify/internal/types"
)

// exitFunc is the function used to exit the program. Override in tests.
var exitFunc = os.Exit

// stdin is where batch reads paths from when none are given. Override in tests.
var stdin io.Reader = os.Stdin

// Run executes the CLI with the given settings and arguments.
func Run(cfg *config.Config, args []string) {
	if len(args) == 0 {
		printUsage()
		exitFunc(1)
		return
	}

	switch args[0] {
	case "minify":
		runMinify(cfg, args[1:])
	case "batch":
		runBatch(cfg, args[1:])
	case "check":
		runCheck(args[1:])
	case "status":
		runStatus(cfg, args[1:])
	case "help", "-h", "--help":
		printUsage()
	default:
		_, _ = fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		exitFunc(1)
		return
	}
}

func printUsage() {
	fmt.Println(`cssminify - single-pass CSS minifier

Usage:
  cssminify [-config file] <command>   Run in CLI mode (default)
  cssminify -mcp                       Run as MCP server

Commands:
  minify <input.css> [output.css]      Minify one file (to stdout without output)
  batch -o <dir> [paths...]            Minify many files into a folder
                                       (paths are read from stdin if omitted)
  check <path>...                      Check that paths name .css files
  status                               Show version and supported formats

Options:
  -o, --out <dir>                      Output folder for batch
  -r, --recursive                      Descend into subdirectories
  -j, --jobs <n>                       Files processed at once
  --compress <gzip,br>                 Also write precompressed copies
  --incremental                        Skip files unchanged since the last run
  --json                               Print machine-readable output`)
}

type options struct {
	JSON        bool
	Output      string
	Recursive   bool
	Incremental bool
	Compress    []string
	Jobs        int
	Args        []string
}

// valueFlags take an argument, either as the next word or after "=".
var valueFlags = map[string]bool{
	"-o": true, "--out": true,
	"-j": true, "--jobs": true,
	"--compress": true,
}

func parseFlags(args []string) (options, error) {
	var opts options
	for i := 0; i < len(args); i++ {
		arg := args[i]

		name, value, hasValue := strings.Cut(arg, "=")
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			opts.Args = append(opts.Args, arg)
			continue
		}

		if valueFlags[name] {
			if !hasValue {
				if i+1 >= len(args) {
					return opts, fmt.Errorf("%s requires a value", name)
				}
				i++
				value = args[i]
			}
			if err := opts.set(name, value); err != nil {
				return opts, err
			}
			continue
		}

		switch arg {
		case "--json":
			opts.JSON = true
		case "--recursive", "-r":
			opts.Recursive = true
		case "--incremental":
			opts.Incremental = true
		default:
			return opts, fmt.Errorf("unknown flag: %s", arg)
		}
	}
	return opts, nil
}

func (o *options) set(name, value string) error {
	switch name {
	case "-o", "--out":
		o.Output = value
	case "-j", "--jobs":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("%s needs a positive number, got %q", name, value)
		}
		o.Jobs = n
	case "--compress":
		o.Compress = nil
		for _, m := range strings.Split(value, ",") {
			if m = strings.TrimSpace(m); m != "" {
				o.Compress = append(o.Compress, m)
			}
		}
	}
	return nil
}

// apply returns a copy of cfg with the command-line options laid over it.
func (o *options) apply(cfg *config.Config) *config.Config {
	c := *cfg
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Recursive {
		c.Recursive = true
	}
	if o.Incremental {
		c.Incremental = true
	}
	if o.Compress != nil {
		c.Compress = o.Compress
	}
	if o.Jobs > 0 {
		c.Concurrency = o.Jobs
	}
	return &c
}

// readPaths collects whitespace-separated paths from every line of r.
func readPaths(r io.Reader) ([]string, error) {
	var paths []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		paths = append(paths, strings.Fields(sc.Text())...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("couldn't read paths from stdin: %w", err)
	}
	return paths, nil
}

func fail(format string, args ...any) {
	printStyledError(format, args...)
	exitFunc(1)
}

func runMinify(cfg *config.Config, args []string) {
	opts, err := parseFlags(args)
	if err != nil {
		fail("%v", err)
		return
	}

	switch n := len(opts.Args); {
	case n == 0:
		fail("minify requires an input file")
		return
	case n > 2:
		fail("Too many arguments. If you need to minify multiple files, use the batch command.")
		return
	}

	m, err := minifier.NewFromConfig(opts.apply(cfg))
	if err != nil {
		fail("%v", err)
		return
	}

	in := opts.Args[0]
	if len(opts.Args) == 1 {
		runMinifyToStdout(m, in, opts.JSON)
		return
	}

	out := opts.Args[1]
	result, err := m.File(in, out)
	if err != nil {
		if isAdmissionError(err) {
			fail("Both input and output file must be .css files (%v)", err)
			return
		}
		fail("%v", err)
		return
	}

	if opts.JSON {
		printJSON(result)
		return
	}
	fmt.Println(formatSuccess("Successfully created file " + formatPath(out)))
	fmt.Println("  " + formatSavings(result.InputSize, result.OutputSize))
	for _, name := range result.Compressed {
		fmt.Println("  " + formatMuted("+ "+name))
	}
	printWarnings(result.Input, result.Warnings)
}

func runMinifyToStdout(m *minifier.Minifier, in string, asJSON bool) {
	var sb strings.Builder
	result, err := m.FileToWriter(in, &sb)
	if err != nil {
		fail("%v", err)
		return
	}

	if asJSON {
		printJSON(types.MinifyResult{
			Output:     sb.String(),
			InputSize:  result.InputSize,
			OutputSize: result.OutputSize,
			Saved:      result.Saved,
			Warnings:   result.Warnings,
		})
		return
	}
	fmt.Print(sb.String())
	printWarnings(result.Input, result.Warnings)
}

func runBatch(cfg *config.Config, args []string) {
	opts, err := parseFlags(args)
	if err != nil {
		fail("%v", err)
		return
	}
	c := opts.apply(cfg)

	paths := opts.Args
	if len(paths) == 0 {
		if paths, err = readPaths(stdin); err != nil {
			fail("%v", err)
			return
		}
	}
	if len(paths) == 0 {
		fail("batch requires at least one input path")
		return
	}
	if c.Output == "" {
		fail("batch requires an output folder (-o <dir>)")
		return
	}

	m, err := minifier.NewFromConfig(c)
	if err != nil {
		fail("%v", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var sp *spinner.Spinner
	if !opts.JSON {
		sp = startSpinner("minifying")
	}
	result, err := m.Batch(ctx, minifier.BatchOptions{
		Inputs:      paths,
		OutputDir:   c.Output,
		Recursive:   c.Recursive,
		Incremental: c.Incremental,
		Progress: func(done, total int) {
			updateSpinner(sp, fmt.Sprintf("minifying %d/%d", done, total))
		},
	})
	stopSpinner(sp)

	if result == nil {
		fail("%v", err)
		return
	}

	if opts.JSON {
		printJSON(result)
	} else {
		printBatch(result)
	}

	if err != nil {
		fail("%v", err)
		return
	}
	if result.Summary.Failed > 0 {
		exitFunc(1)
		return
	}
}

func printBatch(result *types.BatchResult) {
	for _, f := range result.Files {
		switch {
		case f.Error != "":
			printStyledError("%s", f.Error)
		case f.Skipped:
			fmt.Println(formatMuted("- unchanged " + f.Output))
		default:
			fmt.Println(formatSuccess("Successfully created file " + formatPath(f.Output)) +
				"  " + formatSavings(f.InputSize, f.OutputSize))
		}
		printWarnings(f.Input, f.Warnings)
	}

	s := result.Summary
	fmt.Println(formatDivider(40))
	fmt.Printf("%s %d  %s %d  %s %d  %s %d\n",
		formatLabel("Files"), s.Files,
		formatLabel("Minified"), s.Minified,
		formatLabel("Unchanged"), s.Skipped,
		formatLabel("Failed"), s.Failed)
	if s.Minified > 0 {
		fmt.Printf("%s %s\n", formatLabel("Size"), formatSavings(s.InputBytes, s.OutputBytes))
	}
}

func printWarnings(path string, warnings []types.Warning) {
	for _, w := range warnings {
		printStyledWarning("%s:%d: %s", path, w.Line, w.Message)
	}
}

func runCheck(args []string) {
	opts, err := parseFlags(args)
	if err != nil {
		fail("%v", err)
		return
	}
	if len(opts.Args) == 0 {
		fail("check requires at least one path")
		return
	}

	results := make([]types.ValidateResult, len(opts.Args))
	invalid := 0
	for i, p := range opts.Args {
		results[i] = types.ValidateResult{Path: p, Valid: cssfile.Validate(p)}
		if !results[i].Valid {
			invalid++
		}
	}

	if opts.JSON {
		printJSON(results)
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Println(formatSuccess(formatPath(r.Path)))
			} else {
				printStyledError("%s: %v", r.Path, minifier.ErrNotStylesheet)
			}
		}
	}

	if invalid > 0 {
		exitFunc(1)
		return
	}
}

func runStatus(cfg *config.Config, args []string) {
	opts, err := parseFlags(args)
	if err != nil {
		fail("%v", err)
		return
	}

	status := minifier.New().Status()
	if opts.JSON {
		printJSON(status)
		return
	}

	fmt.Println(formatHeader("cssminify " + status.Version))
	fmt.Println(formatDivider(40))
	fmt.Printf("%s %s\n", formatLabel("Extensions"), formatValue(strings.Join(status.SupportedExtensions, ", ")))
	fmt.Printf("%s %s\n", formatLabel("Compression"), formatValue(strings.Join(status.CompressionMethods, ", ")))
	if len(cfg.Compress) > 0 {
		fmt.Printf("%s %s\n", formatLabel("Configured"), formatValue(strings.Join(cfg.Compress, ", ")))
	}
	fmt.Printf("%s %d\n", formatLabel("Concurrency"), cfg.Concurrency)
}

// startSpinner shows progress on stderr when it is a terminal.
func startSpinner(msg string) *spinner.Spinner {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + msg
	s.Start()
	return s
}

func updateSpinner(s *spinner.Spinner, msg string) {
	if s == nil {
		return
	}
	s.Lock()
	s.Suffix = " " + msg
	s.Unlock()
}

func stopSpinner(s *spinner.Spinner) {
	if s != nil {
		s.Stop()
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Fatal(err)
	}
}

// isAdmissionError reports whether err came from the .css admission check.
func isAdmissionError(err error) bool {
	return errors.Is(err, minifier.ErrNotStylesheet)
}
