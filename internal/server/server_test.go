package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/seanhalberthal/cssminify/internal/minifier"
	"github.com/seanhalberthal/cssminify/internal/types"
)

const (
	sampleCSS      = ".hello > h1 {\n    color: green;\n}\n"
	sampleMinified = ".hello>h1{color:green}"
)

// getStructuredContent returns the StructuredContent from a result.
func getStructuredContent[T any](t *testing.T, result *mcp.CallToolResultFor[T]) T {
	t.Helper()
	return result.StructuredContent
}

// setupTestMinifier initialises the package-level minify variable for testing.
func setupTestMinifier(t *testing.T) {
	t.Helper()
	minify = minifier.New(minifier.WithConcurrency(2))
}

// createStylesheets creates a temporary directory with the given files.
func createStylesheets(t *testing.T, files map[string]string) string {
	t.Helper()
	tmpDir := t.TempDir()

	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	return tmpDir
}

func TestHandleStatus(t *testing.T) {
	setupTestMinifier(t)

	params := &mcp.CallToolParamsFor[statusInput]{
		Arguments: statusInput{},
	}

	result, err := handleStatus(context.Background(), nil, params)
	if err != nil {
		t.Fatalf("handleStatus() error = %v", err)
	}
	if result.IsError {
		t.Error("handleStatus() returned IsError = true")
	}

	status := getStructuredContent(t, result)
	if status.Version != types.Version {
		t.Errorf("Version = %q, want %q", status.Version, types.Version)
	}
	if len(status.SupportedExtensions) == 0 {
		t.Error("SupportedExtensions is empty")
	}
	if len(status.CompressionMethods) == 0 {
		t.Error("CompressionMethods is empty")
	}
}

func TestHandleMinify(t *testing.T) {
	setupTestMinifier(t)

	tests := []struct {
		name         string
		css          string
		want         string
		wantWarnings int
	}{
		{
			name: "rule",
			css:  sampleCSS,
			want: sampleMinified,
		},
		{
			name: "empty",
			css:  "",
			want: "",
		},
		{
			name:         "unterminated comment",
			css:          "a{b:c}/* x",
			want:         "a{b:c}",
			wantWarnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := &mcp.CallToolParamsFor[minifyInput]{
				Arguments: minifyInput{CSS: tt.css},
			}

			result, err := handleMinify(context.Background(), nil, params)
			if err != nil {
				t.Fatalf("handleMinify() error = %v", err)
			}

			out := getStructuredContent(t, result)
			if out.Output != tt.want {
				t.Errorf("Output = %q, want %q", out.Output, tt.want)
			}
			if out.InputSize != len(tt.css) || out.OutputSize != len(tt.want) {
				t.Errorf("sizes = %d/%d", out.InputSize, out.OutputSize)
			}
			if len(out.Warnings) != tt.wantWarnings {
				t.Errorf("Warnings = %v, want %d", out.Warnings, tt.wantWarnings)
			}
		})
	}
}

func TestHandleFile(t *testing.T) {
	setupTestMinifier(t)

	dir := createStylesheets(t, map[string]string{"in.css": sampleCSS})
	out := filepath.Join(dir, "out", "in.min.css")

	params := &mcp.CallToolParamsFor[fileInput]{
		Arguments: fileInput{Input: filepath.Join(dir, "in.css"), Output: out},
	}

	result, err := handleFile(context.Background(), nil, params)
	if err != nil {
		t.Fatalf("handleFile() error = %v", err)
	}
	if result.IsError {
		t.Error("handleFile() returned IsError = true")
	}

	fr := getStructuredContent(t, result)
	if fr.Output != out {
		t.Errorf("Output = %q, want %q", fr.Output, out)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != sampleMinified {
		t.Errorf("written = %q, want %q", data, sampleMinified)
	}
}

func TestHandleFile_Errors(t *testing.T) {
	setupTestMinifier(t)

	dir := createStylesheets(t, map[string]string{"in.css": sampleCSS})

	tests := []struct {
		name    string
		input   fileInput
		wantMsg string
	}{
		{
			name:    "empty input",
			input:   fileInput{Output: "out.css"},
			wantMsg: "input is required",
		},
		{
			name:    "empty output",
			input:   fileInput{Input: "in.css"},
			wantMsg: "output is required",
		},
		{
			name:  "not a stylesheet",
			input: fileInput{Input: filepath.Join(dir, "in.css"), Output: filepath.Join(dir, "out.txt")},
		},
		{
			name:  "missing input",
			input: fileInput{Input: filepath.Join(dir, "missing.css"), Output: filepath.Join(dir, "out.css")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := &mcp.CallToolParamsFor[fileInput]{Arguments: tt.input}

			result, err := handleFile(context.Background(), nil, params)
			if err == nil {
				t.Fatal("handleFile() expected error")
			}
			if result == nil || !result.IsError {
				t.Error("handleFile() expected IsError = true")
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("Error message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestHandleBatch(t *testing.T) {
	setupTestMinifier(t)

	dir := createStylesheets(t, map[string]string{
		"src/a.css":        sampleCSS,
		"src/nested/b.css": "b {\n  margin: 0;\n}\n",
	})
	outDir := filepath.Join(dir, "dist")

	params := &mcp.CallToolParamsFor[batchInput]{
		Arguments: batchInput{
			Paths:     []string{filepath.Join(dir, "src")},
			OutputDir: outDir,
		},
	}

	// Non-recursive batch
	result, err := handleBatch(context.Background(), nil, params)
	if err != nil {
		t.Fatalf("handleBatch() error = %v", err)
	}
	if got := getStructuredContent(t, result).Summary.Minified; got != 1 {
		t.Errorf("Non-recursive: Minified = %d, want 1", got)
	}

	// Recursive batch
	params.Arguments.Recursive = true
	result, err = handleBatch(context.Background(), nil, params)
	if err != nil {
		t.Fatalf("handleBatch() recursive error = %v", err)
	}
	if result.IsError {
		t.Error("handleBatch() returned IsError = true")
	}
	if got := getStructuredContent(t, result).Summary.Minified; got != 2 {
		t.Errorf("Recursive: Minified = %d, want 2", got)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "b.css"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "b{margin:0}" {
		t.Errorf("b.css = %q", data)
	}
}

func TestHandleBatch_PartialFailure(t *testing.T) {
	setupTestMinifier(t)

	dir := createStylesheets(t, map[string]string{"a.css": sampleCSS, "b.txt": "x"})

	params := &mcp.CallToolParamsFor[batchInput]{
		Arguments: batchInput{
			Paths:     []string{filepath.Join(dir, "b.txt"), filepath.Join(dir, "a.css")},
			OutputDir: filepath.Join(dir, "dist"),
		},
	}

	result, err := handleBatch(context.Background(), nil, params)
	if err != nil {
		t.Fatalf("handleBatch() error = %v", err)
	}
	if !result.IsError {
		t.Error("handleBatch() expected IsError = true when a file fails")
	}

	br := getStructuredContent(t, result)
	if br.Summary.Minified != 1 || br.Summary.Failed != 1 {
		t.Errorf("Summary = %+v", br.Summary)
	}
	if br.Files[0].Error == "" {
		t.Error("Files[0].Error is empty")
	}
}

func TestHandleBatch_MissingArguments(t *testing.T) {
	setupTestMinifier(t)

	tests := []struct {
		name    string
		input   batchInput
		wantMsg string
	}{
		{
			name:    "no paths",
			input:   batchInput{OutputDir: "dist"},
			wantMsg: "paths is required",
		},
		{
			name:    "no output dir",
			input:   batchInput{Paths: []string{"a.css"}},
			wantMsg: "output_dir is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := &mcp.CallToolParamsFor[batchInput]{Arguments: tt.input}

			result, err := handleBatch(context.Background(), nil, params)
			if err == nil {
				t.Fatal("handleBatch() expected error")
			}
			if result == nil || !result.IsError {
				t.Error("handleBatch() expected IsError = true")
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Error message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestHandleValidate(t *testing.T) {
	setupTestMinifier(t)

	tests := []struct {
		path string
		want bool
	}{
		{path: "/home/test/test.css", want: true},
		{path: ".css", want: true},
		{path: "style.css.bak", want: false},
		{path: "a.cssx", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			params := &mcp.CallToolParamsFor[validateInput]{
				Arguments: validateInput{Path: tt.path},
			}

			result, err := handleValidate(context.Background(), nil, params)
			if err != nil {
				t.Fatalf("handleValidate() error = %v", err)
			}
			if got := getStructuredContent(t, result); got.Valid != tt.want || got.Path != tt.path {
				t.Errorf("handleValidate(%q) = %+v, want valid %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestHandleValidate_EmptyPath(t *testing.T) {
	setupTestMinifier(t)

	result, err := handleValidate(context.Background(), nil, &mcp.CallToolParamsFor[validateInput]{})
	if err == nil {
		t.Fatal("handleValidate() expected error for empty path")
	}
	if result == nil || !result.IsError {
		t.Error("handleValidate() expected IsError = true for empty path")
	}
	if err.Error() != "path is required" {
		t.Errorf("Error message = %q, want %q", err.Error(), "path is required")
	}
}
