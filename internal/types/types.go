// Package types defines shared data structures for cssminify.
package types

import "runtime/debug"

// Version is the application version. Set at build time via -ldflags.
// Falls back to module version from go install, or "dev" for local builds.
var Version = "dev"

func init() {
	// If version wasn't set via ldflags, try to get it from build info
	// This works when installed via: go install ...@version
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}
	}
}

// SupportedExtensions is the list of file extensions accepted as input.
var SupportedExtensions = []string{".css"}

// WarningUnterminatedComment is reported when a file ends inside a comment.
const WarningUnterminatedComment = "unterminated-comment"

// Warning is a non-fatal observation about a stylesheet.
type Warning struct {
	Kind    string `json:"kind"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// MinifyResult is the outcome of minifying an in-memory stylesheet.
type MinifyResult struct {
	Output     string    `json:"output"`
	InputSize  int       `json:"input_size"`
	OutputSize int       `json:"output_size"`
	Saved      int       `json:"saved"`
	Warnings   []Warning `json:"warnings,omitempty"`
}

// FileResult is the outcome of minifying one file.
type FileResult struct {
	Input      string    `json:"input"`
	Output     string    `json:"output"`
	InputSize  int       `json:"input_size"`
	OutputSize int       `json:"output_size"`
	Saved      int       `json:"saved"`
	Compressed []string  `json:"compressed,omitempty"` // Precompressed siblings written
	Skipped    bool      `json:"skipped,omitempty"`    // Unchanged since the last incremental run
	Warnings   []Warning `json:"warnings,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// BatchSummary aggregates a batch run.
type BatchSummary struct {
	Files       int `json:"files"`
	Minified    int `json:"minified"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
	InputBytes  int `json:"input_bytes"`
	OutputBytes int `json:"output_bytes"`
}

// BatchResult is the complete output of a batch run.
type BatchResult struct {
	Summary BatchSummary `json:"summary"`
	Files   []FileResult `json:"files"`
}

// StatusResponse describes the running minifier.
type StatusResponse struct {
	Version             string   `json:"version"`
	SupportedExtensions []string `json:"supported_extensions"`
	CompressionMethods  []string `json:"compression_methods"`
}

// ValidateResult is the outcome of the filename admission check.
type ValidateResult struct {
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
}
