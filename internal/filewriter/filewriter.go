// Package filewriter writes minified stylesheets, optionally next to
// precompressed copies for servers that serve .gz and .br files directly.
package filewriter

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/andybalholm/brotli"
)

const (
	gzipLevel   = gzip.BestCompression
	brotliLevel = brotli.BestCompression
)

// Compression method names accepted by New.
const (
	MethodGzip   = "gzip"
	MethodBrotli = "br"
)

// Methods lists every supported compression method.
var Methods = []string{MethodGzip, MethodBrotli}

type compressor struct {
	ext    string
	method string
	new    func(w io.Writer) io.WriteCloser
}

var gzipCompressor = &compressor{
	ext:    "gz",
	method: MethodGzip,
	new: func(w io.Writer) io.WriteCloser {
		z, err := gzip.NewWriterLevel(w, gzipLevel)
		if err != nil {
			panic(err.Error()) // constant level, can't happen
		}
		return z
	},
}

var brotliCompressor = &compressor{
	ext:    "br",
	method: MethodBrotli,
	new: func(w io.Writer) io.WriteCloser {
		return brotli.NewWriterLevel(w, brotliLevel)
	},
}

// Writer writes files and their compressed siblings.
type Writer struct {
	compressors []*compressor
}

// New returns a Writer producing a compressed sibling for every method.
func New(methods []string) (*Writer, error) {
	compressors := make([]*compressor, 0, len(methods))
	seen := make(map[string]bool)
	for _, m := range methods {
		if seen[m] {
			continue
		}
		seen[m] = true
		switch m {
		case MethodGzip:
			compressors = append(compressors, gzipCompressor)
		case MethodBrotli:
			compressors = append(compressors, brotliCompressor)
		default:
			return nil, fmt.Errorf("unknown compression method: %q", m)
		}
	}
	return &Writer{compressors: compressors}, nil
}

// Methods returns the configured compression methods in order.
func (f *Writer) Methods() []string {
	m := make([]string, len(f.compressors))
	for i, c := range f.compressors {
		m[i] = c.method
	}
	return m
}

// Siblings returns the compressed file names written next to filename.
func (f *Writer) Siblings(filename string) []string {
	names := make([]string, len(f.compressors))
	for i, c := range f.compressors {
		names[i] = filename + "." + c.ext
	}
	return names
}

// WriteFile writes data to filename, creating parent directories, and
// writes each compressed sibling concurrently. The first error is returned.
func (f *Writer) WriteFile(filename string, data []byte) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	nwriters := 1 + len(f.compressors)
	done := make(chan error, nwriters)
	go func() {
		done <- os.WriteFile(filename, data, 0644)
	}()
	for _, c := range f.compressors {
		go func() {
			done <- writeCompressed(c, filename+"."+c.ext, data)
		}()
	}
	var firstErr error
	for i := 0; i < nwriters; i++ {
		if err := <-done; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func writeCompressed(c *compressor, outfile string, data []byte) (err error) {
	out, err := os.OpenFile(outfile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(outfile)
		}
	}()
	z := c.new(out)
	if _, err = z.Write(data); err != nil {
		_ = z.Close()
		return err
	}
	return z.Close()
}
