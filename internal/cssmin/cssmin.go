// Package cssmin removes insignificant whitespace, line breaks and comments
// from CSS in a single forward pass.
package cssmin

// Minify returns the minified form of a stylesheet.
// It never fails: unmatched braces are passed through as-is and an
// unterminated comment swallows the rest of the input.
func Minify(input string) string {
	out, _ := Analyze(input)
	return out
}

// MinifyBytes is like Minify but operates on a byte slice.
func MinifyBytes(input []byte) []byte {
	m := newMinifier(len(input))
	for _, c := range input {
		m.step(c)
	}
	return m.out
}

// Report describes a single minification pass.
type Report struct {
	InputSize  int
	OutputSize int
	// UnterminatedComment is set when the input ended inside a comment.
	// CommentLine is the 1-based line on which that comment opened.
	UnterminatedComment bool
	CommentLine         int
}

// Analyze minifies input and reports on the pass.
func Analyze(input string) (string, Report) {
	m := newMinifier(len(input))
	for i := 0; i < len(input); i++ {
		m.step(input[i])
	}

	r := Report{
		InputSize:  len(input),
		OutputSize: len(m.out),
	}
	if m.state == stateComment {
		r.UnterminatedComment = true
		r.CommentLine = m.commentLine
	}
	return string(m.out), r
}

type scanState int

const (
	stateNormal scanState = iota
	stateComment
)

// The scan works on bytes. Every character the rules look at is ASCII and
// bytes of multi-byte UTF-8 sequences are always >= 0x80, so they are copied
// through untouched.
type minifier struct {
	out   []byte
	state scanState

	// prev is the raw input byte seen last, emitted or not.
	prev        byte
	prevEmitted bool

	line        int
	commentLine int
}

func newMinifier(size int) *minifier {
	// A leading space is insignificant, so start as if one was just read.
	return &minifier{
		out:  make([]byte, 0, size),
		prev: ' ',
		line: 1,
	}
}

// insignificantBefore reports whether a space following c carries no meaning.
func insignificantBefore(c byte) bool {
	switch c {
	case '{', '}', ':', ';', ' ', '\n', '!', '>':
		return true
	default:
		return false
	}
}

func (m *minifier) step(c byte) {
	// "/*" opens a comment; the '/' already went out and is taken back.
	if m.state == stateNormal && c == '*' && m.prev == '/' {
		m.state = stateComment
		m.commentLine = m.line
		if m.prevEmitted {
			m.out = m.out[:len(m.out)-1]
		}
	}

	emit := !(c == '\n' ||
		(c == ' ' && insignificantBefore(m.prev)) ||
		m.state == stateComment)

	// The closing '/' of "*/" is still part of the comment.
	if m.state == stateComment && c == '/' && m.prev == '*' {
		m.state = stateNormal
	}

	if emit {
		m.emit(c)
	}

	if c == '\n' {
		m.line++
	}
	m.prev = c
	m.prevEmitted = emit
}

func (m *minifier) emit(c byte) {
	if n := len(m.out); n > 0 {
		last := m.out[n-1]
		if (insignificantBefore(c) && last == ' ') || (c == '}' && last == ';') {
			m.out = m.out[:n-1]
		}
	}
	m.out = append(m.out, c)
}
