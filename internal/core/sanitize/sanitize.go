// Package sanitize bounds submitted code and flags suspicious constructs without altering them
package sanitize

// DefaultMaxChars is the hard cap on submitted code, in Unicode code points
const DefaultMaxChars = 10000

// Patterns are the substrings associated with string evaluation, process spawning
// and dynamic module loading; they are reported, never removed
var Patterns = []string{"eval(", "exec(", "system(", "__import__", "require("}

// Warner receives one call per suspicious pattern present in a submission
type Warner interface {
	Suspicious(pattern string)
}

// WarnFunc adapts a function to Warner
type WarnFunc func(pattern string)

// Suspicious calls f
func (f WarnFunc) Suspicious(pattern string) { f(pattern) }

// Sanitizer truncates and scans submissions
// safe for concurrent use
type Sanitizer struct {
	max  int
	warn Warner
	m    *matcher
}

// New returns a Sanitizer capping code at maxChars code points (<= 0 uses DefaultMaxChars)
// w may be nil
func New(maxChars int, w Warner) *Sanitizer {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Sanitizer{max: maxChars, warn: w, m: newMatcher(Patterns)}
}

// With returns a copy that reports to w, sharing the compiled patterns
func (s *Sanitizer) With(w Warner) *Sanitizer {
	c := *s
	c.warn = w
	return &c
}

// Sanitize scans code for Patterns, then returns at most max code points of it
// the result is always a prefix of code; excess is dropped silently
func (s *Sanitizer) Sanitize(code string) string {
	if s.warn != nil {
		for i, hit := range s.m.present(code) {
			if hit {
				s.warn.Suspicious(Patterns[i])
			}
		}
	}
	return Truncate(code, s.max)
}

// Truncate returns the first n code points of s
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n { // byte length bounds rune count
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
