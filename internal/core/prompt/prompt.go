// Package prompt renders the model prompt for a piece of submitted code
//
// Rendering is pure: the same code, language and mode always yield the same bytes.
// The code is embedded verbatim inside a fence tagged with the language; fence
// delimiters inside the code are not escaped, so code containing ``` can blur
// the block boundary.
package prompt

import "strings"

// Mode selects which analysis the prompt asks for
type Mode string

const (
	// Explain asks for a beginner oriented walkthrough
	Explain Mode = "explain"
	// CP asks for a competitive programming analysis
	CP Mode = "cp"
)

// Modes lists every accepted mode in a stable order
var Modes = []Mode{Explain, CP}

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	_, ok := renderers[m]
	return ok
}

// ModeOr returns m when it is known, otherwise def
func ModeOr(m string, def Mode) Mode {
	if Mode(m).Valid() {
		return Mode(m)
	}
	return def
}

type renderer func(code, language string) string

var renderers = map[Mode]renderer{
	Explain: renderExplain,
	CP:      renderCP,
}

// Build renders the prompt; an unknown mode renders as Explain
func Build(code, language string, mode Mode) string {
	r, ok := renderers[mode]
	if !ok {
		r = renderers[Explain]
	}
	return r(code, language)
}

// Headers are the section titles each mode's prompt requests, in order
func Headers(mode Mode) []string {
	switch mode {
	case CP:
		return append([]string(nil), cpHeaders...)
	default:
		return append([]string(nil), explainHeaders...)
	}
}

var explainHeaders = []string{
	"Overview",
	"Step-by-Step Breakdown",
	"Key Concepts",
	"Time Complexity",
	"Space Complexity",
	"Optimizations",
	"Example Input/Output",
	"Interview Tips",
}

var explainAsks = []string{
	"What does this code do? (2-3 sentences)",
	"Explain each section of code line by line",
	"What programming concepts are used? (loops, recursion, data structures, etc.)",
	"Big O notation with explanation",
	"Memory usage analysis",
	"How can this code be improved?",
	"Provide sample test cases",
	"What would an interviewer ask about this code?",
}

var cpHeaders = []string{
	"Problem Type",
	"Algorithm Analysis",
	"Time Complexity",
	"Space Complexity",
	"Optimization Opportunities",
	"Similar Problems",
	"Interview Tips",
	"Edge Cases",
}

var cpAsks = []string{
	"Identify if it's a LeetCode-style problem (Array, String, DP, Graph, etc.)",
	"What algorithm/approach is used?",
	"Big O analysis with explanation",
	"Memory usage analysis",
	"How can this be improved?",
	"Suggest 3-5 similar LeetCode/competitive programming problems",
	"What interviewers look for in this type of problem",
	"What edge cases should be considered?",
}

func renderExplain(code, language string) string {
	var b strings.Builder
	b.WriteString("Explain this ")
	b.WriteString(language)
	b.WriteString(" code for an ECE 2nd year student interested in competitive programming:\n\n")
	writeFence(&b, code, language)
	b.WriteString("\n\nProvide a comprehensive explanation:\n")
	writeSections(&b, explainHeaders, explainAsks)
	b.WriteString("\nUse simple language, analogies, and be beginner-friendly. Format with markdown for readability.")
	return b.String()
}

func renderCP(code, language string) string {
	var b strings.Builder
	b.WriteString("Analyze this ")
	b.WriteString(language)
	b.WriteString(" code from a competitive programming perspective for an ECE 2nd year student:\n\n")
	writeFence(&b, code, language)
	b.WriteString("\n\nProvide:\n")
	writeSections(&b, cpHeaders, cpAsks)
	b.WriteString("\nMake it beginner-friendly and practical for competitive programming preparation.")
	return b.String()
}

func writeFence(b *strings.Builder, code, language string) {
	b.WriteString("Code:\n```")
	b.WriteString(language)
	b.WriteByte('\n')
	b.WriteString(code)
	b.WriteString("\n```")
}

func writeSections(b *strings.Builder, headers, asks []string) {
	for i, h := range headers {
		b.WriteString(itoa(i + 1))
		b.WriteString(". **")
		b.WriteString(h)
		b.WriteString("**: ")
		b.WriteString(asks[i])
		b.WriteByte('\n')
	}
}

// itoa covers the single digit section numbers
func itoa(n int) string { return string(rune('0' + n)) }
