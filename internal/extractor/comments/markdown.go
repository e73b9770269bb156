package comments

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/cppdoc/internal/extractor/symbols"
)

var (
	headerLine     = regexp.MustCompile(`^\s*([^:]*):\s*$`)
	definitionLine = regexp.MustCompile(`^\s*([^-]*)-(.*)$`)
)

// Dedent removes the indentation shared by all non-blank lines and turns
// whitespace-only lines into empty ones. Tabs count as four spaces.
func Dedent(lines []string) []string {
	out := make([]string, len(lines))
	minIndent := -1
	for i, line := range lines {
		line = strings.ReplaceAll(line, "\t", "    ")
		out[i] = line
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " "))
		if minIndent < 0 || indent < minIndent {
			minIndent = indent
		}
	}
	for i, line := range out {
		if strings.TrimSpace(line) == "" {
			out[i] = ""
		} else {
			out[i] = line[minIndent:]
		}
	}
	return out
}

// Markdown converts a doc comment written in the plain header style used by
// the fixture headers into Markdown: `Name:` lines become headings and
// `term - text` lines become definition list entries.
func Markdown(doc symbols.DocComment) string {
	var out []string
	for _, line := range Dedent(doc) {
		if m := headerLine.FindStringSubmatch(line); m != nil && strings.TrimSpace(m[1]) != "" {
			out = append(out, "#### "+strings.TrimSpace(m[1]))
			continue
		}
		if m := definitionLine.FindStringSubmatch(line); m != nil && strings.TrimSpace(m[1]) != "" {
			out = append(out, "", strings.TrimSpace(m[1]), ":  "+strings.TrimSpace(m[2]))
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
