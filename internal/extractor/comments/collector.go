// Package comments binds documentation comments to the code tokens that
// follow them and strips comment tokens from the stream.
package comments

import (
	"strings"

	"github.com/mvp-joe/cppdoc/internal/extractor/lexer"
	"github.com/mvp-joe/cppdoc/internal/extractor/symbols"
)

// Options controls comment association.
type Options struct {
	// MaxBlankLines is the largest blank-line gap tolerated inside a doc
	// run and between the run and the declaration it documents.
	MaxBlankLines int

	// Trailing enables `///<` comments documenting the preceding declaration.
	Trailing bool

	// Groups enables `////` member group markers.
	Groups bool
}

// DefaultOptions matches the strict adjacency rule.
func DefaultOptions() Options {
	return Options{MaxBlankLines: 0, Trailing: true, Groups: true}
}

// Token is a code token with the documentation attached to it.
type Token struct {
	lexer.Token

	// Doc is the comment run that immediately precedes the token.
	Doc symbols.DocComment

	// TrailingDoc holds `///<` comments found after the token on its line.
	TrailingDoc symbols.DocComment

	// Group is set when a `////` marker precedes the token.
	Group    string
	HasGroup bool
}

type class int

const (
	ordinary class = iota
	leading
	trailing
	group
)

// Collect consumes toks and returns the code tokens annotated with their
// documentation. Lexical error tokens are reported to r and kept in the
// stream, undocumented, so the parser can end the broken statement there.
func Collect(toks []lexer.Token, opts Options, r *symbols.Report) []Token {
	c := &collector{opts: opts, report: r}
	for _, tok := range toks {
		c.push(tok)
	}
	return c.out
}

type collector struct {
	opts   Options
	report *symbols.Report
	out    []Token

	run    symbols.DocComment
	runEnd int
	inRun  bool

	group    string
	hasGroup bool
}

func (c *collector) push(tok lexer.Token) {
	switch tok.Kind {
	case lexer.Comment:
		c.comment(tok)
	case lexer.Error:
		c.report.Add(symbols.LexicalError, tok.Pos(), truncate(tok.Text), "", "%s", tok.Message)
		c.reset()
		c.out = append(c.out, Token{Token: tok})
	default:
		t := Token{Token: tok}
		if c.inRun && tok.Line-c.runEnd-1 <= c.opts.MaxBlankLines {
			t.Doc = c.run
		}
		if c.hasGroup {
			t.Group, t.HasGroup = c.group, true
			c.group, c.hasGroup = "", false
		}
		c.reset()
		c.out = append(c.out, t)
	}
}

func (c *collector) comment(tok lexer.Token) {
	cls, lines := classify(tok.Text, c.opts)
	switch cls {
	case trailing:
		if n := len(c.out); n > 0 && c.out[n-1].EndLine == tok.Line {
			c.out[n-1].TrailingDoc = append(c.out[n-1].TrailingDoc, lines...)
		}
	case group:
		c.reset()
		c.group, c.hasGroup = strings.TrimSpace(strings.Join(lines, " ")), true
	case leading:
		if c.inRun && tok.Line-c.runEnd-1 > c.opts.MaxBlankLines {
			c.reset()
		}
		c.run = append(c.run, lines...)
		c.runEnd = tok.EndLine
		c.inRun = true
	default:
		c.reset()
	}
}

func (c *collector) reset() {
	c.run = nil
	c.inRun = false
}

// classify decides what kind of comment text is and returns its body lines.
func classify(text string, opts Options) (class, []string) {
	switch {
	case strings.HasPrefix(text, "////"):
		rest := strings.TrimLeft(text, "/")
		if !opts.Groups || strings.TrimSpace(rest) == "" || strings.HasPrefix(text, "/////") {
			return ordinary, nil
		}
		return group, []string{stripSpace(text[4:])}
	case strings.HasPrefix(text, "///<"), strings.HasPrefix(text, "//!<"):
		if !opts.Trailing {
			return ordinary, nil
		}
		return trailing, []string{stripSpace(text[4:])}
	case strings.HasPrefix(text, "///"), strings.HasPrefix(text, "//!"):
		return leading, []string{stripSpace(text[3:])}
	case strings.HasPrefix(text, "/**<"), strings.HasPrefix(text, "/*!<"):
		if !opts.Trailing {
			return ordinary, nil
		}
		return trailing, blockLines(text[4:])
	case text == "/**/" || strings.HasPrefix(text, "/***"):
		return ordinary, nil
	case strings.HasPrefix(text, "/**"), strings.HasPrefix(text, "/*!"):
		return leading, blockLines(text[3:])
	}
	return ordinary, nil
}

// blockLines splits the body of a block comment, dropping the closing
// marker, continuation stars and blank edge lines.
func blockLines(body string) []string {
	body = strings.TrimSuffix(body, "*/")
	raw := strings.Split(body, "\n")
	lines := make([]string, 0, len(raw))
	for i, line := range raw {
		line = strings.TrimRight(line, " \t\r")
		if i > 0 {
			trimmed := strings.TrimLeft(line, " \t")
			if strings.HasPrefix(trimmed, "*") {
				line = trimmed[1:]
			}
		}
		lines = append(lines, stripSpace(line))
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// stripSpace removes one leading space and any trailing whitespace.
func stripSpace(s string) string {
	s = strings.TrimRight(s, " \t\r")
	return strings.TrimPrefix(s, " ")
}

func truncate(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
