package symbols

import "strings"

// DocComment is the ordered list of documentation lines bound to a declaration.
type DocComment []string

// Empty reports whether no documentation was collected.
func (d DocComment) Empty() bool {
	return len(d) == 0
}

// Text joins the lines with newlines.
func (d DocComment) Text() string {
	return strings.Join(d, "\n")
}

// Summary returns the first non-blank line.
func (d DocComment) Summary() string {
	for _, line := range d {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return ""
}
