package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/EMcConnell20/tri-ton/internal/compiler"
	"github.com/EMcConnell20/tri-ton/internal/syntax"
)

// TabstopWidth is the column width a tab advances to when source lines are
// echoed under a diagnostic.
const TabstopWidth = 4

// Diagnostic is one source error in the form the CLI prints and encodes.
type Diagnostic struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// diagnosticsOf extracts the source diagnostics carried by err. The second
// result is false when err is not a source error at all.
func diagnosticsOf(file string, err error) ([]Diagnostic, bool) {
	if list, ok := compiler.AsErrorList(err); ok {
		out := make([]Diagnostic, len(list))
		for i, e := range list {
			out[i] = Diagnostic{File: file, Line: e.Pos.Line, Col: e.Pos.Col, Code: e.Code, Message: e.Message}
		}
		return out, true
	}
	var se *syntax.Error
	if errors.As(err, &se) {
		return []Diagnostic{{File: file, Line: se.Pos.Line, Col: se.Pos.Col, Code: se.Code, Message: se.Message}}, true
	}
	return nil, false
}

// renderDiagnostics writes each diagnostic followed by the offending source
// line and a caret under the reported column.
//
//	prog.tri:3:10: error[E102]: unknown variant Foo
//	  |     tri!(x => Foo[a] <> 0);
//	  |               ^
func renderDiagnostics(w io.Writer, src string, diags []Diagnostic) {
	lines := strings.Split(src, "\n")
	for _, d := range diags {
		fmt.Fprintf(w, "%s:%d:%d: error[%s]: %s\n", d.File, d.Line, d.Col, d.Code, d.Message)
		if d.Line < 1 || d.Line > len(lines) {
			continue
		}
		line := strings.TrimRight(lines[d.Line-1], "\r")
		fmt.Fprintf(w, "  | %s\n", expandTabs(line))

		prefix := line
		if runes := []rune(line); d.Col-1 <= len(runes) && d.Col >= 1 {
			prefix = string(runes[:d.Col-1])
		}
		fmt.Fprintf(w, "  | %s^\n", strings.Repeat(" ", stringWidth(prefix)))
	}
}

// stringWidth returns the display width of s on a terminal, advancing tabs
// to the next tabstop.
func stringWidth(s string) int {
	var column int
	for {
		chunk, rest, found := strings.Cut(s, "\t")
		column += uniseg.StringWidth(chunk)
		if !found {
			return column
		}
		column += TabstopWidth - column%TabstopWidth
		s = rest
	}
}

// expandTabs replaces each tab with the spaces that reach its tabstop, so
// the echoed line and the caret agree on columns.
func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var buf strings.Builder
	var column int
	for {
		chunk, rest, found := strings.Cut(s, "\t")
		buf.WriteString(chunk)
		column += uniseg.StringWidth(chunk)
		if !found {
			return buf.String()
		}
		pad := TabstopWidth - column%TabstopWidth
		buf.WriteString(strings.Repeat(" ", pad))
		column += pad
		s = rest
	}
}
