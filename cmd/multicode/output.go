package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	multicode "github.com/redvampir/multicode-sub002"
	"github.com/redvampir/multicode-sub002/internal/pipeline"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	okColor      = color.New(color.FgGreen)
	headingColor = color.New(color.FgCyan, color.Bold)
	faintColor   = color.New(color.Faint)
)

func disableColor() {
	color.NoColor = true
}

func printDiagnostics(w io.Writer, diags []multicode.Diagnostic, locale multicode.Locale) {
	for _, d := range diags {
		label := warningColor.Sprint("warning")
		if d.IsError() {
			label = errorColor.Sprint("error")
		}
		fmt.Fprintf(w, "%s[%s] node %s: %s\n", label, d.Code, d.NodeID, d.Text(locale))
	}
}

func countErrors(diags []multicode.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.IsError() {
			n++
		}
	}
	return n
}

func printGenerated(w io.Writer, path string, res *pipeline.Result) {
	okColor.Fprintf(w, "✓ Generated %s", path)
	if res.Cached {
		faintColor.Fprint(w, " (cached)")
	}
	fmt.Fprintln(w)
}

func printValid(w io.Writer, path string, warnings int) {
	okColor.Fprintf(w, "✓ %s is valid", path)
	if warnings > 0 {
		warningColor.Fprintf(w, " (%d warning(s))", warnings)
	}
	fmt.Fprintln(w)
}

func printInvalid(w io.Writer, path string, messages []string) {
	errorColor.Fprintf(w, "✗ %s\n", path)
	for _, m := range messages {
		fmt.Fprintf(w, "  - %s\n", m)
	}
}

func printNodes(w io.Writer, nodes []pipeline.NodeInfo) {
	if len(nodes) == 0 {
		fmt.Fprintln(w, "No node types found")
		return
	}

	category := "\x00"
	for _, n := range nodes {
		if n.Category != category {
			category = n.Category
			name := category
			if name == "" {
				name = "Uncategorized"
			}
			headingColor.Fprintf(w, "\n%s\n", name)
		}
		fmt.Fprintf(w, "  %-20s %s", n.Type, n.Description)
		if n.Source != pipeline.SourceBuiltin {
			faintColor.Fprintf(w, " [%s]", n.Source)
		}
		fmt.Fprintln(w)
	}
}
