// Package testutil holds the test-fixture helpers shared across kestrel's
// test files: dedenting multi-line HTML/CSS fixtures, diffing trees, and
// snapshotting the layout/tiling stages. Ported from the teacher's
// internal/test_utils/test_utils.go, trimmed to the JS/JSX-free output kinds
// this engine actually produces.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/google/go-cmp/cmp"
	"github.com/lithammer/dedent"
)

func RemoveNewlines(input string) string {
	return strings.ReplaceAll(input, "\n", "")
}

// Dedent strips leading indentation from a triple-quoted-style Go string
// fixture and collapses runs of blank lines, so tests can write readable
// multi-line HTML/CSS literals.
func Dedent(input string) string {
	return dedent.Dedent(
		strings.ReplaceAll(
			strings.TrimLeft(
				strings.TrimRight(input, " \n\r"),
				" \t\r\n"),
			"\n\n\n", "\n\n"),
	)
}

// ANSIDiff renders a cmp.Diff with ANSI color codes for additions/removals,
// for readable terminal test failures on tree-shaped values (DOM, render
// tree, layout).
func ANSIDiff(x, y interface{}, opts ...cmp.Option) string {
	escapeCode := func(code int) string {
		return fmt.Sprintf("\x1b[%dm", code)
	}
	diff := cmp.Diff(x, y, opts...)
	if diff == "" {
		return ""
	}
	ss := strings.Split(diff, "\n")
	for i, s := range ss {
		switch {
		case strings.HasPrefix(s, "-"):
			ss[i] = escapeCode(31) + s + escapeCode(0)
		case strings.HasPrefix(s, "+"):
			ss[i] = escapeCode(32) + s + escapeCode(0)
		}
	}
	return strings.Join(ss, "\n")
}

// RedactTestName removes characters that are unsafe in a snapshot file name.
func RedactTestName(testCaseName string) string {
	r := strings.NewReplacer(
		"#", "_", "<", "_", ">", "_", ")", "_", "(", "_",
		":", "_", " ", "_", "'", "_", "\"", "_", "@", "_",
		"`", "_", "+", "_",
	)
	return r.Replace(testCaseName)
}

type OutputKind int

const (
	TileOutput OutputKind = iota
	LayoutOutput
	RenderTreeOutput
	DOMOutput
	CSSOutput
)

var outputKind = map[OutputKind]string{
	TileOutput:       "tiles",
	LayoutOutput:     "layout",
	RenderTreeOutput: "rendertree",
	DOMOutput:        "dom",
	CSSOutput:        "css",
}

type SnapshotOptions struct {
	Testing      *testing.T
	TestCaseName string
	Input        string
	Output       string
	Kind         OutputKind
	FolderName   string
}

// MakeSnapshot records an input/output pair as a golden snapshot, the same
// role the teacher's printer_test.go snapshots fill for JS/TSX output.
func MakeSnapshot(options *SnapshotOptions) {
	t := options.Testing
	folderName := "__snapshots__"
	if options.FolderName != "" {
		folderName = options.FolderName
	}
	snapshotName := RedactTestName(options.TestCaseName)

	s := snaps.WithConfig(
		snaps.Filename(snapshotName),
		snaps.Dir(folderName),
	)

	snapshot := "## Input\n\n```\n"
	snapshot += Dedent(options.Input)
	snapshot += "\n```\n\n## Output\n\n"
	snapshot += "```" + outputKind[options.Kind] + "\n"
	snapshot += Dedent(options.Output)
	snapshot += "\n```"

	s.MatchSnapshot(t, snapshot)
}
