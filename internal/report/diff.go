// Package report renders line diffs between two serialized assets.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Op is a line's role in a diff.
type Op int

const (
	Equal Op = iota
	Insert
	Delete
)

// Line is one line of a diff, without its trailing newline.
type Line struct {
	Op   Op
	Text string
}

// Lines computes a line-level diff of from and to.
func Lines(from, to string) []Line {
	dmp := diffpatch.New()
	a, b, table := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), table)

	var out []Line
	for _, d := range diffs {
		op := Equal
		switch d.Type {
		case diffpatch.DiffInsert:
			op = Insert
		case diffpatch.DiffDelete:
			op = Delete
		}
		for _, text := range splitLines(d.Text) {
			out = append(out, Line{Op: op, Text: text})
		}
	}
	return out
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Stat counts inserted and deleted lines.
func Stat(lines []Line) (inserted, deleted int) {
	for _, l := range lines {
		switch l.Op {
		case Insert:
			inserted++
		case Delete:
			deleted++
		}
	}
	return inserted, deleted
}

// Options controls rendering.
type Options struct {
	// Color wraps inserted and deleted lines in ANSI colors.
	Color bool
	// Context is the number of unchanged lines kept around each change.
	// Negative keeps every line.
	Context int
}

// Write renders lines with +/- prefixes. Runs of unchanged lines longer than
// the context window are collapsed into a "@@ n unchanged lines @@" marker.
func Write(w io.Writer, lines []Line, opts Options) error {
	ins, del, hunk := plain, plain, plain
	if opts.Color {
		ins = paint(color.FgGreen)
		del = paint(color.FgRed)
		hunk = paint(color.FgCyan)
	}

	keep := visible(lines, opts.Context)
	skipped := 0
	flush := func() error {
		if skipped == 0 {
			return nil
		}
		_, err := fmt.Fprintln(w, hunk(fmt.Sprintf("@@ %d unchanged lines @@", skipped)))
		skipped = 0
		return err
	}
	for i, l := range lines {
		if !keep[i] {
			skipped++
			continue
		}
		if err := flush(); err != nil {
			return err
		}
		var s string
		switch l.Op {
		case Insert:
			s = ins("+" + l.Text)
		case Delete:
			s = del("-" + l.Text)
		default:
			s = " " + l.Text
		}
		if _, err := fmt.Fprintln(w, s); err != nil {
			return err
		}
	}
	return flush()
}

func plain(s string) string { return s }

func paint(attr color.Attribute) func(string) string {
	c := color.New(attr)
	c.EnableColor()
	return func(s string) string { return c.Sprint(s) }
}

// visible marks the lines within ctx of a change.
func visible(lines []Line, ctx int) []bool {
	keep := make([]bool, len(lines))
	for i, l := range lines {
		if ctx < 0 || l.Op != Equal {
			keep[i] = true
			if ctx < 0 {
				continue
			}
			for j := max(0, i-ctx); j <= min(len(lines)-1, i+ctx); j++ {
				keep[j] = true
			}
		}
	}
	return keep
}
