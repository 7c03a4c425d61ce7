package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"pkt.systems/gdbx/schema"
)

const (
	colorReset  = "\033[0m"
	colorDim    = "\033[2m"
	colorYellow = "\033[33m"
	colorPurple = "\033[35m"
)

// RenderStackView formats the stack view as fixed-width text rows: the
// frame pointer offset, the row address, four words, and pointer tags.
func RenderStackView(view schema.StackView, color bool) []string {
	if len(view.Rows) == 0 {
		return []string{"no stack data"}
	}
	lines := make([]string, 0, len(view.Rows)+1)
	lines = append(lines, fmt.Sprintf("%8s  %-12s  %-18s  %-18s  %-18s  %-18s",
		"offset", "address", "[0]", "[1]", "[2]", "[3]"))
	for _, row := range view.Rows {
		var b strings.Builder
		fmt.Fprintf(&b, "%8s  0x%-10x", row.Label, uint64(row.Address))
		for _, v := range row.Values {
			fmt.Fprintf(&b, "  0x%016x", uint64(v))
		}
		line := b.String()
		if color && row.Greyed {
			line = colorDim + line + colorReset
		}
		if row.Highlight&schema.HighlightStackPointer != 0 {
			line += tag("<sp", colorYellow, color)
		}
		if row.Highlight&schema.HighlightFramePointer != 0 {
			line += tag("<fp", colorPurple, color)
		}
		lines = append(lines, line)
	}
	return lines
}

func tag(text, color string, enabled bool) string {
	if !enabled {
		return "  " + text
	}
	return "  " + color + text + colorReset
}

// hLine writes a section separator sized to the terminal.
func hLine(w io.Writer, label string) {
	width := 0
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if tw, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = tw
		}
	}
	pad := (width - len(label) - 2) / 2
	if pad < 2 {
		pad = 2
	}
	bar := strings.Repeat("-", pad)
	fmt.Fprintf(w, "%s[%s]%s\n", bar, label, bar)
}

func colorEnabled() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
