package diff

import (
	"fmt"
	"strings"
)

// Colors (ANSI) for rendering. Applied only when color is requested.
const (
	reset    = "\x1b[0m"
	red      = "\x1b[31m"
	green    = "\x1b[32m"
	magenta  = "\x1b[35m"
	cyanBold = "\x1b[1;36m"
)

type outLine struct {
	tag  byte   // ' ', '+', '-'
	text string // line content without EOL
	old  int    // 1-based old line number (0 for '+')
	new  int    // 1-based new line number (0 for '-')
}

// RenderUnified renders d as a unified diff with contextSize lines of context around each change. Changes separated by at most 2*contextSize unchanged lines share a
// hunk. The returned string uses "\n" as the line separator and has no trailing newline. If d has no changes, only the two header lines are emitted.
func (d Diff) RenderUnified(color bool, fromName, toName string, contextSize int) string {
	colorize := func(s, code string) string {
		if !color {
			return s
		}
		return code + s + reset
	}
	contextSize = max(contextSize, 0)

	// Flatten hunks into numbered lines.
	var flat []outLine
	oldN, newN := 1, 1
	for _, h := range d.Hunks {
		if h.Op == OpEqual {
			for _, ln := range splitPreserveEOL(h.OldText, defaultEOL) {
				core, _ := trimEOL(ln, defaultEOL)
				flat = append(flat, outLine{tag: ' ', text: core, old: oldN, new: newN})
				oldN++
				newN++
			}
			continue
		}
		for _, ln := range splitPreserveEOL(h.OldText, defaultEOL) {
			core, _ := trimEOL(ln, defaultEOL)
			flat = append(flat, outLine{tag: '-', text: core, old: oldN})
			oldN++
		}
		for _, ln := range splitPreserveEOL(h.NewText, defaultEOL) {
			core, _ := trimEOL(ln, defaultEOL)
			flat = append(flat, outLine{tag: '+', text: core, new: newN})
			newN++
		}
	}

	out := []string{
		colorize("--- "+fromName, cyanBold),
		colorize("+++ "+toName, cyanBold),
	}

	i := 0
	for i < len(flat) {
		if flat[i].tag == ' ' {
			i++
			continue
		}
		start := max(0, i-contextSize)

		// Extend through changes, absorbing gaps of at most 2*contextSize equal lines.
		end := i
		for end < len(flat) {
			if flat[end].tag != ' ' {
				end++
				continue
			}
			gap := end
			for gap < len(flat) && flat[gap].tag == ' ' {
				gap++
			}
			if gap < len(flat) && gap-end <= 2*contextSize {
				end = gap
				continue
			}
			end = min(end+contextSize, len(flat))
			break
		}

		lines := flat[start:end]
		oldStart, newStart, oldCount, newCount := 0, 0, 0, 0
		for _, ol := range lines {
			if ol.tag != '+' {
				if oldStart == 0 {
					oldStart = ol.old
				}
				oldCount++
			}
			if ol.tag != '-' {
				if newStart == 0 {
					newStart = ol.new
				}
				newCount++
			}
		}
		if oldStart == 0 {
			oldStart = lineBefore(flat, start, true)
		}
		if newStart == 0 {
			newStart = lineBefore(flat, start, false)
		}

		out = append(out, colorize(fmt.Sprintf("@@ -%d,%d +%d,%d @@", oldStart, oldCount, newStart, newCount), magenta))
		for _, ol := range lines {
			line := string(ol.tag) + ol.text
			switch ol.tag {
			case '+':
				out = append(out, colorize(line, green))
			case '-':
				out = append(out, colorize(line, red))
			default:
				out = append(out, line)
			}
		}
		i = end
	}

	return strings.Join(out, "\n")
}

// lineBefore returns the last old (or new) line number before flat[start], which is the unified-diff convention for an empty side.
func lineBefore(flat []outLine, start int, old bool) int {
	for k := start - 1; k >= 0; k-- {
		if old && flat[k].old > 0 {
			return flat[k].old
		}
		if !old && flat[k].new > 0 {
			return flat[k].new
		}
	}
	return 0
}

// RenderInline renders spans on one line. Without color, deletions appear as [-text-] and insertions as {+text+}; a replacement shows both. With color, deletions
// are red and insertions green, without markers.
func RenderInline(spans []Span, color bool) string {
	del := func(s string) string {
		if color {
			return red + s + reset
		}
		return "[-" + s + "-]"
	}
	ins := func(s string) string {
		if color {
			return green + s + reset
		}
		return "{+" + s + "+}"
	}

	var b strings.Builder
	for _, sp := range spans {
		switch sp.Op {
		case OpEqual:
			b.WriteString(sp.OldText)
		case OpDelete:
			b.WriteString(del(sp.OldText))
		case OpInsert:
			b.WriteString(ins(sp.NewText))
		case OpReplace:
			b.WriteString(del(sp.OldText))
			b.WriteString(ins(sp.NewText))
		}
	}
	return b.String()
}
