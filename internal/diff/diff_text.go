package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffText diffs oldText to newText by whole lines.
func DiffText(oldText, newText string) Diff {
	dmp := diffmatchpatch.New()

	// Diff based on lines:
	rOld, rNew, lineArray := dmp.DiffLinesToRunes(oldText, newText)
	lineDiffs := dmp.DiffMainRunes(rOld, rNew, false)
	lineDiffs = dmp.DiffCleanupMerge(lineDiffs)

	// Decode rune-string back to the original lines using the lineArray mapping.
	decode := func(s string) string {
		var b strings.Builder
		for _, r := range s {
			idx := int(r)
			if idx >= 0 && idx < len(lineArray) {
				b.WriteString(lineArray[idx])
			}
		}
		return b.String()
	}

	var hunks []Hunk
	var dels, ins strings.Builder

	flush := func() {
		if dels.Len() == 0 && ins.Len() == 0 {
			return
		}
		var op Op
		switch {
		case dels.Len() > 0 && ins.Len() > 0:
			op = OpReplace
		case dels.Len() > 0:
			op = OpDelete
		default:
			op = OpInsert
		}
		hunks = append(hunks, Hunk{Op: op, OldText: dels.String(), NewText: ins.String()})
		dels.Reset()
		ins.Reset()
	}

	for _, d := range lineDiffs {
		text := decode(d.Text)
		if text == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			hunks = append(hunks, Hunk{Op: OpEqual, OldText: text, NewText: text})
		case diffmatchpatch.DiffDelete:
			dels.WriteString(text)
		case diffmatchpatch.DiffInsert:
			ins.WriteString(text)
		}
	}
	flush()

	return Diff{OldText: oldText, NewText: newText, Hunks: hunks}
}

// Inline diffs oldText to newText by characters, with semantic cleanup so that spans tend to align with words. Adjacent delete+insert pairs are folded into OpReplace.
func Inline(oldText, newText string) []Span {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var spans []Span
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			spans = append(spans, Span{Op: OpEqual, OldText: d.Text, NewText: d.Text})
		case diffmatchpatch.DiffDelete:
			spans = append(spans, Span{Op: OpDelete, OldText: d.Text})
		case diffmatchpatch.DiffInsert:
			if n := len(spans); n > 0 && spans[n-1].Op == OpDelete {
				spans[n-1].Op = OpReplace
				spans[n-1].NewText = d.Text
				continue
			}
			spans = append(spans, Span{Op: OpInsert, NewText: d.Text})
		}
	}
	return spans
}

// splitPreserveEOL splits text by eol and preserves the eol on each line, except possibly the last.
func splitPreserveEOL(text, eol string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, eol)
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// trimEOL removes a trailing eol from a line if present.
func trimEOL(line, eol string) (string, bool) {
	if eol != "" && strings.HasSuffix(line, eol) {
		return line[:len(line)-len(eol)], true
	}
	return line, false
}
