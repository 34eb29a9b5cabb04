package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/codalotl/draftpatch/internal/history"
	"github.com/codalotl/draftpatch/internal/q/uni"
	"github.com/codalotl/draftpatch/internal/session"
	"golang.org/x/term"
)

// shortIDLen is how many leading characters of an ID are shown in listings. Commands accept any unique prefix.
const shortIDLen = 8

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

func printSummary(w io.Writer, st session.State) {
	if st.NoOp {
		fmt.Fprintln(w, "no change")
	}
	fmt.Fprintf(w, "%s  %d paragraphs  %d pending", st.Version, len(st.Paragraphs), len(st.Pending))
	var stack []string
	if st.CanUndo {
		stack = append(stack, "undo")
	}
	if st.CanRedo {
		stack = append(stack, "redo")
	}
	if len(stack) > 0 {
		fmt.Fprintf(w, "  (can %s)", strings.Join(stack, ", "))
	}
	fmt.Fprintln(w)
}

// printQueue lists pending patches in queue order. The active patch is marked with '*'.
func printQueue(w io.Writer, st session.State, width int) {
	if len(st.Pending) == 0 {
		fmt.Fprintln(w, "no pending patches")
		return
	}
	for i, p := range st.Pending {
		mark := ' '
		if p.ID == st.ActiveID {
			mark = '*'
		}
		head := fmt.Sprintf("%c %2d  %-8s  %-7s  p%-3d ", mark, i+1, shortID(p.ID), p.Kind, p.Target.Paragraph)
		excerpt := p.Before
		if excerpt == "" {
			excerpt = p.After.Chosen()
		}
		rest := max(width-uni.TextWidth(head, nil), 16)
		fmt.Fprintf(w, "%s%s\n", head, uni.Preview(fmt.Sprintf("%q", excerpt), rest, nil))
		if p.Rationale.Goal != "" {
			fmt.Fprintf(w, "        %s\n", uni.Preview(p.Rationale.Goal, max(width-8, 16), nil))
		}
	}
}

func printHistory(w io.Writer, entries []history.Entry, width int) {
	for _, e := range entries {
		head := fmt.Sprintf("%-9s %-8s  %-10s  %s  ", e.Version, shortID(e.ID), e.ChangeType, e.Timestamp.Format("2006-01-02 15:04"))
		fmt.Fprintf(w, "%s%s\n", head, uni.Preview(e.Description, max(width-uni.TextWidth(head, nil), 16), nil))
	}
}

// useColor decides whether w gets ANSI colors. "auto" colors only terminals.
func useColor(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	}
	return false, fmt.Errorf("invalid --color %q: want auto, always or never", mode)
}
