package diff

// Op is an operation from old text to new text.
type Op int

// Operations from old text to new text.
const (
	OpEqual Op = iota
	OpInsert
	OpDelete
	OpReplace
)

// String returns a short name for op.
func (op Op) String() string {
	switch op {
	case OpEqual:
		return "equal"
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	case OpReplace:
		return "replace"
	}
	return "unknown"
}

// Diff is a line-oriented diff from old text to new text.
//
// Invariants:
//   - concat(Hunks.OldText) == OldText
//   - concat(Hunks.NewText) == NewText
type Diff struct {
	OldText string // Entire original text.
	NewText string // Entire revised text.
	Hunks   []Hunk // Ordered hunks that cover the whole diff and reconstruct OldText/NewText.
}

// Hunk is a contiguous group of whole lines. The \n character is part of the hunk.
//
// Operations:
//   - OpEqual: OldText == NewText
//   - OpInsert: OldText=="" && NewText!=""
//   - OpDelete: OldText!="" && NewText==""
//   - OpReplace: OldText != "" and NewText != ""
type Hunk struct {
	Op      Op
	OldText string
	NewText string
}

// Span is a character-level segment produced by Inline. Equal spans carry the same text on both sides.
type Span struct {
	Op      Op
	OldText string
	NewText string
}

// Changed reports whether d contains any non-equal hunk.
func (d Diff) Changed() bool {
	for _, h := range d.Hunks {
		if h.Op != OpEqual {
			return true
		}
	}
	return false
}

// defaultEOL is the EOL ('\n').
const defaultEOL = "\n"
