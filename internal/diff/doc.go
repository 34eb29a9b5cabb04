// Package diff computes and renders text diffs between an "old" and a "new" string.
//
// Two granularities are offered:
//   - DiffText groups changes by line into hunks. It is used to show how a manuscript changed between two history entries.
//   - Inline produces character-level spans with semantic cleanup. It is used to show how an expected excerpt differs from the text actually found in a paragraph.
//
// Invariants:
//   - concat(Diff.Hunks.OldText) == Diff.OldText
//   - concat(Diff.Hunks.NewText) == Diff.NewText
//   - concat of the old side of Inline spans == old, and likewise for new.
//
// Rendering: Diff.RenderUnified emits a unified diff (optionally with ANSI colors). RenderInline emits a single string with deletions wrapped as [-text-] and insertions
// as {+text+}, or colored when requested.
//
// Newlines: This package treats '\n' as the line separator. The last line may not end with '\n'.
package diff
