package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/codalotl/draftpatch/internal/agent"
	"github.com/codalotl/draftpatch/internal/config"
	"github.com/codalotl/draftpatch/internal/history"
	"github.com/codalotl/draftpatch/internal/resolve"
	"github.com/codalotl/draftpatch/internal/session"
	"github.com/codalotl/draftpatch/internal/snapshot"
	"github.com/spf13/cobra"
)

// args wraps a cobra positional-args validator so failures exit with code 2.
func args(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := v(cmd, a); err != nil {
			return usageError(err)
		}
		return nil
	}
}

func newRootCommand(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "draftpatch",
		Short:         "draftpatch applies queued, context-anchored edits to a manuscript.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&e.cfgFile, "config", "", "config file (overrides ~/.draftpatch and ./.draftpatch)")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	root.AddCommand(
		newInitCommand(e),
		newImportCommand(e),
		newEditCommand(e),
		newStatusCommand(e),
		newProposeCommand(e),
		newApplyCommand(e),
		newSkipCommand(e),
		newSelectCommand(e),
		newReorderCommand(e),
		newAnnotateCommand(e),
		newHistoryCommand(e),
		newRevertCommand(e),
		newDiffCommand(e),
		newUndoCommand(e),
		newRedoCommand(e),
		newExportCommand(e),
		newWatchCommand(e),
	)
	return root
}

func newInitCommand(e *env) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init <file>",
		Short: "Start a session from a manuscript file",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			text, err := os.ReadFile(a[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return e.withStore(ctx, func(cfg config.Config, store snapshot.BlobStore) error {
				if !force {
					_, err := snapshot.Load(ctx, store, cfg.Session)
					if err == nil {
						return fmt.Errorf("session %q already exists (use --force to replace it)", cfg.Session)
					}
					if !errors.Is(err, snapshot.ErrNotFound) {
						return err
					}
				}
				s := session.New(string(text), e.sessionOptions(cfg)...)
				if err := snapshot.Save(ctx, store, cfg.Session, s.Snapshot()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "initialized session %q\n", cfg.Session)
				printSummary(cmd.OutOrStdout(), s.State())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing session")
	return cmd
}

// newReplaceTextCommand builds import and edit, which differ only in the change type they record.
func newReplaceTextCommand(e *env, use, short string, apply func(s *session.Session, text string) session.State) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <file>",
		Short: short,
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			text, err := os.ReadFile(a[0])
			if err != nil {
				return err
			}
			return e.mutate(cmd.Context(), func(_ config.Config, s *session.Session) error {
				printSummary(cmd.OutOrStdout(), apply(s, string(text)))
				return nil
			})
		},
	}
}

func newImportCommand(e *env) *cobra.Command {
	return newReplaceTextCommand(e, "import", "Replace the text with an imported file (major version bump)", (*session.Session).ImportText)
}

func newEditCommand(e *env) *cobra.Command {
	return newReplaceTextCommand(e, "edit", "Replace the text with a manually edited file (patch version bump)", (*session.Session).ApplyManualEdit)
}

func newStatusCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the version and the pending patch queue",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.view(cmd.Context(), func(cfg config.Config, s *session.Session) error {
				st := s.State()
				printSummary(cmd.OutOrStdout(), st)
				printQueue(cmd.OutOrStdout(), st, cfg.Preview.Width)
				return nil
			})
		},
	}
}

func newProposeCommand(e *env) *cobra.Command {
	var instruction string
	cmd := &cobra.Command{
		Use:   "propose <patches.json>",
		Short: "Queue the patches in a JSON file",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			return e.mutate(cmd.Context(), func(_ config.Config, s *session.Session) error {
				report, err := s.Propose(cmd.Context(), agent.FileProposer{Path: a[0]}, instruction)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "accepted %d, dropped %d\n", report.Accepted, report.Dropped)
				for _, p := range report.Problems {
					fmt.Fprintf(out, "  %v\n", p)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&instruction, "instruction", "", "instruction passed to the proposer")
	return cmd
}

// pendingID resolves an optional patch ID argument: the active patch when absent, else an exact ID or a unique prefix.
func pendingID(s *session.Session, a []string) (string, error) {
	if len(a) == 0 {
		p, ok := s.Active()
		if !ok {
			return "", errors.New("no pending patches")
		}
		return p.ID, nil
	}
	var ids []string
	for _, p := range s.Pending() {
		ids = append(ids, p.ID)
	}
	return matchID(ids, a[0], session.ErrPatchNotFound)
}

func newApplyCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "apply [id]",
		Short: "Apply a pending patch (the active one by default)",
		Args:  args(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			return e.mutate(cmd.Context(), func(_ config.Config, s *session.Session) error {
				id, err := pendingID(s, a)
				if err != nil {
					return err
				}
				outcome, err := s.ApplyPatch(id)
				if err != nil {
					var nf *resolve.NotFoundError
					if errors.As(err, &nf) {
						return fmt.Errorf("%w\nthe patch is still pending; edit the text or run 'draftpatch skip %s'", err, shortID(id))
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s to paragraph %d (%s match)\n", shortID(id), outcome.Match.Index+1, outcome.Match.Kind)
				printSummary(cmd.OutOrStdout(), outcome.State)
				return nil
			})
		},
	}
}

func newSkipCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "skip [id]",
		Short: "Drop a pending patch without applying it",
		Args:  args(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			return e.mutate(cmd.Context(), func(_ config.Config, s *session.Session) error {
				id, err := pendingID(s, a)
				if err != nil {
					return err
				}
				st, err := s.SkipPatch(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "skipped %s\n", shortID(id))
				printSummary(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}
}

func newSelectCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Make a pending patch the active one",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			return e.mutate(cmd.Context(), func(cfg config.Config, s *session.Session) error {
				id, err := pendingID(s, a)
				if err != nil {
					return err
				}
				st, err := s.Select(id)
				if err != nil {
					return err
				}
				printQueue(cmd.OutOrStdout(), st, cfg.Preview.Width)
				return nil
			})
		},
	}
}

func newReorderCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <id> <index>",
		Short: "Move a pending patch to a 1-based queue position",
		Args:  args(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, a []string) error {
			pos, err := strconv.Atoi(a[1])
			if err != nil || pos < 1 {
				return usageError(fmt.Errorf("invalid <index> %q: must be a positive integer", a[1]))
			}
			return e.mutate(cmd.Context(), func(cfg config.Config, s *session.Session) error {
				id, err := pendingID(s, a[:1])
				if err != nil {
					return err
				}
				st, err := s.Reorder(id, pos-1)
				if err != nil {
					return err
				}
				printQueue(cmd.OutOrStdout(), st, cfg.Preview.Width)
				return nil
			})
		},
	}
}

func newAnnotateCommand(e *env) *cobra.Command {
	var before, after string
	cmd := &cobra.Command{
		Use:   "annotate --before <text> --after <text>",
		Short: "Accept a suggestion: replace every occurrence of a literal",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("before") || !cmd.Flags().Changed("after") {
				return usageError(errors.New("both --before and --after are required"))
			}
			return e.mutate(cmd.Context(), func(_ config.Config, s *session.Session) error {
				st, err := s.AcceptAnnotation(before, after)
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "literal text to replace")
	cmd.Flags().StringVar(&after, "after", "", "replacement text (may be empty)")
	return cmd
}

func newHistoryCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List history entries, oldest first",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.view(cmd.Context(), func(cfg config.Config, s *session.Session) error {
				printHistory(cmd.OutOrStdout(), s.History(), cfg.Preview.Width)
				return nil
			})
		},
	}
}

// entryID resolves a history entry argument: an exact ID, a unique ID prefix, or a version string like v1.2.0.
func entryID(s *session.Session, arg string) (string, error) {
	entries := s.History()
	ids := make([]string, len(entries))
	for i, en := range entries {
		ids[i] = en.ID
		if en.Version == arg || "v"+arg == en.Version {
			return en.ID, nil
		}
	}
	return matchID(ids, arg, history.ErrEntryNotFound)
}

func newRevertCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "revert <entry-id|version>",
		Short: "Restore the text of a history entry as a new entry",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			return e.mutate(cmd.Context(), func(_ config.Config, s *session.Session) error {
				id, err := entryID(s, a[0])
				if err != nil {
					return err
				}
				st, err := s.RevertTo(id)
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}
}

func newDiffCommand(e *env) *cobra.Command {
	var colorMode string
	var contextLines int
	cmd := &cobra.Command{
		Use:   "diff <from> <to>",
		Short: "Show a unified diff between two history entries",
		Args:  args(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, a []string) error {
			color, err := useColor(colorMode, cmd.OutOrStdout())
			if err != nil {
				return usageError(err)
			}
			return e.view(cmd.Context(), func(_ config.Config, s *session.Session) error {
				fromID, err := entryID(s, a[0])
				if err != nil {
					return err
				}
				toID, err := entryID(s, a[1])
				if err != nil {
					return err
				}
				d, err := s.HistoryDiff(fromID, toID)
				if err != nil {
					return err
				}
				from, _ := s.HistoryEntry(fromID)
				to, _ := s.HistoryEntry(toID)
				fmt.Fprintln(cmd.OutOrStdout(), d.RenderUnified(color, from.Version, to.Version, contextLines))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&colorMode, "color", "auto", "colorize output: auto, always or never")
	cmd.Flags().IntVarP(&contextLines, "context", "U", 3, "lines of context")
	return cmd
}

// newStackCommand builds undo and redo.
func newStackCommand(e *env, use, short, empty string, step func(s *session.Session) session.State) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.mutate(cmd.Context(), func(_ config.Config, s *session.Session) error {
				st := step(s)
				if st.NoOp {
					fmt.Fprintln(cmd.OutOrStdout(), empty)
					return nil
				}
				printSummary(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}
}

func newUndoCommand(e *env) *cobra.Command {
	return newStackCommand(e, "undo", "Undo the most recent change", "nothing to undo", (*session.Session).Undo)
}

func newRedoCommand(e *env) *cobra.Command {
	return newStackCommand(e, "redo", "Redo the most recently undone change", "nothing to redo", (*session.Session).Redo)
}

func newExportCommand(e *env) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current text to stdout or a file",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.view(cmd.Context(), func(_ config.Config, s *session.Session) error {
				if output != "" {
					return os.WriteFile(output, []byte(s.Text()), 0o644)
				}
				_, err := fmt.Fprint(cmd.OutOrStdout(), s.Text())
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

// matchID finds arg among ids: an exact match wins, then a unique prefix. notFound is returned when nothing matches.
func matchID(ids []string, arg string, notFound error) (string, error) {
	var hits []string
	for _, id := range ids {
		if id == arg {
			return id, nil
		}
		if strings.HasPrefix(id, arg) {
			hits = append(hits, id)
		}
	}
	switch len(hits) {
	case 0:
		return "", fmt.Errorf("%s: %w", arg, notFound)
	case 1:
		return hits[0], nil
	}
	return "", fmt.Errorf("%s is ambiguous (%d matches)", arg, len(hits))
}
