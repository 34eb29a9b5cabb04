package session

import (
	"context"

	"github.com/codalotl/draftpatch/internal/agent"
	"github.com/codalotl/draftpatch/internal/document"
	"github.com/codalotl/draftpatch/internal/patch"
	"github.com/codalotl/draftpatch/internal/reconcile"
)

// Ingest validates incoming patches, reconciles the valid ones against the current text and enqueues them in arrival order. Invalid patches are dropped and
// reported; they never block the rest.
func (s *Session) Ingest(patches []patch.Patch) patch.IngestReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ingestLocked(patches)
}

func (s *Session) ingestLocked(patches []patch.Patch) patch.IngestReport {
	accepted, report := patch.Screen(patches, s.store.Has)
	for _, prob := range report.Problems {
		s.log.Warn("patch dropped", "index", prob.Index, "patch", prob.ID, "reason", prob.Reason)
	}

	if len(accepted) > 0 {
		res := reconcile.Reconcile(accepted, document.Paragraphs(s.text), s.resolveOpts)
		s.store.Enqueue(res.Patches...)
		if len(res.Stale) > 0 {
			s.log.Warn("ingested patches do not match the current text", "stale", res.Stale)
		}
	}

	s.metrics.RecordIngest(report.Accepted, report.Dropped)
	s.log.Log("patches ingested", "accepted", report.Accepted, "dropped", report.Dropped, "pending", s.store.Len(), "active", s.store.ActiveID())
	return report
}

// Propose asks proposer for patches about the current text and ingests them. The proposer runs without the session lock, so the text may change meanwhile; the
// returned patches are reconciled against the text as it is when they arrive.
//
// If ctx is done by the time the proposer returns, or the proposer fails, nothing is ingested and the session is untouched.
func (s *Session) Propose(ctx context.Context, proposer agent.Proposer, instruction string) (patch.IngestReport, error) {
	s.mu.Lock()
	req := agent.NewRequest(s.text, instruction)
	s.mu.Unlock()

	s.log.Debug("proposing patches", "paragraphs", len(req.Paragraphs))
	patches, err := proposer.Propose(ctx, req)
	if ctxErr := ctx.Err(); ctxErr != nil {
		s.log.Log("proposal cancelled", "error", ctxErr)
		return patch.IngestReport{}, ctxErr
	}
	if err != nil {
		return patch.IngestReport{}, s.log.LogWrappedErr("proposal failed", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return patch.IngestReport{}, err
	}
	return s.ingestLocked(patches), nil
}
