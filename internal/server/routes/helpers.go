package routes

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/clausewise/backend/internal/audit"
	"github.com/clausewise/backend/internal/db"
	"github.com/clausewise/backend/internal/server/middleware"
	"github.com/clausewise/backend/pkg/golden"
	"github.com/clausewise/backend/pkg/governance"
	"github.com/clausewise/backend/pkg/graph"
)

// isActiveMember checks workspace membership; admins bypass the check.
func isActiveMember(ctx context.Context, q *db.Queries, user *middleware.AppUser, workspaceID int64) (bool, error) {
	if middleware.IsAdmin(user) {
		return true, nil
	}
	count, err := q.IsActiveMember(ctx, db.IsActiveMemberParams{
		WorkspaceID: workspaceID,
		UserID:      user.UserID,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// loadRules returns the workspace's governance rules, falling back to the
// defaults when the workspace has never been configured.
func loadRules(ctx context.Context, q *db.Queries, workspaceID int64) (governance.Rules, error) {
	row, err := q.GetGovernanceRules(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return governance.Defaults(), nil
		}
		return governance.Rules{}, err
	}
	return governance.Rules{
		RequireReasonForSensitiveEdits:  row.RequireReasonForSensitiveEdits,
		LegalCanRevertDraft:             row.LegalCanRevertDraft,
		RiskApprovalRequiredForOverride: row.RiskApprovalRequiredForOverride,
		PublishBlockedWhenHighDrift:     row.PublishBlockedWhenHighDrift,
		DefinitionsLockedAfterApproval:  row.DefinitionsLockedAfterApproval,
		ExternalCounselReadOnly:         row.ExternalCounselReadOnly,
	}, nil
}

// publishGate holds the freshly recomputed inputs of the READY/IN_REVIEW
// decision. Nothing here is read back from golden_records.
type publishGate struct {
	IntegrityScore           int
	UnresolvedHighDriftCount int64
	Status                   string
	Rules                    governance.Rules
}

func computePublishGate(ctx context.Context, q *db.Queries, workspaceID int64) (publishGate, error) {
	counts, err := q.GetNodeFlagCounts(ctx, workspaceID)
	if err != nil {
		return publishGate{}, err
	}
	high, err := q.CountUnresolvedHighDrift(ctx, workspaceID)
	if err != nil {
		return publishGate{}, err
	}
	rules, err := loadRules(ctx, q, workspaceID)
	if err != nil {
		return publishGate{}, err
	}

	score := graph.Score(int(counts.Total), int(counts.Drifted), int(counts.Warned))
	return publishGate{
		IntegrityScore:           score,
		UnresolvedHighDriftCount: high,
		Status:                   golden.Status(score, int(high), rules.PublishBlockedWhenHighDrift),
		Rules:                    rules,
	}, nil
}

func actorFromUser(user *middleware.AppUser) audit.Actor {
	return audit.Actor{ID: user.UserID, Name: user.Name}
}
