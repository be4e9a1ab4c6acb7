package db

import "context"

const getGovernanceRules = `
SELECT workspace_id, require_reason_for_sensitive_edits, legal_can_revert_draft,
       risk_approval_required_for_override, publish_blocked_when_high_drift,
       definitions_locked_after_approval, external_counsel_read_only, updated_at
FROM governance_rules
WHERE workspace_id = $1
`

func (q *Queries) GetGovernanceRules(ctx context.Context, workspaceID int64) (GovernanceRule, error) {
	row := q.db.QueryRow(ctx, getGovernanceRules, workspaceID)
	var g GovernanceRule
	err := row.Scan(
		&g.WorkspaceID, &g.RequireReasonForSensitiveEdits, &g.LegalCanRevertDraft,
		&g.RiskApprovalRequiredForOverride, &g.PublishBlockedWhenHighDrift,
		&g.DefinitionsLockedAfterApproval, &g.ExternalCounselReadOnly, &g.UpdatedAt,
	)
	return g, err
}

const upsertGovernanceRules = `
INSERT INTO governance_rules (
    workspace_id, require_reason_for_sensitive_edits, legal_can_revert_draft,
    risk_approval_required_for_override, publish_blocked_when_high_drift,
    definitions_locked_after_approval, external_counsel_read_only, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (workspace_id) DO UPDATE
SET require_reason_for_sensitive_edits = EXCLUDED.require_reason_for_sensitive_edits,
    legal_can_revert_draft = EXCLUDED.legal_can_revert_draft,
    risk_approval_required_for_override = EXCLUDED.risk_approval_required_for_override,
    publish_blocked_when_high_drift = EXCLUDED.publish_blocked_when_high_drift,
    definitions_locked_after_approval = EXCLUDED.definitions_locked_after_approval,
    external_counsel_read_only = EXCLUDED.external_counsel_read_only,
    updated_at = now()
RETURNING workspace_id, require_reason_for_sensitive_edits, legal_can_revert_draft,
          risk_approval_required_for_override, publish_blocked_when_high_drift,
          definitions_locked_after_approval, external_counsel_read_only, updated_at
`

type UpsertGovernanceRulesParams struct {
	WorkspaceID                     int64
	RequireReasonForSensitiveEdits  bool
	LegalCanRevertDraft             bool
	RiskApprovalRequiredForOverride bool
	PublishBlockedWhenHighDrift     bool
	DefinitionsLockedAfterApproval  bool
	ExternalCounselReadOnly         bool
}

func (q *Queries) UpsertGovernanceRules(ctx context.Context, arg UpsertGovernanceRulesParams) (GovernanceRule, error) {
	row := q.db.QueryRow(ctx, upsertGovernanceRules,
		arg.WorkspaceID, arg.RequireReasonForSensitiveEdits, arg.LegalCanRevertDraft,
		arg.RiskApprovalRequiredForOverride, arg.PublishBlockedWhenHighDrift,
		arg.DefinitionsLockedAfterApproval, arg.ExternalCounselReadOnly,
	)
	var g GovernanceRule
	err := row.Scan(
		&g.WorkspaceID, &g.RequireReasonForSensitiveEdits, &g.LegalCanRevertDraft,
		&g.RiskApprovalRequiredForOverride, &g.PublishBlockedWhenHighDrift,
		&g.DefinitionsLockedAfterApproval, &g.ExternalCounselReadOnly, &g.UpdatedAt,
	)
	return g, err
}
