package routes

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/clausewise/backend/internal/audit"
	"github.com/clausewise/backend/internal/db"
	"github.com/clausewise/backend/internal/server/middleware"
	"github.com/clausewise/backend/pkg/governance"
	"github.com/clausewise/backend/pkg/logger"
)

// GetGovernanceHandler returns the workspace's rule set, falling back to the
// defaults when the workspace was never configured.
func GetGovernanceHandler(c echo.Context) error {
	type governanceParams struct {
		WorkspaceID int64 `param:"id" validate:"required,numeric"`
	}

	data := new(governanceParams)
	if err := c.Bind(data); err != nil {
		return validationError(c, "invalid workspace id")
	}
	if err := c.Validate(data); err != nil {
		return validationError(c, "invalid workspace id")
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := db.New(conn)

	if _, err := q.GetWorkspaceByID(ctx, data.WorkspaceID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound(c, "workspace not found")
		}
		logger.Error("Failed to load workspace", "err", err)
		return internalError(c)
	}

	member, err := isActiveMember(ctx, q, user, data.WorkspaceID)
	if err != nil {
		logger.Error("Failed to check membership", "err", err)
		return internalError(c)
	}
	if !member {
		return forbidden(c, "you are not an active member of this workspace")
	}

	rules, err := loadRules(ctx, q, data.WorkspaceID)
	if err != nil {
		logger.Error("Failed to load governance rules", "err", err)
		return internalError(c)
	}

	return c.JSON(200, rules)
}

// PatchGovernanceHandler merge-patches the rule set. Only admins reach this
// handler; the patch may carry any subset of the six toggles.
func PatchGovernanceHandler(c echo.Context) error {
	type patchRequest struct {
		WorkspaceID int64 `param:"id" validate:"required,numeric"`
		governance.Patch
	}

	data := new(patchRequest)
	if err := c.Bind(data); err != nil {
		return validationError(c, "invalid governance patch")
	}
	if err := c.Validate(data); err != nil {
		return validationError(c, "invalid workspace id")
	}
	if data.Patch.Empty() {
		return validationError(c, "patch must supply at least one rule")
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	conn := app.DBConn
	q := db.New(conn)

	ws, err := q.GetWorkspaceByID(ctx, data.WorkspaceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound(c, "workspace not found")
		}
		logger.Error("Failed to load workspace", "err", err)
		return internalError(c)
	}

	member, err := isActiveMember(ctx, q, user, ws.ID)
	if err != nil {
		logger.Error("Failed to check membership", "err", err)
		return internalError(c)
	}
	if !member {
		return forbidden(c, "you are not an active member of this workspace")
	}

	before, err := loadRules(ctx, q, ws.ID)
	if err != nil {
		logger.Error("Failed to load governance rules", "err", err)
		return internalError(c)
	}
	merged := governance.Merge(before, data.Patch)

	tx, err := conn.Begin(ctx)
	if err != nil {
		logger.Error("Failed to begin transaction", "err", err)
		return internalError(c)
	}
	defer tx.Rollback(ctx)
	qtx := q.WithTx(tx)

	if _, err := qtx.UpsertGovernanceRules(ctx, db.UpsertGovernanceRulesParams{
		WorkspaceID:                     ws.ID,
		RequireReasonForSensitiveEdits:  merged.RequireReasonForSensitiveEdits,
		LegalCanRevertDraft:             merged.LegalCanRevertDraft,
		RiskApprovalRequiredForOverride: merged.RiskApprovalRequiredForOverride,
		PublishBlockedWhenHighDrift:     merged.PublishBlockedWhenHighDrift,
		DefinitionsLockedAfterApproval:  merged.DefinitionsLockedAfterApproval,
		ExternalCounselReadOnly:         merged.ExternalCounselReadOnly,
	}); err != nil {
		logger.Error("Failed to store governance rules", "err", err)
		return internalError(c)
	}

	auditRow, err := audit.Record(ctx, qtx, actorFromUser(user), audit.Entry{
		WorkspaceID: ws.ID,
		EventType:   audit.EventGovernanceUpdate,
		TargetType:  audit.TargetGovernance,
		TargetID:    ws.PublicID,
		Before:      before,
		After:       merged,
	})
	if err != nil {
		logger.Error("Failed to record audit event", "err", err)
		return internalError(c)
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Failed to commit governance patch", "err", err)
		return internalError(c)
	}

	audit.Fanout(app.Queue, auditRow)

	return c.JSON(200, merged)
}
