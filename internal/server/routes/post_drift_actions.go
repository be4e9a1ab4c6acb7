package routes

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/clausewise/backend/internal/audit"
	"github.com/clausewise/backend/internal/db"
	"github.com/clausewise/backend/internal/server/middleware"
	"github.com/clausewise/backend/pkg/drift"
	"github.com/clausewise/backend/pkg/governance"
	"github.com/clausewise/backend/pkg/logger"
)

// OverrideDriftHandler accepts the drifted value as the new baseline.
func OverrideDriftHandler(c echo.Context) error {
	return resolveDriftHandler(c, drift.StatusOverridden)
}

// RevertDriftHandler restores the variable to its baseline value.
func RevertDriftHandler(c echo.Context) error {
	return resolveDriftHandler(c, drift.StatusReverted)
}

// ApproveDriftHandler records the deviation as formally accepted without
// touching the variable.
func ApproveDriftHandler(c echo.Context) error {
	return resolveDriftHandler(c, drift.StatusApproved)
}

// resolveDriftHandler is the shared core of the three terminal transitions.
// The UPDATE is guarded on status='unresolved', so two racing resolutions
// cannot both win: the loser sees no row and gets a conflict.
func resolveDriftHandler(c echo.Context, targetStatus string) error {
	type resolveRequest struct {
		DriftID        int64  `param:"id" validate:"required,numeric"`
		Reason         string `json:"reason"`
		ReasonCategory string `json:"reasonCategory"`
	}

	data := new(resolveRequest)
	if err := c.Bind(data); err != nil {
		return validationError(c, "invalid resolution request")
	}
	if err := c.Validate(data); err != nil {
		return validationError(c, "invalid drift item id")
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	conn := app.DBConn
	q := db.New(conn)

	item, err := q.GetDriftItemByID(ctx, data.DriftID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound(c, "drift item not found")
		}
		logger.Error("Failed to load drift item", "err", err)
		return internalError(c)
	}

	member, err := isActiveMember(ctx, q, user, item.WorkspaceID)
	if err != nil {
		logger.Error("Failed to check membership", "err", err)
		return internalError(c)
	}
	if !member {
		return forbidden(c, "you are not an active member of this workspace")
	}

	rules, err := loadRules(ctx, q, item.WorkspaceID)
	if err != nil {
		logger.Error("Failed to load governance rules", "err", err)
		return internalError(c)
	}
	if governance.WriteBlockedForRole(rules, user.Role) {
		return forbidden(c, "your role is read-only in this workspace")
	}

	switch targetStatus {
	case drift.StatusOverridden:
		if !governance.CanOverride(rules, user.Role) {
			return forbidden(c, "overrides require risk approval in this workspace")
		}
	case drift.StatusReverted:
		if !governance.CanRevert(rules, user.Role) {
			return forbidden(c, "your role cannot revert drafts in this workspace")
		}
	case drift.StatusApproved:
		if !governance.CanApprove(user.Role) {
			return forbidden(c, "approvals require the risk or credit desk")
		}
	}

	if err := drift.ValidateResolution(item.Status, data.Reason); err != nil {
		if errors.Is(err, drift.ErrEmptyReason) {
			return validationError(c, "reason must not be empty")
		}
		return conflict(c, "drift item was already resolved")
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		logger.Error("Failed to begin transaction", "err", err)
		return internalError(c)
	}
	defer tx.Rollback(ctx)
	qtx := q.WithTx(tx)

	params := db.ResolveDriftItemParams{
		ID:             item.ID,
		Status:         targetStatus,
		ApprovedBy:     user.Name,
		ApprovalReason: data.Reason,
	}
	if data.ReasonCategory != "" {
		params.ReasonCategory = &data.ReasonCategory
	}

	resolved, err := qtx.ResolveDriftItem(ctx, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return conflict(c, "drift item was already resolved")
		}
		logger.Error("Failed to resolve drift item", "err", err)
		return internalError(c)
	}

	if item.VariableID != nil {
		switch targetStatus {
		case drift.StatusOverridden:
			if err := qtx.AdvanceVariableBaseline(ctx, *item.VariableID); err != nil {
				logger.Error("Failed to advance baseline", "err", err)
				return internalError(c)
			}
		case drift.StatusReverted:
			if _, err := qtx.RevertVariableToBaseline(ctx, db.RevertVariableToBaselineParams{
				ID:         *item.VariableID,
				ModifiedBy: user.Name,
			}); err != nil {
				logger.Error("Failed to revert variable", "err", err)
				return internalError(c)
			}
		}
		if targetStatus != drift.StatusApproved {
			if err := qtx.SetNodeDriftForVariable(ctx, db.SetNodeDriftForVariableParams{
				WorkspaceID: item.WorkspaceID,
				VariableID:  *item.VariableID,
				HasDrift:    false,
			}); err != nil {
				logger.Error("Failed to clear node drift flag", "err", err)
				return internalError(c)
			}
		}
	}

	eventType := audit.EventDriftOverride
	switch targetStatus {
	case drift.StatusReverted:
		eventType = audit.EventDriftRevert
	case drift.StatusApproved:
		eventType = audit.EventDriftApprove
	}

	auditRow, err := audit.Record(ctx, qtx, actorFromUser(user), audit.Entry{
		WorkspaceID:    item.WorkspaceID,
		EventType:      eventType,
		TargetType:     audit.TargetDriftItem,
		TargetID:       item.PublicID,
		Before:         item,
		After:          resolved,
		Reason:         data.Reason,
		ReasonCategory: data.ReasonCategory,
	})
	if err != nil {
		logger.Error("Failed to record audit event", "err", err)
		return internalError(c)
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Failed to commit resolution", "err", err)
		return internalError(c)
	}

	audit.Fanout(app.Queue, auditRow)

	return c.JSON(200, resolved)
}
