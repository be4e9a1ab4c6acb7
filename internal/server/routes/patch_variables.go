package routes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/clausewise/backend/internal/audit"
	"github.com/clausewise/backend/internal/db"
	"github.com/clausewise/backend/internal/server/middleware"
	"github.com/clausewise/backend/pkg/drift"
	"github.com/clausewise/backend/pkg/governance"
	"github.com/clausewise/backend/pkg/leaselock"
	"github.com/clausewise/backend/pkg/logger"
)

// EditVariableHandler changes a variable's working value. When the new value
// diverges from the baseline and no unresolved item tracks the variable yet,
// an unresolved drift item is opened in the same transaction. The per-variable
// lease serializes concurrent edits so the one-unresolved-item invariant holds
// even before the partial index would reject the duplicate.
func EditVariableHandler(c echo.Context) error {
	type editRequest struct {
		VariableID     int64  `param:"id" validate:"required,numeric"`
		Value          string `json:"value" validate:"required"`
		Severity       string `json:"severity"`
		Reason         string `json:"reason"`
		ReasonCategory string `json:"reasonCategory"`
	}

	type editResponse struct {
		Variable  db.Variable   `json:"variable"`
		DriftItem *db.DriftItem `json:"driftItem,omitempty"`
	}

	data := new(editRequest)
	if err := c.Bind(data); err != nil {
		return validationError(c, "invalid edit request")
	}
	if err := c.Validate(data); err != nil {
		return validationError(c, "value must not be empty")
	}
	if data.Severity != "" && !drift.ValidSeverity(strings.ToUpper(data.Severity)) {
		return validationError(c, "severity must be one of HIGH, MEDIUM, LOW")
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	conn := app.DBConn
	q := db.New(conn)

	variable, err := q.GetVariableByID(ctx, data.VariableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound(c, "variable not found")
		}
		logger.Error("Failed to load variable", "err", err)
		return internalError(c)
	}

	ws, err := q.GetWorkspaceByID(ctx, variable.WorkspaceID)
	if err != nil {
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

	rules, err := loadRules(ctx, q, ws.ID)
	if err != nil {
		logger.Error("Failed to load governance rules", "err", err)
		return internalError(c)
	}
	if governance.WriteBlockedForRole(rules, user.Role) {
		return forbidden(c, "your role is read-only in this workspace")
	}

	clause, err := q.GetClauseByID(ctx, variable.ClauseID)
	if err != nil {
		logger.Error("Failed to load owning clause", "err", err)
		return internalError(c)
	}

	baselineApproved := ws.BaselineApprovedAt != nil
	if governance.DefinitionLocked(rules, clause.Category, user.Role, baselineApproved) {
		return forbidden(c, "definitions are locked after baseline approval")
	}
	if governance.EditNeedsReason(rules, clause.Sensitive) && strings.TrimSpace(data.Reason) == "" {
		return validationError(c, "edits to sensitive clauses require a reason")
	}

	var resp editResponse
	var auditRow db.AuditEvent

	err = app.Locks.WithLease(ctx, fmt.Sprintf("drift:variable:%d", variable.ID), func(ctx context.Context) error {
		tx, err := conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)
		qtx := q.WithTx(tx)

		updated, err := qtx.UpdateVariableValue(ctx, db.UpdateVariableValueParams{
			ID:         variable.ID,
			Value:      data.Value,
			ModifiedBy: user.Name,
		})
		if err != nil {
			return err
		}

		if err := qtx.SetNodeDriftForVariable(ctx, db.SetNodeDriftForVariableParams{
			WorkspaceID: ws.ID,
			VariableID:  variable.ID,
			HasDrift:    updated.Value != updated.BaselineValue,
		}); err != nil {
			return err
		}

		existingRows, err := qtx.GetDriftItemsForVariable(ctx, variable.ID)
		if err != nil {
			return err
		}
		existing := make([]drift.TrackedItem, 0, len(existingRows))
		for _, row := range existingRows {
			existing = append(existing, drift.TrackedItem{
				Status:       row.Status,
				CurrentValue: row.CurrentValue,
			})
		}

		resp = editResponse{Variable: updated}

		if drift.ShouldCreate(updated.Value, updated.BaselineValue, existing) {
			publicID, err := gonanoid.New()
			if err != nil {
				return err
			}
			item, err := qtx.CreateDriftItem(ctx, db.CreateDriftItemParams{
				PublicID:           publicID,
				WorkspaceID:        ws.ID,
				ClauseID:           variable.ClauseID,
				VariableID:         &variable.ID,
				BaselineValue:      updated.BaselineValue,
				BaselineApprovedAt: updated.BaselineApprovedAt,
				CurrentValue:       updated.Value,
				CurrentModifiedBy:  user.Name,
				Severity:           drift.DefaultClassifier(strings.ToUpper(data.Severity), variable.DriftSeverity),
			})
			if err != nil {
				return err
			}
			resp.DriftItem = &item
		}

		auditRow, err = audit.Record(ctx, qtx, actorFromUser(user), audit.Entry{
			WorkspaceID:    ws.ID,
			EventType:      audit.EventVariableEdit,
			TargetType:     audit.TargetVariable,
			TargetID:       fmt.Sprintf("%d", variable.ID),
			Before:         variable,
			After:          resp.Variable,
			Reason:         data.Reason,
			ReasonCategory: data.ReasonCategory,
		})
		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		if errors.Is(err, leaselock.ErrBusy) {
			return conflict(c, "another edit is in flight for this variable")
		}
		logger.Error("Failed to edit variable", "variableId", variable.ID, "err", err)
		return internalError(c)
	}

	audit.Fanout(app.Queue, auditRow)

	return c.JSON(200, resp)
}
