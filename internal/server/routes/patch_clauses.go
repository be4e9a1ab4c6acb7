package routes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/clausewise/backend/internal/audit"
	"github.com/clausewise/backend/internal/db"
	"github.com/clausewise/backend/internal/server/middleware"
	"github.com/clausewise/backend/internal/util"
	"github.com/clausewise/backend/pkg/governance"
	"github.com/clausewise/backend/pkg/logger"
)

// EditClauseHandler rewrites a clause body. Variable bindings are untouched;
// the next sync rebuilds the graph from the new text.
func EditClauseHandler(c echo.Context) error {
	type editRequest struct {
		ClauseID       int64  `param:"id" validate:"required,numeric"`
		Body           string `json:"body" validate:"required"`
		Reason         string `json:"reason"`
		ReasonCategory string `json:"reasonCategory"`
	}

	data := new(editRequest)
	if err := c.Bind(data); err != nil {
		return validationError(c, "invalid edit request")
	}
	if err := c.Validate(data); err != nil {
		return validationError(c, "body must not be empty")
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	conn := app.DBConn
	q := db.New(conn)

	clause, err := q.GetClauseByID(ctx, data.ClauseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound(c, "clause not found")
		}
		logger.Error("Failed to load clause", "err", err)
		return internalError(c)
	}

	ws, err := q.GetWorkspaceByID(ctx, clause.WorkspaceID)
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

	baselineApproved := ws.BaselineApprovedAt != nil
	if governance.DefinitionLocked(rules, clause.Category, user.Role, baselineApproved) {
		return forbidden(c, "definitions are locked after baseline approval")
	}
	if governance.EditNeedsReason(rules, clause.Sensitive) && strings.TrimSpace(data.Reason) == "" {
		return validationError(c, "edits to sensitive clauses require a reason")
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		logger.Error("Failed to begin transaction", "err", err)
		return internalError(c)
	}
	defer tx.Rollback(ctx)
	qtx := q.WithTx(tx)

	updated, err := qtx.UpdateClauseBody(ctx, db.UpdateClauseBodyParams{
		ID:       clause.ID,
		Body:     util.SanitizePostgresText(data.Body),
		EditedBy: user.Name,
	})
	if err != nil {
		logger.Error("Failed to update clause", "err", err)
		return internalError(c)
	}

	auditRow, err := audit.Record(ctx, qtx, actorFromUser(user), audit.Entry{
		WorkspaceID: ws.ID,
		EventType:   audit.EventClauseEdit,
		TargetType:  audit.TargetClause,
		TargetID:    fmt.Sprintf("%d", clause.ID),
		Before:         map[string]string{"body": util.TruncatePreview(clause.Body, 200)},
		After:          map[string]string{"body": util.TruncatePreview(updated.Body, 200)},
		Reason:         data.Reason,
		ReasonCategory: data.ReasonCategory,
	})
	if err != nil {
		logger.Error("Failed to record audit event", "err", err)
		return internalError(c)
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Failed to commit clause edit", "err", err)
		return internalError(c)
	}

	audit.Fanout(app.Queue, auditRow)

	return c.JSON(200, updated)
}
