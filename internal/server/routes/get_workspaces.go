package routes

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/clausewise/backend/internal/db"
	"github.com/clausewise/backend/internal/server/middleware"
	"github.com/clausewise/backend/pkg/graph"
	"github.com/clausewise/backend/pkg/logger"
)

// GetWorkspaceHandler returns a workspace with its headline numbers.
func GetWorkspaceHandler(c echo.Context) error {
	type workspaceParams struct {
		WorkspaceID int64 `param:"id" validate:"required,numeric"`
	}

	type workspaceResponse struct {
		ID                   int64      `json:"id"`
		PublicID             string     `json:"publicId"`
		Name                 string     `json:"name"`
		LastSyncAt           *time.Time `json:"lastSyncAt"`
		BaselineApprovedAt   *time.Time `json:"baselineApprovedAt"`
		ClauseCount          int64      `json:"clauseCount"`
		VariableCount        int64      `json:"variableCount"`
		NodeCount            int64      `json:"nodeCount"`
		EdgeCount            int64      `json:"edgeCount"`
		UnresolvedDriftCount int64      `json:"unresolvedDriftCount"`
		IntegrityScore       int        `json:"integrityScore"`
	}

	data := new(workspaceParams)
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

	clauseCount, err := q.CountClauses(ctx, ws.ID)
	if err != nil {
		logger.Error("Failed to count clauses", "err", err)
		return internalError(c)
	}
	variableCount, err := q.CountVariables(ctx, ws.ID)
	if err != nil {
		logger.Error("Failed to count variables", "err", err)
		return internalError(c)
	}
	counts, err := q.GetNodeFlagCounts(ctx, ws.ID)
	if err != nil {
		logger.Error("Failed to count node flags", "err", err)
		return internalError(c)
	}
	edgeCount, err := q.CountGraphEdges(ctx, ws.ID)
	if err != nil {
		logger.Error("Failed to count edges", "err", err)
		return internalError(c)
	}
	driftCount, err := q.CountUnresolvedDrift(ctx, ws.ID)
	if err != nil {
		logger.Error("Failed to count drift items", "err", err)
		return internalError(c)
	}

	return c.JSON(200, workspaceResponse{
		ID:                   ws.ID,
		PublicID:             ws.PublicID,
		Name:                 ws.Name,
		LastSyncAt:           ws.LastSyncAt,
		BaselineApprovedAt:   ws.BaselineApprovedAt,
		ClauseCount:          clauseCount,
		VariableCount:        variableCount,
		NodeCount:            counts.Total,
		EdgeCount:            edgeCount,
		UnresolvedDriftCount: driftCount,
		IntegrityScore:       graph.Score(int(counts.Total), int(counts.Drifted), int(counts.Warned)),
	})
}

// GetWorkspaceAuditHandler lists the workspace's audit trail, newest first.
func GetWorkspaceAuditHandler(c echo.Context) error {
	type auditParams struct {
		WorkspaceID int64  `param:"id" validate:"required,numeric"`
		EventType   string `query:"eventType"`
		Limit       int32  `query:"limit" validate:"omitempty,min=1,max=200"`
	}

	data := new(auditParams)
	if err := c.Bind(data); err != nil {
		return validationError(c, "invalid audit query")
	}
	if err := c.Validate(data); err != nil {
		return validationError(c, "invalid audit query")
	}
	if data.Limit == 0 {
		data.Limit = 50
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

	events, err := q.ListAuditEvents(ctx, db.ListAuditEventsParams{
		WorkspaceID: data.WorkspaceID,
		EventType:   data.EventType,
		Limit:       data.Limit,
	})
	if err != nil {
		logger.Error("Failed to list audit events", "err", err)
		return internalError(c)
	}
	if events == nil {
		events = []db.AuditEvent{}
	}

	return c.JSON(200, events)
}
