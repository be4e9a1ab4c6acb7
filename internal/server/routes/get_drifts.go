package routes

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/clausewise/backend/internal/db"
	"github.com/clausewise/backend/internal/server/middleware"
	serverutil "github.com/clausewise/backend/internal/server/util"
	"github.com/clausewise/backend/pkg/golden"
	"github.com/clausewise/backend/pkg/logger"
)

// ListDriftsHandler lists a workspace's drift items with optional severity,
// status, variable category and keyword filters.
func ListDriftsHandler(c echo.Context) error {
	type listParams struct {
		WorkspaceID int64  `query:"workspaceId" validate:"required,numeric"`
		Severity    string `query:"severity"`
		Status      string `query:"status"`
		Type        string `query:"type"`
		Keyword     string `query:"keyword"`
	}

	data := new(listParams)
	if err := c.Bind(data); err != nil {
		return validationError(c, "invalid drift query")
	}
	if err := c.Validate(data); err != nil {
		return validationError(c, "workspaceId is required")
	}

	severity, ok := serverutil.NormalizeSeverity(data.Severity)
	if !ok {
		return validationError(c, "severity must be one of HIGH, MEDIUM, LOW")
	}
	status, ok := serverutil.NormalizeStatus(data.Status)
	if !ok {
		return validationError(c, "status must be one of unresolved, overridden, reverted, approved")
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

	items, err := q.ListDriftItems(ctx, db.ListDriftItemsParams{
		WorkspaceID: data.WorkspaceID,
		Severity:    severity,
		Status:      status,
		Category:    data.Type,
		Keyword:     data.Keyword,
	})
	if err != nil {
		logger.Error("Failed to list drift items", "err", err)
		return internalError(c)
	}
	if items == nil {
		items = []db.DriftItem{}
	}

	return c.JSON(200, items)
}

// HighDriftCountHandler returns the number of unresolved HIGH drift items.
func HighDriftCountHandler(c echo.Context) error {
	type countParams struct {
		WorkspaceID int64 `query:"workspaceId" validate:"required,numeric"`
	}

	data := new(countParams)
	if err := c.Bind(data); err != nil {
		return validationError(c, "invalid workspace id")
	}
	if err := c.Validate(data); err != nil {
		return validationError(c, "workspaceId is required")
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

	count, err := q.CountUnresolvedHighDrift(ctx, data.WorkspaceID)
	if err != nil {
		logger.Error("Failed to count high drift", "err", err)
		return internalError(c)
	}

	return c.JSON(200, map[string]int64{"count": count})
}

// PublishBlockedHandler reports whether the workspace currently fails the
// publish gate, with the numbers behind the decision.
func PublishBlockedHandler(c echo.Context) error {
	type blockedParams struct {
		WorkspaceID int64 `query:"workspaceId" validate:"required,numeric"`
	}

	type blockedResponse struct {
		Blocked                  bool   `json:"blocked"`
		Status                   string `json:"status"`
		IntegrityScore           int    `json:"integrityScore"`
		UnresolvedHighDriftCount int64  `json:"unresolvedHighDriftCount"`
	}

	data := new(blockedParams)
	if err := c.Bind(data); err != nil {
		return validationError(c, "invalid workspace id")
	}
	if err := c.Validate(data); err != nil {
		return validationError(c, "workspaceId is required")
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

	gate, err := computePublishGate(ctx, q, data.WorkspaceID)
	if err != nil {
		logger.Error("Failed to compute publish gate", "err", err)
		return internalError(c)
	}

	return c.JSON(200, blockedResponse{
		Blocked:                  gate.Status == golden.StatusInReview,
		Status:                   gate.Status,
		IntegrityScore:           gate.IntegrityScore,
		UnresolvedHighDriftCount: gate.UnresolvedHighDriftCount,
	})
}
