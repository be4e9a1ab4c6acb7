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

// GetGraphHandler returns the persisted graph together with a freshly
// recomputed integrity score. The score is derived from the node flags on
// every read; the cached graph_state row only contributes its timestamp.
func GetGraphHandler(c echo.Context) error {
	type graphParams struct {
		WorkspaceID int64 `param:"workspaceId" validate:"required,numeric"`
	}

	type graphResponse struct {
		WorkspaceID    int64          `json:"workspaceId"`
		IntegrityScore int            `json:"integrityScore"`
		LastComputedAt *time.Time     `json:"lastComputedAt"`
		Nodes          []db.GraphNode `json:"nodes"`
		Edges          []db.GraphEdge `json:"edges"`
	}

	data := new(graphParams)
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

	nodes, err := q.GetGraphNodes(ctx, data.WorkspaceID)
	if err != nil {
		logger.Error("Failed to load graph nodes", "err", err)
		return internalError(c)
	}
	edges, err := q.GetGraphEdges(ctx, data.WorkspaceID)
	if err != nil {
		logger.Error("Failed to load graph edges", "err", err)
		return internalError(c)
	}

	drifted, warned := 0, 0
	for _, n := range nodes {
		if n.HasDrift {
			drifted++
		}
		if n.HasWarning {
			warned++
		}
	}
	score := graph.Score(len(nodes), drifted, warned)

	resp := graphResponse{
		WorkspaceID:    data.WorkspaceID,
		IntegrityScore: score,
		Nodes:          nodes,
		Edges:          edges,
	}
	if resp.Nodes == nil {
		resp.Nodes = []db.GraphNode{}
	}
	if resp.Edges == nil {
		resp.Edges = []db.GraphEdge{}
	}

	state, err := q.GetGraphState(ctx, data.WorkspaceID)
	if err == nil {
		resp.LastComputedAt = &state.LastComputedAt
	} else if !errors.Is(err, pgx.ErrNoRows) {
		logger.Error("Failed to load graph state", "err", err)
		return internalError(c)
	}

	return c.JSON(200, resp)
}

// RecomputeGraphHandler recomputes the integrity score from the persisted
// node flags and stores it in graph_state.
func RecomputeGraphHandler(c echo.Context) error {
	type recomputeParams struct {
		WorkspaceID int64 `param:"workspaceId" validate:"required,numeric"`
	}

	data := new(recomputeParams)
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

	counts, err := q.GetNodeFlagCounts(ctx, data.WorkspaceID)
	if err != nil {
		logger.Error("Failed to count node flags", "err", err)
		return internalError(c)
	}

	score := graph.Score(int(counts.Total), int(counts.Drifted), int(counts.Warned))
	state, err := q.UpsertGraphState(ctx, db.UpsertGraphStateParams{
		WorkspaceID:    data.WorkspaceID,
		IntegrityScore: int32(score),
	})
	if err != nil {
		logger.Error("Failed to store graph state", "err", err)
		return internalError(c)
	}

	return c.JSON(200, state)
}
