package routes

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/clausewise/backend/internal/audit"
	"github.com/clausewise/backend/internal/db"
	"github.com/clausewise/backend/internal/server/middleware"
	"github.com/clausewise/backend/pkg/governance"
	"github.com/clausewise/backend/pkg/graph"
	"github.com/clausewise/backend/pkg/leaselock"
	"github.com/clausewise/backend/pkg/logger"
)

// SyncWorkspaceHandler rebuilds the workspace graph from the current clauses
// and variables. The new node/edge set is assembled in memory first and
// swapped in within a single transaction, so readers either see the old graph
// or the complete new one.
func SyncWorkspaceHandler(c echo.Context) error {
	type syncParams struct {
		WorkspaceID int64 `param:"id" validate:"required,numeric"`
	}

	type syncResponse struct {
		IntegrityScore  int   `json:"integrityScore"`
		NodeCount       int   `json:"nodeCount"`
		EdgeCount       int   `json:"edgeCount"`
		DriftCount      int64 `json:"driftCount"`
		GraphSimplified bool  `json:"graphSimplified"`
	}

	data := new(syncParams)
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

	rules, err := loadRules(ctx, q, ws.ID)
	if err != nil {
		logger.Error("Failed to load governance rules", "err", err)
		return internalError(c)
	}
	if governance.WriteBlockedForRole(rules, user.Role) {
		return forbidden(c, "your role is read-only in this workspace")
	}

	var resp syncResponse
	var auditRow db.AuditEvent

	err = app.Locks.WithLease(ctx, fmt.Sprintf("workspace:sync:%d", ws.ID), func(ctx context.Context) error {
		clauseRows, err := q.GetClausesByWorkspace(ctx, ws.ID)
		if err != nil {
			return err
		}
		variableRows, err := q.GetVariablesByWorkspace(ctx, ws.ID)
		if err != nil {
			return err
		}
		warnedRefs, err := q.GetWarnedNodeRefs(ctx, ws.ID)
		if err != nil {
			return err
		}

		warned := graph.Warned{
			Clauses:   make(map[int64]bool),
			Variables: make(map[int64]bool),
		}
		for _, ref := range warnedRefs {
			if ref.ClauseID != nil {
				warned.Clauses[*ref.ClauseID] = true
			}
			if ref.VariableID != nil {
				warned.Variables[*ref.VariableID] = true
			}
		}

		clauses := make([]graph.Clause, 0, len(clauseRows))
		for _, cl := range clauseRows {
			clauses = append(clauses, graph.Clause{
				ID:       cl.ID,
				Category: cl.Category,
				Heading:  cl.Heading,
				Body:     cl.Body,
			})
		}
		variables := make([]graph.Variable, 0, len(variableRows))
		for _, v := range variableRows {
			variables = append(variables, graph.Variable{
				ID:            v.ID,
				ClauseID:      v.ClauseID,
				Name:          v.Name,
				Category:      v.Category,
				Value:         v.Value,
				Unit:          v.Unit,
				BaselineValue: v.BaselineValue,
			})
		}

		arena := graph.Build(clauses, variables, warned)
		score := graph.IntegrityScore(arena.Nodes)

		tx, err := conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)
		qtx := q.WithTx(tx)

		lostEdges, err := qtx.CountNonOwnershipEdges(ctx, ws.ID)
		if err != nil {
			return err
		}

		if err := qtx.DeleteGraphNodes(ctx, ws.ID); err != nil {
			return err
		}

		nodeIDs := make([]int64, len(arena.Nodes))
		for i, n := range arena.Nodes {
			publicID, err := gonanoid.New()
			if err != nil {
				return err
			}
			displayValue := n.DisplayValue
			id, err := qtx.InsertGraphNode(ctx, db.InsertGraphNodeParams{
				PublicID:     publicID,
				WorkspaceID:  ws.ID,
				Label:        n.Label,
				Category:     n.Category,
				ClauseID:     n.ClauseID,
				VariableID:   n.VariableID,
				DisplayValue: &displayValue,
				HasDrift:     n.HasDrift,
				HasWarning:   n.HasWarning,
			})
			if err != nil {
				return err
			}
			nodeIDs[i] = id
		}

		for _, e := range arena.Edges {
			if err := qtx.InsertGraphEdge(ctx, db.InsertGraphEdgeParams{
				WorkspaceID:  ws.ID,
				SourceNodeID: nodeIDs[e.Source],
				TargetNodeID: nodeIDs[e.Target],
				Weight:       e.Weight,
			}); err != nil {
				return err
			}
		}

		if _, err := qtx.UpsertGraphState(ctx, db.UpsertGraphStateParams{
			WorkspaceID:    ws.ID,
			IntegrityScore: int32(score),
		}); err != nil {
			return err
		}

		if err := qtx.TouchWorkspaceSync(ctx, ws.ID); err != nil {
			return err
		}

		driftCount, err := qtx.CountUnresolvedDrift(ctx, ws.ID)
		if err != nil {
			return err
		}

		resp = syncResponse{
			IntegrityScore:  score,
			NodeCount:       len(arena.Nodes),
			EdgeCount:       len(arena.Edges),
			DriftCount:      driftCount,
			GraphSimplified: lostEdges > 0,
		}

		auditRow, err = audit.Record(ctx, qtx, actorFromUser(user), audit.Entry{
			WorkspaceID: ws.ID,
			EventType:   audit.EventGraphSync,
			TargetType:  audit.TargetWorkspace,
			TargetID:    ws.PublicID,
			After:       resp,
		})
		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		if errors.Is(err, leaselock.ErrBusy) {
			return conflict(c, "another sync is already running for this workspace")
		}
		logger.Error("Failed to sync workspace", "workspaceId", ws.ID, "err", err)
		return internalError(c)
	}

	audit.Fanout(app.Queue, auditRow)

	return c.JSON(200, resp)
}
