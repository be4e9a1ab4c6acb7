package db

import "context"

const getWarnedNodeRefs = `
SELECT clause_id, variable_id
FROM graph_nodes
WHERE workspace_id = $1 AND has_warning
`

type WarnedNodeRef struct {
	ClauseID   *int64
	VariableID *int64
}

// GetWarnedNodeRefs returns the clause/variable references of currently
// warned nodes so the flag survives a rebuild.
func (q *Queries) GetWarnedNodeRefs(ctx context.Context, workspaceID int64) ([]WarnedNodeRef, error) {
	rows, err := q.db.Query(ctx, getWarnedNodeRefs, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []WarnedNodeRef
	for rows.Next() {
		var r WarnedNodeRef
		if err := rows.Scan(&r.ClauseID, &r.VariableID); err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

const countNonOwnershipEdges = `
SELECT count(*)
FROM graph_edges e
JOIN graph_nodes s ON s.id = e.source_node_id
JOIN graph_nodes t ON t.id = e.target_node_id
WHERE e.workspace_id = $1
  AND (s.clause_id IS NULL OR t.variable_id IS NULL)
`

// CountNonOwnershipEdges counts edges that are not clause→variable, i.e. the
// richer cross-reference edges a rebuild will discard.
func (q *Queries) CountNonOwnershipEdges(ctx context.Context, workspaceID int64) (int64, error) {
	row := q.db.QueryRow(ctx, countNonOwnershipEdges, workspaceID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteGraphNodes = `
DELETE FROM graph_nodes WHERE workspace_id = $1
`

// DeleteGraphNodes drops a workspace's nodes; edges go with them via cascade.
func (q *Queries) DeleteGraphNodes(ctx context.Context, workspaceID int64) error {
	_, err := q.db.Exec(ctx, deleteGraphNodes, workspaceID)
	return err
}

const insertGraphNode = `
INSERT INTO graph_nodes (
    public_id, workspace_id, label, category, clause_id, variable_id,
    display_value, has_drift, has_warning
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id
`

type InsertGraphNodeParams struct {
	PublicID     string
	WorkspaceID  int64
	Label        string
	Category     string
	ClauseID     *int64
	VariableID   *int64
	DisplayValue *string
	HasDrift     bool
	HasWarning   bool
}

func (q *Queries) InsertGraphNode(ctx context.Context, arg InsertGraphNodeParams) (int64, error) {
	row := q.db.QueryRow(ctx, insertGraphNode,
		arg.PublicID, arg.WorkspaceID, arg.Label, arg.Category, arg.ClauseID,
		arg.VariableID, arg.DisplayValue, arg.HasDrift, arg.HasWarning,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const insertGraphEdge = `
INSERT INTO graph_edges (workspace_id, source_node_id, target_node_id, weight)
VALUES ($1, $2, $3, $4)
`

type InsertGraphEdgeParams struct {
	WorkspaceID  int64
	SourceNodeID int64
	TargetNodeID int64
	Weight       int32
}

func (q *Queries) InsertGraphEdge(ctx context.Context, arg InsertGraphEdgeParams) error {
	_, err := q.db.Exec(ctx, insertGraphEdge,
		arg.WorkspaceID, arg.SourceNodeID, arg.TargetNodeID, arg.Weight,
	)
	return err
}

const getGraphNodes = `
SELECT id, public_id, workspace_id, label, category, clause_id, variable_id,
       display_value, has_drift, has_warning
FROM graph_nodes
WHERE workspace_id = $1
ORDER BY id
`

func (q *Queries) GetGraphNodes(ctx context.Context, workspaceID int64) ([]GraphNode, error) {
	rows, err := q.db.Query(ctx, getGraphNodes, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []GraphNode
	for rows.Next() {
		var n GraphNode
		if err := rows.Scan(
			&n.ID, &n.PublicID, &n.WorkspaceID, &n.Label, &n.Category,
			&n.ClauseID, &n.VariableID, &n.DisplayValue, &n.HasDrift, &n.HasWarning,
		); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

const getGraphEdges = `
SELECT id, workspace_id, source_node_id, target_node_id, weight
FROM graph_edges
WHERE workspace_id = $1
ORDER BY id
`

func (q *Queries) GetGraphEdges(ctx context.Context, workspaceID int64) ([]GraphEdge, error) {
	rows, err := q.db.Query(ctx, getGraphEdges, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []GraphEdge
	for rows.Next() {
		var e GraphEdge
		if err := rows.Scan(&e.ID, &e.WorkspaceID, &e.SourceNodeID, &e.TargetNodeID, &e.Weight); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

const getNodeFlagCounts = `
SELECT count(*),
       count(*) FILTER (WHERE has_drift),
       count(*) FILTER (WHERE has_warning)
FROM graph_nodes
WHERE workspace_id = $1
`

type NodeFlagCounts struct {
	Total   int64
	Drifted int64
	Warned  int64
}

func (q *Queries) GetNodeFlagCounts(ctx context.Context, workspaceID int64) (NodeFlagCounts, error) {
	row := q.db.QueryRow(ctx, getNodeFlagCounts, workspaceID)
	var c NodeFlagCounts
	err := row.Scan(&c.Total, &c.Drifted, &c.Warned)
	return c, err
}

const countGraphEdges = `
SELECT count(*) FROM graph_edges WHERE workspace_id = $1
`

func (q *Queries) CountGraphEdges(ctx context.Context, workspaceID int64) (int64, error) {
	row := q.db.QueryRow(ctx, countGraphEdges, workspaceID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const upsertGraphState = `
INSERT INTO graph_state (workspace_id, integrity_score, last_computed_at)
VALUES ($1, $2, now())
ON CONFLICT (workspace_id) DO UPDATE
SET integrity_score = EXCLUDED.integrity_score,
    last_computed_at = EXCLUDED.last_computed_at
RETURNING workspace_id, integrity_score, last_computed_at
`

type UpsertGraphStateParams struct {
	WorkspaceID    int64
	IntegrityScore int32
}

func (q *Queries) UpsertGraphState(ctx context.Context, arg UpsertGraphStateParams) (GraphState, error) {
	row := q.db.QueryRow(ctx, upsertGraphState, arg.WorkspaceID, arg.IntegrityScore)
	var s GraphState
	err := row.Scan(&s.WorkspaceID, &s.IntegrityScore, &s.LastComputedAt)
	return s, err
}

const getGraphState = `
SELECT workspace_id, integrity_score, last_computed_at
FROM graph_state
WHERE workspace_id = $1
`

func (q *Queries) GetGraphState(ctx context.Context, workspaceID int64) (GraphState, error) {
	row := q.db.QueryRow(ctx, getGraphState, workspaceID)
	var s GraphState
	err := row.Scan(&s.WorkspaceID, &s.IntegrityScore, &s.LastComputedAt)
	return s, err
}

const setNodeDriftForVariable = `
UPDATE graph_nodes
SET has_drift = $3
WHERE workspace_id = $1 AND variable_id = $2
`

type SetNodeDriftForVariableParams struct {
	WorkspaceID int64
	VariableID  int64
	HasDrift    bool
}

// SetNodeDriftForVariable keeps the cached node flag honest between rebuilds
// when a variable is edited, overridden or reverted.
func (q *Queries) SetNodeDriftForVariable(ctx context.Context, arg SetNodeDriftForVariableParams) error {
	_, err := q.db.Exec(ctx, setNodeDriftForVariable, arg.WorkspaceID, arg.VariableID, arg.HasDrift)
	return err
}
