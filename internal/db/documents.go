package db

import "context"

const getClausesByWorkspace = `
SELECT id, workspace_id, heading, body, category, sensitive, sort_order,
       last_edited_at, last_edited_by, created_at
FROM clauses
WHERE workspace_id = $1
ORDER BY sort_order, id
`

func (q *Queries) GetClausesByWorkspace(ctx context.Context, workspaceID int64) ([]Clause, error) {
	rows, err := q.db.Query(ctx, getClausesByWorkspace, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Clause
	for rows.Next() {
		var c Clause
		if err := rows.Scan(
			&c.ID, &c.WorkspaceID, &c.Heading, &c.Body, &c.Category, &c.Sensitive,
			&c.SortOrder, &c.LastEditedAt, &c.LastEditedBy, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const getClauseByID = `
SELECT id, workspace_id, heading, body, category, sensitive, sort_order,
       last_edited_at, last_edited_by, created_at
FROM clauses
WHERE id = $1
`

func (q *Queries) GetClauseByID(ctx context.Context, id int64) (Clause, error) {
	row := q.db.QueryRow(ctx, getClauseByID, id)
	var c Clause
	err := row.Scan(
		&c.ID, &c.WorkspaceID, &c.Heading, &c.Body, &c.Category, &c.Sensitive,
		&c.SortOrder, &c.LastEditedAt, &c.LastEditedBy, &c.CreatedAt,
	)
	return c, err
}

const updateClauseBody = `
UPDATE clauses
SET body = $2, last_edited_at = now(), last_edited_by = $3
WHERE id = $1
RETURNING id, workspace_id, heading, body, category, sensitive, sort_order,
          last_edited_at, last_edited_by, created_at
`

type UpdateClauseBodyParams struct {
	ID       int64
	Body     string
	EditedBy string
}

func (q *Queries) UpdateClauseBody(ctx context.Context, arg UpdateClauseBodyParams) (Clause, error) {
	row := q.db.QueryRow(ctx, updateClauseBody, arg.ID, arg.Body, arg.EditedBy)
	var c Clause
	err := row.Scan(
		&c.ID, &c.WorkspaceID, &c.Heading, &c.Body, &c.Category, &c.Sensitive,
		&c.SortOrder, &c.LastEditedAt, &c.LastEditedBy, &c.CreatedAt,
	)
	return c, err
}

const getVariablesByWorkspace = `
SELECT id, workspace_id, clause_id, name, category, value, unit, baseline_value,
       baseline_approved_at, drift_severity, current_modified_at, current_modified_by, created_at
FROM variables
WHERE workspace_id = $1
ORDER BY clause_id, id
`

func (q *Queries) GetVariablesByWorkspace(ctx context.Context, workspaceID int64) ([]Variable, error) {
	rows, err := q.db.Query(ctx, getVariablesByWorkspace, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Variable
	for rows.Next() {
		var v Variable
		if err := rows.Scan(
			&v.ID, &v.WorkspaceID, &v.ClauseID, &v.Name, &v.Category, &v.Value, &v.Unit,
			&v.BaselineValue, &v.BaselineApprovedAt, &v.DriftSeverity,
			&v.CurrentModifiedAt, &v.CurrentModifiedBy, &v.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

const getVariableByID = `
SELECT id, workspace_id, clause_id, name, category, value, unit, baseline_value,
       baseline_approved_at, drift_severity, current_modified_at, current_modified_by, created_at
FROM variables
WHERE id = $1
`

func (q *Queries) GetVariableByID(ctx context.Context, id int64) (Variable, error) {
	row := q.db.QueryRow(ctx, getVariableByID, id)
	var v Variable
	err := row.Scan(
		&v.ID, &v.WorkspaceID, &v.ClauseID, &v.Name, &v.Category, &v.Value, &v.Unit,
		&v.BaselineValue, &v.BaselineApprovedAt, &v.DriftSeverity,
		&v.CurrentModifiedAt, &v.CurrentModifiedBy, &v.CreatedAt,
	)
	return v, err
}

const updateVariableValue = `
UPDATE variables
SET value = $2, current_modified_at = now(), current_modified_by = $3
WHERE id = $1
RETURNING id, workspace_id, clause_id, name, category, value, unit, baseline_value,
          baseline_approved_at, drift_severity, current_modified_at, current_modified_by, created_at
`

type UpdateVariableValueParams struct {
	ID         int64
	Value      string
	ModifiedBy string
}

func (q *Queries) UpdateVariableValue(ctx context.Context, arg UpdateVariableValueParams) (Variable, error) {
	row := q.db.QueryRow(ctx, updateVariableValue, arg.ID, arg.Value, arg.ModifiedBy)
	var v Variable
	err := row.Scan(
		&v.ID, &v.WorkspaceID, &v.ClauseID, &v.Name, &v.Category, &v.Value, &v.Unit,
		&v.BaselineValue, &v.BaselineApprovedAt, &v.DriftSeverity,
		&v.CurrentModifiedAt, &v.CurrentModifiedBy, &v.CreatedAt,
	)
	return v, err
}

const advanceVariableBaseline = `
UPDATE variables
SET baseline_value = value, baseline_approved_at = now()
WHERE id = $1
`

// AdvanceVariableBaseline accepts the current value as the new baseline.
func (q *Queries) AdvanceVariableBaseline(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, advanceVariableBaseline, id)
	return err
}

const revertVariableToBaseline = `
UPDATE variables
SET value = baseline_value, current_modified_at = now(), current_modified_by = $2
WHERE id = $1
RETURNING id, workspace_id, clause_id, name, category, value, unit, baseline_value,
          baseline_approved_at, drift_severity, current_modified_at, current_modified_by, created_at
`

type RevertVariableToBaselineParams struct {
	ID         int64
	ModifiedBy string
}

func (q *Queries) RevertVariableToBaseline(ctx context.Context, arg RevertVariableToBaselineParams) (Variable, error) {
	row := q.db.QueryRow(ctx, revertVariableToBaseline, arg.ID, arg.ModifiedBy)
	var v Variable
	err := row.Scan(
		&v.ID, &v.WorkspaceID, &v.ClauseID, &v.Name, &v.Category, &v.Value, &v.Unit,
		&v.BaselineValue, &v.BaselineApprovedAt, &v.DriftSeverity,
		&v.CurrentModifiedAt, &v.CurrentModifiedBy, &v.CreatedAt,
	)
	return v, err
}
