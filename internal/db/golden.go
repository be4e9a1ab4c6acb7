package db

import (
	"context"
	"encoding/json"
)

const goldenRecordColumns = `
id, workspace_id, status, integrity_score, unresolved_high_drift_count,
last_export_at, last_publish_at, schema_json, updated_at
`

func scanGoldenRecord(row interface{ Scan(dest ...any) error }) (GoldenRecord, error) {
	var g GoldenRecord
	err := row.Scan(
		&g.ID, &g.WorkspaceID, &g.Status, &g.IntegrityScore,
		&g.UnresolvedHighDriftCount, &g.LastExportAt, &g.LastPublishAt,
		&g.SchemaJson, &g.UpdatedAt,
	)
	return g, err
}

const upsertGoldenRecord = `
INSERT INTO golden_records (workspace_id, status, integrity_score, unresolved_high_drift_count)
VALUES ($1, $2, $3, $4)
ON CONFLICT (workspace_id) DO UPDATE
SET status = EXCLUDED.status,
    integrity_score = EXCLUDED.integrity_score,
    unresolved_high_drift_count = EXCLUDED.unresolved_high_drift_count,
    updated_at = now()
RETURNING ` + goldenRecordColumns

type UpsertGoldenRecordParams struct {
	WorkspaceID              int64
	Status                   string
	IntegrityScore           int32
	UnresolvedHighDriftCount int32
}

// UpsertGoldenRecord lazily creates the record on first access and refreshes
// the derived fields on every access afterwards.
func (q *Queries) UpsertGoldenRecord(ctx context.Context, arg UpsertGoldenRecordParams) (GoldenRecord, error) {
	return scanGoldenRecord(q.db.QueryRow(ctx, upsertGoldenRecord,
		arg.WorkspaceID, arg.Status, arg.IntegrityScore, arg.UnresolvedHighDriftCount,
	))
}

const stampGoldenExport = `
UPDATE golden_records
SET last_export_at = now(), schema_json = $2, updated_at = now()
WHERE workspace_id = $1
RETURNING ` + goldenRecordColumns

type StampGoldenExportParams struct {
	WorkspaceID int64
	SchemaJson  json.RawMessage
}

func (q *Queries) StampGoldenExport(ctx context.Context, arg StampGoldenExportParams) (GoldenRecord, error) {
	return scanGoldenRecord(q.db.QueryRow(ctx, stampGoldenExport, arg.WorkspaceID, arg.SchemaJson))
}

const stampGoldenPublish = `
UPDATE golden_records
SET last_publish_at = now(), updated_at = now()
WHERE workspace_id = $1
RETURNING ` + goldenRecordColumns

func (q *Queries) StampGoldenPublish(ctx context.Context, workspaceID int64) (GoldenRecord, error) {
	return scanGoldenRecord(q.db.QueryRow(ctx, stampGoldenPublish, workspaceID))
}

const getConnectors = `
SELECT id, workspace_id, name, system, status, last_sync_at
FROM downstream_connectors
WHERE workspace_id = $1
ORDER BY name
`

func (q *Queries) GetConnectors(ctx context.Context, workspaceID int64) ([]DownstreamConnector, error) {
	rows, err := q.db.Query(ctx, getConnectors, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []DownstreamConnector
	for rows.Next() {
		var c DownstreamConnector
		if err := rows.Scan(&c.ID, &c.WorkspaceID, &c.Name, &c.System, &c.Status, &c.LastSyncAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const markConnectorsReady = `
UPDATE downstream_connectors
SET status = 'READY', last_sync_at = now()
WHERE workspace_id = $1
RETURNING id, workspace_id, name, system, status, last_sync_at
`

func (q *Queries) MarkConnectorsReady(ctx context.Context, workspaceID int64) ([]DownstreamConnector, error) {
	rows, err := q.db.Query(ctx, markConnectorsReady, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []DownstreamConnector
	for rows.Next() {
		var c DownstreamConnector
		if err := rows.Scan(&c.ID, &c.WorkspaceID, &c.Name, &c.System, &c.Status, &c.LastSyncAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
