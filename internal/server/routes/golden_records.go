package routes

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/clausewise/backend/internal/audit"
	"github.com/clausewise/backend/internal/db"
	"github.com/clausewise/backend/internal/server/middleware"
	"github.com/clausewise/backend/internal/storage"
	"github.com/clausewise/backend/pkg/golden"
	"github.com/clausewise/backend/pkg/logger"
)

// GetGoldenRecordHandler returns the workspace's Golden Record. Status, score
// and the high-drift count are recomputed on every read and the stored row is
// refreshed to match; a first read lazily creates the row.
func GetGoldenRecordHandler(c echo.Context) error {
	type goldenParams struct {
		WorkspaceID int64 `param:"workspaceId" validate:"required,numeric"`
	}

	type goldenResponse struct {
		GoldenRecord db.GoldenRecord          `json:"goldenRecord"`
		Connectors   []db.DownstreamConnector `json:"connectors"`
	}

	data := new(goldenParams)
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

	gate, err := computePublishGate(ctx, q, data.WorkspaceID)
	if err != nil {
		logger.Error("Failed to compute publish gate", "err", err)
		return internalError(c)
	}

	record, err := q.UpsertGoldenRecord(ctx, db.UpsertGoldenRecordParams{
		WorkspaceID:              data.WorkspaceID,
		Status:                   gate.Status,
		IntegrityScore:           int32(gate.IntegrityScore),
		UnresolvedHighDriftCount: int32(gate.UnresolvedHighDriftCount),
	})
	if err != nil {
		logger.Error("Failed to refresh golden record", "err", err)
		return internalError(c)
	}

	connectors, err := q.GetConnectors(ctx, data.WorkspaceID)
	if err != nil {
		logger.Error("Failed to load connectors", "err", err)
		return internalError(c)
	}
	if connectors == nil {
		connectors = []db.DownstreamConnector{}
	}

	return c.JSON(200, goldenResponse{GoldenRecord: record, Connectors: connectors})
}

// ExportGoldenRecordHandler renders the JSON snapshot, uploads it to object
// storage and stamps the export. Export is allowed in any status; the gate
// only guards publishing.
func ExportGoldenRecordHandler(c echo.Context) error {
	type exportParams struct {
		WorkspaceID int64 `param:"workspaceId" validate:"required,numeric"`
	}

	type exportResponse struct {
		Message      string          `json:"message"`
		Snapshot     json.RawMessage `json:"snapshot"`
		ObjectKey    string          `json:"objectKey,omitempty"`
		DownloadURL  string          `json:"downloadUrl,omitempty"`
		GoldenRecord db.GoldenRecord `json:"goldenRecord"`
	}

	data := new(exportParams)
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

	gate, err := computePublishGate(ctx, q, ws.ID)
	if err != nil {
		logger.Error("Failed to compute publish gate", "err", err)
		return internalError(c)
	}

	clauses, err := q.GetClausesByWorkspace(ctx, ws.ID)
	if err != nil {
		logger.Error("Failed to load clauses", "err", err)
		return internalError(c)
	}
	variables, err := q.GetVariablesByWorkspace(ctx, ws.ID)
	if err != nil {
		logger.Error("Failed to load variables", "err", err)
		return internalError(c)
	}

	doc := golden.ExportDocument{
		WorkspaceID:    ws.PublicID,
		WorkspaceName:  ws.Name,
		GeneratedAt:    time.Now().UTC(),
		IntegrityScore: gate.IntegrityScore,
		Clauses:        make([]golden.ExportClause, 0, len(clauses)),
		Variables:      make([]golden.ExportVariable, 0, len(variables)),
	}
	for _, cl := range clauses {
		doc.Clauses = append(doc.Clauses, golden.ExportClause{
			ID:        strconv.FormatInt(cl.ID, 10),
			Heading:   cl.Heading,
			Category:  cl.Category,
			Body:      cl.Body,
			Sensitive: cl.Sensitive,
		})
	}
	for _, v := range variables {
		doc.Variables = append(doc.Variables, golden.ExportVariable{
			ID:            strconv.FormatInt(v.ID, 10),
			ClauseID:      strconv.FormatInt(v.ClauseID, 10),
			Name:          v.Name,
			Category:      v.Category,
			Value:         v.Value,
			Unit:          v.Unit,
			BaselineValue: v.BaselineValue,
			Drifted:       v.Value != v.BaselineValue,
		})
	}
	doc.Covenants = golden.Covenants(doc.Variables)

	snapshot, err := golden.Snapshot(doc)
	if err != nil {
		logger.Error("Failed to render snapshot", "err", err)
		return internalError(c)
	}
	schema, err := golden.SchemaJSON()
	if err != nil {
		logger.Error("Failed to reflect export schema", "err", err)
		return internalError(c)
	}

	// Upload is best effort: the snapshot is returned inline either way.
	var objectKey, downloadURL string
	if app.S3 != nil {
		exportID, err := gonanoid.New()
		if err != nil {
			logger.Error("Failed to generate export id", "err", err)
			return internalError(c)
		}
		objectKey, err = storage.PutExport(ctx, app.S3, ws.ID, exportID, snapshot)
		if err != nil {
			logger.Warn("Failed to upload export", "workspaceId", ws.ID, "err", err)
			objectKey = ""
		} else {
			downloadURL, err = storage.PresignDownload(ctx, app.S3, objectKey)
			if err != nil {
				logger.Warn("Failed to presign export download", "err", err)
				downloadURL = ""
			}
		}
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		logger.Error("Failed to begin transaction", "err", err)
		return internalError(c)
	}
	defer tx.Rollback(ctx)
	qtx := q.WithTx(tx)

	if _, err := qtx.UpsertGoldenRecord(ctx, db.UpsertGoldenRecordParams{
		WorkspaceID:              ws.ID,
		Status:                   gate.Status,
		IntegrityScore:           int32(gate.IntegrityScore),
		UnresolvedHighDriftCount: int32(gate.UnresolvedHighDriftCount),
	}); err != nil {
		logger.Error("Failed to refresh golden record", "err", err)
		return internalError(c)
	}

	record, err := qtx.StampGoldenExport(ctx, db.StampGoldenExportParams{
		WorkspaceID: ws.ID,
		SchemaJson:  schema,
	})
	if err != nil {
		logger.Error("Failed to stamp export", "err", err)
		return internalError(c)
	}

	auditRow, err := audit.Record(ctx, qtx, actorFromUser(user), audit.Entry{
		WorkspaceID: ws.ID,
		EventType:   audit.EventExportJSON,
		TargetType:  audit.TargetWorkspace,
		TargetID:    ws.PublicID,
		After: map[string]any{
			"integrityScore": gate.IntegrityScore,
			"status":         gate.Status,
			"objectKey":      objectKey,
		},
	})
	if err != nil {
		logger.Error("Failed to record audit event", "err", err)
		return internalError(c)
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Failed to commit export", "err", err)
		return internalError(c)
	}

	audit.Fanout(app.Queue, auditRow)

	return c.JSON(200, exportResponse{
		Message:      "export generated",
		Snapshot:     snapshot,
		ObjectKey:    objectKey,
		DownloadURL:  downloadURL,
		GoldenRecord: record,
	})
}

// PublishGoldenRecordHandler pushes the Golden Record downstream. A workspace
// that computes to IN_REVIEW is rejected outright; nothing is committed on a
// failed attempt.
func PublishGoldenRecordHandler(c echo.Context) error {
	type publishRequest struct {
		WorkspaceID    int64  `param:"workspaceId" validate:"required,numeric"`
		Reason         string `json:"reason"`
		ReasonCategory string `json:"reasonCategory"`
	}

	type publishResponse struct {
		Message      string                   `json:"message"`
		GoldenRecord db.GoldenRecord          `json:"goldenRecord"`
		Connectors   []db.DownstreamConnector `json:"connectors"`
	}

	data := new(publishRequest)
	if err := c.Bind(data); err != nil {
		return validationError(c, "invalid publish request")
	}
	if err := c.Validate(data); err != nil {
		return validationError(c, "invalid workspace id")
	}
	if strings.TrimSpace(data.Reason) == "" {
		return validationError(c, "reason must not be empty")
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

	tx, err := conn.Begin(ctx)
	if err != nil {
		logger.Error("Failed to begin transaction", "err", err)
		return internalError(c)
	}
	defer tx.Rollback(ctx)
	qtx := q.WithTx(tx)

	gate, err := computePublishGate(ctx, qtx, ws.ID)
	if err != nil {
		logger.Error("Failed to compute publish gate", "err", err)
		return internalError(c)
	}

	if _, err := qtx.UpsertGoldenRecord(ctx, db.UpsertGoldenRecordParams{
		WorkspaceID:              ws.ID,
		Status:                   gate.Status,
		IntegrityScore:           int32(gate.IntegrityScore),
		UnresolvedHighDriftCount: int32(gate.UnresolvedHighDriftCount),
	}); err != nil {
		logger.Error("Failed to refresh golden record", "err", err)
		return internalError(c)
	}

	if gate.Status == golden.StatusInReview {
		// Roll back the refresh too: a failed publish leaves no trace.
		return forbidden(c, golden.PublishBlockedMessage(gate.IntegrityScore, int(gate.UnresolvedHighDriftCount)))
	}

	record, err := qtx.StampGoldenPublish(ctx, ws.ID)
	if err != nil {
		logger.Error("Failed to stamp publish", "err", err)
		return internalError(c)
	}

	connectors, err := qtx.MarkConnectorsReady(ctx, ws.ID)
	if err != nil {
		logger.Error("Failed to mark connectors ready", "err", err)
		return internalError(c)
	}
	if connectors == nil {
		connectors = []db.DownstreamConnector{}
	}

	auditRow, err := audit.Record(ctx, qtx, actorFromUser(user), audit.Entry{
		WorkspaceID:    ws.ID,
		EventType:      audit.EventPublish,
		TargetType:     audit.TargetWorkspace,
		TargetID:       ws.PublicID,
		After:          record,
		Reason:         data.Reason,
		ReasonCategory: data.ReasonCategory,
	})
	if err != nil {
		logger.Error("Failed to record audit event", "err", err)
		return internalError(c)
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Failed to commit publish", "err", err)
		return internalError(c)
	}

	audit.Fanout(app.Queue, auditRow)

	return c.JSON(200, publishResponse{
		Message:      "golden record published",
		GoldenRecord: record,
		Connectors:   connectors,
	})
}
