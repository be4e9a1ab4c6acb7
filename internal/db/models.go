package db

import (
	"encoding/json"
	"time"
)

type Workspace struct {
	ID                 int64      `json:"id"`
	PublicID           string     `json:"publicId"`
	Name               string     `json:"name"`
	LastSyncAt         *time.Time `json:"lastSyncAt"`
	BaselineApprovedAt *time.Time `json:"baselineApprovedAt"`
	CreatedAt          time.Time  `json:"createdAt"`
}

type Clause struct {
	ID           int64      `json:"id"`
	WorkspaceID  int64      `json:"workspaceId"`
	Heading      string     `json:"heading"`
	Body         string     `json:"body"`
	Category     string     `json:"category"`
	Sensitive    bool       `json:"sensitive"`
	SortOrder    int32      `json:"sortOrder"`
	LastEditedAt *time.Time `json:"lastEditedAt"`
	LastEditedBy *string    `json:"lastEditedBy"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type Variable struct {
	ID                 int64      `json:"id"`
	WorkspaceID        int64      `json:"workspaceId"`
	ClauseID           int64      `json:"clauseId"`
	Name               string     `json:"name"`
	Category           string     `json:"category"`
	Value              string     `json:"value"`
	Unit               string     `json:"unit"`
	BaselineValue      string     `json:"baselineValue"`
	BaselineApprovedAt *time.Time `json:"baselineApprovedAt"`
	DriftSeverity      string     `json:"driftSeverity"`
	CurrentModifiedAt  *time.Time `json:"currentModifiedAt"`
	CurrentModifiedBy  *string    `json:"currentModifiedBy"`
	CreatedAt          time.Time  `json:"createdAt"`
}

type GraphNode struct {
	ID           int64   `json:"id"`
	PublicID     string  `json:"publicId"`
	WorkspaceID  int64   `json:"workspaceId"`
	Label        string  `json:"label"`
	Category     string  `json:"category"`
	ClauseID     *int64  `json:"clauseId"`
	VariableID   *int64  `json:"variableId"`
	DisplayValue *string `json:"displayValue"`
	HasDrift     bool    `json:"hasDrift"`
	HasWarning   bool    `json:"hasWarning"`
}

type GraphEdge struct {
	ID           int64 `json:"id"`
	WorkspaceID  int64 `json:"workspaceId"`
	SourceNodeID int64 `json:"sourceNodeId"`
	TargetNodeID int64 `json:"targetNodeId"`
	Weight       int32 `json:"weight"`
}

type GraphState struct {
	WorkspaceID    int64     `json:"workspaceId"`
	IntegrityScore int32     `json:"integrityScore"`
	LastComputedAt time.Time `json:"lastComputedAt"`
}

type DriftItem struct {
	ID                 int64      `json:"id"`
	PublicID           string     `json:"publicId"`
	WorkspaceID        int64      `json:"workspaceId"`
	ClauseID           int64      `json:"clauseId"`
	VariableID         *int64     `json:"variableId"`
	BaselineValue      string     `json:"baselineValue"`
	BaselineApprovedAt *time.Time `json:"baselineApprovedAt"`
	CurrentValue       string     `json:"currentValue"`
	CurrentModifiedAt  time.Time  `json:"currentModifiedAt"`
	CurrentModifiedBy  string     `json:"currentModifiedBy"`
	Severity           string     `json:"severity"`
	Status             string     `json:"status"`
	ApprovedBy         *string    `json:"approvedBy"`
	ApprovedAt         *time.Time `json:"approvedAt"`
	ApprovalReason     *string    `json:"approvalReason"`
	ReasonCategory     *string    `json:"reasonCategory"`
	CreatedAt          time.Time  `json:"createdAt"`
}

type GoldenRecord struct {
	ID                       int64           `json:"id"`
	WorkspaceID              int64           `json:"workspaceId"`
	Status                   string          `json:"status"`
	IntegrityScore           int32           `json:"integrityScore"`
	UnresolvedHighDriftCount int32           `json:"unresolvedHighDriftCount"`
	LastExportAt             *time.Time      `json:"lastExportAt"`
	LastPublishAt            *time.Time      `json:"lastPublishAt"`
	SchemaJson               json.RawMessage `json:"schemaJson"`
	UpdatedAt                time.Time       `json:"updatedAt"`
}

type DownstreamConnector struct {
	ID          int64      `json:"id"`
	WorkspaceID int64      `json:"workspaceId"`
	Name        string     `json:"name"`
	System      string     `json:"system"`
	Status      string     `json:"status"`
	LastSyncAt  *time.Time `json:"lastSyncAt"`
}

type GovernanceRule struct {
	WorkspaceID                     int64     `json:"workspaceId"`
	RequireReasonForSensitiveEdits  bool      `json:"requireReasonForSensitiveEdits"`
	LegalCanRevertDraft             bool      `json:"legalCanRevertDraft"`
	RiskApprovalRequiredForOverride bool      `json:"riskApprovalRequiredForOverride"`
	PublishBlockedWhenHighDrift     bool      `json:"publishBlockedWhenHighDrift"`
	DefinitionsLockedAfterApproval  bool      `json:"definitionsLockedAfterApproval"`
	ExternalCounselReadOnly         bool      `json:"externalCounselReadOnly"`
	UpdatedAt                       time.Time `json:"updatedAt"`
}

type AuditEvent struct {
	ID             int64           `json:"id"`
	WorkspaceID    *int64          `json:"workspaceId"`
	ActorID        string          `json:"actorId"`
	ActorName      string          `json:"actorName"`
	EventType      string          `json:"eventType"`
	TargetType     *string         `json:"targetType"`
	TargetID       *string         `json:"targetId"`
	BeforeState    json.RawMessage `json:"beforeState"`
	AfterState     json.RawMessage `json:"afterState"`
	Reason         *string         `json:"reason"`
	ReasonCategory *string         `json:"reasonCategory"`
	CreatedAt      time.Time       `json:"createdAt"`
}
