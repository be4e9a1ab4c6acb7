package golden

import (
	"encoding/json"
	"time"

	"github.com/invopop/jsonschema"
)

// ExportClause is a clause as it appears in the downstream snapshot.
type ExportClause struct {
	ID        string `json:"id"`
	Heading   string `json:"heading"`
	Category  string `json:"category" jsonschema:"enum=financial,enum=covenant,enum=definition,enum=xref"`
	Body      string `json:"body"`
	Sensitive bool   `json:"sensitive"`
}

// ExportVariable is a bound variable with its baseline context.
type ExportVariable struct {
	ID            string `json:"id"`
	ClauseID      string `json:"clauseId"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	Value         string `json:"value"`
	Unit          string `json:"unit,omitempty"`
	BaselineValue string `json:"baselineValue"`
	Drifted       bool   `json:"drifted"`
}

// ExportCovenant summarizes a covenant-category variable for systems that
// only track covenant headroom.
type ExportCovenant struct {
	Name      string `json:"name"`
	Threshold string `json:"threshold"`
	Baseline  string `json:"baseline"`
	Unit      string `json:"unit,omitempty"`
	Drifted   bool   `json:"drifted"`
}

// ExportDocument is the Golden Record payload handed to downstream
// connectors.
type ExportDocument struct {
	WorkspaceID    string           `json:"workspaceId"`
	WorkspaceName  string           `json:"workspaceName"`
	GeneratedAt    time.Time        `json:"generatedAt"`
	IntegrityScore int              `json:"integrityScore" jsonschema:"minimum=0,maximum=100"`
	Clauses        []ExportClause   `json:"clauses"`
	Variables      []ExportVariable `json:"variables"`
	Covenants      []ExportCovenant `json:"covenants"`
}

// Covenants derives the covenant summary from the snapshot's variables.
func Covenants(variables []ExportVariable) []ExportCovenant {
	out := make([]ExportCovenant, 0)
	for _, v := range variables {
		if v.Category != "covenant" {
			continue
		}
		out = append(out, ExportCovenant{
			Name:      v.Name,
			Threshold: v.Value,
			Baseline:  v.BaselineValue,
			Unit:      v.Unit,
			Drifted:   v.Drifted,
		})
	}
	return out
}

// Snapshot renders the document as indented JSON, the shape stored in S3 and
// offered for download.
func Snapshot(doc ExportDocument) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// SchemaJSON reflects the JSON Schema of the export document. Stored on the
// Golden Record so downstream consumers can validate without importing this
// module.
func SchemaJSON() ([]byte, error) {
	reflector := jsonschema.Reflector{ExpandedStruct: true}
	schema := reflector.Reflect(&ExportDocument{})
	return json.Marshal(schema)
}
