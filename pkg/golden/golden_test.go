package golden

import (
	"strings"
	"testing"
)

func TestStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		score   int
		high    int
		blockHD bool
		want    string
	}{
		{
			name:    "healthy_workspace_is_ready",
			score:   95,
			high:    0,
			blockHD: true,
			want:    StatusReady,
		},
		{
			name:    "low_score_forces_review",
			score:   87,
			high:    2,
			blockHD: true,
			want:    StatusInReview,
		},
		{
			name:    "threshold_is_inclusive",
			score:   90,
			high:    0,
			blockHD: true,
			want:    StatusReady,
		},
		{
			name:    "high_drift_forces_review",
			score:   98,
			high:    1,
			blockHD: true,
			want:    StatusInReview,
		},
		{
			name:    "disabled_block_ignores_high_drift",
			score:   98,
			high:    1,
			blockHD: false,
			want:    StatusReady,
		},
		{
			name:    "disabled_block_still_gates_on_score",
			score:   89,
			high:    0,
			blockHD: false,
			want:    StatusInReview,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Status(tc.score, tc.high, tc.blockHD)
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPublishBlockedMessageNamesTheNumbers(t *testing.T) {
	t.Parallel()

	msg := PublishBlockedMessage(87, 2)
	if !strings.Contains(msg, "integrityScore=87") {
		t.Fatalf("message misses score: %q", msg)
	}
	if !strings.Contains(msg, "unresolvedHighDriftCount=2") {
		t.Fatalf("message misses drift count: %q", msg)
	}
}

func TestCovenantsFiltersByCategory(t *testing.T) {
	t.Parallel()

	variables := []ExportVariable{
		{Name: "leverage_max", Category: "covenant", Value: "4.25", BaselineValue: "4.00", Unit: "x", Drifted: true},
		{Name: "margin", Category: "financial", Value: "250", BaselineValue: "250"},
		{Name: "interest_cover_min", Category: "covenant", Value: "3.00", BaselineValue: "3.00"},
	}

	covs := Covenants(variables)
	if len(covs) != 2 {
		t.Fatalf("got %d covenants, want 2", len(covs))
	}
	if covs[0].Name != "leverage_max" || !covs[0].Drifted {
		t.Fatalf("unexpected first covenant: %+v", covs[0])
	}
	if covs[1].Name != "interest_cover_min" || covs[1].Drifted {
		t.Fatalf("unexpected second covenant: %+v", covs[1])
	}
}

func TestSchemaJSONIsValidSchema(t *testing.T) {
	t.Parallel()

	raw, err := SchemaJSON()
	if err != nil {
		t.Fatalf("SchemaJSON: %v", err)
	}
	s := string(raw)
	for _, want := range []string{"workspaceId", "integrityScore", "covenants"} {
		if !strings.Contains(s, want) {
			t.Fatalf("schema misses %q: %s", want, s)
		}
	}
}
