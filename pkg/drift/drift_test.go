package drift

import (
	"errors"
	"testing"
)

func TestShouldCreate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		current  string
		baseline string
		existing []TrackedItem
		want     bool
	}{
		{
			name:     "divergence_with_no_prior_item_creates",
			current:  "275",
			baseline: "250",
			want:     true,
		},
		{
			name:     "value_matching_baseline_never_creates",
			current:  "250",
			baseline: "250",
			want:     false,
		},
		{
			name:     "active_unresolved_item_blocks_duplicate",
			current:  "275",
			baseline: "250",
			existing: []TrackedItem{{Status: StatusUnresolved, CurrentValue: "260"}},
			want:     false,
		},
		{
			name:     "approved_item_for_same_value_blocks",
			current:  "275",
			baseline: "250",
			existing: []TrackedItem{{Status: StatusApproved, CurrentValue: "275"}},
			want:     false,
		},
		{
			name:     "new_divergence_after_approval_creates_fresh_item",
			current:  "300",
			baseline: "250",
			existing: []TrackedItem{{Status: StatusApproved, CurrentValue: "275"}},
			want:     true,
		},
		{
			name:     "reverted_item_does_not_track",
			current:  "275",
			baseline: "250",
			existing: []TrackedItem{{Status: StatusReverted, CurrentValue: "275"}},
			want:     true,
		},
		{
			name:     "override_of_old_value_does_not_block_new_divergence",
			current:  "300",
			baseline: "275",
			existing: []TrackedItem{{Status: StatusOverridden, CurrentValue: "275"}},
			want:     true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := ShouldCreate(tc.current, tc.baseline, tc.existing)
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidateResolution(t *testing.T) {
	t.Parallel()

	if err := ValidateResolution(StatusUnresolved, "negotiated with lender"); err != nil {
		t.Fatalf("valid resolution rejected: %v", err)
	}

	if err := ValidateResolution(StatusUnresolved, "   "); !errors.Is(err, ErrEmptyReason) {
		t.Fatalf("blank reason: got %v, want ErrEmptyReason", err)
	}

	for _, status := range []string{StatusOverridden, StatusReverted, StatusApproved} {
		if err := ValidateResolution(status, "late call"); !errors.Is(err, ErrNotUnresolved) {
			t.Fatalf("terminal status %s: got %v, want ErrNotUnresolved", status, err)
		}
	}
}

func TestDefaultClassifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		requested string
		stored    string
		want      string
	}{
		{name: "requested_wins", requested: "HIGH", stored: "LOW", want: "HIGH"},
		{name: "stored_backs_up_missing_request", requested: "", stored: "LOW", want: "LOW"},
		{name: "garbage_request_falls_through", requested: "SEVERE", stored: "HIGH", want: "HIGH"},
		{name: "medium_is_the_last_resort", requested: "", stored: "", want: "MEDIUM"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := DefaultClassifier(tc.requested, tc.stored)
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
