package util

import "testing"

func TestNormalizeSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
		valid bool
	}{
		{"empty means no filter", "", "", true},
		{"canonical passes", "HIGH", "HIGH", true},
		{"lowercase is normalized", "medium", "MEDIUM", true},
		{"surrounding space is trimmed", " low ", "LOW", true},
		{"unknown severity rejected", "CRITICAL", "CRITICAL", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, valid := NormalizeSeverity(tc.input)
			if got != tc.want || valid != tc.valid {
				t.Fatalf("NormalizeSeverity(%q) = %q, %v, want %q, %v", tc.input, got, valid, tc.want, tc.valid)
			}
		})
	}
}

func TestNormalizeStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
		valid bool
	}{
		{"empty means no filter", "", "", true},
		{"canonical passes", "unresolved", "unresolved", true},
		{"uppercase is normalized", "OVERRIDDEN", "overridden", true},
		{"unknown status rejected", "pending", "pending", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, valid := NormalizeStatus(tc.input)
			if got != tc.want || valid != tc.valid {
				t.Fatalf("NormalizeStatus(%q) = %q, %v, want %q, %v", tc.input, got, valid, tc.want, tc.valid)
			}
		})
	}
}
