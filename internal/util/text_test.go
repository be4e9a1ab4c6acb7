package util

import "testing"

func TestTruncatePreview(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		max  int
		want string
	}{
		{
			name: "short_body_unchanged",
			body: "Margin of 2.50% per annum",
			max:  60,
			want: "Margin of 2.50% per annum",
		},
		{
			name: "whitespace_collapsed",
			body: "Leverage  Ratio\n\tshall not exceed",
			max:  60,
			want: "Leverage Ratio shall not exceed",
		},
		{
			name: "cut_at_word_boundary",
			body: "The Borrower shall maintain a Leverage Ratio below four",
			max:  30,
			want: "The Borrower shall maintain a…",
		},
		{
			name: "zero_max_is_empty",
			body: "anything",
			max:  0,
			want: "",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := TruncatePreview(tc.body, tc.max)
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSanitizePostgresText(t *testing.T) {
	t.Parallel()

	got := SanitizePostgresText("base\x00line")
	if got != "baseline" {
		t.Fatalf("got %q, want %q", got, "baseline")
	}
}
