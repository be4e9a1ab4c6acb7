package graph

import "testing"

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		total   int
		drifted int
		warned  int
		want    int
	}{
		{
			name:  "empty_graph_is_healthy",
			total: 0,
			want:  100,
		},
		{
			name:  "clean_graph_is_healthy",
			total: 12,
			want:  100,
		},
		{
			name:    "two_drifts_one_warning_of_ten",
			total:   10,
			drifted: 2,
			warned:  1,
			want:    92,
		},
		{
			name:    "everything_flagged_floors_at_fifty",
			total:   4,
			drifted: 4,
			warned:  4,
			want:    50,
		},
		{
			name:    "half_drifted",
			total:   8,
			drifted: 4,
			want:    85,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.total, tc.drifted, tc.warned)
			if got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
			if got < 0 || got > 100 {
				t.Fatalf("score %d out of range", got)
			}
		})
	}
}

func TestIntegrityScoreCountsFlags(t *testing.T) {
	t.Parallel()

	nodes := make([]Node, 10)
	nodes[0].HasDrift = true
	nodes[3].HasDrift = true
	nodes[7].HasWarning = true

	if got := IntegrityScore(nodes); got != 92 {
		t.Fatalf("got %d, want 92", got)
	}
}
