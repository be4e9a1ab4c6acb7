package graph

import "math"

// Penalty weights for the integrity score. A fully drifted graph loses 30
// points, a fully warned graph 20.
const (
	driftPenaltyWeight   = 30.0
	warningPenaltyWeight = 20.0
)

// Score computes the 0-100 integrity score from node flag counts. An empty
// graph is perfectly healthy.
func Score(total, drifted, warned int) int {
	if total <= 0 {
		return 100
	}

	driftPenalty := float64(drifted) / float64(total) * driftPenaltyWeight
	warningPenalty := float64(warned) / float64(total) * warningPenaltyWeight

	score := int(math.Round(100 - driftPenalty - warningPenalty))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// IntegrityScore scores a built arena's nodes.
func IntegrityScore(nodes []Node) int {
	drifted := 0
	warned := 0
	for _, n := range nodes {
		if n.HasDrift {
			drifted++
		}
		if n.HasWarning {
			warned++
		}
	}
	return Score(len(nodes), drifted, warned)
}
