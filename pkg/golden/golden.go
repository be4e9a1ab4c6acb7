// Package golden computes the publish gate for a workspace's Golden Record
// and renders the exportable snapshot. The READY/IN_REVIEW status is a pure
// function of the latest integrity score and unresolved HIGH drift count; it
// is recomputed on every read and never trusted from storage.
package golden

import "fmt"

// Golden Record statuses.
const (
	StatusReady    = "READY"
	StatusInReview = "IN_REVIEW"
)

// Downstream connector statuses.
const (
	ConnectorReady   = "READY"
	ConnectorPending = "PENDING"
)

// Integrity threshold a workspace has to clear before it may publish.
const readyScoreThreshold = 90

// Status derives READY/IN_REVIEW. When the workspace has disabled the
// high-drift publish block, open HIGH drifts stop counting against readiness
// and only the integrity score gates.
func Status(integrityScore, unresolvedHighDrift int, blockOnHighDrift bool) string {
	if integrityScore < readyScoreThreshold {
		return StatusInReview
	}
	if blockOnHighDrift && unresolvedHighDrift > 0 {
		return StatusInReview
	}
	return StatusReady
}

// PublishBlockedMessage is the FORBIDDEN message for a publish attempt on an
// IN_REVIEW workspace. It names the offending numbers so the caller can
// remediate.
func PublishBlockedMessage(integrityScore, unresolvedHighDrift int) string {
	return fmt.Sprintf(
		"workspace is IN_REVIEW and cannot be published: integrityScore=%d (needs >= %d), unresolvedHighDriftCount=%d (needs 0)",
		integrityScore, readyScoreThreshold, unresolvedHighDrift,
	)
}
