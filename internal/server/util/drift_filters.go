package util

import (
	"strings"

	"github.com/clausewise/backend/pkg/drift"
)

// NormalizeSeverity maps a client-supplied severity filter onto the canonical
// uppercase form. An empty string means "no filter" and stays valid.
func NormalizeSeverity(s string) (string, bool) {
	if s == "" {
		return "", true
	}
	normalized := strings.ToUpper(strings.TrimSpace(s))
	return normalized, drift.ValidSeverity(normalized)
}

// NormalizeStatus maps a client-supplied status filter onto the canonical
// lowercase form. An empty string means "no filter" and stays valid.
func NormalizeStatus(s string) (string, bool) {
	if s == "" {
		return "", true
	}
	normalized := strings.ToLower(strings.TrimSpace(s))
	return normalized, drift.ValidStatus(normalized)
}
