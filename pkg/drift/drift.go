// Package drift holds the pure rules of the drift state machine: when a
// divergence opens a new item, and which resolutions a tracked item accepts.
// Persistence and authorization live with the HTTP handlers.
package drift

import (
	"errors"
	"strings"
)

// DriftItem statuses. An item is created unresolved and moves exactly once
// into one of the three terminal states.
const (
	StatusUnresolved = "unresolved"
	StatusOverridden = "overridden"
	StatusReverted   = "reverted"
	StatusApproved   = "approved"
)

// Severities are supplied by whoever creates the item; the engine never
// derives them from value magnitude.
const (
	SeverityHigh   = "HIGH"
	SeverityMedium = "MEDIUM"
	SeverityLow    = "LOW"
)

var (
	ErrEmptyReason   = errors.New("reason must not be empty")
	ErrNotUnresolved = errors.New("drift item is no longer unresolved")
)

// Classifier decides the severity of a new item. The default keeps severity
// an external input: an explicitly requested severity wins, then the severity
// stored on the variable, then MEDIUM.
type Classifier func(requested, stored string) string

// DefaultClassifier is the severity fallback chain used by the service.
func DefaultClassifier(requested, stored string) string {
	if ValidSeverity(requested) {
		return requested
	}
	if ValidSeverity(stored) {
		return stored
	}
	return SeverityMedium
}

// ValidSeverity reports whether s is one of the three known severities.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// ValidStatus reports whether s is a known item status.
func ValidStatus(s string) bool {
	switch s {
	case StatusUnresolved, StatusOverridden, StatusReverted, StatusApproved:
		return true
	}
	return false
}

// TrackedItem is the slice of an existing drift row the creation decision
// needs.
type TrackedItem struct {
	Status       string
	CurrentValue string
}

// ShouldCreate reports whether an edit that moved a variable to currentValue
// must open a new unresolved item. No item is opened while the value matches
// the baseline, while an unresolved item already tracks the variable, or
// while a terminal override/approval already covers this exact value. A new
// divergence from a possibly updated baseline opens a fresh item.
func ShouldCreate(currentValue, baselineValue string, existing []TrackedItem) bool {
	if currentValue == baselineValue {
		return false
	}
	for _, item := range existing {
		switch item.Status {
		case StatusUnresolved:
			return false
		case StatusOverridden, StatusApproved:
			if item.CurrentValue == currentValue {
				return false
			}
		}
	}
	return true
}

// ValidateResolution checks an override/revert/approve request against the
// state machine: the reason is mandatory and only unresolved items move.
func ValidateResolution(status, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrEmptyReason
	}
	if status != StatusUnresolved {
		return ErrNotUnresolved
	}
	return nil
}
