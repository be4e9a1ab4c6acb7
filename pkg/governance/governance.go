// Package governance models the per-workspace rule set as an explicit struct
// with named boolean fields. Updates are merge patches: a patch carries only
// the fields it wants to change and everything else stays untouched.
package governance

// Rules are the gating toggles consulted by the sync, drift and publish
// surfaces.
type Rules struct {
	RequireReasonForSensitiveEdits  bool `json:"requireReasonForSensitiveEdits"`
	LegalCanRevertDraft             bool `json:"legalCanRevertDraft"`
	RiskApprovalRequiredForOverride bool `json:"riskApprovalRequiredForOverride"`
	PublishBlockedWhenHighDrift     bool `json:"publishBlockedWhenHighDrift"`
	DefinitionsLockedAfterApproval  bool `json:"definitionsLockedAfterApproval"`
	ExternalCounselReadOnly         bool `json:"externalCounselReadOnly"`
}

// Patch is a partial rule set. Nil fields are left as they are.
type Patch struct {
	RequireReasonForSensitiveEdits  *bool `json:"requireReasonForSensitiveEdits"`
	LegalCanRevertDraft             *bool `json:"legalCanRevertDraft"`
	RiskApprovalRequiredForOverride *bool `json:"riskApprovalRequiredForOverride"`
	PublishBlockedWhenHighDrift     *bool `json:"publishBlockedWhenHighDrift"`
	DefinitionsLockedAfterApproval  *bool `json:"definitionsLockedAfterApproval"`
	ExternalCounselReadOnly         *bool `json:"externalCounselReadOnly"`
}

// Defaults returns the rule set a workspace starts with.
func Defaults() Rules {
	return Rules{
		RequireReasonForSensitiveEdits:  true,
		LegalCanRevertDraft:             false,
		RiskApprovalRequiredForOverride: false,
		PublishBlockedWhenHighDrift:     true,
		DefinitionsLockedAfterApproval:  true,
		ExternalCounselReadOnly:         true,
	}
}

// Merge overlays the supplied fields of p onto r.
func Merge(r Rules, p Patch) Rules {
	if p.RequireReasonForSensitiveEdits != nil {
		r.RequireReasonForSensitiveEdits = *p.RequireReasonForSensitiveEdits
	}
	if p.LegalCanRevertDraft != nil {
		r.LegalCanRevertDraft = *p.LegalCanRevertDraft
	}
	if p.RiskApprovalRequiredForOverride != nil {
		r.RiskApprovalRequiredForOverride = *p.RiskApprovalRequiredForOverride
	}
	if p.PublishBlockedWhenHighDrift != nil {
		r.PublishBlockedWhenHighDrift = *p.PublishBlockedWhenHighDrift
	}
	if p.DefinitionsLockedAfterApproval != nil {
		r.DefinitionsLockedAfterApproval = *p.DefinitionsLockedAfterApproval
	}
	if p.ExternalCounselReadOnly != nil {
		r.ExternalCounselReadOnly = *p.ExternalCounselReadOnly
	}
	return r
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.RequireReasonForSensitiveEdits == nil &&
		p.LegalCanRevertDraft == nil &&
		p.RiskApprovalRequiredForOverride == nil &&
		p.PublishBlockedWhenHighDrift == nil &&
		p.DefinitionsLockedAfterApproval == nil &&
		p.ExternalCounselReadOnly == nil
}

// Roles known to the enforcement helpers.
const (
	RoleAdmin   = "admin"
	RoleRisk    = "risk"
	RoleCredit  = "credit"
	RoleLegal   = "legal"
	RoleCounsel = "counsel"
)

// WriteBlockedForRole reports whether the rules make the role read-only.
func WriteBlockedForRole(r Rules, role string) bool {
	return r.ExternalCounselReadOnly && role == RoleCounsel
}

// EditNeedsReason reports whether an edit to the given clause demands a
// non-empty reason.
func EditNeedsReason(r Rules, sensitive bool) bool {
	return r.RequireReasonForSensitiveEdits && sensitive
}

// DefinitionLocked reports whether a definition-category clause is frozen for
// the role. Admins stay exempt so a locked workspace can still be repaired.
func DefinitionLocked(r Rules, category, role string, baselineApproved bool) bool {
	if !r.DefinitionsLockedAfterApproval || !baselineApproved {
		return false
	}
	if category != "definition" {
		return false
	}
	return role != RoleAdmin
}

// CanOverride reports whether the role may override a baseline under the
// rules.
func CanOverride(r Rules, role string) bool {
	if !r.RiskApprovalRequiredForOverride {
		return true
	}
	return role == RoleRisk || role == RoleAdmin
}

// CanRevert reports whether the role may revert a draft under the rules.
func CanRevert(r Rules, role string) bool {
	if role == RoleAdmin {
		return true
	}
	return r.LegalCanRevertDraft && role == RoleLegal
}

// CanApprove reports whether the role may formally accept a deviation.
// Approval always needs the risk or credit desk.
func CanApprove(role string) bool {
	return role == RoleRisk || role == RoleCredit || role == RoleAdmin
}
