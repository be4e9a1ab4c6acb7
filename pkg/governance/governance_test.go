package governance

import "testing"

func boolPtr(b bool) *bool { return &b }

func TestMergeTouchesOnlySuppliedFields(t *testing.T) {
	t.Parallel()

	base := Defaults()
	merged := Merge(base, Patch{
		LegalCanRevertDraft:         boolPtr(true),
		PublishBlockedWhenHighDrift: boolPtr(false),
	})

	if !merged.LegalCanRevertDraft {
		t.Fatal("patched field not applied")
	}
	if merged.PublishBlockedWhenHighDrift {
		t.Fatal("patched field not applied")
	}
	if merged.RequireReasonForSensitiveEdits != base.RequireReasonForSensitiveEdits {
		t.Fatal("unpatched field changed")
	}
	if merged.DefinitionsLockedAfterApproval != base.DefinitionsLockedAfterApproval {
		t.Fatal("unpatched field changed")
	}
	if merged.ExternalCounselReadOnly != base.ExternalCounselReadOnly {
		t.Fatal("unpatched field changed")
	}
}

func TestMergeEmptyPatchIsNoop(t *testing.T) {
	t.Parallel()

	base := Defaults()
	p := Patch{}
	if !p.Empty() {
		t.Fatal("zero patch must report Empty")
	}
	if got := Merge(base, p); got != base {
		t.Fatalf("got %+v, want %+v", got, base)
	}
}

func TestWriteBlockedForRole(t *testing.T) {
	t.Parallel()

	rules := Defaults()
	if !WriteBlockedForRole(rules, RoleCounsel) {
		t.Fatal("counsel must be read-only by default")
	}
	if WriteBlockedForRole(rules, RoleLegal) {
		t.Fatal("legal must not be blocked")
	}

	rules.ExternalCounselReadOnly = false
	if WriteBlockedForRole(rules, RoleCounsel) {
		t.Fatal("disabled rule must not block counsel")
	}
}

func TestDefinitionLocked(t *testing.T) {
	t.Parallel()

	rules := Defaults()

	if !DefinitionLocked(rules, "definition", RoleLegal, true) {
		t.Fatal("approved baseline must lock definitions")
	}
	if DefinitionLocked(rules, "definition", RoleAdmin, true) {
		t.Fatal("admin must stay exempt")
	}
	if DefinitionLocked(rules, "financial", RoleLegal, true) {
		t.Fatal("lock only applies to definition clauses")
	}
	if DefinitionLocked(rules, "definition", RoleLegal, false) {
		t.Fatal("no lock before the baseline is approved")
	}
}

func TestResolutionRoleGates(t *testing.T) {
	t.Parallel()

	rules := Defaults()

	// Override is open until risk approval is switched on.
	if !CanOverride(rules, RoleLegal) {
		t.Fatal("override must be open by default")
	}
	rules.RiskApprovalRequiredForOverride = true
	if CanOverride(rules, RoleLegal) {
		t.Fatal("gated override must demand the risk desk")
	}
	if !CanOverride(rules, RoleRisk) || !CanOverride(rules, RoleAdmin) {
		t.Fatal("risk and admin must pass the override gate")
	}

	// Revert defaults to admin only.
	if CanRevert(rules, RoleLegal) {
		t.Fatal("legal revert must be off by default")
	}
	rules.LegalCanRevertDraft = true
	if !CanRevert(rules, RoleLegal) {
		t.Fatal("enabled rule must let legal revert")
	}
	if !CanRevert(rules, RoleAdmin) {
		t.Fatal("admin override must always revert")
	}

	// Approval is risk/credit territory regardless of rules.
	if CanApprove(RoleLegal) {
		t.Fatal("legal must not approve deviations")
	}
	if !CanApprove(RoleRisk) || !CanApprove(RoleCredit) {
		t.Fatal("risk and credit must approve")
	}
}
