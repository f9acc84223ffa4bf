package services

import "testing"

func TestEntitlementRequiresAuthenticationFirst(t *testing.T) {
	if got := EvaluateEntitlement(false, true, 0, 100); got != DecisionRequireAuthentication {
		t.Fatalf("got %s, want %s", got, DecisionRequireAuthentication)
	}
	if got := EvaluateEntitlement(false, false, 99, 5); got != DecisionRequireAuthentication {
		t.Fatalf("got %s, want %s", got, DecisionRequireAuthentication)
	}
}

func TestEntitlementRequiresUpgradeForUnpaid(t *testing.T) {
	if got := EvaluateEntitlement(true, false, 0, 5); got != DecisionRequireUpgrade {
		t.Fatalf("got %s, want %s", got, DecisionRequireUpgrade)
	}
}

func TestEntitlementUsageCeiling(t *testing.T) {
	if got := EvaluateEntitlement(true, true, 5, 5); got != DecisionRequireUsageReset {
		t.Fatalf("at limit: got %s, want %s", got, DecisionRequireUsageReset)
	}
	if got := EvaluateEntitlement(true, true, 6, 5); got != DecisionRequireUsageReset {
		t.Fatalf("over limit: got %s, want %s", got, DecisionRequireUsageReset)
	}
	if got := EvaluateEntitlement(true, true, 4, 5); got != DecisionAllow {
		t.Fatalf("below limit: got %s, want %s", got, DecisionAllow)
	}
}

func TestEntitlementNilUser(t *testing.T) {
	if got := EvaluateUserEntitlement(nil); got != DecisionRequireAuthentication {
		t.Fatalf("got %s, want %s", got, DecisionRequireAuthentication)
	}
}
