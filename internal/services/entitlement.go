package services

import "github.com/storyarc/narrative-backend/internal/types"

// EntitlementDecision is the outcome of gating a generation attempt.
type EntitlementDecision string

const (
	DecisionAllow                 EntitlementDecision = "allow"
	DecisionRequireAuthentication EntitlementDecision = "require_authentication"
	DecisionRequireUpgrade        EntitlementDecision = "require_upgrade"
	DecisionRequireUsageReset     EntitlementDecision = "require_usage_reset"
)

// EvaluateEntitlement decides whether a generation attempt may proceed. The
// checks are ordered: authentication, then payment, then the usage ledger.
// Callers must re-evaluate on every attempt; usage moves between attempts.
func EvaluateEntitlement(authenticated bool, paid bool, used int, limit int) EntitlementDecision {
	if !authenticated {
		return DecisionRequireAuthentication
	}
	if !paid {
		return DecisionRequireUpgrade
	}
	if used >= limit {
		return DecisionRequireUsageReset
	}
	return DecisionAllow
}

// EvaluateUserEntitlement gates an already-authenticated identity snapshot.
func EvaluateUserEntitlement(user *types.User) EntitlementDecision {
	if user == nil {
		return DecisionRequireAuthentication
	}
	return EvaluateEntitlement(true, user.HasPaid, user.TokensUsed, user.TokensLimit)
}
