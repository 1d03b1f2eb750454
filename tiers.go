package portalauth

// SubscriptionTier is the profile's billing tier
type SubscriptionTier string

const (
	// TierFree is the default tier for every new account
	TierFree SubscriptionTier = "free"
	// TierPremium unlocks premium content after billing confirmation
	TierPremium SubscriptionTier = "premium"
	// TierEnterprise is the firm-level tier, entitled to everything premium is
	TierEnterprise SubscriptionTier = "enterprise"
)

// IsValid checks if the tier is one of the predefined valid tiers
func (t SubscriptionTier) IsValid() bool {
	switch t {
	case TierFree, TierPremium, TierEnterprise:
		return true
	default:
		return false
	}
}

// GrantsPremium reports whether the tier provisionally entitles the holder to
// premium content. Necessary but not always sufficient: routes that demand a
// verified billing state go through EntitlementResolver.VerifyPremium.
func (t SubscriptionTier) GrantsPremium() bool {
	switch t {
	case TierPremium, TierEnterprise:
		return true
	default:
		return false
	}
}

// ParseTier safely parses a string into a SubscriptionTier, defaulting to free
func ParseTier(tierStr string) (SubscriptionTier, bool) {
	tier := SubscriptionTier(tierStr)
	if tier == "" {
		return TierFree, true
	}
	return tier, tier.IsValid()
}
