package session

import "fintrack/internal/core"

// MergeProfile combines the provider identity with the stored profile
// document under a fixed precedence: stored profile fields override
// identity-derived defaults, while the identity itself (uid, email) stays
// immutable and is never rewritten by profile data.
func MergeProfile(ident core.Identity, stored core.Profile) core.Profile {
	merged := stored
	if merged.Name == "" {
		merged.Name = ident.Name
	}
	if merged.PhotoURL == "" {
		merged.PhotoURL = ident.PhotoURL
	}
	return merged
}
