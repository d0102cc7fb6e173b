package admission

import (
	"strings"

	"github.com/iliyamo/facility-access-control/internal/model"
)

// TierSet is the set of membership tiers allowed into privileged slots,
// e.g. senior and staff tiers.  Lookup is case-insensitive.
type TierSet map[string]bool

// NewTierSet builds a TierSet from tier tags, normalizing case.
func NewTierSet(tiers ...string) TierSet {
	set := make(TierSet, len(tiers))
	for _, t := range tiers {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			set[t] = true
		}
	}
	return set
}

func (s TierSet) contains(tier string) bool {
	return s[strings.ToLower(strings.TrimSpace(tier))]
}

// CheckEligibility decides whether a member's static attributes permit
// access to a slot's restriction class.  It is a pure decision table: no
// I/O, no mutation, a defined result for every gender × restriction
// combination.  Restriction tags are compared case-insensitively but only
// the canonical set is recognized; an unknown tag denies with
// invalid-restriction so a miswritten catalog can never admit.
//
// Unspecified gender on a gender-restricted slot denies with
// gender-not-set rather than gender-mismatch, letting the caller prompt
// for profile completion instead of a flat refusal.
func CheckEligibility(member model.Member, slot model.TimeSlot, privileged TierSet) Decision {
	tag := strings.TrimSpace(string(slot.Restriction))
	switch {
	case strings.EqualFold(tag, string(model.RestrictionOpen)):
		return allow()
	case strings.EqualFold(tag, string(model.RestrictionPrivileged)):
		if privileged.contains(member.Tier) {
			return allow()
		}
		return deny(ReasonPrivilegedTierRequired)
	case strings.EqualFold(tag, string(model.RestrictionGenderA)):
		return genderDecision(member.Gender, model.GenderA)
	case strings.EqualFold(tag, string(model.RestrictionGenderB)):
		return genderDecision(member.Gender, model.GenderB)
	default:
		return deny(ReasonInvalidRestriction)
	}
}

func genderDecision(have, want model.Gender) Decision {
	switch have {
	case want:
		return allow()
	case model.GenderUnspecified:
		return deny(ReasonGenderNotSet)
	default:
		return deny(ReasonGenderMismatch)
	}
}
