package model

// Gender is the member attribute matched against gender-restricted slots.
// "unspecified" is a legitimate profile state: such members are eligible
// for open and privileged slots but never for gender-restricted ones.
type Gender string

const (
	GenderA           Gender = "A"
	GenderB           Gender = "B"
	GenderUnspecified Gender = "unspecified"
)

// Member is the profile supplied by the identity collaborator for the
// person presenting a token.  The engine never mutates members; the
// identity middleware builds one from verified JWT claims per request.
//
// Fields:
//  ID     – member identifier assigned by the identity collaborator.
//  Gender – gender attribute, one of A, B or unspecified.
//  Tier   – membership tier tag, e.g. "tier-1", "senior", "staff".
//  Role   – access role carried in the token (MEMBER or STAFF).
type Member struct {
	ID     uint64
	Gender Gender
	Tier   string
	Role   string
}
