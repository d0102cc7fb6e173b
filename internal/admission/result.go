// Package admission implements the decision engine that admits or denies a
// member presenting a token at a facility entrance.  Denials are expected,
// frequent outcomes and are returned as typed results; only configuration
// faults and storage failures travel as errors.
package admission

import (
	"errors"

	"github.com/iliyamo/facility-access-control/internal/model"
)

// Reason is a machine-readable denial code.  Every denial carries one so
// the calling surface can render an actionable message without parsing
// prose.  Eligibility and entitlement denials are prefixed with their
// checkpoint name, e.g. "eligibility:gender-mismatch".
type Reason string

const (
	ReasonInvalidToken       Reason = "invalid-token"
	ReasonUnknownToken       Reason = "unknown-token"
	ReasonAmbiguousToken     Reason = "ambiguous-token"
	ReasonNoSlotAvailable    Reason = "no-slot-available"
	ReasonSessionWindowEnded Reason = "session-window-ended"
	ReasonAlreadyAdmitted    Reason = "already-admitted"
	ReasonCapacityExceeded   Reason = "capacity-exceeded"
	ReasonConfigurationFault Reason = "configuration-fault"
)

// Checkpoint reason sub-codes reused by the pure validators.
const (
	ReasonGenderMismatch         = "gender-mismatch"
	ReasonGenderNotSet           = "gender-not-set"
	ReasonPrivilegedTierRequired = "privileged-tier-required"
	ReasonInvalidRestriction     = "invalid-restriction"
	ReasonPaymentOverdue         = "payment-overdue"
	ReasonNoSubscription         = "no-subscription"
)

// Result is the terminal state of a single admission attempt.  Exactly one
// of Record (committed) or Reason (denied) is populated.
type Result struct {
	Committed bool                    `json:"committed"`
	Record    *model.AttendanceRecord `json:"record,omitempty"`
	Reason    Reason                  `json:"reason,omitempty"`
	// OfferWaitlist is set on capacity denials so the caller can offer the
	// member a waitlist spot for the resolved slot and date.
	OfferWaitlist bool    `json:"offer_waitlist,omitempty"`
	SlotID        *uint64 `json:"slot_id,omitempty"`
	Date          string  `json:"date,omitempty"`
}

func denied(reason Reason) Result { return Result{Reason: reason} }

// Decision is the outcome of a pure validator (eligibility, entitlement).
type Decision struct {
	OK     bool
	Reason string
}

func allow() Decision             { return Decision{OK: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// ErrConfigFault marks catalog or registry states that must never occur
// under correct provisioning (duplicate slot start times, a token mapped
// to two facilities, an unknown restriction tag).  Callers log it loudly
// and fail closed; it is never retried.
var ErrConfigFault = errors.New("configuration fault")

// ErrUnavailable marks a transient storage failure.  Attempts that fail
// with it are safe to retry: the uniqueness constraints make the commit
// idempotent, so a retry after a successful insert surfaces as a clean
// already-admitted denial instead of a duplicate.
var ErrUnavailable = errors.New("storage unavailable")
