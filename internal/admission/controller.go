package admission

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/iliyamo/facility-access-control/internal/model"
)

// Sentinel outcomes returned by AttendanceStore.Commit.  They are terminal
// decisions, not failures, and are never retried.
var (
	ErrDuplicateAttendance = errors.New("attendance record exists")
	ErrCapacityFull        = errors.New("slot capacity reached")
)

// SlotCatalog supplies the facility's active time slots.  Read-mostly;
// implementations may serve from cache.
type SlotCatalog interface {
	ActiveSlots(ctx context.Context, facilityID uint64) ([]model.TimeSlot, error)
}

// SubscriptionStore reads the subscription record owned by the payment
// collaborator.  ByMember returns (nil, nil) when the member has no
// subscription with the facility.
type SubscriptionStore interface {
	ByMember(ctx context.Context, facilityID, memberID uint64) (*model.Subscription, error)
}

// AttendanceStore commits admissions.  Commit must perform the duplicate
// check, the capacity count and the insert as one atomic operation: no two
// concurrent commits for the same occurrence may together exceed capacity,
// and a member can never obtain two records for the same key.  It returns
// ErrDuplicateAttendance, ErrCapacityFull, or a transient storage error.
type AttendanceStore interface {
	Commit(ctx context.Context, rec *model.AttendanceRecord, capacity int) error
}

// TokenRegistry is the read side of token provisioning.  Tokens are always
// referenced by digest so raw credentials never reach storage.
type TokenRegistry interface {
	// Facilities returns the ids of every facility whose active token set
	// contains the digest.  Correct provisioning yields zero or one.
	Facilities(ctx context.Context, digest string) ([]uint64, error)
	// Active reports whether the digest is an active entrance credential
	// of the given facility.
	Active(ctx context.Context, facilityID uint64, digest string) (bool, error)
}

// Notifier receives fire-and-forget admission events after a successful
// commit.  Implementations must never block the decision path; failures
// are theirs to log and swallow.
type Notifier interface {
	AdmissionCommitted(ctx context.Context, rec model.AttendanceRecord)
}

// Options tunes a Controller.
type Options struct {
	Resolver        ResolverOptions
	PrivilegedTiers TierSet
	// StorageTimeout bounds each storage attempt; zero means 3s.
	StorageTimeout time.Duration
	// CommitRetries is how many extra attempts a transient commit failure
	// gets before surfacing; zero means 2.
	CommitRetries uint64
	// RetryBase is the first backoff interval; zero means 50ms.
	RetryBase time.Duration
}

func (o Options) storageTimeout() time.Duration {
	if o.StorageTimeout <= 0 {
		return 3 * time.Second
	}
	return o.StorageTimeout
}

func (o Options) commitRetries() uint64 {
	if o.CommitRetries == 0 {
		return 2
	}
	return o.CommitRetries
}

func (o Options) retryBase() time.Duration {
	if o.RetryBase <= 0 {
		return 50 * time.Millisecond
	}
	return o.RetryBase
}

// Controller runs the admission attempt for one facility.  An attempt
// walks a fixed sequence of checkpoints — token, slot, eligibility,
// entitlement, duplicate, capacity — and commits exactly one attendance
// record, or stops at the first failing checkpoint with that checkpoint's
// reason.  There is no retry of a denial within an attempt; the member
// re-scans if they want another try.
type Controller struct {
	facility   model.Facility
	catalog    SlotCatalog
	subs       SubscriptionStore
	attendance AttendanceStore
	tokens     TokenRegistry
	notifier   Notifier
	opts       Options
}

// NewController wires an admission controller for one facility.  notifier
// may be nil when no broadcast collaborator is configured.
func NewController(facility model.Facility, catalog SlotCatalog, subs SubscriptionStore, attendance AttendanceStore, tokens TokenRegistry, notifier Notifier, opts Options) *Controller {
	if catalog == nil || subs == nil || attendance == nil || tokens == nil {
		panic("nil store passed to NewController")
	}
	return &Controller{
		facility:   facility,
		catalog:    catalog,
		subs:       subs,
		attendance: attendance,
		tokens:     tokens,
		notifier:   notifier,
		opts:       opts,
	}
}

// Facility returns the facility this controller admits into.
func (ctl *Controller) Facility() model.Facility { return ctl.facility }

// Admit decides a single scan.  Denials come back inside the Result; a
// non-nil error means the attempt could not reach a decision (storage
// unavailable after bounded retries) and is safe for the caller to retry.
func (ctl *Controller) Admit(ctx context.Context, token string, member model.Member, now time.Time) (Result, error) {
	// Checkpoint 1: the token must be an active credential of this
	// facility, and the facility itself must be accepting scans.
	if !ctl.facility.Active {
		return denied(ReasonInvalidToken), nil
	}
	active, err := ctl.withTimeoutBool(ctx, func(ctx context.Context) (bool, error) {
		return ctl.tokens.Active(ctx, ctl.facility.ID, TokenDigest(token))
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: token lookup: %v", ErrUnavailable, err)
	}
	if !active {
		return denied(ReasonInvalidToken), nil
	}

	// Checkpoint 2: attribute the scan to a slot.
	slots, err := ctl.activeSlots(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: slot catalog: %v", ErrUnavailable, err)
	}
	slot, err := ResolveSlot(slots, now, ctl.opts.Resolver)
	switch {
	case err == nil:
	case errors.Is(err, ErrSessionWindowEnded):
		return denied(ReasonSessionWindowEnded), nil
	case errors.Is(err, ErrConfigFault):
		log.Printf("admission: facility %d: %v", ctl.facility.ID, err)
		return denied(ReasonConfigurationFault), nil
	default: // no slots today, before opening, dead gap between sessions
		return denied(ReasonNoSlotAvailable), nil
	}

	// Checkpoint 3: static eligibility.
	if d := CheckEligibility(member, slot, ctl.opts.PrivilegedTiers); !d.OK {
		if d.Reason == ReasonInvalidRestriction {
			log.Printf("admission: facility %d slot %d: unrecognized restriction %q", ctl.facility.ID, slot.ID, slot.Restriction)
		}
		return denied(Reason("eligibility:" + d.Reason)), nil
	}

	// Checkpoint 4: subscription entitlement.
	sub, err := ctl.subscription(ctx, member.ID)
	if err != nil {
		return Result{}, fmt.Errorf("%w: subscription lookup: %v", ErrUnavailable, err)
	}
	if d := CheckEntitlement(sub, now); !d.OK {
		return denied(Reason("entitlement:" + d.Reason)), nil
	}

	// Checkpoints 5–7: duplicate, capacity and commit are one atomic
	// storage operation; the store reports which gate failed.
	rec := &model.AttendanceRecord{
		FacilityID: ctl.facility.ID,
		MemberID:   member.ID,
		Date:       model.DateOf(now),
		ScannedAt:  now.UTC(),
		Method:     model.MethodScanned,
	}
	if ctl.facility.MultiSlot {
		id := slot.ID
		rec.SlotID = &id
	}
	if err := ctl.commit(ctx, rec, slot.Capacity); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateAttendance):
			return denied(ReasonAlreadyAdmitted), nil
		case errors.Is(err, ErrCapacityFull):
			res := denied(ReasonCapacityExceeded)
			res.OfferWaitlist = true
			id := slot.ID
			res.SlotID = &id
			res.Date = rec.Date
			return res, nil
		default:
			return Result{}, fmt.Errorf("%w: commit: %v", ErrUnavailable, err)
		}
	}

	if ctl.notifier != nil {
		ctl.notifier.AdmissionCommitted(ctx, *rec)
	}
	return Result{Committed: true, Record: rec}, nil
}

// commit runs the atomic store commit with a per-attempt timeout and
// bounded exponential backoff.  Only transient failures are retried; the
// uniqueness key makes a retry after an invisible success collapse into
// ErrDuplicateAttendance, so retrying never double-admits.
func (ctl *Controller) commit(ctx context.Context, rec *model.AttendanceRecord, capacity int) error {
	backoff := retry.WithMaxRetries(ctl.opts.commitRetries(), retry.NewExponential(ctl.opts.retryBase()))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt, cancel := context.WithTimeout(ctx, ctl.opts.storageTimeout())
		defer cancel()
		err := ctl.attendance.Commit(attempt, rec, capacity)
		if err == nil || errors.Is(err, ErrDuplicateAttendance) || errors.Is(err, ErrCapacityFull) {
			return err
		}
		return retry.RetryableError(err)
	})
}

func (ctl *Controller) activeSlots(ctx context.Context) ([]model.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, ctl.opts.storageTimeout())
	defer cancel()
	return ctl.catalog.ActiveSlots(ctx, ctl.facility.ID)
}

func (ctl *Controller) subscription(ctx context.Context, memberID uint64) (*model.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, ctl.opts.storageTimeout())
	defer cancel()
	return ctl.subs.ByMember(ctx, ctl.facility.ID, memberID)
}

func (ctl *Controller) withTimeoutBool(ctx context.Context, fn func(context.Context) (bool, error)) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, ctl.opts.storageTimeout())
	defer cancel()
	return fn(ctx)
}
