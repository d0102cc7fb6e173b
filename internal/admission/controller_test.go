package admission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/facility-access-control/internal/model"
)

const gateToken = "gate-7f3a"

type fixture struct {
	catalog    *memCatalog
	subs       *memSubs
	attendance *memAttendance
	tokens     *memTokens
	notifier   *memNotifier
	ctl        *Controller
}

// newFixture wires a controller for facility 1 with the two-slot Monday
// schedule, one provisioned token and an active subscription for every
// member id passed in.
func newFixture(t *testing.T, members ...uint64) *fixture {
	t.Helper()
	f := &fixture{
		catalog:    &memCatalog{slots: daySchedule()},
		subs:       &memSubs{byMember: map[uint64]*model.Subscription{}},
		attendance: &memAttendance{},
		tokens:     provision(map[string][]uint64{gateToken: {1}}),
		notifier:   &memNotifier{},
	}
	for _, id := range members {
		f.subs.byMember[id] = &model.Subscription{MemberID: id, FacilityID: 1, Status: model.SubscriptionActive}
	}
	facility := model.Facility{ID: 1, Name: "pool", MultiSlot: true, Active: true}
	f.ctl = NewController(facility, f.catalog, f.subs, f.attendance, f.tokens, f.notifier, Options{
		PrivilegedTiers: NewTierSet("senior", "staff"),
		RetryBase:       time.Millisecond,
	})
	return f
}

func member(id uint64) model.Member {
	return model.Member{ID: id, Gender: model.GenderA, Tier: "tier-1", Role: "MEMBER"}
}

func TestAdmitCommits(t *testing.T) {
	f := newFixture(t, 7)
	res, err := f.ctl.Admit(context.Background(), gateToken, member(7), at(9, 30))
	require.NoError(t, err)
	require.True(t, res.Committed)
	require.NotNil(t, res.Record)
	assert.Equal(t, uint64(1), res.Record.FacilityID)
	require.NotNil(t, res.Record.SlotID)
	assert.Equal(t, uint64(1), *res.Record.SlotID)
	assert.Equal(t, "2026-03-02", res.Record.Date)
	assert.Equal(t, model.MethodScanned, res.Record.Method)
	assert.Equal(t, 1, f.notifier.count())
}

func TestAdmitSingleSlotFacilityOmitsSlotID(t *testing.T) {
	f := newFixture(t, 7)
	facility := model.Facility{ID: 1, Name: "gym", MultiSlot: false, Active: true}
	ctl := NewController(facility, f.catalog, f.subs, f.attendance, f.tokens, nil, Options{})

	res, err := ctl.Admit(context.Background(), gateToken, member(7), at(9, 30))
	require.NoError(t, err)
	require.True(t, res.Committed)
	assert.Nil(t, res.Record.SlotID)
}

func TestAdmitTokenCheckpoint(t *testing.T) {
	f := newFixture(t, 7)

	res, err := f.ctl.Admit(context.Background(), "not-provisioned", member(7), at(9, 30))
	require.NoError(t, err)
	assert.Equal(t, ReasonInvalidToken, res.Reason)

	inactive := model.Facility{ID: 1, Active: false}
	ctl := NewController(inactive, f.catalog, f.subs, f.attendance, f.tokens, nil, Options{})
	res, err = ctl.Admit(context.Background(), gateToken, member(7), at(9, 30))
	require.NoError(t, err)
	assert.Equal(t, ReasonInvalidToken, res.Reason)
	assert.Equal(t, 0, f.attendance.count())
}

func TestAdmitSlotCheckpoint(t *testing.T) {
	f := newFixture(t, 7)

	res, err := f.ctl.Admit(context.Background(), gateToken, member(7), at(12, 30))
	require.NoError(t, err)
	assert.Equal(t, ReasonNoSlotAvailable, res.Reason)

	res, err = f.ctl.Admit(context.Background(), gateToken, member(7), at(20, 0))
	require.NoError(t, err)
	assert.Equal(t, ReasonSessionWindowEnded, res.Reason)
}

func TestAdmitEligibilityCheckpoint(t *testing.T) {
	f := newFixture(t, 7)
	f.catalog.slots = []model.TimeSlot{func() model.TimeSlot {
		s := slot(1, 9*60, 11*60)
		s.Restriction = model.RestrictionGenderB
		return s
	}()}

	res, err := f.ctl.Admit(context.Background(), gateToken, member(7), at(9, 30))
	require.NoError(t, err)
	assert.Equal(t, Reason("eligibility:gender-mismatch"), res.Reason)
	assert.Equal(t, 0, f.attendance.count(), "denial must leave no trace")
	assert.Equal(t, 0, f.notifier.count())
}

func TestAdmitEntitlementCheckpoint(t *testing.T) {
	f := newFixture(t)

	// No subscription at all.
	res, err := f.ctl.Admit(context.Background(), gateToken, member(9), at(9, 30))
	require.NoError(t, err)
	assert.Equal(t, Reason("entitlement:no-subscription"), res.Reason)

	// Suspended subscription carries its status in the reason.
	f.subs.byMember[9] = &model.Subscription{MemberID: 9, FacilityID: 1, Status: model.SubscriptionSuspended}
	res, err = f.ctl.Admit(context.Background(), gateToken, member(9), at(9, 30))
	require.NoError(t, err)
	assert.Equal(t, Reason("entitlement:subscription-suspended"), res.Reason)

	// Overdue payment on an otherwise active subscription.
	f.subs.byMember[9] = &model.Subscription{MemberID: 9, FacilityID: 1, Status: model.SubscriptionActive, PaymentDue: true}
	res, err = f.ctl.Admit(context.Background(), gateToken, member(9), at(9, 30))
	require.NoError(t, err)
	assert.Equal(t, Reason("entitlement:payment-overdue"), res.Reason)
	assert.Equal(t, 0, f.attendance.count())
}

func TestAdmitCheckpointOrder(t *testing.T) {
	// A member failing several checkpoints at once gets the earliest one:
	// an ineligible, unsubscribed member scanning after the day's sessions
	// is denied for the window, not for eligibility or entitlement.
	f := newFixture(t)
	f.catalog.slots = []model.TimeSlot{func() model.TimeSlot {
		s := slot(1, 9*60, 11*60)
		s.Restriction = model.RestrictionGenderB
		return s
	}()}

	res, err := f.ctl.Admit(context.Background(), gateToken, member(9), at(12, 30))
	require.NoError(t, err)
	assert.Equal(t, ReasonSessionWindowEnded, res.Reason)

	res, err = f.ctl.Admit(context.Background(), gateToken, member(9), at(9, 30))
	require.NoError(t, err)
	assert.Equal(t, Reason("eligibility:gender-mismatch"), res.Reason, "eligibility precedes entitlement")
}

func TestAdmitDuplicateDenied(t *testing.T) {
	f := newFixture(t, 7)
	ctx := context.Background()

	res, err := f.ctl.Admit(ctx, gateToken, member(7), at(9, 30))
	require.NoError(t, err)
	require.True(t, res.Committed)

	res, err = f.ctl.Admit(ctx, gateToken, member(7), at(9, 45))
	require.NoError(t, err)
	assert.Equal(t, ReasonAlreadyAdmitted, res.Reason)
	assert.Equal(t, 1, f.attendance.count())
	assert.Equal(t, 1, f.notifier.count(), "the duplicate attempt must not notify")
}

func TestAdmitCapacityDenialOffersWaitlist(t *testing.T) {
	f := newFixture(t, 1, 2, 3)
	f.catalog.slots = []model.TimeSlot{func() model.TimeSlot {
		s := slot(1, 9*60, 11*60)
		s.Capacity = 2
		return s
	}()}
	ctx := context.Background()

	for id := uint64(1); id <= 2; id++ {
		res, err := f.ctl.Admit(ctx, gateToken, member(id), at(9, 30))
		require.NoError(t, err)
		require.True(t, res.Committed)
	}

	res, err := f.ctl.Admit(ctx, gateToken, member(3), at(9, 30))
	require.NoError(t, err)
	assert.Equal(t, ReasonCapacityExceeded, res.Reason)
	assert.True(t, res.OfferWaitlist)
	require.NotNil(t, res.SlotID)
	assert.Equal(t, uint64(1), *res.SlotID)
	assert.Equal(t, "2026-03-02", res.Date)
}

func TestAdmitConfigFaultFailsClosed(t *testing.T) {
	f := newFixture(t, 7)

	f.catalog.slots = []model.TimeSlot{slot(1, 9*60, 11*60), slot(2, 9*60, 12*60)}
	res, err := f.ctl.Admit(context.Background(), gateToken, member(7), at(9, 30))
	require.NoError(t, err)
	assert.Equal(t, ReasonConfigurationFault, res.Reason)

	f.catalog.slots = []model.TimeSlot{restrictedSlot("vip")}
	f.catalog.slots[0].Start, f.catalog.slots[0].End, f.catalog.slots[0].Active = 9*60, 11*60, true
	res, err = f.ctl.Admit(context.Background(), gateToken, member(7), at(9, 30))
	require.NoError(t, err)
	assert.Equal(t, Reason("eligibility:invalid-restriction"), res.Reason)
	assert.Equal(t, 0, f.attendance.count())
}

func TestAdmitRetriesTransientCommit(t *testing.T) {
	f := newFixture(t, 7)
	f.attendance.transient = 2

	res, err := f.ctl.Admit(context.Background(), gateToken, member(7), at(9, 30))
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Equal(t, 1, f.attendance.count())
}

func TestAdmitSurfacesExhaustedRetries(t *testing.T) {
	f := newFixture(t, 7)
	f.attendance.transient = 10

	_, err := f.ctl.Admit(context.Background(), gateToken, member(7), at(9, 30))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 0, f.notifier.count())
}

// Concurrent scans against a slot with fewer spots than contenders must
// admit exactly capacity members, with no duplicates and no overshoot.
func TestAdmitConcurrentCapacityRace(t *testing.T) {
	const contenders = 32
	const capacity = 5

	f := newFixture(t)
	f.catalog.slots = []model.TimeSlot{func() model.TimeSlot {
		s := slot(1, 9*60, 11*60)
		s.Capacity = capacity
		return s
	}()}
	for id := uint64(1); id <= contenders; id++ {
		f.subs.byMember[id] = &model.Subscription{MemberID: id, FacilityID: 1, Status: model.SubscriptionActive}
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted, denied := 0, 0
	for id := uint64(1); id <= contenders; id++ {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			res, err := f.ctl.Admit(context.Background(), gateToken, member(id), at(9, 30))
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if res.Committed {
				admitted++
			} else {
				assert.Equal(t, ReasonCapacityExceeded, res.Reason)
				denied++
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, capacity, admitted)
	assert.Equal(t, contenders-capacity, denied)
	assert.Equal(t, capacity, f.attendance.count())
	assert.Equal(t, capacity, f.notifier.count())
}

// The same member scanning concurrently from two entrances gets exactly
// one record.
func TestAdmitConcurrentDuplicateRace(t *testing.T) {
	const attempts = 16

	f := newFixture(t, 7)
	var wg sync.WaitGroup
	var mu sync.Mutex
	committed := 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.ctl.Admit(context.Background(), gateToken, member(7), at(9, 30))
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if res.Committed {
				committed++
			} else {
				assert.Equal(t, ReasonAlreadyAdmitted, res.Reason)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, committed)
	assert.Equal(t, 1, f.attendance.count())
}
