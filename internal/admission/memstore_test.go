package admission

import (
	"context"
	"errors"
	"sync"

	"github.com/iliyamo/facility-access-control/internal/model"
)

// In-memory store implementations.  memAttendance mirrors the storage
// contract exactly: duplicate check, capacity count and insert happen
// under one lock, so the concurrency tests exercise the same atomicity
// the repository provides with row locks.

type memCatalog struct {
	slots []model.TimeSlot
	err   error
}

func (c *memCatalog) ActiveSlots(_ context.Context, _ uint64) ([]model.TimeSlot, error) {
	return c.slots, c.err
}

type memSubs struct {
	byMember map[uint64]*model.Subscription
	err      error
}

func (s *memSubs) ByMember(_ context.Context, _ uint64, memberID uint64) (*model.Subscription, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byMember[memberID], nil
}

type memAttendance struct {
	mu      sync.Mutex
	records []model.AttendanceRecord
	nextID  uint64
	// transient, when > 0, fails that many commits with a retryable error
	// before letting one through.
	transient int
}

func slotKey(id *uint64) uint64 {
	if id == nil {
		return 0
	}
	return *id
}

func (s *memAttendance) Commit(_ context.Context, rec *model.AttendanceRecord, capacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transient > 0 {
		s.transient--
		return errors.New("connection reset by peer")
	}
	occupied := 0
	for _, r := range s.records {
		if r.FacilityID != rec.FacilityID || r.Date != rec.Date || slotKey(r.SlotID) != slotKey(rec.SlotID) {
			continue
		}
		if r.MemberID == rec.MemberID {
			return ErrDuplicateAttendance
		}
		occupied++
	}
	if occupied >= capacity {
		return ErrCapacityFull
	}
	s.nextID++
	rec.ID = s.nextID
	s.records = append(s.records, *rec)
	return nil
}

func (s *memAttendance) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type memTokens struct {
	byDigest map[string][]uint64
	err      error
}

type memNotifier struct {
	mu       sync.Mutex
	admitted []model.AttendanceRecord
}

func (n *memNotifier) AdmissionCommitted(_ context.Context, rec model.AttendanceRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.admitted = append(n.admitted, rec)
}

func (n *memNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.admitted)
}

func (t *memTokens) Facilities(_ context.Context, digest string) ([]uint64, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.byDigest[digest], nil
}

func (t *memTokens) Active(_ context.Context, facilityID uint64, digest string) (bool, error) {
	if t.err != nil {
		return false, t.err
	}
	for _, id := range t.byDigest[digest] {
		if id == facilityID {
			return true, nil
		}
	}
	return false, nil
}

// provision maps raw tokens to facility ids, hashing them the way the
// registry stores credentials.
func provision(tokens map[string][]uint64) *memTokens {
	byDigest := make(map[string][]uint64, len(tokens))
	for raw, ids := range tokens {
		byDigest[TokenDigest(raw)] = ids
	}
	return &memTokens{byDigest: byDigest}
}
