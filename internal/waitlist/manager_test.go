package waitlist

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/facility-access-control/internal/model"
)

// memStore reproduces the storage contract in memory: position allocation
// and the pending-uniqueness check run under one lock, matching the
// repository's row-locked transaction.
type memStore struct {
	mu      sync.Mutex
	entries []model.WaitlistEntry
	nextID  uint64
}

func (s *memStore) Join(_ context.Context, slotID, memberID uint64, date string) (*model.WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	maxPos := 0
	for _, e := range s.entries {
		if e.SlotID != slotID || e.Date != date {
			continue
		}
		if e.MemberID == memberID && e.Status == model.WaitlistPending {
			return nil, ErrAlreadyWaitlisted
		}
		if e.Position > maxPos {
			maxPos = e.Position
		}
	}
	s.nextID++
	entry := model.WaitlistEntry{
		ID:       s.nextID,
		SlotID:   slotID,
		MemberID: memberID,
		Date:     date,
		Position: maxPos + 1,
		Status:   model.WaitlistPending,
	}
	s.entries = append(s.entries, entry)
	return &entry, nil
}

func (s *memStore) CancelPending(_ context.Context, slotID, memberID uint64, date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.SlotID == slotID && e.MemberID == memberID && e.Date == date && e.Status == model.WaitlistPending {
			s.entries[i].Status = model.WaitlistCancelled
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) NextPending(_ context.Context, slotID uint64, date string) (*model.WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var head *model.WaitlistEntry
	for i, e := range s.entries {
		if e.SlotID != slotID || e.Date != date || e.Status != model.WaitlistPending {
			continue
		}
		if head == nil || e.Position < head.Position {
			head = &s.entries[i]
		}
	}
	if head == nil {
		return nil, nil
	}
	out := *head
	return &out, nil
}

func (s *memStore) SetStatus(_ context.Context, entryID uint64, status model.WaitlistStatus) (*model.WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == entryID {
			s.entries[i].Status = status
			out := s.entries[i]
			return &out, nil
		}
	}
	return nil, ErrUnknownEntry
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []string
}

func (n *recordingNotifier) WaitlistChanged(_ context.Context, _ model.WaitlistEntry, change string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
}

const wantedOn = "2026-03-02"

func TestJoinAssignsSequentialPositions(t *testing.T) {
	m := NewManager(&memStore{}, nil, 0)
	ctx := context.Background()

	for i := uint64(1); i <= 3; i++ {
		entry, err := m.Join(ctx, 1, i, wantedOn)
		require.NoError(t, err)
		assert.Equal(t, int(i), entry.Position)
		assert.Equal(t, model.WaitlistPending, entry.Status)
	}

	// A different occurrence has its own position sequence.
	entry, err := m.Join(ctx, 2, 1, wantedOn)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Position)
}

func TestJoinTwiceWhilePending(t *testing.T) {
	m := NewManager(&memStore{}, nil, 0)
	ctx := context.Background()

	_, err := m.Join(ctx, 1, 7, wantedOn)
	require.NoError(t, err)
	_, err = m.Join(ctx, 1, 7, wantedOn)
	assert.ErrorIs(t, err, ErrAlreadyWaitlisted)
}

func TestLeaveKeepsOtherPositions(t *testing.T) {
	store := &memStore{}
	m := NewManager(store, nil, 0)
	ctx := context.Background()

	for i := uint64(1); i <= 3; i++ {
		_, err := m.Join(ctx, 1, i, wantedOn)
		require.NoError(t, err)
	}
	require.NoError(t, m.Leave(ctx, 1, 1, wantedOn))

	// Remaining members keep their original positions; the head is now the
	// member who joined second.
	head, err := m.PeekNext(ctx, 1, wantedOn)
	require.NoError(t, err)
	require.NotNil(t, head)
	assert.Equal(t, uint64(2), head.MemberID)
	assert.Equal(t, 2, head.Position)

	// A cancelled member may rejoin and goes to the back, not their old spot.
	entry, err := m.Join(ctx, 1, 1, wantedOn)
	require.NoError(t, err)
	assert.Equal(t, 4, entry.Position)
}

func TestLeaveWithoutEntry(t *testing.T) {
	m := NewManager(&memStore{}, nil, 0)
	err := m.Leave(context.Background(), 1, 7, wantedOn)
	assert.ErrorIs(t, err, ErrNotWaitlisted)
}

func TestPeekNextEmptyQueue(t *testing.T) {
	m := NewManager(&memStore{}, nil, 0)
	head, err := m.PeekNext(context.Background(), 1, wantedOn)
	require.NoError(t, err)
	assert.Nil(t, head)
}

func TestMarkTransitions(t *testing.T) {
	m := NewManager(&memStore{}, nil, 0)
	ctx := context.Background()

	entry, err := m.Join(ctx, 1, 7, wantedOn)
	require.NoError(t, err)

	updated, err := m.Mark(ctx, entry.ID, model.WaitlistNotified)
	require.NoError(t, err)
	assert.Equal(t, model.WaitlistNotified, updated.Status)
	assert.Equal(t, entry.Position, updated.Position)

	_, err = m.Mark(ctx, entry.ID, model.WaitlistConfirmed)
	require.NoError(t, err)
}

func TestMarkRejectsInvalidTargets(t *testing.T) {
	m := NewManager(&memStore{}, nil, 0)
	ctx := context.Background()

	entry, err := m.Join(ctx, 1, 7, wantedOn)
	require.NoError(t, err)

	_, err = m.Mark(ctx, entry.ID, model.WaitlistPending)
	assert.Error(t, err, "entries cannot be moved back to pending")
	_, err = m.Mark(ctx, entry.ID, "promoted")
	assert.Error(t, err)
}

func TestMarkUnknownEntry(t *testing.T) {
	m := NewManager(&memStore{}, nil, 0)
	_, err := m.Mark(context.Background(), 99, model.WaitlistCancelled)
	assert.ErrorIs(t, err, ErrUnknownEntry)
}

func TestNotifierObservesChanges(t *testing.T) {
	n := &recordingNotifier{}
	m := NewManager(&memStore{}, n, 0)
	ctx := context.Background()

	entry, err := m.Join(ctx, 1, 7, wantedOn)
	require.NoError(t, err)
	_, err = m.Mark(ctx, entry.ID, model.WaitlistNotified)
	require.NoError(t, err)
	require.NoError(t, m.Leave(ctx, 1, 7, wantedOn))

	assert.Equal(t, []string{"joined", "notified", "left"}, n.changes)
}

// Concurrent joins for one occurrence must come out with distinct,
// gap-free positions 1..n.
func TestJoinConcurrentOrdering(t *testing.T) {
	const joiners = 48

	m := NewManager(&memStore{}, nil, 0)
	var wg sync.WaitGroup
	var mu sync.Mutex
	positions := make(map[int]uint64, joiners)

	for i := uint64(1); i <= joiners; i++ {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			entry, err := m.Join(context.Background(), 1, id, wantedOn)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			positions[entry.Position] = id
		}(i)
	}
	wg.Wait()

	require.Len(t, positions, joiners, "positions must be unique")
	for p := 1; p <= joiners; p++ {
		assert.Contains(t, positions, p, "positions must be gap-free")
	}
}
