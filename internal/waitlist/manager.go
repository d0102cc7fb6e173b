// Package waitlist maintains the ordered queue of members wanting a spot
// in a full slot occurrence.  Positions are allocated by the store as
// current-max+1 within (slot, date) under a storage-level lock, so
// concurrent joins can never race a position; the manager layers the
// membership rules and change notifications on top.
package waitlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/facility-access-control/internal/model"
)

var (
	// ErrAlreadyWaitlisted is returned by Join when a pending entry for
	// (slot, member, date) already exists.
	ErrAlreadyWaitlisted = errors.New("already waitlisted")
	// ErrNotWaitlisted is returned by Leave when the member has no
	// pending entry to cancel.
	ErrNotWaitlisted = errors.New("not waitlisted")
	// ErrUnknownEntry is returned by Mark for an id that does not exist.
	ErrUnknownEntry = errors.New("unknown waitlist entry")
)

// Store is the persistence contract for waitlist entries.  Join must
// allocate the position atomically — see the repository implementation —
// and report ErrAlreadyWaitlisted itself when the pending-uniqueness
// invariant would be violated.
type Store interface {
	Join(ctx context.Context, slotID, memberID uint64, date string) (*model.WaitlistEntry, error)
	// CancelPending cancels the member's pending entry and reports
	// whether one existed.
	CancelPending(ctx context.Context, slotID, memberID uint64, date string) (bool, error)
	// NextPending returns the lowest-position pending entry for the
	// occurrence, or (nil, nil) when the queue is empty.
	NextPending(ctx context.Context, slotID uint64, date string) (*model.WaitlistEntry, error)
	// SetStatus moves an entry to the given status and returns the
	// updated entry, or ErrUnknownEntry.
	SetStatus(ctx context.Context, entryID uint64, status model.WaitlistStatus) (*model.WaitlistEntry, error)
}

// Notifier receives fire-and-forget waitlist change events.  Failures must
// never surface to the member's request.
type Notifier interface {
	WaitlistChanged(ctx context.Context, entry model.WaitlistEntry, change string)
}

// Manager exposes the waitlist operations.  Promotion into a freed slot is
// intentionally absent: the external scheduler drives it through PeekNext
// and Mark when capacity opens up, and the promoted member re-enters
// through the normal admission path.
type Manager struct {
	store    Store
	notifier Notifier
	timeout  time.Duration
}

// NewManager builds a Manager.  notifier may be nil.  timeout bounds each
// storage call; zero means 3s.
func NewManager(store Store, notifier Notifier, timeout time.Duration) *Manager {
	if store == nil {
		panic("nil store passed to waitlist.NewManager")
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Manager{store: store, notifier: notifier, timeout: timeout}
}

// Join appends the member to the queue for (slot, date).  The assigned
// position is one more than the current maximum for that occurrence.
// Joining twice while still pending returns ErrAlreadyWaitlisted.
func (m *Manager) Join(ctx context.Context, slotID, memberID uint64, date string) (*model.WaitlistEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	entry, err := m.store.Join(ctx, slotID, memberID, date)
	if err != nil {
		return nil, err
	}
	m.notify(ctx, *entry, "joined")
	return entry, nil
}

// Leave cancels the member's pending entry for (slot, date).  Positions of
// the members behind are left untouched; ordering is by position, and gaps
// from cancellations are harmless.
func (m *Manager) Leave(ctx context.Context, slotID, memberID uint64, date string) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	ok, err := m.store.CancelPending(ctx, slotID, memberID, date)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotWaitlisted
	}
	m.notify(ctx, model.WaitlistEntry{SlotID: slotID, MemberID: memberID, Date: date, Status: model.WaitlistCancelled}, "left")
	return nil
}

// PeekNext returns the head of the pending queue for the occurrence
// without consuming it, or (nil, nil) when nobody is waiting.
func (m *Manager) PeekNext(ctx context.Context, slotID uint64, date string) (*model.WaitlistEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.store.NextPending(ctx, slotID, date)
}

// Mark transitions an entry to notified, confirmed or cancelled on behalf
// of the promotion scheduler.
func (m *Manager) Mark(ctx context.Context, entryID uint64, status model.WaitlistStatus) (*model.WaitlistEntry, error) {
	switch status {
	case model.WaitlistNotified, model.WaitlistConfirmed, model.WaitlistCancelled:
	default:
		return nil, fmt.Errorf("invalid target status %q", status)
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	entry, err := m.store.SetStatus(ctx, entryID, status)
	if err != nil {
		return nil, err
	}
	m.notify(ctx, *entry, string(status))
	return entry, nil
}

func (m *Manager) notify(ctx context.Context, entry model.WaitlistEntry, change string) {
	if m.notifier != nil {
		m.notifier.WaitlistChanged(ctx, entry, change)
	}
}
