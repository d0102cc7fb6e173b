package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/facility-access-control/internal/model"
	"github.com/iliyamo/facility-access-control/internal/waitlist"
)

// WaitlistRepo persists waitlist entries.  Expected constraints: a unique
// key over (slot_id, wanted_on, position) guarding the ordering
// invariant, and a generated column pending_member =
// IF(status='pending', member_id, NULL) with a unique key over
// (slot_id, wanted_on, pending_member) enforcing one pending entry per
// member per occurrence.
type WaitlistRepo struct {
	db *sql.DB
}

// NewWaitlistRepo returns a WaitlistRepo bound to the database.
func NewWaitlistRepo(db *sql.DB) *WaitlistRepo { return &WaitlistRepo{db: db} }

// Join appends the member to the queue for (slot, date), allocating
// position as current-max+1 inside a transaction.  The MAX query runs
// FOR UPDATE so two concurrent joins serialize on the occurrence's rows
// (and next-key gap when empty) instead of computing the same position;
// the unique keys remain the backstop for anything the lock misses.
func (r *WaitlistRepo) Join(ctx context.Context, slotID, memberID uint64, date string) (*model.WaitlistEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const dupQ = `SELECT id FROM waitlist_entries
                  WHERE slot_id = ? AND wanted_on = ? AND member_id = ? AND status = 'pending'`
	var existing uint64
	err = tx.QueryRowContext(ctx, dupQ, slotID, date, memberID).Scan(&existing)
	switch {
	case err == nil:
		return nil, waitlist.ErrAlreadyWaitlisted
	case err != sql.ErrNoRows:
		return nil, err
	}

	const maxQ = `SELECT COALESCE(MAX(position), 0) FROM waitlist_entries
                  WHERE slot_id = ? AND wanted_on = ? FOR UPDATE`
	var maxPos int
	if err := tx.QueryRowContext(ctx, maxQ, slotID, date).Scan(&maxPos); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	const ins = `INSERT INTO waitlist_entries (slot_id, member_id, wanted_on, position, status, created_at)
                 VALUES (?, ?, ?, ?, 'pending', ?)`
	result, err := tx.ExecContext(ctx, ins, slotID, memberID, date, maxPos+1, now.Format("2006-01-02 15:04:05"))
	if err != nil {
		if isDuplicateKey(err) {
			return nil, waitlist.ErrAlreadyWaitlisted
		}
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &model.WaitlistEntry{
		ID:       uint64(id),
		SlotID:   slotID,
		MemberID: memberID,
		Date:     date,
		Position: maxPos + 1,
		Status:   model.WaitlistPending,
		JoinedAt: now,
	}, nil
}

// CancelPending cancels the member's pending entry for (slot, date) and
// reports whether one existed.  Positions behind the cancelled entry are
// untouched; gaps in the sequence are expected after cancellations.
func (r *WaitlistRepo) CancelPending(ctx context.Context, slotID, memberID uint64, date string) (bool, error) {
	const q = `UPDATE waitlist_entries SET status = 'cancelled'
               WHERE slot_id = ? AND wanted_on = ? AND member_id = ? AND status = 'pending'`
	result, err := r.db.ExecContext(ctx, q, slotID, date, memberID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// NextPending returns the head of the pending queue for (slot, date), or
// (nil, nil) when nobody is waiting.
func (r *WaitlistRepo) NextPending(ctx context.Context, slotID uint64, date string) (*model.WaitlistEntry, error) {
	const q = `SELECT id, slot_id, member_id, wanted_on, position, status, created_at
               FROM waitlist_entries
               WHERE slot_id = ? AND wanted_on = ? AND status = 'pending'
               ORDER BY position
               LIMIT 1`
	entry, err := r.scanEntry(r.db.QueryRowContext(ctx, q, slotID, date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// SetStatus moves an entry to the given status on behalf of the promotion
// scheduler and returns the updated entry.
func (r *WaitlistRepo) SetStatus(ctx context.Context, entryID uint64, status model.WaitlistStatus) (*model.WaitlistEntry, error) {
	const q = `UPDATE waitlist_entries SET status = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, string(status), entryID)
	if err != nil {
		return nil, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// RowsAffected is also 0 for a no-op update to the same status,
		// so confirm existence before reporting unknown.
		const sel = `SELECT id FROM waitlist_entries WHERE id = ?`
		var id uint64
		if err := r.db.QueryRowContext(ctx, sel, entryID).Scan(&id); err == sql.ErrNoRows {
			return nil, waitlist.ErrUnknownEntry
		} else if err != nil {
			return nil, err
		}
	}
	const sel = `SELECT id, slot_id, member_id, wanted_on, position, status, created_at
                 FROM waitlist_entries WHERE id = ?`
	entry, err := r.scanEntry(r.db.QueryRowContext(ctx, sel, entryID))
	if err == sql.ErrNoRows {
		return nil, waitlist.ErrUnknownEntry
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *WaitlistRepo) scanEntry(row *sql.Row) (*model.WaitlistEntry, error) {
	var e model.WaitlistEntry
	var wantedOn time.Time
	var status string
	if err := row.Scan(&e.ID, &e.SlotID, &e.MemberID, &wantedOn, &e.Position, &status, &e.JoinedAt); err != nil {
		return nil, err
	}
	e.Date = model.DateOf(wantedOn)
	e.Status = model.WaitlistStatus(status)
	return &e, nil
}
