package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/facility-access-control/internal/admission"
	"github.com/iliyamo/facility-access-control/internal/model"
)

// AttendanceRepo persists committed admissions.  The table is expected to
// carry a generated column slot_key = COALESCE(slot_id, 0) and a unique
// key over (facility_id, member_id, slot_key, attended_on); MySQL treats
// NULLs as distinct in unique keys, and the generated column closes that
// hole for single-slot facilities.
type AttendanceRepo struct {
	db *sql.DB
}

// NewAttendanceRepo returns an AttendanceRepo bound to the database.
func NewAttendanceRepo(db *sql.DB) *AttendanceRepo { return &AttendanceRepo{db: db} }

// Commit atomically performs the duplicate check, the capacity count and
// the insert for one admission.  All three run inside a single
// transaction that first locks the slot row (or the facility row when the
// record is not slot-scoped) with SELECT ... FOR UPDATE, serializing
// concurrent commits for the same occurrence: the count a commit observes
// cannot go stale before its insert lands.  The unique key remains the
// backstop — a duplicate-entry error from the insert is reported as
// admission.ErrDuplicateAttendance, never as a fault, which is what makes
// a blind retry of a timed-out commit safe.
//
// On success the generated id is written back to rec.  On any denial or
// failure the transaction is rolled back and nothing is written.
func (r *AttendanceRepo) Commit(ctx context.Context, rec *model.AttendanceRecord, capacity int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Serialize commits for this occurrence.
	if rec.SlotID != nil {
		if _, err := tx.ExecContext(ctx, `SELECT id FROM time_slots WHERE id = ? FOR UPDATE`, *rec.SlotID); err != nil {
			return err
		}
	} else {
		if _, err := tx.ExecContext(ctx, `SELECT id FROM facilities WHERE id = ? FOR UPDATE`, rec.FacilityID); err != nil {
			return err
		}
	}

	// Duplicate check, on the same key the unique constraint uses.
	const dupQ = `SELECT id FROM attendance_records
                  WHERE facility_id = ? AND member_id = ? AND attended_on = ? AND slot_id <=> ?`
	var existing uint64
	err = tx.QueryRowContext(ctx, dupQ, rec.FacilityID, rec.MemberID, rec.Date, rec.SlotID).Scan(&existing)
	switch {
	case err == nil:
		return admission.ErrDuplicateAttendance
	case err != sql.ErrNoRows:
		return err
	}

	// Capacity check under the lock taken above.
	var count int
	if rec.SlotID != nil {
		const q = `SELECT COUNT(*) FROM attendance_records WHERE slot_id = ? AND attended_on = ?`
		err = tx.QueryRowContext(ctx, q, *rec.SlotID, rec.Date).Scan(&count)
	} else {
		const q = `SELECT COUNT(*) FROM attendance_records WHERE facility_id = ? AND slot_id IS NULL AND attended_on = ?`
		err = tx.QueryRowContext(ctx, q, rec.FacilityID, rec.Date).Scan(&count)
	}
	if err != nil {
		return err
	}
	if count >= capacity {
		return admission.ErrCapacityFull
	}

	const ins = `INSERT INTO attendance_records (facility_id, slot_id, member_id, attended_on, scanned_at, method)
                 VALUES (?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, ins,
		rec.FacilityID, rec.SlotID, rec.MemberID, rec.Date,
		rec.ScannedAt.UTC().Format("2006-01-02 15:04:05"), rec.Method,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return admission.ErrDuplicateAttendance
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	rec.ID = uint64(id)
	return nil
}

// ListByMember returns the member's attendance history across all
// facilities, newest first, capped at limit.
func (r *AttendanceRepo) ListByMember(ctx context.Context, memberID uint64, limit int) ([]model.AttendanceRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, facility_id, slot_id, member_id, attended_on, scanned_at, method
               FROM attendance_records
               WHERE member_id = ?
               ORDER BY scanned_at DESC
               LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, memberID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.AttendanceRecord
	for rows.Next() {
		var rec model.AttendanceRecord
		var slotID sql.NullInt64
		var attendedOn time.Time // DATE column; parseTime=true yields time.Time
		if err := rows.Scan(&rec.ID, &rec.FacilityID, &slotID, &rec.MemberID, &attendedOn, &rec.ScannedAt, &rec.Method); err != nil {
			return nil, err
		}
		rec.Date = model.DateOf(attendedOn)
		if slotID.Valid {
			id := uint64(slotID.Int64)
			rec.SlotID = &id
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
