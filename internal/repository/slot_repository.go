package repository

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/facility-access-control/internal/model"
)

// SlotRepo reads the time slot catalog.  Slots are created and edited by
// facility administrators through a separate surface; the engine treats
// the table as read-only.  Weekday filters are stored as a comma
// separated list of weekday numbers (0=Sunday), empty meaning every day.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo returns a SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// ActiveSlots returns all active slots of a facility ordered by start
// time.  Rows with an unparseable weekday list are returned with the
// filter dropped (runs every day) rather than silently skipped, so a
// typo in the catalog shows up as an over-permissive slot in review
// instead of members bouncing off a missing session.
func (r *SlotRepo) ActiveSlots(ctx context.Context, facilityID uint64) ([]model.TimeSlot, error) {
	const q = `SELECT id, facility_id, start_min, end_min, weekdays, capacity, restriction, is_active
               FROM time_slots
               WHERE facility_id = ? AND is_active = 1
               ORDER BY start_min`
	rows, err := r.db.QueryContext(ctx, q, facilityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.TimeSlot
	for rows.Next() {
		var s model.TimeSlot
		var days sql.NullString
		var restriction string
		if err := rows.Scan(&s.ID, &s.FacilityID, &s.Start, &s.End, &days, &s.Capacity, &restriction, &s.Active); err != nil {
			return nil, err
		}
		s.Restriction = model.Restriction(restriction)
		if days.Valid {
			s.Weekdays = parseWeekdays(days.String)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// parseWeekdays converts "0,3,6" into weekdays, ignoring blanks and
// out-of-range values.
func parseWeekdays(s string) []time.Weekday {
	var out []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 6 {
			continue
		}
		out = append(out, time.Weekday(n))
	}
	return out
}
