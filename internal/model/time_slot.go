package model

import "time"

// Restriction classifies who may enter during a slot.  Stored tags are
// compared case-insensitively but only the canonical values below are
// accepted; anything else is treated as a configuration fault and the
// engine fails closed.
type Restriction string

const (
	RestrictionOpen       Restriction = "open"         // every member
	RestrictionGenderA    Restriction = "restricted-A" // members with gender A only
	RestrictionGenderB    Restriction = "restricted-B" // members with gender B only
	RestrictionPrivileged Restriction = "privileged"   // privileged membership tiers only
)

// TimeSlot is a recurring time window during which a facility admits a
// bounded number of members.  Start and End are minutes from midnight in
// the facility's clock; End must be strictly greater than Start.  Slots
// are owned by facility administrators and are read-only to the engine.
//
// Fields:
//  ID          – primary key identifier.
//  FacilityID  – facility this slot belongs to.
//  Start       – start of the window, minutes from midnight.
//  End         – end of the window (exclusive), minutes from midnight.
//  Weekdays    – days the slot recurs on; nil or empty means every day.
//  Capacity    – maximum committed admissions per occurrence, > 0.
//  Restriction – eligibility class for this slot.
//  Active      – inactive slots are invisible to resolution.
type TimeSlot struct {
	ID          uint64         // time_slots.id
	FacilityID  uint64         // time_slots.facility_id
	Start       int            // time_slots.start_min
	End         int            // time_slots.end_min
	Weekdays    []time.Weekday // time_slots.weekdays (comma separated in the DB)
	Capacity    int            // time_slots.capacity
	Restriction Restriction    // time_slots.restriction
	Active      bool           // time_slots.is_active
}

// RunsOn reports whether the slot recurs on the given weekday.  A slot
// with no weekday filter runs every day.
func (s TimeSlot) RunsOn(day time.Weekday) bool {
	if len(s.Weekdays) == 0 {
		return true
	}
	for _, d := range s.Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// StartAt and EndAt anchor the slot's minute-of-day bounds onto the date of
// the supplied timestamp, preserving its location.
func (s TimeSlot) StartAt(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, s.Start/60, s.Start%60, 0, 0, day.Location())
}

func (s TimeSlot) EndAt(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, s.End/60, s.End%60, 0, 0, day.Location())
}
