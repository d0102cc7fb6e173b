package model

import "time"

// WaitlistStatus is the state of a waitlist entry.  Entries start pending;
// the external promotion scheduler moves them through notified and
// confirmed, and either the member or the scheduler may cancel.
type WaitlistStatus string

const (
	WaitlistPending   WaitlistStatus = "pending"
	WaitlistNotified  WaitlistStatus = "notified"
	WaitlistConfirmed WaitlistStatus = "confirmed"
	WaitlistCancelled WaitlistStatus = "cancelled"
)

// WaitlistEntry is a member's place in the queue for a full slot
// occurrence.  Position is assigned as current-max+1 within (slot, date)
// at join time and is strictly increasing in join order; it is never
// reassigned.  At most one pending entry may exist per (slot, member,
// date).
type WaitlistEntry struct {
	ID       uint64         // waitlist_entries.id
	SlotID   uint64         // waitlist_entries.slot_id
	MemberID uint64         // waitlist_entries.member_id
	Date     string         // waitlist_entries.wanted_on (YYYY-MM-DD)
	Position int            // waitlist_entries.position
	Status   WaitlistStatus // waitlist_entries.status
	JoinedAt time.Time      // waitlist_entries.created_at
}
