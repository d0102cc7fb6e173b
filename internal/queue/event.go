// Package queue defines message payloads exchanged over the message broker
// and the background consumer that audits them.
package queue

// Queue names used by the engine.  Both are declared durable by whichever
// side touches them first.
const (
	AccessAdmittedQueue  = "access.admitted"
	WaitlistChangedQueue = "waitlist.changed"
)

// AccessAdmittedEvent is published after an admission commits.  It carries
// enough for downstream consumers (notification fan-out, analytics,
// occupancy displays) to act without querying the primary database.
type AccessAdmittedEvent struct {
	RecordID   uint64  `json:"record_id"`
	FacilityID uint64  `json:"facility_id"`
	SlotID     *uint64 `json:"slot_id,omitempty"`
	MemberID   uint64  `json:"member_id"`
	Date       string  `json:"date"`
	ScannedAt  string  `json:"scanned_at"`
	Method     string  `json:"method"`
	Outcome    string  `json:"outcome"`
}

// WaitlistChangedEvent is published on every waitlist state change so the
// broadcast collaborator can update availability views and notify members.
type WaitlistChangedEvent struct {
	EntryID   uint64 `json:"entry_id,omitempty"`
	SlotID    uint64 `json:"slot_id"`
	MemberID  uint64 `json:"member_id"`
	Date      string `json:"date"`
	Position  int    `json:"position,omitempty"`
	Status    string `json:"status"`
	Change    string `json:"change"`
	ChangedAt string `json:"changed_at"`
}
