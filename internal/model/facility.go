package model

// Facility represents a physical resource with controlled access, such as
// a swimming pool or a gym.  Each facility owns its own slot catalog and
// entrance token set.  Admission decisions are always scoped to a single
// facility.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – human readable name shown on denial messages.
//  MultiSlot – true when attendance is tracked per time slot; single-slot
//              facilities (e.g. an all-day gym) track one record per member
//              per day and store a NULL slot id on attendance rows.
//  Active    – inactive facilities reject every scan.
type Facility struct {
	ID        uint64 // facilities.id
	Name      string // facilities.name
	MultiSlot bool   // facilities.multi_slot
	Active    bool   // facilities.is_active
}
