package model

import "time"

// Admission methods recorded on attendance rows.
const (
	MethodScanned = "scanned" // token presented at an entrance
	MethodManual  = "manual"  // entered by staff at the front desk
)

// DateOf formats a timestamp as the calendar date string used in
// attendance and waitlist keys (YYYY-MM-DD, in the timestamp's location).
func DateOf(t time.Time) string { return t.Format("2006-01-02") }

// AttendanceRecord is the proof that a member was admitted to a facility
// for a given slot occurrence.  Exactly one record is created by a
// successful admission; records are never updated.  The store enforces
// at most one record per (member, slot, date) — or per (member, facility,
// date) when SlotID is nil for single-slot facilities.
//
// Fields:
//  ID         – primary key identifier.
//  FacilityID – facility the member entered.
//  SlotID     – resolved slot, nil for single-slot facilities.
//  MemberID   – admitted member.
//  Date       – calendar date of the occurrence (YYYY-MM-DD).
//  ScannedAt  – timestamp of the admission decision, UTC.
//  Method     – MethodScanned or MethodManual.
type AttendanceRecord struct {
	ID         uint64    // attendance_records.id
	FacilityID uint64    // attendance_records.facility_id
	SlotID     *uint64   // attendance_records.slot_id (nullable)
	MemberID   uint64    // attendance_records.member_id
	Date       string    // attendance_records.attended_on
	ScannedAt  time.Time // attendance_records.scanned_at
	Method     string    // attendance_records.method
}
