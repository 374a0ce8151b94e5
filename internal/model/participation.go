package model

import "time"

// RequestStatus enumerates the states of a talent's invitation.  The
// workflow is a single irrevocable step: PENDING resolves to ACCEPTED
// or DECLINED exactly once and never changes afterwards, because
// contract generation may already have started from the response.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestAccepted RequestStatus = "ACCEPTED"
	RequestDeclined RequestStatus = "DECLINED"
)

// Resolved reports whether the invitation has been answered.
func (s RequestStatus) Resolved() bool {
	return s == RequestAccepted || s == RequestDeclined
}

// Participation records one talent's invitation to one booking and the
// talent's response.  At most one unresolved row may exist per
// (booking, talent) pair.
//
// Fields:
//  ID          – primary key identifier.
//  BookingID   – booking the talent is invited to.
//  TalentID    – invited talent.
//  Status      – PENDING, ACCEPTED or DECLINED.
//  Message     – optional note the talent attached to the response.
//  RespondedAt – when the talent answered; set exactly once.
//  CreatedAt   – when the invitation was dispatched.
type Participation struct {
	ID          uint64        // participations.id
	BookingID   uint64        // participations.booking_id
	TalentID    uint64        // participations.talent_id
	Status      RequestStatus // participations.status
	Message     *string       // participations.message (nullable)
	RespondedAt *time.Time    // participations.responded_at (nullable)
	CreatedAt   time.Time     // participations.created_at
}
