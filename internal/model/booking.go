package model

import "time"

// BookingStatus enumerates the states of the booking lifecycle.  The
// forward path is strictly linear; CANCELLED is reachable from every
// non-terminal state.  Transitions are validated against the successor
// table below rather than by comparing raw strings, so an illegal jump
// is impossible to express by accident.
type BookingStatus string

const (
	BookingInquiry      BookingStatus = "INQUIRY"
	BookingProposed     BookingStatus = "PROPOSED"
	BookingContractSent BookingStatus = "CONTRACT_SENT"
	BookingSigned       BookingStatus = "SIGNED"
	BookingInvoiced     BookingStatus = "INVOICED"
	BookingPaid         BookingStatus = "PAID"
	BookingCompleted    BookingStatus = "COMPLETED"
	BookingCancelled    BookingStatus = "CANCELLED"
)

// bookingNext maps each status to its single legal forward successor.
// Terminal states have no entry.
var bookingNext = map[BookingStatus]BookingStatus{
	BookingInquiry:      BookingProposed,
	BookingProposed:     BookingContractSent,
	BookingContractSent: BookingSigned,
	BookingSigned:       BookingInvoiced,
	BookingInvoiced:     BookingPaid,
	BookingPaid:         BookingCompleted,
}

// Next returns the forward successor of s and whether one exists.
func (s BookingStatus) Next() (BookingStatus, bool) {
	n, ok := bookingNext[s]
	return n, ok
}

// CanAdvanceTo reports whether target is the direct forward successor
// of s.  Skipping states is never legal.
func (s BookingStatus) CanAdvanceTo(target BookingStatus) bool {
	n, ok := bookingNext[s]
	return ok && n == target
}

// Terminal reports whether no further transition is permitted.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// Booking is the client-facing unit of engagement: one client, one or
// more invited talents, a date range and a single lifecycle status.
// Rows are never deleted; cancellation is a terminal status.
//
// Fields:
//  ID        – primary key identifier.
//  Code      – human-readable unique code, assigned once at creation.
//  ClientID  – user who the booking is for.
//  Title     – short description of the engagement.
//  Location  – where the engagement takes place.
//  StartsAt  – first day of the engagement (UTC).
//  EndsAt    – last day of the engagement (UTC); never before StartsAt.
//  RateCents – agreed rate in cents, nil while still under negotiation.
//  Status    – current lifecycle state.
//  CreatedBy – user who opened the booking (client or admin).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last modification timestamp.
type Booking struct {
	ID        uint64        // bookings.id
	Code      string        // bookings.code
	ClientID  uint64        // bookings.client_id
	Title     string        // bookings.title
	Location  string        // bookings.location
	StartsAt  time.Time     // bookings.starts_at
	EndsAt    time.Time     // bookings.ends_at
	RateCents *uint64       // bookings.rate_cents (nullable)
	Status    BookingStatus // bookings.status
	CreatedBy uint64        // bookings.created_by
	CreatedAt time.Time     // bookings.created_at
	UpdatedAt time.Time     // bookings.updated_at
}
