package model

import "time"

// ContractStatus enumerates the states of a contract.  SIGNED, EXPIRED
// and CANCELLED are all terminal.  SIGNED is only ever set by the
// completion rule in the engine, never by a direct request.
type ContractStatus string

const (
	ContractDraft     ContractStatus = "DRAFT"
	ContractSent      ContractStatus = "SENT"
	ContractSigned    ContractStatus = "SIGNED"
	ContractExpired   ContractStatus = "EXPIRED"
	ContractCancelled ContractStatus = "CANCELLED"
)

// contractNext lists the legal successors for each contract status.
var contractNext = map[ContractStatus][]ContractStatus{
	ContractDraft: {ContractSent, ContractCancelled},
	ContractSent:  {ContractSigned, ContractExpired, ContractCancelled},
}

// CanTransitionTo reports whether target is a legal successor of s.
func (s ContractStatus) CanTransitionTo(target ContractStatus) bool {
	for _, n := range contractNext[s] {
		if n == target {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s ContractStatus) Terminal() bool {
	return s == ContractSigned || s == ContractExpired || s == ContractCancelled
}

// Contract is a signable document bound to exactly one accepted
// participation.  At most one non-cancelled contract may exist per
// participation.  The generated content is an opaque blob produced by
// the renderer; the engine never parses it.
//
// Fields:
//  ID              – primary key identifier.
//  BookingID       – booking this contract belongs to.
//  ParticipationID – accepted participation the contract is bound to.
//  Title           – display title of the document.
//  Content         – generated contract text, opaque to the engine.
//  DocumentRef     – reference to the finalized document, if any.
//  Status          – DRAFT, SENT, SIGNED, EXPIRED or CANCELLED.
//  DueAt           – optional signing deadline; SENT contracts past it expire.
//  CreatedBy       – admin who created the contract.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last modification timestamp.
type Contract struct {
	ID              uint64         // contracts.id
	BookingID       uint64         // contracts.booking_id
	ParticipationID uint64         // contracts.participation_id
	Title           string         // contracts.title
	Content         string         // contracts.content
	DocumentRef     *string        // contracts.document_ref (nullable)
	Status          ContractStatus // contracts.status
	DueAt           *time.Time     // contracts.due_at (nullable)
	CreatedBy       uint64         // contracts.created_by
	CreatedAt       time.Time      // contracts.created_at
	UpdatedAt       time.Time      // contracts.updated_at
}

// PastDue reports whether the contract has a deadline and now is past
// it.  Contracts without a deadline never expire.
func (c *Contract) PastDue(now time.Time) bool {
	return c.DueAt != nil && c.DueAt.Before(now)
}
