// Package engine implements the booking → contract → signature
// lifecycle rules: the booking state machine, the invitation
// sub-workflow, contract generation and dispatch, and the signature
// ledger with its completion rule.  The engine reads and writes
// through small store interfaces so the rules can be exercised without
// a database; the MySQL implementations live in internal/repository.
package engine

import "errors"

// Sentinel errors returned by engine operations.  Handlers translate
// these into specific HTTP responses so the caller always learns which
// rule rejected the request.
var (
	// ErrInvalidTransition is returned when a requested booking or
	// contract status change is not a legal successor of the current
	// state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDuplicatePending is returned when a talent already has an
	// unresolved invitation for the same booking.
	ErrDuplicatePending = errors.New("talent already has a pending invitation")

	// ErrAlreadyResponded is returned when a talent tries to answer an
	// invitation that is no longer pending.  Responses are immutable.
	ErrAlreadyResponded = errors.New("invitation already responded to")

	// ErrPreconditionFailed is returned when contract creation is
	// attempted without an accepted participation, or when a second
	// active contract is attempted for the same participation.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrNotSigner is returned when the caller of Sign does not match
	// the row's designated signer.
	ErrNotSigner = errors.New("caller is not the designated signer")

	// ErrContractNotSignable is returned when a signature is submitted
	// against a contract that is not in SENT state.
	ErrContractNotSignable = errors.New("contract is not open for signing")

	// ErrNotFound is returned when a referenced booking, participation,
	// contract or signature does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the actor's role does not permit
	// the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput is returned when a request fails basic field
	// validation, such as a booking whose end predates its start.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned after bounded internal retries of a
	// contended conditional update are exhausted.  Operations are
	// designed to be safely retriable, so callers may retry.
	ErrConflict = errors.New("conflicting concurrent update")
)
