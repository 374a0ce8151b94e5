package model

import "time"

// SignatureStatus enumerates the states of a single signer's row.
// PENDING moves to SIGNED by the signer's action or to EXPIRED by the
// contract expiry sweep.  Both are terminal.
type SignatureStatus string

const (
	SignaturePending SignatureStatus = "PENDING"
	SignatureSigned  SignatureStatus = "SIGNED"
	SignatureExpired SignatureStatus = "EXPIRED"
)

// Signature is one required signer's attestation against one contract.
// A row is spawned per required signer when the contract is sent, and
// is mutated at most once to SIGNED.  Re-signing an already SIGNED row
// is an idempotent no-op so that client retries are harmless.
//
// Fields:
//  ID          – primary key identifier.
//  ContractID  – contract this signature belongs to.
//  SignerID    – the one user allowed to sign this row.
//  BlobRef     – reference to the captured signature image.
//  SignerAddr  – network address captured at signing, advisory only.
//  SignerAgent – user agent captured at signing, advisory only.
//  Status      – PENDING, SIGNED or EXPIRED.
//  SignedAt    – when the signer signed; set exactly once.
//  CreatedAt   – when the row was spawned.
type Signature struct {
	ID          uint64          // signatures.id
	ContractID  uint64          // signatures.contract_id
	SignerID    uint64          // signatures.signer_id
	BlobRef     *string         // signatures.blob_ref (nullable)
	SignerAddr  *string         // signatures.signer_addr (nullable)
	SignerAgent *string         // signatures.signer_agent (nullable)
	Status      SignatureStatus // signatures.status
	SignedAt    *time.Time      // signatures.signed_at (nullable)
	CreatedAt   time.Time       // signatures.created_at
}
