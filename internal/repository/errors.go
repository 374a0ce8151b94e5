// Package repository implements the engine's store interfaces on
// MySQL.  Every conditional mutation is an UPDATE guarded by the
// expected current status with a rows-affected check, which is what
// serializes concurrent writers per aggregate.  Domain-visible
// failures are reported with the engine's sentinel errors so handlers
// and the engine can branch with errors.Is.
package repository

import "errors"

// ErrEmailTaken is returned when registration reuses an existing
// email address.  Handlers translate this into an HTTP 409 response.
var ErrEmailTaken = errors.New("email already registered")
