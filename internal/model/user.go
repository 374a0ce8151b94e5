package model

import "time"

// User is a local directory entry.  The service keeps its own small
// user registry so it can run stand-alone: registration fixes the
// role, login mints access tokens carrying it.  Everything the engine
// needs from identity is the (ID, Role) pair.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name.
//  Email        – unique login identifier.
//  PasswordHash – bcrypt hash of the password.
//  Role         – ADMIN, TALENT or CLIENT.
//  CreatedAt    – creation timestamp.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	CreatedAt    time.Time // users.created_at
}
