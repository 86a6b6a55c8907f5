package model

import "time"

// User is an operator account used by the update endpoints.  STAFF
// accounts may apply normal status updates; ADMIN accounts may also use
// the override path that bypasses invariant validation.  Patrons
// viewing availability are anonymous and have no account.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique login email.
//  PasswordHash – bcrypt hash of the password.
//  Role         – STAFF or ADMIN.
//  CreatedAt    – creation timestamp.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
}
