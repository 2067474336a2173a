// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and utils can all import types without depending
// on each other.
package types

// User represents an owner of towers.
//
// The json:"..." tags produce the wire representation required by the
// API: {id, first_name, last_name, email}.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Tower is a geolocated installation record owned by exactly one User.
//
// User is always embedded in responses; it is filled by the storage
// layer with an explicit join, never stored on the row itself.
type Tower struct {
	ID        int64   `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	UserID    int64   `json:"user_id"`
	User      User    `json:"user"`
}

// CreateUserRequest is the POST /users payload.
//
// The validate:"..." tags are checked by go-playground/validator;
// "required" rejects missing or empty fields.
type CreateUserRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
	Email     string `json:"email"      validate:"required"`
}

// CreateTowerRequest is the POST /towers payload.
//
// The numeric fields are pointers so a missing key is distinguishable
// from a legitimate zero value — latitude 0 / longitude 0 is a valid
// location (the Gulf of Guinea), not an absent one. The validator
// dereferences the pointers for the range checks.
type CreateTowerRequest struct {
	Latitude  *float64 `json:"latitude"  validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
	UserID    *int64   `json:"user_id"   validate:"required"`
}
