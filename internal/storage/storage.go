// Package storage defines the Storage interface — the contract any
// database backend must satisfy to work with this application.
//
// Handlers depend only on this interface, so switching databases means
// implementing it for the new backend and changing one line in main.go,
// and tests can run against any implementation.
package storage

import (
	"errors"

	"github.com/aanand-mishra/towers-api/internal/types"
)

// Sentinel errors returned by implementations. Handlers match these
// with errors.Is to choose the HTTP status code; anything else is a
// storage failure and maps to 500.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrTowerNotFound = errors.New("tower not found")
	ErrEmailTaken    = errors.New("email already exists")
)

// Storage is the database contract. IDs are assigned by the store,
// uniquely and monotonically.
type Storage interface {
	// CreateUser inserts a new user and returns the generated ID.
	// Returns ErrEmailTaken if the email is already registered
	// (exact, case-sensitive match).
	CreateUser(firstName, lastName, email string) (int64, error)

	// GetUserByID fetches a single user by primary key.
	// Returns ErrUserNotFound if no such row exists.
	GetUserByID(id int64) (types.User, error)

	// GetUsers returns every user. Returns an empty slice (not nil)
	// when there are none.
	GetUsers() ([]types.User, error)

	// CreateTower inserts a new tower owned by userID and returns the
	// generated ID. The caller is responsible for validating the owner
	// and the placement beforehand.
	CreateTower(latitude, longitude float64, userID int64) (int64, error)

	// GetTowerByID fetches a single tower, owner embedded.
	// Returns ErrTowerNotFound if no such row exists.
	GetTowerByID(id int64) (types.Tower, error)

	// GetTowers returns every tower, owners embedded.
	// Returns an empty slice (not nil) when there are none.
	GetTowers() ([]types.Tower, error)

	// GetTowersByUserID returns the towers owned by the given user,
	// owners embedded. An unknown user yields an empty slice, not an
	// error.
	GetTowersByUserID(userID int64) ([]types.Tower, error)
}
