// Package user contains all HTTP handlers for the User resource.
//
// Handlers follow the same closure/factory pattern as package tower:
// the constructor takes the storage dependency once, the returned
// function serves every request.
package user

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/towers-api/internal/storage"
	"github.com/aanand-mishra/towers-api/internal/types"
	"github.com/aanand-mishra/towers-api/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /users
// Creates a new user from the JSON request body.
//
// Request body (JSON):
//
//	{ "first_name": "A", "last_name": "B", "email": "a@b.com" }
//
// Success response (201 Created):
//
//	{ "id": 1, "first_name": "A", "last_name": "B", "email": "a@b.com" }
//
// Error responses:
//
//	400 Bad Request  — empty/malformed body, missing fields, or an
//	                   email that already exists (case-sensitive match)
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a user")

		var req types.CreateUserRequest

		err := json.NewDecoder(r.Body).Decode(&req)

		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}

		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validator.New().Struct(req); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		// Uniqueness is enforced by the store (UNIQUE column), which
		// closes the check-then-insert race a SELECT here would have.
		lastID, err := store.CreateUser(req.FirstName, req.LastName, req.Email)
		if err != nil {
			if errors.Is(err, storage.ErrEmailTaken) {
				response.WriteJSON(w, http.StatusBadRequest,
					response.GeneralError(err))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("user created", slog.Int64("id", lastID))

		user, err := store.GetUserByID(lastID)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusCreated, user)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /users/{id}
// Fetches a single user by their primary key.
//
// Error responses:
//
//	400 Bad Request  — id is not a valid integer
//	404 Not Found    — no user with that id
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a user", slog.String("id", id))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("invalid id: must be an integer")))
			return
		}

		user, err := store.GetUserByID(intID)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				response.WriteJSON(w, http.StatusNotFound,
					response.GeneralError(err))
				return
			}
			slog.Error("error getting user",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, user)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /users
// Returns a JSON array of all users.
// Returns an empty array [] (not null) when there are no users.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all users")

		users, err := store.GetUsers()
		if err != nil {
			slog.Error("error getting users", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, users)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetTowers handles GET /users/{id}/towers
// Returns the towers owned by the given user, each with the owner
// embedded.
//
// An unknown user is not an error here: the result is simply an empty
// array, mirroring "a user with no towers".
//
// Error responses:
//
//	400 Bad Request  — id is not a valid integer
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetTowers(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting towers for user", slog.String("user_id", id))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("invalid id: must be an integer")))
			return
		}

		towers, err := store.GetTowersByUserID(intID)
		if err != nil {
			slog.Error("error getting towers for user",
				slog.String("user_id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, towers)
	}
}
