// Package tower contains all HTTP handlers for the Tower resource.
//
// Each exported function is a factory: it accepts the dependencies
// (storage) once at route-registration time and returns the
// http.HandlerFunc that runs on every request. The inner function
// closes over the dependencies, which keeps the router signature clean
// without any global state.
package tower

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/towers-api/internal/geo"
	"github.com/aanand-mishra/towers-api/internal/storage"
	"github.com/aanand-mishra/towers-api/internal/types"
	"github.com/aanand-mishra/towers-api/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// minSeparationKm is the minimum great-circle distance allowed between
// any two towers.
const minSeparationKm = 1.0

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /towers
// Creates a new tower from the JSON request body.
//
// Request body (JSON):
//
//	{ "latitude": 10.0, "longitude": 10.0, "user_id": 1 }
//
// Success response (201 Created) — the tower with its owner embedded:
//
//	{ "id": 1, "latitude": 10, "longitude": 10, "user_id": 1,
//	  "user": { "id": 1, "first_name": "A", "last_name": "B", "email": "a@b.com" } }
//
// Error responses:
//
//	400 Bad Request  — empty/malformed body, missing fields, coordinates
//	                   out of range, or another tower within 1 km
//	404 Not Found    — user_id does not reference an existing user
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a tower")

		var req types.CreateTowerRequest

		// A non-numeric latitude/longitude (e.g. "latitude": "abc")
		// fails right here as a decode error — encoding/json refuses
		// to put a string into a *float64.
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

		// Required fields and coordinate ranges come from the
		// validate:"..." tags on CreateTowerRequest.
		if err := validator.New().Struct(req); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		lat, lon, userID := *req.Latitude, *req.Longitude, *req.UserID

		// The owner must exist before we spend time on the scan.
		if _, err := store.GetUserByID(userID); err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				response.WriteJSON(w, http.StatusNotFound,
					response.GeneralError(err))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		// Proximity rule: reject if any existing tower is closer than
		// minSeparationKm. Linear scan over the full table; the first
		// violation found wins.
		//
		// The scan and the insert below are not one transaction, so two
		// near-simultaneous creations at the same spot can both pass.
		// Accepted for this single-node, low-write-rate service.
		towers, err := store.GetTowers()
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		for _, t := range towers {
			if geo.Distance(t.Latitude, t.Longitude, lat, lon) < minSeparationKm {
				slog.Info("tower placement rejected",
					slog.Int64("conflicting_id", t.ID))
				response.WriteJSON(w, http.StatusBadRequest,
					response.GeneralError(fmt.Errorf(
						"tower already exists within %vkm", minSeparationKm)))
				return
			}
		}

		lastID, err := store.CreateTower(lat, lon, userID)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("tower created", slog.Int64("id", lastID))

		// Re-fetch so the response is exactly what is stored, owner
		// embedded.
		tower, err := store.GetTowerByID(lastID)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusCreated, tower)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /towers/{id}
// Fetches a single tower by its primary key, owner embedded.
//
// Error responses:
//
//	400 Bad Request  — id is not a valid integer
//	404 Not Found    — no tower with that id
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a tower", slog.String("id", id))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("invalid id: must be an integer")))
			return
		}

		tower, err := store.GetTowerByID(intID)
		if err != nil {
			if errors.Is(err, storage.ErrTowerNotFound) {
				response.WriteJSON(w, http.StatusNotFound,
					response.GeneralError(err))
				return
			}
			slog.Error("error getting tower",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, tower)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /towers
// Returns a JSON array of all towers, each with its owner embedded.
// Returns an empty array [] (not null) when there are no towers.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all towers")

		towers, err := store.GetTowers()
		if err != nil {
			slog.Error("error getting towers", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, towers)
	}
}
