package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aanand-mishra/towers-api/internal/config"
	"github.com/aanand-mishra/towers-api/internal/storage/sqlite"
	"github.com/aanand-mishra/towers-api/internal/types"
	"github.com/aanand-mishra/towers-api/internal/utils/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*http.ServeMux, *sqlite.SQLite) {
	t.Helper()

	cfg := &config.Config{
		Env:         "dev",
		StoragePath: filepath.Join(t.TempDir(), "towers.db"),
	}
	store, err := sqlite.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Db.Close() })

	mux := http.NewServeMux()
	mux.HandleFunc("POST /users", New(store))
	mux.HandleFunc("GET /users", GetList(store))
	mux.HandleFunc("GET /users/{id}", GetByID(store))
	mux.HandleFunc("GET /users/{id}/towers", GetTowers(store))

	return mux, store
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCreateUser(t *testing.T) {
	mux, _ := newTestServer(t)

	rec := doJSON(t, mux, http.MethodPost, "/users",
		`{"first_name": "A", "last_name": "B", "email": "a@b.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var user types.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&user))
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "A", user.FirstName)
	assert.Equal(t, "B", user.LastName)
	assert.Equal(t, "a@b.com", user.Email)

	// The created user is retrievable by id.
	rec = doJSON(t, mux, http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched types.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&fetched))
	assert.Equal(t, user, fetched)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	mux, _ := newTestServer(t)

	rec := doJSON(t, mux, http.MethodPost, "/users",
		`{"first_name": "A", "last_name": "B", "email": "a@b.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/users",
		`{"first_name": "C", "last_name": "D", "email": "a@b.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body response.Error
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body.Message, "email")

	// A fresh email still works after the rejection.
	rec = doJSON(t, mux, http.MethodPost, "/users",
		`{"first_name": "C", "last_name": "D", "email": "c@d.com"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateUserValidation(t *testing.T) {
	mux, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"missing first_name", `{"last_name": "B", "email": "a@b.com"}`},
		{"missing last_name", `{"first_name": "A", "email": "a@b.com"}`},
		{"missing email", `{"first_name": "A", "last_name": "B"}`},
		{"malformed json", `{"first_name": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, mux, http.MethodPost, "/users", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetUserByIDErrors(t *testing.T) {
	mux, _ := newTestServer(t)

	rec := doJSON(t, mux, http.MethodGet, "/users/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/users/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUserList(t *testing.T) {
	mux, store := newTestServer(t)

	rec := doJSON(t, mux, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	_, err := store.CreateUser("A", "B", "a@b.com")
	require.NoError(t, err)
	_, err = store.CreateUser("C", "D", "c@d.com")
	require.NoError(t, err)

	rec = doJSON(t, mux, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var users []types.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&users))
	assert.Len(t, users, 2)
}

func TestGetTowersForUser(t *testing.T) {
	mux, store := newTestServer(t)

	alice, err := store.CreateUser("Alice", "A", "alice@test.com")
	require.NoError(t, err)
	bob, err := store.CreateUser("Bob", "B", "bob@test.com")
	require.NoError(t, err)

	t1, err := store.CreateTower(10, 10, alice)
	require.NoError(t, err)
	t2, err := store.CreateTower(20, 20, alice)
	require.NoError(t, err)
	_, err = store.CreateTower(30, 30, bob)
	require.NoError(t, err)

	rec := doJSON(t, mux, http.MethodGet, "/users/1/towers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var towers []types.Tower
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&towers))
	require.Len(t, towers, 2)
	assert.ElementsMatch(t, []int64{t1, t2}, []int64{towers[0].ID, towers[1].ID})
	for _, tw := range towers {
		assert.Equal(t, alice, tw.UserID)
		assert.Equal(t, "alice@test.com", tw.User.Email)
	}

	// A user with no towers — and a user that does not exist — both
	// answer 200 with an empty array, never 404.
	rec = doJSON(t, mux, http.MethodGet, "/users/999/towers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}
