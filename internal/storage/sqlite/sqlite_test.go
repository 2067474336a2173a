package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/aanand-mishra/towers-api/internal/config"
	"github.com/aanand-mishra/towers-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStorage opens a fresh database under a per-test temp dir,
// exercising the same schema bootstrap the server runs at startup.
func newTestStorage(t *testing.T) *SQLite {
	t.Helper()

	cfg := &config.Config{
		Env:         "dev",
		StoragePath: filepath.Join(t.TempDir(), "towers.db"),
	}

	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Db.Close() })

	return s
}

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStorage(t)

	id, err := s.CreateUser("A", "B", "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	user, err := s.GetUserByID(id)
	require.NoError(t, err)
	assert.Equal(t, "A", user.FirstName)
	assert.Equal(t, "B", user.LastName)
	assert.Equal(t, "a@b.com", user.Email)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.CreateUser("A", "B", "a@b.com")
	require.NoError(t, err)

	_, err = s.CreateUser("C", "D", "a@b.com")
	assert.ErrorIs(t, err, storage.ErrEmailTaken)

	// Email matching is case-sensitive: a different casing is a
	// different address.
	_, err = s.CreateUser("C", "D", "A@b.com")
	assert.NoError(t, err)
}

func TestGetUserByIDNotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetUserByID(999)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestGetUsersEmpty(t *testing.T) {
	s := newTestStorage(t)

	users, err := s.GetUsers()
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestCreateAndGetTower(t *testing.T) {
	s := newTestStorage(t)

	userID, err := s.CreateUser("A", "B", "a@b.com")
	require.NoError(t, err)

	towerID, err := s.CreateTower(10.0, 20.0, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), towerID)

	tower, err := s.GetTowerByID(towerID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, tower.Latitude)
	assert.Equal(t, 20.0, tower.Longitude)
	assert.Equal(t, userID, tower.UserID)

	// The owner is embedded by the join.
	assert.Equal(t, userID, tower.User.ID)
	assert.Equal(t, "a@b.com", tower.User.Email)
}

func TestGetTowerByIDNotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetTowerByID(999)
	assert.ErrorIs(t, err, storage.ErrTowerNotFound)
}

func TestGetTowersByUserID(t *testing.T) {
	s := newTestStorage(t)

	alice, err := s.CreateUser("Alice", "A", "alice@test.com")
	require.NoError(t, err)
	bob, err := s.CreateUser("Bob", "B", "bob@test.com")
	require.NoError(t, err)

	t1, err := s.CreateTower(10, 10, alice)
	require.NoError(t, err)
	t2, err := s.CreateTower(20, 20, alice)
	require.NoError(t, err)
	_, err = s.CreateTower(30, 30, bob)
	require.NoError(t, err)

	towers, err := s.GetTowersByUserID(alice)
	require.NoError(t, err)
	require.Len(t, towers, 2)

	ids := []int64{towers[0].ID, towers[1].ID}
	assert.ElementsMatch(t, []int64{t1, t2}, ids)

	// A user with no towers — and an unknown user — both yield an
	// empty, non-nil slice.
	none, err := s.GetTowersByUserID(999)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSchemaBootstrapIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{Env: "dev", StoragePath: filepath.Join(dir, "towers.db")}

	s1, err := New(cfg)
	require.NoError(t, err)

	_, err = s1.CreateUser("A", "B", "a@b.com")
	require.NoError(t, err)
	require.NoError(t, s1.Db.Close())

	// Reopening the same file must not disturb existing data.
	s2, err := New(cfg)
	require.NoError(t, err)
	defer s2.Db.Close()

	user, err := s2.GetUserByID(1)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)
}
