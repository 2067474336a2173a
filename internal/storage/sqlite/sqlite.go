// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite keeps everything in a single file on disk — no network, no
// separate server process — which fits this single-node design.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/towers-api/internal/config"
	"github.com/aanand-mishra/towers-api/internal/storage"
	"github.com/aanand-mishra/towers-api/internal/types"

	"github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// The embedded *sql.DB is a connection pool and is safe for concurrent
// use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at cfg.StoragePath, creates the user
// and tower tables if absent, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	// _foreign_keys=on: SQLite ships with foreign key enforcement off
	// per connection; the DSN parameter turns it on so tower.user_id
	// actually constrains.
	db, err := sql.Open("sqlite3", cfg.StoragePath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent — safe on every startup.
	//
	// Schema:
	//   user:  id, first_name, last_name, email (UNIQUE — the store, not
	//          the handler, is the authority on duplicate emails)
	//   tower: id, latitude, longitude, user_id → user.id
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS user (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name TEXT NOT NULL,
			last_name  TEXT NOT NULL,
			email      TEXT NOT NULL UNIQUE
		);
		CREATE TABLE IF NOT EXISTS tower (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			latitude  REAL    NOT NULL,
			longitude REAL    NOT NULL,
			user_id   INTEGER NOT NULL REFERENCES user(id)
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: create tables: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// CreateUser inserts a new user row. A UNIQUE violation on email is
// translated to storage.ErrEmailTaken so the handler can answer 400
// instead of 500.
func (s *SQLite) CreateUser(firstName, lastName, email string) (int64, error) {
	// Placeholders (?) keep user input as pure data — never SQL syntax.
	stmt, err := s.Db.Prepare(
		"INSERT INTO user (first_name, last_name, email) VALUES (?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreateUser: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(firstName, lastName, email)
	if err != nil {
		// The driver reports constraint failures as sqlite3.Error with
		// an extended code. Email is the only UNIQUE column, so any
		// unique violation here is a duplicate email.
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) &&
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, storage.ErrEmailTaken
		}
		return 0, fmt.Errorf("CreateUser: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateUser: last insert id: %w", err)
	}

	return lastID, nil
}

// GetUserByID fetches exactly one user row matched by primary key.
func (s *SQLite) GetUserByID(id int64) (types.User, error) {
	stmt, err := s.Db.Prepare(
		"SELECT id, first_name, last_name, email FROM user WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.User{}, fmt.Errorf("GetUserByID: prepare: %w", err)
	}
	defer stmt.Close()

	var user types.User

	err = stmt.QueryRow(id).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.User{}, storage.ErrUserNotFound
		}
		return types.User{}, fmt.Errorf("GetUserByID: scan: %w", err)
	}

	return user, nil
}

// GetUsers returns all user rows as a slice.
func (s *SQLite) GetUsers() ([]types.User, error) {
	stmt, err := s.Db.Prepare(
		"SELECT id, first_name, last_name, email FROM user",
	)
	if err != nil {
		return nil, fmt.Errorf("GetUsers: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query()
	if err != nil {
		return nil, fmt.Errorf("GetUsers: query: %w", err)
	}
	defer rows.Close()

	// Pre-allocate an empty (non-nil) slice so the JSON encoding is []
	// rather than null when there are no users.
	users := make([]types.User, 0)

	for rows.Next() {
		var user types.User

		if err := rows.Scan(
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.Email,
		); err != nil {
			return nil, fmt.Errorf("GetUsers: scan row: %w", err)
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetUsers: rows iteration: %w", err)
	}

	return users, nil
}

// CreateTower inserts a new tower row owned by userID.
func (s *SQLite) CreateTower(latitude, longitude float64, userID int64) (int64, error) {
	stmt, err := s.Db.Prepare(
		"INSERT INTO tower (latitude, longitude, user_id) VALUES (?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreateTower: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(latitude, longitude, userID)
	if err != nil {
		return 0, fmt.Errorf("CreateTower: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateTower: last insert id: %w", err)
	}

	return lastID, nil
}

// towerColumns is the shared SELECT list for tower queries. The join
// embeds the owner in every result, so a tower response never needs a
// second round-trip for its user.
const towerColumns = `
	SELECT t.id, t.latitude, t.longitude, t.user_id,
	       u.id, u.first_name, u.last_name, u.email
	FROM tower t
	JOIN user u ON u.id = t.user_id`

// scanTower reads one joined tower row. The scan order must match the
// column order of towerColumns.
func scanTower(row interface{ Scan(...any) error }) (types.Tower, error) {
	var tower types.Tower

	err := row.Scan(
		&tower.ID,
		&tower.Latitude,
		&tower.Longitude,
		&tower.UserID,
		&tower.User.ID,
		&tower.User.FirstName,
		&tower.User.LastName,
		&tower.User.Email,
	)
	return tower, err
}

// GetTowerByID fetches exactly one tower row, owner embedded.
func (s *SQLite) GetTowerByID(id int64) (types.Tower, error) {
	stmt, err := s.Db.Prepare(towerColumns + " WHERE t.id = ? LIMIT 1")
	if err != nil {
		return types.Tower{}, fmt.Errorf("GetTowerByID: prepare: %w", err)
	}
	defer stmt.Close()

	tower, err := scanTower(stmt.QueryRow(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Tower{}, storage.ErrTowerNotFound
		}
		return types.Tower{}, fmt.Errorf("GetTowerByID: scan: %w", err)
	}

	return tower, nil
}

// GetTowers returns all tower rows, owners embedded.
func (s *SQLite) GetTowers() ([]types.Tower, error) {
	return s.queryTowers(towerColumns)
}

// GetTowersByUserID returns the towers owned by userID. An unknown
// user simply matches no rows, so the result is an empty slice.
func (s *SQLite) GetTowersByUserID(userID int64) ([]types.Tower, error) {
	return s.queryTowers(towerColumns+" WHERE t.user_id = ?", userID)
}

// queryTowers runs a joined tower query and collects the rows.
func (s *SQLite) queryTowers(query string, args ...any) ([]types.Tower, error) {
	stmt, err := s.Db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("queryTowers: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query(args...)
	if err != nil {
		return nil, fmt.Errorf("queryTowers: query: %w", err)
	}
	defer rows.Close()

	towers := make([]types.Tower, 0)

	for rows.Next() {
		tower, err := scanTower(rows)
		if err != nil {
			return nil, fmt.Errorf("queryTowers: scan row: %w", err)
		}
		towers = append(towers, tower)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("queryTowers: rows iteration: %w", err)
	}

	return towers, nil
}
