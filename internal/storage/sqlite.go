package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tazhate/leaderflow/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

// Key kinds stored per user.
const (
	KindEvents        = "events"
	KindTasks         = "tasks"
	KindDocuments     = "documents"
	KindNotifSettings = "notif_settings"
)

const keyPrefix = "leaderflow_"

// ScopedKey namespaces a storage key by user.
func ScopedKey(userID, kind string) string {
	return keyPrefix + userID + "_" + kind
}

type Storage struct {
	db *sql.DB
}

func New(dbPath string) (*Storage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL COLLATE NOCASE,
			full_name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'Lãnh đạo',
			password_hash TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// === Key-value ===

// Get returns the raw value stored under key. ok is false when the key is absent.
func (s *Storage) Get(key string) (value string, ok bool, err error) {
	err = s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Storage) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	return err
}

// DeleteUserData removes every key scoped to userID.
func (s *Storage) DeleteUserData(userID string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key IN (?, ?, ?, ?)`,
		ScopedKey(userID, KindEvents),
		ScopedKey(userID, KindTasks),
		ScopedKey(userID, KindDocuments),
		ScopedKey(userID, KindNotifSettings),
	)
	return err
}

// === Users ===

// UserRecord is a directory entry including its password hash.
type UserRecord struct {
	domain.User
	PasswordHash string
}

func (s *Storage) CreateUser(u *UserRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO users (id, username, full_name, role, password_hash) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.FullName, u.Role, u.PasswordHash,
	)
	if err != nil {
		return err
	}
	u.CreatedAt = time.Now()
	return nil
}

func (s *Storage) GetUserByID(id string) (*UserRecord, error) {
	u := &UserRecord{}
	err := s.db.QueryRow(
		`SELECT id, username, full_name, role, password_hash, created_at FROM users WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.Username, &u.FullName, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// GetUserByUsername matches case-insensitively.
func (s *Storage) GetUserByUsername(username string) (*UserRecord, error) {
	u := &UserRecord{}
	err := s.db.QueryRow(
		`SELECT id, username, full_name, role, password_hash, created_at FROM users WHERE username = ? COLLATE NOCASE`,
		username,
	).Scan(&u.ID, &u.Username, &u.FullName, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (s *Storage) ListUsers() ([]*UserRecord, error) {
	rows, err := s.db.Query(`SELECT id, username, full_name, role, password_hash, created_at FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*UserRecord
	for rows.Next() {
		u := &UserRecord{}
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName, &u.Role, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Storage) UpdateUser(u *UserRecord) error {
	res, err := s.db.Exec(
		`UPDATE users SET username = ?, full_name = ?, role = ?, password_hash = ? WHERE id = ?`,
		u.Username, u.FullName, u.Role, u.PasswordHash, u.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Storage) DeleteUser(id string) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	return err
}
