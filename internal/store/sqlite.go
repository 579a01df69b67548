package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"

	"sigil/internal/domain"
)

var (
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("store: username already registered")
	// ErrDuplicateAction is returned when a user votes twice on one rumor.
	ErrDuplicateAction = errors.New("store: action already recorded")
	// ErrDuplicateRumor is returned when a user posts the same rumor twice.
	ErrDuplicateRumor = errors.New("store: rumor already posted")
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id          TEXT PRIMARY KEY,
    username    TEXT NOT NULL UNIQUE,
    auth_salt   BLOB NOT NULL,
    auth_hash   BLOB NOT NULL,
    public_key  BLOB NOT NULL,
    envelope    TEXT NOT NULL,
    invited_by  TEXT,
    created_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS actions (
    id                TEXT PRIMARY KEY,
    user_id           TEXT NOT NULL REFERENCES users(id),
    rumor_id          TEXT NOT NULL,
    up                INTEGER NOT NULL,
    prediction        REAL NOT NULL,
    payload           BLOB NOT NULL,
    signature         TEXT NOT NULL,
    signer_public_key BLOB,
    created_at        INTEGER NOT NULL,
    UNIQUE (user_id, rumor_id)
);

CREATE INDEX IF NOT EXISTS idx_actions_rumor ON actions(rumor_id);

CREATE TABLE IF NOT EXISTS rumors (
    id                TEXT PRIMARY KEY,
    author_id         TEXT NOT NULL REFERENCES users(id),
    content           TEXT NOT NULL,
    content_hash      TEXT NOT NULL,
    payload           BLOB NOT NULL,
    signature         TEXT NOT NULL,
    signer_public_key BLOB,
    created_at        INTEGER NOT NULL,
    UNIQUE (author_id, content_hash)
);
`

// UserRecord is a registered identity as held by the identity service.
type UserRecord struct {
	ID        domain.UserID
	Username  domain.Username
	AuthSalt  []byte
	AuthHash  []byte
	PublicKey []byte
	Envelope  domain.Envelope
	InvitedBy domain.UserID
	CreatedAt time.Time
}

// ActionRecord is an accepted, verified vote.
type ActionRecord struct {
	ID              string
	UserID          domain.UserID
	RumorID         string
	Up              bool
	Prediction      float64
	Payload         []byte
	Signature       string
	SignerPublicKey []byte
	CreatedAt       time.Time
}

// RumorRecord is an accepted, verified rumor post. ContentHash is the hex
// digest carried in the signed payload.
type RumorRecord struct {
	ID              string
	AuthorID        domain.UserID
	Content         string
	ContentHash     string
	Payload         []byte
	Signature       string
	SignerPublicKey []byte
	CreatedAt       time.Time
}

// Tally counts the votes recorded for one rumor.
type Tally struct {
	RumorID string `json:"rumorId"`
	Up      int    `json:"up"`
	Down    int    `json:"down"`
}

// SQLite is the identity service database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateUser inserts u. A taken username yields ErrUsernameTaken.
func (s *SQLite) CreateUser(ctx context.Context, u UserRecord) error {
	env, err := json.Marshal(u.Envelope)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, auth_salt, auth_hash, public_key, envelope, invited_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID.String(), u.Username.String(), u.AuthSalt, u.AuthHash, u.PublicKey, string(env),
		nullString(u.InvitedBy.String()), u.CreatedAt.UnixNano(),
	)
	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UserByName looks a user up by username.
func (s *SQLite) UserByName(ctx context.Context, name domain.Username) (UserRecord, bool, error) {
	return s.queryUser(ctx, `WHERE username = ?`, name.String())
}

// UserByID looks a user up by id.
func (s *SQLite) UserByID(ctx context.Context, id domain.UserID) (UserRecord, bool, error) {
	return s.queryUser(ctx, `WHERE id = ?`, id.String())
}

func (s *SQLite) queryUser(ctx context.Context, where string, arg any) (UserRecord, bool, error) {
	var (
		u         UserRecord
		id, name  string
		env       string
		invitedBy sql.NullString
		created   int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, auth_salt, auth_hash, public_key, envelope, invited_by, created_at
		FROM users `+where, arg,
	).Scan(&id, &name, &u.AuthSalt, &u.AuthHash, &u.PublicKey, &env, &invitedBy, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return UserRecord{}, false, nil
	}
	if err != nil {
		return UserRecord{}, false, fmt.Errorf("get user: %w", err)
	}
	if err := json.Unmarshal([]byte(env), &u.Envelope); err != nil {
		return UserRecord{}, false, fmt.Errorf("decode envelope: %w", err)
	}
	u.ID = domain.UserID(id)
	u.Username = domain.Username(name)
	u.InvitedBy = domain.UserID(invitedBy.String)
	u.CreatedAt = time.Unix(0, created)
	return u, true, nil
}

// UpdateCredentials replaces a user's auth hash and sealed envelope.
func (s *SQLite) UpdateCredentials(
	ctx context.Context,
	id domain.UserID,
	authSalt, authHash []byte,
	env domain.Envelope,
) error {
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET auth_salt = ?, auth_hash = ?, envelope = ? WHERE id = ?`,
		authSalt, authHash, string(b), id.String(),
	)
	if err != nil {
		return fmt.Errorf("update credentials: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update credentials: no user %s", id)
	}
	return nil
}

// CountUsers returns the number of registered users.
func (s *SQLite) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// InsertAction records a verified vote. A second vote by the same user on the
// same rumor yields ErrDuplicateAction.
func (s *SQLite) InsertAction(ctx context.Context, a ActionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO actions (id, user_id, rumor_id, up, prediction, payload, signature, signer_public_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID.String(), a.RumorID, a.Up, a.Prediction, a.Payload, a.Signature,
		a.SignerPublicKey, a.CreatedAt.UnixNano(),
	)
	if isUniqueViolation(err) {
		return ErrDuplicateAction
	}
	if err != nil {
		return fmt.Errorf("insert action: %w", err)
	}
	return nil
}

// InsertRumor records a verified rumor. Posting identical content twice from
// one account yields ErrDuplicateRumor.
func (s *SQLite) InsertRumor(ctx context.Context, r RumorRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rumors (id, author_id, content, content_hash, payload, signature, signer_public_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.AuthorID.String(), r.Content, r.ContentHash, r.Payload, r.Signature,
		r.SignerPublicKey, r.CreatedAt.UnixNano(),
	)
	if isUniqueViolation(err) {
		return ErrDuplicateRumor
	}
	if err != nil {
		return fmt.Errorf("insert rumor: %w", err)
	}
	return nil
}

// RumorByID looks a posted rumor up by id.
func (s *SQLite) RumorByID(ctx context.Context, id string) (RumorRecord, bool, error) {
	var (
		r        RumorRecord
		authorID string
		created  int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, author_id, content, content_hash, payload, signature, signer_public_key, created_at
		FROM rumors WHERE id = ?`, id,
	).Scan(&r.ID, &authorID, &r.Content, &r.ContentHash, &r.Payload, &r.Signature, &r.SignerPublicKey, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return RumorRecord{}, false, nil
	}
	if err != nil {
		return RumorRecord{}, false, fmt.Errorf("get rumor: %w", err)
	}
	r.AuthorID = domain.UserID(authorID)
	r.CreatedAt = time.Unix(0, created)
	return r, true, nil
}

// TallyRumor counts the up and down votes recorded for rumorID.
func (s *SQLite) TallyRumor(ctx context.Context, rumorID string) (Tally, error) {
	t := Tally{RumorID: rumorID}
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(up), 0), COALESCE(SUM(1 - up), 0)
		FROM actions WHERE rumor_id = ?`, rumorID,
	).Scan(&t.Up, &t.Down)
	if err != nil {
		return Tally{}, fmt.Errorf("tally rumor: %w", err)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
		se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
