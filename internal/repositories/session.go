package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/snap2style/s2s/internal/models"
	"github.com/snap2style/s2s/internal/shared"
)

// SessionRepository stores the single persisted auth session.
//
// The table holds at most one row; saving a new session replaces the old one.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save replaces the stored session with the given one.
func (r *SessionRepository) Save(session models.Session) error {
	if session.Cookie == "" {
		return fmt.Errorf("%w: session cookie is empty", shared.ErrInvalidInput)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}

	now := time.Now()
	if session.ID == "" {
		session.ID = shared.GenerateID()
	}
	if session.Kind == "" {
		session.Kind = "user"
	}

	query := `
		INSERT INTO sessions (id, email, cookie, kind, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if _, err := tx.Exec(query, session.ID, session.Email, session.Cookie, session.Kind, now, now); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}

	return nil
}

// Current returns the stored session, or [shared.ErrNotAuthenticated] when
// no session exists.
func (r *SessionRepository) Current() (*models.Session, error) {
	query := `
		SELECT id, email, cookie, kind, created_at, updated_at
		FROM sessions
		LIMIT 1
	`

	var session models.Session
	err := r.db.QueryRow(query).Scan(
		&session.ID,
		&session.Email,
		&session.Cookie,
		&session.Kind,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, shared.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	return &session, nil
}

// Clear removes the stored session. Clearing an empty table is not an error.
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	return nil
}
