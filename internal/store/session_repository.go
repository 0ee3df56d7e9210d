package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// SessionRecord is a stored backend session
type SessionRecord struct {
	ID        string     `db:"id"`
	Token     string     `db:"token"`
	Subject   string     `db:"subject"`
	CreatedAt time.Time  `db:"created_at"`
	ExpiresAt *time.Time `db:"expires_at"`
}

// SessionRepository handles database operations related to sessions
type SessionRepository struct {
	db *Database
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *Database) *SessionRepository {
	return &SessionRepository{
		db: db,
	}
}

// GetByID retrieves a session by ID. A missing session yields nil.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*SessionRecord, error) {
	record := &SessionRecord{}
	query := r.db.GetDB().Rebind(`SELECT id, token, subject, created_at, expires_at FROM sessions WHERE id = ?`)

	err := r.db.GetDB().GetContext(ctx, record, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// Latest retrieves the most recently created session
func (r *SessionRepository) Latest(ctx context.Context) (*SessionRecord, error) {
	record := &SessionRecord{}
	query := `SELECT id, token, subject, created_at, expires_at FROM sessions ORDER BY created_at DESC LIMIT 1`

	err := r.db.GetDB().GetContext(ctx, record, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// Replace stores record as the only session, dropping older sessions and
// their drafts.
func (r *SessionRepository) Replace(ctx context.Context, record *SessionRecord) error {
	return r.db.Transaction(func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM drafts`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
			return err
		}

		query := tx.Rebind(`INSERT INTO sessions (id, token, subject, created_at, expires_at) VALUES (?, ?, ?, ?, ?)`)
		_, err := tx.ExecContext(ctx, query,
			record.ID, record.Token, record.Subject, record.CreatedAt, record.ExpiresAt)
		return err
	})
}

// Delete removes a session and its drafts
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.Transaction(func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM drafts WHERE session_id = ?`), id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM sessions WHERE id = ?`), id)
		return err
	})
}
