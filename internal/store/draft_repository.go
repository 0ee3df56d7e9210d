package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	json "github.com/goccy/go-json"
)

// DraftKey identifies one in-progress wizard draft
type DraftKey struct {
	SessionID string
	Flow      string
	ScopeID   string
}

// DraftRecord is a stored draft
type DraftRecord struct {
	SessionID string    `db:"session_id"`
	Flow      string    `db:"flow"`
	ScopeID   string    `db:"scope_id"`
	Payload   string    `db:"payload"`
	Step      int       `db:"step"`
	UpdatedAt time.Time `db:"updated_at"`
}

// DraftRepository handles database operations related to wizard drafts
type DraftRepository struct {
	db *Database
}

// NewDraftRepository creates a new DraftRepository
func NewDraftRepository(db *Database) *DraftRepository {
	return &DraftRepository{
		db: db,
	}
}

// Load retrieves the draft stored under key. A missing draft yields nil
// values and no error.
func (r *DraftRepository) Load(ctx context.Context, key DraftKey) (map[string]any, int, error) {
	record := DraftRecord{}
	query := r.db.GetDB().Rebind(`SELECT session_id, flow, scope_id, payload, step, updated_at
			  FROM drafts WHERE session_id = ? AND flow = ? AND scope_id = ?`)

	err := r.db.GetDB().GetContext(ctx, &record, query, key.SessionID, key.Flow, key.ScopeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, nil
		}
		return nil, 0, err
	}

	values := map[string]any{}
	if err := json.Unmarshal([]byte(record.Payload), &values); err != nil {
		return nil, 0, err
	}
	return values, record.Step, nil
}

// Save stores values under key, replacing any previous draft
func (r *DraftRepository) Save(ctx context.Context, key DraftKey, values map[string]any, step int) error {
	payload, err := json.Marshal(values)
	if err != nil {
		return err
	}

	query := r.db.GetDB().Rebind(`INSERT INTO drafts (session_id, flow, scope_id, payload, step, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)
			  ON CONFLICT (session_id, flow, scope_id)
			  DO UPDATE SET payload = excluded.payload, step = excluded.step, updated_at = excluded.updated_at`)

	_, err = r.db.GetDB().ExecContext(ctx, query,
		key.SessionID, key.Flow, key.ScopeID, string(payload), step, time.Now().UTC())
	return err
}

// Delete removes the draft stored under key
func (r *DraftRepository) Delete(ctx context.Context, key DraftKey) error {
	query := r.db.GetDB().Rebind(`DELETE FROM drafts WHERE session_id = ? AND flow = ? AND scope_id = ?`)
	_, err := r.db.GetDB().ExecContext(ctx, query, key.SessionID, key.Flow, key.ScopeID)
	return err
}
