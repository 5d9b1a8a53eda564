package repos

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"sentryhome/internal/domain"
)

type GuestCartRepo struct{ db *sqlx.DB }

func NewGuestCartRepo(db *sqlx.DB) *GuestCartRepo { return &GuestCartRepo{db: db} }

// Load returns the guest cart for a session. A missing record reads as an
// empty cart. An unparseable payload is dropped wholesale and reported as
// empty, so the next write starts fresh.
func (r *GuestCartRepo) Load(sid string) ([]domain.CartLine, error) {
	var payload string
	if err := r.db.Get(&payload, `SELECT payload FROM guest_carts WHERE session_id = ?`, sid); err != nil {
		if err == sql.ErrNoRows {
			return []domain.CartLine{}, nil
		}
		return nil, err
	}
	var lines []domain.CartLine
	if err := json.Unmarshal([]byte(payload), &lines); err != nil {
		_ = r.Delete(sid)
		return []domain.CartLine{}, nil
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return lines, nil
}

// Save replaces the whole record (last write wins).
func (r *GuestCartRepo) Save(sid string, lines []domain.CartLine) error {
	b, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
		INSERT INTO guest_carts(session_id,payload,updated_at) VALUES(?,?,?)
		ON CONFLICT(session_id) DO UPDATE
		SET payload = excluded.payload, updated_at = excluded.updated_at
	`, sid, string(b), time.Now().Format(time.RFC3339))
	return err
}

func (r *GuestCartRepo) Delete(sid string) error {
	_, err := r.db.Exec(`DELETE FROM guest_carts WHERE session_id = ?`, sid)
	return err
}
