package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type SessionRepo struct{ db *sqlx.DB }

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{db: db} }

// BindToken stores the bearer token the remote API issued for this session.
func (r *SessionRepo) BindToken(sid, email, token string) error {
	_, err := r.db.Exec(`
		INSERT INTO sessions(id,token,email,last_seen) VALUES(?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE
		SET token = excluded.token, email = excluded.email, last_seen = CURRENT_TIMESTAMP
	`, sid, token, email)
	return err
}

// Token returns the bearer token bound to a session, if any. Token presence
// is what decides guest vs. authenticated mode.
func (r *SessionRepo) Token(sid string) (string, bool) {
	var tok sql.NullString
	if err := r.db.Get(&tok, `SELECT token FROM sessions WHERE id = ?`, sid); err != nil {
		return "", false
	}
	if !tok.Valid || tok.String == "" {
		return "", false
	}
	return tok.String, true
}

// Email returns the email the session logged in with, or "".
func (r *SessionRepo) Email(sid string) string {
	var email sql.NullString
	if err := r.db.Get(&email, `SELECT email FROM sessions WHERE id = ?`, sid); err != nil {
		return ""
	}
	return email.String
}

// Unbind drops the token but keeps the session row, returning it to guest mode.
func (r *SessionRepo) Unbind(sid string) error {
	_, err := r.db.Exec(`UPDATE sessions SET token = NULL, last_seen = CURRENT_TIMESTAMP WHERE id = ?`, sid)
	return err
}
