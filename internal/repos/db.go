package repos

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Guest carts: one JSON payload per anonymous session. This is the local
-- stand-in for a browser's persisted cart record; it is deleted wholesale
-- when merged or unparseable.
CREATE TABLE IF NOT EXISTS guest_carts(
  session_id TEXT PRIMARY KEY,
  payload    TEXT NOT NULL,
  updated_at TEXT
);

-- Sessions: id matches the 'sid' cookie. A non-empty token means the session
-- is authenticated against the remote commerce API.
CREATE TABLE IF NOT EXISTS sessions(
  id         TEXT PRIMARY KEY,
  token      TEXT,
  email      TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
`
	_, err := db.Exec(schema)
	return err
}
