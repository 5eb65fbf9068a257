package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Session struct {
	ID        string
	Payload   []byte
	CreatedAt int64
	ExpiresAt int64
}

const getSession = `
SELECT id, payload, created_at, expires_at FROM session WHERE id = ?
`

func (q *Queries) GetSession(ctx context.Context, id string) (Session, error) {
	row := q.db.QueryRowContext(ctx, getSession, id)
	var s Session
	err := row.Scan(&s.ID, &s.Payload, &s.CreatedAt, &s.ExpiresAt)
	return s, err
}

const upsertSession = `
INSERT INTO session (id, payload, created_at, expires_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    payload = excluded.payload,
    created_at = excluded.created_at,
    expires_at = excluded.expires_at
`

type UpsertSessionParams struct {
	ID        string
	Payload   []byte
	CreatedAt int64
	ExpiresAt int64
}

func (q *Queries) UpsertSession(ctx context.Context, arg UpsertSessionParams) error {
	_, err := q.db.ExecContext(ctx, upsertSession, arg.ID, arg.Payload, arg.CreatedAt, arg.ExpiresAt)
	return err
}

const deleteSession = `
DELETE FROM session WHERE id = ?
`

func (q *Queries) DeleteSession(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteSession, id)
	return err
}

const getActiveSessions = `
SELECT id, payload, created_at, expires_at FROM session
WHERE expires_at > ?
ORDER BY id
`

func (q *Queries) GetActiveSessions(ctx context.Context, now int64) ([]Session, error) {
	rows, err := q.db.QueryContext(ctx, getActiveSessions, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		err = rows.Scan(&s.ID, &s.Payload, &s.CreatedAt, &s.ExpiresAt)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

const deleteExpiredSessions = `
DELETE FROM session WHERE expires_at <= ?
`

func (q *Queries) DeleteExpiredSessions(ctx context.Context, now int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpiredSessions, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
