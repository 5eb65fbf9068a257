// Package sessionstore persists serialized login sessions keyed by
// identity, each with a fixed TTL. Expired records are not swept
// proactively; they are deleted when a Load trips over them.
package sessionstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"travelhost-backend/lib/sessionstore/db"
	"travelhost-backend/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/sessionstore")

var ErrNotFound = errors.New("no session stored under this id")

type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

type Record struct {
	Id        string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Store) Save(ctx context.Context, id string, payload []byte, ttl time.Duration) error {
	ctx, span := tracer.Start(ctx, "Save")
	defer span.End()

	now := timezone.Now()
	err := s.qry.UpsertSession(ctx, db.UpsertSessionParams{
		ID:        id,
		Payload:   payload,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Load returns the stored payload for id, or ErrNotFound. A record whose
// expiry has passed counts as not found and is deleted on the way out.
func (s Store) Load(ctx context.Context, id string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Load")
	defer span.End()

	row, err := s.qry.GetSession(ctx, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if row.ExpiresAt <= timezone.Now().Unix() {
		err = s.qry.DeleteSession(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "failed to delete expired session", "id", id, "err", err)
		}
		return nil, ErrNotFound
	}

	return row.Payload, nil
}

func (s Store) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Delete")
	defer span.End()

	err := s.qry.DeleteSession(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s Store) ListActive(ctx context.Context) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "ListActive")
	defer span.End()

	rows, err := s.qry.GetActiveSessions(ctx, timezone.Now().Unix())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	records := make([]Record, len(rows))
	for i, r := range rows {
		records[i] = Record{
			Id:        r.ID,
			CreatedAt: time.Unix(r.CreatedAt, 0).In(timezone.Location),
			ExpiresAt: time.Unix(r.ExpiresAt, 0).In(timezone.Location),
		}
	}
	return records, nil
}

func (s Store) CleanupExpired(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "CleanupExpired")
	defer span.End()

	count, err := s.qry.DeleteExpiredSessions(ctx, timezone.Now().Unix())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return count, nil
}
