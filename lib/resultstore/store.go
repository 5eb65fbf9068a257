// Package resultstore caches aggregated search results under a
// canonical key derived from the search parameters. Reads degrade to a
// miss on any failure; caching must never block returning live results.
package resultstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"travelhost-backend/lib/resultstore/db"
	"travelhost-backend/lib/scrapers/travelhost"
	"travelhost-backend/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/resultstore")

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

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullJson(values []string) (sql.NullString, error) {
	if values == nil {
		return sql.NullString{}, nil
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(encoded), Valid: true}, nil
}

// Get looks up the aggregate stored under the canonical key for params.
// Any read or deserialize failure is logged and reported as a miss.
func (s Store) Get(ctx context.Context, params travelhost.SearchParams) ([]travelhost.HotelResult, bool) {
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()

	key := Canonicalize(params)
	span.SetAttributes(attribute.String("cache_key", key))

	rows, err := s.qry.GetHotelsByKey(ctx, key)
	if err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "result cache read failed, treating as miss", "key", key, "err", err)
		return nil, false
	}
	if len(rows) == 0 {
		return nil, false
	}

	hotels := make([]travelhost.HotelResult, 0, len(rows))
	for _, row := range rows {
		hotel, err := s.assembleHotel(ctx, row)
		if err != nil {
			span.RecordError(err)
			slog.WarnContext(ctx, "result cache deserialize failed, treating as miss", "key", key, "err", err)
			return nil, false
		}
		hotels = append(hotels, hotel)
	}

	span.SetStatus(codes.Ok, "CACHE HIT")
	return hotels, true
}

func (s Store) assembleHotel(ctx context.Context, row db.CachedHotel) (travelhost.HotelResult, error) {
	hotel := travelhost.HotelResult{
		Id:            row.HotelID,
		Name:          row.Name,
		Stars:         int(row.Stars),
		Location:      row.Location,
		Vendor:        row.Vendor,
		Source:        row.Source,
		Destination:   row.Destination,
		CheckIn:       time.Unix(row.CheckIn, 0).In(timezone.Location),
		CheckOut:      time.Unix(row.CheckOut, 0).In(timezone.Location),
		Certification: row.Certification,
	}
	if row.GuestRating.Valid {
		v := row.GuestRating.Float64
		hotel.GuestRating = &v
	}
	if row.ReviewCount.Valid {
		v := row.ReviewCount.Int64
		hotel.ReviewCount = &v
	}
	if row.DistanceMiles.Valid {
		v := row.DistanceMiles.Float64
		hotel.DistanceMiles = &v
	}

	roomRows, err := s.qry.GetRoomsByHotel(ctx, row.ID)
	if err != nil {
		return travelhost.HotelResult{}, err
	}
	for _, r := range roomRows {
		room := travelhost.RoomOption{
			Code:       r.Code,
			Name:       r.Name,
			TotalPrice: r.TotalPrice,
		}
		if r.PricePerPerson.Valid {
			v := r.PricePerPerson.Float64
			room.PricePerPerson = &v
		}
		if r.Promotions.Valid {
			err = json.Unmarshal([]byte(r.Promotions.String), &room.Promotions)
			if err != nil {
				return travelhost.HotelResult{}, err
			}
		}
		if r.ValueAdds.Valid {
			err = json.Unmarshal([]byte(r.ValueAdds.String), &room.ValueAdds)
			if err != nil {
				return travelhost.HotelResult{}, err
			}
		}
		hotel.Rooms = append(hotel.Rooms, room)
	}

	return hotel, nil
}

// Put replaces whatever aggregate is stored under the canonical key for
// params. Delete and insert run in one transaction so a reader never
// observes stale rooms next to fresh ones.
func (s Store) Put(ctx context.Context, params travelhost.SearchParams, hotels []travelhost.HotelResult) error {
	ctx, span := tracer.Start(ctx, "Put")
	defer span.End()

	key := Canonicalize(params)
	span.SetAttributes(
		attribute.String("cache_key", key),
		attribute.Int("hotels", len(hotels)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.DeleteRoomsByKey(ctx, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	err = txqry.DeleteHotelsByKey(ctx, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	now := timezone.Now().Unix()
	for i, hotel := range hotels {
		hotelRowId, err := txqry.CreateHotel(ctx, db.CreateHotelParams{
			CacheKey:      key,
			Position:      int64(i),
			HotelID:       hotel.Id,
			Name:          hotel.Name,
			Stars:         int64(hotel.Stars),
			GuestRating:   nullFloat(hotel.GuestRating),
			ReviewCount:   nullInt(hotel.ReviewCount),
			Location:      hotel.Location,
			DistanceMiles: nullFloat(hotel.DistanceMiles),
			Vendor:        hotel.Vendor,
			Source:        hotel.Source,
			Destination:   hotel.Destination,
			CheckIn:       hotel.CheckIn.Unix(),
			CheckOut:      hotel.CheckOut.Unix(),
			Certification: hotel.Certification,
			CreatedAt:     now,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}

		for j, room := range hotel.Rooms {
			promotions, err := nullJson(room.Promotions)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return err
			}
			valueAdds, err := nullJson(room.ValueAdds)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return err
			}
			err = txqry.CreateRoom(ctx, db.CreateRoomParams{
				HotelRowID:     hotelRowId,
				Position:       int64(j),
				Code:           room.Code,
				Name:           room.Name,
				TotalPrice:     room.TotalPrice,
				PricePerPerson: nullFloat(room.PricePerPerson),
				Promotions:     promotions,
				ValueAdds:      valueAdds,
			})
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return err
			}
		}
	}

	return tx.Commit()
}

// EvictOlderThan removes cached aggregates older than the given number
// of days and returns the count of hotel rows removed. Independent of
// the session TTL mechanism.
func (s Store) EvictOlderThan(ctx context.Context, days int) (int64, error) {
	ctx, span := tracer.Start(ctx, "EvictOlderThan")
	defer span.End()

	cutoff := timezone.Now().AddDate(0, 0, -days).Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.DeleteRoomsBefore(ctx, cutoff)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	count, err := txqry.DeleteHotelsBefore(ctx, cutoff)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Int64("evicted", count))
	return count, nil
}
