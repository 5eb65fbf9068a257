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

type CachedHotel struct {
	ID            int64
	CacheKey      string
	Position      int64
	HotelID       string
	Name          string
	Stars         int64
	GuestRating   sql.NullFloat64
	ReviewCount   sql.NullInt64
	Location      string
	DistanceMiles sql.NullFloat64
	Vendor        string
	Source        string
	Destination   string
	CheckIn       int64
	CheckOut      int64
	Certification string
	CreatedAt     int64
}

type CachedRoom struct {
	ID             int64
	HotelRowID     int64
	Position       int64
	Code           string
	Name           string
	TotalPrice     float64
	PricePerPerson sql.NullFloat64
	Promotions     sql.NullString
	ValueAdds      sql.NullString
}

const deleteRoomsByKey = `
DELETE FROM cached_room WHERE hotel_row_id IN (
    SELECT id FROM cached_hotel WHERE cache_key = ?
)
`

func (q *Queries) DeleteRoomsByKey(ctx context.Context, cacheKey string) error {
	_, err := q.db.ExecContext(ctx, deleteRoomsByKey, cacheKey)
	return err
}

const deleteHotelsByKey = `
DELETE FROM cached_hotel WHERE cache_key = ?
`

func (q *Queries) DeleteHotelsByKey(ctx context.Context, cacheKey string) error {
	_, err := q.db.ExecContext(ctx, deleteHotelsByKey, cacheKey)
	return err
}

const createHotel = `
INSERT INTO cached_hotel (
    cache_key, position, hotel_id, name, stars, guest_rating, review_count,
    location, distance_miles, vendor, source, destination, check_in,
    check_out, certification, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateHotelParams struct {
	CacheKey      string
	Position      int64
	HotelID       string
	Name          string
	Stars         int64
	GuestRating   sql.NullFloat64
	ReviewCount   sql.NullInt64
	Location      string
	DistanceMiles sql.NullFloat64
	Vendor        string
	Source        string
	Destination   string
	CheckIn       int64
	CheckOut      int64
	Certification string
	CreatedAt     int64
}

func (q *Queries) CreateHotel(ctx context.Context, arg CreateHotelParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createHotel,
		arg.CacheKey, arg.Position, arg.HotelID, arg.Name, arg.Stars,
		arg.GuestRating, arg.ReviewCount, arg.Location, arg.DistanceMiles,
		arg.Vendor, arg.Source, arg.Destination, arg.CheckIn, arg.CheckOut,
		arg.Certification, arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const createRoom = `
INSERT INTO cached_room (
    hotel_row_id, position, code, name, total_price, price_per_person,
    promotions, value_adds
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateRoomParams struct {
	HotelRowID     int64
	Position       int64
	Code           string
	Name           string
	TotalPrice     float64
	PricePerPerson sql.NullFloat64
	Promotions     sql.NullString
	ValueAdds      sql.NullString
}

func (q *Queries) CreateRoom(ctx context.Context, arg CreateRoomParams) error {
	_, err := q.db.ExecContext(ctx, createRoom,
		arg.HotelRowID, arg.Position, arg.Code, arg.Name, arg.TotalPrice,
		arg.PricePerPerson, arg.Promotions, arg.ValueAdds,
	)
	return err
}

const getHotelsByKey = `
SELECT id, cache_key, position, hotel_id, name, stars, guest_rating,
    review_count, location, distance_miles, vendor, source, destination,
    check_in, check_out, certification, created_at
FROM cached_hotel
WHERE cache_key = ?
ORDER BY position
`

func (q *Queries) GetHotelsByKey(ctx context.Context, cacheKey string) ([]CachedHotel, error) {
	rows, err := q.db.QueryContext(ctx, getHotelsByKey, cacheKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hotels []CachedHotel
	for rows.Next() {
		var h CachedHotel
		err = rows.Scan(
			&h.ID, &h.CacheKey, &h.Position, &h.HotelID, &h.Name, &h.Stars,
			&h.GuestRating, &h.ReviewCount, &h.Location, &h.DistanceMiles,
			&h.Vendor, &h.Source, &h.Destination, &h.CheckIn, &h.CheckOut,
			&h.Certification, &h.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		hotels = append(hotels, h)
	}
	return hotels, rows.Err()
}

const getRoomsByHotel = `
SELECT id, hotel_row_id, position, code, name, total_price,
    price_per_person, promotions, value_adds
FROM cached_room
WHERE hotel_row_id = ?
ORDER BY position
`

func (q *Queries) GetRoomsByHotel(ctx context.Context, hotelRowId int64) ([]CachedRoom, error) {
	rows, err := q.db.QueryContext(ctx, getRoomsByHotel, hotelRowId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []CachedRoom
	for rows.Next() {
		var r CachedRoom
		err = rows.Scan(
			&r.ID, &r.HotelRowID, &r.Position, &r.Code, &r.Name,
			&r.TotalPrice, &r.PricePerPerson, &r.Promotions, &r.ValueAdds,
		)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

const deleteRoomsBefore = `
DELETE FROM cached_room WHERE hotel_row_id IN (
    SELECT id FROM cached_hotel WHERE created_at < ?
)
`

func (q *Queries) DeleteRoomsBefore(ctx context.Context, cutoff int64) error {
	_, err := q.db.ExecContext(ctx, deleteRoomsBefore, cutoff)
	return err
}

const deleteHotelsBefore = `
DELETE FROM cached_hotel WHERE created_at < ?
`

func (q *Queries) DeleteHotelsBefore(ctx context.Context, cutoff int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteHotelsBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
