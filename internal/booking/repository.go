package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/hoteljan/hotel-booking/internal/reservation"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// errDuplicateNumber reports a booking number collision; the caller retries with a new number.
var errDuplicateNumber = errors.New("booking number already exists")

type Repository interface {
	// Create inserts b unless the room is already booked for any of its nights.
	// It returns *ConflictError listing the overlapping bookings.
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	UpdateStatus(ctx context.Context, b *Booking) error
	// Reactivate stores the status of a booking leaving the cancelled state, under the
	// same room lock and overlap rule as Create. The booking itself is not counted.
	Reactivate(ctx context.Context, b *Booking) error
	MarkConfirmationSent(ctx context.Context, id string) error
	MarkInvoiceGenerated(ctx context.Context, id string) error

	// ReservedSpans returns the active bookings of a room occupying any night in
	// [from, to), ordered by check-in.
	ReservedSpans(ctx context.Context, roomID string, from, to time.Time) ([]Span, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var bookingColumns = []string{
	"b.id", "b.booking_number", "b.room_id", "r.name", "b.user_id",
	"b.name", "b.email", "b.phone", "b.guests", "b.check_in", "b.check_out", "b.nights",
	"b.price_per_night::text", "b.total_price::text", "b.status", "b.payment_status",
	"b.special_requests", "b.confirmation_sent", "b.invoice_generated",
	"b.created_at", "b.updated_at",
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var (
		b            Booking
		price, total string
	)
	dest := []any{
		&b.ID, &b.BookingNumber, &b.RoomID, &b.RoomName, &b.UserID,
		&b.Name, &b.Email, &b.Phone, &b.Guests, &b.CheckIn, &b.CheckOut, &b.Nights,
		&price, &total, &b.Status, &b.PaymentStatus,
		&b.SpecialRequests, &b.ConfirmationSent, &b.InvoiceGenerated,
		&b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	var err error
	if b.PricePerNight, err = reservation.ParsePrice(price); err != nil {
		return nil, err
	}
	if b.TotalPrice, err = reservation.ParsePrice(total); err != nil {
		return nil, err
	}
	return &b, nil
}

// overlapping lists active bookings of a room occupying any night in [from, to).
// A non-empty excludeID leaves that booking out.
func overlapping(ctx context.Context, q querier, roomID, excludeID string, from, to time.Time) ([]Span, error) {
	sb := psql.Select("booking_number", "check_in", "check_out").
		From("public.bookings").
		Where(squirrel.Eq{"room_id": roomID}).
		Where(squirrel.NotEq{"status": StatusCancelled}).
		Where(squirrel.Lt{"check_in": to}).
		Where(squirrel.Gt{"check_out": from})
	if excludeID != "" {
		sb = sb.Where(squirrel.NotEq{"id": excludeID})
	}
	query, args, err := sb.OrderBy("check_in ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build overlap query failed: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query overlapping bookings failed: %w", err)
	}
	defer rows.Close()

	spans := []Span{}
	for rows.Next() {
		var s Span
		if err := rows.Scan(&s.BookingNumber, &s.CheckIn, &s.CheckOut); err != nil {
			return nil, fmt.Errorf("scan booking span failed: %w", err)
		}
		spans = append(spans, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking spans failed: %w", err)
	}
	return spans, nil
}

// lockFreeNights locks the room row and fails with *ConflictError when another active
// booking occupies any of b's nights. The lock serializes bookings per room: the second
// of two racing transactions sees the first one's row.
func lockFreeNights(ctx context.Context, tx pgx.Tx, b *Booking, excludeID string) error {
	err := tx.QueryRow(ctx, `SELECT name FROM public.rooms WHERE id = $1 FOR UPDATE`, b.RoomID).Scan(&b.RoomName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("lock room failed: %w", err)
	}

	spans, err := overlapping(ctx, tx, b.RoomID, excludeID, b.CheckIn, b.CheckOut)
	if err != nil {
		return err
	}
	if len(spans) > 0 {
		return &ConflictError{Spans: spans}
	}
	return nil
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create booking failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockFreeNights(ctx, tx, b, ""); err != nil {
		return err
	}

	query, args, err := psql.Insert("public.bookings").
		Columns(
			"booking_number", "room_id", "user_id", "name", "email", "phone", "guests",
			"check_in", "check_out", "nights", "price_per_night", "total_price",
			"status", "payment_status", "special_requests",
		).
		Values(
			b.BookingNumber, b.RoomID, b.UserID, b.Name, b.Email, b.Phone, b.Guests,
			b.CheckIn, b.CheckOut, b.Nights,
			reservation.FormatPrice(b.PricePerNight), reservation.FormatPrice(b.TotalPrice),
			b.Status, b.PaymentStatus, b.SpecialRequests,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			return errDuplicateNumber
		}
		return fmt.Errorf("create booking failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings b").
		Join("public.rooms r ON r.id = b.room_id").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := psql.Select(append(bookingColumns, "count(*) OVER() AS total_count")...).
		From("public.bookings b").
		Join("public.rooms r ON r.id = b.room_id")

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	if filter.RoomID != "" {
		query = query.Where(squirrel.Eq{"b.room_id": filter.RoomID})
	}
	if filter.Email != "" {
		query = query.Where(squirrel.Expr("lower(b.email) = lower(?)", filter.Email))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"b.name": pattern},
			squirrel.ILike{"b.email": pattern},
			squirrel.ILike{"b.booking_number": pattern},
		})
	}
	if filter.CheckInFrom != nil {
		query = query.Where(squirrel.GtOrEq{"b.check_in": *filter.CheckInFrom})
	}
	if filter.CheckInTo != nil {
		query = query.Where(squirrel.LtOrEq{"b.check_in": *filter.CheckInTo})
	}

	orderBy := "created_at"
	if filter.SortBy != "" {
		orderBy = filter.SortBy
	}
	orderDir := "DESC"
	if filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	query = query.OrderBy("b." + orderBy + " " + orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64((filter.Page - 1) * filter.PageSize))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings failed: %w", err)
	}

	return bookings, total, nil
}

func (r *pgxRepository) exec(ctx context.Context, b squirrel.UpdateBuilder, op string) error {
	return execUpdate(ctx, r.pool, b, op)
}

func execUpdate(ctx context.Context, q querier, b squirrel.UpdateBuilder, op string) error {
	query, args, err := b.Set("updated_at", squirrel.Expr("now()")).ToSql()
	if err != nil {
		return fmt.Errorf("build %s query failed: %w", op, err)
	}

	ct, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func statusUpdate(b *Booking) squirrel.UpdateBuilder {
	return psql.Update("public.bookings").
		Set("status", b.Status).
		Set("payment_status", b.PaymentStatus).
		Where(squirrel.Eq{"id": b.ID})
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, b *Booking) error {
	return r.exec(ctx, statusUpdate(b), "update booking status")
}

func (r *pgxRepository) Reactivate(ctx context.Context, b *Booking) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reactivate booking failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockFreeNights(ctx, tx, b, b.ID); err != nil {
		return err
	}
	if err := execUpdate(ctx, tx, statusUpdate(b), "reactivate booking"); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reactivate booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) MarkConfirmationSent(ctx context.Context, id string) error {
	return r.exec(ctx, psql.Update("public.bookings").
		Set("confirmation_sent", true).
		Where(squirrel.Eq{"id": id}), "mark confirmation sent")
}

func (r *pgxRepository) MarkInvoiceGenerated(ctx context.Context, id string) error {
	return r.exec(ctx, psql.Update("public.bookings").
		Set("invoice_generated", true).
		Where(squirrel.Eq{"id": id}), "mark invoice generated")
}

func (r *pgxRepository) ReservedSpans(ctx context.Context, roomID string, from, to time.Time) ([]Span, error) {
	return overlapping(ctx, r.pool, roomID, "", from, to)
}
