package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/hoteljan/hotel-booking/internal/reservation"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, r *Room) error
	GetByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	Update(ctx context.Context, r *Room) error
	Delete(ctx context.Context, id string) error
	AddImage(ctx context.Context, img *Image) error
	GetImage(ctx context.Context, roomID, imageID string) (*Image, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// imagesColumn aggregates a room's images in display order.
const imagesColumn = `COALESCE((
	SELECT json_agg(json_build_object(
		'id', ri.id, 'room_id', ri.room_id, 'file_id', ri.file_id,
		'has_thumbnail', f.thumbnail_path IS NOT NULL,
		'alt_text', ri.alt_text, 'sort_order', ri.sort_order
	) ORDER BY ri.sort_order, ri.created_at)
	FROM public.room_images ri
	JOIN public.files f ON f.id = ri.file_id
	WHERE ri.room_id = r.id
), '[]'::json) AS images`

var roomColumns = []string{
	"r.id", "r.name", "r.category", "r.description", "r.price_per_night::text",
	imagesColumn, "r.created_at", "r.updated_at",
}

func scanRoom(row pgx.Row, extra ...any) (*Room, error) {
	var (
		rm    Room
		price string
	)
	dest := []any{
		&rm.ID, &rm.Name, &rm.Category, &rm.Description, &price,
		&rm.Images, &rm.CreatedAt, &rm.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	p, err := reservation.ParsePrice(price)
	if err != nil {
		return nil, err
	}
	rm.PricePerNight = p
	return &rm, nil
}

func (r *pgxRepository) Create(ctx context.Context, rm *Room) error {
	query, args, err := psql.Insert("public.rooms").
		Columns("name", "category", "description", "price_per_night").
		Values(rm.Name, rm.Category, rm.Description, reservation.FormatPrice(rm.PricePerNight)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create room query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&rm.ID, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
		return fmt.Errorf("create room failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Room, error) {
	query, args, err := psql.Select(roomColumns...).
		From("public.rooms r").
		Where(squirrel.Eq{"r.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get room query failed: %w", err)
	}

	rm, err := scanRoom(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room failed: %w", err)
	}
	return rm, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	query := psql.Select(append(roomColumns, "count(*) OVER() AS total_count")...).
		From("public.rooms r")

	if filter.Category != "" {
		query = query.Where(squirrel.Eq{"r.category": filter.Category})
	}
	if filter.MaxPrice != nil {
		query = query.Where(squirrel.LtOrEq{"r.price_per_night": reservation.FormatPrice(*filter.MaxPrice)})
	}

	orderBy := "price_per_night"
	if filter.SortBy != "" {
		orderBy = filter.SortBy
	}
	orderDir := "ASC"
	if filter.SortOrder == "DESC" {
		orderDir = "DESC"
	}
	query = query.OrderBy("r."+orderBy+" "+orderDir, "r.name ASC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64((filter.Page - 1) * filter.PageSize))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list rooms query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list rooms failed: %w", err)
	}
	defer rows.Close()

	var rooms []*Room
	var total int
	for rows.Next() {
		rm, err := scanRoom(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan room failed: %w", err)
		}
		rooms = append(rooms, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate rooms failed: %w", err)
	}

	return rooms, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, rm *Room) error {
	query, args, err := psql.Update("public.rooms").
		Set("name", rm.Name).
		Set("category", rm.Category).
		Set("description", rm.Description).
		Set("price_per_night", reservation.FormatPrice(rm.PricePerNight)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": rm.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update room query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&rm.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update room failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM public.rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete room failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddImage appends an image after the room's current last one.
func (r *pgxRepository) AddImage(ctx context.Context, img *Image) error {
	const query = `
		INSERT INTO public.room_images (room_id, file_id, alt_text, sort_order)
		SELECT $1, $2, $3, COALESCE(MAX(sort_order) + 1, 0)
		FROM public.room_images
		WHERE room_id = $1
		RETURNING id, sort_order
	`
	if err := r.pool.QueryRow(ctx, query, img.RoomID, img.FileID, img.AltText).Scan(&img.ID, &img.SortOrder); err != nil {
		return fmt.Errorf("add room image failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetImage(ctx context.Context, roomID, imageID string) (*Image, error) {
	const query = `
		SELECT ri.id, ri.room_id, ri.file_id, f.thumbnail_path IS NOT NULL, ri.alt_text, ri.sort_order
		FROM public.room_images ri
		JOIN public.files f ON f.id = ri.file_id
		WHERE ri.room_id = $1 AND ri.id = $2
	`
	var img Image
	err := r.pool.QueryRow(ctx, query, roomID, imageID).
		Scan(&img.ID, &img.RoomID, &img.FileID, &img.HasThumbnail, &img.AltText, &img.SortOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("get room image failed: %w", err)
	}
	return &img, nil
}
