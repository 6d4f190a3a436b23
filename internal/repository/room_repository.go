package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// RoomRepository manages persistence for exam rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a RoomRepository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns rooms matching the provided filters.
func (r *RoomRepository) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	base := "FROM rooms"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(room_no) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, room_no, total_benches, right_count, middle_count, left_count, capacity, created_at, updated_at
        %s ORDER BY room_no %s LIMIT %d OFFSET %d`, base, order, size, offset)

	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list rooms: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count rooms: %w", err)
	}
	return rooms, total, nil
}

// ListOrdered returns every room ordered by room number, the scan order for allocation.
func (r *RoomRepository) ListOrdered(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, room_no, total_benches, right_count, middle_count, left_count, capacity, created_at, updated_at
        FROM rooms ORDER BY room_no ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms ordered: %w", err)
	}
	return rooms, nil
}

// ExistsByRoomNo checks if a room with the given number exists.
func (r *RoomRepository) ExistsByRoomNo(ctx context.Context, roomNo string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM rooms WHERE room_no = $1 LIMIT 1", roomNo); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check room number: %w", err)
	}
	return true, nil
}

// FindByRoomNo fetches a room by its number.
func (r *RoomRepository) FindByRoomNo(ctx context.Context, roomNo string) (*models.Room, error) {
	const query = `SELECT id, room_no, total_benches, right_count, middle_count, left_count, capacity, created_at, updated_at
        FROM rooms WHERE room_no = $1`
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, roomNo); err != nil {
		return nil, err
	}
	return &room, nil
}

// Create inserts a new room record.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now
	const query = `INSERT INTO rooms (id, room_no, total_benches, right_count, middle_count, left_count, capacity, created_at, updated_at)
        VALUES (:id, :room_no, :total_benches, :right_count, :middle_count, :left_count, :capacity, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Count returns the number of room rows.
func (r *RoomRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM rooms"); err != nil {
		return 0, fmt.Errorf("count rooms: %w", err)
	}
	return total, nil
}

// DeleteAll removes every room row. Seats and assignments must be removed first.
func (r *RoomRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM rooms"); err != nil {
		return fmt.Errorf("delete rooms: %w", err)
	}
	return nil
}
