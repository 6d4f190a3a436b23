package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// SeatRepository manages persistence for seats.
type SeatRepository struct {
	db *sqlx.DB
}

// NewSeatRepository constructs a SeatRepository.
func NewSeatRepository(db *sqlx.DB) *SeatRepository {
	return &SeatRepository{db: db}
}

// BulkCreate inserts the given seats inside one transaction.
func (r *SeatRepository) BulkCreate(ctx context.Context, seats []models.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create seats: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO seats (id, room_id, seat_no, position, bench_no, occupied)
        VALUES (:id, :room_id, :seat_no, :position, :bench_no, :occupied)`
	for i := range seats {
		if seats[i].ID == "" {
			seats[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, query, seats[i]); err != nil {
			return fmt.Errorf("create seat %s: %w", seats[i].SeatNo, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create seats: %w", err)
	}
	return nil
}

// ListByRoom returns a room's seats ordered by bench then column (R, M, L).
func (r *SeatRepository) ListByRoom(ctx context.Context, roomID string) ([]models.Seat, error) {
	const query = `SELECT id, room_id, seat_no, position, bench_no, occupied FROM seats
        WHERE room_id = $1
        ORDER BY bench_no ASC, CASE position WHEN 'R' THEN 0 WHEN 'M' THEN 1 ELSE 2 END`
	var seats []models.Seat
	if err := r.db.SelectContext(ctx, &seats, query, roomID); err != nil {
		return nil, fmt.Errorf("list seats for room: %w", err)
	}
	return seats, nil
}

// ResetOccupied frees every seat.
func (r *SeatRepository) ResetOccupied(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE seats SET occupied = false"); err != nil {
		return fmt.Errorf("reset occupied seats: %w", err)
	}
	return nil
}

// Count returns the number of seat rows.
func (r *SeatRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM seats"); err != nil {
		return 0, fmt.Errorf("count seats: %w", err)
	}
	return total, nil
}

// DeleteAll removes every seat row.
func (r *SeatRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM seats"); err != nil {
		return fmt.Errorf("delete seats: %w", err)
	}
	return nil
}
