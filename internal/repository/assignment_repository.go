package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// AssignmentRepository manages persistence for seat assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// PersistRun stores the outcome of one allocation run atomically: the assignment
// rows, the occupied flags of the used seats and the allocated flags of the
// seated students.
func (r *AssignmentRepository) PersistRun(ctx context.Context, assignments []models.SeatAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin persist run: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	seatIDs := make([]string, 0, len(assignments))
	studentIDs := make([]string, 0, len(assignments))

	const insert = `INSERT INTO seat_assignments (id, student_id, room_id, seat_id, subject, exam_date, arrangement_name, created_at)
        VALUES (:id, :student_id, :room_id, :seat_id, :subject, :exam_date, :arrangement_name, :created_at)`
	for i := range assignments {
		if assignments[i].ID == "" {
			assignments[i].ID = uuid.NewString()
		}
		if assignments[i].CreatedAt.IsZero() {
			assignments[i].CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, insert, assignments[i]); err != nil {
			return fmt.Errorf("create seat assignment: %w", err)
		}
		seatIDs = append(seatIDs, assignments[i].SeatID)
		studentIDs = append(studentIDs, assignments[i].StudentID)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE seats SET occupied = true WHERE id = ANY($1)", pq.Array(seatIDs)); err != nil {
		return fmt.Errorf("mark seats occupied: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE students SET allocated = true, updated_at = $2 WHERE id = ANY($1)", pq.Array(studentIDs), now); err != nil {
		return fmt.Errorf("mark students allocated: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit persist run: %w", err)
	}
	return nil
}

// ListByDate returns every assignment for a date in room, column, bench order.
func (r *AssignmentRepository) ListByDate(ctx context.Context, examDate string) ([]models.AssignmentRecord, error) {
	const query = `SELECT st.roll_no, st.full_name AS student_name, st.department, st.class_name,
        a.subject, rm.room_no, se.seat_no, se.position, se.bench_no, a.exam_date
        FROM seat_assignments a
        JOIN students st ON st.id = a.student_id
        JOIN rooms rm ON rm.id = a.room_id
        JOIN seats se ON se.id = a.seat_id
        WHERE a.exam_date = $1
        ORDER BY rm.room_no ASC, CASE se.position WHEN 'R' THEN 0 WHEN 'M' THEN 1 ELSE 2 END, se.bench_no ASC`
	var records []models.AssignmentRecord
	if err := r.db.SelectContext(ctx, &records, query, examDate); err != nil {
		return nil, fmt.Errorf("list assignments by date: %w", err)
	}
	return records, nil
}

// ListByDateAndRoom returns a single room's assignments for a date.
func (r *AssignmentRepository) ListByDateAndRoom(ctx context.Context, examDate, roomNo string) ([]models.AssignmentRecord, error) {
	const query = `SELECT st.roll_no, st.full_name AS student_name, st.department, st.class_name,
        a.subject, rm.room_no, se.seat_no, se.position, se.bench_no, a.exam_date
        FROM seat_assignments a
        JOIN students st ON st.id = a.student_id
        JOIN rooms rm ON rm.id = a.room_id
        JOIN seats se ON se.id = a.seat_id
        WHERE a.exam_date = $1 AND rm.room_no = $2
        ORDER BY CASE se.position WHEN 'R' THEN 0 WHEN 'M' THEN 1 ELSE 2 END, se.bench_no ASC`
	var records []models.AssignmentRecord
	if err := r.db.SelectContext(ctx, &records, query, examDate, roomNo); err != nil {
		return nil, fmt.Errorf("list assignments by date and room: %w", err)
	}
	return records, nil
}

// ListDates returns the distinct exam dates, newest first.
func (r *AssignmentRepository) ListDates(ctx context.Context) ([]string, error) {
	var dates []string
	if err := r.db.SelectContext(ctx, &dates, "SELECT DISTINCT exam_date FROM seat_assignments ORDER BY exam_date DESC"); err != nil {
		return nil, fmt.Errorf("list exam dates: %w", err)
	}
	return dates, nil
}

// ExistsByDate reports whether any assignment exists for the date.
func (r *AssignmentRepository) ExistsByDate(ctx context.Context, examDate string) (bool, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM seat_assignments WHERE exam_date = $1", examDate); err != nil {
		return false, fmt.Errorf("check assignments for date: %w", err)
	}
	return total > 0, nil
}

// DeleteByDate removes every assignment for the date and returns the count.
func (r *AssignmentRepository) DeleteByDate(ctx context.Context, examDate string) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM seat_assignments WHERE exam_date = $1", examDate)
	if err != nil {
		return 0, fmt.Errorf("delete assignments by date: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted assignments: %w", err)
	}
	return deleted, nil
}

// Count returns the number of assignment rows.
func (r *AssignmentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM seat_assignments"); err != nil {
		return 0, fmt.Errorf("count assignments: %w", err)
	}
	return total, nil
}

// DeleteAll removes every assignment row.
func (r *AssignmentRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM seat_assignments"); err != nil {
		return fmt.Errorf("delete assignments: %w", err)
	}
	return nil
}
