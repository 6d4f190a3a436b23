package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAssignmentRepositoryPersistRun(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	assignments := []models.SeatAssignment{
		{StudentID: "stu-1", RoomID: "room-1", SeatID: "seat-1", Subject: "Math", ExamDate: "2026-03-01"},
		{StudentID: "stu-2", RoomID: "room-1", SeatID: "seat-2", Subject: "Bio", ExamDate: "2026-03-01"},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO seat_assignments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO seat_assignments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE seats SET occupied = true WHERE id = ANY($1)")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET allocated = true, updated_at = $2 WHERE id = ANY($1)")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.PersistRun(context.Background(), assignments))
	require.NotEmpty(t, assignments[0].ID)
	require.False(t, assignments[0].CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryPersistRunEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	require.NoError(t, repo.PersistRun(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListByDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"roll_no", "student_name", "department", "class_name", "subject", "room_no", "seat_no", "position", "bench_no", "exam_date"}).
		AddRow("CS-001", "CS-001", "CS", "3A", "Math", "101", "R1", "R", 1, "2026-03-01").
		AddRow("IT-001", "IT-001", "IT", "3B", "Bio", "101", "L1", "L", 1, "2026-03-01")
	mock.ExpectQuery("FROM seat_assignments a").
		WithArgs("2026-03-01").
		WillReturnRows(rows)

	records, err := repo.ListByDate(context.Background(), "2026-03-01")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, models.PositionRight, records[0].Position)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListDates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"exam_date"}).AddRow("2026-03-02").AddRow("2026-03-01")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT exam_date FROM seat_assignments ORDER BY exam_date DESC")).
		WillReturnRows(rows)

	dates, err := repo.ListDates(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"2026-03-02", "2026-03-01"}, dates)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryExistsByDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM seat_assignments WHERE exam_date = $1")).
		WithArgs("2026-03-01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(9))

	exists, err := repo.ExistsByDate(context.Background(), "2026-03-01")
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryDeleteByDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM seat_assignments WHERE exam_date = $1")).
		WithArgs("2026-03-01").
		WillReturnResult(sqlmock.NewResult(0, 12))

	deleted, err := repo.DeleteByDate(context.Background(), "2026-03-01")
	require.NoError(t, err)
	require.Equal(t, int64(12), deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}
