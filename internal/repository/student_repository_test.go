package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

func TestStudentRepositoryFindCandidates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "roll_no", "full_name", "department", "class_name", "allocated", "created_at", "updated_at", "subjects"}).
		AddRow("stu-1", "CS-001", "Asha Rao", "CS", "3A", false, now, now, "{Math,Physics}").
		AddRow("stu-2", "CS-002", "Nia Das", "CS", "3A", false, now, now, "{Math}")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.department = ANY($1) AND s.class_name = ANY($2) AND ss.subject = ANY($3) AND s.allocated = false")).
		WillReturnRows(rows)

	students, err := repo.FindCandidates(context.Background(), models.StudentSelection{
		Departments: []string{"CS"},
		Classes:     []string{"3A"},
		Subjects:    []string{"Math", "Physics"},
	})
	require.NoError(t, err)
	require.Len(t, students, 2)
	require.Equal(t, []string{"Math", "Physics"}, []string(students[0].Subjects))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByRollNo(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE roll_no = $1 LIMIT 1")).
		WithArgs("CS-001").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByRollNo(context.Background(), "CS-001", "")
	require.NoError(t, err)
	require.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE roll_no = $1 LIMIT 1")).
		WithArgs("CS-404").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err = repo.ExistsByRollNo(context.Background(), "CS-404", "")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	student := &models.Student{
		RollNo:     "CS-001",
		FullName:   "Asha Rao",
		Department: "CS",
		ClassName:  "3A",
		Subjects:   []string{"Math", "Physics"},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO students").
		WillReturnRows(sqlmock.NewRows([]string{"id", "inserted"}).AddRow("stu-1", true))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_subjects WHERE student_id = $1")).
		WithArgs("stu-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO student_subjects").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO student_subjects").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := repo.Upsert(context.Background(), student)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "stu-1", student.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryResetAllocations(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET allocated = false, updated_at = $1")).
		WillReturnResult(sqlmock.NewResult(0, 40))

	require.NoError(t, repo.ResetAllocations(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
