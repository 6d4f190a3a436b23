package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// StudentRepository manages persistence for examinee records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students s LEFT JOIN student_subjects ss ON ss.student_id = s.id"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("s.department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.ClassName != "" {
		conditions = append(conditions, fmt.Sprintf("s.class_name = $%d", len(args)+1))
		args = append(args, filter.ClassName)
	}
	if filter.Subject != "" {
		conditions = append(conditions, fmt.Sprintf("s.id IN (SELECT student_id FROM student_subjects WHERE subject = $%d)", len(args)+1))
		args = append(args, filter.Subject)
	}
	if filter.Allocated != nil {
		conditions = append(conditions, fmt.Sprintf("s.allocated = $%d", len(args)+1))
		args = append(args, *filter.Allocated)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.full_name) LIKE $%d OR LOWER(s.roll_no) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"full_name":  "s.full_name",
		"roll_no":    "s.roll_no",
		"department": "s.department",
		"created_at": "s.created_at",
	}
	if sortBy == "" {
		sortBy = "roll_no"
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "s.roll_no"
	}
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

	query := fmt.Sprintf(`SELECT s.id, s.roll_no, s.full_name, s.department, s.class_name, s.allocated, s.created_at, s.updated_at,
        COALESCE(array_agg(ss.subject ORDER BY ss.subject) FILTER (WHERE ss.subject IS NOT NULL), '{}') AS subjects
        %s GROUP BY s.id ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(DISTINCT s.id) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindCandidates returns the unallocated students matching the selection along
// with their subjects restricted to the requested ones, ordered by roll number.
func (r *StudentRepository) FindCandidates(ctx context.Context, sel models.StudentSelection) ([]models.Student, error) {
	const query = `SELECT s.id, s.roll_no, s.full_name, s.department, s.class_name, s.allocated, s.created_at, s.updated_at,
        array_agg(ss.subject ORDER BY ss.subject) AS subjects
        FROM students s
        JOIN student_subjects ss ON ss.student_id = s.id
        WHERE s.department = ANY($1) AND s.class_name = ANY($2) AND ss.subject = ANY($3) AND s.allocated = false
        GROUP BY s.id
        ORDER BY s.roll_no ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query,
		pq.Array(sel.Departments), pq.Array(sel.Classes), pq.Array(sel.Subjects)); err != nil {
		return nil, fmt.Errorf("find candidate students: %w", err)
	}
	return students, nil
}

// ExistsByRollNo checks if a student with the given roll number exists, optionally excluding an ID.
func (r *StudentRepository) ExistsByRollNo(ctx context.Context, rollNo string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE roll_no = $1"
	args := []interface{}{rollNo}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check roll number: %w", err)
	}
	return true, nil
}

// Create inserts a new student and its subject rows inside one transaction.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create student: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertStudent = `INSERT INTO students (id, roll_no, full_name, department, class_name, allocated, created_at, updated_at)
        VALUES (:id, :roll_no, :full_name, :department, :class_name, :allocated, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertStudent, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	if err := insertSubjects(ctx, tx, student.ID, student.Subjects); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create student: %w", err)
	}
	return nil
}

// Upsert inserts or refreshes a student keyed by roll number, replacing its subjects.
// It reports whether a new row was created.
func (r *StudentRepository) Upsert(ctx context.Context, student *models.Student) (bool, error) {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin upsert student: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO students (id, roll_no, full_name, department, class_name, allocated, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, false, $6, $6)
        ON CONFLICT (roll_no) DO UPDATE SET full_name = EXCLUDED.full_name, department = EXCLUDED.department,
            class_name = EXCLUDED.class_name, updated_at = EXCLUDED.updated_at
        RETURNING id, (xmax = 0) AS inserted`
	var result struct {
		ID       string `db:"id"`
		Inserted bool   `db:"inserted"`
	}
	if err := tx.GetContext(ctx, &result, query,
		student.ID, student.RollNo, student.FullName, student.Department, student.ClassName, now); err != nil {
		return false, fmt.Errorf("upsert student: %w", err)
	}
	student.ID = result.ID

	if _, err := tx.ExecContext(ctx, "DELETE FROM student_subjects WHERE student_id = $1", student.ID); err != nil {
		return false, fmt.Errorf("clear student subjects: %w", err)
	}
	if err := insertSubjects(ctx, tx, student.ID, student.Subjects); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit upsert student: %w", err)
	}
	return result.Inserted, nil
}

// ResetAllocations clears the allocated flag on every student.
func (r *StudentRepository) ResetAllocations(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE students SET allocated = false, updated_at = $1", time.Now().UTC()); err != nil {
		return fmt.Errorf("reset student allocations: %w", err)
	}
	return nil
}

// DistinctDepartmentSubjects returns the subjects sat per department.
func (r *StudentRepository) DistinctDepartmentSubjects(ctx context.Context) ([]models.DepartmentSubjects, error) {
	const query = `SELECT s.department, array_agg(DISTINCT ss.subject ORDER BY ss.subject) AS subjects
        FROM students s JOIN student_subjects ss ON ss.student_id = s.id
        GROUP BY s.department ORDER BY s.department`
	var rows []models.DepartmentSubjects
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list department subjects: %w", err)
	}
	return rows, nil
}

// Count returns the number of student rows.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students"); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}

// DeleteAll removes every student and subject row.
func (r *StudentRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM student_subjects"); err != nil {
		return fmt.Errorf("delete student subjects: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM students"); err != nil {
		return fmt.Errorf("delete students: %w", err)
	}
	return nil
}

func insertSubjects(ctx context.Context, tx *sqlx.Tx, studentID string, subjects []string) error {
	const query = `INSERT INTO student_subjects (student_id, subject) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	for _, subject := range subjects {
		if _, err := tx.ExecContext(ctx, query, studentID, subject); err != nil {
			return fmt.Errorf("insert student subject: %w", err)
		}
	}
	return nil
}
