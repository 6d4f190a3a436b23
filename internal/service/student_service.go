package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type studentStore interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	Create(ctx context.Context, student *models.Student) error
	Upsert(ctx context.Context, student *models.Student) (bool, error)
	ExistsByRollNo(ctx context.Context, rollNo string, excludeID string) (bool, error)
	DistinctDepartmentSubjects(ctx context.Context) ([]models.DepartmentSubjects, error)
	DeleteAll(ctx context.Context) error
}

type assignmentWiper interface {
	DeleteAll(ctx context.Context) error
}

var studentTemplateHeaders = []string{"Roll No", "Full Name", "Department", "Class", "Subjects"}

// StudentService manages the examinee roster.
type StudentService struct {
	repo        studentStore
	assignments assignmentWiper
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs a StudentService instance.
func NewStudentService(repo studentStore, assignments assignmentWiper, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{repo: repo, assignments: assignments, validator: validate, logger: logger}
}

// List returns students with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create registers a single student.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	exists, err := s.repo.ExistsByRollNo(ctx, req.RollNo, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check roll number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("roll number %s already exists", req.RollNo))
	}

	student := &models.Student{
		RollNo:     strings.TrimSpace(req.RollNo),
		FullName:   strings.TrimSpace(req.FullName),
		Department: strings.TrimSpace(req.Department),
		ClassName:  strings.TrimSpace(req.ClassName),
		Subjects:   normalizeSubjects(req.Subjects),
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// DepartmentSubjects maps each department to the subjects its students sit.
func (s *StudentService) DepartmentSubjects(ctx context.Context) ([]models.DepartmentSubjects, error) {
	rows, err := s.repo.DistinctDepartmentSubjects(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list department subjects")
	}
	return rows, nil
}

// Template renders the roster upload workbook with a sample row.
func (s *StudentService) Template() ([]byte, error) {
	return renderTemplate("Students", studentTemplateHeaders, []interface{}{
		"CS-2024-001", "Jane Doe", "Computer Science", "SY-A", "Mathematics, Physics",
	})
}

// Upload ingests a roster workbook, upserting one student per row.
func (s *StudentService) Upload(ctx context.Context, r io.Reader) (*dto.UploadSummary, error) {
	rows, err := readSheetRows(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable workbook")
	}

	summary := &dto.UploadSummary{}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		rowNo := i + 1
		if isBlankRow(row) {
			summary.Skipped++
			continue
		}
		req := dto.CreateStudentRequest{
			RollNo:     cell(row, 0),
			FullName:   cell(row, 1),
			Department: cell(row, 2),
			ClassName:  cell(row, 3),
			Subjects:   splitSubjects(cell(row, 4)),
		}
		if err := s.validator.Struct(req); err != nil {
			summary.Errors = append(summary.Errors, dto.RowError{Row: rowNo, Message: "missing or invalid fields"})
			summary.Skipped++
			continue
		}
		student := &models.Student{
			RollNo:     req.RollNo,
			FullName:   req.FullName,
			Department: req.Department,
			ClassName:  req.ClassName,
			Subjects:   normalizeSubjects(req.Subjects),
		}
		created, err := s.repo.Upsert(ctx, student)
		if err != nil {
			s.logger.Warn("student upsert failed", zap.Int("row", rowNo), zap.Error(err))
			summary.Errors = append(summary.Errors, dto.RowError{Row: rowNo, Message: "could not save row"})
			summary.Skipped++
			continue
		}
		if created {
			summary.Created++
		} else {
			summary.Updated++
		}
	}
	return summary, nil
}

// DeleteAll wipes assignments first, then the roster itself.
func (s *StudentService) DeleteAll(ctx context.Context) error {
	if err := s.assignments.DeleteAll(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignments")
	}
	if err := s.repo.DeleteAll(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete students")
	}
	s.logger.Info("student roster wiped")
	return nil
}

func normalizeSubjects(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, subject := range raw {
		subject = strings.TrimSpace(subject)
		if subject == "" {
			continue
		}
		if _, dup := seen[subject]; dup {
			continue
		}
		seen[subject] = struct{}{}
		out = append(out, subject)
	}
	return out
}

func splitSubjects(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func renderTemplate(sheet string, headers []string, sample []interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	f.SetSheetName(f.GetSheetName(0), sheet)
	headerRow := make([]interface{}, len(headers))
	for i, header := range headers {
		headerRow[i] = header
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return nil, fmt.Errorf("write template headers: %w", err)
	}
	if len(sample) > 0 {
		if err := f.SetSheetRow(sheet, "A2", &sample); err != nil {
			return nil, fmt.Errorf("write template sample: %w", err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return buf.Bytes(), nil
}

func readSheetRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close() //nolint:errcheck

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRow(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
