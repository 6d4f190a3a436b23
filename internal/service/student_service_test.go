package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type studentStoreStub struct {
	existing  map[string]bool
	created   []models.Student
	upserted  []models.Student
	deleteAll int
}

func newStudentStoreStub() *studentStoreStub {
	return &studentStoreStub{existing: map[string]bool{}}
}

func (s *studentStoreStub) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	return nil, 0, nil
}

func (s *studentStoreStub) Create(ctx context.Context, student *models.Student) error {
	student.ID = "stu-created"
	s.created = append(s.created, *student)
	return nil
}

func (s *studentStoreStub) Upsert(ctx context.Context, student *models.Student) (bool, error) {
	created := !s.existing[student.RollNo]
	s.existing[student.RollNo] = true
	s.upserted = append(s.upserted, *student)
	return created, nil
}

func (s *studentStoreStub) ExistsByRollNo(ctx context.Context, rollNo string, excludeID string) (bool, error) {
	return s.existing[rollNo], nil
}

func (s *studentStoreStub) DistinctDepartmentSubjects(ctx context.Context) ([]models.DepartmentSubjects, error) {
	return nil, nil
}

func (s *studentStoreStub) DeleteAll(ctx context.Context) error {
	s.deleteAll++
	return nil
}

type assignmentWiperStub struct {
	calls int
}

func (s *assignmentWiperStub) DeleteAll(ctx context.Context) error {
	s.calls++
	return nil
}

func rosterWorkbook(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Roll No", "Full Name", "Department", "Class", "Subjects"}))
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return bytes.NewReader(buf.Bytes())
}

func TestStudentCreateRejectsDuplicateRollNo(t *testing.T) {
	store := newStudentStoreStub()
	store.existing["CS-001"] = true
	svc := NewStudentService(store, &assignmentWiperStub{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), dto.CreateStudentRequest{
		RollNo:     "CS-001",
		FullName:   "Asha Rao",
		Department: "CS",
		ClassName:  "3A",
		Subjects:   []string{"Math"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.created)
}

func TestStudentCreateNormalizesSubjects(t *testing.T) {
	store := newStudentStoreStub()
	svc := NewStudentService(store, &assignmentWiperStub{}, nil, zap.NewNop())

	student, err := svc.Create(context.Background(), dto.CreateStudentRequest{
		RollNo:     " CS-001 ",
		FullName:   "Asha Rao",
		Department: "CS",
		ClassName:  "3A",
		Subjects:   []string{" Math ", "Math", "Physics"},
	})
	require.NoError(t, err)
	assert.Equal(t, "CS-001", student.RollNo)
	assert.Equal(t, []string{"Math", "Physics"}, []string(student.Subjects))
}

func TestStudentUploadCountsOutcomes(t *testing.T) {
	store := newStudentStoreStub()
	store.existing["CS-002"] = true
	svc := NewStudentService(store, &assignmentWiperStub{}, nil, zap.NewNop())

	workbook := rosterWorkbook(t, [][]interface{}{
		{"CS-001", "Asha Rao", "CS", "3A", "Math, Physics"},
		{"CS-002", "Nia Das", "CS", "3A", "Math"},
		{"", "", "", "", ""},
		{"CS-003", "", "CS", "3A", "Math"},
	})

	summary, err := svc.Upload(context.Background(), workbook)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 2, summary.Skipped)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 5, summary.Errors[0].Row)

	require.Len(t, store.upserted, 2)
	assert.Equal(t, []string{"Math", "Physics"}, []string(store.upserted[0].Subjects))
}

func TestStudentUploadRejectsGarbageFile(t *testing.T) {
	svc := NewStudentService(newStudentStoreStub(), &assignmentWiperStub{}, nil, zap.NewNop())

	_, err := svc.Upload(context.Background(), bytes.NewReader([]byte("not a workbook")))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentTemplateIsReadable(t *testing.T) {
	svc := NewStudentService(newStudentStoreStub(), &assignmentWiperStub{}, nil, zap.NewNop())

	payload, err := svc.Template()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, studentTemplateHeaders, rows[0])
}

func TestStudentDeleteAllWipesAssignmentsFirst(t *testing.T) {
	store := newStudentStoreStub()
	wiper := &assignmentWiperStub{}
	svc := NewStudentService(store, wiper, nil, zap.NewNop())

	require.NoError(t, svc.DeleteAll(context.Background()))
	assert.Equal(t, 1, wiper.calls)
	assert.Equal(t, 1, store.deleteAll)
}
