package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type studentDirectoryStub struct {
	candidates []models.Student
	err        error
	resets     int
}

func (s *studentDirectoryStub) FindCandidates(ctx context.Context, sel models.StudentSelection) ([]models.Student, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

func (s *studentDirectoryStub) ResetAllocations(ctx context.Context) error {
	s.resets++
	return nil
}

type roomCatalogStub struct {
	rooms []models.Room
}

func (s *roomCatalogStub) ListOrdered(ctx context.Context) ([]models.Room, error) {
	return s.rooms, nil
}

type seatCatalogStub struct {
	byRoom map[string][]models.Seat
	resets int
}

func (s *seatCatalogStub) ListByRoom(ctx context.Context, roomID string) ([]models.Seat, error) {
	return s.byRoom[roomID], nil
}

func (s *seatCatalogStub) ResetOccupied(ctx context.Context) error {
	s.resets++
	return nil
}

type assignmentStoreStub struct {
	persisted  []models.SeatAssignment
	persistErr error
	dates      []string
	exists     bool
	deleted    int64
}

func (s *assignmentStoreStub) PersistRun(ctx context.Context, assignments []models.SeatAssignment) error {
	if s.persistErr != nil {
		return s.persistErr
	}
	s.persisted = append(s.persisted, assignments...)
	return nil
}

func (s *assignmentStoreStub) ListDates(ctx context.Context) ([]string, error) {
	return s.dates, nil
}

func (s *assignmentStoreStub) ExistsByDate(ctx context.Context, examDate string) (bool, error) {
	return s.exists, nil
}

func (s *assignmentStoreStub) DeleteByDate(ctx context.Context, examDate string) (int64, error) {
	return s.deleted, nil
}

type cacheInvalidatorStub struct {
	patterns []string
}

func (s *cacheInvalidatorStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	return nil
}

type allocationMetricsStub struct {
	assigned int
	unfilled int
	runs     int
}

func (s *allocationMetricsStub) RecordAllocationRun(assigned, unfilledSeats int) {
	s.runs++
	s.assigned = assigned
	s.unfilled = unfilledSeats
}

func newSeatingFixture(math, bio int) (*studentDirectoryStub, *roomCatalogStub, *seatCatalogStub) {
	candidates := append(studentsOf("Math", math), studentsOf("Bio", bio)...)
	room, seats := benchRoom("101", 3)
	students := &studentDirectoryStub{candidates: candidates}
	rooms := &roomCatalogStub{rooms: []models.Room{room}}
	seatCatalog := &seatCatalogStub{byRoom: map[string][]models.Seat{room.ID: seats}}
	return students, rooms, seatCatalog
}

func validGenerateRequest() dto.GenerateSeatingRequest {
	return dto.GenerateSeatingRequest{
		ExamDate:        "2026-03-01",
		ArrangementName: "midterm",
		Departments:     []string{"CS"},
		Classes:         []string{"3A"},
		Subjects:        []string{"Math", "Bio"},
	}
}

func TestSeatingGeneratePersistsAndReports(t *testing.T) {
	students, rooms, seats := newSeatingFixture(6, 4)
	store := &assignmentStoreStub{}
	cache := &cacheInvalidatorStub{}
	metrics := &allocationMetricsStub{}
	svc := NewSeatingService(students, rooms, seats, store, cache, metrics, nil, zap.NewNop())

	res, err := svc.Generate(context.Background(), validGenerateRequest())
	require.NoError(t, err)

	assert.Equal(t, 9, res.TotalAssigned)
	assert.Equal(t, 1, res.RoomsUsed)
	assert.Equal(t, 1, res.UnallocatedStudents)
	assert.Equal(t, 0, res.UnfilledSeats)
	assert.Len(t, store.persisted, 9)

	assert.Equal(t, 1, students.resets)
	assert.Equal(t, 1, seats.resets)
	assert.Equal(t, []string{"report:*"}, cache.patterns)
	assert.Equal(t, 1, metrics.runs)
	assert.Equal(t, 9, metrics.assigned)
}

func TestSeatingGenerateValidatesPayload(t *testing.T) {
	students, rooms, seats := newSeatingFixture(4, 4)
	svc := NewSeatingService(students, rooms, seats, &assignmentStoreStub{}, nil, nil, nil, zap.NewNop())

	req := validGenerateRequest()
	req.Subjects = nil
	_, err := svc.Generate(context.Background(), req)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Zero(t, students.resets)
}

func TestSeatingGenerateNoCandidates(t *testing.T) {
	students, rooms, seats := newSeatingFixture(0, 0)
	students.candidates = nil
	svc := NewSeatingService(students, rooms, seats, &assignmentStoreStub{}, nil, nil, nil, zap.NewNop())

	_, err := svc.Generate(context.Background(), validGenerateRequest())
	require.ErrorIs(t, err, appErrors.ErrNoCandidates)
	// The reset already ran, matching the destructive-first contract.
	assert.Equal(t, 1, students.resets)
}

func TestSeatingGenerateNoRooms(t *testing.T) {
	students, _, seats := newSeatingFixture(4, 4)
	svc := NewSeatingService(students, &roomCatalogStub{}, seats, &assignmentStoreStub{}, nil, nil, nil, zap.NewNop())

	_, err := svc.Generate(context.Background(), validGenerateRequest())
	require.ErrorIs(t, err, appErrors.ErrNoRooms)
}

func TestSeatingGenerateSingleSubjectFailsAfterReset(t *testing.T) {
	students, rooms, seats := newSeatingFixture(5, 0)
	store := &assignmentStoreStub{}
	svc := NewSeatingService(students, rooms, seats, store, nil, nil, nil, zap.NewNop())

	_, err := svc.Generate(context.Background(), validGenerateRequest())
	require.ErrorIs(t, err, appErrors.ErrInsufficientSubjects)
	assert.Empty(t, store.persisted)
	assert.Equal(t, 1, students.resets)
	assert.Equal(t, 1, seats.resets)
}

func TestSeatingDeleteByDate(t *testing.T) {
	students, rooms, seats := newSeatingFixture(2, 2)
	store := &assignmentStoreStub{exists: true, deleted: 12}
	cache := &cacheInvalidatorStub{}
	svc := NewSeatingService(students, rooms, seats, store, cache, nil, nil, zap.NewNop())

	deleted, err := svc.DeleteByDate(context.Background(), "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, int64(12), deleted)
	assert.Equal(t, 1, students.resets)
	assert.Equal(t, []string{"report:*"}, cache.patterns)
}

func TestSeatingDeleteByDateMissing(t *testing.T) {
	students, rooms, seats := newSeatingFixture(2, 2)
	store := &assignmentStoreStub{exists: false}
	svc := NewSeatingService(students, rooms, seats, store, nil, nil, nil, zap.NewNop())

	_, err := svc.DeleteByDate(context.Background(), "2026-03-01")
	require.ErrorIs(t, err, appErrors.ErrArrangementNotFound)
}

func TestSeatingDates(t *testing.T) {
	students, rooms, seats := newSeatingFixture(2, 2)
	store := &assignmentStoreStub{dates: []string{"2026-03-02", "2026-03-01"}}
	svc := NewSeatingService(students, rooms, seats, store, nil, nil, nil, zap.NewNop())

	dates, err := svc.Dates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-02", "2026-03-01"}, dates)
}
