package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type seatingStudentDirectory interface {
	FindCandidates(ctx context.Context, sel models.StudentSelection) ([]models.Student, error)
	ResetAllocations(ctx context.Context) error
}

type seatingRoomCatalog interface {
	ListOrdered(ctx context.Context) ([]models.Room, error)
}

type seatingSeatCatalog interface {
	ListByRoom(ctx context.Context, roomID string) ([]models.Seat, error)
	ResetOccupied(ctx context.Context) error
}

type seatingAssignmentStore interface {
	PersistRun(ctx context.Context, assignments []models.SeatAssignment) error
	ListDates(ctx context.Context) ([]string, error)
	ExistsByDate(ctx context.Context, examDate string) (bool, error)
	DeleteByDate(ctx context.Context, examDate string) (int64, error)
}

type reportCacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

type allocationMetrics interface {
	RecordAllocationRun(assigned, unfilledSeats int)
}

// SeatingService drives the allocation lifecycle: validate, reset flags,
// allocate, persist. Only one generation run may execute at a time.
type SeatingService struct {
	students    seatingStudentDirectory
	rooms       seatingRoomCatalog
	seats       seatingSeatCatalog
	assignments seatingAssignmentStore
	cache       reportCacheInvalidator
	metrics     allocationMetrics
	validator   *validator.Validate
	logger      *zap.Logger

	runMu sync.Mutex
}

// NewSeatingService constructs a SeatingService instance.
func NewSeatingService(
	students seatingStudentDirectory,
	rooms seatingRoomCatalog,
	seats seatingSeatCatalog,
	assignments seatingAssignmentStore,
	cache reportCacheInvalidator,
	metrics allocationMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
) *SeatingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SeatingService{
		students:    students,
		rooms:       rooms,
		seats:       seats,
		assignments: assignments,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// Generate runs one full allocation for the requested session. The flag reset
// happens before allocation and is deliberately not rolled back when a later
// step fails.
func (s *SeatingService) Generate(ctx context.Context, req dto.GenerateSeatingRequest) (*dto.GenerateSeatingResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}

	if !s.runMu.TryLock() {
		return nil, appErrors.ErrAllocationInProgress
	}
	defer s.runMu.Unlock()

	started := time.Now()
	s.logger.Info("allocation run started",
		zap.String("exam_date", req.ExamDate),
		zap.String("arrangement", req.ArrangementName),
		zap.Strings("departments", req.Departments),
		zap.Strings("classes", req.Classes),
		zap.Strings("subjects", req.Subjects),
	)

	if err := s.resetFlags(ctx); err != nil {
		return nil, err
	}

	candidates, err := s.students.FindCandidates(ctx, models.StudentSelection{
		Departments: req.Departments,
		Classes:     req.Classes,
		Subjects:    req.Subjects,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch candidate students")
	}
	if len(candidates) == 0 {
		return nil, appErrors.ErrNoCandidates
	}

	rooms, err := s.rooms.ListOrdered(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch rooms")
	}
	if len(rooms) == 0 {
		return nil, appErrors.ErrNoRooms
	}

	seatsByRoom := make(map[string][]models.Seat, len(rooms))
	for _, room := range rooms {
		seats, err := s.seats.ListByRoom(ctx, room.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch seats")
		}
		seatsByRoom[room.ID] = seats
	}

	index := newSubjectPopulationIndex(candidates, req.Subjects)
	topology := newSeatTopology(rooms, seatsByRoom)
	if topology.totalSeats() == 0 {
		return nil, appErrors.ErrNoRooms
	}

	engine := newAllocationEngine(index, topology)
	records, stats, err := engine.run(req.ExamDate, req.ArrangementName)
	if err != nil {
		return nil, err
	}

	if err := s.assignments.PersistRun(ctx, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist assignments")
	}

	s.invalidateReportCache(ctx)
	if s.metrics != nil {
		s.metrics.RecordAllocationRun(stats.totalAssigned, stats.unfilledSeats)
	}

	for _, shortage := range stats.shortages {
		s.logger.Warn("subject shortage",
			zap.String("exam_date", req.ExamDate),
			zap.String("subject", shortage.Subject),
			zap.Int("remaining", shortage.Remaining),
		)
	}
	s.logger.Info("allocation run finished",
		zap.String("exam_date", req.ExamDate),
		zap.Int("total_assigned", stats.totalAssigned),
		zap.Int("rooms_used", stats.roomsUsed),
		zap.Int("unallocated_students", stats.unallocatedStudents),
		zap.Int("unfilled_seats", stats.unfilledSeats),
		zap.Duration("took", time.Since(started)),
	)

	return &dto.GenerateSeatingResponse{
		ExamDate:            req.ExamDate,
		ArrangementName:     req.ArrangementName,
		TotalAssigned:       stats.totalAssigned,
		RoomsUsed:           stats.roomsUsed,
		UnallocatedStudents: stats.unallocatedStudents,
		UnfilledSeats:       stats.unfilledSeats,
		Shortages:           stats.shortages,
	}, nil
}

// Dates lists the exam dates with persisted arrangements, newest first.
func (s *SeatingService) Dates(ctx context.Context) ([]string, error) {
	dates, err := s.assignments.ListDates(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exam dates")
	}
	return dates, nil
}

// DeleteByDate removes a date's arrangement and frees the flags it consumed.
func (s *SeatingService) DeleteByDate(ctx context.Context, examDate string) (int64, error) {
	exists, err := s.assignments.ExistsByDate(ctx, examDate)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check arrangement")
	}
	if !exists {
		return 0, appErrors.ErrArrangementNotFound
	}

	deleted, err := s.assignments.DeleteByDate(ctx, examDate)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete arrangement")
	}
	if err := s.resetFlags(ctx); err != nil {
		return 0, err
	}
	s.invalidateReportCache(ctx)

	s.logger.Info("arrangement deleted", zap.String("exam_date", examDate), zap.Int64("records", deleted))
	return deleted, nil
}

func (s *SeatingService) resetFlags(ctx context.Context) error {
	if err := s.students.ResetAllocations(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset student allocations")
	}
	if err := s.seats.ResetOccupied(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset occupied seats")
	}
	return nil
}

func (s *SeatingService) invalidateReportCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "report:*"); err != nil {
		s.logger.Warn("failed to invalidate report cache", zap.Error(err))
	}
}
