package service

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type roomStore interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error)
	Create(ctx context.Context, room *models.Room) error
	ExistsByRoomNo(ctx context.Context, roomNo string) (bool, error)
	DeleteAll(ctx context.Context) error
}

type seatStore interface {
	BulkCreate(ctx context.Context, seats []models.Seat) error
	DeleteAll(ctx context.Context) error
}

var roomTemplateHeaders = []string{"Room No", "Total Benches", "Right", "Middle", "Left", "Capacity"}

// RoomService manages exam halls and their generated seats.
type RoomService struct {
	repo        roomStore
	seats       seatStore
	assignments assignmentWiper
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewRoomService constructs a RoomService instance.
func NewRoomService(repo roomStore, seats seatStore, assignments assignmentWiper, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RoomService{repo: repo, seats: seats, assignments: assignments, validator: validate, logger: logger}
}

// List returns rooms with pagination metadata.
func (s *RoomService) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, *models.Pagination, error) {
	rooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return rooms, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create registers a room and generates its seats from the column counts.
// A capacity that disagrees with the column counts is tolerated with a warning.
func (s *RoomService) Create(ctx context.Context, req dto.CreateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}
	exists, err := s.repo.ExistsByRoomNo(ctx, req.RoomNo)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("room %s already exists", req.RoomNo))
	}

	seatTotal := req.RightCount + req.MiddleCount + req.LeftCount
	capacity := req.Capacity
	if capacity == 0 {
		capacity = seatTotal
	}
	if capacity != seatTotal {
		s.logger.Warn("room capacity disagrees with column counts",
			zap.String("room_no", req.RoomNo),
			zap.Int("capacity", capacity),
			zap.Int("seat_total", seatTotal),
		)
	}

	room := &models.Room{
		RoomNo:       req.RoomNo,
		TotalBenches: req.TotalBenches,
		RightCount:   req.RightCount,
		MiddleCount:  req.MiddleCount,
		LeftCount:    req.LeftCount,
		Capacity:     capacity,
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	if err := s.seats.BulkCreate(ctx, buildSeats(room)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create seats")
	}
	return room, nil
}

// Template renders the room upload workbook with a sample row.
func (s *RoomService) Template() ([]byte, error) {
	return renderTemplate("Rooms", roomTemplateHeaders, []interface{}{"101", 10, 10, 10, 10, 30})
}

// Upload ingests a room workbook, creating one room with seats per row.
func (s *RoomService) Upload(ctx context.Context, r io.Reader) (*dto.UploadSummary, error) {
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
		req, err := parseRoomRow(row)
		if err != nil {
			summary.Errors = append(summary.Errors, dto.RowError{Row: rowNo, Message: err.Error()})
			summary.Skipped++
			continue
		}
		if _, err := s.Create(ctx, req); err != nil {
			summary.Errors = append(summary.Errors, dto.RowError{Row: rowNo, Message: appErrors.FromError(err).Message})
			summary.Skipped++
			continue
		}
		summary.Created++
	}
	return summary, nil
}

// DeleteAll wipes assignments, seats and rooms in dependency order.
func (s *RoomService) DeleteAll(ctx context.Context) error {
	if err := s.assignments.DeleteAll(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignments")
	}
	if err := s.seats.DeleteAll(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete seats")
	}
	if err := s.repo.DeleteAll(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete rooms")
	}
	s.logger.Info("rooms and seats wiped")
	return nil
}

// buildSeats lays out one seat per column slot, bench numbers 1-based per column.
func buildSeats(room *models.Room) []models.Seat {
	seats := make([]models.Seat, 0, room.RightCount+room.MiddleCount+room.LeftCount)
	appendColumn := func(pos models.SeatPosition, count int) {
		for bench := 1; bench <= count; bench++ {
			seats = append(seats, models.Seat{
				RoomID:   room.ID,
				SeatNo:   fmt.Sprintf("%s%d", pos, bench),
				Position: pos,
				BenchNo:  bench,
			})
		}
	}
	appendColumn(models.PositionRight, room.RightCount)
	appendColumn(models.PositionMiddle, room.MiddleCount)
	appendColumn(models.PositionLeft, room.LeftCount)
	return seats
}

func parseRoomRow(row []string) (dto.CreateRoomRequest, error) {
	var req dto.CreateRoomRequest
	req.RoomNo = cell(row, 0)
	if req.RoomNo == "" {
		return req, fmt.Errorf("room number is required")
	}
	values := make([]int, 5)
	for i := 1; i <= 5; i++ {
		raw := cell(row, i)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return req, fmt.Errorf("column %d must be a non-negative number", i+1)
		}
		values[i-1] = n
	}
	req.TotalBenches = values[0]
	req.RightCount = values[1]
	req.MiddleCount = values[2]
	req.LeftCount = values[3]
	req.Capacity = values[4]
	if req.TotalBenches < 1 {
		return req, fmt.Errorf("total benches must be at least 1")
	}
	return req, nil
}
