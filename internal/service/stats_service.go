package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type rowCounter interface {
	Count(ctx context.Context) (int, error)
}

// StatsService aggregates roster and arrangement totals for the dashboard.
type StatsService struct {
	students    rowCounter
	rooms       rowCounter
	seats       rowCounter
	assignments rowCounter
	logger      *zap.Logger
}

// NewStatsService constructs a StatsService instance.
func NewStatsService(students, rooms, seats, assignments rowCounter, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{students: students, rooms: rooms, seats: seats, assignments: assignments, logger: logger}
}

// Counts returns the row totals of the four core tables.
func (s *StatsService) Counts(ctx context.Context) (*dto.SeatingCounts, error) {
	counts := &dto.SeatingCounts{}
	for _, item := range []struct {
		counter rowCounter
		dest    *int
		label   string
	}{
		{s.students, &counts.Students, "students"},
		{s.rooms, &counts.Rooms, "rooms"},
		{s.seats, &counts.Seats, "seats"},
		{s.assignments, &counts.Assignments, "assignments"},
	} {
		total, err := item.counter.Count(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count "+item.label)
		}
		*item.dest = total
	}
	return counts, nil
}
