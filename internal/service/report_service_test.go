package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/models"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type recordStoreStub struct {
	byDate map[string][]models.AssignmentRecord
	calls  int
}

func (s *recordStoreStub) ListByDate(ctx context.Context, examDate string) ([]models.AssignmentRecord, error) {
	s.calls++
	return s.byDate[examDate], nil
}

func (s *recordStoreStub) ListByDateAndRoom(ctx context.Context, examDate, roomNo string) ([]models.AssignmentRecord, error) {
	s.calls++
	var out []models.AssignmentRecord
	for _, rec := range s.byDate[examDate] {
		if rec.RoomNo == roomNo {
			out = append(out, rec)
		}
	}
	return out, nil
}

type reportCacheStub struct {
	values map[string][]byte
	hits   int
	sets   int
}

func newReportCacheStub() *reportCacheStub {
	return &reportCacheStub{values: map[string][]byte{}}
}

func (s *reportCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := s.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	s.hits++
	return json.Unmarshal(raw, dest)
}

func (s *reportCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.sets++
	s.values[key] = raw
	return nil
}

func record(roomNo, dept, subject string, bench int, pos models.SeatPosition) models.AssignmentRecord {
	seatNo := fmt.Sprintf("%s%d", pos, bench)
	roll := fmt.Sprintf("%s-%s-%s", roomNo, dept, seatNo)
	return models.AssignmentRecord{
		RollNo:      roll,
		StudentName: roll,
		Department:  dept,
		ClassName:   "3A",
		Subject:     subject,
		RoomNo:      roomNo,
		SeatNo:      seatNo,
		Position:    pos,
		BenchNo:     bench,
		ExamDate:    "2026-03-01",
	}
}

func consolidatedFixture() *recordStoreStub {
	var records []models.AssignmentRecord
	for bench := 1; bench <= 5; bench++ {
		records = append(records, record("101", "CS", "Math", bench, models.PositionRight))
	}
	for bench := 6; bench <= 8; bench++ {
		records = append(records, record("101", "IT", "Bio", bench, models.PositionRight))
	}
	return &recordStoreStub{byDate: map[string][]models.AssignmentRecord{"2026-03-01": records}}
}

func TestReportConsolidatedGroupsByRoomAndDepartment(t *testing.T) {
	svc := NewReportService(consolidatedFixture(), nil, zap.NewNop(), ReportServiceConfig{})

	report, err := svc.Consolidated(context.Background(), "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", report.ExamDate)
	assert.Equal(t, 8, report.Total)
	require.Len(t, report.Rows, 2)

	assert.Equal(t, models.ConsolidatedRow{RoomNo: "101", Department: "CS", SeatFrom: "R1", SeatTo: "R5", Count: 5}, report.Rows[0])
	assert.Equal(t, models.ConsolidatedRow{RoomNo: "101", Department: "IT", SeatFrom: "R6", SeatTo: "R8", Count: 3}, report.Rows[1])
}

func TestReportConsolidatedMissingDate(t *testing.T) {
	store := &recordStoreStub{byDate: map[string][]models.AssignmentRecord{}}
	svc := NewReportService(store, nil, zap.NewNop(), ReportServiceConfig{})

	_, err := svc.Consolidated(context.Background(), "2030-01-01")
	require.ErrorIs(t, err, appErrors.ErrArrangementNotFound)
}

func TestReportRoomSplitsByColumn(t *testing.T) {
	records := []models.AssignmentRecord{
		record("101", "CS", "Math", 2, models.PositionRight),
		record("101", "CS", "Math", 1, models.PositionRight),
		record("101", "IT", "Bio", 1, models.PositionLeft),
		record("101", "CS", "Math", 1, models.PositionMiddle),
		record("102", "EE", "Phys", 1, models.PositionRight),
	}
	store := &recordStoreStub{byDate: map[string][]models.AssignmentRecord{"2026-03-01": records}}
	svc := NewReportService(store, nil, zap.NewNop(), ReportServiceConfig{})

	report, err := svc.Room(context.Background(), "2026-03-01", "101")
	require.NoError(t, err)

	assert.Equal(t, "101", report.RoomNo)
	assert.Equal(t, []string{"CS", "IT"}, report.Departments)
	assert.Equal(t, []string{"Bio", "Math"}, report.Subjects)

	require.Len(t, report.RightSeats, 2)
	assert.Equal(t, 1, report.RightSeats[0].BenchNo)
	assert.Equal(t, 2, report.RightSeats[1].BenchNo)
	require.Len(t, report.MiddleSeats, 1)
	require.Len(t, report.LeftSeats, 1)
	assert.Equal(t, "Bio", report.LeftSeats[0].Subject)
}

func TestReportRoomMissing(t *testing.T) {
	store := &recordStoreStub{byDate: map[string][]models.AssignmentRecord{}}
	svc := NewReportService(store, nil, zap.NewNop(), ReportServiceConfig{})

	_, err := svc.Room(context.Background(), "2026-03-01", "999")
	require.ErrorIs(t, err, appErrors.ErrArrangementNotFound)
}

func TestReportSupervisorNumbersEntries(t *testing.T) {
	records := []models.AssignmentRecord{
		record("101", "CS", "Math", 1, models.PositionRight),
		record("101", "CS", "Math", 2, models.PositionRight),
		record("101", "IT", "Bio", 1, models.PositionLeft),
		record("102", "CS", "Math", 1, models.PositionRight),
	}
	store := &recordStoreStub{byDate: map[string][]models.AssignmentRecord{"2026-03-01": records}}
	svc := NewReportService(store, nil, zap.NewNop(), ReportServiceConfig{})

	report, err := svc.Supervisor(context.Background(), "2026-03-01")
	require.NoError(t, err)
	require.Len(t, report.Sheets, 3)

	first := report.Sheets[0]
	assert.Equal(t, "101", first.RoomNo)
	assert.Equal(t, "Bio", first.Subject)
	assert.Equal(t, 1, first.Count)

	second := report.Sheets[1]
	assert.Equal(t, "101", second.RoomNo)
	assert.Equal(t, "Math", second.Subject)
	require.Len(t, second.Entries, 2)
	assert.Equal(t, 1, second.Entries[0].SerialNo)
	assert.Equal(t, 2, second.Entries[1].SerialNo)

	assert.Equal(t, "102", report.Sheets[2].RoomNo)
}

func TestReportConsolidatedUsesCache(t *testing.T) {
	store := consolidatedFixture()
	cache := newReportCacheStub()
	svc := NewReportService(store, cache, zap.NewNop(), ReportServiceConfig{CacheEnabled: true, CacheTTL: time.Minute})

	first, err := svc.Consolidated(context.Background(), "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.Consolidated(context.Background(), "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first, second)
}
