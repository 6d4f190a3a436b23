package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/models"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type reportAssignmentStore interface {
	ListByDate(ctx context.Context, examDate string) ([]models.AssignmentRecord, error)
	ListByDateAndRoom(ctx context.Context, examDate, roomNo string) ([]models.AssignmentRecord, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ReportServiceConfig governs read-side caching of report projections.
type ReportServiceConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ReportService rebuilds consolidated, per-room and supervisor views from the
// persisted assignment records of a date. Pure read side, never touches the
// allocation flags.
type ReportService struct {
	assignments reportAssignmentStore
	cache       reportCache
	logger      *zap.Logger
	cfg         ReportServiceConfig
}

// NewReportService constructs a ReportService instance.
func NewReportService(assignments reportAssignmentStore, cache reportCache, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &ReportService{assignments: assignments, cache: cache, logger: logger, cfg: cfg}
}

// Consolidated groups a date's records by room and department, one row per
// group with the first and last seat label in bench order.
func (s *ReportService) Consolidated(ctx context.Context, examDate string) (*models.ConsolidatedReport, error) {
	cacheKey := fmt.Sprintf("report:consolidated:%s", examDate)
	var cached models.ConsolidatedReport
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	records, err := s.fetchByDate(ctx, examDate)
	if err != nil {
		return nil, err
	}

	type groupKey struct {
		roomNo     string
		department string
	}
	groups := make(map[groupKey][]models.AssignmentRecord)
	keys := make([]groupKey, 0)
	for _, record := range records {
		key := groupKey{roomNo: record.RoomNo, department: record.Department}
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], record)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].roomNo != keys[j].roomNo {
			return keys[i].roomNo < keys[j].roomNo
		}
		return keys[i].department < keys[j].department
	})

	report := &models.ConsolidatedReport{ExamDate: examDate, Total: len(records), Rows: make([]models.ConsolidatedRow, 0, len(keys))}
	for _, key := range keys {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].BenchNo < group[j].BenchNo
		})
		report.Rows = append(report.Rows, models.ConsolidatedRow{
			RoomNo:     key.roomNo,
			Department: key.department,
			SeatFrom:   group[0].SeatNo,
			SeatTo:     group[len(group)-1].SeatNo,
			Count:      len(group),
		})
	}

	s.cacheSet(ctx, cacheKey, report)
	return report, nil
}

// Room builds the per-room projection rendered by the PDF and Excel formatters.
func (s *ReportService) Room(ctx context.Context, examDate, roomNo string) (*models.RoomReport, error) {
	cacheKey := fmt.Sprintf("report:room:%s:%s", examDate, roomNo)
	var cached models.RoomReport
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	records, err := s.assignments.ListByDateAndRoom(ctx, examDate, roomNo)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch assignments")
	}
	if len(records) == 0 {
		return nil, appErrors.ErrArrangementNotFound
	}

	report := &models.RoomReport{ExamDate: examDate, RoomNo: roomNo}
	departments := make(map[string]struct{})
	subjects := make(map[string]struct{})
	for _, record := range records {
		departments[record.Department] = struct{}{}
		subjects[record.Subject] = struct{}{}
		entry := models.RoomSeatEntry{
			SeatNo:      record.SeatNo,
			BenchNo:     record.BenchNo,
			RollNo:      record.RollNo,
			StudentName: record.StudentName,
			Department:  record.Department,
			Subject:     record.Subject,
		}
		switch record.Position {
		case models.PositionRight:
			report.RightSeats = append(report.RightSeats, entry)
		case models.PositionMiddle:
			report.MiddleSeats = append(report.MiddleSeats, entry)
		case models.PositionLeft:
			report.LeftSeats = append(report.LeftSeats, entry)
		}
	}
	report.Departments = sortedKeys(departments)
	report.Subjects = sortedKeys(subjects)
	sortEntriesByBench(report.RightSeats)
	sortEntriesByBench(report.MiddleSeats)
	sortEntriesByBench(report.LeftSeats)

	s.cacheSet(ctx, cacheKey, report)
	return report, nil
}

// Supervisor builds the junior supervisor sheets, one per room and subject.
func (s *ReportService) Supervisor(ctx context.Context, examDate string) (*models.SupervisorReport, error) {
	cacheKey := fmt.Sprintf("report:supervisor:%s", examDate)
	var cached models.SupervisorReport
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	records, err := s.fetchByDate(ctx, examDate)
	if err != nil {
		return nil, err
	}

	type sheetKey struct {
		roomNo  string
		subject string
	}
	grouped := make(map[sheetKey][]models.SupervisorEntry)
	keys := make([]sheetKey, 0)
	for _, record := range records {
		key := sheetKey{roomNo: record.RoomNo, subject: record.Subject}
		if _, seen := grouped[key]; !seen {
			keys = append(keys, key)
		}
		grouped[key] = append(grouped[key], models.SupervisorEntry{
			SerialNo: len(grouped[key]) + 1,
			SeatNo:   record.SeatNo,
			RollNo:   record.RollNo,
		})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].roomNo != keys[j].roomNo {
			return keys[i].roomNo < keys[j].roomNo
		}
		return keys[i].subject < keys[j].subject
	})

	report := &models.SupervisorReport{ExamDate: examDate, Sheets: make([]models.SupervisorSheet, 0, len(keys))}
	for _, key := range keys {
		entries := grouped[key]
		report.Sheets = append(report.Sheets, models.SupervisorSheet{
			RoomNo:  key.roomNo,
			Subject: key.subject,
			Count:   len(entries),
			Entries: entries,
		})
	}

	s.cacheSet(ctx, cacheKey, report)
	return report, nil
}

func (s *ReportService) fetchByDate(ctx context.Context, examDate string) ([]models.AssignmentRecord, error) {
	records, err := s.assignments.ListByDate(ctx, examDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch assignments")
	}
	if len(records) == 0 {
		return nil, appErrors.ErrArrangementNotFound
	}
	return records, nil
}

func (s *ReportService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if !s.cfg.CacheEnabled || s.cache == nil {
		return false
	}
	if err := s.cache.Get(ctx, key, dest); err != nil {
		if err != appErrors.ErrCacheMiss {
			s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return true
}

func (s *ReportService) cacheSet(ctx context.Context, key string, value interface{}) {
	if !s.cfg.CacheEnabled || s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func sortEntriesByBench(entries []models.RoomSeatEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].BenchNo < entries[j].BenchNo
	})
}
