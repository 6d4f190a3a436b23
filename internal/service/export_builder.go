package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/pkg/export"
	"github.com/noah-isme/exam-seating-api/pkg/storage"
)

type reportProjector interface {
	Consolidated(ctx context.Context, examDate string) (*models.ConsolidatedReport, error)
	Room(ctx context.Context, examDate, roomNo string) (*models.RoomReport, error)
	Supervisor(ctx context.Context, examDate string) (*models.SupervisorReport, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	RenderSections(title string, sections []export.Section) ([]byte, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset, sheetName string) ([]byte, error)
	RenderSections(sections []export.Section) ([]byte, error)
}

// ExportBuilderConfig tunes export behaviour.
type ExportBuilderConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportBuilder materialises report projections into files on disk.
type ExportBuilder struct {
	reports reportProjector
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	xlsx    xlsxRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportBuilderConfig
}

// NewExportBuilder constructs an ExportBuilder.
func NewExportBuilder(reports reportProjector, store fileStorage, signer *storage.SignedURLSigner, cfg ExportBuilderConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer, xlsx xlsxRenderer) *ExportBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	return &ExportBuilder{
		reports: reports,
		storage: store,
		csv:     csv,
		pdf:     pdf,
		xlsx:    xlsx,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate builds the dataset for the job's report type and stores the rendered file.
func (b *ExportBuilder) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, sections, title, err := b.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = b.csv.Render(dataset)
	case models.ExportFormatPDF:
		if len(sections) > 0 {
			payload, err = b.pdf.RenderSections(title, sections)
		} else {
			payload, err = b.pdf.Render(dataset, title)
		}
	case models.ExportFormatXLSX:
		if len(sections) > 0 {
			payload, err = b.xlsx.RenderSections(sections)
		} else {
			payload, err = b.xlsx.Render(dataset, string(job.Type))
		}
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := b.buildFilename(job)
	relPath, err := b.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := b.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(b.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (b *ExportBuilder) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return b.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (b *ExportBuilder) Open(relPath string) (*os.File, error) {
	return b.storage.Open(relPath)
}

// Delete removes a stored export file.
func (b *ExportBuilder) Delete(relPath string) error {
	return b.storage.Delete(relPath)
}

// Cleanup purges files older than the TTL.
func (b *ExportBuilder) Cleanup(ttl time.Duration) ([]string, error) {
	return b.storage.CleanupOlderThan(ttl)
}

func (b *ExportBuilder) buildDataset(ctx context.Context, job *models.ExportJob) (export.Dataset, []export.Section, string, error) {
	switch job.Type {
	case models.ExportTypeConsolidated:
		report, err := b.reports.Consolidated(ctx, job.Params.ExamDate)
		if err != nil {
			return export.Dataset{}, nil, "", err
		}
		return consolidatedDataset(report), nil, fmt.Sprintf("Seating Arrangement %s", report.ExamDate), nil
	case models.ExportTypeRoom:
		if job.Params.RoomNo == nil || *job.Params.RoomNo == "" {
			return export.Dataset{}, nil, "", fmt.Errorf("room export requires roomNo")
		}
		report, err := b.reports.Room(ctx, job.Params.ExamDate, *job.Params.RoomNo)
		if err != nil {
			return export.Dataset{}, nil, "", err
		}
		title := fmt.Sprintf("Room %s Seating %s", report.RoomNo, report.ExamDate)
		return roomDataset(report), roomSections(report), title, nil
	case models.ExportTypeSupervisor:
		report, err := b.reports.Supervisor(ctx, job.Params.ExamDate)
		if err != nil {
			return export.Dataset{}, nil, "", err
		}
		title := fmt.Sprintf("Junior Supervisor Report %s", report.ExamDate)
		return supervisorDataset(report), supervisorSections(report), title, nil
	default:
		return export.Dataset{}, nil, "", fmt.Errorf("unsupported export type %s", job.Type)
	}
}

func (b *ExportBuilder) buildFilename(job *models.ExportJob) string {
	base := fmt.Sprintf("%s_%s_%s", job.Type, job.Params.ExamDate, job.ID)
	return fmt.Sprintf("%s.%s", base, job.Params.Format)
}

func consolidatedDataset(report *models.ConsolidatedReport) export.Dataset {
	headers := []string{"Room", "Department", "Seat From", "Seat To", "Count"}
	rows := make([]map[string]string, 0, len(report.Rows))
	for _, row := range report.Rows {
		rows = append(rows, map[string]string{
			"Room":       row.RoomNo,
			"Department": row.Department,
			"Seat From":  row.SeatFrom,
			"Seat To":    row.SeatTo,
			"Count":      fmt.Sprintf("%d", row.Count),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

var roomEntryHeaders = []string{"Seat No", "Bench", "Roll No", "Student", "Department", "Subject"}

func roomEntryRows(entries []models.RoomSeatEntry) []map[string]string {
	rows := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, map[string]string{
			"Seat No":    entry.SeatNo,
			"Bench":      fmt.Sprintf("%d", entry.BenchNo),
			"Roll No":    entry.RollNo,
			"Student":    entry.StudentName,
			"Department": entry.Department,
			"Subject":    entry.Subject,
		})
	}
	return rows
}

func roomDataset(report *models.RoomReport) export.Dataset {
	headers := append([]string{"Column"}, roomEntryHeaders...)
	rows := make([]map[string]string, 0)
	appendColumn := func(column string, entries []models.RoomSeatEntry) {
		for _, row := range roomEntryRows(entries) {
			row["Column"] = column
			rows = append(rows, row)
		}
	}
	appendColumn("Right", report.RightSeats)
	appendColumn("Middle", report.MiddleSeats)
	appendColumn("Left", report.LeftSeats)
	return export.Dataset{Headers: headers, Rows: rows}
}

func roomSections(report *models.RoomReport) []export.Section {
	return []export.Section{
		{Title: "Right", Data: export.Dataset{Headers: roomEntryHeaders, Rows: roomEntryRows(report.RightSeats)}},
		{Title: "Middle", Data: export.Dataset{Headers: roomEntryHeaders, Rows: roomEntryRows(report.MiddleSeats)}},
		{Title: "Left", Data: export.Dataset{Headers: roomEntryHeaders, Rows: roomEntryRows(report.LeftSeats)}},
	}
}

func supervisorDataset(report *models.SupervisorReport) export.Dataset {
	headers := []string{"Room", "Subject", "Sr No", "Seat No", "Roll No"}
	rows := make([]map[string]string, 0)
	for _, sheet := range report.Sheets {
		for _, entry := range sheet.Entries {
			rows = append(rows, map[string]string{
				"Room":    sheet.RoomNo,
				"Subject": sheet.Subject,
				"Sr No":   fmt.Sprintf("%d", entry.SerialNo),
				"Seat No": entry.SeatNo,
				"Roll No": entry.RollNo,
			})
		}
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func supervisorSections(report *models.SupervisorReport) []export.Section {
	sections := make([]export.Section, 0, len(report.Sheets))
	for _, sheet := range report.Sheets {
		rows := make([]map[string]string, 0, len(sheet.Entries))
		for _, entry := range sheet.Entries {
			rows = append(rows, map[string]string{
				"Sr No":   fmt.Sprintf("%d", entry.SerialNo),
				"Seat No": entry.SeatNo,
				"Roll No": entry.RollNo,
			})
		}
		sections = append(sections, export.Section{
			Title: fmt.Sprintf("%s %s", sheet.RoomNo, sheet.Subject),
			Data:  export.Dataset{Headers: []string{"Sr No", "Seat No", "Roll No"}, Rows: rows},
		})
	}
	return sections
}
