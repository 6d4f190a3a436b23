package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/internal/repository"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
	"github.com/noah-isme/exam-seating-api/pkg/jobs"
)

type exportJobStoreStub struct {
	jobs      map[string]*models.ExportJob
	created   int
	createErr error
	updates   map[string][]repository.UpdateExportJobParams
}

func newExportJobStoreStub() *exportJobStoreStub {
	return &exportJobStoreStub{
		jobs:    make(map[string]*models.ExportJob),
		updates: make(map[string][]repository.UpdateExportJobParams),
	}
}

func (s *exportJobStoreStub) Create(ctx context.Context, job *models.ExportJob) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created++
	job.ID = fmt.Sprintf("job-%d", s.created)
	job.CreatedAt = time.Now().UTC()
	stored := *job
	s.jobs[job.ID] = &stored
	return nil
}

func (s *exportJobStoreStub) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *job
	return &out, nil
}

func (s *exportJobStoreStub) Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error {
	s.updates[id] = append(s.updates[id], params)
	job, ok := s.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (s *exportJobStoreStub) ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error) {
	out := make([]models.ExportJob, 0)
	for _, job := range s.jobs {
		if job.Status == models.ExportStatusQueued {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (s *exportJobStoreStub) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	return nil, nil
}

type queueStub struct {
	enqueued []jobs.Job
	err      error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, job)
	return nil
}

type exportGeneratorStub struct {
	result    *ExportResult
	genErr    error
	generated []string

	parseJobID string
	parseRel   string
	parseExp   time.Time
	parseErr   error

	openFile *os.File
	openErr  error
	deleted  []string
}

func (g *exportGeneratorStub) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	g.generated = append(g.generated, job.ID)
	if g.genErr != nil {
		return nil, g.genErr
	}
	return g.result, nil
}

func (g *exportGeneratorStub) ParseToken(token string, allowExpired bool) (string, string, time.Time, error) {
	if g.parseErr != nil {
		return "", "", time.Time{}, g.parseErr
	}
	return g.parseJobID, g.parseRel, g.parseExp, nil
}

func (g *exportGeneratorStub) Open(relPath string) (*os.File, error) {
	if g.openErr != nil {
		return nil, g.openErr
	}
	return g.openFile, nil
}

func (g *exportGeneratorStub) Delete(relPath string) error {
	g.deleted = append(g.deleted, relPath)
	return nil
}

func (g *exportGeneratorStub) Cleanup(ttl time.Duration) ([]string, error) {
	return nil, nil
}

func newExportServiceForTest(repo *exportJobStoreStub, queue *queueStub, gen *exportGeneratorStub) *ExportService {
	return NewExportService(repo, queue, gen, validator.New(), nil, ExportServiceConfig{})
}

func validExportRequest() dto.CreateExportRequest {
	return dto.CreateExportRequest{
		Type:     models.ExportTypeConsolidated,
		Format:   models.ExportFormatCSV,
		ExamDate: "2026-03-01",
	}
}

func TestExportCreateJobQueues(t *testing.T) {
	repo := newExportJobStoreStub()
	queue := &queueStub{}
	svc := newExportServiceForTest(repo, queue, &exportGeneratorStub{})

	resp, err := svc.CreateJob(context.Background(), validExportRequest(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, models.ExportStatusQueued, resp.Status)
	assert.Equal(t, "user-1", resp.CreatedBy)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, resp.ID, queue.enqueued[0].ID)
	assert.Equal(t, string(models.ExportTypeConsolidated), queue.enqueued[0].Type)
}

func TestExportCreateJobValidatesPayload(t *testing.T) {
	repo := newExportJobStoreStub()
	queue := &queueStub{}
	svc := newExportServiceForTest(repo, queue, &exportGeneratorStub{})

	bad := validExportRequest()
	bad.Format = "docx"
	_, err := svc.CreateJob(context.Background(), bad, "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	room := validExportRequest()
	room.Type = models.ExportTypeRoom
	_, err = svc.CreateJob(context.Background(), room, "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	assert.Zero(t, repo.created)
	assert.Empty(t, queue.enqueued)
}

func TestExportCreateJobEnqueueFailureMarksFailed(t *testing.T) {
	repo := newExportJobStoreStub()
	queue := &queueStub{err: errors.New("queue closed")}
	svc := newExportServiceForTest(repo, queue, &exportGeneratorStub{})

	_, err := svc.CreateJob(context.Background(), validExportRequest(), "user-1")
	require.Error(t, err)

	job := repo.jobs["job-1"]
	require.NotNil(t, job)
	assert.Equal(t, models.ExportStatusFailed, job.Status)
	assert.Equal(t, 100, job.Progress)
	require.NotNil(t, job.ErrorMessage)
	assert.NotNil(t, job.FinishedAt)
}

func TestExportGetStatus(t *testing.T) {
	repo := newExportJobStoreStub()
	url := "/api/v1/export/tok-1"
	repo.jobs["job-1"] = &models.ExportJob{
		ID:        "job-1",
		Type:      models.ExportTypeConsolidated,
		Status:    models.ExportStatusFinished,
		Progress:  100,
		ResultURL: &url,
	}
	repo.jobs["job-2"] = &models.ExportJob{
		ID:     "job-2",
		Type:   models.ExportTypeSupervisor,
		Status: models.ExportStatusQueued,
	}
	svc := newExportServiceForTest(repo, &queueStub{}, &exportGeneratorStub{})

	resp, err := svc.GetStatus(context.Background(), "job-1")
	require.NoError(t, err)
	require.NotNil(t, resp.DownloadURL)
	assert.Equal(t, url, *resp.DownloadURL)

	resp, err = svc.GetStatus(context.Background(), "job-2")
	require.NoError(t, err)
	assert.Nil(t, resp.DownloadURL)

	_, err = svc.GetStatus(context.Background(), "missing")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestExportResolveDownload(t *testing.T) {
	dir := t.TempDir()
	file, err := os.Create(filepath.Join(dir, "consolidated.csv"))
	require.NoError(t, err)
	defer file.Close()

	repo := newExportJobStoreStub()
	url := "/api/v1/export/tok-1"
	repo.jobs["job-1"] = &models.ExportJob{
		ID:        "job-1",
		Type:      models.ExportTypeConsolidated,
		Params:    models.ExportJobParams{ExamDate: "2026-03-01", Format: models.ExportFormatCSV},
		Status:    models.ExportStatusFinished,
		ResultURL: &url,
	}
	gen := &exportGeneratorStub{
		parseJobID: "job-1",
		parseRel:   "exports/consolidated.csv",
		parseExp:   time.Now().Add(time.Hour),
		openFile:   file,
	}
	svc := newExportServiceForTest(repo, &queueStub{}, gen)

	download, err := svc.ResolveDownload(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "consolidated.csv", download.Filename)
	assert.Equal(t, models.ExportFormatCSV, download.Format)

	// Token that parses but does not match the stored result URL.
	_, err = svc.ResolveDownload(context.Background(), "tok-other")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	repo.jobs["job-1"].Status = models.ExportStatusProcessing
	_, err = svc.ResolveDownload(context.Background(), "tok-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	gen.parseErr = errors.New("bad signature")
	_, err = svc.ResolveDownload(context.Background(), "tok-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestExportRecoverPendingJobs(t *testing.T) {
	repo := newExportJobStoreStub()
	repo.jobs["job-1"] = &models.ExportJob{ID: "job-1", Type: models.ExportTypeRoom, Status: models.ExportStatusQueued}
	repo.jobs["job-2"] = &models.ExportJob{ID: "job-2", Type: models.ExportTypeRoom, Status: models.ExportStatusFinished}
	queue := &queueStub{}
	svc := newExportServiceForTest(repo, queue, &exportGeneratorStub{})

	svc.RecoverPendingJobs(context.Background())

	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, "job-1", queue.enqueued[0].ID)
}

func TestExportWorkerMarksFinished(t *testing.T) {
	repo := newExportJobStoreStub()
	repo.jobs["job-1"] = &models.ExportJob{
		ID:     "job-1",
		Type:   models.ExportTypeConsolidated,
		Params: models.ExportJobParams{ExamDate: "2026-03-01", Format: models.ExportFormatCSV},
		Status: models.ExportStatusQueued,
	}
	gen := &exportGeneratorStub{result: &ExportResult{URL: "/api/v1/export/tok-1", Token: "tok-1"}}
	worker := NewExportWorker(repo, gen, 3, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 1})
	require.NoError(t, err)

	job := repo.jobs["job-1"]
	assert.Equal(t, models.ExportStatusFinished, job.Status)
	assert.Equal(t, 100, job.Progress)
	require.NotNil(t, job.ResultURL)
	assert.Equal(t, "/api/v1/export/tok-1", *job.ResultURL)
	assert.NotNil(t, job.FinishedAt)
	assert.Equal(t, []string{"job-1"}, gen.generated)

	updates := repo.updates["job-1"]
	require.Len(t, updates, 2)
	assert.Equal(t, models.ExportStatusProcessing, *updates[0].Status)
}

func TestExportWorkerRequeuesBeforeGivingUp(t *testing.T) {
	repo := newExportJobStoreStub()
	repo.jobs["job-1"] = &models.ExportJob{
		ID:     "job-1",
		Type:   models.ExportTypeConsolidated,
		Params: models.ExportJobParams{ExamDate: "2026-03-01", Format: models.ExportFormatPDF},
		Status: models.ExportStatusQueued,
	}
	gen := &exportGeneratorStub{genErr: errors.New("render failed")}
	worker := NewExportWorker(repo, gen, 3, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 1})
	require.Error(t, err)

	job := repo.jobs["job-1"]
	assert.Equal(t, models.ExportStatusQueued, job.Status)
	assert.Zero(t, job.Progress)
	require.NotNil(t, job.ErrorMessage)
	assert.Nil(t, job.FinishedAt)

	err = worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 3})
	require.Error(t, err)

	assert.Equal(t, models.ExportStatusFailed, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.NotNil(t, job.FinishedAt)
}
