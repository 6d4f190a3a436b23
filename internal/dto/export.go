package dto

import "github.com/noah-isme/exam-seating-api/internal/models"

// CreateExportRequest queues an asynchronous report export.
type CreateExportRequest struct {
	Type     models.ExportType   `json:"type" validate:"required,oneof=consolidated room supervisor"`
	Format   models.ExportFormat `json:"format" validate:"required,oneof=csv pdf xlsx"`
	ExamDate string              `json:"examDate" validate:"required,datetime=2006-01-02"`
	RoomNo   *string             `json:"roomNo,omitempty"`
}

// ExportJobResponse enriches job metadata with a signed download URL when ready.
type ExportJobResponse struct {
	models.ExportJob
	DownloadURL *string `json:"downloadUrl,omitempty"`
}
