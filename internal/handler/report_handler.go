package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-seating-api/internal/service"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
	"github.com/noah-isme/exam-seating-api/pkg/response"
)

// ReportHandler exposes report projection endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func examDateParam(c *gin.Context) (string, bool) {
	examDate := strings.TrimSpace(c.Param("date"))
	if examDate == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "exam date is required"))
		return "", false
	}
	return examDate, true
}

// Consolidated godoc
// @Summary Consolidated seat-range report per room and department
// @Tags Reports
// @Produce json
// @Param date path string true "Exam date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/consolidated/{date} [get]
func (h *ReportHandler) Consolidated(c *gin.Context) {
	examDate, ok := examDateParam(c)
	if !ok {
		return
	}
	report, err := h.reports.Consolidated(c.Request.Context(), examDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Room godoc
// @Summary Per-room seating chart split by seat column
// @Tags Reports
// @Produce json
// @Param date path string true "Exam date (YYYY-MM-DD)"
// @Param roomNo path string true "Room number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/room/{date}/{roomNo} [get]
func (h *ReportHandler) Room(c *gin.Context) {
	examDate, ok := examDateParam(c)
	if !ok {
		return
	}
	roomNo := strings.TrimSpace(c.Param("roomNo"))
	if roomNo == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "room number is required"))
		return
	}
	report, err := h.reports.Room(c.Request.Context(), examDate, roomNo)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Supervisor godoc
// @Summary Supervisor sign-off sheets grouped by room and subject
// @Tags Reports
// @Produce json
// @Param date path string true "Exam date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/supervisor/{date} [get]
func (h *ReportHandler) Supervisor(c *gin.Context) {
	examDate, ok := examDateParam(c)
	if !ok {
		return
	}
	report, err := h.reports.Supervisor(c.Request.Context(), examDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
