package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/service"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
	"github.com/noah-isme/exam-seating-api/pkg/response"
)

// SeatingHandler exposes seating allocation endpoints.
type SeatingHandler struct {
	seating *service.SeatingService
	stats   *service.StatsService
}

// NewSeatingHandler constructs SeatingHandler.
func NewSeatingHandler(seating *service.SeatingService, stats *service.StatsService) *SeatingHandler {
	return &SeatingHandler{seating: seating, stats: stats}
}

// Generate godoc
// @Summary Run the seating allocation for an exam date
// @Tags Seating
// @Accept json
// @Produce json
// @Param payload body dto.GenerateSeatingRequest true "Allocation payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /seating/generate [post]
func (h *SeatingHandler) Generate(c *gin.Context) {
	var req dto.GenerateSeatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.seating.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Dates godoc
// @Summary List exam dates that have arrangements
// @Tags Seating
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /seating/dates [get]
func (h *SeatingHandler) Dates(c *gin.Context) {
	dates, err := h.seating.Dates(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dates, nil)
}

// Delete godoc
// @Summary Delete the arrangement for an exam date
// @Tags Seating
// @Produce json
// @Param date path string true "Exam date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /seating/{date} [delete]
func (h *SeatingHandler) Delete(c *gin.Context) {
	examDate := strings.TrimSpace(c.Param("date"))
	if examDate == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "exam date is required"))
		return
	}
	removed, err := h.seating.DeleteByDate(c.Request.Context(), examDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": removed}, nil)
}

// Counts godoc
// @Summary Roster and arrangement row counts
// @Tags Seating
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /seating/counts [get]
func (h *SeatingHandler) Counts(c *gin.Context) {
	counts, err := h.stats.Counts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counts, nil)
}
