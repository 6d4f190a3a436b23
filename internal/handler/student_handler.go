package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/internal/service"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
	"github.com/noah-isme/exam-seating-api/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StudentHandler exposes student roster endpoints.
type StudentHandler struct {
	students  *service.StudentService
	maxUpload int64
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService, maxUpload int64) *StudentHandler {
	return &StudentHandler{students: students, maxUpload: maxUpload}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Search by name or roll number"
// @Param department query string false "Filter by department"
// @Param class query string false "Filter by class"
// @Param subject query string false "Filter by subject"
// @Param allocated query bool false "Filter by allocation state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	var filter models.StudentFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Department = strings.TrimSpace(c.Query("department"))
	filter.ClassName = strings.TrimSpace(c.Query("class"))
	filter.Subject = strings.TrimSpace(c.Query("subject"))
	if allocated := c.Query("allocated"); allocated != "" {
		if allocated == "true" {
			v := true
			filter.Allocated = &v
		} else if allocated == "false" {
			v := false
			filter.Allocated = &v
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Upload godoc
// @Summary Bulk upload students from a workbook
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "XLSX workbook"
// @Success 200 {object} response.Envelope
// @Router /students/upload [post]
func (h *StudentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	if h.maxUpload > 0 && fileHeader.Size > h.maxUpload {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file exceeds the allowed size"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	summary, err := h.students.Upload(c.Request.Context(), src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Template godoc
// @Summary Download the student upload template
// @Tags Students
// @Produce octet-stream
// @Success 200 {file} binary
// @Router /students/template [get]
func (h *StudentHandler) Template(c *gin.Context) {
	payload, err := h.students.Template()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="students_template.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, payload)
}

// DepartmentSubjects godoc
// @Summary List departments and their subjects
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/department-subjects [get]
func (h *StudentHandler) DepartmentSubjects(c *gin.Context) {
	groups, err := h.students.DepartmentSubjects(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// DeleteAll godoc
// @Summary Remove every student and their assignments
// @Tags Students
// @Produce json
// @Success 204
// @Router /students [delete]
func (h *StudentHandler) DeleteAll(c *gin.Context) {
	if err := h.students.DeleteAll(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
