package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sanumxxx/timetable-api/internal/dto"
	"github.com/sanumxxx/timetable-api/internal/service"
	appErrors "github.com/sanumxxx/timetable-api/pkg/errors"
	"github.com/sanumxxx/timetable-api/pkg/response"
)

// LessonHandler wires lesson CRUD and week views to HTTP routes.
type LessonHandler struct {
	lessons *service.LessonService
	export  *service.ExportService
}

// NewLessonHandler constructs a new LessonHandler.
func NewLessonHandler(lessons *service.LessonService, export *service.ExportService) *LessonHandler {
	return &LessonHandler{lessons: lessons, export: export}
}

// List godoc
// @Summary List lessons
// @Tags Schedule
// @Produce json
// @Param semester query int false "Semester"
// @Param week query int false "Week number"
// @Param group query string false "Group name"
// @Param teacher query string false "Teacher name"
// @Param auditory query string false "Auditory"
// @Param weekday query int false "Weekday 1..6"
// @Param date query string false "Calendar date YYYY-MM-DD"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *LessonHandler) List(c *gin.Context) {
	var query dto.ListLessonsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query"))
		return
	}

	lessons, pagination, err := h.lessons.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, pagination)
}

// Week godoc
// @Summary Get one entity's week view
// @Tags Schedule
// @Produce json
// @Param view query string true "View kind (group/teacher/auditory)"
// @Param name query string true "Entity name"
// @Param semester query int true "Semester"
// @Param week query int true "Week number"
// @Success 200 {object} response.Envelope
// @Router /schedule/week [get]
func (h *LessonHandler) Week(c *gin.Context) {
	semester, _ := strconv.Atoi(c.Query("semester"))
	week, _ := strconv.Atoi(c.Query("week"))

	lessons, err := h.lessons.WeekView(c.Request.Context(), c.Query("view"), c.Query("name"), semester, week)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}

// Get godoc
// @Summary Get one lesson
// @Tags Schedule
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/{id} [get]
func (h *LessonHandler) Get(c *gin.Context) {
	id, err := lessonID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	lesson, err := h.lessons.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// Create godoc
// @Summary Create a lesson
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateLessonRequest true "Lesson"
// @Success 201 {object} response.Envelope
// @Router /schedule [post]
func (h *LessonHandler) Create(c *gin.Context) {
	var req dto.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload"))
		return
	}

	lesson, err := h.lessons.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lesson)
}

// Update godoc
// @Summary Update a lesson
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Param payload body dto.UpdateLessonRequest true "Partial update; force_update skips conflict checks"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Conflicting lessons; retry with force_update"
// @Router /schedule/{id} [put]
func (h *LessonHandler) Update(c *gin.Context) {
	id, err := lessonID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload"))
		return
	}

	lesson, err := h.lessons.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// Delete godoc
// @Summary Delete a lesson
// @Tags Schedule
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Success 204
// @Router /schedule/{id} [delete]
func (h *LessonHandler) Delete(c *gin.Context) {
	id, err := lessonID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.lessons.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export a week view as CSV or PDF
// @Tags Schedule
// @Produce octet-stream
// @Param format query string true "Export format (csv/pdf)"
// @Param view query string true "View kind (group/teacher/auditory)"
// @Param name query string true "Entity name"
// @Param semester query int true "Semester"
// @Param week query int true "Week number"
// @Success 200 {file} file
// @Router /schedule/export [get]
func (h *LessonHandler) Export(c *gin.Context) {
	semester, _ := strconv.Atoi(c.Query("semester"))
	week, _ := strconv.Atoi(c.Query("week"))
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))

	payload, contentType, err := h.export.RenderWeek(c.Request.Context(), format, c.Query("view"), c.Query("name"), semester, week)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("timetable_%s_week%d.%s", c.Query("name"), week, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

func lessonID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid lesson id")
	}
	return id, nil
}
