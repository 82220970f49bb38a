package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/transferhub/transfer-hub/internal/application/command"
	"github.com/transferhub/transfer-hub/internal/application/query"
	"github.com/transferhub/transfer-hub/pkg/logger"
)

// PlanHandler serves the plan progress endpoints.
type PlanHandler struct {
	progress  *query.GetPlanProgressHandler
	unmet     *query.GetUnmetRequirementsHandler
	suggest   *query.SuggestCoursesHandler
	addCourse *command.AddPlannedCourseHandler
	remove    *command.RemovePlannedCourseHandler
	log       *logger.Logger
}

// NewPlanHandler creates a PlanHandler.
func NewPlanHandler(
	progress *query.GetPlanProgressHandler,
	unmet *query.GetUnmetRequirementsHandler,
	suggest *query.SuggestCoursesHandler,
	addCourse *command.AddPlannedCourseHandler,
	remove *command.RemovePlannedCourseHandler,
	log *logger.Logger,
) *PlanHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &PlanHandler{
		progress:  progress,
		unmet:     unmet,
		suggest:   suggest,
		addCourse: addCourse,
		remove:    remove,
		log:       log.With(logger.Component("PlanHandler")),
	}
}

// GetProgress serves GET /plans/:code/progress?view=&fresh=.
func (h *PlanHandler) GetProgress(c *gin.Context) {
	skipCache, _ := strconv.ParseBool(c.Query("fresh"))
	result, err := h.progress.Handle(c.Request.Context(), query.GetPlanProgressQuery{
		PlanCode:  c.Param("code"),
		View:      c.Query("view"),
		SkipCache: skipCache,
	})
	if err != nil {
		h.fail(c, "GetProgress", err)
		return
	}
	RespondOK(c, result)
}

// GetUnmet serves GET /plans/:code/unmet?view=.
func (h *PlanHandler) GetUnmet(c *gin.Context) {
	result, err := h.unmet.Handle(c.Request.Context(), query.GetUnmetRequirementsQuery{
		PlanCode: c.Param("code"),
		View:     c.Query("view"),
	})
	if err != nil {
		h.fail(c, "GetUnmet", err)
		return
	}
	RespondOK(c, result)
}

// GetSuggestions serves GET /plans/:code/suggestions?view=&limit=.
func (h *PlanHandler) GetSuggestions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "validation_error", fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}

	result, err := h.suggest.Handle(c.Request.Context(), query.SuggestCoursesQuery{
		PlanCode: c.Param("code"),
		View:     c.Query("view"),
		Limit:    limit,
	})
	if err != nil {
		h.fail(c, "GetSuggestions", err)
		return
	}
	RespondOK(c, result)
}

// ExportCSV serves GET /plans/:code/export.csv?view=.
func (h *PlanHandler) ExportCSV(c *gin.Context) {
	code := c.Param("code")
	result, err := h.progress.Handle(c.Request.Context(), query.GetPlanProgressQuery{
		PlanCode: code,
		View:     c.Query("view"),
	})
	if err != nil {
		h.fail(c, "ExportCSV", err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-progress.csv"`, code))
	c.Status(http.StatusOK)
	if err := query.WriteProgressCSV(c.Writer, result.Report); err != nil {
		h.log.Error("csv export failed", logger.PlanCode(code), logger.Err(err))
	}
}

// AddCourseRequest is the body of POST /plans/:code/courses.
type AddCourseRequest struct {
	CourseCode          string `json:"course_code" binding:"required"`
	Institution         string `json:"institution"`
	Status              string `json:"status"`
	CreditsOverride     *int   `json:"credits_override"`
	RequirementGroupID  string `json:"requirement_group_id"`
	RequirementCategory string `json:"requirement_category"`
	Grade               string `json:"grade"`
	Semester            string `json:"semester"`
	Year                int    `json:"year"`
}

// AddCourse serves POST /plans/:code/courses.
func (h *PlanHandler) AddCourse(c *gin.Context) {
	var req AddCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	result, err := h.addCourse.Handle(c.Request.Context(), command.AddPlannedCourseCommand{
		PlanCode:            c.Param("code"),
		CourseCode:          req.CourseCode,
		Institution:         req.Institution,
		Status:              req.Status,
		CreditsOverride:     req.CreditsOverride,
		RequirementGroupID:  req.RequirementGroupID,
		RequirementCategory: req.RequirementCategory,
		Grade:               req.Grade,
		Semester:            req.Semester,
		Year:                req.Year,
		CorrelationID:       GetRequestID(c),
	})
	if err != nil {
		h.fail(c, "AddCourse", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// RemoveCourse serves DELETE /plans/:code/courses/:id.
func (h *PlanHandler) RemoveCourse(c *gin.Context) {
	err := h.remove.Handle(c.Request.Context(), command.RemovePlannedCourseCommand{
		PlanCode:        c.Param("code"),
		PlannedCourseID: c.Param("id"),
		CorrelationID:   GetRequestID(c),
	})
	if err != nil {
		h.fail(c, "RemoveCourse", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PlanHandler) fail(c *gin.Context, op string, err error) {
	status, _ := classify(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(op+" failed", logger.PlanCode(c.Param("code")), logger.Err(err))
	}
	_ = c.Error(err)
	RespondDomainError(c, err)
}
