package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/transferhub/transfer-hub/internal/application/query"
	"github.com/transferhub/transfer-hub/pkg/logger"
)

// PrerequisiteHandler serves the prerequisite endpoints.
type PrerequisiteHandler struct {
	prereqs *query.PrerequisiteHandler
	log     *logger.Logger
}

// NewPrerequisiteHandler creates a PrerequisiteHandler.
func NewPrerequisiteHandler(prereqs *query.PrerequisiteHandler, log *logger.Logger) *PrerequisiteHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &PrerequisiteHandler{
		prereqs: prereqs,
		log:     log.With(logger.Component("PrerequisiteHandler")),
	}
}

// ValidateRequest is the body of POST /prerequisites/validate.
type ValidateRequest struct {
	CourseCode     string   `json:"course_code" binding:"required"`
	Institution    string   `json:"institution"`
	CompletedCodes []string `json:"completed_codes"`
	PlanCode       string   `json:"plan_code"`
}

// Validate serves POST /prerequisites/validate.
func (h *PrerequisiteHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	report, err := h.prereqs.Validate(c.Request.Context(), query.ValidatePrerequisitesQuery{
		CourseCode:     req.CourseCode,
		Institution:    req.Institution,
		CompletedCodes: req.CompletedCodes,
		PlanCode:       req.PlanCode,
	})
	if err != nil {
		h.fail(c, "Validate", err)
		return
	}
	RespondOK(c, report)
}

// Details serves GET /courses/:code/prerequisites?institution=.
func (h *PrerequisiteHandler) Details(c *gin.Context) {
	details, err := h.prereqs.Details(c.Request.Context(), query.GetPrerequisiteDetailsQuery{
		CourseCode:  c.Param("code"),
		Institution: c.Query("institution"),
	})
	if err != nil {
		h.fail(c, "Details", err)
		return
	}
	RespondOK(c, details)
}

func (h *PrerequisiteHandler) fail(c *gin.Context, op string, err error) {
	status, _ := classify(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(op+" failed", logger.CourseCode(c.Param("code")), logger.Err(err))
	}
	_ = c.Error(err)
	RespondDomainError(c, err)
}
