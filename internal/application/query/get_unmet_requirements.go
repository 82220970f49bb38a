package query

import (
	"context"
	"errors"
	"strings"

	"github.com/transferhub/transfer-hub/internal/domain/audit"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET UNMET REQUIREMENTS QUERY
// Lists the requirements of a plan that are not met, with the credits still
// needed and the group and constraint reasons behind each.
// ══════════════════════════════════════════════════════════════════════════════

// GetUnmetRequirementsQuery contains the parameters of the request.
type GetUnmetRequirementsQuery struct {
	PlanCode string
	View     string
}

// Validate checks the query.
func (q GetUnmetRequirementsQuery) Validate() error {
	if strings.TrimSpace(q.PlanCode) == "" {
		return errors.New("plan_code is required")
	}
	return nil
}

// UnmetRequirementsResult is the response of the query.
type UnmetRequirementsResult struct {
	PlanCode     string        `json:"plan_code"`
	View         audit.View    `json:"view"`
	Unmet        []audit.Unmet `json:"unmet_requirements"`
	TotalUnmet   int           `json:"total_unmet"`
	CreditsShort int           `json:"credits_short"`
}

// GetUnmetRequirementsHandler derives unmet requirements from the progress
// report, sharing its cache.
type GetUnmetRequirementsHandler struct {
	progress *GetPlanProgressHandler
}

// NewGetUnmetRequirementsHandler creates a new handler.
func NewGetUnmetRequirementsHandler(progress *GetPlanProgressHandler) *GetUnmetRequirementsHandler {
	return &GetUnmetRequirementsHandler{progress: progress}
}

// Handle executes the query.
func (h *GetUnmetRequirementsHandler) Handle(ctx context.Context, query GetUnmetRequirementsQuery) (*UnmetRequirementsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetUnmetRequirements", shared.ErrValidation, err.Error(), err)
	}

	res, err := h.progress.Handle(ctx, GetPlanProgressQuery{PlanCode: query.PlanCode, View: query.View})
	if err != nil {
		return nil, err
	}

	unmet := audit.UnmetRequirements(res.Report)
	out := &UnmetRequirementsResult{
		PlanCode:   res.Report.PlanCode,
		View:       res.Report.View,
		Unmet:      unmet,
		TotalUnmet: len(unmet),
	}
	for _, u := range unmet {
		out.CreditsShort += u.CreditsNeeded
	}
	return out, nil
}
