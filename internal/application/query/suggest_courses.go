package query

import (
	"context"
	"errors"
	"strings"

	"github.com/transferhub/transfer-hub/internal/domain/audit"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
	"github.com/transferhub/transfer-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUGGEST COURSES QUERY
// Proposes program options that would move unmet grouped requirements
// forward. Options already on the plan are never suggested.
// ══════════════════════════════════════════════════════════════════════════════

// SuggestCoursesQuery contains the parameters of the request.
type SuggestCoursesQuery struct {
	PlanCode string
	View     string

	// Limit overrides the configured per-group limit when positive.
	Limit int
}

// Validate checks the query.
func (q SuggestCoursesQuery) Validate() error {
	if strings.TrimSpace(q.PlanCode) == "" {
		return errors.New("plan_code is required")
	}
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if q.View != "" {
		if _, err := audit.ParseView(q.View); err != nil {
			return err
		}
	}
	return nil
}

// SuggestCoursesResult is the response of the query.
type SuggestCoursesResult struct {
	PlanCode    string             `json:"plan_code"`
	View        audit.View         `json:"view"`
	Suggestions []audit.Suggestion `json:"suggestions"`
}

// SuggestCoursesHandler handles suggestion queries.
type SuggestCoursesHandler struct {
	loader  *SnapshotLoader
	options *OptionsResolver
	log     *logger.Logger
	config  GetPlanProgressHandlerConfig
}

// NewSuggestCoursesHandler creates a new handler.
func NewSuggestCoursesHandler(loader *SnapshotLoader, options *OptionsResolver, log *logger.Logger, config GetPlanProgressHandlerConfig) *SuggestCoursesHandler {
	if config.DefaultView == "" {
		config = DefaultGetPlanProgressHandlerConfig()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SuggestCoursesHandler{
		loader:  loader,
		options: options,
		log:     log.With(logger.Component("suggest_courses")),
		config:  config,
	}
}

// Handle executes the query.
func (h *SuggestCoursesHandler) Handle(ctx context.Context, query SuggestCoursesQuery) (*SuggestCoursesResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "SuggestCourses", shared.ErrValidation, err.Error(), err)
	}
	view := resolveView(query.View, h.config.DefaultView)

	snap, err := h.loader.Load(ctx, query.PlanCode)
	if err != nil {
		return nil, err
	}

	opts := h.options.Resolve(query.PlanCode)
	if query.Limit > 0 {
		opts.SuggestionLimit = query.Limit
	}
	suggestions, err := audit.NewEvaluator(opts).SuggestCourses(snap, view)
	if err != nil {
		return nil, err
	}

	h.log.Debug("suggestions computed",
		logger.PlanCode(query.PlanCode),
		logger.View(string(view)),
		logger.Int("count", len(suggestions)),
	)

	return &SuggestCoursesResult{
		PlanCode:    snap.Plan.Code,
		View:        view,
		Suggestions: suggestions,
	}, nil
}
