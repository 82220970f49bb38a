package query

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/transferhub/transfer-hub/internal/domain/audit"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
	"github.com/transferhub/transfer-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PLAN PROGRESS QUERY
// Evaluates a plan against its target program and returns the full report:
// every requirement with its groups, constraints and used courses, plus the
// capped totals and completion percentage.
// ══════════════════════════════════════════════════════════════════════════════

// GetPlanProgressQuery contains the parameters of a progress request.
type GetPlanProgressQuery struct {
	// PlanCode identifies the plan.
	PlanCode string

	// View is a short name or UI label. Empty uses the configured default.
	View string

	// SkipCache forces a fresh evaluation.
	SkipCache bool
}

// Validate checks the query.
func (q GetPlanProgressQuery) Validate() error {
	if strings.TrimSpace(q.PlanCode) == "" {
		return errors.New("plan_code is required")
	}
	if q.View != "" {
		if _, err := audit.ParseView(q.View); err != nil {
			return err
		}
	}
	return nil
}

// PlanProgressResult is the response of the progress query.
type PlanProgressResult struct {
	Report      *audit.Report `json:"report"`
	Cached      bool          `json:"cached"`
	EvaluatedAt time.Time     `json:"evaluated_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// ProgressCache stores computed reports per plan and view.
type ProgressCache interface {
	GetProgress(ctx context.Context, planCode string, view audit.View) (*audit.Report, error)
	SetProgress(ctx context.Context, planCode string, view audit.View, report *audit.Report) error
	InvalidatePlan(ctx context.Context, planCode string) error
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetPlanProgressHandler handles progress queries.
type GetPlanProgressHandler struct {
	loader  *SnapshotLoader
	options *OptionsResolver
	cache   ProgressCache // optional
	log     *logger.Logger

	// Configuration
	config GetPlanProgressHandlerConfig
}

// GetPlanProgressHandlerConfig contains configuration for the handler.
type GetPlanProgressHandlerConfig struct {
	// DefaultView applies when the query names no view.
	DefaultView audit.View
}

// DefaultGetPlanProgressHandlerConfig returns default configuration.
func DefaultGetPlanProgressHandlerConfig() GetPlanProgressHandlerConfig {
	return GetPlanProgressHandlerConfig{
		DefaultView: audit.ViewAll,
	}
}

// NewGetPlanProgressHandler creates a new handler. cache may be nil.
func NewGetPlanProgressHandler(
	loader *SnapshotLoader,
	options *OptionsResolver,
	cache ProgressCache,
	log *logger.Logger,
	config GetPlanProgressHandlerConfig,
) *GetPlanProgressHandler {
	if config.DefaultView == "" {
		config = DefaultGetPlanProgressHandlerConfig()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &GetPlanProgressHandler{
		loader:  loader,
		options: options,
		cache:   cache,
		log:     log.With(logger.Component("plan_progress")),
		config:  config,
	}
}

// Handle executes the query.
func (h *GetPlanProgressHandler) Handle(ctx context.Context, query GetPlanProgressQuery) (*PlanProgressResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetPlanProgress", shared.ErrValidation, err.Error(), err)
	}
	view := resolveView(query.View, h.config.DefaultView)
	opts := h.options.Resolve(query.PlanCode)

	if h.cache != nil && !query.SkipCache {
		report, err := h.cache.GetProgress(ctx, query.PlanCode, view)
		switch {
		case err != nil:
			h.log.Warn("progress cache read failed", logger.PlanCode(query.PlanCode), logger.Err(err))
		case report == nil:
		case report.GroupedStrict != opts.GroupedStrict:
			// Evaluated under a different flag state; recompute and overwrite.
			h.log.Debug("cached progress mode changed", logger.PlanCode(query.PlanCode))
		default:
			return &PlanProgressResult{Report: report, Cached: true, EvaluatedAt: time.Now().UTC()}, nil
		}
	}

	start := time.Now()
	snap, err := h.loader.Load(ctx, query.PlanCode)
	if err != nil {
		return nil, err
	}

	report, err := audit.NewEvaluator(opts).FullProgress(snap, view)
	if err != nil {
		return nil, err
	}

	h.log.Info("progress evaluated",
		logger.PlanCode(query.PlanCode),
		logger.ProgramID(report.ProgramID),
		logger.View(string(view)),
		logger.Float64("completion", report.CompletionPercentage),
		logger.Latency(time.Since(start)),
	)

	if h.cache != nil {
		if err := h.cache.SetProgress(ctx, query.PlanCode, view, report); err != nil {
			h.log.Warn("progress cache write failed", logger.PlanCode(query.PlanCode), logger.Err(err))
		}
	}

	return &PlanProgressResult{Report: report, EvaluatedAt: time.Now().UTC()}, nil
}

// resolveView parses raw, falling back to def. Validate has already
// rejected unknown labels.
func resolveView(raw string, def audit.View) audit.View {
	if raw == "" {
		return def
	}
	v, err := audit.ParseView(raw)
	if err != nil {
		return def
	}
	return v
}
