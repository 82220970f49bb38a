// Package eventhandler contains domain event handlers.
package eventhandler

import (
	"context"
	"time"

	"github.com/transferhub/transfer-hub/internal/domain/shared"
	"github.com/transferhub/transfer-hub/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// INVALIDATE PROGRESS ON PLAN CHANGE
// Drops cached progress reports of a plan whenever its courses or group
// assignments change. The aggregate ID of every plan event is the plan code.
// ═══════════════════════════════════════════════════════════════════════════

// PlanCacheInvalidator removes cached reports of one plan.
type PlanCacheInvalidator interface {
	InvalidatePlan(ctx context.Context, planCode string) error
}

// InvalidateProgressConfig contains configuration for the handler.
type InvalidateProgressConfig struct {
	// Timeout bounds one invalidation call.
	Timeout time.Duration
}

// DefaultInvalidateProgressConfig returns default configuration.
func DefaultInvalidateProgressConfig() InvalidateProgressConfig {
	return InvalidateProgressConfig{Timeout: 2 * time.Second}
}

// InvalidateProgressOnPlanChange handles plan events.
type InvalidateProgressOnPlanChange struct {
	cache  PlanCacheInvalidator
	log    *logger.Logger
	config InvalidateProgressConfig
}

// NewInvalidateProgressOnPlanChange creates the handler.
func NewInvalidateProgressOnPlanChange(cache PlanCacheInvalidator, log *logger.Logger, config InvalidateProgressConfig) *InvalidateProgressOnPlanChange {
	if config.Timeout <= 0 {
		config = DefaultInvalidateProgressConfig()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &InvalidateProgressOnPlanChange{
		cache:  cache,
		log:    log.With(logger.Component("progress_invalidator")),
		config: config,
	}
}

// EventTypes lists the events the handler subscribes to.
func (h *InvalidateProgressOnPlanChange) EventTypes() []shared.EventType {
	return []shared.EventType{
		shared.EventPlannedCourseAdded,
		shared.EventPlannedCourseRemoved,
		shared.EventGroupAutoAssigned,
	}
}

// Handle implements shared.EventHandler.
func (h *InvalidateProgressOnPlanChange) Handle(event shared.Event) error {
	planCode := event.AggregateID()
	if planCode == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if err := h.cache.InvalidatePlan(ctx, planCode); err != nil {
		h.log.Warn("progress cache invalidation failed",
			logger.PlanCode(planCode),
			logger.String("event_type", string(event.EventType())),
			logger.Err(err),
		)
		return err
	}

	h.log.Debug("progress cache invalidated",
		logger.PlanCode(planCode),
		logger.String("event_type", string(event.EventType())),
	)
	return nil
}

// Register subscribes the handler to every plan event.
func (h *InvalidateProgressOnPlanChange) Register(bus shared.EventSubscriber) error {
	for _, t := range h.EventTypes() {
		if err := bus.Subscribe(t, h.Handle); err != nil {
			return err
		}
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// INVALIDATE PROGRESS ON CATALOG RELOAD
// Catalog and program imports can change any plan's report, so every
// cached report is dropped.
// ═══════════════════════════════════════════════════════════════════════════

// CacheFlusher removes every cached report.
type CacheFlusher interface {
	InvalidateAll(ctx context.Context) error
}

// InvalidateProgressOnCatalogReload handles catalog events.
type InvalidateProgressOnCatalogReload struct {
	cache  CacheFlusher
	log    *logger.Logger
	config InvalidateProgressConfig
}

// NewInvalidateProgressOnCatalogReload creates the handler.
func NewInvalidateProgressOnCatalogReload(cache CacheFlusher, log *logger.Logger, config InvalidateProgressConfig) *InvalidateProgressOnCatalogReload {
	if config.Timeout <= 0 {
		config = DefaultInvalidateProgressConfig()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &InvalidateProgressOnCatalogReload{
		cache:  cache,
		log:    log.With(logger.Component("catalog_invalidator")),
		config: config,
	}
}

// Handle implements shared.EventHandler.
func (h *InvalidateProgressOnCatalogReload) Handle(event shared.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if err := h.cache.InvalidateAll(ctx); err != nil {
		h.log.Warn("progress cache flush failed", logger.Err(err))
		return err
	}
	h.log.Info("progress cache flushed", logger.String("event_type", string(event.EventType())))
	return nil
}

// Register subscribes the handler to catalog reloads.
func (h *InvalidateProgressOnCatalogReload) Register(bus shared.EventSubscriber) error {
	return bus.Subscribe(shared.EventCatalogReloaded, h.Handle)
}
