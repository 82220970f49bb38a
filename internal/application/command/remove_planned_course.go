package command

import (
	"context"
	"errors"
	"strings"

	"github.com/transferhub/transfer-hub/internal/domain/plan"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
	"github.com/transferhub/transfer-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REMOVE PLANNED COURSE COMMAND
// Drops one planned course from a plan. Cached reports of the plan are
// invalidated through the published event.
// ══════════════════════════════════════════════════════════════════════════════

// RemovePlannedCourseCommand identifies the planned course to drop.
type RemovePlannedCourseCommand struct {
	PlanCode        string
	PlannedCourseID string
	CorrelationID   string
}

// Validate validates the command.
func (c RemovePlannedCourseCommand) Validate() error {
	if strings.TrimSpace(c.PlanCode) == "" {
		return errors.New("plan_code is required")
	}
	if strings.TrimSpace(c.PlannedCourseID) == "" {
		return errors.New("planned_course_id is required")
	}
	return nil
}

// RemovePlannedCourseHandler handles the command.
type RemovePlannedCourseHandler struct {
	plans          plan.Repository
	eventPublisher shared.EventPublisher
	log            *logger.Logger
}

// NewRemovePlannedCourseHandler creates a new handler. eventPublisher may be nil.
func NewRemovePlannedCourseHandler(plans plan.Repository, eventPublisher shared.EventPublisher, log *logger.Logger) *RemovePlannedCourseHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &RemovePlannedCourseHandler{
		plans:          plans,
		eventPublisher: eventPublisher,
		log:            log.With(logger.Component("remove_planned_course")),
	}
}

// Handle executes the command.
func (h *RemovePlannedCourseHandler) Handle(ctx context.Context, cmd RemovePlannedCourseCommand) error {
	if err := cmd.Validate(); err != nil {
		return shared.WrapError("command", "RemovePlannedCourse", shared.ErrValidation, err.Error(), err)
	}

	p, err := h.plans.GetByCode(ctx, cmd.PlanCode)
	if err != nil {
		return err
	}
	if _, ok := p.FindCourse(cmd.PlannedCourseID); !ok {
		return shared.ErrPlannedCourseNotFound
	}
	if err := h.plans.RemoveCourse(ctx, p.ID, cmd.PlannedCourseID); err != nil {
		return err
	}

	if h.eventPublisher != nil {
		removed := shared.NewPlannedCourseRemovedEvent(p.Code, cmd.PlannedCourseID)
		removed.BaseEvent = removed.WithCorrelationID(cmd.CorrelationID)
		if err := h.eventPublisher.Publish(removed); err != nil {
			h.log.Warn("event publish failed", logger.PlanCode(p.Code), logger.Err(err))
		}
	}

	h.log.Info("course removed from plan",
		logger.PlanCode(p.Code),
		logger.String("planned_course_id", cmd.PlannedCourseID),
	)
	return nil
}
