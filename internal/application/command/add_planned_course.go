// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/transferhub/transfer-hub/internal/domain/audit"
	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/plan"
	"github.com/transferhub/transfer-hub/internal/domain/program"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
	"github.com/transferhub/transfer-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD PLANNED COURSE COMMAND
// Appends a catalog course to a student's plan. When the student names no
// requirement group and auto-assignment is enabled, the best-fit group of
// the target program is written with the course.
// ══════════════════════════════════════════════════════════════════════════════

// AddPlannedCourseCommand contains the data for adding a course.
type AddPlannedCourseCommand struct {
	PlanCode    string
	CourseCode  string
	Institution string

	// Status defaults to planned.
	Status string

	CreditsOverride     *int
	RequirementGroupID  string
	RequirementCategory string
	Grade               string
	Semester            string
	Year                int

	// Copied onto published events.
	CorrelationID string
}

// Validate validates the command.
func (c AddPlannedCourseCommand) Validate() error {
	if strings.TrimSpace(c.PlanCode) == "" {
		return errors.New("plan_code is required")
	}
	if strings.TrimSpace(c.CourseCode) == "" {
		return errors.New("course_code is required")
	}
	if _, err := plan.ParseStatus(c.Status); err != nil {
		return err
	}
	if c.CreditsOverride != nil && *c.CreditsOverride < 0 {
		return errors.New("credits_override cannot be negative")
	}
	return nil
}

// AddPlannedCourseResult contains the result of the command.
type AddPlannedCourseResult struct {
	PlannedCourse *plan.PlannedCourse `json:"planned_course"`

	// AutoAssigned is set when the group was chosen by the engine.
	AutoAssigned bool   `json:"auto_assigned"`
	GroupID      string `json:"group_id,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// AssignmentGate reports whether auto-assignment is on for a plan.
type AssignmentGate interface {
	AutoAssignGroups(planCode string) bool
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// AddPlannedCourseHandler handles the add planned course command.
type AddPlannedCourseHandler struct {
	plans          plan.Repository
	courses        catalog.Repository
	programs       program.Repository
	gate           AssignmentGate
	eventPublisher shared.EventPublisher
	log            *logger.Logger
}

// NewAddPlannedCourseHandler creates a new handler. gate and eventPublisher
// may be nil.
func NewAddPlannedCourseHandler(
	plans plan.Repository,
	courses catalog.Repository,
	programs program.Repository,
	gate AssignmentGate,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *AddPlannedCourseHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AddPlannedCourseHandler{
		plans:          plans,
		courses:        courses,
		programs:       programs,
		gate:           gate,
		eventPublisher: eventPublisher,
		log:            log.With(logger.Component("add_planned_course")),
	}
}

// Handle executes the command.
func (h *AddPlannedCourseHandler) Handle(ctx context.Context, cmd AddPlannedCourseCommand) (*AddPlannedCourseResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("command", "AddPlannedCourse", shared.ErrValidation, err.Error(), err)
	}
	status, _ := plan.ParseStatus(cmd.Status)

	// ─────────────────────────────────────────────────────────────────────────
	// 1. Load plan and course
	// ─────────────────────────────────────────────────────────────────────────

	p, err := h.plans.GetByCode(ctx, cmd.PlanCode)
	if err != nil {
		return nil, err
	}
	course, err := h.courses.GetByCode(ctx, cmd.CourseCode, catalog.InstitutionID(cmd.Institution))
	if err != nil {
		return nil, err
	}

	var prog *program.Program
	if p.HasTarget() {
		prog, err = h.programs.GetByID(ctx, p.TargetProgramID)
		if err != nil {
			return nil, err
		}
	}

	if cmd.RequirementGroupID != "" {
		if prog == nil {
			return nil, shared.ErrNoTargetProgram
		}
		if _, _, ok := prog.FindGroup(cmd.RequirementGroupID); !ok {
			return nil, shared.ErrGroupNotFound
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Persist
	// ─────────────────────────────────────────────────────────────────────────

	pc := &plan.PlannedCourse{
		ID:                  uuid.New().String(),
		PlanID:              p.ID,
		CourseID:            course.ID,
		Status:              status,
		CreditsOverride:     cmd.CreditsOverride,
		RequirementCategory: cmd.RequirementCategory,
		Grade:               cmd.Grade,
		Semester:            cmd.Semester,
		Year:                cmd.Year,
	}
	if cmd.RequirementGroupID != "" {
		pc.AssignGroup(cmd.RequirementGroupID)
	}
	if err := h.plans.AddCourse(ctx, p.ID, pc); err != nil {
		h.log.Error("add course failed", logger.PlanCode(p.Code), logger.CourseCode(course.Code()), logger.Err(err))
		return nil, err
	}
	pc.Course = course

	result := &AddPlannedCourseResult{PlannedCourse: pc, GroupID: pc.GroupID()}
	added := shared.NewPlannedCourseAddedEvent(p.Code, pc.ID, course.Code(), string(status))
	added.BaseEvent = added.WithCorrelationID(cmd.CorrelationID)
	events := []shared.Event{added}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. Auto-assign a requirement group
	// ─────────────────────────────────────────────────────────────────────────

	if cmd.RequirementGroupID == "" && prog != nil && h.autoAssign(p.Code) {
		if a, ok := audit.AssignGroup(prog, course); ok {
			if err := h.plans.SetRequirementGroup(ctx, pc.ID, a.GroupID); err != nil {
				// The course is already stored; an unassigned course still counts.
				h.log.Warn("group auto-assignment failed",
					logger.PlanCode(p.Code),
					logger.String("group_id", a.GroupID),
					logger.Err(err),
				)
			} else {
				pc.AssignGroup(a.GroupID)
				result.AutoAssigned = true
				result.GroupID = a.GroupID
				assigned := shared.NewGroupAutoAssignedEvent(p.Code, pc.ID, a.GroupID, a.RequirementID)
				assigned.BaseEvent = assigned.WithCorrelationID(cmd.CorrelationID)
				events = append(events, assigned)
			}
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. Publish domain events
	// ─────────────────────────────────────────────────────────────────────────

	h.publish(events)

	h.log.Info("course added to plan",
		logger.PlanCode(p.Code),
		logger.CourseCode(course.Code()),
		logger.String("status", string(status)),
		logger.String("group_id", result.GroupID),
		logger.Bool("auto_assigned", result.AutoAssigned),
	)
	return result, nil
}

func (h *AddPlannedCourseHandler) autoAssign(planCode string) bool {
	if h.gate == nil {
		return true
	}
	return h.gate.AutoAssignGroups(planCode)
}

func (h *AddPlannedCourseHandler) publish(events []shared.Event) {
	if h.eventPublisher == nil {
		return
	}
	for _, event := range events {
		if err := h.eventPublisher.Publish(event); err != nil {
			h.log.Warn("event publish failed",
				logger.String("event_type", string(event.EventType())),
				logger.Err(err),
			)
		}
	}
}
