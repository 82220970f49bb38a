// Package shared contains common domain types, errors and events
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Plans are the only aggregate that changes at runtime,
// reference data (courses, programs) is written by import tooling.
const (
	EventPlannedCourseAdded   EventType = "plan.course_added"
	EventPlannedCourseRemoved EventType = "plan.course_removed"
	EventGroupAutoAssigned    EventType = "plan.group_auto_assigned"
	EventCatalogReloaded      EventType = "catalog.reloaded"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Plan Events
// ═══════════════════════════════════════════════════════════════════════════

// PlannedCourseAddedEvent is emitted after a course is added to a plan.
// The aggregate ID is the plan code, which is also the cache key space.
type PlannedCourseAddedEvent struct {
	BaseEvent
	PlanCode        string `json:"plan_code"`
	PlannedCourseID string `json:"planned_course_id"`
	CourseCode      string `json:"course_code"`
	Status          string `json:"status"`
}

// Payload implements Event interface.
func (e PlannedCourseAddedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"plan_code":         e.PlanCode,
		"planned_course_id": e.PlannedCourseID,
		"course_code":       e.CourseCode,
		"status":            e.Status,
	}
}

// NewPlannedCourseAddedEvent creates a new PlannedCourseAddedEvent.
func NewPlannedCourseAddedEvent(planCode, plannedCourseID, courseCode, status string) PlannedCourseAddedEvent {
	return PlannedCourseAddedEvent{
		BaseEvent:       NewBaseEvent(EventPlannedCourseAdded, planCode),
		PlanCode:        planCode,
		PlannedCourseID: plannedCourseID,
		CourseCode:      courseCode,
		Status:          status,
	}
}

// GroupAutoAssignedEvent is emitted when a planned course receives a
// requirement group without the student choosing one.
type GroupAutoAssignedEvent struct {
	BaseEvent
	PlanCode        string `json:"plan_code"`
	PlannedCourseID string `json:"planned_course_id"`
	GroupID         string `json:"group_id"`
	RequirementID   string `json:"requirement_id"`
}

// Payload implements Event interface.
func (e GroupAutoAssignedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"plan_code":         e.PlanCode,
		"planned_course_id": e.PlannedCourseID,
		"group_id":          e.GroupID,
		"requirement_id":    e.RequirementID,
	}
}

// NewGroupAutoAssignedEvent creates a new GroupAutoAssignedEvent.
func NewGroupAutoAssignedEvent(planCode, plannedCourseID, groupID, requirementID string) GroupAutoAssignedEvent {
	return GroupAutoAssignedEvent{
		BaseEvent:       NewBaseEvent(EventGroupAutoAssigned, planCode),
		PlanCode:        planCode,
		PlannedCourseID: plannedCourseID,
		GroupID:         groupID,
		RequirementID:   requirementID,
	}
}

// PlannedCourseRemovedEvent is emitted after a course leaves a plan.
type PlannedCourseRemovedEvent struct {
	BaseEvent
	PlanCode        string `json:"plan_code"`
	PlannedCourseID string `json:"planned_course_id"`
}

// Payload implements Event interface.
func (e PlannedCourseRemovedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"plan_code":         e.PlanCode,
		"planned_course_id": e.PlannedCourseID,
	}
}

// NewPlannedCourseRemovedEvent creates a new PlannedCourseRemovedEvent.
func NewPlannedCourseRemovedEvent(planCode, plannedCourseID string) PlannedCourseRemovedEvent {
	return PlannedCourseRemovedEvent{
		BaseEvent:       NewBaseEvent(EventPlannedCourseRemoved, planCode),
		PlanCode:        planCode,
		PlannedCourseID: plannedCourseID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Catalog Events
// ═══════════════════════════════════════════════════════════════════════════

// CatalogReloadedEvent is emitted after catalog or program data is imported.
// Every cached report may be stale afterwards.
type CatalogReloadedEvent struct {
	BaseEvent
	Courses       int `json:"courses"`
	Equivalencies int `json:"equivalencies"`
	Programs      int `json:"programs"`
}

// Payload implements Event interface.
func (e CatalogReloadedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"courses":       e.Courses,
		"equivalencies": e.Equivalencies,
		"programs":      e.Programs,
	}
}

// NewCatalogReloadedEvent creates a new CatalogReloadedEvent.
func NewCatalogReloadedEvent(courses, equivalencies, programs int) CatalogReloadedEvent {
	return CatalogReloadedEvent{
		BaseEvent:     NewBaseEvent(EventCatalogReloaded, "catalog"),
		Courses:       courses,
		Equivalencies: equivalencies,
		Programs:      programs,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Bus contracts
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
