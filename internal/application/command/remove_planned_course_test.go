package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transferhub/transfer-hub/internal/domain/shared"
)

func TestRemovePlannedCourse(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	added, err := e.handler(gate(false)).Handle(ctx, AddPlannedCourseCommand{PlanCode: "PLAN01", CourseCode: "MATH 2250"})
	require.NoError(t, err)

	h := NewRemovePlannedCourseHandler(e.plans, e.publisher, nil)
	require.NoError(t, h.Handle(ctx, RemovePlannedCourseCommand{PlanCode: "PLAN01", PlannedCourseID: added.PlannedCourse.ID}))

	p, err := e.plans.GetByCode(ctx, "PLAN01")
	require.NoError(t, err)
	assert.Empty(t, p.Courses)
	assert.Equal(t, []shared.EventType{shared.EventPlannedCourseAdded, shared.EventPlannedCourseRemoved}, e.publisher.types())

	err = h.Handle(ctx, RemovePlannedCourseCommand{PlanCode: "PLAN01", PlannedCourseID: added.PlannedCourse.ID})
	assert.True(t, errors.Is(err, shared.ErrPlannedCourseNotFound))
}

func TestRemovePlannedCourse_Errors(t *testing.T) {
	e := newEnv(t)
	h := NewRemovePlannedCourseHandler(e.plans, nil, nil)
	ctx := context.Background()

	assert.True(t, shared.IsValidation(h.Handle(ctx, RemovePlannedCourseCommand{PlanCode: "PLAN01"})))
	assert.True(t, shared.IsNotFound(h.Handle(ctx, RemovePlannedCourseCommand{PlanCode: "NOPE", PlannedCourseID: "x"})))
}
