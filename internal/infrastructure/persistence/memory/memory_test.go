package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/plan"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
)

func seedCourses(t *testing.T) *CourseRepository {
	t.Helper()
	ctx := context.Background()
	repo := NewCourseRepository()
	require.NoError(t, repo.SaveCourse(ctx, &catalog.Course{ID: "a", Subject: "MATH", Number: "1113", Credits: 3, Institution: "gsu"}))
	require.NoError(t, repo.SaveCourse(ctx, &catalog.Course{ID: "b", Subject: "MATH", Number: "1113", Credits: 3, Institution: "uga"}))
	require.NoError(t, repo.SaveCourse(ctx, &catalog.Course{ID: "c", Subject: "CALC", Number: "101", Credits: 4, Institution: "kse"}))
	require.NoError(t, repo.SaveEquivalency(ctx, catalog.Equivalency{ID: "e1", CourseID: "a", EquivalentID: "c"}))
	return repo
}

func TestCourseRepository(t *testing.T) {
	ctx := context.Background()
	repo := seedCourses(t)

	c, err := repo.GetByCode(ctx, "math1113", "uga")
	require.NoError(t, err)
	assert.Equal(t, catalog.CourseID("b"), c.ID)

	all, err := repo.FindByCode(ctx, "MATH 1113", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = repo.GetByCode(ctx, "ENGL 1101", "")
	assert.True(t, errors.Is(err, shared.ErrCourseNotFound))

	got, err := repo.GetByIDs(ctx, []catalog.CourseID{"c", "missing", "a"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	edges, err := repo.EquivalenciesFor(ctx, []catalog.CourseID{"c"})
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "e1", edges[0].ID)

	assert.Error(t, repo.SaveEquivalency(ctx, catalog.Equivalency{CourseID: "a", EquivalentID: "zzz"}))
	assert.Error(t, repo.SaveCourse(ctx, &catalog.Course{ID: "bad", Subject: "X", Number: "1"}))
}

func TestPlanRepository(t *testing.T) {
	ctx := context.Background()
	courses := seedCourses(t)
	repo := NewPlanRepository(courses)

	require.NoError(t, repo.SavePlan(ctx, &plan.Plan{ID: "p1", Code: "ABC123", TargetProgramID: "bio"}))
	require.NoError(t, repo.AddCourse(ctx, "p1", &plan.PlannedCourse{ID: "pc1", CourseID: "a", Status: plan.StatusCompleted}))
	require.NoError(t, repo.AddCourse(ctx, "p1", &plan.PlannedCourse{ID: "pc2", CourseID: "gone", Status: plan.StatusPlanned}))
	assert.True(t, errors.Is(repo.AddCourse(ctx, "nope", &plan.PlannedCourse{}), shared.ErrPlanNotFound))

	p, err := repo.GetByCode(ctx, "ABC123")
	require.NoError(t, err)
	require.Len(t, p.Courses, 2)
	assert.Equal(t, "MATH 1113", p.Courses[0].Code())
	assert.Nil(t, p.Courses[1].Course)
	assert.Equal(t, "p1", p.Courses[0].PlanID)

	require.NoError(t, repo.SetRequirementGroup(ctx, "pc1", "g1"))
	p, err = repo.GetByCode(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "g1", p.Courses[0].GroupID())

	// Callers get copies.
	p.Courses[0].AssignGroup("mutated")
	again, _ := repo.GetByCode(ctx, "ABC123")
	assert.Equal(t, "g1", again.Courses[0].GroupID())

	assert.True(t, errors.Is(repo.SetRequirementGroup(ctx, "missing", "g"), shared.ErrPlannedCourseNotFound))

	require.NoError(t, repo.RemoveCourse(ctx, "p1", "pc2"))
	p, err = repo.GetByCode(ctx, "ABC123")
	require.NoError(t, err)
	assert.Len(t, p.Courses, 1)
	assert.True(t, errors.Is(repo.RemoveCourse(ctx, "p1", "pc2"), shared.ErrPlannedCourseNotFound))
	assert.True(t, errors.Is(repo.RemoveCourse(ctx, "nope", "pc1"), shared.ErrPlanNotFound))
	_, err = repo.GetByCode(ctx, "NOPE")
	assert.True(t, shared.IsNotFound(err))
}
