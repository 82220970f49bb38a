package query

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transferhub/transfer-hub/internal/domain/audit"
	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/plan"
	"github.com/transferhub/transfer-hub/internal/domain/program"
	"github.com/transferhub/transfer-hub/internal/infrastructure/persistence/memory"
)

type fixture struct {
	courses  *memory.CourseRepository
	programs *memory.ProgramRepository
	plans    *memory.PlanRepository
	loader   *SnapshotLoader
}

// newFixture seeds a transfer scenario: a KSE calculus course equivalent
// to UGA MATH 2250, and a UGA program with a math group and a biology group.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		courses:  memory.NewCourseRepository(),
		programs: memory.NewProgramRepository(),
	}
	f.plans = memory.NewPlanRepository(f.courses)

	for _, c := range []*catalog.Course{
		{ID: "k-calc", Subject: "CALC", Number: "101", Title: "Calculus I", Credits: 4, Institution: "kse"},
		{ID: "u-math", Subject: "MATH", Number: "2250", Title: "Calculus I for Science", Credits: 4, Institution: "uga"},
		{ID: "u-b3010", Subject: "BIOS", Number: "3010", Title: "Cell Biology", Credits: 4, Institution: "uga", HasLab: true, Type: catalog.TypeLectureLab},
		{ID: "u-b3150", Subject: "BIOS", Number: "3150", Title: "Genetics", Credits: 4, Institution: "uga", HasLab: true, Type: catalog.TypeLectureLab},
		{ID: "u-b4000", Subject: "BIOS", Number: "4000", Title: "Biochemistry", Credits: 3, Institution: "uga", Prerequisites: "MATH 2250 and CHEM 1211"},
	} {
		require.NoError(t, f.courses.SaveCourse(ctx, c))
	}
	require.NoError(t, f.courses.SaveEquivalency(ctx, catalog.Equivalency{ID: "eq-1", CourseID: "k-calc", EquivalentID: "u-math", Type: catalog.EquivalencyDirect}))

	require.NoError(t, f.programs.SaveProgram(ctx, &program.Program{
		ID:          "bio-bs",
		Name:        "Biology BS",
		ProgramType: "major",
		Institution: "uga",
		Requirements: []*program.Requirement{
			{
				ID:              "core",
				Category:        "Major Core",
				CreditsRequired: 8,
				Type:            program.RequirementGrouped,
				PriorityOrder:   1,
				Groups: []*program.RequirementGroup{
					{
						ID:              "math",
						Name:            "Mathematics",
						CoursesRequired: program.IntPtr(1),
						Options:         []program.GroupCourseOption{{CourseCode: "MATH 2250", Institution: "uga"}},
					},
					{
						ID:              "bio",
						Name:            "Biology",
						CreditsRequired: program.IntPtr(4),
						Options: []program.GroupCourseOption{
							{CourseCode: "BIOS 3010", Institution: "uga"},
							{CourseCode: "BIOS 3150", Institution: "uga", IsPreferred: true},
						},
					},
				},
			},
		},
	}))

	require.NoError(t, f.plans.SavePlan(ctx, &plan.Plan{ID: "plan-1", Code: "PLAN01", TargetProgramID: "bio-bs"}))
	require.NoError(t, f.plans.AddCourse(ctx, "plan-1", &plan.PlannedCourse{ID: "pc-1", CourseID: "k-calc", Status: plan.StatusCompleted}))
	require.NoError(t, f.plans.AddCourse(ctx, "plan-1", &plan.PlannedCourse{ID: "pc-2", CourseID: "u-b3010", Status: plan.StatusPlanned}))

	require.NoError(t, f.plans.SavePlan(ctx, &plan.Plan{ID: "plan-2", Code: "NOTARGET"}))

	f.loader = NewSnapshotLoader(f.plans, f.programs, f.courses, nil, DefaultSnapshotLoaderConfig())
	return f
}

func (f *fixture) progressHandler(cache ProgressCache) *GetPlanProgressHandler {
	return NewGetPlanProgressHandler(f.loader, NewOptionsResolver(audit.DefaultOptions(), nil), cache, nil, DefaultGetPlanProgressHandlerConfig())
}

// mapCache is a ProgressCache backed by a map.
type mapCache struct {
	mu      sync.Mutex
	reports map[string]*audit.Report
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{reports: make(map[string]*audit.Report)}
}

func (c *mapCache) GetProgress(_ context.Context, planCode string, view audit.View) (*audit.Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reports[planCode+":"+string(view)], nil
}

func (c *mapCache) SetProgress(_ context.Context, planCode string, view audit.View, r *audit.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.reports[planCode+":"+string(view)] = r
	return nil
}

func (c *mapCache) InvalidatePlan(_ context.Context, planCode string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range []audit.View{audit.ViewAll, audit.ViewCompleted, audit.ViewInProgress} {
		delete(c.reports, planCode+":"+string(v))
	}
	return nil
}

type staticGate bool

func (g staticGate) GroupedStrict(string) bool { return bool(g) }

type switchGate struct{ strict bool }

func (g *switchGate) GroupedStrict(string) bool { return g.strict }

// lenientProgram needs 4 credits across a math group and a chemistry group
// whose only option is not in the catalog.
func lenientProgram() *program.Program {
	return &program.Program{
		ID:          "bio-bs",
		Name:        "Biology BS",
		ProgramType: "major",
		Institution: "uga",
		Requirements: []*program.Requirement{
			{
				ID:              "core",
				Category:        "Major Core",
				CreditsRequired: 4,
				Type:            program.RequirementGrouped,
				PriorityOrder:   1,
				Groups: []*program.RequirementGroup{
					{
						ID:              "math",
						Name:            "Mathematics",
						CoursesRequired: program.IntPtr(1),
						Options:         []program.GroupCourseOption{{CourseCode: "MATH 2250", Institution: "uga"}},
					},
					{
						ID:              "chem",
						Name:            "Chemistry",
						CreditsRequired: program.IntPtr(4),
						Options:         []program.GroupCourseOption{{CourseCode: "CHEM 1211", Institution: "uga"}},
					},
				},
			},
		},
	}
}
