package catalogfile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/plan"
	"github.com/transferhub/transfer-hub/internal/domain/program"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
	"github.com/transferhub/transfer-hub/internal/infrastructure/persistence/memory"
)

type stores struct {
	courses  *memory.CourseRepository
	programs *memory.ProgramRepository
	plans    *memory.PlanRepository
	importer *Importer
}

func newStores() stores {
	courses := memory.NewCourseRepository()
	programs := memory.NewProgramRepository()
	plans := memory.NewPlanRepository(courses)
	return stores{
		courses:  courses,
		programs: programs,
		plans:    plans,
		importer: NewImporter(courses, programs, plans, nil),
	}
}

func TestLoadCatalog(t *testing.T) {
	f, err := LoadCatalog(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)

	assert.Len(t, f.Courses, 5)
	assert.Len(t, f.Equivalencies, 1)
	require.Len(t, f.Programs, 1)

	core := f.Programs[0].Requirements[0]
	require.Len(t, core.Groups, 2)
	require.NotNil(t, core.Groups[0].CoursesRequired)
	assert.Equal(t, 1, *core.Groups[0].CoursesRequired)
	assert.Nil(t, core.Groups[0].CreditsRequired)
	assert.True(t, core.Groups[1].Options[1].Preferred)
	assert.Equal(t, "lab", core.Constraints[0].Params["tag"])
}

func TestLoadCatalog_Missing(t *testing.T) {
	_, err := LoadCatalog(filepath.Join("testdata", "nope.yaml"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestParsePlan_RequiresCode(t *testing.T) {
	_, err := ParsePlan([]byte("courses: []\n"))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("courses: [\n"))
	assert.Error(t, err)
}

func TestImportCatalog(t *testing.T) {
	ctx := context.Background()
	s := newStores()

	f, err := LoadCatalog(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)

	stats, err := s.importer.ImportCatalog(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, &ImportStats{Courses: 5, Equivalencies: 1, Programs: 1}, stats)

	lab, err := s.courses.GetByCode(ctx, "BIOS 3010", "uga")
	require.NoError(t, err)
	assert.True(t, lab.HasLab)
	assert.Equal(t, catalog.TypeLectureLab, lab.Type)

	eqs, err := s.courses.EquivalenciesFor(ctx, []catalog.CourseID{"u-math"})
	require.NoError(t, err)
	require.Len(t, eqs, 1)
	assert.Equal(t, catalog.CourseID("k-calc"), eqs[0].CourseID)

	p, err := s.programs.GetByID(ctx, "bio-bs")
	require.NoError(t, err)
	core := p.Requirements[0]
	assert.Equal(t, program.RequirementGrouped, core.Type)
	assert.Equal(t, "MATH 2250", core.Groups[0].Options[0].CourseCode)
	assert.Equal(t, program.MinTagCourses{Tag: "lab", Courses: 1}, core.Constraints[0].Rule)

	unknown, ok := core.Constraints[1].Rule.(program.UnknownRule)
	require.True(t, ok)
	assert.Equal(t, "min_gpa", unknown.Name)
}

func TestImportCatalog_UnresolvedEquivalency(t *testing.T) {
	s := newStores()
	f := &CatalogFile{
		Courses: []CourseEntry{{ID: "a", Institution: "uga", Code: "MATH 1000", Credits: 3}},
		Equivalencies: []EquivalencyEntry{{
			From: CourseRef{Code: "MATH 1000", Institution: "uga"},
			To:   CourseRef{Code: "MATH 9999"},
		}},
	}

	stats, err := s.importer.ImportCatalog(context.Background(), f)
	assert.True(t, shared.IsNotFound(err))
	assert.Equal(t, 1, stats.Courses)
	assert.Equal(t, 0, stats.Equivalencies)
}

func TestImportCatalog_BadCode(t *testing.T) {
	s := newStores()
	f := &CatalogFile{Courses: []CourseEntry{{Institution: "uga", Code: "???", Credits: 3}}}

	_, err := s.importer.ImportCatalog(context.Background(), f)
	assert.ErrorIs(t, err, shared.ErrInvalidFormat)
}

func TestImportPlan(t *testing.T) {
	ctx := context.Background()
	s := newStores()

	cf, err := LoadCatalog(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)
	_, err = s.importer.ImportCatalog(ctx, cf)
	require.NoError(t, err)

	pf, err := LoadPlan(filepath.Join("testdata", "plan.yaml"))
	require.NoError(t, err)
	_, err = s.importer.ImportPlan(ctx, pf)
	require.NoError(t, err)

	p, err := s.plans.GetByCode(ctx, "PLAN01")
	require.NoError(t, err)
	assert.Equal(t, "bio-bs", p.TargetProgramID)
	require.Len(t, p.Courses, 2)
	assert.Equal(t, plan.StatusCompleted, p.Courses[0].Status)
	assert.Equal(t, "CALC 101", p.Courses[0].Code())
	assert.Equal(t, 2025, p.Courses[0].Year)
	assert.Equal(t, "bio", p.Courses[1].GroupID())
}

func TestImportPlan_Errors(t *testing.T) {
	ctx := context.Background()
	s := newStores()

	_, err := s.importer.ImportPlan(ctx, &PlanFile{Code: "X", Courses: []PlannedEntry{{Code: "MATH 1000"}}})
	assert.True(t, shared.IsNotFound(err))

	_, err = s.importer.ImportPlan(ctx, &PlanFile{Code: "X", Courses: []PlannedEntry{{Code: "MATH 1000", Status: "dropped"}}})
	assert.ErrorIs(t, err, shared.ErrInvalidStatus)

	noPlans := NewImporter(s.courses, s.programs, nil, nil)
	_, err = noPlans.ImportPlan(ctx, &PlanFile{Code: "X"})
	assert.Error(t, err)
}

func TestImportFiles(t *testing.T) {
	ctx := context.Background()
	s := newStores()

	stats, plans, err := s.importer.ImportFiles(ctx,
		filepath.Join("testdata", "catalog.yaml"),
		[]string{filepath.Join("testdata", "plan.yaml")},
	)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Courses)
	require.Len(t, plans, 1)
	assert.Equal(t, "PLAN01", plans[0].Code)

	_, _, err = s.importer.ImportFiles(ctx, "", []string{filepath.Join("testdata", "nope.yaml")})
	assert.ErrorIs(t, err, ErrFileNotFound)
}
