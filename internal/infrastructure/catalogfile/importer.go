package catalogfile

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/plan"
	"github.com/transferhub/transfer-hub/internal/domain/program"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
	"github.com/transferhub/transfer-hub/pkg/logger"
)

// CourseStore reads and writes catalog data.
type CourseStore interface {
	catalog.Repository
	catalog.Writer
}

// ImportStats counts what an import wrote.
type ImportStats struct {
	Courses       int `json:"courses"`
	Equivalencies int `json:"equivalencies"`
	Programs      int `json:"programs"`
}

// Importer writes parsed files through the repository interfaces, so the
// same documents can seed the memory store or PostgreSQL.
type Importer struct {
	courses  CourseStore
	programs program.Writer
	plans    plan.Writer
	log      *logger.Logger
}

// NewImporter creates a new Importer. plans may be nil when only catalogs
// are imported.
func NewImporter(courses CourseStore, programs program.Writer, plans plan.Writer, log *logger.Logger) *Importer {
	if log == nil {
		log = logger.Nop()
	}
	return &Importer{
		courses:  courses,
		programs: programs,
		plans:    plans,
		log:      log.With(logger.Component("catalogfile")),
	}
}

// ImportCatalog saves courses first, then equivalencies resolved by code,
// then programs.
func (i *Importer) ImportCatalog(ctx context.Context, f *CatalogFile) (*ImportStats, error) {
	stats := &ImportStats{}
	byCode := make(map[string]catalog.CourseID, len(f.Courses))

	for n, entry := range f.Courses {
		c, err := entry.course()
		if err != nil {
			return stats, fmt.Errorf("course %d (%s): %w", n, entry.Code, err)
		}
		if err := i.courses.SaveCourse(ctx, c); err != nil {
			return stats, fmt.Errorf("save course %s: %w", c.Code(), err)
		}
		byCode[refKey(c.Code(), string(c.Institution))] = c.ID
		stats.Courses++
	}

	for n, entry := range f.Equivalencies {
		from, err := i.resolve(ctx, entry.From, byCode)
		if err != nil {
			return stats, fmt.Errorf("equivalency %d: %w", n, err)
		}
		to, err := i.resolve(ctx, entry.To, byCode)
		if err != nil {
			return stats, fmt.Errorf("equivalency %d: %w", n, err)
		}
		id := entry.ID
		if id == "" {
			id = uuid.New().String()
		}
		e := catalog.Equivalency{
			ID:           id,
			CourseID:     from,
			EquivalentID: to,
			Type:         catalog.ParseEquivalencyType(entry.Type),
			Notes:        entry.Notes,
		}
		if err := i.courses.SaveEquivalency(ctx, e); err != nil {
			return stats, fmt.Errorf("save equivalency %s: %w", id, err)
		}
		stats.Equivalencies++
	}

	for _, entry := range f.Programs {
		p := entry.program()
		if err := i.programs.SaveProgram(ctx, p); err != nil {
			return stats, fmt.Errorf("save program %s: %w", p.ID, err)
		}
		for _, req := range p.Requirements {
			for _, c := range req.Constraints {
				if u, ok := c.Rule.(program.UnknownRule); ok {
					i.log.Warn("constraint will not be evaluated",
						logger.ProgramID(p.ID),
						logger.RequirementID(req.ID),
						logger.String("constraint_type", u.Name),
						logger.String("problem", u.Problem),
					)
				}
			}
		}
		stats.Programs++
	}

	i.log.Info("catalog imported",
		logger.Int("courses", stats.Courses),
		logger.Int("equivalencies", stats.Equivalencies),
		logger.Int("programs", stats.Programs),
	)
	return stats, nil
}

// ImportPlan resolves each planned course by code and saves the plan.
func (i *Importer) ImportPlan(ctx context.Context, f *PlanFile) (*plan.Plan, error) {
	if i.plans == nil {
		return nil, fmt.Errorf("import plan %s: no plan store configured", f.Code)
	}

	id := f.ID
	if id == "" {
		id = uuid.New().String()
	}
	p := &plan.Plan{
		ID:               id,
		Code:             f.Code,
		StudentName:      f.StudentName,
		CurrentProgramID: f.CurrentProgramID,
		TargetProgramID:  f.TargetProgramID,
		Courses:          make([]*plan.PlannedCourse, 0, len(f.Courses)),
	}

	for n, entry := range f.Courses {
		status, err := plan.ParseStatus(entry.Status)
		if err != nil {
			return nil, fmt.Errorf("planned course %d (%s): %w", n, entry.Code, err)
		}
		c, err := i.courses.GetByCode(ctx, entry.Code, catalog.InstitutionID(entry.Institution))
		if err != nil {
			return nil, shared.WrapError("plan", "Import", shared.ErrNotFound,
				fmt.Sprintf("planned course %s not in catalog", entry.Code), err)
		}

		pcID := entry.ID
		if pcID == "" {
			pcID = uuid.New().String()
		}
		pc := &plan.PlannedCourse{
			ID:                  pcID,
			PlanID:              id,
			CourseID:            c.ID,
			Course:              c,
			Status:              status,
			CreditsOverride:     entry.CreditsOverride,
			RequirementCategory: entry.Category,
			Grade:               entry.Grade,
			Semester:            entry.Semester,
			Year:                entry.Year,
		}
		if entry.Group != "" {
			pc.AssignGroup(entry.Group)
		}
		p.Courses = append(p.Courses, pc)
	}

	if err := i.plans.SavePlan(ctx, p); err != nil {
		return nil, fmt.Errorf("save plan %s: %w", p.Code, err)
	}
	i.log.Info("plan imported", logger.PlanCode(p.Code), logger.Int("courses", len(p.Courses)))
	return p, nil
}

// ImportFiles loads and imports a catalog file, then each plan file. An
// empty catalogPath skips the catalog.
func (i *Importer) ImportFiles(ctx context.Context, catalogPath string, planPaths []string) (ImportStats, []*plan.Plan, error) {
	var stats ImportStats
	if catalogPath != "" {
		cf, err := LoadCatalog(catalogPath)
		if err != nil {
			return stats, nil, err
		}
		imported, err := i.ImportCatalog(ctx, cf)
		if imported != nil {
			stats = *imported
		}
		if err != nil {
			return stats, nil, err
		}
	}

	plans := make([]*plan.Plan, 0, len(planPaths))
	for _, path := range planPaths {
		pf, err := LoadPlan(path)
		if err != nil {
			return stats, plans, err
		}
		p, err := i.ImportPlan(ctx, pf)
		if err != nil {
			return stats, plans, err
		}
		plans = append(plans, p)
	}
	return stats, plans, nil
}

func (i *Importer) resolve(ctx context.Context, ref CourseRef, local map[string]catalog.CourseID) (catalog.CourseID, error) {
	if id, ok := local[refKey(catalog.NormalizeCode(ref.Code), ref.Institution)]; ok {
		return id, nil
	}
	c, err := i.courses.GetByCode(ctx, ref.Code, catalog.InstitutionID(ref.Institution))
	if err != nil {
		return "", shared.WrapError("catalog", "Import", shared.ErrNotFound,
			fmt.Sprintf("course %s not in catalog", ref.Code), err)
	}
	return c.ID, nil
}

func refKey(code, institution string) string {
	return code + "|" + institution
}

// ─────────────────────────────────────────────────────────────────────────────
// Entry conversion
// ─────────────────────────────────────────────────────────────────────────────

func (e CourseEntry) course() (*catalog.Course, error) {
	subject, number, ok := catalog.ParseCode(e.Code)
	if !ok {
		return nil, shared.NewDomainError("catalog", "Import", shared.ErrInvalidFormat,
			fmt.Sprintf("invalid course code %q", e.Code))
	}
	id := e.ID
	if id == "" {
		id = uuid.New().String()
	}
	c := &catalog.Course{
		ID:            catalog.CourseID(id),
		Subject:       subject,
		Number:        number,
		Title:         e.Title,
		Credits:       e.Credits,
		Institution:   catalog.InstitutionID(e.Institution),
		HasLab:        e.HasLab,
		Type:          catalog.ParseCourseType(e.Type),
		Prerequisites: e.Prerequisites,
	}
	if c.Type == catalog.TypeLectureLab || c.Type == catalog.TypeLabOnly {
		c.HasLab = true
	}
	return c, nil
}

func (e ProgramEntry) program() *program.Program {
	p := &program.Program{
		ID:           e.ID,
		Name:         e.Name,
		ProgramType:  e.ProgramType,
		Institution:  catalog.InstitutionID(e.Institution),
		Requirements: make([]*program.Requirement, 0, len(e.Requirements)),
	}
	for _, re := range e.Requirements {
		req := &program.Requirement{
			ID:              re.ID,
			Category:        re.Category,
			Description:     re.Description,
			CreditsRequired: re.CreditsRequired,
			Type:            program.ParseRequirementType(re.Type),
			PriorityOrder:   re.PriorityOrder,
		}
		for _, ge := range re.Groups {
			g := &program.RequirementGroup{
				ID:                  ge.ID,
				RequirementID:       re.ID,
				Name:                ge.Name,
				CoursesRequired:     ge.CoursesRequired,
				CreditsRequired:     ge.CreditsRequired,
				MinCreditsPerCourse: ge.MinCreditsPerCourse,
				MaxCreditsPerCourse: ge.MaxCreditsPerCourse,
				Options:             make([]program.GroupCourseOption, 0, len(ge.Options)),
			}
			for _, oe := range ge.Options {
				g.Options = append(g.Options, program.GroupCourseOption{
					CourseCode:  catalog.NormalizeCode(oe.Code),
					Institution: catalog.InstitutionID(oe.Institution),
					IsPreferred: oe.Preferred,
				})
			}
			req.Groups = append(req.Groups, g)
		}
		for _, ce := range re.Constraints {
			req.Constraints = append(req.Constraints, &program.Constraint{
				ID:            ce.ID,
				RequirementID: re.ID,
				Description:   ce.Description,
				Rule:          program.RuleOrUnknown(ce.Type, ce.Params),
				Scope: program.Scope{
					Subject:  ce.Scope.Subject,
					LevelMin: ce.Scope.LevelMin,
					LevelMax: ce.Scope.LevelMax,
				},
			})
		}
		p.Requirements = append(p.Requirements, req)
	}
	return p
}
