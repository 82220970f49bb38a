package audit

import (
	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/plan"
	"github.com/transferhub/transfer-hub/internal/domain/program"
)

func newCourse(id, subject, number string, credits int) *catalog.Course {
	return &catalog.Course{
		ID:          catalog.CourseID(id),
		Subject:     subject,
		Number:      number,
		Credits:     credits,
		Institution: "uga",
		Type:        catalog.TypeLecture,
	}
}

func labCourse(id, subject, number string, credits int) *catalog.Course {
	c := newCourse(id, subject, number, credits)
	c.HasLab = true
	c.Type = catalog.TypeLectureLab
	return c
}

func typedCourse(id, subject, number string, credits int, t catalog.CourseType) *catalog.Course {
	c := newCourse(id, subject, number, credits)
	c.Type = t
	return c
}

func completed(id string, c *catalog.Course) *plan.PlannedCourse {
	return &plan.PlannedCourse{ID: id, CourseID: c.ID, Course: c, Status: plan.StatusCompleted}
}

func withStatus(pc *plan.PlannedCourse, s plan.Status) *plan.PlannedCourse {
	pc.Status = s
	return pc
}

func options(codes ...string) []program.GroupCourseOption {
	out := make([]program.GroupCourseOption, 0, len(codes))
	for _, code := range codes {
		out = append(out, program.GroupCourseOption{CourseCode: code})
	}
	return out
}

// biologyProgram requires 17 BIOS credits with level, lab and research rules.
func biologyProgram() *program.Program {
	bios := program.Scope{Subject: "BIOS"}
	return &program.Program{
		ID:          "bio-bs",
		Name:        "Biology BS",
		ProgramType: "major",
		Institution: "uga",
		Requirements: []*program.Requirement{
			{
				ID:              "bios-upper",
				Category:        "Biology Major",
				CreditsRequired: 17,
				Type:            program.RequirementGrouped,
				PriorityOrder:   1,
				Groups: []*program.RequirementGroup{
					{
						ID:              "bios-pool",
						Name:            "Upper Division Biology",
						CreditsRequired: program.IntPtr(17),
						Options:         options("BIOS 3010", "BIOS 3150", "BIOS 3500", "BIOS 3200", "BIOS 4990", "BIOS 4800"),
					},
				},
				Constraints: []*program.Constraint{
					{ID: "c-level", Rule: program.MinLevelCredits{LevelMin: 3000, Credits: 10}, Scope: bios},
					{ID: "c-lab", Rule: program.MinTagCourses{Tag: "lab", Courses: 2}, Scope: bios},
					{ID: "c-research", Rule: program.MaxTagCredits{Tag: "research", Credits: 7}, Scope: bios},
				},
			},
		},
	}
}

var (
	bios3010 = labCourse("b3010", "BIOS", "3010", 4)
	bios3150 = labCourse("b3150", "BIOS", "3150", 4)
	bios3500 = labCourse("b3500", "BIOS", "3500", 4)
	bios3200 = newCourse("b3200", "BIOS", "3200", 3)
	bios4990 = typedCourse("b4990", "BIOS", "4990", 3, catalog.TypeResearch)
	bios4800 = typedCourse("b4800", "BIOS", "4800", 1, catalog.TypeSeminar)
)
