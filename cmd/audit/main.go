// Package main is an offline degree audit: it loads a YAML catalog and a
// YAML plan into memory and prints the plan's progress, unmet requirements,
// suggestions or a prerequisite check.
//
//	audit -catalog catalog.yaml -plan plan.yaml -report progress -view completed
//	audit -catalog catalog.yaml -plan plan.yaml -report csv -out progress.csv
//	audit -catalog catalog.yaml -plan plan.yaml -report prereq -course "BIOS 4000"
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/transferhub/transfer-hub/internal/application/query"
	"github.com/transferhub/transfer-hub/internal/domain/audit"
	"github.com/transferhub/transfer-hub/internal/infrastructure/catalogfile"
	"github.com/transferhub/transfer-hub/internal/infrastructure/persistence/memory"
	"github.com/transferhub/transfer-hub/pkg/logger"
)

// Report kinds accepted by -report.
const (
	reportProgress = "progress"
	reportCSV      = "csv"
	reportUnmet    = "unmet"
	reportSuggest  = "suggest"
	reportPrereq   = "prereq"
)

type options struct {
	catalogPath string
	planPath    string
	report      string
	view        string
	course      string
	institution string
	limit       int
	lenient     bool
	unknown     string
}

func main() {
	var (
		catalogPath = flag.String("catalog", "catalog.yaml", "catalog file (courses, equivalencies, programs)")
		planPath    = flag.String("plan", "", "plan file")
		report      = flag.String("report", reportProgress, "progress, csv, unmet, suggest or prereq")
		view        = flag.String("view", "", "all, completed or in_progress (default all)")
		course      = flag.String("course", "", "course code for -report prereq")
		institution = flag.String("institution", "", "institution of -course")
		limit       = flag.Int("limit", 0, "suggestions per group (0 = default)")
		lenient     = flag.Bool("lenient", false, "count grouped requirements by credits only")
		unknown     = flag.String("unknown-constraints", string(audit.FailOpen), "open or closed")
		outPath     = flag.String("out", "", "output file (default stdout)")
		logLevel    = flag.String("log-level", "warn", "debug, info, warn or error")
	)
	flag.Parse()

	log := logger.New(logger.Options{
		Output: os.Stderr,
		Level:  logger.ParseLevel(*logLevel),
		Format: "console",
	})
	defer log.Sync()

	out := io.Writer(os.Stdout)
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatal("create output", logger.Err(err))
		}
		defer f.Close()
		out = f
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	err := run(ctx, options{
		catalogPath: *catalogPath,
		planPath:    *planPath,
		report:      *report,
		view:        *view,
		course:      *course,
		institution: *institution,
		limit:       *limit,
		lenient:     *lenient,
		unknown:     *unknown,
	}, out, log)
	if err != nil {
		log.Error("audit failed", logger.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer, log *logger.Logger) error {
	if opts.planPath == "" && opts.report != reportPrereq {
		return errors.New("-plan is required")
	}

	courses := memory.NewCourseRepository()
	programs := memory.NewProgramRepository()
	plans := memory.NewPlanRepository(courses)
	importer := catalogfile.NewImporter(courses, programs, plans, log)

	var planPaths []string
	if opts.planPath != "" {
		planPaths = []string{opts.planPath}
	}
	_, imported, err := importer.ImportFiles(ctx, opts.catalogPath, planPaths)
	if err != nil {
		return err
	}
	var planCode string
	if len(imported) > 0 {
		planCode = imported[0].Code
	}

	base := audit.DefaultOptions()
	base.GroupedStrict = !opts.lenient
	base.UnknownConstraints = audit.UnknownConstraintPolicy(opts.unknown)
	if opts.limit > 0 {
		base.SuggestionLimit = opts.limit
	}
	resolver := query.NewOptionsResolver(base, nil)
	loader := query.NewSnapshotLoader(plans, programs, courses, log, query.DefaultSnapshotLoaderConfig())
	cfg := query.DefaultGetPlanProgressHandlerConfig()
	progress := query.NewGetPlanProgressHandler(loader, resolver, nil, log, cfg)

	switch opts.report {
	case reportProgress:
		result, err := progress.Handle(ctx, query.GetPlanProgressQuery{PlanCode: planCode, View: opts.view})
		if err != nil {
			return err
		}
		return writeJSON(out, result.Report)

	case reportCSV:
		result, err := progress.Handle(ctx, query.GetPlanProgressQuery{PlanCode: planCode, View: opts.view})
		if err != nil {
			return err
		}
		return query.WriteProgressCSV(out, result.Report)

	case reportUnmet:
		result, err := query.NewGetUnmetRequirementsHandler(progress).Handle(ctx, query.GetUnmetRequirementsQuery{
			PlanCode: planCode,
			View:     opts.view,
		})
		if err != nil {
			return err
		}
		return writeJSON(out, result)

	case reportSuggest:
		result, err := query.NewSuggestCoursesHandler(loader, resolver, log, cfg).Handle(ctx, query.SuggestCoursesQuery{
			PlanCode: planCode,
			View:     opts.view,
			Limit:    opts.limit,
		})
		if err != nil {
			return err
		}
		return writeJSON(out, result)

	case reportPrereq:
		result, err := query.NewPrerequisiteHandler(courses, plans, loader).Validate(ctx, query.ValidatePrerequisitesQuery{
			CourseCode:  opts.course,
			Institution: opts.institution,
			PlanCode:    planCode,
		})
		if err != nil {
			return err
		}
		return writeJSON(out, result)

	default:
		return fmt.Errorf("unknown report %q", opts.report)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
