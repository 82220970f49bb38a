// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/transferhub/transfer-hub/internal/domain/audit"
	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/plan"
	"github.com/transferhub/transfer-hub/internal/domain/program"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
	"github.com/transferhub/transfer-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT LOADER
// Loads everything one evaluation reads: the plan, its target program and
// the catalog courses reachable from both through equivalencies.
// The audit engine itself never touches storage.
// ══════════════════════════════════════════════════════════════════════════════

// ErrEquivalencyChainTooLong is returned when the equivalency closure does
// not converge within SnapshotLoaderConfig.MaxClosureRounds.
var ErrEquivalencyChainTooLong = shared.NewDomainError("catalog", "ExpandEquivalencies", shared.ErrInvalidState,
	"equivalency chain exceeds expansion limit")

// SnapshotLoaderConfig contains configuration for the loader.
type SnapshotLoaderConfig struct {
	// MaxClosureRounds bounds the breadth-first expansion of equivalencies.
	// A chain that needs more rounds fails with ErrEquivalencyChainTooLong.
	MaxClosureRounds int

	// Concurrency limits parallel option code lookups.
	Concurrency int
}

// DefaultSnapshotLoaderConfig returns default configuration.
func DefaultSnapshotLoaderConfig() SnapshotLoaderConfig {
	return SnapshotLoaderConfig{
		MaxClosureRounds: 256,
		Concurrency:      8,
	}
}

// SnapshotLoader reads audit snapshots from the repositories.
type SnapshotLoader struct {
	plans    plan.Repository
	programs program.Repository
	courses  catalog.Repository
	log      *logger.Logger
	config   SnapshotLoaderConfig
}

// NewSnapshotLoader creates a new SnapshotLoader.
func NewSnapshotLoader(
	plans plan.Repository,
	programs program.Repository,
	courses catalog.Repository,
	log *logger.Logger,
	config SnapshotLoaderConfig,
) *SnapshotLoader {
	if config.MaxClosureRounds <= 0 {
		config.MaxClosureRounds = DefaultSnapshotLoaderConfig().MaxClosureRounds
	}
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultSnapshotLoaderConfig().Concurrency
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SnapshotLoader{
		plans:    plans,
		programs: programs,
		courses:  courses,
		log:      log.With(logger.Component("snapshot_loader")),
		config:   config,
	}
}

// Load builds the snapshot for a plan. A plan without a target program
// returns shared.ErrNoTargetProgram.
func (l *SnapshotLoader) Load(ctx context.Context, planCode string) (audit.Snapshot, error) {
	p, err := l.plans.GetByCode(ctx, planCode)
	if err != nil {
		return audit.Snapshot{}, err
	}
	if !p.HasTarget() {
		return audit.Snapshot{Plan: p}, shared.ErrNoTargetProgram
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 1. Program tree and option courses in parallel with the plan closure
	// ─────────────────────────────────────────────────────────────────────────

	var (
		prog        *program.Program
		optionSeeds []catalog.CourseID
		planClosure closure
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prog, err = l.programs.GetByID(gctx, p.TargetProgramID)
		if err != nil {
			return err
		}
		optionSeeds, err = l.resolveOptions(gctx, prog)
		return err
	})
	g.Go(func() error {
		var err error
		planClosure, err = l.expand(gctx, p.CourseIDs())
		return err
	})
	if err := g.Wait(); err != nil {
		return audit.Snapshot{}, err
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Option closure and course rows
	// ─────────────────────────────────────────────────────────────────────────

	optionClosure, err := l.expand(ctx, optionSeeds)
	if err != nil {
		return audit.Snapshot{}, err
	}
	planClosure.merge(optionClosure)

	ix, err := l.index(ctx, planClosure)
	if err != nil {
		return audit.Snapshot{}, err
	}

	l.log.Debug("snapshot loaded",
		logger.PlanCode(p.Code),
		logger.ProgramID(prog.ID),
		logger.Int("courses", ix.Len()),
		logger.Int("equivalencies", len(planClosure.edges)),
	)

	return audit.Snapshot{Plan: p, Program: prog, Index: ix}, nil
}

// LoadCourses builds an index around the given course codes, e.g. a target
// course, its prerequisites and a student's completed courses.
func (l *SnapshotLoader) LoadCourses(ctx context.Context, codes []string, institution catalog.InstitutionID) (*catalog.Index, error) {
	seeds, err := l.resolveCodes(ctx, codes, institution)
	if err != nil {
		return nil, err
	}
	c, err := l.expand(ctx, seeds)
	if err != nil {
		return nil, err
	}
	return l.index(ctx, c)
}

func (l *SnapshotLoader) resolveOptions(ctx context.Context, prog *program.Program) ([]catalog.CourseID, error) {
	type key struct {
		code        string
		institution catalog.InstitutionID
	}
	seen := make(map[key]struct{})
	var codes []key
	for _, req := range prog.Requirements {
		for _, grp := range req.Groups {
			for _, opt := range grp.Options {
				k := key{catalog.NormalizeCode(opt.CourseCode), opt.Institution}
				if _, ok := seen[k]; ok {
					continue
				}
				seen[k] = struct{}{}
				codes = append(codes, k)
			}
		}
	}

	var (
		mu  sync.Mutex
		out []catalog.CourseID
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.config.Concurrency)
	for _, k := range codes {
		g.Go(func() error {
			found, err := l.courses.FindByCode(gctx, k.code, k.institution)
			if err != nil {
				return err
			}
			mu.Lock()
			for _, c := range found {
				out = append(out, c.ID)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *SnapshotLoader) resolveCodes(ctx context.Context, codes []string, institution catalog.InstitutionID) ([]catalog.CourseID, error) {
	var out []catalog.CourseID
	for _, code := range codes {
		found, err := l.courses.FindByCode(ctx, code, institution)
		if err != nil {
			return nil, err
		}
		for _, c := range found {
			out = append(out, c.ID)
		}
		if institution == "" || len(found) > 0 {
			continue
		}
		// Fall back to other schools so transfer credit still resolves.
		found, err = l.courses.FindByCode(ctx, code, "")
		if err != nil {
			return nil, err
		}
		for _, c := range found {
			out = append(out, c.ID)
		}
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Closure expansion
// ─────────────────────────────────────────────────────────────────────────────

type closure struct {
	ids   catalog.IDSet
	edges []catalog.Equivalency
}

func (c *closure) merge(other closure) {
	if c.ids == nil {
		c.ids = make(catalog.IDSet)
	}
	for id := range other.ids {
		c.ids[id] = struct{}{}
	}
	c.edges = append(c.edges, other.edges...)
}

// expand walks equivalency rows breadth-first from seeds, one repository
// call per round.
func (l *SnapshotLoader) expand(ctx context.Context, seeds []catalog.CourseID) (closure, error) {
	out := closure{ids: make(catalog.IDSet)}
	seenEdge := make(map[string]struct{})

	frontier := make([]catalog.CourseID, 0, len(seeds))
	for _, id := range seeds {
		if !out.ids.Has(id) {
			out.ids[id] = struct{}{}
			frontier = append(frontier, id)
		}
	}

	for round := 0; len(frontier) > 0; round++ {
		if round >= l.config.MaxClosureRounds {
			l.log.Error("equivalency expansion exceeded limit",
				logger.Int("rounds", round),
				logger.Int("pending", len(frontier)),
			)
			return closure{}, ErrEquivalencyChainTooLong
		}

		edges, err := l.courses.EquivalenciesFor(ctx, frontier)
		if err != nil {
			return closure{}, err
		}

		var next []catalog.CourseID
		for _, e := range edges {
			if _, dup := seenEdge[e.ID]; dup && e.ID != "" {
				continue
			}
			seenEdge[e.ID] = struct{}{}
			out.edges = append(out.edges, e)

			for _, id := range []catalog.CourseID{e.CourseID, e.EquivalentID} {
				if !out.ids.Has(id) {
					out.ids[id] = struct{}{}
					next = append(next, id)
				}
			}
		}
		frontier = next
	}
	return out, nil
}

func (l *SnapshotLoader) index(ctx context.Context, c closure) (*catalog.Index, error) {
	courses, err := l.courses.GetByIDs(ctx, c.ids.Sorted())
	if err != nil {
		return nil, err
	}
	return catalog.NewIndex(courses, catalog.NewGraph(c.edges)), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// OPTIONS
// ══════════════════════════════════════════════════════════════════════════════

// FeatureGate reports per-plan feature toggles.
type FeatureGate interface {
	GroupedStrict(planCode string) bool
}

// OptionsResolver combines static engine options with per-plan flags.
type OptionsResolver struct {
	base audit.Options
	gate FeatureGate
}

// NewOptionsResolver creates an OptionsResolver. A nil gate keeps base as is.
func NewOptionsResolver(base audit.Options, gate FeatureGate) *OptionsResolver {
	return &OptionsResolver{base: base, gate: gate}
}

// Resolve returns the options for one evaluation of planCode.
func (r *OptionsResolver) Resolve(planCode string) audit.Options {
	if r == nil {
		return audit.DefaultOptions()
	}
	opts := r.base
	if r.gate != nil {
		opts.GroupedStrict = r.gate.GroupedStrict(planCode)
	}
	return opts
}
