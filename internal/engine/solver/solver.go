// Package solver selects one version per core identity so that every
// dependency constraint reachable from a toplevel core is satisfied.
package solver

import (
	"context"
	"slices"
	"strings"

	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/corepm/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultStepLimit bounds the number of search steps of one resolution.
const DefaultStepLimit = 100000

// Resolution is the outcome of a successful solve.
type Resolution struct {
	// Cores is the selected set in dependency order; the toplevel core is last.
	Cores []*domain.Core
	// Virtuals maps each virtual identity in use to the key of its provider.
	Virtuals map[string]string
	// Dependencies maps each selected identity to the identities it depends on.
	Dependencies map[string][]string
}

// Solver resolves dependency requests against a Repository.
type Solver struct {
	logger    ports.Logger
	stepLimit int
}

// NewSolver creates a new Solver.
func NewSolver(logger ports.Logger) *Solver {
	return &Solver{logger: logger, stepLimit: DefaultStepLimit}
}

// WithStepLimit returns a copy of s bounded to limit search steps.
func (s *Solver) WithStepLimit(limit int) *Solver {
	out := *s
	out.stepLimit = limit
	return &out
}

// requirement is one constraint together with the core that imposed it.
type requirement struct {
	constraint domain.VLNV
	requester  string
}

func (r requirement) String() string {
	return r.requester + " requires " + r.constraint.Depend()
}

// conflict remembers why a requirement could not be met.
type conflict struct {
	key     string
	unknown bool
	imposed []requirement
	failing requirement
}

type search struct {
	ctx   context.Context
	repo  *Repository
	top   string
	flags domain.Flags
	lock  *domain.Lockfile
	limit int
	steps int

	selected map[string]*domain.Core
	virtuals map[string]string
	imposed  map[string][]requirement
	deps     map[*domain.Core][]domain.VLNV

	first *conflict
	abort error
}

// Solve selects the cores needed by top under flags. Locked versions from
// lock are preferred when they satisfy the constraints. The result is
// deterministic for identical inputs.
func (s *Solver) Solve(
	ctx context.Context,
	repo *Repository,
	top domain.VLNV,
	flags domain.Flags,
	lock *domain.Lockfile,
) (*Resolution, error) {
	st := &search{
		ctx:      ctx,
		repo:     repo,
		top:      top.Key(),
		flags:    flags,
		lock:     lock,
		limit:    s.stepLimit,
		selected: make(map[string]*domain.Core),
		virtuals: make(map[string]string),
		imposed:  make(map[string][]requirement),
		deps:     make(map[*domain.Core][]domain.VLNV),
	}

	var pending []requirement
	for _, c := range top.ExpandRange() {
		pending = append(pending, requirement{constraint: c, requester: "request"})
	}

	if !st.solve(pending) {
		if st.abort != nil {
			return nil, st.abort
		}
		return nil, st.failure()
	}

	res, err := st.resolution()
	if err != nil {
		return nil, err
	}
	s.logger.Debug("resolved " + top.Depend() + " to " + summary(res.Cores))
	return res, nil
}

func summary(cores []*domain.Core) string {
	names := make([]string, 0, len(cores))
	for _, c := range cores {
		names = append(names, c.Name.String())
	}
	return strings.Join(names, ", ")
}

// solve satisfies pending depth first and backtracks on conflicts.
func (st *search) solve(pending []requirement) bool {
	if st.abort != nil {
		return false
	}
	st.steps++
	if st.steps > st.limit {
		st.abort = zerr.With(zerr.With(domain.ErrUnsatisfiable, "package", st.top), "reason", "search step limit exceeded")
		return false
	}
	if err := st.ctx.Err(); err != nil {
		st.abort = err
		return false
	}
	if len(pending) == 0 {
		return true
	}

	req, rest := pending[0], pending[1:]
	key := req.constraint.Key()

	if chosen, ok := st.holder(key); ok {
		if !st.satisfies(chosen, req.constraint) {
			st.record(&conflict{key: key, imposed: st.imposed[key], failing: req})
			return false
		}
		return st.impose(key, req, func() bool { return st.solve(rest) })
	}

	candidates := st.candidates(req, rest)
	if len(candidates) == 0 {
		st.record(&conflict{
			key:     key,
			unknown: !st.repo.Known(key),
			imposed: st.imposed[key],
			failing: req,
		})
		return false
	}

	for _, cand := range candidates {
		undo, blocked := st.choose(cand, key)
		if blocked != "" {
			st.record(&conflict{key: blocked, imposed: st.imposed[blocked], failing: req})
			continue
		}
		deps, err := st.depends(cand)
		if err != nil {
			st.abort = err
			undo()
			return false
		}

		next := make([]requirement, 0, len(deps)+len(rest))
		for _, d := range deps {
			for _, c := range d.ExpandRange() {
				next = append(next, requirement{constraint: c, requester: cand.Name.String()})
			}
		}
		next = append(next, rest...)

		if st.impose(key, req, func() bool { return st.solve(next) }) {
			return true
		}
		undo()
		if st.abort != nil {
			return false
		}
	}
	return false
}

// holder returns the selected core occupying key, either as its own identity
// or as the provider of the virtual identity key.
func (st *search) holder(key string) (*domain.Core, bool) {
	if c, ok := st.selected[key]; ok {
		return c, true
	}
	if p, ok := st.virtuals[key]; ok {
		return st.selected[p], true
	}
	return nil, false
}

func (st *search) satisfies(c *domain.Core, constraint domain.VLNV) bool {
	if c.Name.Key() == constraint.Key() {
		return constraint.Matches(c.Name)
	}
	v, ok := providedAs(c, constraint.Key())
	return ok && constraint.Matches(v)
}

// impose records req as active on key while next runs.
func (st *search) impose(key string, req requirement, next func() bool) bool {
	st.imposed[key] = append(st.imposed[key], req)
	if next() {
		return true
	}
	st.imposed[key] = st.imposed[key][:len(st.imposed[key])-1]
	return false
}

// candidates returns the cores for req that also satisfy every other pending
// constraint on the same identity.
func (st *search) candidates(req requirement, rest []requirement) []*domain.Core {
	key := req.constraint.Key()
	out := st.repo.Candidates(req.constraint, st.lock)
	return slices.DeleteFunc(out, func(c *domain.Core) bool {
		for _, r := range rest {
			if r.constraint.Key() == key && !st.satisfies(c, r.constraint) {
				return true
			}
		}
		return false
	})
}

// choose selects cand for key and claims its virtual slots. When cand's own
// identity or one of its slots is held by another core, the blocking key is
// returned instead.
func (st *search) choose(cand *domain.Core, key string) (func(), string) {
	own := cand.Name.Key()
	if held, ok := st.selected[own]; ok && held != cand {
		return nil, own
	}
	for _, v := range cand.Virtual {
		if p, ok := st.virtuals[v.Key()]; ok && p != own {
			return nil, v.Key()
		}
	}

	var claimed []string
	_, ownHeld := st.selected[own]
	if !ownHeld {
		st.selected[own] = cand
	}
	for _, v := range cand.Virtual {
		if _, ok := st.virtuals[v.Key()]; !ok {
			st.virtuals[v.Key()] = own
			claimed = append(claimed, v.Key())
		}
	}
	if key != own {
		if _, ok := st.virtuals[key]; !ok {
			st.virtuals[key] = own
			claimed = append(claimed, key)
		}
	}

	return func() {
		if !ownHeld {
			delete(st.selected, own)
		}
		for _, k := range claimed {
			delete(st.virtuals, k)
		}
	}, ""
}

// depends returns the flag-filtered dependencies of c, computed once per core.
func (st *search) depends(c *domain.Core) ([]domain.VLNV, error) {
	if deps, ok := st.deps[c]; ok {
		return deps, nil
	}
	deps, err := c.DependsForFlags(st.flagsFor(c))
	if err != nil {
		return nil, err
	}
	st.deps[c] = deps
	return deps, nil
}

func (st *search) flagsFor(c *domain.Core) domain.Flags {
	flags := st.flags.With(domain.FlagIsToplevel, c.Name.Key() == st.top)
	if c.Name.Key() == st.top {
		return c.WithTargetFlags(flags)
	}
	return flags
}

func (st *search) record(c *conflict) {
	if st.first == nil {
		c.imposed = slices.Clone(c.imposed)
		st.first = c
	}
}

// failure builds the error describing the first conflict met by the search.
func (st *search) failure() error {
	c := st.first
	if c == nil {
		return zerr.With(domain.ErrUnsatisfiable, "package", st.top)
	}
	if c.unknown {
		err := zerr.With(domain.ErrUnknownPackage, "package", c.key)
		return zerr.With(err, "requested_by", c.failing.requester)
	}

	constraints := make([]string, 0, len(c.imposed)+1)
	for _, r := range c.imposed {
		constraints = append(constraints, r.String())
	}
	constraints = append(constraints, c.failing.String())

	err := zerr.With(domain.ErrUnsatisfiable, "package", c.key)
	return zerr.With(err, "constraints", strings.Join(constraints, "; "))
}

// resolution orders the selection through the package graph.
func (st *search) resolution() (*Resolution, error) {
	g := domain.NewGraph()
	dependencies := make(map[string][]string, len(st.selected))

	keys := make([]string, 0, len(st.selected))
	for k := range st.selected {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		c := st.selected[k]
		deps, err := st.depends(c)
		if err != nil {
			return nil, err
		}
		var edges []string
		for _, d := range deps {
			target := d.Key()
			if p, ok := st.virtuals[target]; ok {
				if _, concrete := st.selected[target]; !concrete {
					target = p
				}
			}
			if target != k && !slices.Contains(edges, target) {
				edges = append(edges, target)
			}
		}
		dependencies[k] = edges
		if err := g.AddPackage(&domain.PackageNode{
			Key:          domain.NewInternedString(k),
			Core:         c,
			Dependencies: domain.NewInternedStrings(edges),
		}); err != nil {
			return nil, err
		}
	}

	root := st.top
	if _, ok := st.selected[root]; !ok {
		root = st.virtuals[root]
	}
	if err := g.Validate(domain.NewInternedString(root)); err != nil {
		return nil, err
	}

	virtuals := make(map[string]string, len(st.virtuals))
	for v, p := range st.virtuals {
		if _, concrete := st.selected[v]; !concrete {
			virtuals[v] = p
		}
	}

	return &Resolution{
		Cores:        slices.Collect(g.Walk()),
		Virtuals:     virtuals,
		Dependencies: dependencies,
	}, nil
}
