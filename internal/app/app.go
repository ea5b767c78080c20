// Package app implements the application layer for corepm.
package app

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/corepm/internal/core/ports"
	"go.trai.ch/corepm/internal/engine/assembler"
	"go.trai.ch/corepm/internal/engine/generator"
	"go.trai.ch/corepm/internal/engine/solver"
	"go.trai.ch/zerr"
)

// DefaultGeneratorTimeout bounds a generator run when no timeout is given.
const DefaultGeneratorTimeout = 10 * time.Minute

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	library      ports.CoreLibrary
	cache        ports.GeneratorCache
	locks        ports.LockfileStore
	logger       ports.Logger
	solver       *solver.Solver
	expander     *generator.Expander
	assembler    *assembler.Assembler
	getwd        func() (string, error)
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	library ports.CoreLibrary,
	cache ports.GeneratorCache,
	locks ports.LockfileStore,
	log ports.Logger,
	slv *solver.Solver,
	exp *generator.Expander,
	asm *assembler.Assembler,
) *App {
	return &App{
		configLoader: loader,
		library:      library,
		cache:        cache,
		locks:        locks,
		logger:       log,
		solver:       slv,
		expander:     exp,
		assembler:    asm,
		getwd:        os.Getwd,
	}
}

// WithWorkingDir pins the directory configuration and relative paths are
// resolved against. This is primarily used for testing.
func (a *App) WithWorkingDir(dir string) *App {
	a.getwd = func() (string, error) { return dir, nil }
	return a
}

// Options are the settings shared by every command.
type Options struct {
	// ConfigPath selects the configuration file; empty searches for it.
	ConfigPath string
	// CoresRoots are searched in addition to the configured roots.
	CoresRoots []string
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	Options

	Core   string
	Target string
	Tool   string
	// Flags holds extra flags in the form "name" or "name=value".
	Flags    []string
	WorkRoot string
	// Lockfile is read to pin versions when it exists.
	Lockfile string
	// Locked writes the lockfile after a successful run.
	Locked           bool
	GeneratorTimeout time.Duration
}

// RunResult describes a completed run.
type RunResult struct {
	ManifestPath string
	Manifest     *domain.Manifest
	Cores        []*domain.Core
}

// LogSettings is implemented by loggers whose output can be reconfigured.
type LogSettings interface {
	SetVerbose(enable bool)
	SetJSON(enable bool)
}

// ConfigureLogging switches the logger verbosity and format when supported.
func (a *App) ConfigureLogging(verbose, json bool) {
	if s, ok := a.logger.(LogSettings); ok {
		s.SetVerbose(verbose)
		s.SetJSON(json)
	}
}

// Run resolves opts.Core, expands its generators and writes the manifest.
// Nothing is written when any step fails.
func (a *App) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if opts.Core == "" {
		return nil, zerr.With(domain.ErrMalformedIdentifier, "identifier", opts.Core)
	}
	top, err := domain.ParseVLNV(opts.Core, domain.RelationEQ)
	if err != nil {
		return nil, err
	}

	cwd, err := a.getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to get working directory")
	}
	cfg, repo, err := a.load(ctx, cwd, opts.Options)
	if err != nil {
		return nil, err
	}

	flags := runFlags(opts)

	var lock *domain.Lockfile
	if opts.Lockfile != "" {
		lock, err = a.locks.Read(absolute(cwd, opts.Lockfile))
		if err != nil {
			return nil, err
		}
	}

	res, flags, err := a.solve(ctx, repo, top, flags, lock)
	if err != nil {
		return nil, err
	}
	topCore := res.Cores[len(res.Cores)-1]
	a.logger.Info("resolved " + strconv.Itoa(len(res.Cores)) + " cores for " + topCore.Name.String())

	timeout := opts.GeneratorTimeout
	if timeout == 0 {
		timeout = DefaultGeneratorTimeout
	}
	san := domain.NewSanitizer()
	cores, err := a.expander.Expand(ctx, res.Cores, topCore.Name, flags, generator.Options{
		CacheRoot: absolute(cwd, cfg.CacheRoot),
		Timeout:   timeout,
		Sanitizer: san,
	})
	if err != nil {
		return nil, err
	}

	workRoot, err := a.workRoot(cwd, cfg, san, topCore, flags, opts.WorkRoot)
	if err != nil {
		return nil, err
	}

	m, err := a.assembler.Assemble(assembler.Input{
		Cores:     cores,
		Top:       topCore.Name,
		Flags:     flags,
		WorkRoot:  workRoot,
		Sanitizer: san,
	})
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := a.assembler.WriteManifest(workRoot, m)
	if err != nil {
		return nil, err
	}

	if opts.Locked {
		lockPath := opts.Lockfile
		if lockPath == "" {
			lockPath = domain.LockFileName
		}
		if err := a.assembler.WriteLockfile(absolute(cwd, lockPath), cores, res.Virtuals); err != nil {
			return nil, err
		}
	}

	return &RunResult{ManifestPath: path, Manifest: m, Cores: cores}, nil
}

func runFlags(opts RunOptions) domain.Flags {
	flags := domain.Flags{}
	for _, f := range opts.Flags {
		name, value := domain.ParseFlag(f)
		flags[name] = value
	}
	if opts.Target != "" {
		flags[domain.FlagTarget] = opts.Target
	}
	if opts.Tool != "" {
		flags[domain.FlagTool] = opts.Tool
	}
	return flags
}

// solve resolves top with the tool of its selected target already in flags,
// so tool-gated dependencies and generators see the tool the manifest uses.
// The tool is taken from the preferred candidate; when the solver settles on
// a version whose target selects another tool, it is solved once more.
func (a *App) solve(
	ctx context.Context,
	repo *solver.Repository,
	top domain.VLNV,
	flags domain.Flags,
	lock *domain.Lockfile,
) (*solver.Resolution, domain.Flags, error) {
	requested := flags
	if cand := topCandidate(repo, top, lock); cand != nil {
		var err error
		if flags, err = withTool(cand, requested); err != nil {
			return nil, nil, err
		}
	}

	res, err := a.solver.Solve(ctx, repo, top, flags, lock)
	if err != nil {
		return nil, nil, err
	}

	retooled, err := withTool(res.Cores[len(res.Cores)-1], requested)
	if err != nil {
		return nil, nil, err
	}
	if retooled.Tool() == flags.Tool() {
		return res, flags, nil
	}
	a.logger.Debug("re-resolving " + top.Depend() + " for tool " + retooled.Tool())
	res, err = a.solver.Solve(ctx, repo, top, retooled, lock)
	if err != nil {
		return nil, nil, err
	}
	return res, retooled, nil
}

// topCandidate returns the version of top the solver tries first.
func topCandidate(repo *solver.Repository, top domain.VLNV, lock *domain.Lockfile) *domain.Core {
	for _, c := range repo.Candidates(top, lock) {
		if c.Name.Key() == top.Key() {
			return c
		}
	}
	return nil
}

// withTool adds the tool selected by the target of top to flags unless a
// tool was requested explicitly.
func withTool(top *domain.Core, flags domain.Flags) (domain.Flags, error) {
	if flags.Tool() != "" {
		return flags, nil
	}
	topFlags := top.WithTargetFlags(flags.With(domain.FlagIsToplevel, true))
	tool, _, err := top.ToolOptionsForFlags(topFlags)
	if err != nil || tool == "" {
		return flags, err
	}
	return flags.With(domain.FlagTool, tool), nil
}

func (a *App) workRoot(
	cwd string,
	cfg *domain.Config,
	san *domain.Sanitizer,
	top *domain.Core,
	flags domain.Flags,
	explicit string,
) (string, error) {
	if explicit != "" {
		return absolute(cwd, explicit), nil
	}
	topFlags := top.WithTargetFlags(flags.With(domain.FlagIsToplevel, true))
	tool, _, err := top.ToolOptionsForFlags(topFlags)
	if err != nil {
		return "", err
	}
	token, err := san.Identity(top.Name)
	if err != nil {
		return "", err
	}
	return domain.DefaultWorkRoot(absolute(cwd, cfg.BuildRoot), token, top.TargetName(topFlags), tool), nil
}

func absolute(cwd, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cwd, path)
}

// load reads the configuration and discovers the cores it points at.
func (a *App) load(ctx context.Context, cwd string, opts Options) (*domain.Config, *solver.Repository, error) {
	cfg, err := a.configLoader.Load(cwd, opts.ConfigPath)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to load configuration")
	}

	roots := cfg.SearchRoots()
	for _, r := range opts.CoresRoots {
		if r = absolute(cwd, r); !slices.Contains(roots, r) {
			roots = append(roots, r)
		}
	}
	a.logger.Debug("searching cores in " + strings.Join(roots, ", "))

	cores, err := a.library.Discover(ctx, roots)
	if err != nil {
		return nil, nil, err
	}
	return cfg, solver.NewRepository(a.logger, cores...), nil
}

// ListCores returns every discovered core ordered by VLNV.
func (a *App) ListCores(ctx context.Context, opts Options) ([]*domain.Core, error) {
	_, repo, err := a.loadWd(ctx, opts)
	if err != nil {
		return nil, err
	}
	return repo.Cores(), nil
}

// ShowCore returns the best match for name: the highest version satisfying it.
func (a *App) ShowCore(ctx context.Context, opts Options, name string) (*domain.Core, error) {
	v, err := domain.ParseVLNV(name, domain.RelationEQ)
	if err != nil {
		return nil, err
	}
	_, repo, err := a.loadWd(ctx, opts)
	if err != nil {
		return nil, err
	}
	for _, c := range repo.Candidates(v, nil) {
		if c.Name.Key() == v.Key() {
			return c, nil
		}
	}
	return nil, zerr.With(domain.ErrUnknownPackage, "package", v.Depend())
}

// GeneratorInfo describes a generator and the core that defines it.
type GeneratorInfo struct {
	Name      string
	Owner     domain.VLNV
	Generator *domain.Generator
	// Entries are the cache entries produced by the generator; only filled by ShowGenerator.
	Entries []domain.GeneratorCacheEntry
}

// ListGenerators returns the generators defined by discovered cores, ordered
// by name and then by defining core.
func (a *App) ListGenerators(ctx context.Context, opts Options) ([]GeneratorInfo, error) {
	_, repo, err := a.loadWd(ctx, opts)
	if err != nil {
		return nil, err
	}
	var out []GeneratorInfo
	for _, c := range repo.Cores() {
		for name, g := range c.Generators {
			out = append(out, GeneratorInfo{Name: name, Owner: c.Name, Generator: g})
		}
	}
	slices.SortFunc(out, func(x, y GeneratorInfo) int {
		if c := strings.Compare(x.Name, y.Name); c != 0 {
			return c
		}
		return domain.Compare(x.Owner, y.Owner)
	})
	return out, nil
}

// ShowGenerator returns every definition of the generator name together with
// the cache entries it produced.
func (a *App) ShowGenerator(ctx context.Context, opts Options, name string) ([]GeneratorInfo, error) {
	cwd, err := a.getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to get working directory")
	}
	cfg, repo, err := a.load(ctx, cwd, opts)
	if err != nil {
		return nil, err
	}

	entries, err := a.cache.Entries(absolute(cwd, cfg.CacheRoot))
	if err != nil {
		return nil, err
	}
	entries = slices.DeleteFunc(entries, func(e domain.GeneratorCacheEntry) bool { return e.Generator != name })

	var out []GeneratorInfo
	for _, c := range repo.Cores() {
		if g, ok := c.Generators[name]; ok {
			out = append(out, GeneratorInfo{Name: name, Owner: c.Name, Generator: g, Entries: entries})
		}
	}
	if len(out) == 0 {
		return nil, zerr.With(domain.ErrUnknownGenerator, "generator", name)
	}
	return out, nil
}

// Libraries returns the resolved configuration with its registered libraries.
func (a *App) Libraries(opts Options) (*domain.Config, error) {
	cwd, err := a.getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to get working directory")
	}
	cfg, err := a.configLoader.Load(cwd, opts.ConfigPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	for _, r := range opts.CoresRoots {
		if r = absolute(cwd, r); !slices.Contains(cfg.CoresRoots, r) {
			cfg.CoresRoots = append(cfg.CoresRoots, r)
		}
	}
	return cfg, nil
}

func (a *App) loadWd(ctx context.Context, opts Options) (*domain.Config, *solver.Repository, error) {
	cwd, err := a.getwd()
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to get working directory")
	}
	return a.load(ctx, cwd, opts)
}
