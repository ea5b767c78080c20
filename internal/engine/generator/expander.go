// Package generator expands generate entries of resolved cores by running
// external generator programs and splicing the cores they produce into the
// resolved sequence.
package generator

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/corepm/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Options configures one expansion.
type Options struct {
	// CacheRoot holds the generator cache and uncached output.
	CacheRoot string
	// Timeout bounds each generator run; zero means no limit.
	Timeout time.Duration
	// Sanitizer hands out the directory tokens of generated cores. A fresh
	// one is used when nil.
	Sanitizer *domain.Sanitizer
}

// Expander runs generators and splices their output into a resolved sequence.
type Expander struct {
	runner  ports.GeneratorRunner
	cache   ports.GeneratorCache
	hasher  ports.Hasher
	writer  ports.FileWriter
	library ports.CoreLibrary
	logger  ports.Logger
	runID   func() string
}

// NewExpander creates a new Expander.
func NewExpander(
	runner ports.GeneratorRunner,
	cache ports.GeneratorCache,
	hasher ports.Hasher,
	writer ports.FileWriter,
	library ports.CoreLibrary,
	logger ports.Logger,
) *Expander {
	return &Expander{
		runner:  runner,
		cache:   cache,
		hasher:  hasher,
		writer:  writer,
		library: library,
		logger:  logger,
		runID:   uuid.NewString,
	}
}

// Expand evaluates the generate entries of every core in cores and returns a
// new sequence with the generated cores spliced in. cores must be in
// dependency order with the toplevel core identified by top.
func (e *Expander) Expand(
	ctx context.Context,
	cores []*domain.Core,
	top domain.VLNV,
	flags domain.Flags,
	opts Options,
) ([]*domain.Core, error) {
	generators := Available(cores)
	out := slices.Clone(cores)

	san := opts.Sanitizer
	if san == nil {
		san = domain.NewSanitizer()
	}
	claimed := make(map[string]string, len(cores))
	for _, c := range cores {
		if _, err := san.Identity(c.Name); err != nil {
			return nil, err
		}
		claimed[c.Name.Key()] = c.Name.String()
	}

	for _, c := range cores {
		cflags := flagsFor(c, top, flags)
		entries, err := c.GenerateForFlags(cflags)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			gen, ok := generators[entry.Generator]
			if !ok {
				err := zerr.With(domain.ErrUnknownGenerator, "core", c.Name.String())
				return nil, zerr.With(err, "generator", entry.Generator)
			}

			name := GeneratedName(c.Name, entry.Name)
			if err := claim(claimed, name, c.Name.String()+" "+entry.Name); err != nil {
				return nil, err
			}
			token, err := san.Identity(name)
			if err != nil {
				return nil, err
			}

			produced, err := e.run(ctx, c, entry, gen, name, token, opts)
			if err != nil {
				return nil, err
			}

			out, err = splice(out, c, produced, entry.Position, flags)
			if err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Available returns the generators defined by cores keyed by name. A later
// core redefining a name wins.
func Available(cores []*domain.Core) map[string]*domain.Generator {
	out := make(map[string]*domain.Generator)
	for _, c := range cores {
		for name, g := range c.Generators {
			out[name] = g
		}
	}
	return out
}

func flagsFor(c *domain.Core, top domain.VLNV, flags domain.Flags) domain.Flags {
	toplevel := c.Name.Key() == top.Key()
	out := flags.With(domain.FlagIsToplevel, toplevel)
	if toplevel {
		return c.WithTargetFlags(out)
	}
	return out
}

// claim records owner as the producer of name. Two generate entries yielding
// one identity would share their output, as would a generated core named
// like a resolved one.
func claim(claimed map[string]string, name domain.VLNV, owner string) error {
	if prev, ok := claimed[name.Key()]; ok && prev != owner {
		err := zerr.With(domain.ErrSanitizeCollision, "identity", name.String())
		err = zerr.With(err, "first", prev)
		return zerr.With(err, "second", owner)
	}
	claimed[name.Key()] = owner
	return nil
}

// GeneratedName returns the VLNV of the core produced by instance for requester.
func GeneratedName(requester domain.VLNV, instance string) domain.VLNV {
	v := requester.WithRelation(domain.RelationEQ)
	v.Name = requester.Name + "-" + instance
	return v
}

// run produces the core of one generate entry, from the cache when allowed.
func (e *Expander) run(
	ctx context.Context,
	requester *domain.Core,
	entry domain.ResolvedGenerate,
	gen *domain.Generator,
	name domain.VLNV,
	token string,
	opts Options,
) (*domain.Core, error) {
	input, err := yaml.Marshal(domain.GeneratorInput{
		GAPI:       domain.GAPIVersion,
		FilesRoot:  requester.FilesRoot,
		Parameters: entry.Parameters,
		VLNV:       name.String(),
	})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode generator input")
	}

	inv := &domain.GeneratorInvocation{
		Instance:    entry.Name,
		Generator:   entry.Generator,
		Command:     commandPath(gen),
		Interpreter: gen.Interpreter,
		Timeout:     opts.Timeout,
	}

	if gen.CacheType == domain.CacheNone || gen.CacheType == "" {
		return e.runUncached(ctx, inv, token, input, opts)
	}

	key, err := e.cacheKey(requester, entry, gen, input)
	if err != nil {
		return nil, err
	}
	dir, hit, err := e.cache.Lookup(opts.CacheRoot, key)
	if err != nil {
		return nil, err
	}
	if hit {
		e.logger.Debug("using cached output of " + entry.Name + " from " + dir)
		return e.load(dir, inv)
	}

	runID := e.runID()
	scratch := filepath.Join(domain.GeneratorCachePath(opts.CacheRoot), "tmp-"+runID)
	if err := e.execute(ctx, inv, scratch, input); err != nil {
		_ = os.RemoveAll(scratch)
		return nil, err
	}
	if _, err := findCore(scratch, inv); err != nil {
		_ = os.RemoveAll(scratch)
		return nil, err
	}

	dir, err = e.cache.Commit(opts.CacheRoot, scratch, domain.GeneratorCacheEntry{
		Key:       key,
		Generator: entry.Generator,
		Instance:  entry.Name,
		RunID:     runID,
	})
	if err != nil {
		_ = os.RemoveAll(scratch)
		return nil, err
	}
	return e.load(dir, inv)
}

// runUncached runs the generator in a fresh directory below the generated
// output of token, replacing the output of earlier runs.
func (e *Expander) runUncached(
	ctx context.Context,
	inv *domain.GeneratorInvocation,
	token string,
	input []byte,
	opts Options,
) (*domain.Core, error) {
	base := domain.GeneratedPath(opts.CacheRoot, token)
	if err := os.RemoveAll(base); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to clear generated output"), "path", base)
	}
	dir := filepath.Join(base, e.runID())
	if err := e.execute(ctx, inv, dir, input); err != nil {
		return nil, err
	}
	return e.load(dir, inv)
}

func (e *Expander) execute(ctx context.Context, inv *domain.GeneratorInvocation, dir string, input []byte) error {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create generator directory"), "path", dir)
	}
	inv.WorkDir = dir
	inv.InputFile = filepath.Join(dir, inv.Instance+domain.GeneratorInputSuffix)
	if _, err := e.writer.WriteFile(inv.InputFile, input); err != nil {
		return err
	}
	e.logger.Info("running generator " + inv.Generator + " for " + inv.Instance)
	return e.runner.Run(ctx, inv)
}

// cacheKey derives the cache key of a run. Input caching hashes the input
// document and the files it names; generator caching hashes the identity of
// the generator, the instance and the requester.
func (e *Expander) cacheKey(
	requester *domain.Core,
	entry domain.ResolvedGenerate,
	gen *domain.Generator,
	input []byte,
) (string, error) {
	if gen.CacheType == domain.CacheGenerator {
		identity := strings.Join([]string{
			gen.Owner.String(), entry.Generator, entry.Name, requester.Name.String(),
		}, "\x00")
		return e.hasher.HashGeneratorInput([]byte(identity), nil)
	}

	var files []string
	for _, p := range gen.FileInputParameters {
		v, ok := entry.Parameters[p]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			err := zerr.With(domain.ErrGeneratorFailed, "generator", entry.Generator)
			err = zerr.With(err, "instance", entry.Name)
			return "", zerr.With(err, "reason", "file input parameter "+p+" is not a path")
		}
		if !filepath.IsAbs(s) {
			s = filepath.Join(requester.FilesRoot, s)
		}
		files = append(files, s)
	}
	return e.hasher.HashGeneratorInput(input, files)
}

// load parses the single core description found in dir.
func (e *Expander) load(dir string, inv *domain.GeneratorInvocation) (*domain.Core, error) {
	path, err := findCore(dir, inv)
	if err != nil {
		return nil, err
	}
	c, err := e.library.Load(path)
	if err != nil {
		return nil, err
	}
	generated := *c
	generated.Generated = true
	return &generated, nil
}

func findCore(dir string, inv *domain.GeneratorInvocation) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to read generator output"), "path", dir)
	}
	var found []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == domain.CoreFileExt {
			found = append(found, filepath.Join(dir, entry.Name()))
		}
	}
	if len(found) != 1 {
		err := zerr.With(domain.ErrGeneratorFailed, "generator", inv.Generator)
		err = zerr.With(err, "instance", inv.Instance)
		return "", zerr.With(err, "reason", "expected one core description, found "+strconv.Itoa(len(found)))
	}
	return found[0], nil
}

func commandPath(gen *domain.Generator) string {
	if gen.Command == "" || filepath.IsAbs(gen.Command) {
		return gen.Command
	}
	return filepath.Join(gen.Root, gen.Command)
}
