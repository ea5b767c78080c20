package capi

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"go.trai.ch/corepm/internal/adapters/fs"
	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/corepm/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Library implements ports.CoreLibrary. Parsed descriptions are cached for
// the lifetime of the Library and shared read-only.
type Library struct {
	parser *Parser
	walker *fs.Walker
	logger ports.Logger
	cache  descriptionCache
	limit  int
}

// NewLibrary creates a new Library.
func NewLibrary(parser *Parser, walker *fs.Walker, logger ports.Logger) *Library {
	return &Library{
		parser: parser,
		walker: walker,
		logger: logger,
		limit:  runtime.GOMAXPROCS(0),
	}
}

// Load parses the description at path, once per absolute path.
func (l *Library) Load(path string) (*domain.Core, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve core path"), "path", path)
	}
	return l.cache.get(abs, func() (*domain.Core, error) {
		//nolint:gosec // path comes from discovery or the command line
		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to read core description"), "path", abs)
		}
		core, warnings, err := l.parser.Parse(abs, data)
		if err != nil {
			return nil, err
		}
		for _, w := range warnings {
			l.logger.Warn(abs + ": " + w)
		}
		return core, nil
	})
}

// Discover parses every description below roots. Files that fail to parse
// are skipped with a warning. When two files declare the same VLNV the one
// found last wins, so later roots override earlier ones.
func (l *Library) Discover(ctx context.Context, roots []string) ([]*domain.Core, error) {
	var paths []string
	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			l.logger.Warn("cores root " + root + " is not accessible, skipping")
			continue
		}
		for path := range l.walker.WalkCoreFiles(root) {
			paths = append(paths, path)
		}
	}

	cores := make([]*domain.Core, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			core, err := l.Load(path)
			if err != nil {
				l.logger.Warn("skipping " + path + ": " + strings.ReplaceAll(err.Error(), "\n", " "))
				return nil
			}
			cores[i] = core
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(cores))
	out := make([]*domain.Core, 0, len(cores))
	for _, core := range cores {
		if core == nil {
			continue
		}
		key := core.Name.String()
		if i, ok := index[key]; ok {
			l.logger.Warn("duplicate core " + key + ": " + core.Path + " replaces " + out[i].Path)
			out[i] = core
			continue
		}
		index[key] = len(out)
		out = append(out, core)
	}

	l.logger.Debug("discovered " + strconv.Itoa(len(out)) + " cores")
	return out, nil
}
