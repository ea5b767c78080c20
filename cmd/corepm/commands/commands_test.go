package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/corepm/cmd/corepm/commands"
	"go.trai.ch/corepm/internal/app"
	"go.trai.ch/corepm/internal/build"
	"go.trai.ch/corepm/internal/core/domain"
)

type mockApp struct {
	runFunc            func(ctx context.Context, opts app.RunOptions) (*app.RunResult, error)
	listCoresFunc      func(ctx context.Context, opts app.Options) ([]*domain.Core, error)
	showCoreFunc       func(ctx context.Context, opts app.Options, name string) (*domain.Core, error)
	listGeneratorsFunc func(ctx context.Context, opts app.Options) ([]app.GeneratorInfo, error)
	showGeneratorFunc  func(ctx context.Context, opts app.Options, name string) ([]app.GeneratorInfo, error)
	librariesFunc      func(opts app.Options) (*domain.Config, error)

	verbose, json bool
}

func (m *mockApp) Run(ctx context.Context, opts app.RunOptions) (*app.RunResult, error) {
	if m.runFunc != nil {
		return m.runFunc(ctx, opts)
	}
	return &app.RunResult{Manifest: domain.NewManifest("top", "top")}, nil
}

func (m *mockApp) ListCores(ctx context.Context, opts app.Options) ([]*domain.Core, error) {
	if m.listCoresFunc != nil {
		return m.listCoresFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockApp) ShowCore(ctx context.Context, opts app.Options, name string) (*domain.Core, error) {
	if m.showCoreFunc != nil {
		return m.showCoreFunc(ctx, opts, name)
	}
	return nil, errors.New("not implemented")
}

func (m *mockApp) ListGenerators(ctx context.Context, opts app.Options) ([]app.GeneratorInfo, error) {
	if m.listGeneratorsFunc != nil {
		return m.listGeneratorsFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockApp) ShowGenerator(ctx context.Context, opts app.Options, name string) ([]app.GeneratorInfo, error) {
	if m.showGeneratorFunc != nil {
		return m.showGeneratorFunc(ctx, opts, name)
	}
	return nil, errors.New("not implemented")
}

func (m *mockApp) Libraries(opts app.Options) (*domain.Config, error) {
	if m.librariesFunc != nil {
		return m.librariesFunc(opts)
	}
	return &domain.Config{}, nil
}

func (m *mockApp) ConfigureLogging(verbose, json bool) {
	m.verbose = verbose
	m.json = json
}

func execute(t *testing.T, a commands.Application, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(a)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Run(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) (*app.RunResult, error) {
				captured = opts
				return &app.RunResult{
					ManifestPath: "/work/acme_ip_a_1_0.eda.yml",
					Manifest:     domain.NewManifest("acme_ip_a_1_0", "a"),
					Cores: []*domain.Core{
						{Name: domain.MustParseVLNV("acme:ip:b:1.0")},
						{Name: domain.MustParseVLNV("acme:ip:a:1.0")},
					},
				}, nil
			},
		}

		out, err := execute(t, mock,
			"run", "acme:ip:a:1.0",
			"--target", "sim", "--tool", "icarus",
			"--flag", "fast", "--flag", "width=8",
			"--work-root", "out", "--lockfile", "deps.lock", "--locked",
			"--timeout", "30s",
			"--cores-root", "ip", "--cores-root", "vendor",
			"-c", "my.conf", "-v", "--json",
		)
		require.NoError(t, err)

		assert.Equal(t, app.RunOptions{
			Options:          app.Options{ConfigPath: "my.conf", CoresRoots: []string{"ip", "vendor"}},
			Core:             "acme:ip:a:1.0",
			Target:           "sim",
			Tool:             "icarus",
			Flags:            []string{"fast", "width=8"},
			WorkRoot:         "out",
			Lockfile:         "deps.lock",
			Locked:           true,
			GeneratorTimeout: 30 * time.Second,
		}, captured)
		assert.True(t, mock.verbose)
		assert.True(t, mock.json)

		assert.Contains(t, out, "acme:ip:b:1.0")
		assert.Contains(t, out, "/work/acme_ip_a_1_0.eda.yml")
	})

	t.Run("aliases select their target", func(t *testing.T) {
		targets := map[string]string{}
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) (*app.RunResult, error) {
				targets[opts.Core] = opts.Target
				return &app.RunResult{Manifest: domain.NewManifest("top", "top")}, nil
			},
		}

		_, err := execute(t, mock, "run", "::run:1")
		require.NoError(t, err)
		_, err = execute(t, mock, "build", "::build:1")
		require.NoError(t, err)
		_, err = execute(t, mock, "sim", "::sim:1")
		require.NoError(t, err)
		_, err = execute(t, mock, "sim", "::lint:1", "-t", "lint")
		require.NoError(t, err)

		assert.Equal(t, map[string]string{
			"::run:1":   "",
			"::build:1": "synth",
			"::sim:1":   "sim",
			"::lint:1":  "lint",
		}, targets)
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ app.RunOptions) (*app.RunResult, error) {
				return nil, errors.New("simulated error")
			},
		}

		_, err := execute(t, mock, "run", "acme:ip:a")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

	t.Run("shows usage when no core provided", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ app.RunOptions) (*app.RunResult, error) {
				panic("should not be called")
			},
		}

		out, err := execute(t, mock, "run")
		require.NoError(t, err)
		assert.Contains(t, out, "Usage:")
	})
}

func TestCommands_Core(t *testing.T) {
	core := &domain.Core{
		Name:        domain.MustParseVLNV("acme:ip:uart:1.2"),
		Description: "Serial port",
		Path:        "/cores/uart/uart.core",
		CAPI:        2,
		Virtual:     []domain.VLNV{domain.MustParseVLNV("acme:if:serial:1.0")},
		Filesets: map[string]*domain.Fileset{
			"rtl": {Files: []domain.File{{Name: "uart.v"}}, Depend: []string{"acme:ip:fifo"}},
		},
		Targets: map[string]*domain.Target{
			"sim":     {DefaultTool: "icarus"},
			"default": {},
		},
	}

	mock := &mockApp{
		listCoresFunc: func(_ context.Context, opts app.Options) ([]*domain.Core, error) {
			assert.Equal(t, []string{"ip"}, opts.CoresRoots)
			return []*domain.Core{core, {Name: domain.MustParseVLNV("acme:ip:fifo:2.0")}}, nil
		},
		showCoreFunc: func(_ context.Context, _ app.Options, name string) (*domain.Core, error) {
			if name != "acme:ip:uart" {
				return nil, domain.ErrUnknownPackage
			}
			return core, nil
		},
	}

	out, err := execute(t, mock, "core", "list", "--cores-root", "ip")
	require.NoError(t, err)
	assert.Contains(t, out, "acme:ip:uart:1.2")
	assert.Contains(t, out, "Serial port")
	assert.Contains(t, out, "acme:ip:fifo:2.0")

	out, err = execute(t, mock, "core", "show", "acme:ip:uart")
	require.NoError(t, err)
	assert.Contains(t, out, "Path: /cores/uart/uart.core")
	assert.Contains(t, out, "acme:if:serial:1.0")
	assert.Contains(t, out, "sim (icarus)")
	assert.Contains(t, out, "depends acme:ip:fifo")

	_, err = execute(t, mock, "core", "show", "acme:ip:missing")
	require.ErrorIs(t, err, domain.ErrUnknownPackage)

	_, err = execute(t, mock, "core", "show")
	require.Error(t, err)
}

func TestCommands_Gen(t *testing.T) {
	owner := domain.MustParseVLNV("acme:soc:top:1.0")
	gen := &domain.Generator{Command: "gen/regmap.py", Interpreter: "python3", CacheType: domain.CacheInput}
	mock := &mockApp{
		listGeneratorsFunc: func(_ context.Context, _ app.Options) ([]app.GeneratorInfo, error) {
			return []app.GeneratorInfo{{Name: "regmap", Owner: owner, Generator: gen}}, nil
		},
		showGeneratorFunc: func(_ context.Context, _ app.Options, name string) ([]app.GeneratorInfo, error) {
			return []app.GeneratorInfo{{
				Name:      name,
				Owner:     owner,
				Generator: gen,
				Entries: []domain.GeneratorCacheEntry{
					{Key: "0123abcd", Generator: name, Instance: "regs", CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
				},
			}}, nil
		},
	}

	out, err := execute(t, mock, "gen", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "regmap")
	assert.Contains(t, out, "acme:soc:top:1.0")

	out, err = execute(t, mock, "gen", "show", "regmap")
	require.NoError(t, err)
	assert.Contains(t, out, "Command: gen/regmap.py")
	assert.Contains(t, out, "Cache: input")
	assert.Contains(t, out, "0123abcd 2024-05-01 12:00:00")
}

func TestCommands_LibraryList(t *testing.T) {
	mock := &mockApp{
		librariesFunc: func(_ app.Options) (*domain.Config, error) {
			return &domain.Config{
				Path:       "/proj/fusesoc.conf",
				CoresRoots: []string{"/proj/cores"},
				BuildRoot:  "/proj/build",
				Libraries:  []domain.Library{{Name: "vendor", Location: "/proj/vendor"}},
			}, nil
		},
	}

	out, err := execute(t, mock, "library", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration: /proj/fusesoc.conf")
	assert.Contains(t, out, "/proj/cores")
	assert.Contains(t, out, "/proj/vendor")
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, build.Version)
}
