// Package assembler flattens a resolved core sequence into one manifest.
package assembler

import (
	"maps"
	"path/filepath"
	"slices"

	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/corepm/internal/core/ports"
	"go.trai.ch/zerr"
)

// Input is the resolved sequence to assemble.
type Input struct {
	// Cores is in dependency order with the toplevel core last.
	Cores []*domain.Core
	Top   domain.VLNV
	Flags domain.Flags
	// WorkRoot is the absolute directory file paths are made relative to.
	WorkRoot string
	// Sanitizer hands out the manifest name; a fresh one is used when nil.
	Sanitizer *domain.Sanitizer
}

// Assembler builds manifests and writes them together with lockfiles.
type Assembler struct {
	files     ports.FileWriter
	manifests ports.ManifestWriter
	locks     ports.LockfileStore
	logger    ports.Logger
}

// NewAssembler creates a new Assembler.
func NewAssembler(
	files ports.FileWriter,
	manifests ports.ManifestWriter,
	locks ports.LockfileStore,
	logger ports.Logger,
) *Assembler {
	return &Assembler{files: files, manifests: manifests, locks: locks, logger: logger}
}

// Assemble evaluates every core of in.Cores with its flags and merges the
// results in sequence order. Later cores override earlier ones by key.
// Files marked with copyto are copied below the work root.
func (a *Assembler) Assemble(in Input) (*domain.Manifest, error) {
	top := findTop(in.Cores, in.Top)
	if top == nil {
		return nil, zerr.With(domain.ErrUnknownPackage, "package", in.Top.Depend())
	}

	topFlags := top.WithTargetFlags(in.Flags.With(domain.FlagIsToplevel, true))
	tool, _, err := top.ToolOptionsForFlags(topFlags)
	if err != nil {
		return nil, err
	}
	base := in.Flags
	if tool != "" {
		base = base.With(domain.FlagTool, tool)
	}

	toplevel, err := top.ToplevelForFlags(topFlags.With(domain.FlagTool, tool))
	if err != nil {
		return nil, err
	}

	san := in.Sanitizer
	if san == nil {
		san = domain.NewSanitizer()
	}
	name, err := san.Identity(top.Name)
	if err != nil {
		return nil, err
	}

	m := domain.NewManifest(name, toplevel)
	for _, c := range in.Cores {
		flags := base.With(domain.FlagIsToplevel, c == top)
		if c == top {
			flags = c.WithTargetFlags(flags)
		}
		if err := a.merge(m, c, flags, tool, in); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func findTop(cores []*domain.Core, top domain.VLNV) *domain.Core {
	for _, c := range slices.Backward(cores) {
		if c.Name.Key() == top.Key() {
			return c
		}
	}
	return nil
}

func (a *Assembler) merge(m *domain.Manifest, c *domain.Core, flags domain.Flags, tool string, in Input) error {
	files, err := c.FilesForFlags(flags)
	if err != nil {
		return err
	}
	for _, f := range files {
		name, err := a.place(c, f, in.WorkRoot)
		if err != nil {
			return err
		}
		m.Files = append(m.Files, domain.ManifestFile{
			Name:          name,
			FileType:      f.FileType,
			IsIncludeFile: f.IsIncludeFile,
			LogicalName:   f.LogicalName,
			Core:          c.Name.String(),
		})
	}

	params, err := c.ParametersForFlags(flags)
	if err != nil {
		return err
	}
	for name, p := range params {
		m.Parameters[name] = domain.ManifestParameter{
			Datatype:    p.Datatype,
			Default:     p.Default,
			Description: p.Description,
			Paramtype:   p.Paramtype,
		}
	}

	if tool != "" {
		_, opts, err := c.ToolOptionsForFlags(flags)
		if err != nil {
			return err
		}
		if len(opts) > 0 {
			if m.ToolOptions[tool] == nil {
				m.ToolOptions[tool] = map[string]any{}
			}
			maps.Copy(m.ToolOptions[tool], opts)
		}
	}

	hooks, err := c.HooksForFlags(flags)
	if err != nil {
		return err
	}
	for _, stage := range domain.HookStages {
		for _, s := range hooks[stage] {
			m.Hooks[stage] = append(m.Hooks[stage], domain.ManifestScript{Name: s.Name, Cmd: s.Cmd, Env: s.Env})
		}
	}

	vpi, err := c.VPIForFlags(flags)
	if err != nil {
		return err
	}
	for _, v := range vpi {
		m.VPI = append(m.VPI, domain.ManifestVPI{
			Name:         v.Name,
			SrcFiles:     a.relative(c, v.SrcFiles, in.WorkRoot),
			IncludeFiles: a.relative(c, v.IncludeFiles, in.WorkRoot),
			Libs:         v.Libs,
		})
	}

	deps, err := c.DependsForFlags(flags)
	if err != nil {
		return err
	}
	m.Dependencies[c.Name.String()] = providers(in.Cores, deps)
	return nil
}

// place returns the work-root relative name of f, copying it first when it
// carries a copyto destination.
func (a *Assembler) place(c *domain.Core, f domain.File, workRoot string) (string, error) {
	src := sourcePath(c, f)
	if f.CopyTo == "" {
		return relativeTo(workRoot, src), nil
	}
	dst := filepath.Join(workRoot, f.CopyTo)
	if err := a.files.CopyFile(src, dst); err != nil {
		err = zerr.With(zerr.Wrap(err, "failed to copy file"), "core", c.Name.String())
		return "", zerr.With(err, "path", src)
	}
	return filepath.ToSlash(filepath.Clean(f.CopyTo)), nil
}

func (a *Assembler) relative(c *domain.Core, files []domain.File, workRoot string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, relativeTo(workRoot, sourcePath(c, f)))
	}
	return out
}

func sourcePath(c *domain.Core, f domain.File) string {
	if filepath.IsAbs(f.Name) {
		return f.Name
	}
	return filepath.Join(c.FilesRoot, f.Name)
}

func relativeTo(workRoot, path string) string {
	rel, err := filepath.Rel(workRoot, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// providers maps dependency constraints to the VLNVs of the cores in seq that
// satisfy them, in declaration order without duplicates.
func providers(seq []*domain.Core, deps []domain.VLNV) []string {
	out := []string{}
	for _, d := range deps {
		for _, c := range seq {
			if !satisfies(c, d) {
				continue
			}
			if name := c.Name.String(); !slices.Contains(out, name) {
				out = append(out, name)
			}
			break
		}
	}
	return out
}

func satisfies(c *domain.Core, constraint domain.VLNV) bool {
	if constraint.Matches(c.Name) {
		return true
	}
	return slices.ContainsFunc(c.Virtual, constraint.Matches)
}
