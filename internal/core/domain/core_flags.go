package domain

import (
	"maps"
	"strconv"
	"strings"

	"go.trai.ch/corepm/internal/core/exprs"
	"go.trai.ch/zerr"
)

// NamedScript is a script resolved for a hook stage.
type NamedScript struct {
	Name string
	Script
}

// VPIEntry is a VPI library resolved for a set of flags.
type VPIEntry struct {
	Name         string
	SrcFiles     []File
	IncludeFiles []File
	Libs         []string
}

// ResolvedGenerate is a generate instance selected by the active target.
type ResolvedGenerate struct {
	Name string
	GenerateInstance
}

// TargetName returns the target evaluated for flags. Only the toplevel core
// honours the requested target; dependencies always use the default target.
func (c *Core) TargetName(flags Flags) string {
	if flags.IsToplevel() {
		if t := flags.Target(); t != "" {
			return t
		}
	}
	return DefaultTarget
}

// target resolves the target for flags. A missing target is an error for the
// toplevel core; for dependencies it yields nil and the core contributes nothing.
func (c *Core) target(flags Flags) (*Target, error) {
	name := c.TargetName(flags)
	t, ok := c.Targets[name]
	if ok {
		return t, nil
	}
	if flags.IsToplevel() {
		err := zerr.With(ErrUnknownTarget, "core", c.Name.String())
		return nil, zerr.With(err, "target", name)
	}
	return nil, nil
}

// WithTargetFlags returns flags overlaid on the default flags declared by the
// selected target. Explicit flags win.
func (c *Core) WithTargetFlags(flags Flags) Flags {
	out := make(Flags, len(flags))
	if t, ok := c.Targets[c.TargetName(flags)]; ok {
		maps.Copy(out, t.Flags)
	}
	maps.Copy(out, flags)
	return out
}

// selectedFilesets returns the fileset names of the active target in order.
func (c *Core) selectedFilesets(flags Flags) ([]string, error) {
	t, err := c.target(flags)
	if err != nil || t == nil {
		return nil, err
	}
	names, err := exprs.ExpandList(t.Filesets, flags.Active())
	if err != nil {
		return nil, zerr.With(err, "core", c.Name.String())
	}
	for _, name := range names {
		if _, ok := c.Filesets[name]; !ok {
			err := zerr.With(ErrUnknownFileset, "core", c.Name.String())
			return nil, zerr.With(err, "fileset", name)
		}
	}
	return names, nil
}

// FilesForFlags returns the files of the selected filesets, in fileset order
// then file order, with fileset defaults applied.
func (c *Core) FilesForFlags(flags Flags) ([]File, error) {
	names, err := c.selectedFilesets(flags)
	if err != nil {
		return nil, err
	}

	var files []File
	for _, name := range names {
		fs := c.Filesets[name]
		for _, f := range fs.Files {
			files = append(files, withFilesetDefaults(f, fs))
		}
	}
	return files, nil
}

func withFilesetDefaults(f File, fs *Fileset) File {
	if f.FileType == "" {
		f.FileType = fs.FileType
	}
	if f.LogicalName == "" {
		f.LogicalName = fs.LogicalName
	}
	if len(f.Tags) == 0 {
		f.Tags = append([]string(nil), fs.Tags...)
	} else {
		f.Tags = append([]string(nil), f.Tags...)
	}
	return f
}

// DependsForFlags returns the dependency constraints of the selected filesets.
// Versioned dependencies without a relation are exact.
func (c *Core) DependsForFlags(flags Flags) ([]VLNV, error) {
	names, err := c.selectedFilesets(flags)
	if err != nil {
		return nil, err
	}

	active := flags.Active()
	var deps []VLNV
	for _, name := range names {
		tokens, err := exprs.ExpandList(c.Filesets[name].Depend, active)
		if err != nil {
			return nil, zerr.With(err, "core", c.Name.String())
		}
		for _, tok := range tokens {
			v, err := ParseVLNV(tok, RelationEQ)
			if err != nil {
				return nil, zerr.With(err, "core", c.Name.String())
			}
			deps = append(deps, v)
		}
	}
	return deps, nil
}

// ParametersForFlags returns the parameters selected by the active target.
// Entries of the form "name=value" override the declared default.
func (c *Core) ParametersForFlags(flags Flags) (map[string]Parameter, error) {
	t, err := c.target(flags)
	if err != nil || t == nil {
		return map[string]Parameter{}, err
	}

	entries, err := exprs.ExpandList(t.Parameters, flags.Active())
	if err != nil {
		return nil, zerr.With(err, "core", c.Name.String())
	}

	params := make(map[string]Parameter, len(entries))
	for _, entry := range entries {
		name, value, hasValue := strings.Cut(entry, "=")
		decl, ok := c.Parameters[name]
		if !ok {
			err := zerr.With(ErrUnknownParameter, "core", c.Name.String())
			return nil, zerr.With(err, "parameter", name)
		}
		p := *decl
		if hasValue {
			converted, err := ConvertParameterValue(p.Datatype, value)
			if err != nil {
				err = zerr.With(err, "core", c.Name.String())
				return nil, zerr.With(err, "parameter", name)
			}
			p.Default = converted
		}
		params[name] = p
	}
	return params, nil
}

// ConvertParameterValue converts a textual value to the Go type of datatype.
func ConvertParameterValue(datatype, value string) (any, error) {
	var (
		out any
		err error
	)
	switch datatype {
	case DatatypeBool:
		out, err = strconv.ParseBool(value)
	case DatatypeInt:
		out, err = strconv.Atoi(value)
	case DatatypeReal:
		out, err = strconv.ParseFloat(value, 64)
	default:
		out = value
	}
	if err != nil {
		err := zerr.With(ErrInvalidParameterValue, "datatype", datatype)
		return nil, zerr.With(err, "value", value)
	}
	return out, nil
}

// ToolOptionsForFlags returns the tool selected for flags and its options.
// The requested tool wins over the target default.
func (c *Core) ToolOptionsForFlags(flags Flags) (string, map[string]any, error) {
	t, err := c.target(flags)
	if err != nil {
		return "", nil, err
	}

	tool := flags.Tool()
	if tool == "" && t != nil {
		tool = t.DefaultTool
	}
	if t == nil || tool == "" {
		return tool, map[string]any{}, nil
	}

	opts := make(map[string]any, len(t.Tools[tool]))
	maps.Copy(opts, t.Tools[tool])
	return tool, opts, nil
}

// HooksForFlags returns the scripts attached to each hook stage.
func (c *Core) HooksForFlags(flags Flags) (map[string][]NamedScript, error) {
	hooks := map[string][]NamedScript{}
	t, err := c.target(flags)
	if err != nil || t == nil {
		return hooks, err
	}

	active := flags.Active()
	for _, stage := range HookStages {
		names, err := exprs.ExpandList(t.Hooks[stage], active)
		if err != nil {
			return nil, zerr.With(err, "core", c.Name.String())
		}
		for _, name := range names {
			s, ok := c.Scripts[name]
			if !ok {
				err := zerr.With(ErrUnknownScript, "core", c.Name.String())
				return nil, zerr.With(err, "script", name)
			}
			hooks[stage] = append(hooks[stage], NamedScript{Name: name, Script: *s})
		}
	}
	return hooks, nil
}

// VPIForFlags returns the VPI libraries selected by the active target.
func (c *Core) VPIForFlags(flags Flags) ([]VPIEntry, error) {
	t, err := c.target(flags)
	if err != nil || t == nil {
		return nil, err
	}

	names, err := exprs.ExpandList(t.VPI, flags.Active())
	if err != nil {
		return nil, zerr.With(err, "core", c.Name.String())
	}

	entries := make([]VPIEntry, 0, len(names))
	for _, name := range names {
		lib, ok := c.VPI[name]
		if !ok {
			err := zerr.With(ErrUnknownVPI, "core", c.Name.String())
			return nil, zerr.With(err, "vpi", name)
		}
		entry := VPIEntry{Name: name, Libs: append([]string(nil), lib.Libs...)}
		for _, fsName := range lib.Filesets {
			fs, ok := c.Filesets[fsName]
			if !ok {
				err := zerr.With(ErrUnknownFileset, "core", c.Name.String())
				return nil, zerr.With(err, "fileset", fsName)
			}
			for _, f := range fs.Files {
				f = withFilesetDefaults(f, fs)
				if f.IsIncludeFile {
					entry.IncludeFiles = append(entry.IncludeFiles, f)
				} else {
					entry.SrcFiles = append(entry.SrcFiles, f)
				}
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ToplevelForFlags returns the toplevel module name(s) of the active target.
func (c *Core) ToplevelForFlags(flags Flags) (string, error) {
	t, err := c.target(flags)
	if err != nil || t == nil {
		return "", err
	}
	top, err := exprs.Expand(t.Toplevel, flags.Active())
	if err != nil {
		return "", zerr.With(err, "core", c.Name.String())
	}
	return top, nil
}

// GenerateForFlags returns the generate instances selected by the active target.
func (c *Core) GenerateForFlags(flags Flags) ([]ResolvedGenerate, error) {
	t, err := c.target(flags)
	if err != nil || t == nil {
		return nil, err
	}

	names, err := exprs.ExpandList(t.Generate, flags.Active())
	if err != nil {
		return nil, zerr.With(err, "core", c.Name.String())
	}

	out := make([]ResolvedGenerate, 0, len(names))
	for _, name := range names {
		g, ok := c.Generate[name]
		if !ok {
			err := zerr.With(ErrUnknownGenerator, "core", c.Name.String())
			return nil, zerr.With(err, "generate", name)
		}
		out = append(out, ResolvedGenerate{Name: name, GenerateInstance: *g})
	}
	return out, nil
}
