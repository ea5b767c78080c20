package capi

import (
	"errors"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/ini.v1"
)

// Targets synthesized for section-style descriptions.
const (
	capi1TargetSim   = "sim"
	capi1TargetSynth = "synth"
	mainDependSet    = "main_depend"
)

var capi1ToolSections = map[string]struct{}{
	"icarus":     {},
	"modelsim":   {},
	"verilator":  {},
	"ghdl":       {},
	"isim":       {},
	"xsim":       {},
	"rivierapro": {},
	"xcelium":    {},
	"quartus":    {},
	"vivado":     {},
	"ise":        {},
	"icestorm":   {},
}

// capi1Scripts maps script keys to the hook stage they run in.
var capi1Scripts = map[string]string{
	"pre_build_scripts": domain.HookPreBuild,
	"pre_synth_scripts": domain.HookPreBuild,
	"post_impl_scripts": domain.HookPostBuild,
	"pre_run_scripts":   domain.HookPreRun,
	"post_run_scripts":  domain.HookPostRun,
}

// capi1Fileset is a fileset together with the section-level attributes
// that decide which synthesized targets include it.
type capi1Fileset struct {
	name    string
	usage   []string
	private bool
}

type capi1Builder struct {
	r        *report
	core     *domain.Core
	order    []capi1Fileset
	depend   []string
	sims     []string
	backend  string
	toplevel string
	params   []string
	private  map[string]bool
	tools    map[string]map[string]any
	toolDeps []string
	hooks    map[string][]string
}

type sectionKeys[T any] map[string]func(b *capi1Builder, dst *T, value string) error

// apply decodes every key of sec with keys. Unknown keys produce a warning.
func (keys sectionKeys[T]) apply(b *capi1Builder, sec *ini.Section, dst *T) error {
	for _, key := range sec.Keys() {
		dec, ok := keys[key.Name()]
		if !ok {
			b.r.unknown(sec.Name(), key.Name())
			continue
		}
		if err := dec(b, dst, key.String()); err != nil {
			return err
		}
	}
	return nil
}

var mainKeys = sectionKeys[domain.Core]{
	"name": func(b *capi1Builder, c *domain.Core, s string) error {
		v, err := domain.ParseVLNV(strings.TrimSpace(s), domain.RelationEQ)
		if err != nil {
			return zerr.With(err, "path", b.r.path)
		}
		c.Name = v
		return nil
	},
	"description": func(_ *capi1Builder, c *domain.Core, s string) error {
		c.Description = s
		return nil
	},
	"depend": func(b *capi1Builder, _ *domain.Core, s string) error {
		b.depend = strings.Fields(s)
		return nil
	},
	"simulators": func(b *capi1Builder, _ *domain.Core, s string) error {
		b.sims = strings.Fields(s)
		return nil
	},
	"backend": func(b *capi1Builder, _ *domain.Core, s string) error {
		b.backend = strings.TrimSpace(s)
		return nil
	},
}

type filesetSection struct {
	set     domain.Fileset
	include bool
	meta    capi1Fileset
}

var filesetKeys = sectionKeys[filesetSection]{
	"files": func(b *capi1Builder, fs *filesetSection, s string) error {
		files, err := parseCAPI1Files(b.r.path, s)
		fs.set.Files = files
		return err
	},
	"file_type": func(b *capi1Builder, fs *filesetSection, s string) error {
		fs.set.FileType = strings.TrimSpace(s)
		if err := domain.ValidateFileType(fs.set.FileType); err != nil {
			b.r.warn("unknown file type " + fs.set.FileType + " in fileset " + fs.meta.name)
		}
		return nil
	},
	"logical_name": func(_ *capi1Builder, fs *filesetSection, s string) error {
		fs.set.LogicalName = strings.TrimSpace(s)
		return nil
	},
	"usage": func(_ *capi1Builder, fs *filesetSection, s string) error {
		fs.meta.usage = strings.Fields(s)
		return nil
	},
	"scope": func(b *capi1Builder, fs *filesetSection, s string) error {
		switch strings.TrimSpace(s) {
		case "private":
			fs.meta.private = true
		case "public", "":
		default:
			return violation(b.r.path, "fileset "+fs.meta.name+".scope", "expected public or private")
		}
		return nil
	},
	"is_include_file": func(b *capi1Builder, fs *filesetSection, s string) error {
		v, err := asBool(b.r.path, "fileset "+fs.meta.name+".is_include_file", strings.TrimSpace(s))
		fs.include = v
		return err
	},
}

type parameterSection struct {
	param   domain.Parameter
	private bool
	raw     string
	hasRaw  bool
}

var parameterKeys = sectionKeys[parameterSection]{
	"datatype": func(_ *capi1Builder, p *parameterSection, s string) error {
		p.param.Datatype = strings.TrimSpace(s)
		return nil
	},
	"default": func(_ *capi1Builder, p *parameterSection, s string) error {
		p.raw, p.hasRaw = s, true
		return nil
	},
	"description": func(_ *capi1Builder, p *parameterSection, s string) error {
		p.param.Description = s
		return nil
	},
	"paramtype": func(_ *capi1Builder, p *parameterSection, s string) error {
		p.param.Paramtype = strings.TrimSpace(s)
		return nil
	},
	"scope": func(_ *capi1Builder, p *parameterSection, s string) error {
		p.private = strings.TrimSpace(s) == "private"
		return nil
	},
}

// languageSet is one fileset derived from a language section key.
type languageSet struct {
	key     string
	usage   []string
	include bool
	private bool
}

var languageSections = map[string]struct {
	fileType string
	sets     []languageSet
}{
	"verilog": {
		fileType: "verilogSource",
		sets: []languageSet{
			{key: "src_files", usage: []string{"sim", "synth"}},
			{key: "include_files", usage: []string{"sim", "synth"}, include: true},
			{key: "tb_src_files", usage: []string{"sim"}},
			{key: "tb_include_files", usage: []string{"sim"}, include: true},
			{key: "tb_private_src_files", usage: []string{"sim"}, private: true},
		},
	},
	"vhdl": {
		fileType: "vhdlSource",
		sets: []languageSet{
			{key: "src_files", usage: []string{"sim", "synth"}},
		},
	},
}

// parseCAPI1 decodes a section-style description and synthesizes the
// filesets and targets a structured description would declare.
func (p *Parser) parseCAPI1(path string, data []byte) (*domain.Core, []string, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		SpaceBeforeInlineComment:   true,
		KeyValueDelimiters:         "=",
	}, data)
	if err != nil {
		err = errors.Join(domain.ErrSchemaViolation, err)
		return nil, nil, zerr.With(err, "path", path)
	}

	b := &capi1Builder{
		r: &report{path: path},
		core: &domain.Core{
			Path:       path,
			FilesRoot:  filepath.Dir(path),
			CAPI:       1,
			Filesets:   map[string]*domain.Fileset{},
			Parameters: map[string]*domain.Parameter{},
			Scripts:    map[string]*domain.Script{},
		},
		private: map[string]bool{},
		tools:   map[string]map[string]any{},
		hooks:   map[string][]string{},
	}

	for _, sec := range f.Sections() {
		if err := b.section(sec); err != nil {
			return nil, nil, err
		}
	}

	if b.core.Name.Name == "" {
		base := strings.TrimSuffix(filepath.Base(path), domain.CoreFileExt)
		b.core.Name, err = domain.ParseVLNV(base, domain.RelationEQ)
		if err != nil {
			return nil, nil, zerr.With(err, "path", path)
		}
	}

	b.finish()
	return b.core, b.r.warnings, nil
}

func (b *capi1Builder) section(sec *ini.Section) error {
	name := sec.Name()
	switch {
	case name == ini.DefaultSection:
		for _, key := range sec.Keys() {
			if key.Name() != "CAPI" {
				b.r.unknown("preamble", key.Name())
			}
		}
		return nil
	case name == "main":
		return mainKeys.apply(b, sec, b.core)
	case name == "provider":
		b.core.Provider = map[string]any{}
		for _, key := range sec.Keys() {
			b.core.Provider[key.Name()] = key.String()
		}
		return nil
	case name == "simulator":
		for _, key := range sec.Keys() {
			if key.Name() != "toplevel" {
				b.r.unknown(name, key.Name())
				continue
			}
			b.toplevel = strings.TrimSpace(key.String())
		}
		return nil
	case name == "scripts":
		return b.scripts(sec)
	case strings.HasPrefix(name, "fileset "):
		return b.fileset(strings.TrimSpace(strings.TrimPrefix(name, "fileset ")), sec)
	case strings.HasPrefix(name, "parameter "):
		return b.parameter(strings.TrimSpace(strings.TrimPrefix(name, "parameter ")), sec)
	}

	if lang, ok := languageSections[name]; ok {
		return b.language(name, lang.fileType, lang.sets, sec)
	}
	if _, ok := capi1ToolSections[name]; ok {
		b.tool(name, sec)
		return nil
	}
	b.r.warn("unknown section " + name)
	return nil
}

func (b *capi1Builder) fileset(name string, sec *ini.Section) error {
	fs := &filesetSection{meta: capi1Fileset{name: name}}
	if err := filesetKeys.apply(b, sec, fs); err != nil {
		return err
	}
	if fs.include {
		for i := range fs.set.Files {
			fs.set.Files[i].IsIncludeFile = true
		}
	}
	b.addFileset(fs.meta, &fs.set)
	return nil
}

func (b *capi1Builder) addFileset(meta capi1Fileset, set *domain.Fileset) {
	b.core.Filesets[meta.name] = set
	b.order = append(b.order, meta)
}

func (b *capi1Builder) language(section, fileType string, sets []languageSet, sec *ini.Section) error {
	if sec.HasKey("file_type") {
		fileType = strings.TrimSpace(sec.Key("file_type").String())
	}

	known := map[string]bool{"file_type": true}
	for _, ls := range sets {
		known[ls.key] = true
		if !sec.HasKey(ls.key) {
			continue
		}
		files, err := parseCAPI1Files(b.r.path, sec.Key(ls.key).String())
		if err != nil {
			return err
		}
		if ls.include {
			for i := range files {
				files[i].IsIncludeFile = true
			}
		}
		b.addFileset(
			capi1Fileset{name: section + "_" + ls.key, usage: ls.usage, private: ls.private},
			&domain.Fileset{Files: files, FileType: fileType},
		)
	}
	for _, key := range sec.Keys() {
		if !known[key.Name()] {
			b.r.unknown(section, key.Name())
		}
	}
	return nil
}

func (b *capi1Builder) parameter(name string, sec *ini.Section) error {
	ps := &parameterSection{}
	if err := parameterKeys.apply(b, sec, ps); err != nil {
		return err
	}
	if ps.param.Datatype == "" {
		b.r.warn("parameter " + name + " has no datatype, assuming str")
		ps.param.Datatype = domain.DatatypeStr
	}
	if ps.hasRaw {
		v, err := domain.ConvertParameterValue(ps.param.Datatype, strings.TrimSpace(ps.raw))
		if err != nil {
			err = zerr.With(err, "path", b.r.path)
			return zerr.With(err, "parameter", name)
		}
		ps.param.Default = v
	}
	b.core.Parameters[name] = &ps.param
	b.params = append(b.params, name)
	b.private[name] = ps.private
	return nil
}

func (b *capi1Builder) scripts(sec *ini.Section) error {
	for _, key := range sec.Keys() {
		stage, ok := capi1Scripts[key.Name()]
		if !ok {
			b.r.unknown(sec.Name(), key.Name())
			continue
		}
		for _, script := range strings.Fields(key.String()) {
			b.core.Scripts[script] = &domain.Script{Cmd: []string{script}}
			b.hooks[stage] = append(b.hooks[stage], script)
		}
	}
	return nil
}

func (b *capi1Builder) tool(name string, sec *ini.Section) {
	opts := map[string]any{}
	for _, key := range sec.Keys() {
		if key.Name() == "depend" {
			setName := name + "_depend"
			b.core.Filesets[setName] = &domain.Fileset{Depend: strings.Fields(key.String())}
			b.toolDeps = append(b.toolDeps, "tool_"+name+"? ("+setName+")")
			continue
		}
		words := strings.Fields(key.String())
		list := make([]any, len(words))
		for i, w := range words {
			list[i] = w
		}
		opts[key.Name()] = list
	}
	b.tools[name] = opts
}

// finish synthesizes the targets. The default target carries every fileset;
// sim and synth carry the filesets whose usage names them.
func (b *capi1Builder) finish() {
	if len(b.depend) > 0 {
		b.core.Filesets[mainDependSet] = &domain.Fileset{Depend: b.depend}
	}

	params := make([]string, 0, len(b.params))
	for _, name := range b.params {
		params = append(params, guard(name, b.private[name]))
	}

	b.core.Targets = map[string]*domain.Target{
		domain.DefaultTarget: b.target("", params),
	}
	if len(b.sims) > 0 || slices.ContainsFunc(b.order, func(f capi1Fileset) bool { return slices.Contains(f.usage, "sim") }) {
		t := b.target(capi1TargetSim, params)
		if len(b.sims) > 0 {
			t.DefaultTool = b.sims[0]
		}
		t.Toplevel = b.toplevel
		b.core.Targets[capi1TargetSim] = t
	}
	if b.backend != "" {
		t := b.target(capi1TargetSynth, params)
		t.DefaultTool = b.backend
		b.core.Targets[capi1TargetSynth] = t
	}
}

func (b *capi1Builder) target(usage string, params []string) *domain.Target {
	t := &domain.Target{Parameters: slices.Clone(params)}
	if len(b.depend) > 0 {
		t.Filesets = append(t.Filesets, mainDependSet)
	}
	for _, fs := range b.order {
		if usage != "" && len(fs.usage) > 0 && !slices.Contains(fs.usage, usage) {
			continue
		}
		t.Filesets = append(t.Filesets, guard(fs.name, fs.private))
	}
	t.Filesets = append(t.Filesets, b.toolDeps...)

	if len(b.tools) > 0 {
		t.Tools = maps.Clone(b.tools)
	}
	if len(b.hooks) > 0 {
		t.Hooks = make(map[string][]string, len(b.hooks))
		for stage, names := range b.hooks {
			t.Hooks[stage] = slices.Clone(names)
		}
	}
	return t
}

// guard restricts a private entry to the toplevel core.
func guard(name string, private bool) string {
	if private {
		return "is_toplevel? (" + name + ")"
	}
	return name
}

// parseCAPI1Files splits a files value into entries. Attributes follow the
// name in brackets: "defs.vh[is_include_file,file_type=verilogSource]".
func parseCAPI1Files(path, value string) ([]domain.File, error) {
	var files []domain.File
	for _, tok := range strings.Fields(value) {
		name, attrs, hasAttrs := strings.Cut(tok, "[")
		f := domain.File{Name: name}
		if hasAttrs {
			body, ok := strings.CutSuffix(attrs, "]")
			if !ok {
				return nil, violation(path, tok, "unterminated file attributes")
			}
			for _, attr := range strings.Split(body, ",") {
				key, val, _ := strings.Cut(attr, "=")
				switch strings.TrimSpace(key) {
				case "is_include_file":
					f.IsIncludeFile = val == "" || val == "true"
				case "file_type":
					f.FileType = val
				case "logical_name":
					f.LogicalName = val
				case "copyto":
					f.CopyTo = val
				default:
					return nil, violation(path, tok, "unknown file attribute "+key)
				}
			}
		}
		files = append(files, f)
	}
	return files, nil
}
