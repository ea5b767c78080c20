package capi

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// report collects non-fatal findings while decoding one description.
type report struct {
	path     string
	warnings []string
}

func (r *report) unknown(where, key string) {
	r.warnings = append(r.warnings, "unknown key "+where+"."+key)
}

func (r *report) warn(msg string) {
	r.warnings = append(r.warnings, msg)
}

// fieldDecoder decodes one key of a section into dst.
type fieldDecoder[T any] func(r *report, field string, dst *T, v any) error

// fieldTable maps the keys of a section to their decoders.
type fieldTable[T any] map[string]fieldDecoder[T]

// decode applies table to raw. Keys without a decoder produce a warning.
func (table fieldTable[T]) decode(r *report, where string, raw map[string]any, dst *T) error {
	for _, k := range sortedKeys(raw) {
		dec, ok := table[k]
		if !ok {
			r.unknown(where, k)
			continue
		}
		if err := dec(r, where+"."+k, dst, raw[k]); err != nil {
			return err
		}
	}
	return nil
}

func stringField[T any](set func(*T, string)) fieldDecoder[T] {
	return func(r *report, field string, dst *T, v any) error {
		s, err := asString(r.path, field, v)
		if err != nil {
			return err
		}
		set(dst, s)
		return nil
	}
}

func listField[T any](set func(*T, []string)) fieldDecoder[T] {
	return func(r *report, field string, dst *T, v any) error {
		l, err := asStringList(r.path, field, v)
		if err != nil {
			return err
		}
		set(dst, l)
		return nil
	}
}

func mapField[T any](set func(*T, map[string]any)) fieldDecoder[T] {
	return func(r *report, field string, dst *T, v any) error {
		m, err := asMap(r.path, field, v)
		if err != nil {
			return err
		}
		set(dst, m)
		return nil
	}
}

func fileTypeField[T any](set func(*T, string)) fieldDecoder[T] {
	return func(r *report, field string, dst *T, v any) error {
		s, err := asString(r.path, field, v)
		if err != nil {
			return err
		}
		if err := domain.ValidateFileType(s); err != nil {
			r.warn("unknown file type " + s + " at " + field)
		}
		set(dst, s)
		return nil
	}
}

var fileFields = fieldTable[domain.File]{
	"file_type":    fileTypeField(func(f *domain.File, s string) { f.FileType = s }),
	"logical_name": stringField(func(f *domain.File, s string) { f.LogicalName = s }),
	"copyto":       stringField(func(f *domain.File, s string) { f.CopyTo = s }),
	"tags":         listField(func(f *domain.File, l []string) { f.Tags = l }),
	"is_include_file": func(r *report, field string, f *domain.File, v any) error {
		b, err := asBool(r.path, field, v)
		f.IsIncludeFile = b
		return err
	},
}

var filesetFields = fieldTable[domain.Fileset]{
	"files":        decodeFiles,
	"file_type":    fileTypeField(func(fs *domain.Fileset, s string) { fs.FileType = s }),
	"logical_name": stringField(func(fs *domain.Fileset, s string) { fs.LogicalName = s }),
	"tags":         listField(func(fs *domain.Fileset, l []string) { fs.Tags = l }),
	"depend":       listField(func(fs *domain.Fileset, l []string) { fs.Depend = l }),
}

var targetFields = fieldTable[domain.Target]{
	"description":  stringField(func(t *domain.Target, s string) { t.Description = s }),
	"filesets":     listField(func(t *domain.Target, l []string) { t.Filesets = l }),
	"parameters":   listField(func(t *domain.Target, l []string) { t.Parameters = l }),
	"generate":     listField(func(t *domain.Target, l []string) { t.Generate = l }),
	"vpi":          listField(func(t *domain.Target, l []string) { t.VPI = l }),
	"default_tool": stringField(func(t *domain.Target, s string) { t.DefaultTool = s }),
	"flags":        mapField(func(t *domain.Target, m map[string]any) { t.Flags = m }),
	"toplevel": func(r *report, field string, t *domain.Target, v any) error {
		l, err := asStringList(r.path, field, v)
		t.Toplevel = strings.Join(l, " ")
		return err
	},
	"tools": func(r *report, field string, t *domain.Target, v any) error {
		m, err := asMap(r.path, field, v)
		if err != nil {
			return err
		}
		t.Tools = make(map[string]map[string]any, len(m))
		for _, tool := range sortedKeys(m) {
			opts, err := asMap(r.path, field+"."+tool, m[tool])
			if err != nil {
				return err
			}
			t.Tools[tool] = opts
		}
		return nil
	},
	"hooks": func(r *report, field string, t *domain.Target, v any) error {
		m, err := asMap(r.path, field, v)
		if err != nil {
			return err
		}
		t.Hooks = make(map[string][]string, len(m))
		for _, stage := range sortedKeys(m) {
			if !slices.Contains(domain.HookStages, stage) {
				r.unknown(field, stage)
				continue
			}
			l, err := asStringList(r.path, field+"."+stage, m[stage])
			if err != nil {
				return err
			}
			t.Hooks[stage] = l
		}
		return nil
	},
}

var parameterFields = fieldTable[domain.Parameter]{
	"datatype":    stringField(func(p *domain.Parameter, s string) { p.Datatype = s }),
	"description": stringField(func(p *domain.Parameter, s string) { p.Description = s }),
	"paramtype":   stringField(func(p *domain.Parameter, s string) { p.Paramtype = s }),
	"default": func(_ *report, _ string, p *domain.Parameter, v any) error {
		p.Default = v
		return nil
	},
}

var generateFields = fieldTable[domain.GenerateInstance]{
	"generator":  stringField(func(g *domain.GenerateInstance, s string) { g.Generator = s }),
	"position":   stringField(func(g *domain.GenerateInstance, s string) { g.Position = s }),
	"parameters": mapField(func(g *domain.GenerateInstance, m map[string]any) { g.Parameters = m }),
}

var generatorFields = fieldTable[domain.Generator]{
	"command":     stringField(func(g *domain.Generator, s string) { g.Command = s }),
	"interpreter": stringField(func(g *domain.Generator, s string) { g.Interpreter = s }),
	"cache_type":  stringField(func(g *domain.Generator, s string) { g.CacheType = s }),
	"description": stringField(func(g *domain.Generator, s string) { g.Description = s }),
	"file_input_parameters": func(r *report, field string, g *domain.Generator, v any) error {
		l, err := asWords(r.path, field, v)
		g.FileInputParameters = l
		return err
	},
}

var scriptFields = fieldTable[domain.Script]{
	"cmd":      listField(func(s *domain.Script, l []string) { s.Cmd = l }),
	"filesets": listField(func(s *domain.Script, l []string) { s.Filesets = l }),
	"env": func(r *report, field string, s *domain.Script, v any) error {
		m, err := asMap(r.path, field, v)
		if err != nil {
			return err
		}
		s.Env = make(map[string]string, len(m))
		for _, k := range sortedKeys(m) {
			val, err := asString(r.path, field+"."+k, m[k])
			if err != nil {
				return err
			}
			s.Env[k] = val
		}
		return nil
	},
}

var vpiFields = fieldTable[domain.VPILibrary]{
	"filesets": listField(func(l *domain.VPILibrary, v []string) { l.Filesets = v }),
	"libs":     listField(func(l *domain.VPILibrary, v []string) { l.Libs = v }),
}

// sectionDecoders holds the decoders of every accepted top-level key.
// A key missing here is a schema violation.
var sectionDecoders = map[string]func(r *report, c *domain.Core, v any) error{
	"name": func(r *report, c *domain.Core, v any) error {
		s, err := asString(r.path, "name", v)
		if err != nil {
			return err
		}
		c.Name, err = domain.ParseVLNV(s, domain.RelationEQ)
		if err != nil {
			return zerr.With(err, "path", r.path)
		}
		return nil
	},
	"description": func(r *report, c *domain.Core, v any) error {
		s, err := asString(r.path, "description", v)
		c.Description = s
		return err
	},
	"provider": func(r *report, c *domain.Core, v any) error {
		m, err := asMap(r.path, "provider", v)
		c.Provider = m
		return err
	},
	"virtual": func(r *report, c *domain.Core, v any) error {
		l, err := asStringList(r.path, "virtual", v)
		if err != nil {
			return err
		}
		for _, tok := range l {
			vl, err := domain.ParseVLNV(tok, domain.RelationEQ)
			if err != nil {
				return zerr.With(err, "path", r.path)
			}
			c.Virtual = append(c.Virtual, vl)
		}
		return nil
	},
	"filesets": func(r *report, c *domain.Core, v any) error {
		var err error
		c.Filesets, err = decodeNamed(r, "filesets", v, filesetFields)
		return err
	},
	"targets": func(r *report, c *domain.Core, v any) error {
		var err error
		c.Targets, err = decodeNamed(r, "targets", v, targetFields)
		return err
	},
	"parameters": func(r *report, c *domain.Core, v any) error {
		var err error
		c.Parameters, err = decodeNamed(r, "parameters", v, parameterFields)
		if err != nil {
			return err
		}
		for _, name := range sortedKeys(c.Parameters) {
			if err := coerceDefault(r, name, c.Parameters[name]); err != nil {
				return err
			}
		}
		return nil
	},
	"generate": func(r *report, c *domain.Core, v any) error {
		var err error
		c.Generate, err = decodeNamed(r, "generate", v, generateFields)
		for _, g := range c.Generate {
			if g.Position == "" {
				g.Position = domain.PositionAppend
			}
		}
		return err
	},
	"generators": func(r *report, c *domain.Core, v any) error {
		var err error
		c.Generators, err = decodeNamed(r, "generators", v, generatorFields)
		for _, g := range c.Generators {
			if g.CacheType == "" {
				g.CacheType = domain.CacheNone
			}
		}
		return err
	},
	"scripts": func(r *report, c *domain.Core, v any) error {
		var err error
		c.Scripts, err = decodeNamed(r, "scripts", v, scriptFields)
		return err
	},
	"vpi": func(r *report, c *domain.Core, v any) error {
		var err error
		c.VPI, err = decodeNamed(r, "vpi", v, vpiFields)
		return err
	},
}

// decodeNamed decodes a mapping of named entries with table.
func decodeNamed[T any](r *report, section string, v any, table fieldTable[T]) (map[string]*T, error) {
	m, err := asMap(r.path, section, v)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*T, len(m))
	for _, name := range sortedKeys(m) {
		where := section + "." + name
		raw, err := asMap(r.path, where, m[name])
		if err != nil {
			return nil, err
		}
		dst := new(T)
		if err := table.decode(r, where, raw, dst); err != nil {
			return nil, err
		}
		out[name] = dst
	}
	return out, nil
}

func decodeFiles(r *report, field string, fs *domain.Fileset, v any) error {
	entries, ok := v.([]any)
	if !ok {
		return violation(r.path, field, "expected a list of files")
	}
	fs.Files = make([]domain.File, 0, len(entries))
	for _, entry := range entries {
		switch e := entry.(type) {
		case string:
			fs.Files = append(fs.Files, domain.File{Name: e})
		case map[string]any:
			if len(e) != 1 {
				return violation(r.path, field, "file entry must have exactly one name")
			}
			for name, attrs := range e {
				f := domain.File{Name: name}
				m, err := asMap(r.path, field+"."+name, attrs)
				if err != nil {
					return err
				}
				if err := fileFields.decode(r, field+"."+name, m, &f); err != nil {
					return err
				}
				fs.Files = append(fs.Files, f)
			}
		default:
			return violation(r.path, field, "expected a file name")
		}
	}
	return nil
}

func coerceDefault(r *report, name string, p *domain.Parameter) error {
	s, ok := p.Default.(string)
	if !ok || p.Datatype == domain.DatatypeStr || p.Datatype == domain.DatatypeFile {
		return nil
	}
	v, err := domain.ConvertParameterValue(p.Datatype, s)
	if err != nil {
		err = zerr.With(err, "path", r.path)
		return zerr.With(err, "parameter", name)
	}
	p.Default = v
	return nil
}

// parseCAPI2 decodes a YAML description: append overlays are merged, the
// document is validated against the schema and then decoded section by section.
func (p *Parser) parseCAPI2(path string, data []byte) (*domain.Core, []string, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		err = errors.Join(domain.ErrSchemaViolation, err)
		return nil, nil, zerr.With(err, "path", path)
	}
	doc, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, nil, violation(path, "", "expected a mapping at the top level")
	}
	delete(doc, capi2Key)

	merged, err := mergeAppends(path, doc)
	if err != nil {
		return nil, nil, err
	}
	doc = merged.(map[string]any) //nolint:forcetypeassert // mergeAppends preserves the shape

	for _, k := range sortedKeys(doc) {
		if _, ok := sectionDecoders[k]; !ok {
			return nil, nil, violation(path, k, "unknown top-level key")
		}
	}

	if err := p.schema.validate(path, doc); err != nil {
		return nil, nil, err
	}

	r := &report{path: path}
	c := &domain.Core{
		Path:      path,
		FilesRoot: filepath.Dir(path),
		CAPI:      2,
	}
	for _, k := range sortedKeys(doc) {
		if err := sectionDecoders[k](r, c, doc[k]); err != nil {
			return nil, nil, err
		}
	}
	for _, g := range c.Generators {
		g.Root = c.FilesRoot
		g.Owner = c.Name
	}
	return c, r.warnings, nil
}
