package capi

import (
	_ "embed"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/zerr"
)

//go:embed schema.cue
var schemaSource string

const schemaRoot = "#Core"

// schema holds the compiled CAPI2 schema. CUE values are not safe for
// concurrent use, so validation is serialized.
type schema struct {
	mu   sync.Mutex
	ctx  *cue.Context
	root cue.Value
}

func newSchema() (*schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if v.Err() != nil {
		return nil, zerr.Wrap(v.Err(), "failed to compile core schema")
	}
	root := v.LookupPath(cue.ParsePath(schemaRoot))
	if root.Err() != nil {
		return nil, zerr.Wrap(root.Err(), "core schema definition not found")
	}
	return &schema{ctx: ctx, root: root}, nil
}

// validate checks a normalized CAPI2 document against the schema.
func (s *schema) validate(path string, doc map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.ctx.Encode(doc)
	if v.Err() != nil {
		return schemaError(path, v.Err())
	}
	if err := s.root.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return schemaError(path, err)
	}
	return nil
}

// schemaError flattens CUE errors into one ErrSchemaViolation with the
// offending field paths in dotted form.
func schemaError(path string, err error) error {
	var fields, lines []string
	for _, e := range cueerrors.Errors(err) {
		field := formatPath(cueerrors.Path(e))
		msg := e.Error()
		if field != "" {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, field), ":"))
			fields = append(fields, field)
			lines = append(lines, field+": "+msg)
		} else {
			lines = append(lines, msg)
		}
	}
	if len(lines) == 0 {
		lines = append(lines, err.Error())
	}

	out := zerr.With(domain.ErrSchemaViolation, "path", path)
	if len(fields) > 0 {
		out = zerr.With(out, "field", fields[0])
	}
	return zerr.With(out, "reason", strings.Join(lines, "; "))
}

// formatPath renders ["filesets", "rtl", "files", "0"] as "filesets.rtl.files[0]".
func formatPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
