package domain

import (
	"maps"
	"strings"
)

// Well-known flag names.
const (
	FlagTarget     = "target"
	FlagTool       = "tool"
	FlagIsToplevel = "is_toplevel"

	DefaultTarget = "default"
)

// Flags is the mapping of flag names to values that drives conditional
// selection inside core descriptions. Values are either bool or string.
type Flags map[string]any

// ParseFlag parses a command line flag in the form "name" or "name=value".
// A bare name, "true" and "false" produce booleans.
func ParseFlag(s string) (string, any) {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return name, true
	}
	switch value {
	case "true":
		return name, true
	case "false":
		return name, false
	default:
		return name, value
	}
}

// With returns a copy of f with name set to value.
func (f Flags) With(name string, value any) Flags {
	out := make(Flags, len(f)+1)
	maps.Copy(out, f)
	out[name] = value
	return out
}

// String returns the string value of name, or "" when unset or not a string.
func (f Flags) String(name string) string {
	s, _ := f[name].(string)
	return s
}

// Bool returns the boolean value of name, or false when unset or not a bool.
func (f Flags) Bool(name string) bool {
	b, _ := f[name].(bool)
	return b
}

// Target returns the requested target name.
func (f Flags) Target() string {
	return f.String(FlagTarget)
}

// Tool returns the requested tool name.
func (f Flags) Tool() string {
	return f.String(FlagTool)
}

// IsToplevel reports whether the flags are evaluated for the toplevel core.
func (f Flags) IsToplevel() bool {
	return f.Bool(FlagIsToplevel)
}

// Active returns the set of flag names visible to expressions: true booleans
// under their own name and non-empty strings as "name_value".
func (f Flags) Active() map[string]bool {
	active := make(map[string]bool, len(f))
	for name, value := range f {
		switch v := value.(type) {
		case bool:
			if v {
				active[name] = true
			}
		case string:
			if v != "" {
				active[name+"_"+v] = true
			}
		}
	}
	return active
}
