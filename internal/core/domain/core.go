package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// Hook stages understood by the manifest.
const (
	HookPreBuild  = "pre_build"
	HookPostBuild = "post_build"
	HookPreRun    = "pre_run"
	HookPostRun   = "post_run"
)

// HookStages lists the hook stages in execution order.
var HookStages = []string{HookPreBuild, HookPostBuild, HookPreRun, HookPostRun}

// Parameter datatypes.
const (
	DatatypeBool = "bool"
	DatatypeInt  = "int"
	DatatypeStr  = "str"
	DatatypeFile = "file"
	DatatypeReal = "real"
)

// Generator cache policies.
const (
	CacheNone      = "none"
	CacheInput     = "input"
	CacheGenerator = "generator"
)

// Splice positions for generated cores.
const (
	PositionFirst   = "first"
	PositionPrepend = "prepend"
	PositionAppend  = "append"
	PositionLast    = "last"
)

var knownFileTypes = map[string]struct{}{
	"verilogSource":       {},
	"systemVerilogSource": {},
	"vhdlSource":          {},
	"cSource":             {},
	"cppSource":           {},
	"tclSource":           {},
	"pythonSource":        {},
	"xci":                 {},
	"xdc":                 {},
	"sdc":                 {},
	"SDC":                 {},
	"pcf":                 {},
	"PCF":                 {},
	"ucf":                 {},
	"UCF":                 {},
	"qip":                 {},
	"QIP":                 {},
	"QSYS":                {},
	"lpf":                 {},
	"LPF":                 {},
	"verilatorConf":       {},
	"vlt":                 {},
	"bsv":                 {},
	"veribleLintRules":    {},
	"yosys":               {},
	"edif":                {},
	"user":                {},
}

// ValidateFileType checks a file type against the known set. Versioned forms
// such as "verilogSource-2005" or "vhdlSource-2008" validate on their base
// name. The empty type is allowed and means "untyped".
func ValidateFileType(fileType string) error {
	if fileType == "" {
		return nil
	}
	base, _, _ := strings.Cut(fileType, "-")
	if _, ok := knownFileTypes[base]; !ok {
		return zerr.With(ErrUnknownFileType, "file_type", fileType)
	}
	return nil
}

// Core is a parsed core description. Cores are immutable after parsing and
// may be shared between goroutines.
type Core struct {
	Name        VLNV
	Description string
	// Path is the absolute path of the description file.
	Path string
	// FilesRoot is the directory relative file names resolve against.
	FilesRoot string
	// CAPI is the description format version (1 or 2).
	CAPI int
	// Generated marks cores produced by a generator.
	Generated bool

	Provider   map[string]any
	Virtual    []VLNV
	Filesets   map[string]*Fileset
	Targets    map[string]*Target
	Parameters map[string]*Parameter
	Generate   map[string]*GenerateInstance
	Generators map[string]*Generator
	Scripts    map[string]*Script
	VPI        map[string]*VPILibrary
}

// File is a single entry of a fileset.
type File struct {
	Name          string   `yaml:"name"`
	FileType      string   `yaml:"file_type,omitempty"`
	IsIncludeFile bool     `yaml:"is_include_file,omitempty"`
	LogicalName   string   `yaml:"logical_name,omitempty"`
	CopyTo        string   `yaml:"copyto,omitempty"`
	Tags          []string `yaml:"tags,omitempty"`
}

// Fileset groups files with shared defaults and the dependencies they bring in.
type Fileset struct {
	Files       []File
	FileType    string
	LogicalName string
	Tags        []string
	// Depend holds dependency expressions; each may expand to several VLNV tokens.
	Depend []string
}

// Target selects filesets, parameters and tool options for one use of a core.
// List fields hold flag expressions.
type Target struct {
	Description string
	Filesets    []string
	Parameters  []string
	Generate    []string
	VPI         []string
	Toplevel    string
	DefaultTool string
	Tools       map[string]map[string]any
	// Hooks maps a hook stage to script name expressions.
	Hooks map[string][]string
	// Flags are default flag values applied when the target is selected.
	Flags map[string]any
}

// Parameter is a typed value passed to the tool flow.
type Parameter struct {
	Datatype    string
	Default     any
	Description string
	Paramtype   string
}

// GenerateInstance is a request to run a generator with parameters.
type GenerateInstance struct {
	Generator  string
	Parameters map[string]any
	Position   string
}

// Generator is an external program registered by a core.
type Generator struct {
	Command             string
	Interpreter         string
	CacheType           string
	FileInputParameters []string
	Description         string
	// Root is the directory of the core that defines the generator.
	Root string
	// Owner is the core that defines the generator.
	Owner VLNV
}

// Script is a command that can be attached to a hook stage.
type Script struct {
	Cmd      []string
	Env      map[string]string
	Filesets []string
}

// VPILibrary describes a VPI module compiled from filesets.
type VPILibrary struct {
	Filesets []string
	Libs     []string
}
