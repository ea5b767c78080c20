package domain

// ManifestVersion is the format version stamped into every manifest.
const ManifestVersion = "0.2.1"

// Manifest is the tool-neutral build description handed to tool flows.
type Manifest struct {
	Version      string                       `yaml:"version"`
	Name         string                       `yaml:"name"`
	Toplevel     string                       `yaml:"toplevel"`
	Files        []ManifestFile               `yaml:"files"`
	Parameters   map[string]ManifestParameter `yaml:"parameters"`
	ToolOptions  map[string]map[string]any    `yaml:"tool_options"`
	Hooks        map[string][]ManifestScript  `yaml:"hooks"`
	VPI          []ManifestVPI                `yaml:"vpi"`
	Dependencies map[string][]string          `yaml:"dependencies"`
}

// ManifestFile is a file entry with its path relative to the work root.
type ManifestFile struct {
	Name          string `yaml:"name"`
	FileType      string `yaml:"file_type,omitempty"`
	IsIncludeFile bool   `yaml:"is_include_file,omitempty"`
	LogicalName   string `yaml:"logical_name,omitempty"`
	Core          string `yaml:"core"`
}

// ManifestParameter is a resolved parameter.
type ManifestParameter struct {
	Datatype    string `yaml:"datatype"`
	Default     any    `yaml:"default,omitempty"`
	Description string `yaml:"description,omitempty"`
	Paramtype   string `yaml:"paramtype"`
}

// ManifestScript is a hook script.
type ManifestScript struct {
	Name string            `yaml:"name"`
	Cmd  []string          `yaml:"cmd"`
	Env  map[string]string `yaml:"env,omitempty"`
}

// ManifestVPI is a VPI library with work-root relative sources.
type ManifestVPI struct {
	Name         string   `yaml:"name"`
	SrcFiles     []string `yaml:"src_files"`
	IncludeFiles []string `yaml:"include_files"`
	Libs         []string `yaml:"libs"`
}

// NewManifest returns an empty manifest with all collections allocated.
func NewManifest(name, toplevel string) *Manifest {
	return &Manifest{
		Version:      ManifestVersion,
		Name:         name,
		Toplevel:     toplevel,
		Files:        []ManifestFile{},
		Parameters:   map[string]ManifestParameter{},
		ToolOptions:  map[string]map[string]any{},
		Hooks:        map[string][]ManifestScript{},
		VPI:          []ManifestVPI{},
		Dependencies: map[string][]string{},
	}
}
