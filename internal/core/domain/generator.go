package domain

import "time"

// GeneratorInvocation describes one run of an external generator program.
type GeneratorInvocation struct {
	// Instance is the name of the generate entry being expanded.
	Instance string
	// Generator is the name of the generator being run.
	Generator string
	// Command is the absolute path of the generator program.
	Command string
	// Interpreter is an optional command line the program is run through, e.g. "python3 -u".
	Interpreter string
	// WorkDir is the scratch directory the generator runs in.
	WorkDir string
	// InputFile is the path of the YAML input document, passed as the last argument.
	InputFile string
	// Timeout bounds the run; zero means no limit.
	Timeout time.Duration
}

// GeneratorInput is the document handed to a generator.
type GeneratorInput struct {
	GAPI       string         `yaml:"gapi"`
	FilesRoot  string         `yaml:"files_root"`
	Parameters map[string]any `yaml:"parameters"`
	VLNV       string         `yaml:"vlnv"`
}

// GeneratorCacheEntry records a committed generator result.
type GeneratorCacheEntry struct {
	Key       string    `json:"key"`
	Generator string    `json:"generator"`
	Instance  string    `json:"instance"`
	RunID     string    `json:"run_id"`
	Dir       string    `json:"dir"`
	CreatedAt time.Time `json:"created_at"`
}

// GAPIVersion is the generator input format version.
const GAPIVersion = "1.0"
