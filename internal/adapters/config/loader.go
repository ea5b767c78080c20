// Package config provides the configuration loader for corepm.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/corepm/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/ini.v1"
)

const envPrefix = "FUSESOC"

// Loader implements ports.ConfigLoader on top of an INI configuration file,
// environment variables and built-in defaults.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load resolves the configuration. When path is empty the configuration file
// is searched upwards from cwd; a missing file is not an error. An explicit
// path must exist. Relative paths inside the file resolve against its directory.
func (l *Loader) Load(cwd, path string) (*domain.Config, error) {
	configPath := path
	if configPath != "" {
		if !filepath.IsAbs(configPath) {
			configPath = filepath.Join(cwd, configPath)
		}
		if _, err := os.Stat(configPath); err != nil {
			return nil, zerr.With(domain.ErrConfigNotFound, "path", configPath)
		}
	} else {
		configPath = l.findConfiguration(cwd)
	}

	v := viper.New()
	v.SetDefault("main.cores_root", "")
	v.SetDefault("main.cache_root", defaultCacheRoot())
	v.SetDefault("main.build_root", domain.DefaultBuildRoot)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range map[string]string{
		"main.cores_root": envPrefix + "_CORES_ROOT",
		"main.cache_root": envPrefix + "_CACHE_ROOT",
		"main.build_root": envPrefix + "_BUILD_ROOT",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, zerr.Wrap(err, "failed to bind environment")
		}
	}

	base := cwd
	if configPath != "" {
		values, err := readINI(configPath)
		if err != nil {
			return nil, zerr.With(err, "path", configPath)
		}
		if err := v.MergeConfigMap(values); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to merge configuration"), "path", configPath)
		}
		base = filepath.Dir(configPath)
		l.Logger.Debug("using configuration " + configPath)
	}

	cfg := &domain.Config{
		Path:      configPath,
		CacheRoot: resolvePath(base, v.GetString("main.cache_root")),
		BuildRoot: resolvePath(base, v.GetString("main.build_root")),
	}
	for _, root := range strings.Fields(v.GetString("main.cores_root")) {
		cfg.CoresRoots = append(cfg.CoresRoots, resolvePath(base, root))
	}

	names := make([]string, 0)
	for name := range v.GetStringMap("library") {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		key := "library." + name + "."
		cfg.Libraries = append(cfg.Libraries, domain.Library{
			Name:     name,
			Location: resolvePath(base, v.GetString(key+"location")),
			SyncURI:  v.GetString(key + "sync-uri"),
			SyncType: v.GetString(key + "sync-type"),
			AutoSync: v.GetBool(key + "auto-sync"),
		})
	}
	return cfg, nil
}

// findConfiguration walks from cwd up to the filesystem root and returns the
// first configuration file found, or "" when there is none.
func (l *Loader) findConfiguration(cwd string) string {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// readINI parses the configuration file into a nested map; a section named
// "library.x" becomes map["library"]["x"].
func readINI(path string) (map[string]any, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		SkipUnrecognizableLines:    true,
	}, path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to parse configuration file")
	}

	out := make(map[string]any)
	for _, section := range file.Sections() {
		keys := section.Keys()
		if len(keys) == 0 {
			continue
		}
		dst := out
		for _, part := range strings.Split(section.Name(), ".") {
			next, ok := dst[part].(map[string]any)
			if !ok {
				next = make(map[string]any)
				dst[part] = next
			}
			dst = next
		}
		for _, key := range keys {
			dst[key.Name()] = key.Value()
		}
	}
	return out, nil
}

func resolvePath(base, p string) string {
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

func defaultCacheRoot() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".cache", "fusesoc")
	}
	return filepath.Join(dir, "fusesoc")
}
