package domain

import "path/filepath"

const (
	// ConfigFileName is the name of the configuration file searched for upwards from the working directory.
	ConfigFileName = "fusesoc.conf"

	// IgnoreMarker is a file whose presence excludes a directory tree from core discovery.
	IgnoreMarker = "FUSESOC_IGNORE"

	// CoreFileExt is the extension of core description files.
	CoreFileExt = ".core"

	// LockFileName is the default name of the lockfile.
	LockFileName = "fusesoc.lock"

	// ManifestFileSuffix is appended to the sanitized toplevel name to form the manifest file name.
	ManifestFileSuffix = ".eda.yml"

	// GeneratorInputSuffix is appended to the generate instance name to form the generator input file name.
	GeneratorInputSuffix = "_input.yml"

	// GeneratorCacheDirName is the name of the generator cache directory below the cache root.
	GeneratorCacheDirName = "generator_cache"

	// GeneratedDirName holds the output of uncached generator runs below the cache root.
	GeneratedDirName = "generated"

	// GeneratorIndexFile is the name of the generator cache index database.
	GeneratorIndexFile = "index.db"

	// DefaultBuildRoot is the build root used when no configuration sets one.
	DefaultBuildRoot = "build"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// GeneratorCachePath returns the generator cache directory below cacheRoot.
func GeneratorCachePath(cacheRoot string) string {
	return filepath.Join(cacheRoot, GeneratorCacheDirName)
}

// GeneratorIndexPath returns the path of the generator cache index below cacheRoot.
func GeneratorIndexPath(cacheRoot string) string {
	return filepath.Join(cacheRoot, GeneratorCacheDirName, GeneratorIndexFile)
}

// GeneratedPath returns the directory for uncached output of a generated
// core. token is the sanitized identity handed out by a Sanitizer.
func GeneratedPath(cacheRoot, token string) string {
	return filepath.Join(cacheRoot, GeneratedDirName, token)
}

// ManifestFileName returns the manifest file name for the sanitized toplevel token.
func ManifestFileName(token string) string {
	return token + ManifestFileSuffix
}

// DefaultWorkRoot returns the work root used when none is given:
// <build_root>/<sanitized toplevel>/<target>-<tool>.
func DefaultWorkRoot(buildRoot, token, target, tool string) string {
	leaf := target
	if tool != "" {
		leaf += "-" + tool
	}
	return filepath.Join(buildRoot, token, leaf)
}
