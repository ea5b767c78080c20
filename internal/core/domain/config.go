package domain

import "slices"

// Library is a named core library registered in the configuration.
type Library struct {
	Name     string
	Location string
	SyncURI  string
	SyncType string
	AutoSync bool
}

// Config is the resolved runtime configuration.
type Config struct {
	// Path is the configuration file that was read; empty when none was found.
	Path       string
	CoresRoots []string
	CacheRoot  string
	BuildRoot  string
	Libraries  []Library
}

// SearchRoots returns the directories searched for cores: the configured
// cores roots followed by library locations, without duplicates.
func (c *Config) SearchRoots() []string {
	roots := make([]string, 0, len(c.CoresRoots)+len(c.Libraries))
	for _, r := range c.CoresRoots {
		if !slices.Contains(roots, r) {
			roots = append(roots, r)
		}
	}
	for _, l := range c.Libraries {
		if l.Location != "" && !slices.Contains(roots, l.Location) {
			roots = append(roots, l.Location)
		}
	}
	return roots
}
