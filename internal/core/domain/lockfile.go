package domain

import (
	"maps"
	"slices"
	"strings"
)

// LockfileVersion is the lockfile format version written by this tool.
const LockfileVersion = 1

// Lockfile pins the selected version of every identity and the provider
// chosen for every virtual identity of a previous resolution.
type Lockfile struct {
	// Version is the lockfile format version.
	Version int

	// Cores maps identity keys to the locked concrete VLNV.
	Cores map[string]VLNV

	// Virtuals maps virtual identity keys to the identity key of their provider.
	Virtuals map[string]string
}

// NewLockfile builds a lockfile from a resolution.
func NewLockfile(cores []VLNV, virtuals map[string]string) *Lockfile {
	l := &Lockfile{
		Version:  LockfileVersion,
		Cores:    make(map[string]VLNV, len(cores)),
		Virtuals: make(map[string]string, len(virtuals)),
	}
	for _, c := range cores {
		l.Cores[c.Key()] = c.WithRelation(RelationEQ)
	}
	maps.Copy(l.Virtuals, virtuals)
	return l
}

// Locked returns the locked VLNV for an identity key.
func (l *Lockfile) Locked(key string) (VLNV, bool) {
	if l == nil {
		return VLNV{}, false
	}
	v, ok := l.Cores[key]
	return v, ok
}

// Provider returns the locked provider identity key for a virtual identity.
func (l *Lockfile) Provider(virtualKey string) (string, bool) {
	if l == nil {
		return "", false
	}
	p, ok := l.Virtuals[virtualKey]
	return p, ok
}

// SortedCores returns the locked VLNVs ordered by identity.
func (l *Lockfile) SortedCores() []VLNV {
	out := slices.Collect(maps.Values(l.Cores))
	slices.SortFunc(out, Compare)
	return out
}

// SortedVirtuals returns the virtual identity keys in lexical order.
func (l *Lockfile) SortedVirtuals() []string {
	keys := slices.Collect(maps.Keys(l.Virtuals))
	slices.SortFunc(keys, strings.Compare)
	return keys
}
