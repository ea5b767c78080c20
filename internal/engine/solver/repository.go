package solver

import (
	"slices"
	"strings"

	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/corepm/internal/core/ports"
)

// Repository holds the candidate cores of one resolve context. It is not safe
// for concurrent mutation; build it once and then solve against it.
type Repository struct {
	logger ports.Logger

	byVLNV    map[string]*domain.Core
	byKey     map[string][]*domain.Core
	providers map[string][]*domain.Core // virtual key -> providing cores
}

// NewRepository creates a Repository holding cores. Later duplicates replace
// earlier ones.
func NewRepository(logger ports.Logger, cores ...*domain.Core) *Repository {
	r := &Repository{
		logger:    logger,
		byVLNV:    make(map[string]*domain.Core),
		byKey:     make(map[string][]*domain.Core),
		providers: make(map[string][]*domain.Core),
	}
	for _, c := range cores {
		r.Add(c)
	}
	return r
}

// Add registers a core. A core with the same VLNV as an existing one replaces
// it with a warning.
func (r *Repository) Add(c *domain.Core) {
	id := c.Name.String()
	if prev, ok := r.byVLNV[id]; ok {
		r.logger.Warn("duplicate core " + id + ": " + c.Path + " replaces " + prev.Path)
		r.remove(prev)
	}
	r.byVLNV[id] = c

	key := c.Name.Key()
	r.byKey[key] = append(r.byKey[key], c)
	for _, v := range c.Virtual {
		r.providers[v.Key()] = append(r.providers[v.Key()], c)
	}
}

func (r *Repository) remove(c *domain.Core) {
	key := c.Name.Key()
	r.byKey[key] = slices.DeleteFunc(r.byKey[key], func(x *domain.Core) bool { return x == c })
	for _, v := range c.Virtual {
		r.providers[v.Key()] = slices.DeleteFunc(r.providers[v.Key()], func(x *domain.Core) bool { return x == c })
	}
}

// Find returns the core with exactly the VLNV v.
func (r *Repository) Find(v domain.VLNV) (*domain.Core, bool) {
	c, ok := r.byVLNV[v.String()]
	return c, ok
}

// Cores returns every core ordered by VLNV.
func (r *Repository) Cores() []*domain.Core {
	out := make([]*domain.Core, 0, len(r.byVLNV))
	for _, c := range r.byVLNV {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *domain.Core) int { return domain.Compare(a.Name, b.Name) })
	return out
}

// Len returns the number of cores.
func (r *Repository) Len() int {
	return len(r.byVLNV)
}

// Known reports whether any core provides key, either as its own identity or
// as a virtual alias.
func (r *Repository) Known(key string) bool {
	return len(r.byKey[key]) > 0 || len(r.providers[key]) > 0
}

// IsVirtual reports whether key is only ever provided as a virtual alias.
func (r *Repository) IsVirtual(key string) bool {
	return len(r.byKey[key]) == 0 && len(r.providers[key]) > 0
}

// Candidates returns the cores matching constraint, ordered by preference:
// the locked choice first, then the highest version, then provider identity.
func (r *Repository) Candidates(constraint domain.VLNV, lock *domain.Lockfile) []*domain.Core {
	key := constraint.Key()

	var out []*domain.Core
	for _, c := range r.byKey[key] {
		if constraint.Matches(c.Name) {
			out = append(out, c)
		}
	}
	for _, c := range r.providers[key] {
		if v, ok := providedAs(c, key); ok && constraint.Matches(v) && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}

	locked := func(c *domain.Core) bool {
		if v, ok := lock.Locked(c.Name.Key()); ok && domain.Compare(v, c.Name) == 0 {
			if c.Name.Key() == key {
				return true
			}
			p, ok := lock.Provider(key)
			return !ok || p == c.Name.Key()
		}
		return false
	}

	slices.SortStableFunc(out, func(a, b *domain.Core) int {
		la, lb := locked(a), locked(b)
		switch {
		case la && !lb:
			return -1
		case lb && !la:
			return 1
		}
		if ka, kb := a.Name.Key(), b.Name.Key(); ka != kb {
			if ka == key {
				return -1
			}
			if kb == key {
				return 1
			}
			return strings.Compare(ka, kb)
		}
		return domain.Compare(b.Name, a.Name)
	})
	return out
}

// providedAs returns the virtual VLNV under which c provides key.
func providedAs(c *domain.Core, key string) (domain.VLNV, bool) {
	for _, v := range c.Virtual {
		if v.Key() == key {
			return v, true
		}
	}
	return domain.VLNV{}, false
}
