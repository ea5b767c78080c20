package generator

import (
	"slices"

	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/zerr"
)

// splice inserts produced into seq relative to requester and then moves it
// after the last core it depends on. Every dependency of produced must be
// satisfied by a core already in seq.
func splice(
	seq []*domain.Core,
	requester, produced *domain.Core,
	position string,
	flags domain.Flags,
) ([]*domain.Core, error) {
	at := slices.Index(seq, requester)
	switch position {
	case domain.PositionFirst:
		at = 0
	case domain.PositionPrepend:
	case domain.PositionLast:
		at = len(seq)
	default:
		at++
	}
	seq = slices.Insert(seq, at, produced)

	deps, err := produced.DependsForFlags(flags.With(domain.FlagIsToplevel, false))
	if err != nil {
		return nil, err
	}

	last := -1
	for _, d := range deps {
		idx := slices.IndexFunc(seq, func(c *domain.Core) bool { return provides(c, d) })
		if idx < 0 {
			err := zerr.With(domain.ErrUnknownPackage, "package", d.Depend())
			return nil, zerr.With(err, "requested_by", produced.Name.String())
		}
		last = max(last, idx)
	}

	if last > at {
		seq = slices.Delete(seq, at, at+1)
		seq = slices.Insert(seq, last, produced)
	}
	return seq, nil
}

func provides(c *domain.Core, constraint domain.VLNV) bool {
	if constraint.Matches(c.Name) {
		return true
	}
	for _, v := range c.Virtual {
		if constraint.Matches(v) {
			return true
		}
	}
	return false
}
