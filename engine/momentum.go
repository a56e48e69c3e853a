package engine

import (
	"math"

	"github.com/nathoo/metaleague/config"
	"github.com/nathoo/metaleague/engine/state"
	"github.com/nathoo/metaleague/types"
)

// strength is a side's condition in [0,1]: HP and stamina of characters
// still standing, averaged over the whole active roster.
func strength(active []*types.Character) float64 {
	if len(active) == 0 {
		return 0
	}
	total := 0.0
	for _, c := range active {
		if c.IsKO || c.IsDead {
			continue
		}
		total += (c.HP + c.Stamina) / (2 * state.MaxResource)
	}
	return total / float64(len(active))
}

// MomentumShift is how far team A's meter moves toward A given both
// sides' strength. Team B moves by the negation.
func MomentumShift(cfg config.MomentumConfig, strengthA, strengthB float64) float64 {
	top := math.Max(strengthA, strengthB)
	if top == 0 {
		return 0
	}
	rel := (strengthA - strengthB) / top
	sign := 1.0
	if rel < 0 {
		sign = -1
	}
	switch gap := math.Abs(rel); {
	case gap >= cfg.MajorGap:
		return sign * cfg.MajorShift
	case gap >= cfg.MinorGap:
		return sign * cfg.MinorShift
	default:
		return rel * cfg.FineShiftScale
	}
}

// MomentumLabel names a meter value.
func MomentumLabel(cfg config.MomentumConfig, v float64) string {
	switch {
	case v >= cfg.Building:
		return state.MomentumBuilding
	case v <= cfg.Crash:
		return state.MomentumCrash
	}
	return state.MomentumNeutral
}

func (mt *match) updateMomentum() {
	cfg := mt.cfg.Momentum
	shift := MomentumShift(cfg, strength(mt.a.active), strength(mt.b.active))
	for _, u := range []struct {
		id    string
		delta float64
	}{{mt.a.team.ID, shift}, {mt.b.team.ID, -shift}} {
		v := state.ClampRange(mt.m.Momentum[u.id]+u.delta, -cfg.Limit, cfg.Limit)
		mt.m.Momentum[u.id] = v
		mt.m.MomentumLabel[u.id] = MomentumLabel(cfg, v)
	}
}
