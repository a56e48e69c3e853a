package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nathoo/metaleague/engine/board"
	"github.com/nathoo/metaleague/engine/state"
	"github.com/nathoo/metaleague/engine/traits"
	"github.com/nathoo/metaleague/types"
)

// drawClaimer is implemented by boards that can end a game by claiming a
// repetition or fifty-move draw.
type drawClaimer interface {
	ClaimDraw() bool
}

// playRound advances every able character's board.
func (mt *match) playRound(ctx context.Context) {
	for _, s := range mt.sides() {
		for i, c := range s.active {
			b := s.boards[i]
			if b == nil || !state.Active(c) || b.IsGameOver() {
				continue
			}
			mt.isolate(c, "move", func() { mt.moveCharacter(ctx, c, b) })
		}
	}
}

// moveCharacter plays this round's plies on b and turns the material swing
// into damage.
func (mt *match) moveCharacter(ctx context.Context, c *types.Character, b board.Board) {
	m := mt.m
	before := board.Balance(b)

	plies := mt.cfg.Match.PliesPerRound
	if plies < 1 {
		plies = 1
	}
	moved := 0
	for p := 0; p < plies && !b.IsGameOver(); p++ {
		mv, fellBack, err := mt.guard.Choose(ctx, b, c)
		if err != nil {
			mt.log.Debug("no move", zap.String("character", c.ID), zap.Error(err))
			break
		}
		if err := b.Push(mv); err != nil {
			mt.log.Warn("move rejected by board", zap.String("character", c.ID),
				zap.String("move", mv), zap.Error(err))
			break
		}
		moved++
		m.Raise(types.EventMove, c, map[string]any{"move": mv, "fallback": fellBack})
	}
	if dc, ok := b.(drawClaimer); ok && !b.IsGameOver() && dc.ClaimDraw() {
		mt.log.Debug("draw claimed", zap.String("character", c.ID))
	}
	if moved == 0 {
		return
	}

	m.AddStat(c, state.StatMoves, float64(moved))
	mt.combat.ApplyMoveCost(c)

	tc := traits.Context{Match: m}
	if delta := board.Balance(b) - before; delta != 0 {
		mt.combat.DamageFromMaterialChange(m, c, float64(delta))
		if delta > 0 {
			mt.traits.ApplyEffect(c, traits.TriggerPieceCaptured, tc)
		}
	}
	mt.traits.ApplyEffect(c, traits.TriggerMoveMade, tc)
}

// settle runs the end-of-round pipeline.
func (mt *match) settle() {
	m := mt.m

	mt.conv.ProcessRound(mt.a.active, mt.a.boards, mt.b.active, mt.b.boards, m,
		mt.cfg.Convergence.MaxPerCharacter)

	all := mt.allActive()
	for _, c := range all {
		if c.IsDead {
			continue
		}
		mt.isolate(c, "round_end", func() {
			mt.traits.ApplyEffect(c, traits.TriggerRoundEnd, traits.Context{Match: m})
			mt.traits.ApplyEffect(c, traits.TriggerStaminaRegen, traits.Context{Match: m})
		})
	}
	mt.combat.ApplyEndOfRoundRecovery(m, all)
	mt.traits.UpdateCooldowns(all)
	mt.updateMomentum()

	for _, c := range all {
		state.ClampResources(c)
	}
	m.Raise(types.EventRoundEnd, nil, map[string]any{
		"momentum_" + mt.a.team.ID: m.Momentum[mt.a.team.ID],
		"momentum_" + mt.b.team.ID: m.Momentum[mt.b.team.ID],
	})
}

// isolate runs one character's step, containing any panic to that step.
func (mt *match) isolate(c *types.Character, step string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			mt.log.Error("character step failed",
				zap.Int("round", mt.m.Round),
				zap.String("character", c.ID),
				zap.String("step", step),
				zap.Error(fmt.Errorf("%v", p)))
		}
	}()
	fn()
}
