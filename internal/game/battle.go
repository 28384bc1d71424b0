package game

import (
	"fmt"
	"math"
)

// ActionKind identifies a battle action.
type ActionKind int

const (
	ActionAttack ActionKind = iota
	ActionFlee
)

const (
	attackCost = 1.0
	fleeCost   = 1.0
)

// BattleAction is a combatant's queued intent for their next turn. It only
// executes once the combatant has accrued at least Cost action points.
type BattleAction struct {
	Kind   ActionKind
	Cost   float64
	Target *Character
}

// Battle is one fight between two teams in a single room. A battle is
// active while both teams are non-empty; removals during a round are
// staged and applied after the acting combatant finishes, and battles are
// only deleted from the world at the round boundary.
type Battle struct {
	ID    int
	world *World
	room  *Room

	TeamA []*Character
	TeamB []*Character

	removeList []*Character
	done       bool
}

// Done reports whether the battle has ended and awaits removal.
func (b *Battle) Done() bool {
	return b.done
}

// combatants returns both teams in stable concatenation order: team A
// before team B, insertion order within each team. This order is also the
// tie-break when two ready combatants hold equal action points.
func (b *Battle) combatants() []*Character {
	out := make([]*Character, 0, len(b.TeamA)+len(b.TeamB))
	out = append(out, b.TeamA...)
	out = append(out, b.TeamB...)
	return out
}

func (b *Battle) opponents(c *Character) []*Character {
	for _, member := range b.TeamA {
		if member == c {
			return b.TeamB
		}
	}
	return b.TeamA
}

func (b *Battle) contains(c *Character) bool {
	for _, member := range b.combatants() {
		if member == c {
			return true
		}
	}
	return false
}

// PerformRound runs one combat round: every combatant accrues one action
// point, then ready combatants act in lowest-action-points-first order
// until none remain ready or a team empties.
func (b *Battle) PerformRound() {
	if b.done {
		return
	}
	for _, c := range b.combatants() {
		c.ActionPoints++
	}
	for len(b.TeamA) > 0 && len(b.TeamB) > 0 {
		actor := b.nextReady()
		if actor == nil {
			break
		}
		action := actor.NextAction
		if action == nil {
			action = &BattleAction{Kind: ActionAttack, Cost: attackCost}
		}
		actor.ActionPoints -= action.Cost
		switch action.Kind {
		case ActionAttack:
			b.resolveAttack(actor, action.Target)
		case ActionFlee:
			b.resolveFlee(actor)
		}
		b.applyRemovals()
	}
	if len(b.TeamA) == 0 || len(b.TeamB) == 0 {
		b.finish()
	}
}

func (b *Battle) nextReady() *Character {
	var best *Character
	for _, c := range b.combatants() {
		cost := attackCost
		if c.NextAction != nil {
			cost = c.NextAction.Cost
		}
		if c.ActionPoints < cost {
			continue
		}
		if best == nil || c.ActionPoints < best.ActionPoints {
			best = c
		}
	}
	return best
}

// resolveAttack rolls d20 + hit - evade: above 20 is a critical hit,
// above 10 a normal hit, anything else a miss. A stale target is replaced
// by the first surviving opponent before the attack resolves.
func (b *Battle) resolveAttack(actor, target *Character) {
	opponents := b.opponents(actor)
	if target == nil || !b.contains(target) || !contains(opponents, target) {
		if len(opponents) == 0 {
			return
		}
		target = opponents[0]
		if actor.NextAction != nil {
			actor.NextAction.Target = target
		}
	}

	hit, _, damage, _ := actor.AttackStats()
	_, evade, _, absorb := target.AttackStats()

	roll := b.world.DieRoll(20) + hit - evade
	switch {
	case roll > 20:
		total := b.dealDamage(target, damage, absorb, true)
		actor.Sendf("You critically strike %s for %d damage!", target.Name, total)
		target.Sendf("%s critically strikes you for %d damage! (%d/%d HP)", actor.Name, total, target.HP, target.MaxHP)
	case roll > 10:
		total := b.dealDamage(target, damage, absorb, false)
		actor.Sendf("You strike %s for %d damage.", target.Name, total)
		target.Sendf("%s strikes you for %d damage. (%d/%d HP)", actor.Name, total, target.HP, target.MaxHP)
	default:
		actor.Sendf("You swing at %s and miss.", target.Name)
		target.Sendf("%s swings at you and misses.", actor.Name)
	}

	if target.HP <= 0 {
		b.stageRemoval(target)
		b.world.BroadcastToRoom(b.room, fmt.Sprintf("%s falls!", target.Name), nil)
	}
}

// dealDamage applies each damage type, reduced by the target's per-type
// absorption and floored at zero, then subtracts the sum from target HP.
// Critical hits deal ceil(1.5 x min) to 2 x max per damage type.
func (b *Battle) dealDamage(target *Character, damage map[string]DamageRange, absorb map[string]int, critical bool) int {
	total := 0
	for kind, r := range damage {
		low, high := r.Min, r.Max
		if critical {
			low = int(math.Ceil(1.5 * float64(r.Min)))
			high = 2 * r.Max
		}
		amount := b.world.RollBetween(low, high) - absorb[kind]
		if amount < 0 {
			amount = 0
		}
		total += amount
	}
	target.HP -= total
	return total
}

// resolveFlee attempts an escape through the first usable exit. Failure
// still consumes the action's cost.
func (b *Battle) resolveFlee(actor *Character) {
	if b.world.DieRoll(2) != 2 {
		actor.Send("You try to flee, but can't break away!")
		b.world.BroadcastToRoom(b.room, fmt.Sprintf("%s tries to flee and fails.", actor.Name), actor.Session)
		actor.NextAction = &BattleAction{Kind: ActionAttack, Cost: attackCost}
		return
	}
	dest, dir, ok := b.world.fleeDestination(b.room)
	if !ok {
		actor.Send("There is nowhere to run!")
		return
	}
	b.stageRemoval(actor)
	b.world.BroadcastToRoom(b.room, fmt.Sprintf("%s flees %s!", actor.Name, dir), actor.Session)
	actor.Send("You flee!")
	b.world.MoveCharacter(actor, dest)
	if actor.Session != nil {
		actor.Session.SetMode(NewNormalMode())
		LookAt(b.world, actor.Session)
	}
}

func (b *Battle) stageRemoval(c *Character) {
	for _, staged := range b.removeList {
		if staged == c {
			return
		}
	}
	b.removeList = append(b.removeList, c)
}

// applyRemovals pulls staged combatants out of their teams. Team slices
// are never mutated while a round iterates them directly.
func (b *Battle) applyRemovals() {
	for _, c := range b.removeList {
		b.TeamA = removeChar(b.TeamA, c)
		b.TeamB = removeChar(b.TeamB, c)
		c.Battle = nil
		c.NextAction = nil
		if c.HP <= 0 {
			b.world.handleDeath(c)
		}
	}
	b.removeList = b.removeList[:0]
}

// finish ends the battle: survivors get their battle reference cleared,
// their mode restored to normal play, and a victory message. The battle
// itself is staged for removal from the world's battle map.
func (b *Battle) finish() {
	if b.done {
		return
	}
	b.done = true
	for _, survivor := range b.combatants() {
		survivor.Battle = nil
		survivor.NextAction = nil
		survivor.Send("The battle is over. You are victorious!")
		if survivor.Session != nil {
			survivor.Session.SetMode(NewNormalMode())
		}
	}
	b.TeamA = nil
	b.TeamB = nil
}

func contains(team []*Character, c *Character) bool {
	for _, member := range team {
		if member == c {
			return true
		}
	}
	return false
}

func removeChar(team []*Character, c *Character) []*Character {
	for i, member := range team {
		if member == c {
			return append(team[:i], team[i+1:]...)
		}
	}
	return team
}
