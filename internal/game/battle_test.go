package game

import "testing"

// scriptRolls replaces the world's die with a fixed sequence.
func scriptRolls(t *testing.T, rolls ...int) func(int) int {
	t.Helper()
	i := 0
	return func(sides int) int {
		if i >= len(rolls) {
			t.Fatalf("ran out of scripted rolls after %d", len(rolls))
		}
		v := rolls[i]
		i++
		return v
	}
}

// newFighter builds a combatant with fixed numbers: hit +5, no evasion,
// 2-2 impact damage, 10 HP. Fixed damage keeps rolls predictable.
func newFighter(name string) *Character {
	c := NewCharacter(name)
	c.HP = 10
	c.MaxHP = 10
	c.Hit = 5
	c.Evade = 0
	c.Damage = map[string]DamageRange{"impact": {Min: 2, Max: 2}}
	return c
}

func startFight(w *World) (*Battle, *Character, *Character) {
	room := w.Areas["start"].Rooms[1]
	a := newFighter("Attacker")
	b := newFighter("Defender")
	w.MoveCharacter(a, room)
	w.MoveCharacter(b, room)
	return w.StartBattle(a, b), a, b
}

func TestRoundBothSidesStrike(t *testing.T) {
	w := NewWorldForTest()
	battle, a, b := startFight(w)
	w.DieRoll = scriptRolls(t, 10, 10) // 10+5-0=15, a hit each way

	battle.PerformRound()

	if a.HP != 8 || b.HP != 8 {
		t.Fatalf("expected both at 8 HP, got %d and %d", a.HP, b.HP)
	}
	if a.ActionPoints != 0 || b.ActionPoints != 0 {
		t.Fatalf("action points not spent: %v %v", a.ActionPoints, b.ActionPoints)
	}
	if battle.Done() {
		t.Fatal("battle ended with both teams standing")
	}
}

func TestMissLeavesTargetUntouched(t *testing.T) {
	w := NewWorldForTest()
	battle, a, b := startFight(w)
	w.DieRoll = scriptRolls(t, 5, 5) // 5+5-0=10, not above 10

	battle.PerformRound()

	if a.HP != 10 || b.HP != 10 {
		t.Fatalf("miss should deal no damage, got %d and %d", a.HP, b.HP)
	}
}

func TestCriticalHitBoostsDamage(t *testing.T) {
	w := NewWorldForTest()
	battle, a, b := startFight(w)
	// 16+5=21 crits; 2-2 damage becomes 3-4, RollBetween(3,4) consumes
	// a d2 roll of 1 for 3 damage.
	w.DieRoll = scriptRolls(t, 16, 1)

	battle.resolveAttack(a, b)

	if b.HP != 7 {
		t.Fatalf("expected 3 critical damage, target at %d HP", b.HP)
	}
}

func TestAbsorbFloorsDamageAtZero(t *testing.T) {
	w := NewWorldForTest()
	battle, a, b := startFight(w)
	b.Absorb = map[string]int{"impact": 5}
	w.DieRoll = scriptRolls(t, 10)

	battle.resolveAttack(a, b)

	if b.HP != 10 {
		t.Fatalf("absorbed hit should deal nothing, target at %d HP", b.HP)
	}
}

func TestStaleTargetIsReplaced(t *testing.T) {
	w := NewWorldForTest()
	battle, a, b := startFight(w)
	stranger := newFighter("Stranger")
	a.NextAction.Target = stranger
	w.DieRoll = scriptRolls(t, 10)

	battle.resolveAttack(a, a.NextAction.Target)

	if a.NextAction.Target != b {
		t.Fatalf("stale target not replaced, aiming at %v", a.NextAction.Target)
	}
	if b.HP != 8 {
		t.Fatalf("replacement target was not struck, at %d HP", b.HP)
	}
}

func TestBattleEndsWhenTeamEmpties(t *testing.T) {
	w := NewWorldForTest()
	battle, a, b := startFight(w)
	b.HP = 1
	w.DieRoll = scriptRolls(t, 10)

	w.tickBattles()

	if !battle.Done() {
		t.Fatal("battle should be done after the defender falls")
	}
	if len(w.battles) != 0 {
		t.Fatalf("finished battle still registered: %d", len(w.battles))
	}
	if a.Battle != nil || b.Battle != nil {
		t.Fatal("battle references not cleared")
	}
}

func TestFleeSuccessLeavesTheFight(t *testing.T) {
	w := NewWorldForTest()
	area := w.Areas["start"]
	refuge := area.NewRoom("A Refuge")
	if err := LinkExits(area.Rooms[1], North, refuge); err != nil {
		t.Fatalf("link failed: %v", err)
	}
	battle, a, b := startFight(w)
	a.NextAction = &BattleAction{Kind: ActionFlee, Cost: fleeCost}
	w.DieRoll = scriptRolls(t, 2) // flee check succeeds on 2

	battle.PerformRound()

	if a.Room() != refuge {
		t.Fatalf("fleeing character should be in the refuge, is in %v", a.Room())
	}
	if a.Battle != nil {
		t.Fatal("fled character still references the battle")
	}
	if !battle.Done() {
		t.Fatal("one-sided battle should finish after the flee")
	}
	if b.Battle != nil {
		t.Fatal("survivor still references the finished battle")
	}
}

func TestFleeFailureFallsBackToAttack(t *testing.T) {
	w := NewWorldForTest()
	area := w.Areas["start"]
	refuge := area.NewRoom("A Refuge")
	if err := LinkExits(area.Rooms[1], North, refuge); err != nil {
		t.Fatalf("link failed: %v", err)
	}
	battle, a, _ := startFight(w)
	a.NextAction = &BattleAction{Kind: ActionFlee, Cost: fleeCost}
	w.DieRoll = scriptRolls(t, 1, 10) // flee fails, then the opponent swings

	battle.PerformRound()

	if a.Room() != area.Rooms[1] {
		t.Fatal("failed flee should not move the character")
	}
	if a.NextAction == nil || a.NextAction.Kind != ActionAttack {
		t.Fatalf("failed flee should queue an attack, got %+v", a.NextAction)
	}
	if a.HP != 8 {
		t.Fatalf("opponent's swing should land, attacker at %d HP", a.HP)
	}
}

func TestJoiningAnExistingBattle(t *testing.T) {
	w := NewWorldForTest()
	battle, _, b := startFight(w)
	room := w.Areas["start"].Rooms[1]
	c := newFighter("Reinforcement")
	w.MoveCharacter(c, room)

	joined := w.StartBattle(c, b)

	if joined != battle {
		t.Fatal("attacking a fighting target should join their battle")
	}
	if len(battle.TeamA) != 2 {
		t.Fatalf("reinforcement should side against the target, team A has %d", len(battle.TeamA))
	}
	if c.Battle != battle || c.NextAction == nil || c.NextAction.Target != b {
		t.Fatal("reinforcement not aimed at the original target")
	}
}
