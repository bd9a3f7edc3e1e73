package main

import (
	"math"
	"testing"
	"time"

	"github.com/bhonris/multi-td/protocol"
)

func TestStepSkipsWhenNotRunning(t *testing.T) {
	for _, phase := range []gamePhase{phaseWaiting, phasePaused, phaseFinished, phaseGameOver} {
		g := newCombatGame()
		g.State = phase
		addTestEnemy(g, "e1", position{X: 3, Y: 5}, 100, 3)

		if ev := step(g, time.Now(), defaultTickInterval); ev != "" {
			t.Errorf("state %s: step emitted %q, want nothing", phase, ev)
		}
		if g.TickIndex != 0 {
			t.Errorf("state %s: tick index advanced", phase)
		}
	}
}

func TestSpawnDueEnemies(t *testing.T) {
	g := newCombatGame()
	now := time.Now()
	due := newEnemy(enemyBasic, 1, difficultyNormal, g.Path, now.Add(-time.Millisecond))
	notYet := newEnemy(enemyBasic, 1, difficultyNormal, g.Path, now.Add(time.Hour))
	g.PendingEnemies = []*enemy{due, notYet}

	step(g, now, defaultTickInterval)
	if len(g.Enemies) != 1 || g.Enemies[0].ID != due.ID {
		t.Fatalf("expected only the due enemy active, got %d active", len(g.Enemies))
	}
	if len(g.PendingEnemies) != 1 || g.PendingEnemies[0].ID != notYet.ID {
		t.Fatalf("expected the future enemy to stay pending, got %d pending", len(g.PendingEnemies))
	}
}

func TestMovementAdvancesAlongPath(t *testing.T) {
	g := newCombatGame()
	e := addTestEnemy(g, "e1", g.Path[0], 100, 0)
	e.Speed = 0.4

	now := time.Now()
	step(g, now, defaultTickInterval)
	if e.Position.X != 0.4 || e.Position.Y != 5 {
		t.Fatalf("position after one tick = %v, want (0.4,5)", e.Position)
	}
	if e.PathIndex != 0 {
		t.Fatalf("path index advanced early, got %d", e.PathIndex)
	}

	step(g, now, defaultTickInterval)
	step(g, now, defaultTickInterval)
	// 0.8 away from waypoint 1 after two ticks; the third snaps to it.
	if e.PathIndex != 1 {
		t.Fatalf("path index = %d, want 1 after snapping", e.PathIndex)
	}
	if e.Position != g.Path[1] {
		t.Fatalf("position = %v, want waypoint %v", e.Position, g.Path[1])
	}
}

func TestSlowEffectReducesMovement(t *testing.T) {
	g := newCombatGame()
	now := time.Now()
	e := addTestEnemy(g, "e1", g.Path[0], 100, 0)
	e.Speed = 0.4
	e.Effects = []enemyEffect{{
		Type:     effectSlow,
		Duration: slowEffectDuration,
		EndsAt:   now.Add(slowEffectDuration),
		Factor:   0.5,
		SourceID: "slow-tower",
	}}

	step(g, now, defaultTickInterval)
	if math.Abs(e.Position.X-0.2) > 1e-9 {
		t.Fatalf("slowed enemy moved to x=%v, want 0.2", e.Position.X)
	}

	// After the effect expires the enemy is back to full speed and the
	// effect list is purged.
	later := now.Add(slowEffectDuration + time.Second)
	step(g, later, defaultTickInterval)
	if len(e.Effects) != 0 {
		t.Fatalf("expired effect not purged, %d remaining", len(e.Effects))
	}
	if math.Abs(e.Position.X-0.6) > 1e-9 {
		t.Fatalf("enemy at x=%v after expiry tick, want 0.6", e.Position.X)
	}
}

func TestEndOfPathDamagesBase(t *testing.T) {
	g := newCombatGame()
	e := addTestEnemy(g, "e1", g.Path[len(g.Path)-1], 100, len(g.Path)-1)
	e.Damage = 3

	before := g.BaseHealth
	ev := step(g, time.Now(), defaultTickInterval)
	if ev != protocol.EventState {
		t.Fatalf("step emitted %q, want state update", ev)
	}
	if g.BaseHealth != before-3 {
		t.Fatalf("base health = %d, want %d", g.BaseHealth, before-3)
	}
	if len(g.Enemies) != 0 {
		t.Fatal("leaked enemy not removed")
	}
	if g.Players[0].Money != 500 {
		t.Fatal("leaked enemy paid a bounty")
	}
}

func TestGameOverExactlyOnce(t *testing.T) {
	g := newCombatGame()
	g.BaseHealth = 2
	e := addTestEnemy(g, "e1", g.Path[len(g.Path)-1], 100, len(g.Path)-1)
	e.Damage = 5

	ev := step(g, time.Now(), defaultTickInterval)
	if ev != protocol.EventGameOver {
		t.Fatalf("step emitted %q, want game over", ev)
	}
	if g.State != phaseGameOver {
		t.Fatalf("state = %s, want game-over", g.State)
	}
	if g.BaseHealth != 0 {
		t.Fatalf("base health = %d, want clamped to 0", g.BaseHealth)
	}

	tick := g.TickIndex
	if ev := step(g, time.Now(), defaultTickInterval); ev != "" {
		t.Fatalf("step after game over emitted %q, want nothing", ev)
	}
	if g.TickIndex != tick || g.State != phaseGameOver {
		t.Fatal("game mutated after game over")
	}
}

func TestWaveClearedFlag(t *testing.T) {
	g := newCombatGame()
	g.WaveCleared = false
	e := addTestEnemy(g, "e1", position{X: 3, Y: 5}, 10, 3)
	addTestTower(g, towerBasic, position{X: 3, Y: 4})

	step(g, time.Now(), defaultTickInterval)
	if e.alive() {
		t.Fatal("enemy should have died to the tower")
	}
	if !g.WaveCleared {
		t.Fatal("wave not flagged cleared with no enemies left")
	}
}

func TestBossRegenAndHealerAura(t *testing.T) {
	g := newCombatGame()
	now := time.Now()

	// Kept outside the healer's radius so only regen applies to it.
	boss := addTestEnemy(g, "boss", position{X: 15, Y: 5}, 500, 3)
	boss.MaxHealth = 1000
	boss.Abilities = []enemyAbility{abilityRegen}

	healer := addTestEnemy(g, "healer", position{X: 4, Y: 5}, 120, 2)
	healer.Abilities = []enemyAbility{abilityHeal}

	hurt := addTestEnemy(g, "hurt", position{X: 5, Y: 5}, 50, 1)
	hurt.MaxHealth = 100

	farHurt := addTestEnemy(g, "far-hurt", position{X: 15, Y: 9}, 50, 0)
	farHurt.MaxHealth = 100

	for _, e := range g.Enemies {
		e.Speed = 0
	}

	step(g, now, defaultTickInterval)
	dt := defaultTickInterval.Seconds()
	if boss.Health != 500+bossRegenPerSecond*dt {
		t.Fatalf("boss health = %v, want %v", boss.Health, 500+bossRegenPerSecond*dt)
	}
	if hurt.Health != 50+healerHealPerSecond*dt {
		t.Fatalf("healed ally health = %v, want %v", hurt.Health, 50+healerHealPerSecond*dt)
	}
	if farHurt.Health != 50 {
		t.Fatalf("out-of-radius ally healed to %v", farHurt.Health)
	}

	// Regen never exceeds max health.
	boss.Health = boss.MaxHealth
	step(g, now, defaultTickInterval)
	if boss.Health > boss.MaxHealth {
		t.Fatalf("boss overhealed to %v", boss.Health)
	}
}
