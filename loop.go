package main

import (
	"sync"
	"time"

	"github.com/bhonris/multi-td/protocol"
)

type emitFunc func(eventType string, snap *protocol.GameSnapshot)

// gameLoop drives one game's simulation. Each active game owns exactly one
// loop goroutine with its own ticker; ticks for the same game never overlap.
type gameLoop struct {
	g        *game
	interval time.Duration
	emit     emitFunc
	cancel   chan struct{}
	stopOnce sync.Once
}

func newGameLoop(g *game, interval time.Duration, emit emitFunc) *gameLoop {
	return &gameLoop{
		g:        g,
		interval: interval,
		emit:     emit,
		cancel:   make(chan struct{}),
	}
}

func (l *gameLoop) run() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.cancel:
			return
		case now := <-ticker.C:
			l.tick(now)
		}
	}
}

func (l *gameLoop) stop() {
	l.stopOnce.Do(func() { close(l.cancel) })
}

func (l *gameLoop) tick(now time.Time) {
	l.g.mu.Lock()
	eventType := step(l.g, now, l.interval)
	var snap *protocol.GameSnapshot
	if eventType != "" {
		snap = snapshotLocked(l.g, now)
	}
	l.g.mu.Unlock()

	if eventType == "" {
		return
	}
	if eventType == protocol.EventGameOver {
		l.stop()
	}
	l.emit(eventType, snap)
}

// step advances the simulation by one tick. The caller holds the game lock.
// It returns the event type to broadcast, or "" when the tick produced
// nothing to report.
func step(g *game, now time.Time, interval time.Duration) string {
	if g.State != phaseRunning {
		return ""
	}
	g.TickIndex++

	spawnDueEnemies(g, now)
	processAttacks(g, now)
	moveEnemies(g, now)
	applyAuras(g, interval)
	handleEnemiesAtEnd(g)

	if g.BaseHealth <= 0 {
		g.BaseHealth = 0
		g.State = phaseGameOver
		g.UpdatedAt = now
		return protocol.EventGameOver
	}

	if !g.WaveCleared && len(g.Enemies) == 0 && len(g.PendingEnemies) == 0 {
		g.WaveCleared = true
	}

	g.UpdatedAt = now
	return protocol.EventState
}

func spawnDueEnemies(g *game, now time.Time) {
	pending := g.PendingEnemies[:0]
	for _, e := range g.PendingEnemies {
		if now.Before(e.SpawnAt) {
			pending = append(pending, e)
			continue
		}
		g.Enemies = append(g.Enemies, e)
	}
	g.PendingEnemies = pending
}

// moveEnemies advances each living enemy along its path by speed per tick,
// scaled down by any active slow effects. Expired effects are purged as a
// side effect of computing the multiplier.
func moveEnemies(g *game, now time.Time) {
	for _, e := range g.Enemies {
		if !e.alive() || e.atPathEnd() {
			continue
		}

		speed := e.Speed * slowMultiplier(e, now)
		next := e.Path[e.PathIndex+1]
		dx := next.X - e.Position.X
		dy := next.Y - e.Position.Y
		dist := distance(e.Position, next)

		if dist < speed {
			e.PathIndex++
			e.Position = e.Path[e.PathIndex]
			continue
		}
		e.Position.X += dx / dist * speed
		e.Position.Y += dy / dist * speed
	}
}

// applyAuras runs the per-tick passive abilities: healers mend nearby allies
// and regenerating bosses heal themselves. Rates are per second, scaled to
// the tick length.
func applyAuras(g *game, interval time.Duration) {
	dt := interval.Seconds()
	for _, e := range g.Enemies {
		if !e.alive() {
			continue
		}
		if e.hasAbility(abilityRegen) {
			e.Health = min(e.MaxHealth, e.Health+bossRegenPerSecond*dt)
		}
		if !e.hasAbility(abilityHeal) {
			continue
		}
		for _, ally := range g.Enemies {
			if ally.ID == e.ID || !ally.alive() {
				continue
			}
			if distance(e.Position, ally.Position) > healerHealRadius {
				continue
			}
			ally.Health = min(ally.MaxHealth, ally.Health+healerHealPerSecond*dt)
		}
	}
}

// handleEnemiesAtEnd charges the base for every enemy that walked the whole
// path and removes them from play. No bounty is paid for leaked enemies.
func handleEnemiesAtEnd(g *game) {
	alive := g.Enemies[:0]
	for _, e := range g.Enemies {
		if e.alive() && !e.atPathEnd() {
			alive = append(alive, e)
			continue
		}
		if e.atPathEnd() && e.alive() {
			g.BaseHealth -= e.Damage
		}
	}
	g.Enemies = alive
}
