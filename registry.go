package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/bhonris/multi-td/protocol"
	"github.com/google/uuid"
)

// registry owns every live game. The registry lock guards only the map;
// each game carries its own lock, so actions on one game never stall the
// ticks of another.
type registry struct {
	mu    sync.RWMutex
	games map[string]*game

	tick time.Duration
	emit emitFunc
}

func newRegistry(tick time.Duration, emit emitFunc) *registry {
	return &registry{
		games: make(map[string]*game),
		tick:  tick,
		emit:  emit,
	}
}

func (r *registry) lookup(gameID string) *game {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.games[gameID]
}

func (r *registry) createGame(hostID, hostName string, maxPlayers int, diff string) actionResult {
	if maxPlayers <= 0 {
		maxPlayers = defaultMaxPlayers
	}
	d := normalizeDifficulty(diff)
	now := time.Now()

	g := &game{
		ID:         uuid.NewString(),
		HostID:     hostID,
		MaxPlayers: maxPlayers,
		State:      phaseWaiting,
		Difficulty: d,
		BaseHealth: initialBaseHealth[d],
		Path:       defaultPath(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	g.Players = append(g.Players, &player{
		ID:        hostID,
		Name:      fallbackName(hostName, hostID),
		Connected: true,
		Money:     initialMoney[d],
	})

	// Snapshot before the game becomes reachable through the map, so no
	// lock is needed yet.
	snap := snapshotLocked(g, now)

	r.mu.Lock()
	r.games[g.ID] = g
	r.mu.Unlock()

	return actionResult{Success: true, Game: snap}
}

func (r *registry) joinGame(gameID, playerID, name string) actionResult {
	g := r.lookup(gameID)
	if g == nil {
		return failure(codeNotFound, "game not found")
	}

	g.mu.Lock()
	now := time.Now()
	if p := g.findPlayer(playerID); p != nil {
		// Rejoin: same player coming back counts as a reconnect, not an error.
		p.Connected = true
		g.UpdatedAt = now
		snap := snapshotLocked(g, now)
		g.mu.Unlock()
		r.emit(protocol.EventPlayerJoin, snap)
		return actionResult{Success: true, Game: snap}
	}
	if g.State != phaseWaiting {
		g.mu.Unlock()
		return failure(codeInvalidState, "game already started")
	}
	if len(g.Players) >= g.MaxPlayers {
		g.mu.Unlock()
		return failure(codeCapacityExceeded, "game is full")
	}
	g.Players = append(g.Players, &player{
		ID:        playerID,
		Name:      fallbackName(name, playerID),
		Connected: true,
		Money:     initialMoney[g.Difficulty],
	})
	g.UpdatedAt = now
	snap := snapshotLocked(g, now)
	g.mu.Unlock()

	r.emit(protocol.EventPlayerJoin, snap)
	return actionResult{Success: true, Game: snap}
}

func (r *registry) getGameState(gameID string) actionResult {
	g := r.lookup(gameID)
	if g == nil {
		return failure(codeNotFound, "game not found")
	}
	g.mu.Lock()
	snap := snapshotLocked(g, time.Now())
	g.mu.Unlock()
	return actionResult{Success: true, Game: snap}
}

// getGameList returns the joinable games: still waiting and below capacity.
func (r *registry) getGameList() []protocol.GameSummary {
	r.mu.RLock()
	games := make([]*game, 0, len(r.games))
	for _, g := range r.games {
		games = append(games, g)
	}
	r.mu.RUnlock()

	list := make([]protocol.GameSummary, 0, len(games))
	for _, g := range games {
		g.mu.Lock()
		if g.State == phaseWaiting && len(g.Players) < g.MaxPlayers {
			list = append(list, summaryLocked(g))
		}
		g.mu.Unlock()
	}
	return list
}

func (r *registry) setPlayerReady(gameID, playerID string, ready bool) actionResult {
	g := r.lookup(gameID)
	if g == nil {
		return failure(codeNotFound, "game not found")
	}

	g.mu.Lock()
	p := g.findPlayer(playerID)
	if p == nil {
		g.mu.Unlock()
		return failure(codeNotFound, "player not in game")
	}
	p.Ready = ready
	now := time.Now()
	g.UpdatedAt = now
	snap := snapshotLocked(g, now)
	g.mu.Unlock()

	r.emit(protocol.EventPlayerReady, snap)
	return actionResult{Success: true, Game: snap}
}

// startGame moves a lobby into play: wave counter and board are reset, money
// is reseeded from the difficulty table, and the simulation loop starts.
func (r *registry) startGame(gameID string) actionResult {
	g := r.lookup(gameID)
	if g == nil {
		return failure(codeNotFound, "game not found")
	}

	g.mu.Lock()
	if g.State != phaseWaiting {
		g.mu.Unlock()
		return failure(codeInvalidState, fmt.Sprintf("cannot start game in state %q", g.State))
	}
	for _, p := range g.Players {
		if p.Connected && !p.Ready {
			g.mu.Unlock()
			return failure(codePlayersNotReady, fmt.Sprintf("player %s is not ready", p.Name))
		}
	}

	now := time.Now()
	g.Wave = 0
	g.Towers = nil
	g.Enemies = nil
	g.PendingEnemies = nil
	g.WaveCleared = false
	g.BaseHealth = initialBaseHealth[g.Difficulty]
	for _, p := range g.Players {
		p.Money = initialMoney[g.Difficulty]
		p.Statistics = playerStatistics{}
	}
	g.State = phaseRunning
	g.StartedAt = now
	g.UpdatedAt = now
	g.loop = newGameLoop(g, r.tick, r.emit)
	go g.loop.run()
	snap := snapshotLocked(g, now)
	g.mu.Unlock()

	r.emit(protocol.EventGameStarted, snap)
	return actionResult{Success: true, Game: snap}
}

func (r *registry) startWave(gameID string) actionResult {
	g := r.lookup(gameID)
	if g == nil {
		return failure(codeNotFound, "game not found")
	}

	g.mu.Lock()
	if g.State != phaseRunning {
		g.mu.Unlock()
		return failure(codeInvalidState, fmt.Sprintf("cannot start wave in state %q", g.State))
	}
	if len(g.Enemies) > 0 || len(g.PendingEnemies) > 0 {
		g.mu.Unlock()
		return failure(codeWaveInProgress, "wave still in progress")
	}

	now := time.Now()
	g.Wave++
	g.PendingEnemies = generateWave(g.Wave, g.Difficulty, g.Path, now)
	g.WaveCleared = false
	g.UpdatedAt = now
	snap := snapshotLocked(g, now)
	g.mu.Unlock()

	r.emit(protocol.EventWaveStarted, snap)
	return actionResult{Success: true, Game: snap}
}

func (r *registry) buildTower(gameID, playerID string, tt towerType, pos position) actionResult {
	g := r.lookup(gameID)
	if g == nil {
		return failure(codeNotFound, "game not found")
	}
	if !validTowerType(tt) {
		return failure(codeNotFound, fmt.Sprintf("unknown tower type %q", tt))
	}

	g.mu.Lock()
	p := g.findPlayer(playerID)
	if p == nil {
		g.mu.Unlock()
		return failure(codeNotFound, "player not in game")
	}
	for _, other := range g.Towers {
		if distance(other.Position, pos) < minTowerSeparation {
			g.mu.Unlock()
			return failure(codePositionInvalid, "position occupied by another tower")
		}
	}
	if onPath(g.Path, pos) {
		g.mu.Unlock()
		return failure(codePositionInvalid, "cannot build on the enemy path")
	}
	attrs := towerAttributesAt(tt, 1)
	if p.Money < attrs.Cost {
		g.mu.Unlock()
		return failure(codeInsufficientFunds, fmt.Sprintf("tower costs %d, player has %d", attrs.Cost, p.Money))
	}

	now := time.Now()
	t := &tower{
		ID:         uuid.NewString(),
		Type:       tt,
		PlayerID:   playerID,
		Position:   pos,
		Level:      1,
		Attributes: attrs,
		CreatedAt:  now,
	}
	p.Money -= attrs.Cost
	p.Statistics.TowersBuilt++
	p.Statistics.MoneySpent += attrs.Cost
	g.Towers = append(g.Towers, t)
	g.UpdatedAt = now
	snap := snapshotLocked(g, now)
	ts := towerState(t)
	g.mu.Unlock()

	r.emit(protocol.EventState, snap)
	return actionResult{Success: true, Game: snap, Tower: &ts}
}

func (r *registry) upgradeTower(gameID, playerID, towerID string) actionResult {
	g := r.lookup(gameID)
	if g == nil {
		return failure(codeNotFound, "game not found")
	}

	g.mu.Lock()
	p := g.findPlayer(playerID)
	if p == nil {
		g.mu.Unlock()
		return failure(codeNotFound, "player not in game")
	}
	t := g.findTower(towerID)
	if t == nil {
		g.mu.Unlock()
		return failure(codeNotFound, "tower not found")
	}
	if t.PlayerID != playerID {
		g.mu.Unlock()
		return failure(codePermissionDenied, "tower belongs to another player")
	}
	if t.Level >= maxTowerLevel(t.Type) {
		g.mu.Unlock()
		return failure(codeMaxLevelReached, fmt.Sprintf("%s tower is already at max level %d", t.Type, t.Level))
	}
	cost := upgradeCostAt(t.Type, t.Level)
	if p.Money < cost {
		g.mu.Unlock()
		return failure(codeInsufficientFunds, fmt.Sprintf("upgrade costs %d, player has %d", cost, p.Money))
	}

	now := time.Now()
	p.Money -= cost
	p.Statistics.MoneySpent += cost
	t.Level++
	t.Attributes = towerAttributesAt(t.Type, t.Level)
	g.UpdatedAt = now
	snap := snapshotLocked(g, now)
	ts := towerState(t)
	g.mu.Unlock()

	r.emit(protocol.EventState, snap)
	return actionResult{Success: true, Game: snap, Tower: &ts}
}

func (r *registry) sellTower(gameID, playerID, towerID string) actionResult {
	g := r.lookup(gameID)
	if g == nil {
		return failure(codeNotFound, "game not found")
	}

	g.mu.Lock()
	p := g.findPlayer(playerID)
	if p == nil {
		g.mu.Unlock()
		return failure(codeNotFound, "player not in game")
	}
	t := g.findTower(towerID)
	if t == nil {
		g.mu.Unlock()
		return failure(codeNotFound, "tower not found")
	}
	if t.PlayerID != playerID {
		g.mu.Unlock()
		return failure(codePermissionDenied, "tower belongs to another player")
	}

	now := time.Now()
	p.Money += sellValue(t.Type, t.Level)
	kept := g.Towers[:0]
	for _, other := range g.Towers {
		if other.ID != towerID {
			kept = append(kept, other)
		}
	}
	g.Towers = kept
	g.UpdatedAt = now
	snap := snapshotLocked(g, now)
	g.mu.Unlock()

	r.emit(protocol.EventState, snap)
	return actionResult{Success: true, Game: snap}
}

func (r *registry) pauseGame(gameID string) actionResult {
	g := r.lookup(gameID)
	if g == nil {
		return failure(codeNotFound, "game not found")
	}

	g.mu.Lock()
	if g.State != phaseRunning {
		g.mu.Unlock()
		return failure(codeInvalidState, fmt.Sprintf("cannot pause game in state %q", g.State))
	}
	now := time.Now()
	g.State = phasePaused
	g.UpdatedAt = now
	loop := g.loop
	g.loop = nil
	snap := snapshotLocked(g, now)
	g.mu.Unlock()

	if loop != nil {
		loop.stop()
	}
	r.emit(protocol.EventGamePaused, snap)
	return actionResult{Success: true, Game: snap}
}

func (r *registry) resumeGame(gameID string) actionResult {
	g := r.lookup(gameID)
	if g == nil {
		return failure(codeNotFound, "game not found")
	}

	g.mu.Lock()
	if g.State != phasePaused {
		g.mu.Unlock()
		return failure(codeInvalidState, fmt.Sprintf("cannot resume game in state %q", g.State))
	}
	now := time.Now()
	g.State = phaseRunning
	g.UpdatedAt = now
	g.loop = newGameLoop(g, r.tick, r.emit)
	go g.loop.run()
	snap := snapshotLocked(g, now)
	g.mu.Unlock()

	r.emit(protocol.EventGameResumed, snap)
	return actionResult{Success: true, Game: snap}
}

// stopGame ends the match for good. Stopping a game that is already in a
// terminal state is a no-op success; terminal states only leave via deletion.
func (r *registry) stopGame(gameID string) actionResult {
	g := r.lookup(gameID)
	if g == nil {
		return failure(codeNotFound, "game not found")
	}

	g.mu.Lock()
	now := time.Now()
	if g.State == phaseFinished || g.State == phaseGameOver {
		snap := snapshotLocked(g, now)
		g.mu.Unlock()
		return actionResult{Success: true, Game: snap}
	}
	g.State = phaseFinished
	g.UpdatedAt = now
	loop := g.loop
	g.loop = nil
	snap := snapshotLocked(g, now)
	g.mu.Unlock()

	if loop != nil {
		loop.stop()
	}
	r.emit(protocol.EventGameStopped, snap)
	return actionResult{Success: true, Game: snap}
}

// deleteGame removes a game entirely and frees its loop. Safe to call after
// the loop stopped itself on game over.
func (r *registry) deleteGame(gameID string) actionResult {
	r.mu.Lock()
	g := r.games[gameID]
	if g == nil {
		r.mu.Unlock()
		return failure(codeNotFound, "game not found")
	}
	delete(r.games, gameID)
	r.mu.Unlock()

	g.mu.Lock()
	now := time.Now()
	// Leave terminal states alone; otherwise close the game out so an
	// in-flight tick sees a non-running state and does nothing.
	if g.State != phaseFinished && g.State != phaseGameOver {
		g.State = phaseFinished
	}
	g.UpdatedAt = now
	loop := g.loop
	g.loop = nil
	snap := snapshotLocked(g, now)
	g.mu.Unlock()

	if loop != nil {
		loop.stop()
	}
	r.emit(protocol.EventGameDeleted, snap)
	return actionResult{Success: true, Game: snap}
}

// markConnected flips a player's connection flag without going through the
// join path, for transport-level connect and disconnect tracking.
func (r *registry) markConnected(gameID, playerID string, connected bool) {
	g := r.lookup(gameID)
	if g == nil {
		return
	}
	g.mu.Lock()
	p := g.findPlayer(playerID)
	if p == nil {
		g.mu.Unlock()
		return
	}
	p.Connected = connected
	now := time.Now()
	g.UpdatedAt = now
	snap := snapshotLocked(g, now)
	g.mu.Unlock()

	r.emit(protocol.EventState, snap)
}

// onPath reports whether a position sits within clearance of any segment of
// the enemy route.
func onPath(path []position, pos position) bool {
	for i := 0; i < len(path)-1; i++ {
		if pointSegmentDistance(pos, path[i], path[i+1]) <= pathClearance {
			return true
		}
	}
	return false
}

func pointSegmentDistance(p, a, b position) float64 {
	abx := b.X - a.X
	aby := b.Y - a.Y
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return distance(p, a)
	}
	t := clampFloat(((p.X-a.X)*abx+(p.Y-a.Y)*aby)/lenSq, 0, 1)
	return distance(p, position{X: a.X + t*abx, Y: a.Y + t*aby})
}
