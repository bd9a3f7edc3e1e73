package main

import (
	"time"

	"github.com/bhonris/multi-td/protocol"
)

// snapshotLocked builds a complete wire view of the game. The caller holds
// the game lock; the returned snapshot shares nothing with the live state,
// so it can be encoded and sent after the lock is released.
func snapshotLocked(g *game, now time.Time) *protocol.GameSnapshot {
	snap := &protocol.GameSnapshot{
		ID:           g.ID,
		HostID:       g.HostID,
		Players:      make([]protocol.PlayerState, 0, len(g.Players)),
		MaxPlayers:   g.MaxPlayers,
		State:        string(g.State),
		Difficulty:   string(g.Difficulty),
		Wave:         g.Wave,
		BaseHealth:   g.BaseHealth,
		Enemies:      make([]protocol.EnemyState, 0, len(g.Enemies)),
		PendingCount: len(g.PendingEnemies),
		Towers:       make([]protocol.TowerState, 0, len(g.Towers)),
		Money:        make(map[string]int, len(g.Players)),
		Path:         make([]protocol.Position, 0, len(g.Path)),
		WaveCleared:  g.WaveCleared,
		TickIndex:    g.TickIndex,
		ServerTime:   now.UnixMilli(),
		CreatedAt:    g.CreatedAt.UnixMilli(),
		UpdatedAt:    g.UpdatedAt.UnixMilli(),
	}
	for _, p := range g.Players {
		snap.Players = append(snap.Players, playerState(p))
		snap.Money[p.ID] = p.Money
	}
	for _, e := range g.Enemies {
		snap.Enemies = append(snap.Enemies, enemyState(e))
	}
	for _, t := range g.Towers {
		snap.Towers = append(snap.Towers, towerState(t))
	}
	for _, p := range g.Path {
		snap.Path = append(snap.Path, protocol.Position{X: p.X, Y: p.Y})
	}
	return snap
}

func summaryLocked(g *game) protocol.GameSummary {
	return protocol.GameSummary{
		ID:          g.ID,
		HostID:      g.HostID,
		State:       string(g.State),
		Difficulty:  string(g.Difficulty),
		PlayerCount: len(g.Players),
		MaxPlayers:  g.MaxPlayers,
		Wave:        g.Wave,
		UpdatedAt:   g.UpdatedAt.UnixMilli(),
	}
}

func playerState(p *player) protocol.PlayerState {
	return protocol.PlayerState{
		ID:        p.ID,
		Name:      p.Name,
		Ready:     p.Ready,
		Connected: p.Connected,
		Money:     p.Money,
		Statistics: protocol.PlayerStatistics{
			TowersBuilt:     p.Statistics.TowersBuilt,
			EnemiesDefeated: p.Statistics.EnemiesDefeated,
			MoneySpent:      p.Statistics.MoneySpent,
			MoneyEarned:     p.Statistics.MoneyEarned,
		},
	}
}

func towerState(t *tower) protocol.TowerState {
	return protocol.TowerState{
		ID:       t.ID,
		Type:     string(t.Type),
		PlayerID: t.PlayerID,
		Position: protocol.Position{X: t.Position.X, Y: t.Position.Y},
		Level:    t.Level,
		Attributes: protocol.TowerAttributes{
			Range:         t.Attributes.Range,
			Damage:        t.Attributes.Damage,
			Cooldown:      t.Attributes.Cooldown,
			Cost:          t.Attributes.Cost,
			UpgradeCost:   t.Attributes.UpgradeCost,
			SplashRadius:  t.Attributes.SplashRadius,
			SlowFactor:    t.Attributes.SlowFactor,
			MoneyBonus:    t.Attributes.MoneyBonus,
			SupportRadius: t.Attributes.SupportRadius,
			SupportBonus:  t.Attributes.SupportBonus,
		},
		TargetID:         t.TargetID,
		LastAttackTime:   t.LastAttackTime.UnixMilli(),
		TotalDamageDealt: t.TotalDamageDealt,
		TotalKills:       t.TotalKills,
		CreatedAt:        t.CreatedAt.UnixMilli(),
	}
}

func enemyState(e *enemy) protocol.EnemyState {
	state := protocol.EnemyState{
		ID:        e.ID,
		Type:      string(e.Type),
		Health:    e.Health,
		MaxHealth: e.MaxHealth,
		Position:  protocol.Position{X: e.Position.X, Y: e.Position.Y},
		Speed:     e.Speed,
		Reward:    e.Reward,
		Damage:    e.Damage,
		Abilities: make([]string, 0, len(e.Abilities)),
		Effects:   make([]protocol.EnemyEffect, 0, len(e.Effects)),
		PathIndex: e.PathIndex,
		SpawnAt:   e.SpawnAt.UnixMilli(),
	}
	for _, a := range e.Abilities {
		state.Abilities = append(state.Abilities, string(a))
	}
	for _, eff := range e.Effects {
		state.Effects = append(state.Effects, protocol.EnemyEffect{
			Type:     eff.Type,
			Duration: eff.Duration.Milliseconds(),
			EndTime:  eff.EndsAt.UnixMilli(),
			Factor:   eff.Factor,
			SourceID: eff.SourceID,
		})
	}
	return state
}
