package main

import (
	"sync"
	"time"

	"github.com/bhonris/multi-td/protocol"
)

const (
	defaultTickInterval     = 100 * time.Millisecond
	enemySpawnDelay         = 500 * time.Millisecond
	reconnectGrace          = 10 * time.Second
	defaultRedundantDelay   = 500 * time.Millisecond
	defaultMaxPlayers       = 4
	minTowerSeparation      = 1.0
	pathClearance           = 0.5
	slowEffectDuration      = 3 * time.Second
	splashDamageFactor      = 0.5
	sellRefundRate          = 0.8
	minCooldownMs           = 100.0
	maxSlowFactor           = 0.9
	waveBaseEnemyCount      = 10
	wavePerWaveEnemyCount   = 5
	bossWaveInterval        = 5
	healerHealRadius        = 2.0
	healerHealPerSecond     = 5.0
	bossRegenPerSecond      = 10.0
	fastSpeedAbilityWave    = 5
	tankShieldAbilityWave   = 8
	bossRegenAbilityWave    = 10
	speedWaveBase           = 0.2
	maxPlayerNameLen        = 32
)

type difficulty string

const (
	difficultyEasy   difficulty = "easy"
	difficultyNormal difficulty = "normal"
	difficultyHard   difficulty = "hard"
)

var initialBaseHealth = map[difficulty]int{
	difficultyEasy:   100,
	difficultyNormal: 80,
	difficultyHard:   60,
}

var initialMoney = map[difficulty]int{
	difficultyEasy:   1000,
	difficultyNormal: 200,
	difficultyHard:   150,
}

func difficultyMultiplier(d difficulty) float64 {
	switch d {
	case difficultyEasy:
		return 0.8
	case difficultyHard:
		return 1.2
	default:
		return 1.0
	}
}

func normalizeDifficulty(d string) difficulty {
	switch difficulty(d) {
	case difficultyEasy, difficultyHard:
		return difficulty(d)
	default:
		return difficultyNormal
	}
}

type gamePhase string

const (
	phaseWaiting  gamePhase = "waiting"
	phaseRunning  gamePhase = "running"
	phasePaused   gamePhase = "paused"
	phaseFinished gamePhase = "finished"
	phaseGameOver gamePhase = "game-over"
)

type towerType string

const (
	towerBasic     towerType = "basic"
	towerSniper    towerType = "sniper"
	towerSplash    towerType = "splash"
	towerSlow      towerType = "slow"
	towerMoney     towerType = "money"
	towerRapidFire towerType = "rapidFire"
	towerSupport   towerType = "support"
)

type enemyType string

const (
	enemyBasic  enemyType = "basic"
	enemyFast   enemyType = "fast"
	enemyTank   enemyType = "tank"
	enemyHealer enemyType = "healer"
	enemyBoss   enemyType = "boss"
)

type enemyAbility string

const (
	abilityHeal   enemyAbility = "heal"
	abilitySpeed  enemyAbility = "speed"
	abilityShield enemyAbility = "shield"
	abilityRegen  enemyAbility = "regen"
)

const (
	effectSlow = "slow"
	effectDoT  = "damage-over-time"
	effectStun = "stun"
)

type position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type towerAttributes struct {
	Range         float64
	Damage        float64
	Cooldown      float64 // milliseconds
	Cost          int
	UpgradeCost   int
	SplashRadius  float64
	SlowFactor    float64
	MoneyBonus    float64
	SupportRadius float64
	SupportBonus  float64
}

type tower struct {
	ID               string
	Type             towerType
	PlayerID         string
	Position         position
	Level            int
	Attributes       towerAttributes
	TargetID         string
	LastAttackTime   time.Time
	TotalDamageDealt float64
	TotalKills       int
	CreatedAt        time.Time
}

type enemyEffect struct {
	Type     string
	Duration time.Duration
	EndsAt   time.Time
	Factor   float64
	SourceID string
}

type enemy struct {
	ID        string
	Type      enemyType
	Health    float64
	MaxHealth float64
	Position  position
	Speed     float64 // path units advanced per tick
	Reward    int
	Damage    int
	Abilities []enemyAbility
	Effects   []enemyEffect
	Path      []position
	PathIndex int
	SpawnAt   time.Time // scheduled spawn time while pending
}

func (e *enemy) alive() bool { return e.Health > 0 }

func (e *enemy) atPathEnd() bool { return e.PathIndex >= len(e.Path)-1 }

func (e *enemy) hasAbility(a enemyAbility) bool {
	for _, have := range e.Abilities {
		if have == a {
			return true
		}
	}
	return false
}

type playerStatistics struct {
	TowersBuilt     int
	EnemiesDefeated int
	MoneySpent      int
	MoneyEarned     int
}

type player struct {
	ID         string
	Name       string
	Ready      bool
	Connected  bool
	Money      int
	Statistics playerStatistics
}

// game is the authoritative state of one match. All fields below mu are
// guarded by it; every mutation, whether from a tick or a player action,
// takes the lock first.
type game struct {
	mu   sync.Mutex
	loop *gameLoop

	ID             string
	HostID         string
	Players        []*player
	MaxPlayers     int
	State          gamePhase
	Difficulty     difficulty
	Wave           int
	BaseHealth     int
	Enemies        []*enemy
	PendingEnemies []*enemy
	Towers         []*tower
	Path           []position
	WaveCleared    bool
	TickIndex      uint64
	StartedAt      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (g *game) findPlayer(id string) *player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *game) findTower(id string) *tower {
	for _, t := range g.Towers {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// actionResult is the discriminated outcome of every inbound operation. It is
// always returned, never raised; callers branch on Success and surface Message
// directly to the player.
type actionResult struct {
	Success bool                   `json:"success"`
	Code    string                 `json:"code,omitempty"`
	Message string                 `json:"message,omitempty"`
	Game    *protocol.GameSnapshot `json:"game,omitempty"`
	Tower   *protocol.TowerState   `json:"tower,omitempty"`
}

const (
	codeNotFound          = "not_found"
	codeInvalidState      = "invalid_state"
	codePermissionDenied  = "permission_denied"
	codeCapacityExceeded  = "game_full"
	codeInsufficientFunds = "insufficient_funds"
	codePositionInvalid   = "position_invalid"
	codeMaxLevelReached   = "max_level_reached"
	codeWaveInProgress    = "wave_in_progress"
	codePlayersNotReady   = "players_not_ready"
)

func failure(code, message string) actionResult {
	return actionResult{Success: false, Code: code, Message: message}
}

type clientMessage struct {
	Type      string    `json:"type"`
	Ready     *bool     `json:"ready,omitempty"`
	TowerType string    `json:"towerType,omitempty"`
	TowerID   string    `json:"towerId,omitempty"`
	Position  *position `json:"position,omitempty"`
}
