package protocol

type Position struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

type TowerAttributes struct {
	Range         float64 `json:"range" msgpack:"range"`
	Damage        float64 `json:"damage" msgpack:"damage"`
	Cooldown      float64 `json:"cooldown" msgpack:"cooldown"`
	Cost          int     `json:"cost" msgpack:"cost"`
	UpgradeCost   int     `json:"upgradeCost" msgpack:"upgradeCost"`
	SplashRadius  float64 `json:"splashRadius,omitempty" msgpack:"splashRadius,omitempty"`
	SlowFactor    float64 `json:"slowFactor,omitempty" msgpack:"slowFactor,omitempty"`
	MoneyBonus    float64 `json:"moneyBonus,omitempty" msgpack:"moneyBonus,omitempty"`
	SupportRadius float64 `json:"supportRadius,omitempty" msgpack:"supportRadius,omitempty"`
	SupportBonus  float64 `json:"supportBonus,omitempty" msgpack:"supportBonus,omitempty"`
}

type TowerState struct {
	ID               string          `json:"id" msgpack:"id"`
	Type             string          `json:"type" msgpack:"type"`
	PlayerID         string          `json:"playerId" msgpack:"playerId"`
	Position         Position        `json:"position" msgpack:"position"`
	Level            int             `json:"level" msgpack:"level"`
	Attributes       TowerAttributes `json:"attributes" msgpack:"attributes"`
	TargetID         string          `json:"target,omitempty" msgpack:"target,omitempty"`
	LastAttackTime   int64           `json:"lastAttackTime" msgpack:"lastAttackTime"`
	TotalDamageDealt float64         `json:"totalDamageDealt" msgpack:"totalDamageDealt"`
	TotalKills       int             `json:"totalKills" msgpack:"totalKills"`
	CreatedAt        int64           `json:"createdAt" msgpack:"createdAt"`
}

type EnemyEffect struct {
	Type     string  `json:"type" msgpack:"type"`
	Duration int64   `json:"duration" msgpack:"duration"`
	EndTime  int64   `json:"endTime" msgpack:"endTime"`
	Factor   float64 `json:"factor" msgpack:"factor"`
	SourceID string  `json:"sourceId" msgpack:"sourceId"`
}

type EnemyState struct {
	ID        string        `json:"id" msgpack:"id"`
	Type      string        `json:"type" msgpack:"type"`
	Health    float64       `json:"health" msgpack:"health"`
	MaxHealth float64       `json:"maxHealth" msgpack:"maxHealth"`
	Position  Position      `json:"position" msgpack:"position"`
	Speed     float64       `json:"speed" msgpack:"speed"`
	Reward    int           `json:"reward" msgpack:"reward"`
	Damage    int           `json:"damage" msgpack:"damage"`
	Abilities []string      `json:"abilities" msgpack:"abilities"`
	Effects   []EnemyEffect `json:"effects" msgpack:"effects"`
	PathIndex int           `json:"pathIndex" msgpack:"pathIndex"`
	SpawnAt   int64         `json:"spawnAt" msgpack:"spawnAt"`
}

type PlayerStatistics struct {
	TowersBuilt     int `json:"towersBuilt" msgpack:"towersBuilt"`
	EnemiesDefeated int `json:"enemiesDefeated" msgpack:"enemiesDefeated"`
	MoneySpent      int `json:"moneySpent" msgpack:"moneySpent"`
	MoneyEarned     int `json:"moneyEarned" msgpack:"moneyEarned"`
}

type PlayerState struct {
	ID         string           `json:"id" msgpack:"id"`
	Name       string           `json:"name" msgpack:"name"`
	Ready      bool             `json:"isReady" msgpack:"isReady"`
	Connected  bool             `json:"isConnected" msgpack:"isConnected"`
	Money      int              `json:"money" msgpack:"money"`
	Statistics PlayerStatistics `json:"statistics" msgpack:"statistics"`
}

type GameSnapshot struct {
	ID           string         `json:"id" msgpack:"id"`
	HostID       string         `json:"hostId" msgpack:"hostId"`
	Players      []PlayerState  `json:"players" msgpack:"players"`
	MaxPlayers   int            `json:"maxPlayers" msgpack:"maxPlayers"`
	State        string         `json:"state" msgpack:"state"`
	Difficulty   string         `json:"difficulty" msgpack:"difficulty"`
	Wave         int            `json:"wave" msgpack:"wave"`
	BaseHealth   int            `json:"baseHealth" msgpack:"baseHealth"`
	Enemies      []EnemyState   `json:"enemies" msgpack:"enemies"`
	PendingCount int            `json:"pendingCount" msgpack:"pendingCount"`
	Towers       []TowerState   `json:"towers" msgpack:"towers"`
	Money        map[string]int `json:"money" msgpack:"money"`
	Path         []Position     `json:"path" msgpack:"path"`
	WaveCleared  bool           `json:"waveCleared" msgpack:"waveCleared"`
	TickIndex    uint64         `json:"tickIndex" msgpack:"tickIndex"`
	ServerTime   int64          `json:"serverTime" msgpack:"serverTime"`
	CreatedAt    int64          `json:"createdAt" msgpack:"createdAt"`
	UpdatedAt    int64          `json:"updatedAt" msgpack:"updatedAt"`
}

type GameSummary struct {
	ID          string `json:"id" msgpack:"id"`
	HostID      string `json:"hostId" msgpack:"hostId"`
	State       string `json:"state" msgpack:"state"`
	Difficulty  string `json:"difficulty" msgpack:"difficulty"`
	PlayerCount int    `json:"playerCount" msgpack:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers" msgpack:"maxPlayers"`
	Wave        int    `json:"wave" msgpack:"wave"`
	UpdatedAt   int64  `json:"updatedAt" msgpack:"updatedAt"`
}

// Event is the envelope for every server-to-client push. EventID is unique per
// emission; a receiver that sees the same EventID twice drops the duplicate.
type Event struct {
	EventID  string        `json:"eventId" msgpack:"eventId"`
	Type     string        `json:"type" msgpack:"type"`
	GameID   string        `json:"gameId" msgpack:"gameId"`
	Snapshot *GameSnapshot `json:"snapshot,omitempty" msgpack:"snapshot,omitempty"`
	At       int64         `json:"at" msgpack:"at"`
}

const (
	EventState       = "state"
	EventPlayerJoin  = "player-joined"
	EventPlayerReady = "player-ready"
	EventGameStarted = "game-started"
	EventWaveStarted = "wave-started"
	EventGamePaused  = "game-paused"
	EventGameResumed = "game-resumed"
	EventGameStopped = "game-stopped"
	EventGameOver    = "game-over"
	EventGameDeleted = "game-deleted"
)
