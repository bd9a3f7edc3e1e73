package main

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type waveRule struct {
	Type    enemyType
	Matches func(index, total int) bool
}

type wavePattern struct {
	MinWave int // 0 means no lower bound
	MaxWave int // 0 means no upper bound
	Rules   []waveRule
	Default enemyType
}

// Ordered by wave range. For each enemy slot the first matching rule wins;
// slots no rule claims fall back to the pattern default.
var wavePatterns = []wavePattern{
	{
		MaxWave: 2,
		Default: enemyBasic,
	},
	{
		MinWave: 3, MaxWave: 4,
		Rules: []waveRule{
			{Type: enemyFast, Matches: func(i, _ int) bool { return i%5 == 0 }},
		},
		Default: enemyBasic,
	},
	{
		MinWave: 5, MaxWave: 9,
		Rules: []waveRule{
			{Type: enemyFast, Matches: func(i, _ int) bool { return i%5 == 0 }},
			{Type: enemyTank, Matches: func(i, _ int) bool { return i%7 == 0 }},
		},
		Default: enemyBasic,
	},
	{
		MinWave: 10,
		Rules: []waveRule{
			{Type: enemyFast, Matches: func(i, _ int) bool { return i%5 == 0 }},
			{Type: enemyTank, Matches: func(i, _ int) bool { return i%7 == 0 }},
			{Type: enemyHealer, Matches: func(i, _ int) bool { return i%10 == 0 }},
		},
		Default: enemyBasic,
	},
}

func patternForWave(wave int) wavePattern {
	for _, wp := range wavePatterns {
		if wp.MinWave > 0 && wave < wp.MinWave {
			continue
		}
		if wp.MaxWave > 0 && wave > wp.MaxWave {
			continue
		}
		return wp
	}
	return wavePatterns[len(wavePatterns)-1]
}

func enemyTypeForSlot(wp wavePattern, index, total int) enemyType {
	for _, rule := range wp.Rules {
		if rule.Matches(index, total) {
			return rule.Type
		}
	}
	return wp.Default
}

func waveEnemyCount(wave int, d difficulty) int {
	base := math.Floor(waveBaseEnemyCount + wavePerWaveEnemyCount*float64(wave))
	return int(math.Floor(base * difficultyMultiplier(d)))
}

// generateWave builds the full roster for a wave, spawn times staggered by
// enemySpawnDelay from waveStart. Every fifth wave appends a boss after the
// regular slots.
func generateWave(wave int, d difficulty, path []position, waveStart time.Time) []*enemy {
	wp := patternForWave(wave)
	count := waveEnemyCount(wave, d)

	enemies := make([]*enemy, 0, count+1)
	for i := 0; i < count; i++ {
		t := enemyTypeForSlot(wp, i, count)
		enemies = append(enemies, newEnemy(t, wave, d, path, waveStart.Add(time.Duration(i)*enemySpawnDelay)))
	}
	if wave%bossWaveInterval == 0 {
		enemies = append(enemies, newEnemy(enemyBoss, wave, d, path, waveStart.Add(time.Duration(count)*enemySpawnDelay)))
	}
	return enemies
}

func newEnemy(t enemyType, wave int, d difficulty, path []position, spawnAt time.Time) *enemy {
	health := enemyHealthAt(t, wave, d)
	return &enemy{
		ID:        uuid.NewString(),
		Type:      t,
		Health:    health,
		MaxHealth: health,
		Position:  path[0],
		Speed:     enemySpeedAt(t, wave, d),
		Reward:    enemyRewardAt(t, wave),
		Damage:    enemyDamageAt(t, wave, d),
		Abilities: enemyAbilitiesAt(t, wave),
		Effects:   nil,
		Path:      path,
		PathIndex: 0,
		SpawnAt:   spawnAt,
	}
}

// defaultPath is the fixed route every enemy walks: in from the left edge,
// right, down, right again, then up and out.
func defaultPath() []position {
	path := make([]position, 0, 34)
	x, y := 0.0, 5.0
	path = append(path, position{X: x, Y: y})
	for i := 1; i < 10; i++ {
		x++
		path = append(path, position{X: x, Y: y})
	}
	for i := 1; i < 5; i++ {
		y++
		path = append(path, position{X: x, Y: y})
	}
	for i := 1; i <= 11; i++ {
		x++
		path = append(path, position{X: x, Y: y})
	}
	for i := 1; i < 10; i++ {
		y--
		path = append(path, position{X: x, Y: y})
	}
	return path
}
