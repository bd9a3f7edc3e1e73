package main

import (
	"math"
	"time"
)

// inRange applies a forgiveness bonus on top of the nominal radius: short
// range towers get the largest bonus, snipers the smallest.
func inRange(from, to position, radius float64) bool {
	var aoeBonus float64
	switch {
	case radius <= 2.5:
		aoeBonus = 0.5
	case radius <= 3.5:
		aoeBonus = 0.3
	default:
		aoeBonus = 0.2
	}
	return distance(from, to) <= radius+aoeBonus
}

// findTarget keeps the tower's current target while it stays alive and in
// range, otherwise picks the in-range enemy furthest along the path.
func findTarget(t *tower, enemies []*enemy) *enemy {
	var inRangeEnemies []*enemy
	for _, e := range enemies {
		if e.alive() && inRange(t.Position, e.Position, t.Attributes.Range) {
			inRangeEnemies = append(inRangeEnemies, e)
		}
	}
	if len(inRangeEnemies) == 0 {
		return nil
	}

	if t.TargetID != "" {
		for _, e := range inRangeEnemies {
			if e.ID == t.TargetID {
				return e
			}
		}
	}

	target := inRangeEnemies[0]
	for _, e := range inRangeEnemies[1:] {
		if e.PathIndex > target.PathIndex {
			target = e
		}
	}
	return target
}

// supportDamageBonus sums the bonus of every support tower whose aura covers
// the given tower.
func supportDamageBonus(g *game, t *tower) float64 {
	var bonus float64
	for _, other := range g.Towers {
		if other.Type != towerSupport || other.ID == t.ID {
			continue
		}
		if distance(other.Position, t.Position) <= other.Attributes.SupportRadius {
			bonus += other.Attributes.SupportBonus
		}
	}
	return bonus
}

// processAttacks runs one combat pass: every tower off cooldown fires at its
// target, splash and slow side effects apply, and dead enemies are removed at
// the end so towers in the same pass can still splash off them.
func processAttacks(g *game, now time.Time) {
	for _, t := range g.Towers {
		if t.Type == towerSupport || t.Attributes.Damage <= 0 {
			continue
		}
		if now.Sub(t.LastAttackTime) < time.Duration(t.Attributes.Cooldown)*time.Millisecond {
			continue
		}

		target := findTarget(t, g.Enemies)
		if target == nil {
			t.TargetID = ""
			continue
		}

		attackEnemy(g, t, target, now)
		t.LastAttackTime = now
		if target.alive() {
			t.TargetID = target.ID
		} else {
			t.TargetID = ""
		}
	}

	alive := g.Enemies[:0]
	for _, e := range g.Enemies {
		if e.alive() {
			alive = append(alive, e)
		}
	}
	g.Enemies = alive
}

func attackEnemy(g *game, t *tower, target *enemy, now time.Time) {
	damage := t.Attributes.Damage * (1 + supportDamageBonus(g, t))

	target.Health -= damage
	t.TotalDamageDealt += damage

	switch t.Type {
	case towerSplash:
		if t.Attributes.SplashRadius > 0 {
			splash := damage * splashDamageFactor
			for _, other := range g.Enemies {
				if other.ID == target.ID || !other.alive() {
					continue
				}
				if !inRange(target.Position, other.Position, t.Attributes.SplashRadius) {
					continue
				}
				other.Health -= splash
				t.TotalDamageDealt += splash
				if !other.alive() {
					other.Health = 0
					rewardKill(g, t, other)
				}
			}
		}
	case towerSlow:
		if t.Attributes.SlowFactor > 0 {
			applySlow(target, t, now)
		}
	}

	if !target.alive() {
		target.Health = 0
		rewardKill(g, t, target)
	}
}

// applySlow replaces any slow already applied by the same tower, so a slow
// tower refreshes rather than stacks its own effect.
func applySlow(e *enemy, t *tower, now time.Time) {
	kept := e.Effects[:0]
	for _, eff := range e.Effects {
		if eff.Type == effectSlow && eff.SourceID == t.ID {
			continue
		}
		kept = append(kept, eff)
	}
	e.Effects = append(kept, enemyEffect{
		Type:     effectSlow,
		Duration: slowEffectDuration,
		EndsAt:   now.Add(slowEffectDuration),
		Factor:   t.Attributes.SlowFactor,
		SourceID: t.ID,
	})
}

// rewardKill credits the owning player with the enemy's bounty, boosted for
// money towers, and bumps kill statistics on both tower and player.
func rewardKill(g *game, t *tower, e *enemy) {
	reward := e.Reward
	if t.Type == towerMoney && t.Attributes.MoneyBonus > 0 {
		reward = int(math.Floor(float64(reward) * (1 + t.Attributes.MoneyBonus)))
	}

	t.TotalKills++
	if p := g.findPlayer(t.PlayerID); p != nil {
		p.Money += reward
		p.Statistics.EnemiesDefeated++
		p.Statistics.MoneyEarned += reward
	}
}

// slowMultiplier combines active slow effects multiplicatively and drops the
// expired ones in place.
func slowMultiplier(e *enemy, now time.Time) float64 {
	mult := 1.0
	kept := e.Effects[:0]
	for _, eff := range e.Effects {
		if now.After(eff.EndsAt) {
			continue
		}
		kept = append(kept, eff)
		if eff.Type == effectSlow {
			mult *= 1 - eff.Factor
		}
	}
	e.Effects = kept
	return mult
}
