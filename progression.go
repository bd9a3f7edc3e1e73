package main

import "math"

type towerBase struct {
	Range         float64
	Damage        float64
	Cooldown      float64
	Cost          int
	UpgradeCost   int
	SplashRadius  float64
	SlowFactor    float64
	MoneyBonus    float64
	SupportRadius float64
	SupportBonus  float64
}

var towerConfigs = map[towerType]towerBase{
	towerBasic:     {Range: 3, Damage: 20, Cooldown: 1000, Cost: 100, UpgradeCost: 70},
	towerSniper:    {Range: 6, Damage: 50, Cooldown: 2000, Cost: 200, UpgradeCost: 140},
	towerSplash:    {Range: 2, Damage: 15, Cooldown: 1500, Cost: 150, UpgradeCost: 105, SplashRadius: 1},
	towerSlow:      {Range: 3, Damage: 5, Cooldown: 1000, Cost: 150, UpgradeCost: 105, SlowFactor: 0.3},
	towerMoney:     {Range: 4, Damage: 10, Cooldown: 1000, Cost: 200, UpgradeCost: 140, MoneyBonus: 0.2},
	towerRapidFire: {Range: 2, Damage: 8, Cooldown: 250, Cost: 175, UpgradeCost: 120},
	towerSupport:   {Cost: 250, UpgradeCost: 150, SupportRadius: 2, SupportBonus: 0.2},
}

const (
	levelMultiplierFactor    = 0.3
	cooldownReductionFactor  = 0.1
	splashRadiusLevelFactor  = 0.3
	slowFactorLevelBonus     = 0.1
	moneyBonusLevelBonus     = 0.1
	supportRadiusLevelFactor = 0.15
	supportBonusLevelBonus   = 0.05
	upgradeCostLevelFactor   = 0.7
)

type milestone struct {
	Level int
	Bonus towerAttributes
}

type towerLevelConfig struct {
	MaxLevel   int
	Milestones []milestone
}

var towerLevelConfigs = map[towerType]towerLevelConfig{
	towerBasic: {MaxLevel: 5, Milestones: []milestone{
		{Level: 3, Bonus: towerAttributes{Range: 0.5}},
		{Level: 5, Bonus: towerAttributes{Damage: 10}},
	}},
	towerSniper: {MaxLevel: 5, Milestones: []milestone{
		{Level: 3, Bonus: towerAttributes{SplashRadius: 0.5}},
		{Level: 5, Bonus: towerAttributes{Range: 1}},
	}},
	towerSplash: {MaxLevel: 5, Milestones: []milestone{
		{Level: 3, Bonus: towerAttributes{SplashRadius: 0.5}},
		{Level: 5, Bonus: towerAttributes{Damage: 5, SplashRadius: 0.5}},
	}},
	towerSlow: {MaxLevel: 5, Milestones: []milestone{
		{Level: 3, Bonus: towerAttributes{SlowFactor: 0.1}},
		{Level: 5, Bonus: towerAttributes{Range: 1, SlowFactor: 0.1}},
	}},
	towerMoney: {MaxLevel: 4, Milestones: []milestone{
		{Level: 3, Bonus: towerAttributes{MoneyBonus: 0.1}},
		{Level: 4, Bonus: towerAttributes{Range: 1, MoneyBonus: 0.15}},
	}},
	towerRapidFire: {MaxLevel: 6, Milestones: []milestone{
		{Level: 3, Bonus: towerAttributes{Damage: 3}},
		{Level: 5, Bonus: towerAttributes{Range: 0.5}},
		{Level: 6, Bonus: towerAttributes{Cooldown: -50}},
	}},
	towerSupport: {MaxLevel: 4, Milestones: []milestone{
		{Level: 2, Bonus: towerAttributes{SupportRadius: 0.5}},
		{Level: 4, Bonus: towerAttributes{SupportBonus: 0.1, SupportRadius: 1}},
	}},
}

func validTowerType(t towerType) bool {
	_, ok := towerConfigs[t]
	return ok
}

func maxTowerLevel(t towerType) int {
	return towerLevelConfigs[t].MaxLevel
}

// towerAttributesAt derives the full attribute set of a tower type at a given
// level. Range and damage grow multiplicatively per level, cooldown shrinks
// with a floor, and milestone bonuses stack flat on top.
func towerAttributesAt(t towerType, level int) towerAttributes {
	base := towerConfigs[t]
	bonus := float64(level - 1)

	attrs := towerAttributes{
		Range:       base.Range + base.Range*levelMultiplierFactor*bonus,
		Damage:      base.Damage + base.Damage*levelMultiplierFactor*bonus,
		Cooldown:    math.Max(minCooldownMs, base.Cooldown-base.Cooldown*cooldownReductionFactor*bonus),
		Cost:        base.Cost,
		UpgradeCost: upgradeCostAt(t, level),
	}
	if base.SplashRadius > 0 {
		attrs.SplashRadius = base.SplashRadius + base.SplashRadius*splashRadiusLevelFactor*bonus
	}
	if base.SlowFactor > 0 {
		attrs.SlowFactor = math.Min(maxSlowFactor, base.SlowFactor+slowFactorLevelBonus*bonus)
	}
	if base.MoneyBonus > 0 {
		attrs.MoneyBonus = base.MoneyBonus + moneyBonusLevelBonus*bonus
	}
	if base.SupportRadius > 0 {
		attrs.SupportRadius = base.SupportRadius + base.SupportRadius*supportRadiusLevelFactor*bonus
	}
	if base.SupportBonus > 0 {
		attrs.SupportBonus = base.SupportBonus + supportBonusLevelBonus*bonus
	}

	for _, m := range towerLevelConfigs[t].Milestones {
		if level < m.Level {
			continue
		}
		attrs.Range += m.Bonus.Range
		attrs.Damage += m.Bonus.Damage
		attrs.Cooldown += m.Bonus.Cooldown
		attrs.SplashRadius += m.Bonus.SplashRadius
		attrs.SlowFactor += m.Bonus.SlowFactor
		attrs.MoneyBonus += m.Bonus.MoneyBonus
		attrs.SupportRadius += m.Bonus.SupportRadius
		attrs.SupportBonus += m.Bonus.SupportBonus
	}
	return attrs
}

// upgradeCostAt is the price of leaving the given level for the next one.
func upgradeCostAt(t towerType, level int) int {
	base := towerConfigs[t]
	return int(math.Floor(float64(base.UpgradeCost) * math.Pow(upgradeCostLevelFactor, float64(level-1))))
}

// totalTowerSpend is everything sunk into a tower at the given level: the
// initial cost plus every upgrade paid on the way up.
func totalTowerSpend(t towerType, level int) int {
	total := towerConfigs[t].Cost
	for l := 1; l < level; l++ {
		total += upgradeCostAt(t, l)
	}
	return total
}

func sellValue(t towerType, level int) int {
	return int(math.Floor(float64(totalTowerSpend(t, level)) * sellRefundRate))
}

type enemyBase struct {
	Health    float64
	Speed     float64
	Reward    int
	Damage    int
	Abilities []enemyAbility
}

var enemyConfigs = map[enemyType]enemyBase{
	enemyBasic:  {Health: 100, Speed: 1.0, Reward: 15, Damage: 1},
	enemyFast:   {Health: 70, Speed: 2.0, Reward: 20, Damage: 1},
	enemyTank:   {Health: 250, Speed: 0.8, Reward: 25, Damage: 2},
	enemyHealer: {Health: 120, Speed: 1.0, Reward: 20, Damage: 1, Abilities: []enemyAbility{abilityHeal}},
	enemyBoss:   {Health: 1000, Speed: 0.8, Reward: 100, Damage: 10, Abilities: []enemyAbility{abilityShield}},
}

const (
	healthWaveFactor  = 0.2
	rewardWaveFactor  = 0.1
	damageWaveFactor  = 0.15
	globalSpeedFactor = 0.3
)

func enemyHealthAt(t enemyType, wave int, d difficulty) float64 {
	base := enemyConfigs[t]
	return math.Floor(base.Health * (1 + float64(wave-1)*healthWaveFactor) * difficultyMultiplier(d))
}

func enemyRewardAt(t enemyType, wave int) int {
	base := enemyConfigs[t]
	return int(math.Floor(float64(base.Reward) * (1 + float64(wave-1)*rewardWaveFactor)))
}

func enemyDamageAt(t enemyType, wave int, d difficulty) int {
	base := enemyConfigs[t]
	return int(math.Floor(float64(base.Damage) * (1 + float64(wave-1)*damageWaveFactor) * difficultyMultiplier(d)))
}

func enemySpeedAt(t enemyType, wave int, d difficulty) float64 {
	base := enemyConfigs[t]
	speed := base.Speed * difficultyMultiplier(d) * (speedWaveBase + float64(wave-1)*globalSpeedFactor)
	return round2(speed)
}

// enemyAbilitiesAt returns the base abilities of the type plus the ones the
// wave number has unlocked. The slice is freshly allocated per enemy.
func enemyAbilitiesAt(t enemyType, wave int) []enemyAbility {
	base := enemyConfigs[t]
	abilities := make([]enemyAbility, len(base.Abilities))
	copy(abilities, base.Abilities)
	switch t {
	case enemyFast:
		if wave > fastSpeedAbilityWave {
			abilities = append(abilities, abilitySpeed)
		}
	case enemyTank:
		if wave > tankShieldAbilityWave {
			abilities = append(abilities, abilityShield)
		}
	case enemyBoss:
		if wave > bossRegenAbilityWave {
			abilities = append(abilities, abilityRegen)
		}
	}
	return abilities
}
