package gear

import "gearsearch/gamedata"

// targetArmor is the standard target's armor value Power DPS is normalized
// against (spec §4.3).
const targetArmor = 2597.0

// baselineEffectiveHealth is the normalization constant Survivability
// divides by (spec §4.3).
const baselineEffectiveHealth = 1967.0

// healingBaseValue and healingPowerCoefficient parameterize the modeled
// healing skill (spec §4.3).
const healingBaseValue = 390.0
const healingPowerCoefficient = 0.3

func tick(coef gamedata.ConditionCoefficient, conditionDamage float64) float64 {
	return coef.Factor*conditionDamage + coef.BaseDamage
}

// ScorePowerDPS computes Power DPS + Siphon DPS + Power2 DPS, writing
// Effective Power, Power DPS, Siphon DPS and Power2 DPS back onto the
// attribute vector as a side effect (spec §4.3). Missing Power Coefficient / Siphon Base Coefficient default
// to 0, since both are read straight off the attribute vector.
func ScorePowerDPS(c *Character) float64 {
	s := c.settings
	a := c.Attributes

	critDmg := a.Get(s.CriticalDamageIdx()) * s.Modifiers.DM("Critical Damage")
	critChance := clamp(a.Get(s.CriticalChanceIdx()), 0, 1)
	effectivePower := a.Get(s.PowerIdx()) * (1 + critChance*(critDmg-1)) * s.Modifiers.DM("Strike Damage")
	a.Set(s.EffectivePowerIdx(), effectivePower)

	powerDPS := (a.Get(s.PowerCoefficientIdx()) / targetArmor) * effectivePower
	siphonDPS := a.Get(s.SiphonBaseCoefficientIdx()) * s.Modifiers.DM("Siphon Damage")

	a.Set(s.PowerDPSIdx(), powerDPS)
	// The source assigns Siphon DPS from the power-damage variable, which
	// looks like a copy-paste bug (spec §9 Open Questions). This records
	// the actual siphon value instead of duplicating Power DPS.
	a.Set(s.SiphonDPSIdx(), siphonDPS)

	power2DPS := scorePower2DPS(c)

	return powerDPS + siphonDPS + power2DPS
}

// scorePower2DPS computes the secondary power source's contribution
// (spec §4.3 extension): zero whenever Power2 Coefficient is unset, so a
// build without a pet/phantasm/clone source pays only the one Get call.
func scorePower2DPS(c *Character) float64 {
	s := c.settings
	a := c.Attributes

	coefficient := a.Get(s.Power2CoefficientIdx())
	if coefficient <= 0 {
		a.Set(s.Power2DPSIdx(), 0)
		return 0
	}

	altCritDmg := a.Get(s.AltCriticalDamageIdx()) * s.Modifiers.DM("Alt Critical Damage")
	altCritChance := clamp(a.Get(s.AltCriticalChanceIdx()), 0, 1)
	altEffectivePower := a.Get(s.AltPowerIdx()) * (1 + altCritChance*(altCritDmg-1)) *
		s.Modifiers.DM("Strike Damage") * s.Modifiers.DM("Alt Damage")

	power2DPS := (coefficient / targetArmor) * altEffectivePower
	a.Set(s.Power2DPSIdx(), power2DPS)
	return power2DPS
}

// ScoreCondiDPS computes total condition DPS across settings.RelevantConditions,
// augmenting the attribute vector with "{condition} Damage/Stacks/DPS" for
// every relevant condition (spec §4.3's side-effect contract). Expertise's
// contribution to Condition Duration is applied once per call.
func ScoreCondiDPS(c *Character) float64 {
	s := c.settings
	a := c.Attributes

	a.Add(s.ConditionDurationIdx(), a.Get(s.ExpertiseIdx())/1500)
	conditionDuration := a.Get(s.ConditionDurationIdx())
	conditionDamage := a.Get(s.ConditionDamageIdx())

	total := 0.0
	for i, cond := range s.RelevantConditions {
		mult := s.Modifiers.DM("Condition Damage") * s.Modifiers.DM(cond+" Damage")

		var damageC float64
		switch cond {
		case "Torment":
			still, _ := s.conditionCoefficient("Torment")
			moving, _ := s.conditionCoefficient("TormentMoving")
			damageC = tick(still, conditionDamage)*(1-s.MovementUptime) + tick(moving, conditionDamage)*s.MovementUptime
		case "Confusion":
			passive, _ := s.conditionCoefficient("Confusion")
			active, _ := s.conditionCoefficient("ConfusionActive")
			damageC = tick(passive, conditionDamage) + tick(active, conditionDamage)*s.AttackRate
		default:
			coef, ok := s.conditionCoefficient(cond)
			if !ok {
				continue
			}
			damageC = tick(coef, conditionDamage) * mult
		}

		idx := s.conditionIdx[i]
		duration := 1 + clamp(a.Get(idx.duration)+conditionDuration, 0, 1)
		stacks := a.Get(idx.coefficient) * duration
		dpsC := stacks * damageC

		a.Set(idx.damage, damageC)
		a.Set(idx.stacks, stacks)
		a.Set(idx.dps, dpsC)
		total += dpsC
	}
	return total
}

// ScoreCondiDPSCached wraps ScoreCondiDPS with the C5 memoization spec §4.4
// describes for the fast evaluation path. Disabled entirely when the cache
// is nil (DisableCondiResultCache) or there are no relevant conditions.
func ScoreCondiDPSCached(c *Character, cache *CondiCache) float64 {
	s := c.settings
	if cache == nil || len(s.RelevantConditions) == 0 {
		return ScoreCondiDPS(c)
	}
	expertise := c.Attributes.Get(s.ExpertiseIdx())
	conditionDamage := c.Attributes.Get(s.ConditionDamageIdx())
	if v, ok := cache.Get(expertise, conditionDamage); ok {
		return v
	}
	v := ScoreCondiDPS(c)
	cache.Put(expertise, conditionDamage, v)
	return v
}

// ScoreSurvivability computes Effective Health / baselineEffectiveHealth,
// folding Toughness into Armor as a side effect (spec §4.3).
func ScoreSurvivability(c *Character) float64 {
	s := c.settings
	a := c.Attributes

	armor := a.Get(s.ArmorIdx()) + a.Get(s.ToughnessIdx())
	a.Set(s.ArmorIdx(), armor)

	damageTaken := s.Modifiers.DM("Damage Taken")
	effectiveHealth := a.Get(s.HealthIdx()) * armor / damageTaken
	a.Set(s.EffectiveHealthIdx(), effectiveHealth)

	survivability := effectiveHealth / baselineEffectiveHealth
	a.Set(s.SurvivabilityIdx(), survivability)
	return survivability
}

// ScoreHealing computes the modeled healing skill's effective output,
// applying the bountiful-maintenance-oil multiplier when present (spec
// §4.3).
func ScoreHealing(c *Character) float64 {
	s := c.settings
	a := c.Attributes

	healingPower := a.Get(s.HealingPowerIdx())
	outgoingHealing := a.Get(s.OutgoingHealingIdx())
	effectiveHealing := (healingPower*healingPowerCoefficient + healingBaseValue) * (1 + outgoingHealing)

	if s.Modifiers.HasBountifulMaintenanceOil {
		effectiveHealing *= 1 + (healingPower*0.6+a.Get(s.ConcentrationIdx())*0.8)/10000
	}

	a.Set(s.HealingIdx(), effectiveHealing)
	return effectiveHealing
}

// scoreDamageTotal combines Power DPS, condition DPS, and any flat DPS bonus
// into the total damage score (spec §4.3).
func scoreDamageTotal(c *Character, powerDPS, condiDPS float64) float64 {
	s := c.settings
	total := powerDPS + condiDPS + c.Attributes.Get(s.FlatDPSIdx())
	c.Attributes.Set(s.DamageIdx(), total)
	return total
}
