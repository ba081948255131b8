package gear

import "math"

// CalcStats derives c.Attributes from c.BaseAttributes: conversions, buffs,
// derived primaries, then post-buff conversions. Pure and deterministic —
// calling it twice on the same baseAttributes/gearStats always produces
// bit-identical attributes (spec §4.1, §8's determinism property).
//
// noRounding disables half-to-even rounding on point attributes; it is
// used only by the ±5 sensitivity pass and the coefficient helper (spec
// §4.5), never by the fast evaluation path.
func CalcStats(c *Character, noRounding bool) {
	s := c.settings
	attrs := c.Attributes
	copy(attrs, c.BaseAttributes)

	for _, rule := range s.Modifiers.Convert {
		applyConvertRule(attrs, c.BaseAttributes, rule, s, noRounding)
	}

	for _, b := range s.Modifiers.Buff {
		attrs.Add(b.Idx, b.Bonus)
	}

	attrs.Add(s.CriticalChanceIdx(), (attrs.Get(s.PrecisionIdx())-1000)/2100)
	attrs.Add(s.CriticalDamageIdx(), attrs.Get(s.FerocityIdx())/1500)
	attrs.Add(s.BoonDurationIdx(), attrs.Get(s.ConcentrationIdx())/1500)

	maxHealthPct := attrs.Get(s.MaximumHealthIdx())
	health := (attrs.Get(s.HealthIdx()) + attrs.Get(s.VitalityIdx())*10) * (1 + maxHealthPct)
	if !noRounding {
		health = math.RoundToEven(health)
	}
	attrs.Set(s.HealthIdx(), health)

	// Secondary power source (spec §4.3 extension): only derived when the
	// build actually carries a Power2 Coefficient, e.g. a pet or phantasm
	// contribution layered on top of the primary strike-damage source.
	if attrs.Get(s.Power2CoefficientIdx()) > 0 {
		attrs.Add(s.AltPowerIdx(), attrs.Get(s.PowerIdx()))
		attrs.Add(s.AltCriticalChanceIdx(), attrs.Get(s.CriticalChanceIdx())+attrs.Get(s.AltPrecisionIdx())/2100)
		attrs.Add(s.AltCriticalDamageIdx(), attrs.Get(s.CriticalDamageIdx())+attrs.Get(s.AltFerocityIdx())/1500)
	}

	for _, rule := range s.Modifiers.ConvertAfterBuffs {
		applyConvertRule(attrs, attrs, rule, s, noRounding)
	}
}

// applyConvertRule adds every source term of rule to attrs, reading terms
// from readFrom. readFrom is baseAttributes for modifiers.convert (spec
// §4.1 step 2 — "sources read from baseAttributes, not from the updating
// attributes") and attrs itself for modifiers.convertAfterBuffs (step 5).
func applyConvertRule(attrs, readFrom Attributes, rule ConvertRule, s *Settings, noRounding bool) {
	isPoint := s.Table.IsPoint(rule.TargetIdx)
	for _, src := range rule.Sources {
		var v float64
		switch src.Kind {
		case SourceCritClamp:
			v = clamp(readFrom.Get(s.CriticalChanceIdx()), 0, 1)
		case SourceCritClampMinus:
			v = clamp(readFrom.Get(s.CriticalChanceIdx())-src.MinusWhole/100, 0, 1)
		default:
			v = readFrom.Get(src.SourceIdx)
		}
		delta := v * src.Percent
		if isPoint && !noRounding {
			delta = math.RoundToEven(delta)
		}
		attrs.Add(rule.TargetIdx, delta)
	}
}

// CheckInvalid marks c.Valid and reports whether any constraint was
// violated (spec §4.2). All comparisons are strict, matching the source's
// "< / >" semantics exactly.
func CheckInvalid(c *Character) bool {
	s := c.settings
	a := c.Attributes
	cons := s.Constraints

	switch {
	case cons.MinBoonDuration != nil && a.Get(s.BoonDurationIdx()) < *cons.MinBoonDuration/100:
	case cons.MinHealingPower != nil && a.Get(s.HealingPowerIdx()) < *cons.MinHealingPower:
	case cons.MinToughness != nil && a.Get(s.ToughnessIdx()) < *cons.MinToughness:
	case cons.MaxToughness != nil && a.Get(s.ToughnessIdx()) > *cons.MaxToughness:
	case cons.MinHealth != nil && a.Get(s.HealthIdx()) < *cons.MinHealth:
	case cons.MinCritChance != nil && a.Get(s.CriticalChanceIdx()) < *cons.MinCritChance/100:
	default:
		c.Valid = true
		return false
	}
	c.Valid = false
	return true
}
