package gear

// UpdateAttributesFast runs the cheapest evaluation path that still
// produces a usable rank score (spec §4.4): calc_stats with rounding,
// an optional constraint check, then only the score family the current
// rankby objective needs. skipValidation is used by the infusion pruning
// guard (test_infusion_usefulness, spec §4.6), which evaluates a clone
// speculatively and does not want an invalid clone discarded before its
// rank score can be compared against worstScore.
func UpdateAttributesFast(c *Character, cache *CondiCache, skipValidation bool) bool {
	CalcStats(c, false)

	if !skipValidation {
		if CheckInvalid(c) {
			return false
		}
		c.Valid = true
	}

	s := c.settings
	switch s.RankBy {
	case RankDamage:
		power := ScorePowerDPS(c)
		condi := ScoreCondiDPSCached(c, cache)
		c.PowerDPSScore = power
		c.CondiDPSScore = condi
		c.DamageScore = scoreDamageTotal(c, power, condi)
		c.RankScore = c.DamageScore
	case RankSurvivability:
		c.Survivability = ScoreSurvivability(c)
		c.RankScore = c.Survivability
	case RankHealing:
		c.HealingScore = ScoreHealing(c)
		c.RankScore = c.HealingScore
	default:
		internalInvariant("unknown rankby %v", s.RankBy)
	}
	return true
}

// UpdateAttributes runs the full evaluation path (spec §4.5): calc_stats,
// then every score family regardless of rankby, so accepted candidates and
// the ±5 sensitivity pass always have complete intermediates available.
func UpdateAttributes(c *Character, noRounding bool) {
	CalcStats(c, noRounding)
	CheckInvalid(c)

	power := ScorePowerDPS(c)
	condi := ScoreCondiDPS(c)
	c.PowerDPSScore = power
	c.CondiDPSScore = condi
	c.DamageScore = scoreDamageTotal(c, power, condi)
	c.Survivability = ScoreSurvivability(c)
	c.HealingScore = ScoreHealing(c)
	c.RankScore = c.RankValue()
}
