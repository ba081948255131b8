package gear

// InfusionApplier decides how a leaf character's infusions are distributed
// before evaluation and insertion (spec §4.6, "Infusion Applier"). One of
// five strategies, fixed for the lifetime of a search.
type InfusionApplier struct {
	settings *Settings
	cache    *CondiCache
	heap     *ResultHeap
}

// NewInfusionApplier constructs an applier bound to settings.Infusion.Mode.
// Settings.Finalize already validated the mode, so this never needs to
// fail; an unrecognized mode reaching here is an internal invariant
// violation, not a configuration error.
func NewInfusionApplier(s *Settings, cache *CondiCache, heap *ResultHeap) *InfusionApplier {
	return &InfusionApplier{settings: s, cache: cache, heap: heap}
}

// TestCharacter is test_character from spec §4.8 step 4: it dispatches to
// the configured strategy, which evaluates and attempts to insert one or
// more infused variants of c.
func (ia *InfusionApplier) TestCharacter(c *Character) {
	switch ia.settings.Infusion.Mode {
	case InfusionNone:
		ia.evalAndInsert(c)
	case InfusionPrimary:
		ia.applyPrimary(c)
	case InfusionFew:
		ia.applyFew(c)
	case InfusionSecondary:
		ia.applySecondary(c, false)
	case InfusionSecondaryNoDuplicates:
		ia.applySecondary(c, true)
	default:
		internalInvariant("unknown infusion mode %v", ia.settings.Infusion.Mode)
	}
}

func (ia *InfusionApplier) evalAndInsert(c *Character) {
	if !UpdateAttributesFast(c, ia.cache, false) {
		return
	}
	ia.heap.Insert(c)
}

// applyPrimary adds primaryMaxInfusions*5 of the primary stat (spec §4.6,
// "Primary").
func (ia *InfusionApplier) applyPrimary(c *Character) {
	cfg := ia.settings.Infusion
	cc := c.Clone()
	cc.AddInfusion(cfg.PrimaryIdx, cfg.PrimaryMax, ia.settings.InfusionBonus)
	ia.evalAndInsert(cc)
}

// applyFew adds both stats at their max counts, which spec §4.6 guarantees
// sum to at most maxInfusions ("Few").
func (ia *InfusionApplier) applyFew(c *Character) {
	cfg := ia.settings.Infusion
	cc := c.Clone()
	cc.AddInfusion(cfg.PrimaryIdx, cfg.PrimaryMax, ia.settings.InfusionBonus)
	cc.AddInfusion(cfg.SecondaryIdx, cfg.SecondaryMax, ia.settings.InfusionBonus)
	ia.evalAndInsert(cc)
}

// usefulnessGuardPasses is test_infusion_usefulness (spec §4.6): it clones
// c, adds the maximum of both stats at once, and evaluates with validation
// skipped. The guard always passes while the heap has not yet reached
// capacity (worstScore == 0).
func (ia *InfusionApplier) usefulnessGuardPasses(c *Character) bool {
	if ia.heap.WorstScore() == 0 {
		return true
	}
	cfg := ia.settings.Infusion
	cc := c.Clone()
	cc.AddInfusion(cfg.PrimaryIdx, cfg.MaxInfusions, ia.settings.InfusionBonus)
	cc.AddInfusion(cfg.SecondaryIdx, cfg.MaxInfusions, ia.settings.InfusionBonus)
	UpdateAttributesFast(cc, ia.cache, true)
	return cc.RankScore > ia.heap.WorstScore()
}

// applySecondary enumerates every (primary, secondary) split of
// maxInfusions bounded by each stat's own cap, iterating primary
// descending from its max (spec §4.6, "Secondary" / "SecondaryNoDuplicates").
// noDuplicates keeps only the single best-ranked valid candidate across the
// whole enumeration instead of inserting each distinct one.
func (ia *InfusionApplier) applySecondary(c *Character, noDuplicates bool) {
	if !ia.usefulnessGuardPasses(c) {
		return
	}
	cfg := ia.settings.Infusion

	pMax := cfg.PrimaryMax
	if pMax > cfg.MaxInfusions {
		pMax = cfg.MaxInfusions
	}
	pMin := cfg.MaxInfusions - cfg.SecondaryMax
	if pMin < 0 {
		pMin = 0
	}

	var best *Character
	havePrev := false
	var prevScore float64

	for p := pMax; p >= pMin; p-- {
		s := cfg.MaxInfusions - p
		cc := c.Clone()
		cc.AddInfusion(cfg.PrimaryIdx, p, ia.settings.InfusionBonus)
		cc.AddInfusion(cfg.SecondaryIdx, s, ia.settings.InfusionBonus)

		if !UpdateAttributesFast(cc, ia.cache, false) {
			havePrev = false
			continue
		}

		if noDuplicates {
			if best == nil || newBeats(best, cc) {
				best = cc
			}
			continue
		}

		if havePrev && cc.RankScore == prevScore {
			prevScore = cc.RankScore
			continue
		}
		havePrev = true
		prevScore = cc.RankScore
		ia.heap.Insert(cc)
	}

	if noDuplicates && best != nil {
		ia.heap.Insert(best)
	}
}
