package gear

import "fmt"

// Character is one candidate gear assignment under evaluation (spec §3).
// settings is a borrowed handle; baseAttributes/attributes/gear/gearStats
// are owned, per spec §9's "shared-reference vs owned fields" note.
type Character struct {
	settings *Settings

	Gear      []int // affix index chosen per slot
	GearStats Attributes

	BaseAttributes Attributes
	Attributes     Attributes

	Valid bool

	Infusions map[int]int // attribute index -> infusion count

	Results *ResultDetail // populated only by the finalizer for accepted candidates

	ID string

	// scratch scoring intermediates, filled by the fast/full evaluation
	// paths; not part of the spec's data model but convenient to stash
	// here rather than recomputing formatting inputs later.
	PowerDPSScore   float64
	CondiDPSScore   float64
	Survivability   float64
	HealingScore    float64
	DamageScore     float64
	RankScore       float64
}

// NewCharacter builds a candidate from a completed gear assignment and its
// accumulated GearStats (spec §3 invariant: GearStats = sum of bonuses for
// gear[0..k]).
func NewCharacter(settings *Settings, gear []int, gearStats Attributes) *Character {
	base := settings.BaseAttributes.Clone()
	for i, v := range gearStats {
		base[i] += v
	}
	return &Character{
		settings:       settings,
		Gear:           gear,
		GearStats:      gearStats,
		BaseAttributes: base,
		Attributes:     NewAttributes(settings.Table),
		Infusions:      make(map[int]int),
	}
}

// Clone deep-copies everything an infusion trial or a ±5 sensitivity pass
// needs to mutate without disturbing the original candidate.
func (c *Character) Clone() *Character {
	cc := &Character{
		settings:       c.settings,
		Gear:           append([]int(nil), c.Gear...),
		GearStats:      c.GearStats.Clone(),
		BaseAttributes: c.BaseAttributes.Clone(),
		Attributes:     c.Attributes.Clone(),
		Valid:          c.Valid,
		Infusions:      make(map[int]int, len(c.Infusions)),
		ID:             c.ID,
	}
	for k, v := range c.Infusions {
		cc.Infusions[k] = v
	}
	return cc
}

// AddInfusion adds count infusions of attr to the character's base
// attributes, worth bonusPerInfusion each (spec §4.6).
func (c *Character) AddInfusion(attrIdx, count int, bonusPerInfusion float64) {
	if count == 0 {
		return
	}
	c.Infusions[attrIdx] += count
	c.BaseAttributes.Add(attrIdx, float64(count)*bonusPerInfusion)
}

// assignID sets the "{counter} ({randomID})" identity spec §4.7 step 3
// describes.
func (c *Character) assignID(counter int, randomID string) {
	c.ID = fmt.Sprintf("%d (%s)", counter, randomID)
}

// RankValue returns the attribute value the character is ranked on.
func (c *Character) RankValue() float64 {
	switch c.settings.RankBy {
	case RankDamage:
		return c.DamageScore
	case RankSurvivability:
		return c.Survivability
	case RankHealing:
		return c.HealingScore
	default:
		internalInvariant("unknown rankby %v", c.settings.RankBy)
		return 0
	}
}

// TieBreakValue returns the secondary sort key used by the result heap's
// comparator (spec §4.7).
func (c *Character) TieBreakValue() float64 {
	switch c.settings.RankBy {
	case RankDamage:
		return c.Survivability
	default:
		return c.DamageScore
	}
}
