package gear

import (
	"fmt"

	"gearsearch/gamedata"
)

// Affix is an opaque per-slot stat preset: a name plus the attribute bonuses
// it contributes, already multiplied by slot weight (spec §3). Affixes
// within a slot are kept in the order the caller supplied them; that order
// is the canonical order symmetry pruning compares against (spec §4.8).
type Affix struct {
	Name    string
	Bonuses []AttrDelta
}

// AttrDelta is one (attribute index, bonus) pair.
type AttrDelta struct {
	Idx   int
	Value float64
}

// SourceKind distinguishes a plain attribute read from the two synthetic
// post-buff Critical Chance sources spec §4.1 step 5 calls out.
type SourceKind int

const (
	SourceNormal SourceKind = iota
	SourceCritClamp
	SourceCritClampMinus
)

// ConvertSource is one term of a conversion rule's source list.
type ConvertSource struct {
	Kind       SourceKind
	SourceIdx  int     // valid when Kind == SourceNormal
	MinusWhole float64 // the X in "Critical Chance -X"; valid when Kind == SourceCritClampMinus
	Percent    float64
}

// ConvertRule is one target attribute's list of (source, percent) terms,
// used for both modifiers.convert and modifiers.convertAfterBuffs (spec §4.1
// steps 2 and 5).
type ConvertRule struct {
	TargetIdx int
	Sources   []ConvertSource
}

// BuffRule adds a flat bonus to one attribute (spec §4.1 step 3).
type BuffRule struct {
	Idx   int
	Bonus float64
}

// Modifiers bundles the four modifier families named in spec §2/§3.
type Modifiers struct {
	Convert           []ConvertRule
	Buff              []BuffRule
	ConvertAfterBuffs []ConvertRule
	// DamageMultiplier holds dm[...] lookups used only in scoring (spec
	// §4.3); keys are dynamic ("{condition} Damage") so this stays a map
	// rather than a dense index — it is read a handful of times per
	// candidate, not per attribute.
	DamageMultiplier map[string]float64
	// HasBountifulMaintenanceOil mirrors the "bountiful-maintenance-oil"
	// modifier presence check in the healing formula (spec §4.3).
	HasBountifulMaintenanceOil bool
}

// DM returns the named damage multiplier. A multiplier that was never
// supplied by the preprocessing bundle defaults to 1 (no modification) —
// unlike the attribute-sourced "coefficients" in spec §4.3 (Power
// Coefficient, Siphon Base Coefficient), which default to 0 because they
// are additive inputs, not multipliers. Treating an absent multiplicative
// modifier as 0 would zero out every damage formula that reads one, which
// the spec's seed scenarios rule out (see DESIGN.md).
func (m *Modifiers) DM(key string) float64 {
	if v, ok := m.DamageMultiplier[key]; ok {
		return v
	}
	return 1
}

// RankBy is the objective the search optimizes for.
type RankBy int

const (
	RankDamage RankBy = iota
	RankSurvivability
	RankHealing
)

func (r RankBy) String() string {
	switch r {
	case RankDamage:
		return "Damage"
	case RankSurvivability:
		return "Survivability"
	case RankHealing:
		return "Healing"
	default:
		return "Unknown"
	}
}

// InfusionMode selects one of the five infusion allocation strategies
// (spec §4.6).
type InfusionMode int

const (
	InfusionNone InfusionMode = iota
	InfusionPrimary
	InfusionFew
	InfusionSecondary
	InfusionSecondaryNoDuplicates
)

// InfusionConfig parameterizes the infusion applier.
type InfusionConfig struct {
	Mode             InfusionMode
	PrimaryIdx       int
	SecondaryIdx     int
	MaxInfusions     int
	PrimaryMax       int
	SecondaryMax     int
}

// Constraints holds the optional user-supplied bounds checked by
// check_invalid (spec §4.2). A nil pointer means the bound is unset.
type Constraints struct {
	MinBoonDuration *float64 // raw percent units, e.g. 30 means 30%
	MinHealingPower *float64
	MinToughness    *float64
	MaxToughness    *float64
	MinHealth       *float64
	MinCritChance   *float64 // raw percent units
}

// SlotConfig is one gear slot: its allowed affixes in canonical order (spec
// §3/§4.8). Whether pruning is forced off for a symmetric pair is set on
// Settings (ForcedArmor etc.), not per slot.
type SlotConfig struct {
	Affixes []Affix
}

// conditionIndices caches one relevant condition's dense "{cond}
// Duration/Coefficient/Damage/Stacks/DPS" indices, precomputed once in
// Finalize so ScoreCondiDPS's per-leaf hot loop never concatenates a string
// or hashes a map key (spec §9's dense-array re-architecture).
type conditionIndices struct {
	duration, coefficient, damage, stacks, dps int
}

// coreIndices caches the dense indices of every attribute name the
// pipeline and scoring code reference directly, so the hot loop never
// hashes a string (spec §9's dense-array re-architecture).
type coreIndices struct {
	power, precision, ferocity, toughness, vitality                      int
	conditionDamage, expertise, concentration, healingPower              int
	criticalChance, criticalDamage, boonDuration, conditionDuration       int
	health, maximumHealth, armor                                         int
	effectivePower, powerDPS, siphonDPS, siphonBaseCoefficient           int
	effectiveHealth, survivability, outgoingHealing, healing, damage     int
	flatDPS, powerCoefficient                                            int

	// Secondary power source (spec §4.3 extension): a build can carry a
	// second independent strike-damage source (a pet, a phantasm, a
	// clone) with its own coefficient, crit chance/damage and power pool,
	// gated on Power2Coefficient being nonzero rather than on profession.
	power2Coefficient, altPower, altPrecision, altFerocity int
	altCriticalChance, altCriticalDamage, power2DPS        int
}

// Settings is the immutable, pre-validated input to a search (spec §3,
// "Settings Bundle"). Built once by the loader and never mutated again.
type Settings struct {
	Table *AttrTable

	Slots   []SlotConfig
	BaseAttributes Attributes

	Modifiers Modifiers

	// Distribution maps a coefficient key ("Power" or a condition name) to
	// its base value; also the iteration order for the result finalizer's
	// effectiveDamageDistribution / coefficientHelper (spec §4.9).
	Distribution       map[string]float64
	DistributionOrder  []string
	RelevantConditions []string

	Constraints Constraints
	RankBy      RankBy
	Infusion    InfusionConfig

	MaxResults              int
	DisableCondiResultCache bool

	MovementUptime float64 // Torment's damage-while-moving fraction
	AttackRate     float64 // Confusion's attacks-per-second

	ForcedArmor, ForcedRing, ForcedAcc, ForcedWep bool

	// RunsAfterThisSlot[k] = product of |Affixes| over slots >= k, used by
	// the search engine's approximate skip accounting (spec §4.8).
	RunsAfterThisSlot []uint64

	// Indicators, Conditions and InfusionBonus are the per-search game-data
	// tables C10 builds (gamedata.GameTables, spec §4.10): the attributes
	// the finalizer formats for display, the per-condition tick formula
	// coefficients, and the flat per-infusion attribute bonus. Defaulted
	// from the gamedata package in NewSettings, then overridden by the
	// loader with whatever the caller's gamedata.json actually supplies, so
	// a search never falls back to the package globals once Settings is
	// built.
	Indicators    []string
	Conditions    map[string]gamedata.ConditionCoefficient
	InfusionBonus float64

	// WvW selects the WvW-specific condition coefficients in ConditionsWvW
	// over Conditions wherever a key is present in both; a key present only
	// in Conditions still applies in WvW mode (spec §4.3 extension).
	WvW           bool
	ConditionsWvW map[string]gamedata.ConditionCoefficient

	core coreIndices

	// conditionIdx mirrors RelevantConditions position for position, built
	// once in Finalize.
	conditionIdx []conditionIndices
}

// MinimalSettings is the display-only projection named in spec §6: it never
// drives the search, only labels results for a UI.
type MinimalSettings struct {
	Profession     string
	Specialization string
	WeaponType     string
	AppliedModifierNames []string
	RankBy         RankBy
	ExtrasFlags    map[string]bool
	FormState      map[string]any
	WvW            bool
}

// Intern resolves name to a dense attribute index via s.Table, remembering
// point-attribute-ness. Exposed so the loader can intern arbitrary names
// found in the request JSON before building ConvertRule/BuffRule slices.
func (s *Settings) Intern(name string, isPoint bool) int {
	return s.Table.Intern(name, isPoint)
}

func (s *Settings) buildCoreIndices() {
	c := &s.core
	c.power = s.Table.Intern("Power", true)
	c.precision = s.Table.Intern("Precision", true)
	c.ferocity = s.Table.Intern("Ferocity", true)
	c.toughness = s.Table.Intern("Toughness", true)
	c.vitality = s.Table.Intern("Vitality", true)
	c.conditionDamage = s.Table.Intern("Condition Damage", true)
	c.expertise = s.Table.Intern("Expertise", true)
	c.concentration = s.Table.Intern("Concentration", true)
	c.healingPower = s.Table.Intern("Healing Power", true)

	c.criticalChance = s.Table.Intern("Critical Chance", false)
	c.criticalDamage = s.Table.Intern("Critical Damage", false)
	c.boonDuration = s.Table.Intern("Boon Duration", false)
	c.conditionDuration = s.Table.Intern("Condition Duration", false)
	c.health = s.Table.Intern("Health", false)
	c.maximumHealth = s.Table.Intern("Maximum Health", false)
	c.armor = s.Table.Intern("Armor", false)
	c.effectivePower = s.Table.Intern("Effective Power", false)
	c.powerDPS = s.Table.Intern("Power DPS", false)
	c.siphonDPS = s.Table.Intern("Siphon DPS", false)
	c.siphonBaseCoefficient = s.Table.Intern("Siphon Base Coefficient", false)
	c.effectiveHealth = s.Table.Intern("Effective Health", false)
	c.survivability = s.Table.Intern("Survivability", false)
	c.outgoingHealing = s.Table.Intern("Outgoing Healing", false)
	c.healing = s.Table.Intern("Healing", false)
	c.damage = s.Table.Intern("Damage", false)
	c.flatDPS = s.Table.Intern("Flat DPS", false)
	c.powerCoefficient = s.Table.Intern("Power Coefficient", false)

	c.power2Coefficient = s.Table.Intern("Power2 Coefficient", false)
	c.altPower = s.Table.Intern("Alt Power", true)
	c.altPrecision = s.Table.Intern("Alt Precision", true)
	c.altFerocity = s.Table.Intern("Alt Ferocity", true)
	c.altCriticalChance = s.Table.Intern("Alt Critical Chance", false)
	c.altCriticalDamage = s.Table.Intern("Alt Critical Damage", false)
	c.power2DPS = s.Table.Intern("Power2 DPS", false)
}

// computeRunsAfterThisSlot fills RunsAfterThisSlot per spec §4.8:
// RunsAfterThisSlot[k] = product_{j>=k} |affixesArray[j]|.
func (s *Settings) computeRunsAfterThisSlot() {
	n := len(s.Slots)
	s.RunsAfterThisSlot = make([]uint64, n+1)
	s.RunsAfterThisSlot[n] = 1
	for k := n - 1; k >= 0; k-- {
		s.RunsAfterThisSlot[k] = s.RunsAfterThisSlot[k+1] * uint64(len(s.Slots[k].Affixes))
	}
}

// NewSettings creates a Settings bound to table, interns the core attribute
// indices and fills in the default game-data tables. It validates nothing
// and always returns a nil error; the loader fills in Slots/BaseAttributes/
// Modifiers/etc. afterwards, and Finalize is where the ConfigurationError
// checks run.
func NewSettings(table *AttrTable) (*Settings, error) {
	defaults := gamedata.DefaultGameTables()
	s := &Settings{
		Table:         table,
		Modifiers:     Modifiers{DamageMultiplier: map[string]float64{}},
		Indicators:    defaults.Indicators,
		Conditions:    defaults.Conditions,
		InfusionBonus: defaults.InfusionBonus,
	}
	s.buildCoreIndices()
	return s, nil
}

// Finalize must be called once the loader has populated every field; it
// validates the infusion mode and caps, precomputes RunsAfterThisSlot,
// interns the per-condition indices for RelevantConditions (as given), and
// grows BaseAttributes to cover every attribute interned so far. It may be
// called again after RelevantConditions changes.
func (s *Settings) Finalize() error {
	switch s.Infusion.Mode {
	case InfusionNone, InfusionPrimary, InfusionFew, InfusionSecondary, InfusionSecondaryNoDuplicates:
	default:
		return NewConfigurationError("unknown infusion mode")
	}
	if s.Infusion.Mode != InfusionNone {
		if s.Infusion.PrimaryMax+s.Infusion.SecondaryMax < s.Infusion.MaxInfusions &&
			s.Infusion.Mode != InfusionPrimary {
			return NewConfigurationError("infusion caps cannot satisfy maxInfusions")
		}
	}
	s.computeRunsAfterThisSlot()
	s.buildConditionIndices()
	if len(s.BaseAttributes) < s.Table.Len() {
		grown := NewAttributes(s.Table)
		copy(grown, s.BaseAttributes)
		s.BaseAttributes = grown
	}
	return nil
}

// SymmetryPairs names the index pairs search.go's symmetryPruned compares:
// low is the first index the pair touches, high the last. A slot layout
// "declares" the pair once len(Slots) > low, and only fits it once
// len(Slots) > high too; ValidateSymmetryLayout uses this table to fail
// fast on layouts that declare a pair without completing it.
var SymmetryPairs = []struct {
	Name      string
	Low, High int
	Forced    func(*Settings) bool
}{
	{"armor", 1, 5, func(s *Settings) bool { return s.ForcedArmor }},
	{"ring", 7, 8, func(s *Settings) bool { return s.ForcedRing }},
	{"accessory", 9, 10, func(s *Settings) bool { return s.ForcedAcc }},
	{"weapon", 12, 13, func(s *Settings) bool { return s.ForcedWep }},
}

// ValidateSymmetryLayout fails fast when a slot layout declares a symmetric
// pair (has a slot at the pair's low index) without enough slots to also
// reach the pair's high index: symmetryPruned would then silently never
// prune that category instead of catching the duplicate work. Forcing the
// category off (ForcedArmor etc.) opts a short layout out of the check; the
// loader calls this once it has built a full slot layout from a request
// body, so ad hoc layouts built directly in engine tests never hit it.
func ValidateSymmetryLayout(s *Settings) error {
	n := len(s.Slots)
	for _, pair := range SymmetryPairs {
		if pair.Forced(s) {
			continue
		}
		if n > pair.Low && n <= pair.High {
			return NewConfigurationError(fmt.Sprintf(
				"%s symmetry pair (slots %d/%d) does not fit within %d slots", pair.Name, pair.Low, pair.High, n))
		}
	}
	return nil
}

// buildConditionIndices interns each relevant condition's five dense
// attribute indices once, so ScoreCondiDPS can index straight into
// s.conditionIdx instead of calling Intern per leaf (spec §9).
func (s *Settings) buildConditionIndices() {
	s.conditionIdx = make([]conditionIndices, len(s.RelevantConditions))
	for i, cond := range s.RelevantConditions {
		s.conditionIdx[i] = conditionIndices{
			duration:    s.Table.Intern(cond+" Duration", false),
			coefficient: s.Table.Intern(cond+" Coefficient", false),
			damage:      s.Table.Intern(cond+" Damage", false),
			stacks:      s.Table.Intern(cond+" Stacks", false),
			dps:         s.Table.Intern(cond+" DPS", false),
		}
	}
}

// PowerIdx and friends expose the cached core indices to the pipeline and
// scoring packages without re-hashing strings.
func (s *Settings) PowerIdx() int                   { return s.core.power }
func (s *Settings) PrecisionIdx() int                { return s.core.precision }
func (s *Settings) FerocityIdx() int                 { return s.core.ferocity }
func (s *Settings) ToughnessIdx() int                { return s.core.toughness }
func (s *Settings) VitalityIdx() int                 { return s.core.vitality }
func (s *Settings) ConditionDamageIdx() int          { return s.core.conditionDamage }
func (s *Settings) ExpertiseIdx() int                { return s.core.expertise }
func (s *Settings) ConcentrationIdx() int            { return s.core.concentration }
func (s *Settings) HealingPowerIdx() int             { return s.core.healingPower }
func (s *Settings) CriticalChanceIdx() int           { return s.core.criticalChance }
func (s *Settings) CriticalDamageIdx() int           { return s.core.criticalDamage }
func (s *Settings) BoonDurationIdx() int             { return s.core.boonDuration }
func (s *Settings) ConditionDurationIdx() int        { return s.core.conditionDuration }
func (s *Settings) HealthIdx() int                   { return s.core.health }
func (s *Settings) MaximumHealthIdx() int            { return s.core.maximumHealth }
func (s *Settings) ArmorIdx() int                    { return s.core.armor }
func (s *Settings) EffectivePowerIdx() int           { return s.core.effectivePower }
func (s *Settings) PowerDPSIdx() int                 { return s.core.powerDPS }
func (s *Settings) SiphonDPSIdx() int                { return s.core.siphonDPS }
func (s *Settings) SiphonBaseCoefficientIdx() int    { return s.core.siphonBaseCoefficient }
func (s *Settings) EffectiveHealthIdx() int          { return s.core.effectiveHealth }
func (s *Settings) SurvivabilityIdx() int            { return s.core.survivability }
func (s *Settings) OutgoingHealingIdx() int          { return s.core.outgoingHealing }
func (s *Settings) HealingIdx() int                  { return s.core.healing }
func (s *Settings) DamageIdx() int                   { return s.core.damage }
func (s *Settings) FlatDPSIdx() int                  { return s.core.flatDPS }
func (s *Settings) PowerCoefficientIdx() int         { return s.core.powerCoefficient }

func (s *Settings) Power2CoefficientIdx() int { return s.core.power2Coefficient }
func (s *Settings) AltPowerIdx() int          { return s.core.altPower }
func (s *Settings) AltPrecisionIdx() int      { return s.core.altPrecision }
func (s *Settings) AltFerocityIdx() int       { return s.core.altFerocity }
func (s *Settings) AltCriticalChanceIdx() int { return s.core.altCriticalChance }
func (s *Settings) AltCriticalDamageIdx() int { return s.core.altCriticalDamage }
func (s *Settings) Power2DPSIdx() int         { return s.core.power2DPS }

// ConditionIdx resolves the dense index for "{condition} {suffix}",
// interning it if this is the first reference. ScoreCondiDPS's hot loop
// reads s.conditionIdx instead; this stays around for callers that need a
// one-off lookup outside the search loop (tests).
func (s *Settings) ConditionIdx(condition, suffix string) int {
	return s.Table.Intern(condition+" "+suffix, false)
}

// conditionCoefficient resolves the tick coefficients for a condition name,
// preferring ConditionsWvW when s.WvW is set and that table overrides the
// name (spec §4.3 extension).
func (s *Settings) conditionCoefficient(name string) (gamedata.ConditionCoefficient, bool) {
	if s.WvW {
		if coef, ok := s.ConditionsWvW[name]; ok {
			return coef, true
		}
	}
	coef, ok := s.Conditions[name]
	return coef, ok
}
