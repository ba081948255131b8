// Package gamedata holds the read-only static tables the search engine is
// built against: the point-attribute registry, per-condition damage
// coefficients, and the indicator attribute list used for display.
//
// Everything here is a lookup table supplied at construction time; loading
// it from the on-disk game-data file is the Loader's job, not this
// package's (see the loader package).
package gamedata

// PointAttributes is the canonical set of attributes whose conversions round
// half-to-even. Mirrors modifierdata.allAttributePointKeys from the external
// contract in spec §6.
var PointAttributes = []string{
	"Power",
	"Precision",
	"Ferocity",
	"Toughness",
	"Vitality",
	"Condition Damage",
	"Expertise",
	"Concentration",
	"Healing Power",
}

// Indicators is the set of attributes the result finalizer formats for
// display (gw2-data.Attributes.INDICATORS in the external contract).
var Indicators = []string{
	"Critical Chance",
	"Critical Damage",
	"Boon Duration",
	"Condition Duration",
	"Health",
	"Armor",
	"Effective Power",
}

// InfusionBonus is the flat per-infusion attribute bonus (gw2-data.INFUSION_BONUS).
const InfusionBonus = 5.0

// ConditionCoefficient is the per-tick damage formula for one condition:
// tick = Factor*ConditionDamage + BaseDamage.
type ConditionCoefficient struct {
	Factor     float64
	BaseDamage float64
}

// Conditions is the per-condition coefficient table (gw2-data.conditionData),
// including the synthetic TormentMoving / ConfusionActive entries the
// scoring formulas in spec §4.3 read for Torment and Confusion.
var Conditions = map[string]ConditionCoefficient{
	"Bleeding":       {Factor: 0.05, BaseDamage: 22},
	"Burning":        {Factor: 0.155, BaseDamage: 66},
	"Poison":         {Factor: 0.03, BaseDamage: 33.75},
	"Torment":        {Factor: 0.0375, BaseDamage: 28.25},
	"TormentMoving":  {Factor: 0.075, BaseDamage: 56.5},
	"Confusion":      {Factor: 0.03, BaseDamage: 30.45},
	"ConfusionActive": {Factor: 0.03, BaseDamage: 40},
}

// IsPointAttribute reports whether name rounds half-to-even under conversion.
func IsPointAttribute(name string) bool {
	for _, p := range PointAttributes {
		if p == name {
			return true
		}
	}
	return false
}

// AttributeMeta is one named attribute's interning hint, as read from a
// gamedata.json "attributes" entry.
type AttributeMeta struct {
	Name    string
	IsPoint bool
}

// GameTables is the parsed form of the game-data file: the package defaults
// above, with anything the file supplies layered on top (extra attributes,
// extra conditions, an overridden infusion bonus). The loader builds one of
// these per run; nothing in this package reads a file directly.
type GameTables struct {
	Attributes    []AttributeMeta
	Indicators    []string
	InfusionBonus float64
	Conditions    map[string]ConditionCoefficient
	// ConditionsWvW overrides Conditions per-key when a search runs in WvW
	// mode (spec §4.3 extension). There is no built-in default: GW2's WvW
	// condition coefficients differ from PvE's but aren't part of this
	// package's tables, so a gamedata.json that wants WvW-accurate numbers
	// must supply them explicitly under "conditionsWvw"; absent that, WvW
	// mode runs with the PvE coefficients.
	ConditionsWvW map[string]ConditionCoefficient
}

// DefaultGameTables returns the built-in tables, used whenever a game-data
// file is absent or silent on a given field.
func DefaultGameTables() *GameTables {
	attrs := make([]AttributeMeta, len(PointAttributes))
	for i, name := range PointAttributes {
		attrs[i] = AttributeMeta{Name: name, IsPoint: true}
	}
	conditions := make(map[string]ConditionCoefficient, len(Conditions))
	for k, v := range Conditions {
		conditions[k] = v
	}
	return &GameTables{
		Attributes:    attrs,
		Indicators:    append([]string(nil), Indicators...),
		InfusionBonus: InfusionBonus,
		Conditions:    conditions,
	}
}
