package gear

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// displayPrinter formats every locale-grouped number the finalizer emits
// (spec §4.9). A single English printer is enough — the engine never
// localizes output beyond grouping.
var displayPrinter = message.NewPrinter(language.English)

// sensitivityAttributes are the five base attributes the ±5 sensitivity
// pass perturbs (spec §4.9).
var sensitivityAttributes = []string{"Power", "Precision", "Ferocity", "Condition Damage", "Expertise"}

// Coefficient is one distribution key's linear DPS response to its own
// coefficient attribute (spec §4.9, "coefficientHelper").
type Coefficient struct {
	Slope     float64
	Intercept float64
}

// ResultDetail is the display-ready breakdown attached to every accepted
// candidate (spec §4.9).
type ResultDetail struct {
	Value float64

	Indicators map[string]string

	EffectivePositiveValues map[string]string
	EffectiveNegativeValues map[string]string

	EffectiveDamageDistribution map[string]string
	DamageBreakdown             map[string]string

	CoefficientHelper map[string]Coefficient
}

func formatDecimal(v float64, digits int) string {
	return displayPrinter.Sprintf("%v", number.Decimal(v,
		number.MaxFractionDigits(digits), number.MinFractionDigits(digits)))
}

// Finalize builds the result detail for an accepted candidate. c must
// already carry the output of a full UpdateAttributes pass (spec §4.7 step 2
// runs this immediately afterward).
func Finalize(c *Character) *ResultDetail {
	s := c.settings
	d := &ResultDetail{
		Value:                       c.RankValue(),
		Indicators:                  make(map[string]string, len(s.Indicators)),
		EffectivePositiveValues:     make(map[string]string, len(sensitivityAttributes)),
		EffectiveNegativeValues:     make(map[string]string, len(sensitivityAttributes)),
		EffectiveDamageDistribution: make(map[string]string, len(s.DistributionOrder)),
		DamageBreakdown:             make(map[string]string, len(s.DistributionOrder)),
		CoefficientHelper:           make(map[string]Coefficient, len(s.DistributionOrder)),
	}

	for _, name := range s.Indicators {
		v := 0.0
		if idx, ok := s.Table.Lookup(name); ok {
			v = c.Attributes.Get(idx)
		}
		d.Indicators[name] = formatDecimal(v, 4)
	}

	fillSensitivity(d, c, s)
	fillDistribution(d, c, s)
	fillCoefficientHelper(d, c, s)

	return d
}

// fillSensitivity implements the ±5 sensitivity pass: clone, nudge one base
// attribute by ±5 (clamped at 0 on the negative side), recompute with
// no_rounding=true, and report the signed Damage delta against a
// no_rounding baseline recomputed from the same clone (spec §4.9).
func fillSensitivity(d *ResultDetail, c *Character, s *Settings) {
	baseline := c.Clone()
	UpdateAttributes(baseline, true)
	baseDamage := baseline.Attributes.Get(s.DamageIdx())

	for _, attr := range sensitivityAttributes {
		idx, ok := s.Table.Lookup(attr)
		if !ok {
			d.EffectivePositiveValues[attr] = formatDecimal(0, 5)
			d.EffectiveNegativeValues[attr] = formatDecimal(0, 5)
			continue
		}

		plus := c.Clone()
		plus.BaseAttributes.Add(idx, 5)
		UpdateAttributes(plus, true)
		d.EffectivePositiveValues[attr] = formatDecimal(plus.Attributes.Get(s.DamageIdx())-baseDamage, 5)

		minus := c.Clone()
		reduced := minus.BaseAttributes.Get(idx) - 5
		if reduced < 0 {
			reduced = 0
		}
		minus.BaseAttributes.Set(idx, reduced)
		UpdateAttributes(minus, true)
		d.EffectiveNegativeValues[attr] = formatDecimal(minus.Attributes.Get(s.DamageIdx())-baseDamage, 5)
	}
}

// dpsKeyFor resolves the "{key} DPS" attribute name a distribution key
// reads, with Power's special case (spec §4.9).
func dpsKeyFor(key string) string {
	if key == "Power" {
		return "Power DPS"
	}
	return key + " DPS"
}

// fillDistribution computes effectiveDamageDistribution and damageBreakdown
// for every key in settings.Distribution (spec §4.9).
func fillDistribution(d *ResultDetail, c *Character, s *Settings) {
	total := c.Attributes.Get(s.DamageIdx())

	for _, key := range s.DistributionOrder {
		v := 0.0
		if idx, ok := s.Table.Lookup(dpsKeyFor(key)); ok {
			v = c.Attributes.Get(idx)
		}

		pct := 0.0
		if total != 0 {
			pct = v / total * 100
		}
		d.EffectiveDamageDistribution[key] = fmt.Sprintf("%s%%", formatDecimal(pct, 1))
		d.DamageBreakdown[key] = formatDecimal(v, 2)
	}
}

// coefficientIdxForKey resolves the attribute a distribution key's DPS
// formula treats as its linear coefficient: Power Coefficient for "Power",
// "{key} Coefficient" for every condition (spec §4.3's side-effect
// contract, read by ScoreCondiDPS).
func coefficientIdxForKey(s *Settings, key string) int {
	if key == "Power" {
		return s.PowerCoefficientIdx()
	}
	idx, ok := s.Table.Lookup(key + " Coefficient")
	if !ok {
		return -1
	}
	return idx
}

// fillCoefficientHelper runs the two uniform-coefficient evaluations spec
// §4.9 describes and records each distribution key's linear DPS response.
func fillCoefficientHelper(d *ResultDetail, c *Character, s *Settings) {
	zero := c.Clone()
	one := c.Clone()
	for _, key := range s.DistributionOrder {
		idx := coefficientIdxForKey(s, key)
		if idx < 0 {
			continue
		}
		zero.BaseAttributes.Set(idx, 0)
		one.BaseAttributes.Set(idx, 1)
	}
	UpdateAttributes(zero, true)
	UpdateAttributes(one, true)

	for _, key := range s.DistributionOrder {
		var dps0, dps1 float64
		if idx, ok := s.Table.Lookup(dpsKeyFor(key)); ok {
			dps0 = zero.Attributes.Get(idx)
			dps1 = one.Attributes.Get(idx)
		}
		d.CoefficientHelper[key] = Coefficient{Slope: dps1 - dps0, Intercept: dps0}
	}
}
