package gear

import (
	"strconv"
	"strings"
	"testing"
)

func parseFormatted(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		t.Fatalf("could not parse formatted value %q: %v", s, err)
	}
	return v
}

func buildFinalizeTestCharacter(t *testing.T) (*Settings, *Character) {
	t.Helper()
	s := buildTestSettings(nil, 10)
	s.DistributionOrder = []string{"Power"}
	s.Distribution = map[string]float64{"Power": 1}

	c := newTestCharacter(s)
	c.BaseAttributes.Set(s.PowerIdx(), targetArmor)
	c.BaseAttributes.Set(s.PrecisionIdx(), 1000) // Critical Chance == 0 exactly
	c.BaseAttributes.Set(s.PowerCoefficientIdx(), 1)
	UpdateAttributes(c, false)
	return s, c
}

func TestFinalizeDamageDistributionSumsTo100Percent(t *testing.T) {
	_, c := buildFinalizeTestCharacter(t)
	d := Finalize(c)

	pct := parseFormatted(t, strings.TrimSuffix(d.EffectiveDamageDistribution["Power"], "%"))
	if pct < 99.9 || pct > 100.1 {
		t.Fatalf("Power distribution = %v%%, want ~100%% (it is the only distribution key)", pct)
	}
}

func TestFinalizeDamageBreakdownMatchesPowerDPS(t *testing.T) {
	s, c := buildFinalizeTestCharacter(t)
	d := Finalize(c)

	got := parseFormatted(t, d.DamageBreakdown["Power"])
	want := c.Attributes.Get(s.PowerDPSIdx())
	if diff := got - want; diff > 0.01 || diff < -0.01 {
		t.Fatalf("DamageBreakdown[Power] = %v, want ~%v", got, want)
	}
}

func TestFinalizeSensitivityPositiveAndNegativeHaveOppositeSigns(t *testing.T) {
	_, c := buildFinalizeTestCharacter(t)
	d := Finalize(c)

	pos := parseFormatted(t, d.EffectivePositiveValues["Power"])
	neg := parseFormatted(t, d.EffectiveNegativeValues["Power"])
	if pos <= 0 {
		t.Fatalf("EffectivePositiveValues[Power] = %v, want > 0 (adding Power should raise Damage)", pos)
	}
	if neg >= 0 {
		t.Fatalf("EffectiveNegativeValues[Power] = %v, want < 0 (removing Power should lower Damage)", neg)
	}
}

func TestFinalizeSensitivityZeroWhenNoRelevantConditions(t *testing.T) {
	// Expertise only feeds Condition Duration, which only matters to
	// ScoreCondiDPS when RelevantConditions is non-empty; with no relevant
	// conditions configured, +/-5 Expertise cannot move Damage at all.
	s := buildTestSettings(nil, 10)
	c := newTestCharacter(s)
	UpdateAttributes(c, false)

	d := Finalize(c)
	if got := parseFormatted(t, d.EffectivePositiveValues["Expertise"]); got != 0 {
		t.Fatalf("EffectivePositiveValues[Expertise] = %v, want 0", got)
	}
	if got := parseFormatted(t, d.EffectiveNegativeValues["Expertise"]); got != 0 {
		t.Fatalf("EffectiveNegativeValues[Expertise] = %v, want 0", got)
	}
}

func TestFinalizeCoefficientHelperSlopeAndIntercept(t *testing.T) {
	_, c := buildFinalizeTestCharacter(t)
	d := Finalize(c)

	coef, ok := d.CoefficientHelper["Power"]
	if !ok {
		t.Fatalf("CoefficientHelper missing the Power key")
	}
	wantSlope := targetArmor / targetArmor // Effective Power == targetArmor here
	if coef.Slope != wantSlope {
		t.Fatalf("Slope = %v, want %v", coef.Slope, wantSlope)
	}
	if coef.Intercept != 0 {
		t.Fatalf("Intercept = %v, want 0 (Power DPS is linear through the origin)", coef.Intercept)
	}
}

func TestFinalizeIndicatorsFormatsKnownAttribute(t *testing.T) {
	s := buildTestSettings(nil, 10)
	idx, ok := s.Table.Lookup("Critical Chance")
	if !ok {
		t.Fatalf("Critical Chance was not interned by buildCoreIndices")
	}
	c := newTestCharacter(s)
	c.BaseAttributes.Set(idx, 0.5)
	c.BaseAttributes.Set(s.PrecisionIdx(), 1000) // cancels the derived Critical Chance term
	UpdateAttributes(c, false)

	d := Finalize(c)
	got := parseFormatted(t, d.Indicators["Critical Chance"])
	if got != 0.5 {
		t.Fatalf("Indicators[Critical Chance] = %v, want 0.5", got)
	}
}
