// Package loader builds a gear.Settings/gear.MinimalSettings pair from a
// game-data file and a build-request file, the way the teacher's rawparse.go
// builds an InputData from a data file and an archive file: read the bytes,
// then walk the JSON with gjson rather than unmarshal into the final
// structs, since both files are arbitrarily-shaped and only a handful of
// fields are read per entry.
package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"gearsearch/gamedata"
	"gearsearch/gear"
)

// LoadGameTables reads a gamedata.json file and layers it over the package
// defaults (spec's gamedata.GameTables contract). A missing or empty path
// returns the defaults untouched.
func LoadGameTables(path string) (*gamedata.GameTables, error) {
	if path == "" {
		return gamedata.DefaultGameTables(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseGameTables(raw)
}

// ParseGameTables layers an already-read game-data document over the
// package defaults. Used directly by callers holding an embedded file
// (the Lambda handler) rather than a path.
func ParseGameTables(raw []byte) (*gamedata.GameTables, error) {
	t := gamedata.DefaultGameTables()
	doc := string(raw)

	if attrs := gjson.Get(doc, "attributes"); attrs.Exists() {
		var out []gamedata.AttributeMeta
		attrs.ForEach(func(_, v gjson.Result) bool {
			out = append(out, gamedata.AttributeMeta{
				Name:    v.Get("name").String(),
				IsPoint: v.Get("isPoint").Bool(),
			})
			return true
		})
		if len(out) > 0 {
			t.Attributes = out
		}
	}

	if ind := gjson.Get(doc, "indicators"); ind.Exists() {
		var out []string
		ind.ForEach(func(_, v gjson.Result) bool {
			out = append(out, v.String())
			return true
		})
		if len(out) > 0 {
			t.Indicators = out
		}
	}

	if v := gjson.Get(doc, "infusionBonus"); v.Exists() {
		t.InfusionBonus = v.Float()
	}

	gjson.Get(doc, "conditions").ForEach(func(key, v gjson.Result) bool {
		t.Conditions[key.String()] = gamedata.ConditionCoefficient{
			Factor:     v.Get("factor").Float(),
			BaseDamage: v.Get("baseDamage").Float(),
		}
		return true
	})

	if wvw := gjson.Get(doc, "conditionsWvw"); wvw.Exists() {
		t.ConditionsWvW = make(map[string]gamedata.ConditionCoefficient)
		wvw.ForEach(func(key, v gjson.Result) bool {
			t.ConditionsWvW[key.String()] = gamedata.ConditionCoefficient{
				Factor:     v.Get("factor").Float(),
				BaseDamage: v.Get("baseDamage").Float(),
			}
			return true
		})
	}

	return t, nil
}

// envelope is the small outer shell of a request file: which profession it
// labels the result under, and the handful of scalar knobs that are more
// naturally decoded with encoding/json than walked field by field — mirrors
// the teacher's main_lambda.go optimizeRequest, the one place it does use a
// tagged struct instead of gjson.
type envelope struct {
	Profession           string          `json:"profession"`
	Specialization       string          `json:"specialization"`
	WeaponType           string          `json:"weaponType"`
	AppliedModifierNames []string        `json:"appliedModifierNames"`
	RankBy               string          `json:"rankby"`
	ExtrasFlags          map[string]bool `json:"extrasFlags"`
	FormState            map[string]any  `json:"formState"`
	MaxResults           int             `json:"maxResults"`
	DisableCondiCache    bool            `json:"disableCondiResultCache"`
	MovementUptime       float64         `json:"movementUptime"`
	AttackRate           float64         `json:"attackRate"`
	ForcedArmor          bool            `json:"forcedArmor"`
	ForcedRing           bool            `json:"forcedRing"`
	ForcedAcc            bool            `json:"forcedAcc"`
	ForcedWep            bool            `json:"forcedWep"`
	RelevantConditions   []string        `json:"relevantConditions"`
	WvW                  bool            `json:"wvw"`
}

// LoadSettings builds a Settings/MinimalSettings pair from a game-data file
// and a request file (spec.md §3's wire format).
func LoadSettings(gameDataPath, requestPath string) (*gear.Settings, *gear.MinimalSettings, error) {
	tables, err := LoadGameTables(gameDataPath)
	if err != nil {
		return nil, nil, err
	}

	raw, err := os.ReadFile(requestPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", requestPath, err)
	}

	return BuildSettings(tables, raw)
}

// BuildSettings builds a Settings/MinimalSettings pair from already-parsed
// game tables and an already-read request document. Used directly by the
// Lambda handler, which holds both as in-memory bytes rather than paths.
func BuildSettings(tables *gamedata.GameTables, requestBody []byte) (*gear.Settings, *gear.MinimalSettings, error) {
	if len(tables.Attributes) == 0 {
		return nil, nil, gear.NewConfigurationError("game data declares zero attributes")
	}

	raw := requestBody
	doc := string(raw)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil, fmt.Errorf("parse request body: %w", err)
	}

	table := gear.NewAttrTable()
	for _, a := range tables.Attributes {
		table.Intern(a.Name, a.IsPoint)
	}

	settings, err := gear.NewSettings(table)
	if err != nil {
		return nil, nil, err
	}
	settings.Indicators = tables.Indicators
	settings.Conditions = tables.Conditions
	settings.InfusionBonus = tables.InfusionBonus
	settings.ConditionsWvW = tables.ConditionsWvW

	rankBy, err := parseRankBy(env.RankBy)
	if err != nil {
		return nil, nil, err
	}
	settings.RankBy = rankBy
	settings.MaxResults = env.MaxResults
	if settings.MaxResults == 0 {
		settings.MaxResults = 200
	}
	settings.DisableCondiResultCache = env.DisableCondiCache
	settings.MovementUptime = env.MovementUptime
	settings.AttackRate = env.AttackRate
	settings.ForcedArmor = env.ForcedArmor
	settings.ForcedRing = env.ForcedRing
	settings.ForcedAcc = env.ForcedAcc
	settings.ForcedWep = env.ForcedWep
	settings.RelevantConditions = env.RelevantConditions
	settings.WvW = env.WvW

	settings.Slots = parseSlots(doc, settings)
	settings.BaseAttributes = parseBaseAttributes(doc, settings)
	settings.Modifiers = parseModifiers(doc, settings)
	settings.Distribution, settings.DistributionOrder = parseDistribution(doc)
	settings.Constraints = parseConstraints(doc)

	infusion, err := parseInfusion(doc, settings)
	if err != nil {
		return nil, nil, err
	}
	settings.Infusion = infusion

	if err := gear.ValidateSymmetryLayout(settings); err != nil {
		return nil, nil, err
	}
	if err := settings.Finalize(); err != nil {
		return nil, nil, err
	}

	minimal := &gear.MinimalSettings{
		Profession:           env.Profession,
		Specialization:       env.Specialization,
		WeaponType:           env.WeaponType,
		AppliedModifierNames: env.AppliedModifierNames,
		RankBy:               rankBy,
		ExtrasFlags:          env.ExtrasFlags,
		FormState:            env.FormState,
		WvW:                  env.WvW,
	}

	return settings, minimal, nil
}

func parseRankBy(v string) (gear.RankBy, error) {
	switch v {
	case "Damage", "":
		return gear.RankDamage, nil
	case "Survivability":
		return gear.RankSurvivability, nil
	case "Healing":
		return gear.RankHealing, nil
	default:
		return 0, gear.NewConfigurationError(fmt.Sprintf("unknown rankby %q", v))
	}
}

func parseSlots(doc string, s *gear.Settings) []gear.SlotConfig {
	var slots []gear.SlotConfig
	gjson.Get(doc, "slots").ForEach(func(_, slotV gjson.Result) bool {
		var slot gear.SlotConfig
		slotV.Get("affixes").ForEach(func(_, affixV gjson.Result) bool {
			affix := gear.Affix{Name: affixV.Get("name").String()}
			affixV.Get("bonuses").ForEach(func(attrName, bonusV gjson.Result) bool {
				idx := s.Intern(attrName.String(), gamedata.IsPointAttribute(attrName.String()))
				affix.Bonuses = append(affix.Bonuses, gear.AttrDelta{Idx: idx, Value: bonusV.Float()})
				return true
			})
			slot.Affixes = append(slot.Affixes, affix)
			return true
		})
		slots = append(slots, slot)
		return true
	})
	return slots
}

func parseBaseAttributes(doc string, s *gear.Settings) gear.Attributes {
	attrs := gear.NewAttributes(s.Table)
	gjson.Get(doc, "baseAttributes").ForEach(func(name, v gjson.Result) bool {
		idx := s.Intern(name.String(), gamedata.IsPointAttribute(name.String()))
		attrs.Set(idx, v.Float())
		return true
	})
	return attrs
}

// parseConvertSource decodes one source term of a convert/convertAfterBuffs
// rule. "CriticalChanceClamp" and "CriticalChanceClampMinus" are the two
// synthetic sources spec §4.1 step 5 names; every other string is a plain
// attribute name.
func parseConvertSource(v gjson.Result, s *gear.Settings) gear.ConvertSource {
	name := v.Get("source").String()
	switch name {
	case "CriticalChanceClamp":
		return gear.ConvertSource{Kind: gear.SourceCritClamp, Percent: v.Get("percent").Float()}
	case "CriticalChanceClampMinus":
		return gear.ConvertSource{
			Kind:       gear.SourceCritClampMinus,
			MinusWhole: v.Get("minusWhole").Float(),
			Percent:    v.Get("percent").Float(),
		}
	default:
		idx := s.Intern(name, gamedata.IsPointAttribute(name))
		return gear.ConvertSource{Kind: gear.SourceNormal, SourceIdx: idx, Percent: v.Get("percent").Float()}
	}
}

func parseConvertRules(v gjson.Result, s *gear.Settings) []gear.ConvertRule {
	var rules []gear.ConvertRule
	v.ForEach(func(_, ruleV gjson.Result) bool {
		target := ruleV.Get("target").String()
		rule := gear.ConvertRule{TargetIdx: s.Intern(target, gamedata.IsPointAttribute(target))}
		ruleV.Get("sources").ForEach(func(_, srcV gjson.Result) bool {
			rule.Sources = append(rule.Sources, parseConvertSource(srcV, s))
			return true
		})
		rules = append(rules, rule)
		return true
	})
	return rules
}

func parseModifiers(doc string, s *gear.Settings) gear.Modifiers {
	m := gear.Modifiers{DamageMultiplier: map[string]float64{}}
	root := gjson.Get(doc, "modifiers")
	if !root.Exists() {
		return m
	}

	m.Convert = parseConvertRules(root.Get("convert"), s)
	m.ConvertAfterBuffs = parseConvertRules(root.Get("convertAfterBuffs"), s)

	root.Get("buff").ForEach(func(_, buffV gjson.Result) bool {
		attr := buffV.Get("attribute").String()
		idx := s.Intern(attr, gamedata.IsPointAttribute(attr))
		m.Buff = append(m.Buff, gear.BuffRule{Idx: idx, Bonus: buffV.Get("bonus").Float()})
		return true
	})

	root.Get("damageMultiplier").ForEach(func(key, v gjson.Result) bool {
		m.DamageMultiplier[key.String()] = v.Float()
		return true
	})

	m.HasBountifulMaintenanceOil = root.Get("hasBountifulMaintenanceOil").Bool()
	return m
}

func parseDistribution(doc string) (map[string]float64, []string) {
	dist := make(map[string]float64)
	var order []string
	gjson.Get(doc, "distribution").ForEach(func(key, v gjson.Result) bool {
		dist[key.String()] = v.Float()
		order = append(order, key.String())
		return true
	})
	return dist, order
}

func parseConstraints(doc string) gear.Constraints {
	var c gear.Constraints
	root := gjson.Get(doc, "constraints")
	if !root.Exists() {
		return c
	}
	assign := func(key string) *float64 {
		v := root.Get(key)
		if !v.Exists() {
			return nil
		}
		f := v.Float()
		return &f
	}
	c.MinBoonDuration = assign("minBoonDuration")
	c.MinHealingPower = assign("minHealingPower")
	c.MinToughness = assign("minToughness")
	c.MaxToughness = assign("maxToughness")
	c.MinHealth = assign("minHealth")
	c.MinCritChance = assign("minCritChance")
	return c
}

func parseInfusion(doc string, s *gear.Settings) (gear.InfusionConfig, error) {
	root := gjson.Get(doc, "infusion")
	mode := root.Get("mode").String()

	var m gear.InfusionMode
	switch mode {
	case "", "None":
		m = gear.InfusionNone
	case "Primary":
		m = gear.InfusionPrimary
	case "Few":
		m = gear.InfusionFew
	case "Secondary":
		m = gear.InfusionSecondary
	case "SecondaryNoDuplicates":
		m = gear.InfusionSecondaryNoDuplicates
	default:
		return gear.InfusionConfig{}, gear.NewConfigurationError(fmt.Sprintf("unknown infusion mode %q", mode))
	}

	cfg := gear.InfusionConfig{
		Mode:         m,
		MaxInfusions: int(root.Get("maxInfusions").Int()),
		PrimaryMax:   int(root.Get("primaryMax").Int()),
		SecondaryMax: int(root.Get("secondaryMax").Int()),
	}
	if primary := root.Get("primary").String(); primary != "" {
		cfg.PrimaryIdx = s.Intern(primary, gamedata.IsPointAttribute(primary))
	}
	if secondary := root.Get("secondary").String(); secondary != "" {
		cfg.SecondaryIdx = s.Intern(secondary, gamedata.IsPointAttribute(secondary))
	}
	return cfg, nil
}
