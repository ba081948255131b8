package loader

import (
	"os"
	"path/filepath"
	"testing"

	"gearsearch/gamedata"
	"gearsearch/gear"
)

func TestLoadGameTablesEmptyPathReturnsDefaults(t *testing.T) {
	tables, err := LoadGameTables("")
	if err != nil {
		t.Fatalf("LoadGameTables(\"\") error = %v", err)
	}
	if len(tables.Attributes) != len(gamedata.PointAttributes) {
		t.Fatalf("len(Attributes) = %d, want %d (package defaults)", len(tables.Attributes), len(gamedata.PointAttributes))
	}
	if tables.InfusionBonus != gamedata.InfusionBonus {
		t.Fatalf("InfusionBonus = %v, want %v", tables.InfusionBonus, gamedata.InfusionBonus)
	}
}

func TestParseGameTablesLayersOverDefaults(t *testing.T) {
	doc := []byte(`{
		"attributes": [{"name": "Power", "isPoint": true}, {"name": "Mythic Stat", "isPoint": true}],
		"infusionBonus": 7,
		"conditions": {"Bleeding": {"factor": 0.1, "baseDamage": 5}}
	}`)

	tables, err := ParseGameTables(doc)
	if err != nil {
		t.Fatalf("ParseGameTables() error = %v", err)
	}
	if len(tables.Attributes) != 2 {
		t.Fatalf("len(Attributes) = %d, want 2 (the file's list replaces the default list)", len(tables.Attributes))
	}
	if tables.InfusionBonus != 7 {
		t.Fatalf("InfusionBonus = %v, want 7", tables.InfusionBonus)
	}
	bleeding := tables.Conditions["Bleeding"]
	if bleeding.Factor != 0.1 || bleeding.BaseDamage != 5 {
		t.Fatalf("Conditions[Bleeding] = %+v, want overridden values", bleeding)
	}
	// Conditions not mentioned in the file survive from the defaults.
	if _, ok := tables.Conditions["Burning"]; !ok {
		t.Fatalf("ParseGameTables dropped a condition the file never mentioned")
	}
}

func minimalRequest() []byte {
	return []byte(`{
		"profession": "Elementalist",
		"rankby": "Damage",
		"slots": [
			{"affixes": [{"name": "Berserker", "bonuses": {"Power": 100, "Precision": 50}}]}
		],
		"baseAttributes": {"Power": 1000, "Precision": 1000},
		"infusion": {"mode": "None"}
	}`)
}

func TestBuildSettingsParsesSlotsAndBaseAttributes(t *testing.T) {
	tables := gamedata.DefaultGameTables()
	settings, minimal, err := BuildSettings(tables, minimalRequest())
	if err != nil {
		t.Fatalf("BuildSettings() error = %v", err)
	}
	if len(settings.Slots) != 1 || len(settings.Slots[0].Affixes) != 1 {
		t.Fatalf("Slots = %+v, want one slot with one affix", settings.Slots)
	}
	if name := settings.Slots[0].Affixes[0].Name; name != "Berserker" {
		t.Fatalf("affix name = %q, want Berserker", name)
	}
	if got := settings.BaseAttributes.Get(settings.PowerIdx()); got != 1000 {
		t.Fatalf("BaseAttributes[Power] = %v, want 1000", got)
	}
	if minimal.Profession != "Elementalist" {
		t.Fatalf("MinimalSettings.Profession = %q, want Elementalist", minimal.Profession)
	}
	if settings.RankBy != gear.RankDamage {
		t.Fatalf("RankBy = %v, want RankDamage", settings.RankBy)
	}
	if settings.MaxResults != 200 {
		t.Fatalf("MaxResults = %d, want 200 (default)", settings.MaxResults)
	}
}

func TestBuildSettingsRejectsUnknownInfusionMode(t *testing.T) {
	tables := gamedata.DefaultGameTables()
	body := []byte(`{"slots": [], "infusion": {"mode": "Bogus"}}`)

	_, _, err := BuildSettings(tables, body)
	if err == nil {
		t.Fatalf("BuildSettings() accepted an unknown infusion mode")
	}
	var cfgErr *gear.ConfigurationError
	if _, ok := err.(*gear.ConfigurationError); !ok {
		t.Fatalf("error type = %T, want *gear.ConfigurationError (%v)", err, cfgErr)
	}
}

func TestBuildSettingsRejectsSlotLayoutThatSplitsASymmetryPair(t *testing.T) {
	tables := gamedata.DefaultGameTables()
	// 8 armor/weapon slots: enough to declare the ring pair's low index (7)
	// but not its high index (8), and forcedRing is left unset.
	body := []byte(`{"slots": [
		{"affixes": [{"name": "A", "bonuses": {}}]},
		{"affixes": [{"name": "A", "bonuses": {}}]},
		{"affixes": [{"name": "A", "bonuses": {}}]},
		{"affixes": [{"name": "A", "bonuses": {}}]},
		{"affixes": [{"name": "A", "bonuses": {}}]},
		{"affixes": [{"name": "A", "bonuses": {}}]},
		{"affixes": [{"name": "A", "bonuses": {}}]},
		{"affixes": [{"name": "A", "bonuses": {}}]}
	], "infusion": {"mode": "None"}}`)

	_, _, err := BuildSettings(tables, body)
	if err == nil {
		t.Fatalf("BuildSettings() accepted an 8-slot layout that splits the ring symmetry pair")
	}
	if _, ok := err.(*gear.ConfigurationError); !ok {
		t.Fatalf("error type = %T, want *gear.ConfigurationError", err)
	}
}

func TestBuildSettingsAllowsSplitSymmetryPairWhenForced(t *testing.T) {
	tables := gamedata.DefaultGameTables()
	body := []byte(`{"forcedRing": true, "slots": [
		{"affixes": [{"name": "A", "bonuses": {}}]},
		{"affixes": [{"name": "A", "bonuses": {}}]},
		{"affixes": [{"name": "A", "bonuses": {}}]},
		{"affixes": [{"name": "A", "bonuses": {}}]},
		{"affixes": [{"name": "A", "bonuses": {}}]},
		{"affixes": [{"name": "A", "bonuses": {}}]},
		{"affixes": [{"name": "A", "bonuses": {}}]},
		{"affixes": [{"name": "A", "bonuses": {}}]}
	], "infusion": {"mode": "None"}}`)

	if _, _, err := BuildSettings(tables, body); err != nil {
		t.Fatalf("BuildSettings() error = %v, want nil once forcedRing opts out of the check", err)
	}
}

func TestBuildSettingsRejectsEmptyGameTables(t *testing.T) {
	_, _, err := BuildSettings(&gamedata.GameTables{}, minimalRequest())
	if err == nil {
		t.Fatalf("BuildSettings() accepted game tables with zero attributes")
	}
}

func TestBuildSettingsDefaultRankByIsDamage(t *testing.T) {
	tables := gamedata.DefaultGameTables()
	body := []byte(`{"slots": [], "infusion": {"mode": "None"}}`)
	settings, _, err := BuildSettings(tables, body)
	if err != nil {
		t.Fatalf("BuildSettings() error = %v", err)
	}
	if settings.RankBy != gear.RankDamage {
		t.Fatalf("RankBy = %v, want RankDamage when rankby is omitted", settings.RankBy)
	}
}

func TestLoadSettingsReadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	requestPath := filepath.Join(dir, "request.json")
	if err := os.WriteFile(requestPath, minimalRequest(), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	settings, _, err := LoadSettings("", requestPath)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if len(settings.Slots) != 1 {
		t.Fatalf("len(Slots) = %d, want 1", len(settings.Slots))
	}
}

func TestLoadSettingsMissingRequestFileErrors(t *testing.T) {
	_, _, err := LoadSettings("", filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatalf("LoadSettings() accepted a missing request file")
	}
}

func TestParseInfusionModes(t *testing.T) {
	tables := gamedata.DefaultGameTables()
	cases := map[string]gear.InfusionMode{
		"None":                  gear.InfusionNone,
		"Primary":               gear.InfusionPrimary,
		"Few":                   gear.InfusionFew,
		"Secondary":             gear.InfusionSecondary,
		"SecondaryNoDuplicates": gear.InfusionSecondaryNoDuplicates,
	}
	for mode, want := range cases {
		body := []byte(`{"slots": [], "infusion": {"mode": "` + mode + `", "maxInfusions": 3, "primaryMax": 3, "secondaryMax": 3, "primary": "Power", "secondary": "Toughness"}}`)
		settings, _, err := BuildSettings(tables, body)
		if err != nil {
			t.Fatalf("mode %q: BuildSettings() error = %v", mode, err)
		}
		if settings.Infusion.Mode != want {
			t.Fatalf("mode %q: Infusion.Mode = %v, want %v", mode, settings.Infusion.Mode, want)
		}
	}
}
