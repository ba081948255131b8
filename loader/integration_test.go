package loader

import (
	"testing"

	"gearsearch/gamedata"
	"gearsearch/gear"
)

// TestFullSearchFromRequestJSON drives the whole pipeline a request handler
// would: parse game tables and a request body, build an Engine, run it to
// completion, and check the winner is actually the better of the two
// available affixes.
func TestFullSearchFromRequestJSON(t *testing.T) {
	tables := gamedata.DefaultGameTables()
	body := []byte(`{
		"rankby": "Damage",
		"slots": [
			{"affixes": [
				{"name": "Berserker", "bonuses": {"Power": 1000, "Power Coefficient": 1}},
				{"name": "Cavalier",  "bonuses": {"Power": 200,  "Power Coefficient": 1}}
			]}
		],
		"baseAttributes": {"Precision": 1000},
		"infusion": {"mode": "None"},
		"maxResults": 10
	}`)

	settings, _, err := BuildSettings(tables, body)
	if err != nil {
		t.Fatalf("BuildSettings() error = %v", err)
	}

	engine, err := gear.NewEngine(settings, nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	result := gear.StepYielded
	for result != gear.StepDone {
		_, result = engine.Step()
	}

	if engine.CalculationRuns() != 2 {
		t.Fatalf("CalculationRuns() = %d, want 2 (one slot, two affixes)", engine.CalculationRuns())
	}
	list := engine.List()
	if len(list) != 2 {
		t.Fatalf("len(List()) = %d, want 2 (both affixes are valid candidates)", len(list))
	}
	if list[0].Gear[0] != 0 {
		t.Fatalf("winning affix index = %d, want 0 (Berserker, the higher-Power choice)", list[0].Gear[0])
	}
	if list[0].RankScore <= list[1].RankScore {
		t.Fatalf("Berserker RankScore %v should exceed Cavalier RankScore %v", list[0].RankScore, list[1].RankScore)
	}
	if list[0].Results == nil {
		t.Fatalf("the winning candidate has no finalized Results")
	}
}
