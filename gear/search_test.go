package gear

import "testing"

func TestNewEngineEmptySearchSpaceNoSlots(t *testing.T) {
	s := buildTestSettings(nil, 10)
	e, err := NewEngine(s, nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	progress, result := e.Step()
	if result != StepDone {
		t.Fatalf("Step() result = %v, want StepDone", result)
	}
	if progress.IsChanged || len(progress.NewList) != 0 {
		t.Fatalf("empty search space produced a non-empty Progress: %+v", progress)
	}
	if len(e.List()) != 0 {
		t.Fatalf("len(List()) = %d, want 0", len(e.List()))
	}
}

func TestNewEngineEmptySearchSpaceZeroAffixSlot(t *testing.T) {
	s := buildTestSettings([]int{2, 0, 2}, 10)
	e, err := NewEngine(s, nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	_, result := e.Step()
	if result != StepDone {
		t.Fatalf("Step() result = %v, want StepDone for a slot with zero affixes", result)
	}
}

func TestEngineSingleSlotSingleAffixProducesOneResult(t *testing.T) {
	s := buildTestSettings([]int{1}, 10)
	s.Slots[0].Affixes[0].Bonuses = []AttrDelta{{Idx: s.PowerCoefficientIdx(), Value: 1}}
	s.BaseAttributes.Set(s.PowerIdx(), targetArmor)

	e, err := NewEngine(s, nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	result := StepYielded
	for result != StepDone {
		_, result = e.Step()
	}

	if e.CalculationRuns() != 1 {
		t.Fatalf("CalculationRuns() = %d, want 1", e.CalculationRuns())
	}
	if len(e.List()) != 1 {
		t.Fatalf("len(List()) = %d, want 1", len(e.List()))
	}
	if got := e.List()[0].RankScore; got != 1 {
		t.Fatalf("RankScore = %v, want 1", got)
	}
}

func TestEngineTwoSlotsTwoAffixesEvaluatesAllCombinations(t *testing.T) {
	s := buildTestSettings([]int{2, 2}, 10)
	e, err := NewEngine(s, nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	result := StepYielded
	for result != StepDone {
		_, result = e.Step()
	}

	if e.CalculationRuns() != 4 {
		t.Fatalf("CalculationRuns() = %d, want 4 (2x2 combinations)", e.CalculationRuns())
	}
}

// buildSymmetryTestSettings lays out 9 slots: six 2-affix armor slots
// (indices 0-5, exercising the k==6 prune) followed by one 1-affix slot and
// two 2-affix slots at indices 7-8 (exercising the k==9 ring prune, which
// fires on the very last slot here since len(Slots)==9).
func buildSymmetryTestSettings() *Settings {
	return buildTestSettings([]int{2, 2, 2, 2, 2, 2, 1, 2, 2}, 500)
}

func TestEngineCalculationRunsAccountForPrunedBranchesExactly(t *testing.T) {
	s := buildSymmetryTestSettings()
	e, err := NewEngine(s, nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	result := StepYielded
	for result != StepDone {
		_, result = e.Step()
	}

	want := s.RunsAfterThisSlot[0]
	if e.CalculationRuns() != want {
		t.Fatalf("CalculationRuns() = %d, want %d (total combinatorial space, pruned branches credited in bulk)", e.CalculationRuns(), want)
	}
}

func TestEngineSymmetryPrunedArmor(t *testing.T) {
	s := buildSymmetryTestSettings()
	e, err := NewEngine(s, nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	if !e.symmetryPruned([]int{0, 1, 0, 0, 0, 1}, 6) {
		t.Fatalf("gear[1] > gear[3] should prune at k=6")
	}
	if !e.symmetryPruned([]int{0, 0, 0, 1, 0, 0}, 6) {
		t.Fatalf("gear[3] > gear[5] should prune at k=6")
	}
	if e.symmetryPruned([]int{0, 0, 0, 0, 0, 0}, 6) {
		t.Fatalf("a canonical (non-decreasing) armor assignment should not be pruned")
	}
}

func TestEngineSymmetryPrunedRing(t *testing.T) {
	s := buildSymmetryTestSettings()
	e, err := NewEngine(s, nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	gear := []int{0, 0, 0, 0, 0, 0, 0, 1, 0}
	if !e.symmetryPruned(gear, 9) {
		t.Fatalf("gear[7] > gear[8] should prune at k=9")
	}
}

func TestEngineSymmetryPrunedAccAndWeapon(t *testing.T) {
	s := buildTestSettings(nil, 10) // slot layout is irrelevant; symmetryPruned only reads the gear slice
	e, err := NewEngine(s, nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	accGear := make([]int, 11)
	accGear[9], accGear[10] = 1, 0
	if !e.symmetryPruned(accGear, 11) {
		t.Fatalf("gear[9] > gear[10] should prune at k=11")
	}

	wepGear := make([]int, 14)
	wepGear[12], wepGear[13] = 1, 0
	if !e.symmetryPruned(wepGear, 14) {
		t.Fatalf("gear[12] > gear[13] should prune at k=14")
	}
}

func TestEngineSymmetryPruningDisabledWhenForced(t *testing.T) {
	s := buildSymmetryTestSettings()
	s.ForcedArmor = true
	e, err := NewEngine(s, nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	if e.symmetryPruned([]int{0, 1, 0, 0, 0, 1}, 6) {
		t.Fatalf("ForcedArmor must disable the k=6 prune")
	}
}

func TestEngineStepIsIdempotentAfterDone(t *testing.T) {
	s := buildTestSettings([]int{1}, 10)
	e, _ := NewEngine(s, nil)

	_, first := e.Step() // exhausts the single-leaf stack in one call
	if first != StepDone {
		t.Fatalf("Step() result = %v, want StepDone", first)
	}

	progress, second := e.Step()
	if second != StepDone {
		t.Fatalf("second Step() after completion returned %v, want StepDone", second)
	}
	if progress.IsChanged {
		t.Fatalf("second Step() after completion reported a change")
	}
}
