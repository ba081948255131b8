package gear

import "time"

// StepResult reports what the caller should do after a call to Engine.Step.
type StepResult int

const (
	// StepYielded means the cooperative yield point fired; the engine has
	// more work and expects another Step call.
	StepYielded StepResult = iota
	// StepDone means the search exhausted the gear stack; List() holds the
	// final result.
	StepDone
)

// Progress is the value an Engine yields at each suspension point and on
// completion (spec §6).
type Progress struct {
	IsChanged       bool
	CalculationRuns uint64
	NewList         []*Character
}

// gearFrame is one entry of the engine's DFS stack: a gear prefix and its
// accumulated GearStats (spec §4.8).
type gearFrame struct {
	gear  []int
	stats Attributes
}

const (
	yieldCheckEvery = 1000
	yieldAfter      = 90 * time.Millisecond
)

// Engine is the iterative depth-first search over gear slot assignments
// (spec §4.8). It owns the condi cache and result heap exclusively; no
// concurrent access is required by the contract (spec §5).
type Engine struct {
	settings *Settings
	minimal  *MinimalSettings

	heap     *ResultHeap
	cache    *CondiCache
	infusion *InfusionApplier

	gearStack       []gearFrame
	calculationRuns uint64

	sinceYield int
	lastYield  time.Time

	empty bool
	done  bool
}

// NewEngine constructs an Engine from a fully materialized Settings (spec
// §6). Fails fast via settings.Finalize if infusionMode is not one of the
// five recognized values.
func NewEngine(settings *Settings, minimal *MinimalSettings) (*Engine, error) {
	if err := settings.Finalize(); err != nil {
		return nil, err
	}

	e := &Engine{
		settings: settings,
		minimal:  minimal,
		heap:     NewResultHeap(settings),
	}
	if !settings.DisableCondiResultCache {
		e.cache = NewCondiCache()
	}
	e.infusion = NewInfusionApplier(settings, e.cache, e.heap)

	if len(settings.Slots) == 0 {
		e.empty = true
	}
	for _, slot := range settings.Slots {
		if len(slot.Affixes) == 0 {
			e.empty = true
			break
		}
	}

	e.gearStack = []gearFrame{{gear: []int{}, stats: NewAttributes(settings.Table)}}
	e.lastYield = time.Now()
	return e, nil
}

// Settings returns the engine's bound Settings.
func (e *Engine) Settings() *Settings { return e.settings }

// MinimalSettings returns the display-only projection bound at construction.
func (e *Engine) MinimalSettings() *MinimalSettings { return e.minimal }

// List returns the current top-K, best first.
func (e *Engine) List() []*Character { return e.heap.List() }

// CalculationRuns returns the total number of leaf evaluations so far.
func (e *Engine) CalculationRuns() uint64 { return e.calculationRuns }

// Step runs the search loop until the next cooperative yield point or
// completion (spec §4.8, §5). EmptySearchSpace (an affixes list of length
// zero) short-circuits to an immediate terminal, empty Progress.
func (e *Engine) Step() (Progress, StepResult) {
	if e.empty {
		e.done = true
		return Progress{}, StepDone
	}
	if e.done {
		return Progress{}, StepDone
	}

	for len(e.gearStack) > 0 {
		e.sinceYield++
		if e.sinceYield >= yieldCheckEvery {
			e.sinceYield = 0
			if time.Since(e.lastYield) > yieldAfter {
				e.lastYield = time.Now()
				return e.snapshot(), StepYielded
			}
		}

		top := len(e.gearStack) - 1
		frame := e.gearStack[top]
		e.gearStack = e.gearStack[:top]
		k := len(frame.gear)

		if e.symmetryPruned(frame.gear, k) {
			e.calculationRuns += e.settings.RunsAfterThisSlot[k]
			continue
		}

		if k == len(e.settings.Slots) {
			e.calculationRuns++
			e.testCharacter(frame.gear, frame.stats)
			continue
		}

		e.expand(frame, k)
	}

	e.done = true
	return e.snapshot(), StepDone
}

// symmetryPruned implements spec §4.8 step 3. gear must have exactly k
// entries; the four checks are independent and mutually exclusive by
// construction (each fires at a distinct slot depth).
func (e *Engine) symmetryPruned(gear []int, k int) bool {
	s := e.settings
	switch {
	case !s.ForcedArmor && k == 6 && (gear[1] > gear[3] || gear[3] > gear[5]):
		return true
	case !s.ForcedRing && k == 9 && gear[7] > gear[8]:
		return true
	case !s.ForcedAcc && k == 11 && gear[9] > gear[10]:
		return true
	case !s.ForcedWep && k == 14 && gear[12] > gear[13]:
		return true
	}
	return false
}

// testCharacter builds a Character from a completed gear assignment and
// hands it to the infusion applier (spec §4.8 step 4).
func (e *Engine) testCharacter(gear []int, stats Attributes) {
	c := NewCharacter(e.settings, append([]int(nil), gear...), stats.Clone())
	e.infusion.TestCharacter(c)
}

// expand pushes one frame per remaining affix choice at slot k, affix index
// 1 upward first so that affix 0 lands on top of the stack and is the next
// one popped (spec §4.8 step 5).
func (e *Engine) expand(frame gearFrame, k int) {
	affixes := e.settings.Slots[k].Affixes
	for i := 1; i < len(affixes); i++ {
		gear := append(append([]int(nil), frame.gear...), i)
		stats := frame.stats.Clone()
		addAffixBonuses(stats, affixes[i])
		e.gearStack = append(e.gearStack, gearFrame{gear: gear, stats: stats})
	}

	gear0 := append(frame.gear, 0)
	stats0 := frame.stats
	addAffixBonuses(stats0, affixes[0])
	e.gearStack = append(e.gearStack, gearFrame{gear: gear0, stats: stats0})
}

func addAffixBonuses(stats Attributes, a Affix) {
	for _, bonus := range a.Bonuses {
		stats.Add(bonus.Idx, bonus.Value)
	}
}

// snapshot builds the Progress value for a yield or the final return,
// consuming the heap's dirty flag (spec §4.8 step 1, §6).
func (e *Engine) snapshot() Progress {
	changed := e.heap.ConsumeChanged()
	var list []*Character
	if changed {
		list = e.heap.Snapshot()
	}
	return Progress{
		IsChanged:       changed,
		CalculationRuns: e.calculationRuns,
		NewList:         list,
	}
}
