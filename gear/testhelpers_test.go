package gear

// buildTestSettings assembles a minimal, valid Settings for unit tests: one
// slot per entry of affixCounts, each with that many affixes and no bonuses.
// Callers that need bonuses build slots by hand instead of through this
// helper.
func buildTestSettings(affixCounts []int, maxResults int) *Settings {
	table := NewAttrTable()
	s, err := NewSettings(table)
	if err != nil {
		panic(err)
	}
	for _, n := range affixCounts {
		var affixes []Affix
		for i := 0; i < n; i++ {
			affixes = append(affixes, Affix{Name: "affix"})
		}
		s.Slots = append(s.Slots, SlotConfig{Affixes: affixes})
	}
	s.MaxResults = maxResults
	if err := s.Finalize(); err != nil {
		panic(err)
	}
	return s
}
