package gear

// CondiCache memoizes condition-DPS score by (Expertise, Condition Damage)
// pair (spec §3, §4.4). The source linearizes the key as
// Expertise + ConditionDamage*10000, which collides once Expertise reaches
// 10000; this implementation keys on the pair directly instead of widening
// the linear encoding, which removes the collision risk outright rather
// than just raising the ceiling (documented as the resolved Open Question
// in DESIGN.md).
type CondiCache struct {
	m map[condiKey]float64
}

type condiKey struct {
	expertise       int64
	conditionDamage int64
}

// NewCondiCache creates an empty cache. One cache lives for the duration of
// a single search (spec §3 lifecycle) and must never be shared across
// concurrent workers without a lock (spec §5).
func NewCondiCache() *CondiCache {
	return &CondiCache{m: make(map[condiKey]float64)}
}

func keyFor(expertise, conditionDamage float64) condiKey {
	return condiKey{expertise: int64(expertise), conditionDamage: int64(conditionDamage)}
}

// Get returns the cached score and whether it was present.
func (c *CondiCache) Get(expertise, conditionDamage float64) (float64, bool) {
	v, ok := c.m[keyFor(expertise, conditionDamage)]
	return v, ok
}

// Put stores score for the (expertise, conditionDamage) pair.
func (c *CondiCache) Put(expertise, conditionDamage, score float64) {
	c.m[keyFor(expertise, conditionDamage)] = score
}

// Len reports the number of memoized entries; exposed for tests.
func (c *CondiCache) Len() int { return len(c.m) }
