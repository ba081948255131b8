package gear

// AttrTable assigns every attribute name used by a search a dense integer
// index, built once when Settings is constructed. This is the "re-architect"
// from spec §9: the source keeps a string-keyed map per character; here the
// map exists only at build time, and every Character carries a flat
// []float64 indexed by AttrTable so hot-loop reads/writes never hash a
// string.
type AttrTable struct {
	index  map[string]int
	names  []string
	isPoint []bool
}

// NewAttrTable creates an empty table.
func NewAttrTable() *AttrTable {
	return &AttrTable{index: make(map[string]int)}
}

// Intern returns the dense index for name, assigning a new one if this is
// the first time name has been seen. Only called while building Settings;
// never called from the search hot loop.
func (t *AttrTable) Intern(name string, isPoint bool) int {
	if idx, ok := t.index[name]; ok {
		if isPoint {
			t.isPoint[idx] = true
		}
		return idx
	}
	idx := len(t.names)
	t.index[name] = idx
	t.names = append(t.names, name)
	t.isPoint = append(t.isPoint, isPoint)
	return idx
}

// Lookup returns the index for name and whether it is known. Attributes
// that were never interned default to 0 at read time by the caller, per
// spec's "missing attributes default to 0" rule — callers should prefer
// Intern at build time and Attributes.Get at run time rather than calling
// this directly in a hot loop.
func (t *AttrTable) Lookup(name string) (int, bool) {
	idx, ok := t.index[name]
	return idx, ok
}

// Len returns the number of interned attributes.
func (t *AttrTable) Len() int { return len(t.names) }

// Name returns the attribute name at idx.
func (t *AttrTable) Name(idx int) string { return t.names[idx] }

// IsPoint reports whether idx rounds half-to-even under conversion.
func (t *AttrTable) IsPoint(idx int) bool { return t.isPoint[idx] }

// Attributes is a dense attribute vector, indexed by AttrTable. A fresh
// Attributes is all-zero, which is exactly the "missing attribute defaults
// to 0" behavior spec §9 calls for.
type Attributes []float64

// NewAttributes allocates a zeroed vector sized for table.
func NewAttributes(table *AttrTable) Attributes {
	return make(Attributes, table.Len())
}

// Get returns the value at idx, or 0 if idx is -1 (unknown attribute).
func (a Attributes) Get(idx int) float64 {
	if idx < 0 || idx >= len(a) {
		return 0
	}
	return a[idx]
}

// Add increments the value at idx by delta. No-op if idx is -1.
func (a Attributes) Add(idx int, delta float64) {
	if idx < 0 || idx >= len(a) {
		return
	}
	a[idx] += delta
}

// Set overwrites the value at idx. No-op if idx is -1.
func (a Attributes) Set(idx int, v float64) {
	if idx < 0 || idx >= len(a) {
		return
	}
	a[idx] = v
}

// Clone returns an owned copy.
func (a Attributes) Clone() Attributes {
	c := make(Attributes, len(a))
	copy(c, a)
	return c
}
