package wlav

// SectionMap assigns dense, stable, 1-based identifiers to sections in
// enumeration order. It is injective: distinct sections always get
// distinct IDs.
type SectionMap struct {
	ids  map[*Section]uint32
	next uint32
}

// NewSectionMap creates an empty section map; the first section added
// gets ID 1.
func NewSectionMap() *SectionMap {
	return &SectionMap{ids: make(map[*Section]uint32), next: 1}
}

// Add assigns the next ID to section, in whatever order Add is called.
func (m *SectionMap) Add(s *Section) {
	m.ids[s] = m.next
	m.next++
}

// ID returns section's ID, or 0 if it was never added (used by callers as
// a sanity-check sentinel, never emitted on the wire).
func (m *SectionMap) ID(s *Section) uint32 {
	return m.ids[s]
}
