package refasm

import "github.com/Peppar/llvm-project-C65/wlav"

// Layout computes section sizes and fragment/symbol offsets from a Unit's
// current fragment contents. It implements wlav.AsmLayout. Call Refresh
// after mutating any fragment's Contents (including via Unit.AppendZeros
// or Unit.AlignTo) and before handing the Layout to an ObjectWriter.
type Layout struct {
	unit        *Unit
	fragOffsets map[*wlav.Fragment]uint32
	sectionSize map[*wlav.Section]uint32
}

// NewLayout computes a layout snapshot of unit's current fragment state.
func NewLayout(unit *Unit) *Layout {
	l := &Layout{
		unit:        unit,
		fragOffsets: make(map[*wlav.Fragment]uint32),
		sectionSize: make(map[*wlav.Section]uint32),
	}
	l.Refresh()
	return l
}

// Refresh recomputes fragment and section offsets from scratch. Symbol
// offsets are derived on demand in SymbolOffset, so they need no
// recomputation here.
func (l *Layout) Refresh() {
	for _, sec := range l.unit.sections {
		var off uint32
		for _, frag := range l.unit.fragments[sec] {
			l.fragOffsets[frag] = off
			off += uint32(len(frag.Contents))
		}
		l.sectionSize[sec] = off
	}
}

// SectionFileSize implements wlav.AsmLayout.
func (l *Layout) SectionFileSize(s *wlav.Section) uint32 {
	return l.sectionSize[s]
}

// FragmentOffset implements wlav.AsmLayout.
func (l *Layout) FragmentOffset(f *wlav.Fragment) uint32 {
	return l.fragOffsets[f]
}

// SymbolOffset implements wlav.AsmLayout. If sym carries its own
// OffsetResolver it is used directly (the escape hatch for symbols a
// caller placed some other way); otherwise the offset is derived from
// the label position Unit.EmitLabel (or section registration, for a
// section's begin symbol) recorded.
func (l *Layout) SymbolOffset(sym *wlav.Symbol) (uint32, bool) {
	if sym.Offset != nil {
		return sym.Offset()
	}
	pos, ok := l.unit.labelFrag[sym]
	if !ok {
		return 0, false
	}
	return l.fragOffsets[pos.frag] + pos.local, true
}
