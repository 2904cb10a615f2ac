// Package refasm is an in-memory reference implementation of the
// assembler-side contracts wlav.ObjectWriter depends on (Assembler,
// AsmLayout, SourceManager) plus a TargetObjectWriter for the 65xx fixup
// kinds. It performs no macro expansion, relaxation, or address
// allocation of its own: callers append fragment bytes and place labels
// directly, the way a test or a toy frontend would. It exists to drive
// wlav's tests and the wlavobj command's assemble/dump demo, and is not
// meant to replace a real assembler's layout engine.
package refasm

import (
	"fmt"
	"io"

	"github.com/Peppar/llvm-project-C65/wlav"
)

type labelPos struct {
	frag  *wlav.Fragment
	local uint32
}

// Unit is a single assembled translation unit: an ordered set of
// sections, each holding an ordered list of fragments, plus the symbols
// and file names the unit has accumulated. It implements
// wlav.Assembler, wlav.MutableFragmentSet, wlav.SourceManager, and the
// section-related collaborator interfaces asmparser.Parser expects
// (SectionFactory, SectionSwitcher).
type Unit struct {
	sections   []*wlav.Section
	sectionSet map[*wlav.Section]bool
	byName     map[string]*wlav.Section
	fragments  map[*wlav.Section][]*wlav.Fragment
	current    *wlav.Section

	symbols   []*wlav.Symbol
	symbolSet map[*wlav.Symbol]bool

	fileNames []string
	labelFrag map[*wlav.Symbol]labelPos

	sourceNames map[uint32]string
}

// NewUnit creates an empty translation unit.
func NewUnit() *Unit {
	return &Unit{
		sectionSet:  make(map[*wlav.Section]bool),
		byName:      make(map[string]*wlav.Section),
		fragments:   make(map[*wlav.Section][]*wlav.Fragment),
		symbolSet:   make(map[*wlav.Symbol]bool),
		labelFrag:   make(map[*wlav.Symbol]labelPos),
		sourceNames: make(map[uint32]string),
	}
}

// AddFileName records name as a known source file, in first-seen order,
// unless it is already present.
func (u *Unit) AddFileName(name string) {
	for _, n := range u.fileNames {
		if n == name {
			return
		}
	}
	u.fileNames = append(u.fileNames, name)
}

// AddSourceBuffer associates a raw buffer ID (the kind a Fixup.Loc
// carries) with a human-readable name, the way a real SourceMgr would
// after loading a file.
func (u *Unit) AddSourceBuffer(bufferID uint32, name string) {
	u.sourceNames[bufferID] = name
}

// GetSection returns the section named name, creating it (with kind) the
// first time it's requested. Implements asmparser.SectionFactory.
func (u *Unit) GetSection(name string, kind wlav.SectionKind) *wlav.Section {
	if s, ok := u.byName[name]; ok {
		return s
	}
	s := wlav.NewSection(name, kind)
	u.byName[name] = s
	u.registerSection(s)
	return s
}

// SwitchSection makes s the current section new fragment bytes go into.
// subsection is accepted but ignored: this reference layout doesn't
// split sections into interleaved subsections. Implements
// asmparser.SectionSwitcher.
func (u *Unit) SwitchSection(s *wlav.Section, subsection string) {
	u.registerSection(s)
	u.current = s
}

func (u *Unit) registerSection(s *wlav.Section) {
	if u.sectionSet[s] {
		return
	}
	u.sectionSet[s] = true
	u.sections = append(u.sections, s)
	frag := &wlav.Fragment{Section: s}
	u.fragments[s] = []*wlav.Fragment{frag}
	// s.Begin only needs a position for SymbolOffset to resolve; it is
	// never added to u.symbols, so it never reaches Assembler.Symbols()
	// or the object writer's symbol table. It is a lookup-only anchor.
	u.labelFrag[s.Begin] = labelPos{frag: frag, local: 0}
}

// RegisterSymbol makes sym known to the unit, if it isn't already.
// Implements wlav.MutableFragmentSet.
func (u *Unit) RegisterSymbol(sym *wlav.Symbol) {
	if u.symbolSet[sym] {
		return
	}
	u.symbolSet[sym] = true
	u.symbols = append(u.symbols, sym)
}

// CurrentFragment returns the fragment new bytes should be appended to
// in the current section. Implements wlav.MutableFragmentSet.
func (u *Unit) CurrentFragment() *wlav.Fragment {
	invariant(u.current != nil, "CurrentFragment called with no section selected")
	frags := u.fragments[u.current]
	return frags[len(frags)-1]
}

// AppendZeros appends n zero bytes to the current fragment.
func (u *Unit) AppendZeros(n int) {
	if n <= 0 {
		return
	}
	frag := u.CurrentFragment()
	frag.Contents = append(frag.Contents, make([]byte, n)...)
}

// AlignTo pads the current fragment up to the next multiple of align
// bytes with zeros. align <= 1 is a no-op.
func (u *Unit) AlignTo(align int) {
	if align <= 1 {
		return
	}
	frag := u.CurrentFragment()
	rem := len(frag.Contents) % align
	if rem != 0 {
		u.AppendZeros(align - rem)
	}
}

// EmitLabel defines sym at the current position of the current fragment:
// a plain, non-temporary label the way `name:` would in assembly text.
func (u *Unit) EmitLabel(sym *wlav.Symbol) {
	u.RegisterSymbol(sym)
	frag := u.CurrentFragment()
	sym.Defined = true
	sym.InSection = true
	sym.Section = u.current
	u.labelFrag[sym] = labelPos{frag: frag, local: uint32(len(frag.Contents))}
}

// StartNewFragment forces subsequent bytes in the current section into a
// fresh fragment, the way an alignment directive with a non-zero fill
// value or an instruction boundary sometimes requires.
func (u *Unit) StartNewFragment() {
	invariant(u.current != nil, "StartNewFragment called with no section selected")
	u.fragments[u.current] = append(u.fragments[u.current], &wlav.Fragment{Section: u.current})
}

// Sections implements wlav.Assembler.
func (u *Unit) Sections() []*wlav.Section { return u.sections }

// Symbols implements wlav.Assembler.
func (u *Unit) Symbols() []*wlav.Symbol { return u.symbols }

// FileNames implements wlav.Assembler.
func (u *Unit) FileNames() []string { return u.fileNames }

// WriteSectionData implements wlav.Assembler: it concatenates every
// fragment's contents for s, in emission order.
func (u *Unit) WriteSectionData(w io.Writer, s *wlav.Section, layout wlav.AsmLayout) error {
	for _, frag := range u.fragments[s] {
		if _, err := w.Write(frag.Contents); err != nil {
			return err
		}
	}
	return nil
}

// Identifier implements wlav.SourceManager.
func (u *Unit) Identifier(bufferID uint32) (string, bool) {
	name, ok := u.sourceNames[bufferID]
	return name, ok
}

// invariant panics when a programmer invariant is violated. refasm is a
// separate package from wlav and has no access to wlav's unexported
// assertion helper, so it keeps its own copy of the same pattern.
func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("refasm: invariant violated: %s", fmt.Sprintf(format, args...)))
	}
}
