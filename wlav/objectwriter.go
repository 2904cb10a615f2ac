package wlav

import (
	"io"
	"sort"
)

// ObjectWriter orchestrates post-layout binding, section enumeration,
// relocation intake, and final serialization of a WLAV object file. It is
// single-threaded and synchronous: every method runs to completion before
// returning, and the only mutable state it touches is its own side tables.
//
// Usage follows a fixed sequence:
//
//	w := NewObjectWriter(targetWriter, sourceMgr)
//	w.ExecutePostLayoutBinding(asm, layout)
//	w.RecordRelocation(...)   // any number of times
//	n, err := w.WriteObject(out)
type ObjectWriter struct {
	targetWriter TargetObjectWriter
	sourceIndex  *sourceIndex

	sectionMap *SectionMap
	symbolMap  *SymbolMap

	simpleRelocs  []*simpleRelocation
	complexRelocs []*complexRelocation

	asm    Assembler
	layout AsmLayout
	// sections is the enumeration snapshot taken during
	// ExecutePostLayoutBinding. Both the section-ID assignment pass and
	// the later data-section emission pass read from this single slice,
	// so they are guaranteed to agree on order.
	sections []*Section
}

// NewObjectWriter creates a writer for one object file. sourceMgr may be
// nil, meaning no source manager is available to resolve buffer names.
func NewObjectWriter(targetWriter TargetObjectWriter, sourceMgr SourceManager) *ObjectWriter {
	return &ObjectWriter{
		targetWriter: targetWriter,
		sourceIndex:  newSourceIndex(sourceMgr),
		sectionMap:   NewSectionMap(),
		symbolMap:    NewSymbolMap(),
	}
}

// ExecutePostLayoutBinding performs the late binding the assembler
// framework invokes once layout and relaxation are complete: it enumerates
// sections (assigning dense 1-based IDs) and snapshots every symbol's
// exported/private classification.
func (ow *ObjectWriter) ExecutePostLayoutBinding(asm Assembler, layout AsmLayout) {
	ow.asm = asm
	ow.layout = layout
	ow.sections = asm.Sections()
	for _, s := range ow.sections {
		ow.sectionMap.Add(s)
	}
	for _, sym := range asm.Symbols() {
		ow.symbolMap.Add(sym)
	}
}

// RecordRelocation records one relocation entry for a fixup, choosing a
// simple or complex record depending on whether the fixup needs a shift, a
// second symbol, or a nonzero constant. It must be called after
// ExecutePostLayoutBinding.
func (ow *ObjectWriter) RecordRelocation(frag *Fragment, fixup Fixup, target RelocTarget) (fixedValue uint64, err error) {
	invariant(ow.asm != nil, "RecordRelocation called before ExecutePostLayoutBinding")
	return ow.recordRelocation(frag, fixup, target)
}

// WriteObject serializes the object file to w in wlalink's expected order
// and returns the number of bytes written.
func (ow *ObjectWriter) WriteObject(w io.Writer) (n int64, err error) {
	invariant(ow.asm != nil, "WriteObject called before ExecutePostLayoutBinding")

	cw := newCountingWriter(w)

	// 1. Header: 'W','L','A','7', misc bits (little-endian target, 65816
	// present). The comment in the original source claims this is "WLAY,
	// object file version 24" — that appears to be stale documentation;
	// these are the exact bytes wlalink accepts, and are preserved as-is.
	cw.u8('W')
	cw.u8('L')
	cw.u8('A')
	cw.u8('7')
	cw.u8(0x02)

	// 2. Source file table.
	ow.sourceIndex.write(cw, ow.asm)

	// 3. Exported-definitions count: always 0 (no .def/.redef support).
	cw.u32(0)

	// 4. Symbol table.
	ow.writeSymbolTable(cw)

	// 5. Simple relocations, insertion order.
	cw.u32(uint32(len(ow.simpleRelocs)))
	mangler := NewMangler(ow.symbolMap, ow.asm.FileNames())
	for _, r := range ow.simpleRelocs {
		r.write(cw, mangler, ow.sectionMap)
	}

	// 6. Complex relocations, insertion order, IDs starting at 1.
	cw.u32(uint32(len(ow.complexRelocs)))
	for i, r := range ow.complexRelocs {
		r.write(cw, mangler, ow.sectionMap, uint32(i+1))
	}

	// 7. Label size-of list: always empty.
	cw.u32(0)

	// 8. Section appends: always empty.
	cw.u32(0)

	// 9. Data sections, in the same order section IDs were assigned.
	for _, s := range ow.sections {
		ow.writeSection(cw, s)
	}

	return cw.n, cw.err
}

// writeSymbolTable writes the exported symbol count followed by each
// exported symbol's record. Export order is sorted by (section ID,
// offset, name) rather than raw map-iteration order, so that two writes
// of the same assembled unit are byte-identical.
func (ow *ObjectWriter) writeSymbolTable(cw *countingWriter) {
	exported := ow.symbolMap.ExportedSymbols()
	sortSymbolsForExport(exported, ow.sectionMap, ow.layout)

	cw.u32(uint32(len(exported)))
	mangler := NewMangler(ow.symbolMap, ow.asm.FileNames())
	for _, sym := range exported {
		ow.writeSymbol(cw, mangler, sym)
	}
}

// writeSymbol writes one exported symbol record. File ID and line number
// are hard-coded to 1 and 0 respectively: a label recorded before any
// fixup has no real file/line association available here.
func (ow *ObjectWriter) writeSymbol(cw *countingWriter, m *Mangler, sym *Symbol) {
	_ = m.writeName(cw, sym)
	cw.u8(0)
	cw.u8(symKindLabel)
	cw.u32(ow.sectionMap.ID(sym.Section))
	cw.u8(1)
	cw.u32(0)

	offset, ok := ow.layout.SymbolOffset(sym)
	if !ok {
		fatal("expected absolute expression for symbol %q", sym.Name)
	}
	cw.u32(offset)
}

// writeSection writes one data-section record: name, status, namespace,
// section ID, file ID, size, alignment, priority, raw bytes, list-file
// marker.
func (ow *ObjectWriter) writeSection(cw *countingWriter, s *Section) {
	cw.str(s.WireName())
	cw.u8(SectionFree)
	cw.u8(0) // empty namespace
	cw.u32(ow.sectionMap.ID(s))
	cw.u8(1) // file ID
	size := ow.layout.SectionFileSize(s)
	cw.u32(size)
	cw.u32(1) // alignment
	cw.u32(0) // priority
	if cw.err == nil {
		if err := ow.asm.WriteSectionData(cw, s, ow.layout); err != nil {
			cw.err = err
		}
	}
	cw.u8(0) // no list-file information
}

func sortSymbolsForExport(syms []*Symbol, sections *SectionMap, layout AsmLayout) {
	sort.Slice(syms, func(i, j int) bool {
		a, b := syms[i], syms[j]
		idA, idB := sections.ID(a.Section), sections.ID(b.Section)
		if idA != idB {
			return idA < idB
		}
		offA, _ := layout.SymbolOffset(a)
		offB, _ := layout.SymbolOffset(b)
		if offA != offB {
			return offA < offB
		}
		return a.Name < b.Name
	})
}
