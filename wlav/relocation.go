package wlav

// simpleRelocation is a direct, single-symbol reference: addend 0, shift
// 0, no second symbol.
type simpleRelocation struct {
	section    *Section
	kind       RelocKind
	fileID     uint32
	lineNumber uint32
	offset     uint32
	symbol     *Symbol
}

func (r *simpleRelocation) write(w *countingWriter, m *Mangler, sections *SectionMap) {
	_ = m.writeName(w, r.symbol)
	w.u8(0)
	w.u8(simpleRelocByte(r.kind))
	w.u8(0) // not a special case
	w.u32(sections.ID(r.section))
	w.u8(uint8(r.fileID))
	w.u32(r.lineNumber)
	w.u32(r.offset)
}

// complexRelocation is a postfix stack-machine expression over symbols,
// literals and operators, evaluated by wlalink at link time.
type complexRelocation struct {
	section    *Section
	kind       RelocKind
	fileID     uint32
	lineNumber uint32
	offset     uint32
	stack      []CalcStackEntry
}

func (r *complexRelocation) write(w *countingWriter, m *Mangler, sections *SectionMap, id uint32) {
	w.u32(id)
	w.u8(complexRelocByte(r.kind))
	w.u8(0)
	w.u32(sections.ID(r.section))
	w.u8(uint8(r.fileID))
	w.u8(uint8(len(r.stack)))
	w.u8(0)
	w.u32(r.offset)
	w.u32(r.lineNumber)
	for _, e := range r.stack {
		_ = e.write(w, m)
	}
}

// recordRelocation decides whether a fixup needs a simple or complex
// relocation record and appends it to the appropriate list.
//
// fixedValue stands in for MCObjectWriter::recordRelocation's output
// parameter: it is target.Constant, returned as-is, since WLAV always
// defers the actual computation to wlalink.
func (ow *ObjectWriter) recordRelocation(frag *Fragment, fixup Fixup, target RelocTarget) (fixedValue uint64, err error) {
	fileID, line := ow.sourceIndex.resolve(fixup.Loc)
	offset := ow.layout.FragmentOffset(frag) + fixup.Offset
	kind, err := ow.targetWriter.RelocType(fixup)
	if err != nil {
		return 0, err
	}
	shift := ow.targetWriter.FixupShift(fixup)

	symA := target.SymA
	invariant(symA != nil, "relocation target has no primary symbol")

	if shift != 0 || target.SymB != nil || target.Constant != 0 {
		rel := &complexRelocation{
			section:    frag.Section,
			kind:       kind,
			fileID:     fileID,
			lineNumber: line,
			offset:     offset,
		}
		rel.stack = append(rel.stack, CalcSymbol(symA, false))
		if target.SymB != nil {
			invariant(target.SymBModifier == ModifierNone,
				"complex relocation's second symbol %q must carry no modifier", target.SymB.Name)
			invariant(!target.SymBAbsolute,
				"complex relocation's second symbol %q must not be absolute", target.SymB.Name)
			rel.stack = append(rel.stack, CalcSymbol(target.SymB, false), CalcOperator(CalcSub))
		}
		if target.Constant != 0 {
			rel.stack = append(rel.stack, CalcValue(float64(target.Constant)), CalcOperator(CalcAdd))
		}
		if shift != 0 {
			rel.stack = append(rel.stack, CalcValue(float64(shift)), CalcOperator(CalcShr))
		}
		ow.complexRelocs = append(ow.complexRelocs, rel)
	} else {
		ow.simpleRelocs = append(ow.simpleRelocs, &simpleRelocation{
			section:    frag.Section,
			kind:       kind,
			fileID:     fileID,
			lineNumber: line,
			offset:     offset,
			symbol:     symA,
		})
	}
	return uint64(target.Constant), nil
}
