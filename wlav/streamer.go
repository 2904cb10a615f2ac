package wlav

// SymbolAttr is a symbol attribute the assembler framework asks the
// streamer to apply (MCSymbolAttr in LLVM terms). WLAV only implements
// Global; anything else is fatal, matching the "report_fatal_error" path
// in MCWLAVStreamer::emitSymbolAttribute.
type SymbolAttr int

const (
	AttrGlobal SymbolAttr = iota
)

// CodeEmitter encodes one machine instruction into raw bytes plus the
// fixups it requires. It stands in for MCCodeEmitter: a per-target
// concern the streamer delegates to rather than reimplements.
type CodeEmitter interface {
	Encode(inst any, subtarget any) (code []byte, fixups []Fixup, err error)
}

// MutableFragmentSet is the subset of streamer bookkeeping that needs a
// "current fragment to append to" — the Fragment actively being written
// in the current section.
type MutableFragmentSet interface {
	// CurrentFragment returns the fragment new bytes should be appended
	// to, creating one if necessary.
	CurrentFragment() *Fragment
	// AppendZeros appends n zero bytes to the current fragment (used by
	// EmitCommonSymbol's padding and by alignment).
	AppendZeros(n int)
	// AlignTo pads the current fragment up to the next multiple of align
	// bytes with zeros.
	AlignTo(align int)
	// RegisterSymbol makes sym known to the assembler (equivalent to
	// MCAssembler::registerSymbol).
	RegisterSymbol(sym *Symbol)
}

// Streamer receives instruction and directive events from the assembler
// framework and turns them into fragment bytes, fixups, and symbol state.
// It corresponds to MCWLAVStreamer.
type Streamer struct {
	frags   MutableFragmentSet
	emitter CodeEmitter
}

// NewStreamer wraps a fragment sink and code emitter.
func NewStreamer(frags MutableFragmentSet, emitter CodeEmitter) *Streamer {
	return &Streamer{frags: frags, emitter: emitter}
}

// EmitSymbolAttribute registers sym and applies attr. Only AttrGlobal
// (which marks the symbol external) is supported; any other attribute is
// fatal.
func (s *Streamer) EmitSymbolAttribute(sym *Symbol, attr SymbolAttr) bool {
	s.frags.RegisterSymbol(sym)
	switch attr {
	case AttrGlobal:
		sym.External = true
	default:
		fatal("symbol attribute not implemented")
	}
	return true
}

// EmitCommonSymbol registers sym, then emits alignment padding and size
// zero bytes into the current section. The symbol itself is not marked
// as common, and its size and alignment are not recorded on it.
func (s *Streamer) EmitCommonSymbol(sym *Symbol, size uint64, align int) {
	s.frags.RegisterSymbol(sym)
	s.frags.AlignTo(align)
	s.frags.AppendZeros(int(size))
}

// EmitZerofill always fails: WLAV has no zero-fill section support.
func (s *Streamer) EmitZerofill(section *Section, sym *Symbol, size uint64, align int) {
	fatal("zero fill not implemented for WLAV")
}

// EmitInstToData asks emitter to encode inst, appends the resulting bytes
// to the current fragment, and rebases each returned fixup's offset past
// whatever content the fragment already held.
func (s *Streamer) EmitInstToData(inst any, subtarget any) error {
	code, fixups, err := s.emitter.Encode(inst, subtarget)
	if err != nil {
		return err
	}
	frag := s.frags.CurrentFragment()
	base := uint32(len(frag.Contents))
	frag.Contents = append(frag.Contents, code...)
	for _, f := range fixups {
		f.Offset += base
		frag.Fixups = append(frag.Fixups, f)
	}
	frag.HasInstructions = true
	return nil
}
