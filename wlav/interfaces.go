package wlav

import "io"

// SourceLoc identifies where a fixup originated: a raw, assembler-assigned
// buffer ID plus a line number within it. The zero value (Valid == false)
// stands for "no location available", the same case LLVM represents with
// an invalid SMLoc.
type SourceLoc struct {
	Valid    bool
	BufferID uint32
	Line     uint32
}

// SourceManager resolves a raw buffer ID to a human-readable file
// identifier. It is the thin Go-side stand-in for llvm::SourceMgr: the
// object writer only ever asks it for a name, never for buffer contents.
type SourceManager interface {
	// Identifier returns the buffer's identifying name. ok is false if the
	// source manager has no memory buffer for this ID, in which case
	// callers fall back to a synthesized "anonymous file <id>" name.
	Identifier(bufferID uint32) (name string, ok bool)
}

// Modifier is a symbol-reference modifier (e.g. "@lo"/"@hi" style
// qualifiers in other assemblers). WLAV's complex relocations only ever
// accept a plain, unmodified second symbol reference.
type Modifier int

const (
	ModifierNone Modifier = iota
	ModifierOther
)

// RelocTarget is the resolved value side of a fixup: a primary symbol, an
// optional secondary symbol to subtract, and an optional integer addend.
// It mirrors MCValue's (SymA, SymB, Constant) triple.
type RelocTarget struct {
	SymA         *Symbol
	SymB         *Symbol
	SymBModifier Modifier
	SymBAbsolute bool
	Constant     int64
}

// Fixup is an unresolved reference recorded while encoding an instruction
// or directive. Offset is relative to the start of the fragment's content
// (after the streamer has rebased it past any bytes already appended).
// Info carries target-specific detail (e.g. which operand, what addend
// shift) that only a TargetObjectWriter implementation interprets.
type Fixup struct {
	Offset uint32
	Loc    SourceLoc
	Info   any
}

// TargetObjectWriter is the minimal target-specific contract the object
// writer needs: how to classify a fixup's relocation shape, and how much
// the fixup implicitly right-shifts its resolved value (e.g. a "high
// byte of address" fixup shifts right by 8).
type TargetObjectWriter interface {
	RelocType(f Fixup) (RelocKind, error)
	FixupShift(f Fixup) uint32
}

// Fragment is a span of raw output bytes belonging to one section, plus
// the fixups recorded against it. It corresponds to MCDataFragment.
type Fragment struct {
	Section         *Section
	Contents        []byte
	Fixups          []Fixup
	HasInstructions bool
}

// Assembler is the read-only view of a fully laid-out assembly unit that
// the object writer consumes. It performs no macro expansion, layout, or
// relaxation itself — that machinery lives behind this interface as an
// external collaborator; Assembler only has to answer questions about the
// result.
type Assembler interface {
	// Sections returns every section in a single, stable enumeration
	// order. The object writer calls this once, in
	// ExecutePostLayoutBinding, and uses that one slice both to assign
	// section IDs and to emit section records.
	Sections() []*Section
	Symbols() []*Symbol
	// FileNames lists source file names known to the assembler, in the
	// order they were first seen. Used both for private-symbol mangling
	// and as a last-resort single-file source table.
	FileNames() []string
	// WriteSectionData writes a section's raw, fully-relocated content
	// bytes (length layout.SectionFileSize(s)) to w.
	WriteSectionData(w io.Writer, s *Section, layout AsmLayout) error
}

// AsmLayout is the subset of post-layout placement information the
// object writer needs.
type AsmLayout interface {
	SectionFileSize(s *Section) uint32
	// SymbolOffset resolves a symbol to an absolute byte offset. ok is
	// false if the symbol's value isn't an absolute expression yet.
	SymbolOffset(sym *Symbol) (offset uint32, ok bool)
	FragmentOffset(f *Fragment) uint32
}
