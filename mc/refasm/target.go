package refasm

import "github.com/Peppar/llvm-project-C65/wlav"

// FixupKind is the 65xx fixup kind a code emitter attaches to a Fixup's
// Info field. Each kind maps to exactly one wlav.RelocKind and an
// implicit right-shift amount, mirroring how a real MCFixupKindInfo
// table would describe "8-bit low byte of a 16-bit address" versus "8-bit
// high byte of a 16-bit address" as distinct kinds sharing one
// relocation type.
type FixupKind int

const (
	// FixupDirect8 is a plain 8-bit absolute reference (zero-page operand).
	FixupDirect8 FixupKind = iota
	// FixupDirect16 is a plain 16-bit absolute reference.
	FixupDirect16
	// FixupDirect24 is a plain 24-bit bank-qualified absolute reference
	// (65816 far addressing).
	FixupDirect24
	// FixupRelative8 is an 8-bit PC-relative branch displacement.
	FixupRelative8
	// FixupRelative16 is a 16-bit PC-relative branch displacement
	// (65802/65816 BRL).
	FixupRelative16
	// FixupDirect16LowByte takes the low 8 bits of a 16-bit address
	// (e.g. LDA #<label).
	FixupDirect16LowByte
	// FixupDirect16HighByte takes the high 8 bits of a 16-bit address
	// (e.g. LDA #>label).
	FixupDirect16HighByte
)

// kindShape returns the RelocKind and right-shift amount FixupKind
// encodes.
func (k FixupKind) kindShape() (wlav.RelocKind, uint32) {
	switch k {
	case FixupDirect8:
		return wlav.Direct8, 0
	case FixupDirect16:
		return wlav.Direct16, 0
	case FixupDirect24:
		return wlav.Direct24, 0
	case FixupRelative8:
		return wlav.Relative8, 0
	case FixupRelative16:
		return wlav.Relative16, 0
	case FixupDirect16LowByte:
		return wlav.Direct16, 0
	case FixupDirect16HighByte:
		return wlav.Direct16, 8
	default:
		invariant(false, "unknown fixup kind %d", k)
		return 0, 0
	}
}

// TargetObjectWriter implements wlav.TargetObjectWriter for the 65xx
// fixup kinds above. It carries no state: the relocation shape and shift
// amount are fully determined by the FixupKind stashed in Fixup.Info by
// the code emitter.
type TargetObjectWriter struct{}

// NewTargetObjectWriter returns the (stateless) 65xx target writer.
func NewTargetObjectWriter() *TargetObjectWriter {
	return &TargetObjectWriter{}
}

// RelocType implements wlav.TargetObjectWriter.
func (TargetObjectWriter) RelocType(f wlav.Fixup) (wlav.RelocKind, error) {
	kind, ok := f.Info.(FixupKind)
	invariant(ok, "fixup carries no FixupKind in Info: %#v", f.Info)
	reloc, _ := kind.kindShape()
	return reloc, nil
}

// FixupShift implements wlav.TargetObjectWriter.
func (TargetObjectWriter) FixupShift(f wlav.Fixup) uint32 {
	kind, ok := f.Info.(FixupKind)
	invariant(ok, "fixup carries no FixupKind in Info: %#v", f.Info)
	_, shift := kind.kindShape()
	return shift
}
