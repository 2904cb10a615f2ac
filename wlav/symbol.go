package wlav

// OffsetResolver resolves a symbol to an absolute byte offset within its
// section once layout has run. It stands in for MCAsmLayout's
// getSymbolOffset: the writer calls it only after post-layout binding, and
// only for symbols it is about to serialize.
type OffsetResolver func() (offset uint32, ok bool)

// Symbol is a named symbol, classified private/exported from its
// defined/external/section/temporary flags.
type Symbol struct {
	Name      string
	Temporary bool
	Defined   bool
	External  bool
	InSection bool
	Section   *Section
	Offset    OffsetResolver
}

// Exported reports whether the linker sees this symbol's public name:
// it must reside in a section and have a non-empty name.
func (s *Symbol) Exported() bool {
	return s.InSection && s.Name != ""
}

// Private reports whether the symbol needs file-qualified name mangling
// to stay unique across translation units: temporary symbols always do,
// and so do symbols that are defined but not external.
func (s *Symbol) Private() bool {
	return s.Temporary || (s.Defined && !s.External)
}
