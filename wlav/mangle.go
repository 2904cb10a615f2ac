package wlav

import (
	"io"
	"strings"
)

// Mangler renders a symbol's on-wire name. Private symbols are prefixed
// with their source file name (every '_' translated to '~', itself
// terminated with '~') because '_' is reserved by wlalink for
// section-local resolution and can't be used to disambiguate symbols
// across files. Non-private symbols are written verbatim (whether or not
// they are exported): mangling a non-private symbol is the identity on
// its name.
type Mangler struct {
	symbols   *SymbolMap
	fileNames []string
}

// NewMangler builds a Mangler against the symbol map produced by
// post-layout binding and the assembler's known file names (first one, if
// any, is used as the private-symbol prefix source).
func NewMangler(symbols *SymbolMap, fileNames []string) *Mangler {
	return &Mangler{symbols: symbols, fileNames: fileNames}
}

// writeName writes sym's mangled wire name (no terminator).
func (m *Mangler) writeName(w io.Writer, sym *Symbol) error {
	if m.symbols.IsPrivate(sym) {
		if len(m.fileNames) > 0 {
			if _, err := io.WriteString(w, strings.ReplaceAll(m.fileNames[0], "_", "~")); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "~"); err != nil {
				return err
			}
		} else if _, err := io.WriteString(w, "_"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, sym.Name)
	return err
}

// Mangle returns the mangled name as a string, for callers (the symbol
// table, error messages) that don't already hold a stream to write into.
func (m *Mangler) Mangle(sym *Symbol) string {
	var sb strings.Builder
	_ = m.writeName(&sb, sym)
	return sb.String()
}
