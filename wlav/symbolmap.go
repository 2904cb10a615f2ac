package wlav

// symbolFlags is a snapshot of a symbol's exported/private classification
// taken at post-layout-binding time, so later queries don't need to
// re-derive it from possibly-mutated symbol state.
type symbolFlags struct {
	exported bool
	private  bool
}

// SymbolMap records the exported/private classification of every symbol
// known to the assembler, computed once during post-layout binding.
type SymbolMap struct {
	flags map[*Symbol]symbolFlags
	// order preserves insertion order so ExportedSymbols is reproducible
	// for a given Add sequence even before any caller-side sort.
	order []*Symbol
}

// NewSymbolMap creates an empty symbol map.
func NewSymbolMap() *SymbolMap {
	return &SymbolMap{flags: make(map[*Symbol]symbolFlags)}
}

// Add snapshots sym's exported/private flags.
func (m *SymbolMap) Add(sym *Symbol) {
	if _, seen := m.flags[sym]; !seen {
		m.order = append(m.order, sym)
	}
	m.flags[sym] = symbolFlags{
		exported: sym.Exported(),
		private:  sym.Private(),
	}
}

// IsPrivate reports whether sym was registered as private. sym must have
// been added first; querying an unregistered symbol is a programmer error.
func (m *SymbolMap) IsPrivate(sym *Symbol) bool {
	f, ok := m.flags[sym]
	invariant(ok, "symbol %q queried before registration", sym.Name)
	return f.private
}

// ExportedSymbols returns every registered symbol with Exported() true, in
// insertion order. Callers that need byte-reproducible output across runs
// (the object writer) sort this further; see sortSymbolsForExport.
func (m *SymbolMap) ExportedSymbols() []*Symbol {
	out := make([]*Symbol, 0, len(m.order))
	for _, s := range m.order {
		if m.flags[s].exported {
			out = append(out, s)
		}
	}
	return out
}
