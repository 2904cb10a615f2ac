package refasm_test

import (
	"bytes"
	"testing"

	"github.com/Peppar/llvm-project-C65/mc/refasm"
	"github.com/Peppar/llvm-project-C65/wlav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnit_SwitchSectionRegistersOnce(t *testing.T) {
	u := refasm.NewUnit()
	text := u.GetSection(".text", wlav.SectionText)
	u.SwitchSection(text, "")
	u.SwitchSection(text, "")

	assert.Equal(t, []*wlav.Section{text}, u.Sections())
}

func TestUnit_GetSectionIsIdempotentByName(t *testing.T) {
	u := refasm.NewUnit()
	a := u.GetSection(".data", wlav.SectionData)
	b := u.GetSection(".data", wlav.SectionData)
	assert.Same(t, a, b)
}

func TestUnit_BeginSymbolRegisteredAtSectionOffsetZero(t *testing.T) {
	u := refasm.NewUnit()
	text := u.GetSection(".text", wlav.SectionText)
	u.SwitchSection(text, "")
	u.AppendZeros(4)

	layout := refasm.NewLayout(u)
	offset, ok := layout.SymbolOffset(text.Begin)
	require.True(t, ok)
	assert.Equal(t, uint32(0), offset)
}

func TestUnit_EmitLabelTracksPosition(t *testing.T) {
	u := refasm.NewUnit()
	text := u.GetSection(".text", wlav.SectionText)
	u.SwitchSection(text, "")
	u.AppendZeros(5)

	label := &wlav.Symbol{Name: "loop"}
	u.EmitLabel(label)
	u.AppendZeros(3)

	layout := refasm.NewLayout(u)
	offset, ok := layout.SymbolOffset(label)
	require.True(t, ok)
	assert.Equal(t, uint32(5), offset)
	assert.Equal(t, uint32(8), layout.SectionFileSize(text))
}

func TestUnit_AlignTo(t *testing.T) {
	u := refasm.NewUnit()
	text := u.GetSection(".text", wlav.SectionText)
	u.SwitchSection(text, "")
	u.AppendZeros(3)
	u.AlignTo(4)

	layout := refasm.NewLayout(u)
	assert.Equal(t, uint32(4), layout.SectionFileSize(text))
}

func TestUnit_WriteSectionDataConcatenatesFragments(t *testing.T) {
	u := refasm.NewUnit()
	text := u.GetSection(".text", wlav.SectionText)
	u.SwitchSection(text, "")
	u.CurrentFragment().Contents = []byte{1, 2, 3}
	u.StartNewFragment()
	u.CurrentFragment().Contents = []byte{4, 5}

	layout := refasm.NewLayout(u)
	var buf bytes.Buffer
	require.NoError(t, u.WriteSectionData(&buf, text, layout))
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, buf.Bytes())
	assert.Equal(t, uint32(5), layout.SectionFileSize(text))
}

func TestUnit_SourceManagerIdentifier(t *testing.T) {
	u := refasm.NewUnit()
	u.AddSourceBuffer(7, "main.s")

	name, ok := u.Identifier(7)
	require.True(t, ok)
	assert.Equal(t, "main.s", name)

	_, ok = u.Identifier(99)
	assert.False(t, ok)
}

func TestTargetObjectWriter_RelocTypeAndShift(t *testing.T) {
	tw := refasm.NewTargetObjectWriter()

	kind, err := tw.RelocType(wlav.Fixup{Info: refasm.FixupDirect16})
	require.NoError(t, err)
	assert.Equal(t, wlav.Direct16, kind)
	assert.Equal(t, uint32(0), tw.FixupShift(wlav.Fixup{Info: refasm.FixupDirect16}))

	kind, err = tw.RelocType(wlav.Fixup{Info: refasm.FixupDirect16HighByte})
	require.NoError(t, err)
	assert.Equal(t, wlav.Direct16, kind)
	assert.Equal(t, uint32(8), tw.FixupShift(wlav.Fixup{Info: refasm.FixupDirect16HighByte}))

	kind, err = tw.RelocType(wlav.Fixup{Info: refasm.FixupRelative8})
	require.NoError(t, err)
	assert.Equal(t, wlav.Relative8, kind)
}

func TestSymbolOffset_PrefersExplicitResolver(t *testing.T) {
	u := refasm.NewUnit()
	text := u.GetSection(".text", wlav.SectionText)
	u.SwitchSection(text, "")
	u.AppendZeros(10)

	sym := &wlav.Symbol{Name: "explicit"}
	sym.Offset = func() (uint32, bool) { return 0x99, true }
	u.RegisterSymbol(sym)

	layout := refasm.NewLayout(u)
	offset, ok := layout.SymbolOffset(sym)
	require.True(t, ok)
	assert.Equal(t, uint32(0x99), offset)
}

func TestSymbolOffset_UnplacedSymbolIsNotOK(t *testing.T) {
	u := refasm.NewUnit()
	layout := refasm.NewLayout(u)

	sym := &wlav.Symbol{Name: "nowhere"}
	_, ok := layout.SymbolOffset(sym)
	assert.False(t, ok)
}
