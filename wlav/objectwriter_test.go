package wlav_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/Peppar/llvm-project-C65/mc/refasm"
	"github.com/Peppar/llvm-project-C65/wlav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// An empty unit (zero sections, zero symbols, no file names) still
// produces a well-formed header plus every zero-count table.
func TestWriteObject_EmptyUnit(t *testing.T) {
	u := refasm.NewUnit()
	layout := refasm.NewLayout(u)

	w := wlav.NewObjectWriter(refasm.NewTargetObjectWriter(), u)
	w.ExecutePostLayoutBinding(u, layout)

	var buf bytes.Buffer
	n, err := w.WriteObject(&buf)
	require.NoError(t, err)

	out := buf.Bytes()
	assert.EqualValues(t, len(out), n)
	assert.Equal(t, []byte{'W', 'L', 'A', '7', 0x02}, out[:5])

	rest := out[5:]
	assert.Equal(t, uint32(1), beU32(rest[0:4])) // one lazily created unknown file
	name, rest := cstrAt(rest[4:])
	assert.Equal(t, "unknown file", name)
	assert.Equal(t, uint8(0), rest[0]) // id 0
	assert.Equal(t, uint32(0), beU32(rest[1:5]))
	rest = rest[5:]

	assert.Equal(t, uint32(0), beU32(rest[0:4])) // exported-def count
	rest = rest[4:]
	assert.Equal(t, uint32(0), beU32(rest[0:4])) // symbol count
	rest = rest[4:]
	assert.Equal(t, uint32(0), beU32(rest[0:4])) // simple-reloc count
	rest = rest[4:]
	assert.Equal(t, uint32(0), beU32(rest[0:4])) // complex-reloc count
	rest = rest[4:]
	assert.Equal(t, uint32(0), beU32(rest[0:4])) // label-sizeof count
	rest = rest[4:]
	assert.Equal(t, uint32(0), beU32(rest[0:4])) // section-append count
	rest = rest[4:]
	assert.Empty(t, rest)
}

// A single label in .text at offset 0x40 produces exactly one exported
// symbol record: the section's own begin symbol must never leak into the
// written symbol table.
func TestWriteObject_SingleLabel(t *testing.T) {
	u := refasm.NewUnit()
	section := u.GetSection(".text", wlav.SectionText)
	u.SwitchSection(section, "")
	frag := u.CurrentFragment()
	frag.Contents = make([]byte, 0x44) // pad so the label's offset is unambiguous

	main := &wlav.Symbol{Name: "main", Defined: true, External: true, InSection: true, Section: section}
	main.Offset = func() (uint32, bool) { return 0x40, true }
	u.RegisterSymbol(main)

	layout := refasm.NewLayout(u)
	w := wlav.NewObjectWriter(refasm.NewTargetObjectWriter(), u)
	w.ExecutePostLayoutBinding(u, layout)

	var buf bytes.Buffer
	_, err := w.WriteObject(&buf)
	require.NoError(t, err)

	assert.Len(t, u.Symbols(), 1, "the section's begin symbol must not be registered as an assembler symbol")

	want := []byte("main\x00")
	want = append(want, 0x00)
	want = append(want, 0x00, 0x00, 0x00, 0x01) // section id 1
	want = append(want, 0x01)                   // file id
	want = append(want, 0x00, 0x00, 0x00, 0x00) // line
	want = append(want, 0x00, 0x00, 0x00, 0x40) // offset
	assert.Contains(t, buf.Bytes(), want)
	assert.NotContains(t, string(buf.Bytes()), "text_begin", "the section's own anchor symbol must never be mangled into the written object")

	wantSectionTail := []byte("TEXT")
	wantSectionTail = append(wantSectionTail, 0x00, 0x00) // status free, no namespace
	wantSectionTail = append(wantSectionTail, 0x00, 0x00, 0x00, 0x01) // section id
	wantSectionTail = append(wantSectionTail, 0x01) // file id
	wantSectionTail = append(wantSectionTail, beBytes(uint32(len(frag.Contents)))...)
	wantSectionTail = append(wantSectionTail, 0x00, 0x00, 0x00, 0x01) // alignment
	wantSectionTail = append(wantSectionTail, 0x00, 0x00, 0x00, 0x00) // priority
	assert.Contains(t, buf.Bytes(), wantSectionTail)
}

// A direct-16 fixup with no shift, no second symbol, and no constant
// addend writes a simple (single-symbol) relocation record.
func TestWriteObject_SimpleDirect16Relocation(t *testing.T) {
	u := refasm.NewUnit()
	section := u.GetSection(".text", wlav.SectionText)
	u.SwitchSection(section, "")
	frag := u.CurrentFragment()
	frag.Contents = make([]byte, 0x20)

	printf := &wlav.Symbol{Name: "printf", External: true}
	u.RegisterSymbol(printf)

	layout := refasm.NewLayout(u)
	w := wlav.NewObjectWriter(refasm.NewTargetObjectWriter(), u)
	w.ExecutePostLayoutBinding(u, layout)

	fixup := wlav.Fixup{Offset: 0x10, Info: refasm.FixupDirect16}
	target := wlav.RelocTarget{SymA: printf}
	_, err := w.RecordRelocation(frag, fixup, target)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = w.WriteObject(&buf)
	require.NoError(t, err)

	want := []byte("printf\x00")
	want = append(want, 0x00)                   // type byte 0x00 (direct-16 simple)
	want = append(want, 0x00)                   // not a special case
	want = append(want, 0x00, 0x00, 0x00, 0x01) // section id
	want = append(want, 0x00)                   // file id (no source manager location: the lazily-created unknown file, id 0)
	want = append(want, 0x00, 0x00, 0x00, 0x00) // line
	want = append(want, 0x00, 0x00, 0x00, 0x10) // offset
	assert.Contains(t, buf.Bytes(), want)
}

// A fixup with a second symbol and a constant addend (A - B + 3, built
// from a fixup kind whose implicit shift is 8, a high-byte-of-address
// reference) writes a complex (stack-machine) relocation record.
func TestWriteObject_ComplexRelocation(t *testing.T) {
	u := refasm.NewUnit()
	section := u.GetSection(".text", wlav.SectionText)
	u.SwitchSection(section, "")
	frag := u.CurrentFragment()
	frag.Contents = make([]byte, 0x20)

	a := &wlav.Symbol{Name: "A", External: true}
	b := &wlav.Symbol{Name: "B", External: true}
	u.RegisterSymbol(a)
	u.RegisterSymbol(b)

	layout := refasm.NewLayout(u)
	w := wlav.NewObjectWriter(refasm.NewTargetObjectWriter(), u)
	w.ExecutePostLayoutBinding(u, layout)

	fixup := wlav.Fixup{Offset: 0x04, Info: refasm.FixupDirect16HighByte}
	target := wlav.RelocTarget{SymA: a, SymB: b, Constant: 3}
	_, err := w.RecordRelocation(frag, fixup, target)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = w.WriteObject(&buf)
	require.NoError(t, err)
	out := buf.Bytes()

	// u32 id=1, type byte 0x01 (direct-16 complex), 0x00, section id, file
	// id (0: no source manager location, the lazily-created unknown file),
	// stack_len=7, 0x00.
	header := []byte{0x00, 0x00, 0x00, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x07, 0x00}
	idx := bytes.Index(out, header)
	require.NotEqual(t, -1, idx, "expected complex relocation header not found")

	rest := out[idx+len(header):]
	assert.Equal(t, uint32(0x04), beU32(rest[0:4])) // offset
	rest = rest[4:]
	assert.Equal(t, uint32(0), beU32(rest[0:4])) // line
	rest = rest[4:]

	// Stack: Symbol(A,0), Symbol(B,0), Op(SUB), Value(3), Op(ADD), Value(8), Op(SHR).
	name, rest := symbolEntry(t, rest)
	assert.Equal(t, "A", name)
	name, rest = symbolEntry(t, rest)
	assert.Equal(t, "B", name)
	rest = operatorEntry(t, rest, wlav.CalcSub)
	rest = valueEntry(t, rest, 3.0)
	rest = operatorEntry(t, rest, wlav.CalcAdd)
	rest = valueEntry(t, rest, 8.0)
	_ = operatorEntry(t, rest, wlav.CalcShr)
}

// A temporary symbol mangles to a file-qualified name when one file name
// is known.
func TestMangle_PrivateSymbolWithFileName(t *testing.T) {
	symbols := wlav.NewSymbolMap()
	l0 := &wlav.Symbol{Name: "L0", Temporary: true}
	symbols.Add(l0)

	m := wlav.NewMangler(symbols, []string{"foo_bar.s"})
	assert.Equal(t, "foo~bar.s~L0", m.Mangle(l0))
}

// Mangling a non-private (exported) symbol is the identity on its name.
func TestMangle_ExportedSymbolIsIdentity(t *testing.T) {
	symbols := wlav.NewSymbolMap()
	main := &wlav.Symbol{Name: "main", Defined: true, External: true, InSection: true}
	symbols.Add(main)

	m := wlav.NewMangler(symbols, []string{"foo_bar.s"})
	assert.Equal(t, "main", m.Mangle(main))
}

func TestWriteObject_HeaderMagicBytes(t *testing.T) {
	u := refasm.NewUnit()
	layout := refasm.NewLayout(u)
	w := wlav.NewObjectWriter(refasm.NewTargetObjectWriter(), u)
	w.ExecutePostLayoutBinding(u, layout)

	var buf bytes.Buffer
	_, err := w.WriteObject(&buf)
	require.NoError(t, err)
	assert.Equal(t, byte(0x57), buf.Bytes()[0])
	assert.Equal(t, byte(0x4C), buf.Bytes()[1])
	assert.Equal(t, byte(0x41), buf.Bytes()[2])
	assert.Equal(t, byte(0x37), buf.Bytes()[3])
}

// WriteObject's returned count equals the number of bytes actually written.
func TestWriteObject_ReturnsBytesWritten(t *testing.T) {
	u := refasm.NewUnit()
	section := u.GetSection(".data", wlav.SectionData)
	u.SwitchSection(section, "")
	u.CurrentFragment().Contents = []byte{1, 2, 3, 4}

	layout := refasm.NewLayout(u)
	w := wlav.NewObjectWriter(refasm.NewTargetObjectWriter(), u)
	w.ExecutePostLayoutBinding(u, layout)

	var buf bytes.Buffer
	n, err := w.WriteObject(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, buf.Len(), n)
}

// Emitting the same assembled unit twice yields byte-identical output.
func TestWriteObject_Idempotent(t *testing.T) {
	build := func() (*refasm.Unit, *refasm.Layout) {
		u := refasm.NewUnit()
		section := u.GetSection(".text", wlav.SectionText)
		u.SwitchSection(section, "")
		u.CurrentFragment().Contents = []byte{0xEA, 0xEA, 0xEA}
		a := &wlav.Symbol{Name: "a", Defined: true, External: true, InSection: true, Section: section}
		a.Offset = func() (uint32, bool) { return 0, true }
		b := &wlav.Symbol{Name: "b", Defined: true, External: true, InSection: true, Section: section}
		b.Offset = func() (uint32, bool) { return 1, true }
		u.RegisterSymbol(b)
		u.RegisterSymbol(a)
		return u, refasm.NewLayout(u)
	}

	var outputs [][]byte
	for i := 0; i < 2; i++ {
		u, layout := build()
		w := wlav.NewObjectWriter(refasm.NewTargetObjectWriter(), u)
		w.ExecutePostLayoutBinding(u, layout)
		var buf bytes.Buffer
		_, err := w.WriteObject(&buf)
		require.NoError(t, err)
		outputs = append(outputs, buf.Bytes())
	}
	assert.Equal(t, outputs[0], outputs[1])
}

func beU32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func beBytes(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func cstrAt(b []byte) (string, []byte) {
	i := bytes.IndexByte(b, 0)
	return string(b[:i]), b[i+1:]
}

func symbolEntry(t *testing.T, b []byte) (string, []byte) {
	t.Helper()
	require.Equal(t, byte(2), b[0]) // calcTypeString
	b = b[2:]                      // tag + sign
	name, rest := cstrAt(b)
	return name, rest
}

func operatorEntry(t *testing.T, b []byte, op wlav.CalcOp) []byte {
	t.Helper()
	require.Equal(t, byte(1), b[0]) // calcTypeOperator
	got := math.Float64frombits(beU64(b[2:10]))
	assert.Equal(t, float64(op), got)
	return b[10:]
}

func valueEntry(t *testing.T, b []byte, want float64) []byte {
	t.Helper()
	require.Equal(t, byte(0), b[0]) // calcTypeValue
	got := math.Float64frombits(beU64(b[2:10]))
	assert.Equal(t, want, got)
	return b[10:]
}

func beU64(b []byte) uint64 {
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v
}
