package asmparser_test

import (
	"testing"

	"github.com/Peppar/llvm-project-C65/asmparser"
	"github.com/Peppar/llvm-project-C65/wlav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExprParser struct {
	name string
	ok   bool
	err  error
}

func (f *fakeExprParser) ParseOptionalSubsection() (string, bool, error) {
	return f.name, f.ok, f.err
}

type fakeStreamer struct {
	lastSection    *wlav.Section
	lastSubsection string
	calls          int
}

func (f *fakeStreamer) SwitchSection(s *wlav.Section, subsection string) {
	f.lastSection = s
	f.lastSubsection = subsection
	f.calls++
}

type fakeSections struct {
	byName map[string]*wlav.Section
}

func newFakeSections() *fakeSections {
	return &fakeSections{byName: make(map[string]*wlav.Section)}
}

func (f *fakeSections) GetSection(name string, kind wlav.SectionKind) *wlav.Section {
	if s, ok := f.byName[name]; ok {
		return s
	}
	s := wlav.NewSection(name, kind)
	f.byName[name] = s
	return s
}

func TestParser_Directives(t *testing.T) {
	p := asmparser.NewParser(newFakeSections(), &fakeStreamer{}, &fakeExprParser{})
	assert.ElementsMatch(t, []string{".data", ".text", ".bss"}, p.Directives())
	assert.True(t, p.BracketExpressions)
}

func TestParser_HandleDirective_SwitchesSection(t *testing.T) {
	sections := newFakeSections()
	streamer := &fakeStreamer{}
	p := asmparser.NewParser(sections, streamer, &fakeExprParser{ok: false})

	require.NoError(t, p.HandleDirective(".text"))
	assert.Equal(t, ".text", streamer.lastSection.Name)
	assert.Equal(t, wlav.SectionText, streamer.lastSection.Kind)
	assert.Equal(t, "", streamer.lastSubsection)
}

func TestParser_HandleDirective_WithSubsection(t *testing.T) {
	sections := newFakeSections()
	streamer := &fakeStreamer{}
	p := asmparser.NewParser(sections, streamer, &fakeExprParser{name: "cold", ok: true})

	require.NoError(t, p.HandleDirective(".data"))
	assert.Equal(t, "cold", streamer.lastSubsection)
	assert.Equal(t, wlav.SectionData, streamer.lastSection.Kind)
}

func TestParser_HandleDirective_ReusesExistingSection(t *testing.T) {
	sections := newFakeSections()
	streamer := &fakeStreamer{}
	p := asmparser.NewParser(sections, streamer, &fakeExprParser{})

	require.NoError(t, p.HandleDirective(".bss"))
	first := streamer.lastSection
	require.NoError(t, p.HandleDirective(".bss"))
	assert.Same(t, first, streamer.lastSection)
}

func TestParser_HandleDirective_Unknown(t *testing.T) {
	p := asmparser.NewParser(newFakeSections(), &fakeStreamer{}, &fakeExprParser{})
	assert.Error(t, p.HandleDirective(".type"))
}

func TestDefaultInfo(t *testing.T) {
	info := asmparser.DefaultInfo()
	assert.False(t, info.HasDotTypeDotSizeDirective)
	assert.Equal(t, asmparser.Log2Alignment, info.LCommAlignment)
	assert.Equal(t, "\t.dq\t", info.Data64BitsDirective)
	assert.False(t, info.SupportsQuotedNames)
	assert.False(t, info.SupportsAsciiDirective)
	assert.False(t, info.SupportsAscizDirective)
}
