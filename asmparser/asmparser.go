// Package asmparser implements the WLAV assembly directive extension:
// registration of the three section-switch directives (.text, .data,
// .bss) against an external parser framework, plus the handful of
// MCAsmInfo-style properties a textual asm printer would consult, grounded
// on MCAsmInfoWLAV.cpp and WLAVAsmParser.cpp.
package asmparser

import "github.com/Peppar/llvm-project-C65/wlav"

// LCommAlignment describes how the (unimplemented-here) .lcomm directive's
// alignment argument is interpreted: as a power of two, matching
// MCAsmInfoWLAV's LCOMMDirectiveAlignmentType = LCOMM::Log2Alignment.
type LCommAlignment int

const (
	Log2Alignment LCommAlignment = iota
	ByteAlignment
)

// Info mirrors the handful of MCAsmInfoWLAV properties this module cares
// about: no .type/.size, COMM alignment not counted in bytes (log2, the
// same convention as LCOMM), quoted names unsupported, and .dq as the
// 64-bit data directive. The asm-text endianness is not among its fields.
type Info struct {
	HasDotTypeDotSizeDirective bool
	CommAlignmentInBytes       bool
	LCommAlignment             LCommAlignment
	UseDotAlignForAlignment    bool
	Data64BitsDirective        string
	SupportsQuotedNames        bool
	SupportsAsciiDirective     bool
	SupportsAscizDirective     bool
}

// DefaultInfo is WLAV's MCAsmInfo configuration.
func DefaultInfo() Info {
	return Info{
		HasDotTypeDotSizeDirective: false,
		CommAlignmentInBytes:       false,
		LCommAlignment:             Log2Alignment,
		UseDotAlignForAlignment:    true,
		Data64BitsDirective:        "\t.dq\t",
		SupportsQuotedNames:        false,
		SupportsAsciiDirective:     false,
		SupportsAscizDirective:     false,
	}
}

// SectionSwitcher is the directive handler's view of the streamer: switch
// the current section to a WLAV section of the requested kind and
// subsection. It stands in for MCStreamer::SwitchSection.
type SectionSwitcher interface {
	SwitchSection(section *wlav.Section, subsection string)
}

// SectionFactory creates or looks up a named WLAV section of a given
// kind, the way MCContext::getWLAVSection does.
type SectionFactory interface {
	GetSection(name string, kind wlav.SectionKind) *wlav.Section
}

// ExpressionParser parses an optional subsection expression following a
// section directive. It is the external parser framework's expression
// grammar; asmparser only needs "is there one, and if so what's its
// textual subsection name".
type ExpressionParser interface {
	// ParseOptionalSubsection parses a subsection expression if the next
	// token isn't end-of-statement. ok is false if no expression was
	// present; err is non-nil only on a genuine parse failure.
	ParseOptionalSubsection() (name string, ok bool, err error)
}

// Parser is the WLAV assembly directive extension. BracketExpressions
// mirrors WLAVAsmParser's constructor setting
// BracketExpressionsSupported = true.
type Parser struct {
	BracketExpressions bool
	sections           SectionFactory
	streamer           SectionSwitcher
	exprs              ExpressionParser
}

// NewParser builds a directive parser extension against the given
// section factory, streamer, and subsection-expression parser.
func NewParser(sections SectionFactory, streamer SectionSwitcher, exprs ExpressionParser) *Parser {
	return &Parser{BracketExpressions: true, sections: sections, streamer: streamer, exprs: exprs}
}

// Directives returns the directive names this extension registers,
// matching Initialize's three addDirectiveHandler calls.
func (p *Parser) Directives() []string {
	return []string{".data", ".text", ".bss"}
}

// HandleDirective dispatches one of the three registered directives. It
// returns an error rather than panicking: a malformed subsection
// expression is user input, not a compiler bug.
func (p *Parser) HandleDirective(name string) error {
	var kind wlav.SectionKind
	switch name {
	case ".data":
		kind = wlav.SectionData
	case ".text":
		kind = wlav.SectionText
	case ".bss":
		kind = wlav.SectionBSS
	default:
		return &unknownDirectiveError{name: name}
	}
	return p.parseSectionSwitch(name, kind)
}

func (p *Parser) parseSectionSwitch(name string, kind wlav.SectionKind) error {
	subsection, ok, err := p.exprs.ParseOptionalSubsection()
	if err != nil {
		return err
	}
	if !ok {
		subsection = ""
	}
	section := p.sections.GetSection(name, kind)
	p.streamer.SwitchSection(section, subsection)
	return nil
}

type unknownDirectiveError struct{ name string }

func (e *unknownDirectiveError) Error() string {
	return "asmparser: unknown directive " + e.name
}
