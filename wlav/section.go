package wlav

import "fmt"

// SectionKind is the subset of section kinds the C65 assembler framework
// ever switches to: .text, .data, .bss. Anything else collapses to
// "unknown" when named on the wire (see (*Section).WireName).
type SectionKind int

const (
	SectionText SectionKind = iota
	SectionData
	SectionBSS
)

func (k SectionKind) String() string {
	switch k {
	case SectionText:
		return "text"
	case SectionData:
		return "data"
	case SectionBSS:
		return "bss"
	default:
		return "unknown"
	}
}

// Section is a named, kind-tagged section, anchored by a begin symbol the
// way MCSectionWLAV anchors every section to a label marking its start.
// The begin symbol is a lookup-only back-reference: Section does not own
// it, and nothing walks from Symbol back to Section through this field.
type Section struct {
	Name  string
	Kind  SectionKind
	Begin *Symbol
}

// NewSection creates a section with a begin symbol named "<name>_begin",
// matching the convention every retrieved section-switch directive uses
// for its anchor label.
func NewSection(name string, kind SectionKind) *Section {
	s := &Section{Name: name, Kind: kind}
	s.Begin = &Symbol{Name: name + "_begin", Defined: true, InSection: true, Section: s}
	return s
}

// PrintSwitch renders the directive that would reselect this section in a
// textual assembly listing: "\t<name>[\t<subsection>]\n".
func (s *Section) PrintSwitch(subsection string) string {
	if subsection != "" {
		return fmt.Sprintf("\t%s\t%s\n", s.Name, subsection)
	}
	return fmt.Sprintf("\t%s\n", s.Name)
}

// UseCodeAlign reports whether this section aligns fragments as code
// (true only for .text).
func (s *Section) UseCodeAlign() bool {
	return s.Kind == SectionText
}

// IsVirtual reports whether the section occupies no file space. No WLAV
// section is virtual: even .bss is written out as zero bytes, since
// zero-fill sections are unsupported.
func (s *Section) IsVirtual() bool {
	return false
}

// WireName is the bare (non-NUL-terminated) name written at the head of a
// data-section record.
func (s *Section) WireName() string {
	switch s.Kind {
	case SectionText:
		return "TEXT"
	case SectionData:
		return "DATA_REL"
	default:
		return "UNKNOWN"
	}
}
