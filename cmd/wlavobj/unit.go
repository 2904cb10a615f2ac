package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/Peppar/llvm-project-C65/mc/refasm"
	"github.com/Peppar/llvm-project-C65/wlav"
	"gopkg.in/yaml.v3"
)

// symbolSpec describes one symbol defined within a section.
type symbolSpec struct {
	Name      string  `yaml:"name"`
	Temporary bool    `yaml:"temporary"`
	External  bool    `yaml:"external"`
	Offset    *uint32 `yaml:"offset"`
}

// fixupSpec describes one unresolved reference recorded against a
// section's byte content.
type fixupSpec struct {
	Offset   uint32 `yaml:"offset"`
	Kind     string `yaml:"kind"`
	SymA     string `yaml:"sym_a"`
	SymB     string `yaml:"sym_b"`
	Constant int64  `yaml:"constant"`
}

// sectionSpec describes one section's kind, raw byte content (as a
// whitespace-separated hex string), symbols, and fixups.
type sectionSpec struct {
	Name    string       `yaml:"name"`
	Kind    string       `yaml:"kind"`
	Data    string       `yaml:"data"`
	Symbols []symbolSpec `yaml:"symbols"`
	Fixups  []fixupSpec  `yaml:"fixups"`
}

// unitSpec is the top-level YAML shape cmd wlavobj reads: a target CPU,
// the source file names to record, and the sections making up the unit.
type unitSpec struct {
	CPU      string        `yaml:"cpu"`
	Files    []string      `yaml:"files"`
	Sections []sectionSpec `yaml:"sections"`
}

func loadUnitSpec(path string) (*unitSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading unit file: %w", err)
	}
	var spec unitSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing unit file: %w", err)
	}
	return &spec, nil
}

func parseSectionKind(s string) (wlav.SectionKind, error) {
	switch s {
	case "text":
		return wlav.SectionText, nil
	case "data":
		return wlav.SectionData, nil
	case "bss":
		return wlav.SectionBSS, nil
	default:
		return 0, fmt.Errorf("unknown section kind %q", s)
	}
}

func parseFixupKind(s string) (refasm.FixupKind, error) {
	switch s {
	case "direct8":
		return refasm.FixupDirect8, nil
	case "direct16":
		return refasm.FixupDirect16, nil
	case "direct24":
		return refasm.FixupDirect24, nil
	case "relative8":
		return refasm.FixupRelative8, nil
	case "relative16":
		return refasm.FixupRelative16, nil
	case "direct16lo":
		return refasm.FixupDirect16LowByte, nil
	case "direct16hi":
		return refasm.FixupDirect16HighByte, nil
	default:
		return 0, fmt.Errorf("unknown fixup kind %q", s)
	}
}

func parseHexBytes(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}

// builtUnit bundles everything building a unitSpec produces: the
// in-memory assembler, its derived layout, and the pending fixups to
// record against the object writer once post-layout binding has run.
type builtUnit struct {
	unit    *refasm.Unit
	layout  *refasm.Layout
	fixups  []pendingFixup
	symbols map[string]*wlav.Symbol
}

type pendingFixup struct {
	frag   *wlav.Fragment
	fixup  wlav.Fixup
	target wlav.RelocTarget
}

// buildUnit turns a parsed unitSpec into a ready-to-serialize in-memory
// assembly unit. Symbol offsets are taken directly from the YAML
// description rather than derived from label placement: this CLI's input
// format describes a fully laid-out unit, not source text a real
// assembler would lay out.
func buildUnit(spec *unitSpec) (*builtUnit, error) {
	u := refasm.NewUnit()
	for _, f := range spec.Files {
		u.AddFileName(f)
	}

	symbols := make(map[string]*wlav.Symbol)
	var fixups []pendingFixup

	for _, secSpec := range spec.Sections {
		kind, err := parseSectionKind(secSpec.Kind)
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", secSpec.Name, err)
		}
		section := u.GetSection(secSpec.Name, kind)
		u.SwitchSection(section, "")
		frag := u.CurrentFragment()

		data, err := parseHexBytes(secSpec.Data)
		if err != nil {
			return nil, fmt.Errorf("section %q: decoding data: %w", secSpec.Name, err)
		}
		frag.Contents = append(frag.Contents, data...)

		for _, symSpec := range secSpec.Symbols {
			sym := &wlav.Symbol{
				Name:      symSpec.Name,
				Temporary: symSpec.Temporary,
				Defined:   true,
				External:  symSpec.External,
				InSection: true,
				Section:   section,
			}
			offset := uint32(0)
			if symSpec.Offset != nil {
				offset = *symSpec.Offset
			}
			sym.Offset = func() (uint32, bool) { return offset, true }
			u.RegisterSymbol(sym)
			symbols[symSpec.Name] = sym
		}

		for _, fixSpec := range secSpec.Fixups {
			kind, err := parseFixupKind(fixSpec.Kind)
			if err != nil {
				return nil, fmt.Errorf("section %q: %w", secSpec.Name, err)
			}
			symA, ok := symbols[fixSpec.SymA]
			if !ok {
				return nil, fmt.Errorf("section %q: fixup references unknown symbol %q", secSpec.Name, fixSpec.SymA)
			}
			target := wlav.RelocTarget{SymA: symA, Constant: fixSpec.Constant}
			if fixSpec.SymB != "" {
				symB, ok := symbols[fixSpec.SymB]
				if !ok {
					return nil, fmt.Errorf("section %q: fixup references unknown symbol %q", secSpec.Name, fixSpec.SymB)
				}
				target.SymB = symB
			}
			fixups = append(fixups, pendingFixup{
				frag:   frag,
				fixup:  wlav.Fixup{Offset: fixSpec.Offset, Info: kind},
				target: target,
			})
		}
	}

	layout := refasm.NewLayout(u)
	return &builtUnit{unit: u, layout: layout, fixups: fixups, symbols: symbols}, nil
}
