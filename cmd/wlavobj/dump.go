package main

import (
	"bytes"
	"fmt"

	"github.com/Peppar/llvm-project-C65/mc/refasm"
	"github.com/Peppar/llvm-project-C65/wlav"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <unit.yaml>",
	Short: "Assemble a unit in memory and print its WLAV structure",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDump(args[0])
	},
}

func runDump(unitPath string) error {
	spec, err := loadUnitSpec(unitPath)
	if err != nil {
		return err
	}

	built, err := buildUnit(spec)
	if err != nil {
		return fmt.Errorf("building unit: %w", err)
	}

	writer := wlav.NewObjectWriter(refasm.NewTargetObjectWriter(), built.unit)
	writer.ExecutePostLayoutBinding(built.unit, built.layout)
	for _, pf := range built.fixups {
		if _, err := writer.RecordRelocation(pf.frag, pf.fixup, pf.target); err != nil {
			return fmt.Errorf("recording relocation: %w", err)
		}
	}

	var buf bytes.Buffer
	n, err := writer.WriteObject(&buf)
	if err != nil {
		return fmt.Errorf("writing object: %w", err)
	}

	bold := color.New(color.Bold)
	bold.Println("sections:")
	for _, s := range built.unit.Sections() {
		fmt.Printf("  %-12s kind=%-5s size=%d bytes\n", s.Name, s.Kind, built.layout.SectionFileSize(s))
	}

	bold.Println("symbols:")
	for _, sym := range built.unit.Symbols() {
		kind := "private"
		if sym.Exported() {
			kind = "exported"
		}
		offset, ok := built.layout.SymbolOffset(sym)
		if !ok {
			fmt.Printf("  %-20s %s (no resolved offset)\n", sym.Name, kind)
			continue
		}
		fmt.Printf("  %-20s %s offset=0x%04x\n", sym.Name, kind, offset)
	}

	fmt.Printf("%d bytes total\n", n)
	return nil
}
