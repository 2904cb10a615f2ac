package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Peppar/llvm-project-C65/mc/refasm"
	"github.com/Peppar/llvm-project-C65/target"
	"github.com/Peppar/llvm-project-C65/wlav"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var assembleOutput string

var assembleCmd = &cobra.Command{
	Use:   "assemble <unit.yaml>",
	Short: "Assemble a YAML-described unit into a WLAV object file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAssemble(args[0], assembleOutput)
	},
}

func init() {
	assembleCmd.Flags().StringVarP(&assembleOutput, "output", "o", "a.o", "output object file path")
}

func runAssemble(unitPath, outputPath string) error {
	spec, err := loadUnitSpec(unitPath)
	if err != nil {
		return err
	}

	info := target.NewInfo(true, true)
	if spec.CPU != "" && !info.SetCPU(spec.CPU) {
		color.New(color.FgYellow).Fprintf(os.Stderr, "warning: unknown CPU %q, keeping 65816 defaults\n", spec.CPU)
	}
	slog.Info("assembling unit", "cpu", info.CPU(), "sections", len(spec.Sections))

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

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	n, err := writer.WriteObject(out)
	if err != nil {
		return fmt.Errorf("writing object: %w", err)
	}

	color.New(color.FgGreen).Fprintf(os.Stderr, "wrote %d bytes to %s\n", n, outputPath)
	slog.Info("assembled object", "bytes", n, "output", outputPath)
	return nil
}
