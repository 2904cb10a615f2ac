// Command wlavobj assembles a YAML-described toy assembly unit into a
// WLAV object file, or dumps one back out as a structured listing. It
// exists to drive the wlav and refasm packages end to end outside of a
// test binary, the way cucaracha's cmd/mc subcommand drives its own LLVM
// backend tooling from the command line.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Peppar/llvm-project-C65/wlav"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var logFile string

var rootCmd = &cobra.Command{
	Use:   "wlavobj",
	Short: "Assemble and inspect WLAV object files for the C65 target",
	Long: `wlavobj drives the C65 target descriptor and WLAV object writer
from a small YAML assembly-unit description, in place of a real compiler
front end. It is a development and test tool, not a production assembler.`,
}

func main() {
	defer recoverFatal()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// recoverFatal catches a *wlav.FatalError panicking up from the object
// writer and turns it into a clean, colored stderr message instead of a
// raw stack trace. Anything else propagates: a non-FatalError panic means
// a real bug, not a condition the writer deliberately refuses to continue
// past, and crashing loudly is the right behavior for that.
func recoverFatal() {
	r := recover()
	if r == nil {
		return
	}
	if fe, ok := r.(*wlav.FatalError); ok {
		color.New(color.FgRed).Fprintln(os.Stderr, "fatal:", fe.Error())
		os.Exit(1)
	}
	panic(r)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.wlavobj.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write structured logs to this file")
	rootCmd.AddCommand(assembleCmd, dumpCmd)
}

// initConfig wires viper to read ".wlavobj.yaml" from the user's home
// directory (or --config) plus WLAVOBJ_-prefixed environment variables,
// the same precedence cucaracha's root command uses for its own config.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".wlavobj")
	}

	viper.SetEnvPrefix("WLAVOBJ")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	if logFile == "" {
		logFile = viper.GetString("log-file")
	}

	logger := newLogger(logFile)
	slog.SetDefault(logger)
}
