package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/spiceflat/internal/ctxlog"
	"github.com/OpenTraceLab/spiceflat/pkg/config"
)

var (
	// Global flags
	verbose    bool
	logLevel   string
	logFormat  string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "spiceflat",
	Short: "Hierarchical SPICE netlist flattener and symmetry resolver",
	Long: `spiceflat parses SPICE subckt netlists, flattens the hierarchy below the
top-level subckt into a device graph of nodes, nets and typed pins, and maps
symmetry declarations onto node ids.

Symmetry is read from <netlist>.txt next to the netlist when it exists, and
from the "sg" instance parameter otherwise.

Examples:
  spiceflat flatten COMP.sp                        # Summary of the flattened graph
  spiceflat flatten --format json -o COMP.json COMP.sp
  spiceflat dump COMP.sp LATCH                     # Flat rendering below LATCH
  spiceflat hier COMP.sp                           # Instance tree
  spiceflat symmetry --policy all TOP.sp           # Resolved symmetry groups`,
	Version:       "0.3.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if verbose && !cmd.Flags().Changed("log-level") {
			level = "debug"
		}
		logger := newLogger(level, logFormat, cmd.ErrOrStderr())
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "HCL file with device tables (defaults are built in)")
}

// loadConfig returns the configuration selected by --config.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default()
	}
	return config.Load(configPath)
}
