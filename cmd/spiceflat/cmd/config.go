package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/spiceflat/pkg/device"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective device tables",
	Long: `Print the device families, power net names and symmetry tag in effect,
after applying --config on top of the built-in defaults.

Examples:
  spiceflat config
  spiceflat --config pdk.hcl config`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cls, err := cfg.Classifier()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	source := "built-in"
	if configPath != "" {
		source = configPath
	}
	fmt.Fprintf(out, "Configuration: %s\n", source)
	fmt.Fprintf(out, "Symmetry tag:  %s\n", cfg.SymmetryTag)
	fmt.Fprintf(out, "Supply nets:   %s\n", strings.Join(cfg.Power.Supply, " "))
	fmt.Fprintf(out, "Ground nets:   %s\n", strings.Join(cfg.Power.Ground, " "))

	fmt.Fprintf(out, "\nFamilies:\n")
	families := []device.Family{
		device.PMOS, device.NMOS, device.NPN, device.PNP,
		device.Resistor, device.Capacitor, device.Diode,
	}
	for _, f := range families {
		cells := cls.Cells(f)
		if len(cells) == 0 {
			continue
		}
		fmt.Fprintf(out, "  %-6s (%d pins, %d required)  %s\n",
			f, f.Arity(), f.MinPins(), strings.Join(cells, " "))
	}
	return nil
}
