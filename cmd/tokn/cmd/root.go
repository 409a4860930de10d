package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/MichaelAyles/tokn/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	configPath string
	tolerance  float64

	// cfg is loaded before any subcommand runs
	cfg    config.Config
	logger = log.New(io.Discard, "", 0)
)

var rootCmd = &cobra.Command{
	Use:   "tokn",
	Short: "Convert KiCad schematics to and from TOKN notation",
	Long: `tokn converts KiCad schematic files (.kicad_sch) into TOKN, a compact
line-oriented notation listing components, nets and wires, and turns
TOKN documents back into schematics KiCad can open.

Examples:
  tokn encode board.kicad_sch -o board.tokn     # Schematic to TOKN
  tokn decode board.tokn -o board.kicad_sch     # TOKN to schematic
  tokn netlist board.kicad_sch --format json    # Dump derived nets
  tokn validate generated/*.tokn --roundtrip    # Check and score documents
  tokn batch designs/*.kicad_sch --out out/     # Convert many files`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/tokn/config.yaml)")
	rootCmd.PersistentFlags().Float64Var(&tolerance, "tolerance", 0, "point matching tolerance in mm (overrides config)")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	if verbose {
		logger = log.New(cmd.ErrOrStderr(), "tokn: ", log.Ltime)
	} else {
		logger = log.New(io.Discard, "", 0)
	}

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("tolerance") {
		cfg.Tolerance = tolerance
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Printf("config: tolerance %.3g mm, %d workers", cfg.Tolerance, cfg.Workers)
	return nil
}

// writeOutput writes text to path, or to the command's stdout when path is
// empty or "-".
func writeOutput(cmd *cobra.Command, path, text string) error {
	if path == "" || path == "-" {
		_, err := io.WriteString(cmd.OutOrStdout(), text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.Printf("wrote %s (%d bytes)", path, len(text))
	return nil
}
