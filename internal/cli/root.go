// Package cli wires the cobra command tree that drives the claim
// validation pipeline locally: claim creation, artifact intake and
// validation runs over a file-backed store under the data directory.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/claimpilot/claimpilot/internal/pipeline"
)

var (
	cfgFile string
	dataDir string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "claimpilot",
	Short: "ClaimPilot - motor insurance claim validation pipeline",
	Long: `ClaimPilot validates motor insurance claims from their evidence.

Documents (policy, claim form, driving licence, identity proofs, repair
estimate) are field-extracted through an LLM adapter, normalized, and
cross-checked for consistency; damage photographs are scored against the
declared loss. The pipeline aggregates everything into a deterministic
verdict - approved, flagged or rejected - with a full rationale.

The verdict is advisory. ClaimPilot surfaces discrepancies and evidence
gaps; the final settlement decision stays with a human assessor.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("claimpilot v%s\n", pipeline.Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.claimpilot/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "claim and artifact storage (default: $HOME/.claimpilot)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".claimpilot"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CLAIMPILOT_*
	viper.SetEnvPrefix("CLAIMPILOT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// resolveDataDir returns the storage root, creating nothing.
func resolveDataDir() (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".claimpilot"), nil
}
