package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var (
	flagAPIKey string
	flagURL    string
	flagJSON   bool
	flagDebug  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "casectl",
		Short: "Manual-test-as-code: sync YAML test cases with a test management system",
		Long: "casectl keeps locally versioned YAML test case files in sync with a remote\n" +
			"test management system. Test cases are matched by title per target project;\n" +
			"upsert creates the missing ones and overwrites the rest.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "API key (env: CASECTL_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "API base URL (env: CASECTL_URL)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug output")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("casectl %s (commit: %s, built: %s)\n", Version, Commit, BuildDate)
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newUpsertCmd())
	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newReadCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newProjectCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
