package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configFileName = ".casectl"

var cfg *viper.Viper

func initConfig() error {
	cfg = viper.New()
	cfg.SetConfigName(configFileName)
	cfg.SetConfigType("yaml")

	home, err := os.UserHomeDir()
	if err == nil {
		cfg.AddConfigPath(home)
	}

	cfg.SetDefault("provider", "testiny")
	cfg.SetDefault("url", "")
	cfg.SetDefault("api_key", "")
	cfg.SetDefault("owner_user_id", 0)

	cfg.SetEnvPrefix("CASECTL")
	cfg.AutomaticEnv()

	// Config file is optional.
	cfg.ReadInConfig()

	// CLI flags take highest priority.
	if flagAPIKey != "" {
		cfg.Set("api_key", flagAPIKey)
	}
	if flagURL != "" {
		cfg.Set("url", flagURL)
	}

	return nil
}

func getConfigProvider() string {
	return cfg.GetString("provider")
}

func getConfigURL() string {
	return strings.TrimRight(cfg.GetString("url"), "/")
}

func getConfigAPIKey() string {
	return cfg.GetString("api_key")
}

func getConfigOwnerUserID() int {
	return cfg.GetInt("owner_user_id")
}

func configFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configFileName+".yaml"), nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

// config init resolves the owner user id behind the API key and writes
// ~/.casectl.yaml. The owner id is a one-time identity lookup; steady-state
// sync never calls the account endpoint.
func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Resolve the API key's owner and write ~/.casectl.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			if getConfigAPIKey() == "" {
				return fmt.Errorf("an API key is required, pass it with --api-key")
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			ownerUserID, err := client.ResolveOwner(cmd.Context())
			if err != nil {
				printRequestHints(err)
				return err
			}

			path, err := configFilePath()
			if err != nil {
				return err
			}

			body := "# casectl configuration\n" +
				"provider: " + getConfigProvider() + "\n" +
				"api_key: \"" + getConfigAPIKey() + "\"\n" +
				"owner_user_id: " + strconv.Itoa(ownerUserID) + "\n"
			if err := os.WriteFile(path, []byte(body), 0600); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			printSuccess(fmt.Sprintf("Config written to %s (owner user id: %d)", path, ownerUserID))
			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			key := getConfigAPIKey()
			masked := "(not set)"
			if key != "" {
				if len(key) > 8 {
					masked = key[:4] + "..." + key[len(key)-4:]
				} else {
					masked = "****"
				}
			}

			url := getConfigURL()
			if url == "" {
				url = "(default)"
			}

			printMessage(fmt.Sprintf("Provider:      %s", getConfigProvider()))
			printMessage(fmt.Sprintf("URL:           %s", url))
			printMessage(fmt.Sprintf("API key:       %s", masked))
			printMessage(fmt.Sprintf("Owner user id: %d", getConfigOwnerUserID()))

			if cfgFile := cfg.ConfigFileUsed(); cfgFile != "" {
				printMessage(fmt.Sprintf("Config file:   %s", cfgFile))
			} else {
				printMessage("Config file:   (none)")
			}

			return nil
		},
	}
}
