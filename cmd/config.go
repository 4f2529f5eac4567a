package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/abhisek/orbit/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect orbit settings",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(configPath(cmd))
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings after files, environment and flags",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.LLM.APIKey != "" {
			cfg.LLM.APIKey = "********"
		}
		if err := toml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
			return fmt.Errorf("encode config: %w", err)
		}

		lcfg, ok := cfg.LLMSettings(os.Getenv)
		fmt.Println()
		if ok {
			fmt.Printf("# insights: %s (%s)\n", lcfg.Provider, lcfg.ModelName())
		} else {
			fmt.Println("# insights: no API key found")
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the defaults if none exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath(cmd)
		created, err := config.EnsureExists(path)
		if err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		if created {
			fmt.Println("Wrote", path)
		} else {
			fmt.Println(path, "already exists")
		}
		return nil
	},
}

func configPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	return config.Path()
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
