package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/foundry/internal/config"
)

// defaultConfigFile is used when no config file is found or given.
const defaultConfigFile = ".foundry.yaml"

var rootCmd = &cobra.Command{
	Use:   "foundry",
	Short: "Turn raw models into configured, catalog-registered game entities",
	Long: "Foundry creates materials and configured prefabs from raw model assets " +
		"and registers them as priced catalog entries read from a CSV sheet.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .foundry.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("log-format", "", "log encoding: console or json")
	rootCmd.PersistentFlags().String("project", "", "project root (overrides project_root)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("project_root", rootCmd.PersistentFlags().Lookup("project"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".foundry")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// settingsPath returns the config file foundry reads and writes.
func settingsPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		return cfgFile
	}
	return defaultConfigFile
}
