package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/foundry/internal/config"
	"github.com/papapumpkin/foundry/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change persistent settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every setting with its effective value",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Validate and save one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Re-read the config file and report whether it is valid",
	Args:  cobra.NoArgs,
	RunE:  runConfigReload,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configReloadCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	s, err := config.OpenSettings(settingsPath())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "# %s\n", s.Path())
	for _, k := range config.Keys() {
		fmt.Fprintf(os.Stdout, "%s = %v\n", k, s.Get(k))
	}
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	printer := ui.New()
	s, err := config.OpenSettings(settingsPath())
	if err != nil {
		return err
	}
	if _, err := s.Set(args[0], args[1]); err != nil {
		printer.Error("%v", err)
		return err
	}
	printer.Success("%s = %v (saved to %s)", args[0], s.Get(args[0]), s.Path())
	return nil
}

func runConfigReload(_ *cobra.Command, _ []string) error {
	printer := ui.New()
	s, err := config.OpenSettings(settingsPath())
	if err != nil {
		printer.Error("%v", err)
		return err
	}
	if _, err := s.Reload(); err != nil {
		printer.Error("%v", err)
		return err
	}
	printer.Success("%s is valid", s.Path())
	return nil
}
