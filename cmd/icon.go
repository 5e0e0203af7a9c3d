package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/foundry/internal/ui"
)

var iconCmd = &cobra.Command{
	Use:   "icon",
	Short: "Prepare icon textures",
}

var iconNormalizeCmd = &cobra.Command{
	Use:   "normalize <texture>...",
	Short: "Reimport textures as sprites capped at icon.max_size",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIconNormalize,
}

func init() {
	iconCmd.AddCommand(iconNormalizeCmd)
	rootCmd.AddCommand(iconCmd)
}

func runIconNormalize(cmd *cobra.Command, args []string) error {
	printer := ui.New()
	s, err := openSession(cmd, sessionNeeds{})
	if err != nil {
		return err
	}
	defer s.close()

	pipe := s.pipeline()
	for _, p := range args {
		h, err := pipe.NormalizeForCatalog(cmd.Context(), p)
		if err != nil {
			printer.Error("%s: %v", p, err)
			return err
		}
		printer.Success("sprite %s", h)
	}
	return nil
}
