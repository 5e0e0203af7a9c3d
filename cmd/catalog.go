package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/foundry/internal/ui"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and edit the purchasable-item catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries in order",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

var catalogRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove an entry by name and save the catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogRemove,
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogRemoveCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogList(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd, sessionNeeds{catalog: true})
	if err != nil {
		return err
	}
	defer s.close()

	fmt.Fprintf(os.Stdout, "%-4s %-20s %8s  %s\n", "ID", "NAME", "PRICE", "PREFAB")
	for _, e := range s.catalog.Entries() {
		fmt.Fprintf(os.Stdout, "%-4d %-20s %8d  %s\n", e.ID, e.Name, e.Price, e.Prefab)
		fmt.Fprintf(os.Stdout, "%-4s %-20s %8s  %s\n", "", "", "", e.Icon)
	}
	return nil
}

func runCatalogRemove(cmd *cobra.Command, args []string) error {
	printer := ui.New()
	s, err := openSession(cmd, sessionNeeds{catalog: true})
	if err != nil {
		return err
	}
	defer s.close()

	if !s.catalog.Remove(args[0]) {
		printer.Warn("no catalog entry named %q", args[0])
		return nil
	}
	if err := s.catalog.Save(cmd.Context()); err != nil {
		printer.Error("%v", err)
		return err
	}
	printer.Success("removed %q", args[0])
	return nil
}
