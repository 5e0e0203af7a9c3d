package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/foundry/internal/recipe"
	"github.com/papapumpkin/foundry/internal/ui"
)

var materialCmd = &cobra.Command{
	Use:   "material",
	Short: "Create material assets",
}

var materialCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a material under the materials directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runMaterialCreate,
}

func init() {
	materialCreateCmd.Flags().String("shader", "", "shader asset (default: default_shader)")
	materialCreateCmd.Flags().String("color", "", "base color as #RRGGBB or #RRGGBBAA (default white)")
	materialCreateCmd.Flags().StringArray("texture", nil, "texture binding as slot=path (repeatable)")
	addConflictFlag(materialCreateCmd)

	materialCmd.AddCommand(materialCreateCmd)
	rootCmd.AddCommand(materialCmd)
}

// parseBindings splits slot=path pairs.
func parseBindings(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		slot, path, ok := strings.Cut(pair, "=")
		if !ok || slot == "" || path == "" {
			return nil, fmt.Errorf("--texture %q: want slot=path", pair)
		}
		out[slot] = path
	}
	return out, nil
}

func runMaterialCreate(cmd *cobra.Command, args []string) error {
	printer := ui.New()
	s, err := openSession(cmd, sessionNeeds{})
	if err != nil {
		return err
	}
	defer s.close()

	shader, _ := cmd.Flags().GetString("shader")
	if shader == "" {
		shader = s.cfg.DefaultShader
	}
	pipe := s.pipeline()
	spec, err := pipe.NewMaterialSpec(shader)
	if err != nil {
		return err
	}
	if c, _ := cmd.Flags().GetString("color"); c != "" {
		if spec.Color, err = recipe.ParseColor(c); err != nil {
			return err
		}
	}
	pairs, _ := cmd.Flags().GetStringArray("texture")
	textures, err := parseBindings(pairs)
	if err != nil {
		return err
	}
	if err := recipe.BindTextures(&spec, s.db, textures); err != nil {
		return err
	}

	h, err := pipe.CreateOrGetMaterial(cmd.Context(), spec, args[0])
	if err != nil {
		printer.Error("%v", err)
		return err
	}
	if h.IsZero() {
		printer.Warn("material %s exists; left unchanged", args[0])
		return nil
	}
	printer.Success("created %s", h)
	return nil
}
