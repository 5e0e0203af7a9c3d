package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/foundry/internal/assetdb"
	"github.com/papapumpkin/foundry/internal/ui"
)

var prefabCmd = &cobra.Command{
	Use:   "prefab",
	Short: "Create and configure prefab assets",
}

var prefabFromModelCmd = &cobra.Command{
	Use:   "from-model <model>",
	Short: "Create a prefab named after a raw model",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrefabFromModel,
}

var prefabConfigureCmd = &cobra.Command{
	Use:   "configure <prefab>",
	Short: "Set the material, animator and collider of an existing prefab in place",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrefabConfigure,
}

func init() {
	addConflictFlag(prefabFromModelCmd)

	prefabConfigureCmd.Flags().String("material", "", "material applied to every slot of the primary renderer")
	prefabConfigureCmd.Flags().String("animator", "", "animator controller asset")
	prefabConfigureCmd.Flags().Float64("radius", 0, "collider radius (default: collider.default_radius)")
	prefabConfigureCmd.Flags().Float64("height", 0, "collider height (default: collider.default_height)")

	prefabCmd.AddCommand(prefabFromModelCmd)
	prefabCmd.AddCommand(prefabConfigureCmd)
	rootCmd.AddCommand(prefabCmd)
}

func runPrefabFromModel(cmd *cobra.Command, args []string) error {
	printer := ui.New()
	s, err := openSession(cmd, sessionNeeds{})
	if err != nil {
		return err
	}
	defer s.close()

	h, err := s.pipeline().CreatePrefabFromModel(cmd.Context(), args[0])
	if err != nil {
		printer.Error("%v", err)
		return err
	}
	if h.IsZero() {
		printer.Warn("prefab for %s exists; left unchanged", args[0])
		return nil
	}
	printer.Success("created %s", h)
	return nil
}

// resolveOptional resolves p, or returns a zero handle when p is empty.
func resolveOptional(db *assetdb.DB, p string) (assetdb.Handle, error) {
	if p == "" {
		return assetdb.Handle{}, nil
	}
	return db.Resolve(p)
}

func runPrefabConfigure(cmd *cobra.Command, args []string) error {
	printer := ui.New()
	s, err := openSession(cmd, sessionNeeds{})
	if err != nil {
		return err
	}
	defer s.close()

	matPath, _ := cmd.Flags().GetString("material")
	animPath, _ := cmd.Flags().GetString("animator")
	mat, err := resolveOptional(s.db, matPath)
	if err != nil {
		return err
	}
	anim, err := resolveOptional(s.db, animPath)
	if err != nil {
		return err
	}
	radius, _ := cmd.Flags().GetFloat64("radius")
	height, _ := cmd.Flags().GetFloat64("height")
	if radius == 0 {
		radius = s.cfg.Collider.DefaultRadius
	}
	if height == 0 {
		height = s.cfg.Collider.DefaultHeight
	}

	h, err := s.pipeline().ConfigurePrefab(cmd.Context(), args[0], mat, anim, radius, height)
	if err != nil {
		printer.Error("%v", err)
		return err
	}
	printer.Success("configured %s", h)
	return nil
}
