package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/foundry/internal/config"
	"github.com/papapumpkin/foundry/internal/recipe"
	"github.com/papapumpkin/foundry/internal/tui"
	"github.com/papapumpkin/foundry/internal/ui"
	"github.com/papapumpkin/foundry/internal/wizard"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Run the four-stage wizard from a recipe and commit it",
	Long: "Create evaluates the recipe stage by stage, shows the checklist, and " +
		"once every stage is ready creates the materials, the prefab and the " +
		"catalog entry.",
	RunE: runCreate,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which wizard stages a recipe satisfies",
	RunE:  runStatus,
}

func init() {
	for _, c := range []*cobra.Command{createCmd, statusCmd} {
		c.Flags().StringP("recipe", "r", "", "path to the recipe YAML file (required)")
		_ = c.MarkFlagRequired("recipe")
	}
	createCmd.Flags().Bool("normalize-icon", false, "normalize the icon into a sprite before evaluating")
	addConflictFlag(createCmd)

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(statusCmd)
}

// loadWizard opens a session and an orchestrator whose inputs come from
// the --recipe file.
func loadWizard(cmd *cobra.Command) (*session, *wizard.Orchestrator, error) {
	path, _ := cmd.Flags().GetString("recipe")
	rc, err := recipe.Load(path)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return openWizard(cmd, cfg, rc)
}

// openWizard leaves an unconfigured catalog or sheet unset so stage 3
// reports it on the checklist.
func openWizard(cmd *cobra.Command, cfg config.Config, rc *recipe.Recipe) (*session, *wizard.Orchestrator, error) {
	s, err := openSessionWith(cmd, cfg, sessionNeeds{catalog: true, source: true, lenient: true})
	if err != nil {
		return nil, nil, err
	}
	orch := wizard.New(s.env(), s.cfg, s.policy, s.log)
	in, err := rc.Inputs(orch.Pipeline(), s.db, s.cfg.DefaultShader)
	if err != nil {
		s.close()
		return nil, nil, err
	}
	orch.Inputs = in
	return s, orch, nil
}

// runStatus prints the checklist. An unready wizard is reported, not
// treated as a failure.
func runStatus(cmd *cobra.Command, _ []string) error {
	s, orch, err := loadWizard(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	verdicts := orch.Cycle()
	fmt.Fprint(os.Stdout, tui.RenderChecklist(verdicts))
	if !tui.AllReady(verdicts) {
		ui.New().Warn("wizard is not ready")
	}
	return nil
}

func runCreate(cmd *cobra.Command, _ []string) error {
	printer := ui.New()
	s, orch, err := loadWizard(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if normalize, _ := cmd.Flags().GetBool("normalize-icon"); normalize && orch.Inputs.Icon != "" {
		if _, err := orch.Pipeline().NormalizeForCatalog(cmd.Context(), orch.Inputs.Icon); err != nil {
			printer.Error("icon: %v", err)
			return err
		}
	}

	verdicts := orch.Cycle()
	fmt.Fprint(os.Stderr, tui.RenderChecklist(verdicts))
	if !tui.AllReady(verdicts) {
		return wizard.ErrNotReady
	}

	res, err := orch.Commit(cmd.Context())
	if err != nil {
		printer.Error("%v", err)
		return err
	}
	if res.Declined() {
		printer.Warn("stopped: %s was not overwritten", res.DeclinedAt)
		return nil
	}
	for _, m := range res.Materials {
		printer.Detail("material %s", m)
	}
	printer.Detail("prefab %s", res.Prefab)
	printer.Detail("icon %s", res.Icon)
	printer.Success("catalog entry %q %s (id %d, price %d)",
		res.Entry.Name, res.Outcome, res.Entry.ID, res.Entry.Price)
	return nil
}
