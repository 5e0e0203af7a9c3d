package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/foundry/internal/tabular"
	"github.com/papapumpkin/foundry/internal/ui"
)

var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "Print the row names of the tabular source",
	Args:  cobra.NoArgs,
	RunE:  runRows,
}

func init() {
	rowsCmd.Flags().BoolP("watch", "w", false, "reprint the names whenever the source file changes")
	rootCmd.AddCommand(rowsCmd)
}

func printRows(snap *tabular.Snapshot) {
	for i, r := range snap.Rows {
		fmt.Fprintf(os.Stdout, "%d\t%s\t%d\n", i, r.Name, r.Price)
	}
}

func runRows(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd, sessionNeeds{source: true})
	if err != nil {
		return err
	}
	defer s.close()

	printRows(s.source.Snapshot())
	if watch, _ := cmd.Flags().GetBool("watch"); !watch {
		return nil
	}

	w, err := tabular.NewWatcher(s.source, s.log)
	if err != nil {
		return err
	}
	defer w.Stop()
	if err := w.Start(); err != nil {
		return err
	}

	printer := ui.New()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	for {
		select {
		case <-sig:
			return nil
		case <-cmd.Context().Done():
			return nil
		case r, ok := <-w.Reloads:
			if !ok {
				return nil
			}
			if r.Err != nil {
				printer.Warn("reload failed, keeping previous rows: %v", r.Err)
				continue
			}
			printer.Info("%s reloaded (%d rows)", r.Snapshot.Path, len(r.Snapshot.Rows))
			printRows(r.Snapshot)
		}
	}
}
