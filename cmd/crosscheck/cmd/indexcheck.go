package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/assureops/crosscheck/internal/alert"
	"github.com/assureops/crosscheck/internal/engine"
	"github.com/assureops/crosscheck/internal/schedule"
)

var indexFile string

// indexCheckCmd diffs a quick-index snapshot against the stored baseline.
var indexCheckCmd = &cobra.Command{
	Use:   "index-check",
	Short: "Diff a quick-index snapshot against the stored baseline",
	Long: `Index-check reads the crawler's quick-index snapshot, diffs it against
the last stored baseline, and reports new, removed, and status-changed
declarations. The snapshot then becomes the new baseline.

A full collection run is requested when anything moved, or when there is
no baseline yet.

Example:
  crosscheck index-check --index quick-index.yaml`,
	Args: cobra.NoArgs,
	RunE: runIndexCheck,
}

func init() {
	rootCmd.AddCommand(indexCheckCmd)
	indexCheckCmd.Flags().StringVar(&indexFile, "index", "", "quick-index snapshot file (YAML)")
	_ = indexCheckCmd.MarkFlagRequired("index")
}

func runIndexCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	src := &schedule.FileIndexSource{Path: indexFile}
	current, err := src.FetchIndex(cmd.Context())
	if err != nil {
		return err
	}

	e := engine.New(s, alert.NewStoreNotifier(s), cfg)
	changes, err := e.RunIndexCheck(cmd.Context(), current)
	if err != nil {
		return err
	}

	fmt.Println(changes.String())
	for _, entry := range changes.Added {
		fmt.Printf("  new: %s (%s)\n", entry.Reference, entry.Jurisdiction)
	}
	for _, entry := range changes.Removed {
		fmt.Printf("  removed: %s (%s)\n", entry.Reference, entry.Jurisdiction)
	}
	for _, flip := range changes.StatusFlips {
		fmt.Printf("  status change: %s active %t -> %t (%q -> %q)\n",
			flip.Reference, flip.WasActive, flip.NowActive, flip.OldRawDate, flip.NewRawDate)
	}
	if changes.FullScrapeNeeded {
		fmt.Println("Full collection run needed")
	}
	return nil
}
