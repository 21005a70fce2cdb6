package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/assureops/crosscheck/internal/alert"
	"github.com/assureops/crosscheck/internal/engine"
	"github.com/assureops/crosscheck/pkg/compare"
	"github.com/assureops/crosscheck/pkg/report"
	"github.com/assureops/crosscheck/pkg/score"
)

// compareCmd runs one comparison over the staged sources.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the two staged sources and score their agreement",
	Long: `Compare loads both sources' staged records, reconciles them record by
record, and produces a confidence score with a go / no-go recommendation.

The report is persisted to the datastore and written as a YAML evidence
file. A failed check raises an integrity alert.

Exit status is non-zero when the recommendation is DO_NOT_RUN.`,
	Args: cobra.NoArgs,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	e := engine.New(s, alert.NewStoreNotifier(s), cfg)
	r, err := e.RunComparison(cmd.Context())
	if err != nil && r == nil {
		return err
	}

	printReport(r)
	if err != nil {
		fmt.Printf("\nwarning: %v\n", err)
	}
	if r.Recommendation == score.RecommendationDoNotRun {
		return fmt.Errorf("comparison verdict: %s", r.Recommendation)
	}
	return nil
}

func printReport(r *report.ComparisonReport) {
	fmt.Printf("Report %s (%s)\n", r.ID, r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("  source A: %d records, %d active\n", r.SourceA.Total, r.SourceA.Active)
	fmt.Printf("  source B: %d records, %d active\n", r.SourceB.Total, r.SourceB.Active)
	for _, j := range r.Jurisdictions {
		fmt.Printf("  %-4s active: %d / %d\n", j.Jurisdiction, j.ActiveA, j.ActiveB)
	}
	fmt.Printf("  score: %d  passed: %t  recommendation: %s\n",
		r.ConfidenceScore, r.Passed, r.Recommendation)

	if len(r.Discrepancies) > 0 {
		fmt.Printf("  discrepancies (%d):\n", len(r.Discrepancies))
		for _, d := range r.Discrepancies {
			printDiscrepancy(d)
		}
	}
}

func printDiscrepancy(d compare.Discrepancy) {
	ref := ""
	if d.Reference != "" {
		ref = " " + d.Reference.String()
	}
	fmt.Printf("    [%s] %s%s", d.Severity, d.Kind, ref)
	if len(d.Details) > 0 {
		fmt.Printf(" %v", d.Details)
	}
	fmt.Println()
}
