package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// reportsCmd groups the report history subcommands.
var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Browse past comparison reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent comparison reports, newest first",
	Args:  cobra.NoArgs,
	RunE:  runReportsList,
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one comparison report in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsShow,
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
}

func runReportsList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	reports, err := s.ListReports(cmd.Context(), cfg.ReportHistoryLimit)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Println("No reports yet")
		return nil
	}

	for _, r := range reports {
		fmt.Printf("%s  %s  %s\n",
			r.ID, r.GeneratedAt.Format("2006-01-02 15:04"), r.Summary())
	}
	return nil
}

func runReportsShow(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid report id %q: %w", args[0], err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	r, err := s.GetReport(cmd.Context(), id)
	if err != nil {
		return err
	}
	printReport(r)
	return nil
}
