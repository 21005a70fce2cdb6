package cmd

import (
	"github.com/spf13/cobra"

	"github.com/assureops/crosscheck/internal/alert"
	"github.com/assureops/crosscheck/internal/engine"
	"github.com/assureops/crosscheck/internal/schedule"
)

var scheduleIndexFile string

// scheduleCmd runs the engine on its cron schedules until interrupted.
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run comparisons and index checks on their cron schedules",
	Long: `Schedule runs the comparison every two hours and, when an index
snapshot file is configured, the index check three mornings a week. It
keeps running until interrupted.

The snapshot file is re-read on every index check, so the crawler can keep
overwriting it in place.

Example:
  crosscheck schedule --index quick-index.yaml`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().StringVar(&scheduleIndexFile, "index", "", "quick-index snapshot file re-read on each check")
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	var indexSource schedule.IndexSource
	if scheduleIndexFile != "" {
		indexSource = &schedule.FileIndexSource{Path: scheduleIndexFile}
	}

	e := engine.New(s, alert.NewStoreNotifier(s), cfg)
	sched := schedule.New(e, cfg, indexSource)
	if err := sched.Start(cmd.Context()); err != nil {
		return err
	}
	defer sched.Stop()

	<-cmd.Context().Done()
	return nil
}
