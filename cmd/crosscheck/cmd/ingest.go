package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/assureops/crosscheck/internal/alert"
	"github.com/assureops/crosscheck/internal/engine"
	"github.com/assureops/crosscheck/pkg/normalize"
)

// ingestCmd stages one pipeline's raw output into the datastore.
var ingestCmd = &cobra.Command{
	Use:   "ingest <source> <records.yaml>",
	Short: "Normalize and stage one pipeline's collected records",
	Long: `Ingest reads a pipeline's raw output file, normalizes each record into
the canonical declaration shape, and replaces that source's staged data.

Records without a usable natural key are excluded and reported; they are
never dropped silently.

Examples:
  crosscheck ingest registry-browser browser-run.yaml
  crosscheck ingest registry-crawler crawler-run.yaml`,
	Args: cobra.ExactArgs(2),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	source, path := args[0], args[1]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	raw, err := normalize.LoadRecordsFile(path)
	if err != nil {
		return err
	}

	e := engine.New(s, alert.NewStoreNotifier(s), cfg)
	staged, problems, err := e.Ingest(cmd.Context(), source, raw)
	if err != nil {
		return err
	}

	fmt.Printf("Staged %d of %d records for %s (%d problems)\n", staged, len(raw), source, len(problems))
	for _, p := range problems {
		fmt.Printf("  problem: reference=%q field=%s %s\n", p.Reference, p.Field, p.Detail)
	}
	return nil
}
