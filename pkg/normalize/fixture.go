package normalize

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/assureops/crosscheck/pkg/errors"
)

// LoadRecordsFile reads raw records from a YAML file. The file is a list of
// field maps in the source's own vocabulary, exactly as the collection
// pipeline emitted them.
func LoadRecordsFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapSource(path, "read records file", err)
	}

	// Unquoted YAML scalars arrive as ints and bools; fold everything back
	// to the raw text the pipelines work in.
	var rows []map[string]any
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, errors.WrapSource(path, "parse records file", err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := make(Record, len(row))
		for k, v := range row {
			if v == nil {
				rec[k] = ""
				continue
			}
			rec[k] = fmt.Sprint(v)
		}
		records = append(records, rec)
	}
	return records, nil
}
