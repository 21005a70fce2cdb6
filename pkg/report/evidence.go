package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/assureops/crosscheck/pkg/errors"
)

// WriteEvidence writes the report as a YAML evidence file under dir and
// returns the path written. The filename embeds the report ID so evidence
// files never collide.
func WriteEvidence(dir string, r *ComparisonReport) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.WrapPersistence("create evidence directory", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return "", errors.WrapPersistence("marshal evidence", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("comparison_%s.yaml", r.ID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.WrapPersistence("write evidence file", err)
	}
	return path, nil
}

// ReadEvidence loads a previously written evidence file.
func ReadEvidence(path string) (*ComparisonReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapPersistence("read evidence file", err)
	}
	var r ComparisonReport
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, errors.WrapPersistence("parse evidence file", err)
	}
	return &r, nil
}
