package export

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Report records the files written by one run.
type Report struct {
	RunID    uuid.UUID      `yaml:"run"`
	Document string         `yaml:"document"`
	Root     string         `yaml:"root"`
	Started  time.Time      `yaml:"started"`
	Files    []ExportedFile `yaml:"files"`
}

type ExportedFile struct {
	Group string `yaml:"group"`
	Layer string `yaml:"layer"`
	Path  string `yaml:"path"`
}

func NewReport(document, root string) *Report {
	return &Report{
		RunID:    uuid.New(),
		Document: document,
		Root:     root,
		Started:  time.Now(),
	}
}

func (r *Report) Add(group, layer, path string) {
	r.Files = append(r.Files, ExportedFile{Group: group, Layer: layer, Path: path})
}

// WriteReports stores the reports of a batch as YAML.
func WriteReports(path string, reports []*Report) error {
	data, err := yaml.Marshal(reports)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
