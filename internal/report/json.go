package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devtrail/devtrail/internal/timeline"
)

// JSONExporter mirrors the CSV output as JSON, one file per project, for
// downstream tooling that prefers structured input.
type JSONExporter struct {
	OutputDir string
}

func NewJSONExporter(outputDir string) *JSONExporter {
	return &JSONExporter{OutputDir: outputDir}
}

type jsonActivity struct {
	Project string    `json:"project"`
	Date    time.Time `json:"date"`
	User    string    `json:"user"`
	Type    string    `json:"type"`
	ID      string    `json:"id"`
	Summary string    `json:"summary"`
}

// Export writes timeline_<code>.json in the same order as the CSV rows.
func (e *JSONExporter) Export(project timeline.Project, activities []timeline.Activity) error {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return &ExportError{Path: e.OutputDir, Err: err}
	}

	rows := make([]jsonActivity, 0, len(activities))
	for _, activity := range activities {
		rows = append(rows, jsonActivity{
			Project: activity.Project.Code,
			Date:    activity.Timestamp.UTC(),
			User:    activity.User.Name,
			Type:    activity.Type.String(),
			ID:      activity.ID,
			Summary: activity.Summary,
		})
	}

	data, err := json.MarshalIndent(rows, "", "\t")
	if err != nil {
		return err
	}

	path := filepath.Join(e.OutputDir, fmt.Sprintf("timeline_%s.json", project.Code))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	return nil
}
