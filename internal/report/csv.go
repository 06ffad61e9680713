// Package report renders ordered activity timelines to tabular sinks.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devtrail/devtrail/internal/timeline"
)

// ExportError marks a timeline that could not be written to its sink.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

var csvHeader = []string{"Project", "Date", "User", "Type", "ID", "Summary"}

// CSVExporter writes one timeline file per project, named by project code,
// so that no project overwrites another's output.
type CSVExporter struct {
	OutputDir string
}

func NewCSVExporter(outputDir string) *CSVExporter {
	return &CSVExporter{OutputDir: outputDir}
}

// Export writes the project's activities, already sorted by the caller, to
// timeline_<code>.csv. The file is flushed and closed on every path.
func (e *CSVExporter) Export(project timeline.Project, activities []timeline.Activity) (err error) {
	if mErr := os.MkdirAll(e.OutputDir, 0755); mErr != nil {
		return &ExportError{Path: e.OutputDir, Err: mErr}
	}

	path := filepath.Join(e.OutputDir, fmt.Sprintf("timeline_%s.csv", project.Code))
	file, cErr := os.Create(path)
	if cErr != nil {
		return &ExportError{Path: path, Err: cErr}
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = &ExportError{Path: path, Err: closeErr}
		}
	}()

	writer := csv.NewWriter(file)
	if wErr := writer.Write(csvHeader); wErr != nil {
		return &ExportError{Path: path, Err: wErr}
	}
	for _, activity := range activities {
		row := []string{
			activity.Project.Code,
			activity.Timestamp.UTC().Format(time.RFC3339),
			activity.User.Name,
			activity.Type.String(),
			activity.ID,
			activity.Summary,
		}
		if wErr := writer.Write(row); wErr != nil {
			return &ExportError{Path: path, Err: wErr}
		}
	}
	writer.Flush()
	if wErr := writer.Error(); wErr != nil {
		return &ExportError{Path: path, Err: wErr}
	}
	return nil
}
