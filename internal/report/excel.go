package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/devtrail/devtrail/internal/timeline"
)

// ExcelExporter writes a single workbook per run with a Dashboard sheet and
// one sheet per project timeline. It supplements the CSV output; the CSV
// files remain the canonical export.
type ExcelExporter struct {
	OutputDir string
}

func NewExcelExporter(outputDir string) *ExcelExporter {
	return &ExcelExporter{OutputDir: outputDir}
}

// Export writes summary_<runID>.xlsx covering every project in order.
func (e *ExcelExporter) Export(runID string, projects []timeline.Project, timelines map[string][]timeline.Activity) error {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return &ExportError{Path: e.OutputDir, Err: err}
	}
	filename := filepath.Join(e.OutputDir, fmt.Sprintf("summary_%s.xlsx", runID))

	f := excelize.NewFile()
	defer f.Close()

	if err := e.createDashboardSheet(f, projects, timelines); err != nil {
		return &ExportError{Path: filename, Err: err}
	}

	titler := cases.Title(language.English)
	for _, project := range projects {
		sheetName := sanitizeSheetName(titler.String(project.Name))
		if err := e.createProjectSheet(f, sheetName, timelines[project.Code]); err != nil {
			return &ExportError{Path: filename, Err: err}
		}
	}

	_ = f.DeleteSheet("Sheet1")

	if err := f.SaveAs(filename); err != nil {
		return &ExportError{Path: filename, Err: err}
	}
	return nil
}

func (e *ExcelExporter) createDashboardSheet(f *excelize.File, projects []timeline.Project, timelines map[string][]timeline.Activity) error {
	index, err := f.NewSheet("Dashboard")
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
	})

	header := []interface{}{"Project", "Code", "Total", "JIRA", "GIT"}
	if err := f.SetSheetRow("Dashboard", "A1", &header); err != nil {
		return err
	}
	_ = f.SetCellStyle("Dashboard", "A1", "E1", headerStyle)

	for i, project := range projects {
		jiraCount := 0
		gitCount := 0
		for _, activity := range timelines[project.Code] {
			switch activity.Type {
			case timeline.TypeJira:
				jiraCount++
			case timeline.TypeGit:
				gitCount++
			}
		}
		row := []interface{}{project.Name, project.Code, jiraCount + gitCount, jiraCount, gitCount}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow("Dashboard", cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (e *ExcelExporter) createProjectSheet(f *excelize.File, sheetName string, activities []timeline.Activity) error {
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	header := make([]interface{}, len(csvHeader))
	for i, h := range csvHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	for i, activity := range activities {
		row := []interface{}{
			activity.Project.Code,
			activity.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			activity.User.Name,
			activity.Type.String(),
			activity.ID,
			activity.Summary,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// sanitizeSheetName keeps sheet names within Excel's 31-character limit and
// strips the characters Excel rejects.
func sanitizeSheetName(name string) string {
	replacer := strings.NewReplacer(":", "", "\\", "", "/", "", "?", "", "*", "", "[", "", "]", "")
	name = replacer.Replace(name)
	if len(name) > 31 {
		name = name[:31]
	}
	if name == "" {
		name = "Project"
	}
	return name
}
