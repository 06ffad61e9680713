package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtrail/devtrail/internal/timeline"
)

func coreProject(t *testing.T, code string) timeline.Project {
	t.Helper()
	w, err := timeline.NewWindow(
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return timeline.Project{Name: "Core Platform", Code: code, Window: w}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVExportWritesHeaderAndRowsInOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	project := coreProject(t, "CORE")
	jane := timeline.User{Name: "Jane White"}

	activities := []timeline.Activity{
		{
			Project:   project,
			User:      jane,
			Type:      timeline.TypeJira,
			ID:        "CORE-1",
			Timestamp: time.Date(2020, 1, 10, 12, 30, 0, 0, time.UTC),
			Summary:   "Jane resolved CORE-1",
		},
		{
			Project:   project,
			User:      jane,
			Type:      timeline.TypeGit,
			ID:        "0123456789abcdef0123456789abcdef01234567",
			Timestamp: time.Date(2020, 1, 11, 9, 0, 0, 0, time.UTC),
			Summary:   "fix flaky poller",
		},
	}

	exporter := NewCSVExporter(dir)
	require.NoError(t, exporter.Export(project, activities))

	rows := readCSV(t, filepath.Join(dir, "timeline_CORE.csv"))
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Project", "Date", "User", "Type", "ID", "Summary"}, rows[0])
	assert.Equal(t, []string{"CORE", "2020-01-10T12:30:00Z", "Jane White", "JIRA", "CORE-1", "Jane resolved CORE-1"}, rows[1])
	assert.Equal(t, "GIT", rows[2][3])
}

func TestCSVExportOneFilePerProject(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	exporter := NewCSVExporter(dir)

	require.NoError(t, exporter.Export(coreProject(t, "CORE"), nil))
	require.NoError(t, exporter.Export(coreProject(t, "EDGE"), nil))

	for _, name := range []string{"timeline_CORE.csv", "timeline_EDGE.csv"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "expected %s to exist", name)
	}
}

func TestCSVExportSinkFailure(t *testing.T) {
	t.Parallel()

	// An output directory that is actually a file fails at creation time.
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0644))

	exporter := NewCSVExporter(blocked)
	err := exporter.Export(coreProject(t, "CORE"), nil)
	require.Error(t, err)

	var eerr *ExportError
	assert.ErrorAs(t, err, &eerr)
}
