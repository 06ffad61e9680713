// Package devtrail wires configuration, sources, aggregator and exporters
// into one runnable application.
package devtrail

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"github.com/devtrail/devtrail/internal/config"
	"github.com/devtrail/devtrail/internal/gitlog"
	"github.com/devtrail/devtrail/internal/jira"
	"github.com/devtrail/devtrail/internal/report"
	"github.com/devtrail/devtrail/internal/timeline"
)

type Options struct {
	OutputDir   string
	Excel       bool
	JSON        bool
	Concurrency int
}

// Application holds everything needed for one run.
type Application struct {
	Config     *config.Config
	Logger     *zap.SugaredLogger
	RunID      string
	Aggregator *timeline.Aggregator
	Unmatched  *timeline.UnmatchedSet
	CSV        *report.CSVExporter
	JSON       *report.JSONExporter
	Excel      *report.ExcelExporter
}

func New(cfg *config.Config, logger *zap.SugaredLogger, opts Options) (*Application, error) {
	client, err := jira.NewClient(cfg.Jira.URL, cfg.Jira.Username, cfg.Jira.Password)
	if err != nil {
		return nil, err
	}

	users := cfg.TimelineUsers()
	identity := timeline.NewIdentityIndex(users)
	unmatched := timeline.NewUnmatchedSet()

	runID := uuid.NewString()
	logger = logger.With("run", runID)

	app := &Application{
		Config:    cfg,
		Logger:    logger,
		RunID:     runID,
		Unmatched: unmatched,
		Aggregator: &timeline.Aggregator{
			Users:       users,
			Remote:      jira.NewSource(client),
			History:     gitlog.NewFetcher(identity, unmatched, logger),
			Logger:      logger,
			Concurrency: opts.Concurrency,
		},
		CSV: report.NewCSVExporter(opts.OutputDir),
	}
	if opts.JSON {
		app.JSON = report.NewJSONExporter(opts.OutputDir)
	}
	if opts.Excel {
		app.Excel = report.NewExcelExporter(opts.OutputDir)
	}
	return app, nil
}

// Run processes every configured project. Projects are isolated: a failure
// in one is logged and counted but never stops the others, so a
// multi-project run yields partial results. The returned error is non-nil
// when anything failed, letting the process exit non-zero on partial
// results.
func (app *Application) Run(ctx context.Context) error {
	projects, err := app.Config.TimelineProjects()
	if err != nil {
		return err
	}

	failures := 0
	timelines := make(map[string][]timeline.Activity, len(projects))
	for _, project := range projects {
		logger := app.Logger.With("project", project.Code)
		logger.Infof("collecting activity for %s", project.Name)

		activities, errs := app.Aggregator.CollectProject(ctx, project)
		failures += len(errs)
		timelines[project.Code] = activities

		if err := app.CSV.Export(project, activities); err != nil {
			logger.Errorf("csv export failed: %v", err)
			failures++
			continue
		}
		if app.JSON != nil {
			if err := app.JSON.Export(project, activities); err != nil {
				logger.Errorf("json export failed: %v", err)
				failures++
			}
		}
		logger.Infof("exported %d activities", len(activities))
	}

	if app.Excel != nil {
		if err := app.Excel.Export(app.RunID, projects, timelines); err != nil {
			app.Logger.Errorf("excel export failed: %v", err)
			failures++
		}
	}

	app.printUnmatched()

	if failures > 0 {
		return fmt.Errorf("run finished with %d failure(s)", failures)
	}
	return nil
}

// printUnmatched renders the audit of author emails that matched no
// configured user. Reviewing this list is how the registry gets corrected.
func (app *Application) printUnmatched() {
	emails := app.Unmatched.Emails()
	if len(emails) == 0 {
		app.Logger.Info("no unmatched author e-mails")
		return
	}

	fmt.Printf("\nUnmatched author e-mails (%d):\n", len(emails))
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Email"})
	for i, email := range emails {
		table.Append([]string{strconv.Itoa(i + 1), email})
	}
	table.Render()
}
