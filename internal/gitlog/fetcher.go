// Package gitlog walks local git history and turns in-window commits by
// known authors into timeline activities.
package gitlog

import (
	"context"
	"fmt"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"

	"github.com/devtrail/devtrail/internal/timeline"
)

// HistoryError marks a repository location that could not be opened or
// walked. It is fatal for that location only; other locations and projects
// continue.
type HistoryError struct {
	GitDir string
	Err    error
}

func (e *HistoryError) Error() string {
	return fmt.Sprintf("git history %s: %v", e.GitDir, e.Err)
}

func (e *HistoryError) Unwrap() error { return e.Err }

// Fetcher resolves commit authors against the identity index while walking.
// Commits by unknown authors are skipped and their addresses recorded for
// the audit.
type Fetcher struct {
	identity  *timeline.IdentityIndex
	unmatched *timeline.UnmatchedSet
	logger    *zap.SugaredLogger
}

func NewFetcher(identity *timeline.IdentityIndex, unmatched *timeline.UnmatchedSet, logger *zap.SugaredLogger) *Fetcher {
	return &Fetcher{identity: identity, unmatched: unmatched, logger: logger}
}

var _ timeline.HistorySource = (*Fetcher)(nil)

func (f *Fetcher) Name() string {
	return "GIT"
}

// FetchRepository walks every ref of the repository at gitDir once. The
// walk imposes no ordering; sorting happens downstream in the aggregator.
func (f *Fetcher) FetchRepository(ctx context.Context, project timeline.Project, gitDir string) ([]timeline.Activity, error) {
	repo, err := git.PlainOpen(gitDir)
	if err != nil {
		return nil, &HistoryError{GitDir: gitDir, Err: err}
	}

	iter, err := repo.Log(&git.LogOptions{All: true})
	if err != nil {
		return nil, &HistoryError{GitDir: gitDir, Err: err}
	}
	defer iter.Close()

	var activities []timeline.Activity
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !project.Window.Contains(c.Author.When) {
			return nil
		}
		user, ok := f.identity.Resolve(c.Author.Email)
		if !ok {
			f.unmatched.Record(c.Author.Email)
			return nil
		}
		activities = append(activities, timeline.Activity{
			Project:   project,
			User:      user,
			Type:      timeline.TypeGit,
			ID:        c.Hash.String(),
			Timestamp: c.Author.When,
			Summary:   c.Message,
		})
		return nil
	})
	if err != nil {
		return nil, &HistoryError{GitDir: gitDir, Err: err}
	}

	f.logger.Debugf("walked %s: %d activities in window", gitDir, len(activities))
	return activities, nil
}
