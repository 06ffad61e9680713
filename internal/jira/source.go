package jira

import (
	"context"
	"fmt"

	"github.com/devtrail/devtrail/internal/timeline"
)

// Source adapts the activity stream to the aggregator's RemoteSource.
type Source struct {
	fetcher *Fetcher
}

func NewSource(client *Client) *Source {
	return &Source{fetcher: NewFetcher(client)}
}

var _ timeline.RemoteSource = (*Source)(nil)

func (s *Source) Name() string {
	return "JIRA"
}

// FetchUserActivity retrieves the user's complete activity over the project
// window and converts each entry into an activity. The window here is the
// retrieval range; remote entries are reported as the server returned them.
func (s *Source) FetchUserActivity(ctx context.Context, project timeline.Project, user timeline.User) ([]timeline.Activity, error) {
	entries, err := s.fetcher.FetchRange(ctx, user.JiraUser, project.Window)
	if err != nil {
		return nil, fmt.Errorf("fetching activity for %s: %w", user.JiraUser, err)
	}

	activities := make([]timeline.Activity, 0, len(entries))
	for _, entry := range entries {
		activities = append(activities, timeline.Activity{
			Project:   project,
			User:      user,
			Type:      timeline.TypeJira,
			ID:        entry.IssueID(),
			Timestamp: entry.Published,
			Summary:   entry.Title,
		})
	}
	return activities, nil
}
