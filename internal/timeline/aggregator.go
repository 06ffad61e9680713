package timeline

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RemoteSource fetches issue-tracker activity for one user over the
// project's window.
type RemoteSource interface {
	Name() string
	FetchUserActivity(ctx context.Context, project Project, user User) ([]Activity, error)
}

// HistorySource walks one local repository and returns the commits that
// fall inside the project window and belong to a known user.
type HistorySource interface {
	Name() string
	FetchRepository(ctx context.Context, project Project, gitDir string) ([]Activity, error)
}

// Aggregator combines remote and local activity for a project into a single
// timestamp-ordered timeline. Projects are processed independently; errors
// from one never stop another.
type Aggregator struct {
	Users       []User
	Remote      RemoteSource
	History     HistorySource
	Logger      *zap.SugaredLogger
	Concurrency int
}

// CollectProject gathers every activity for the project and returns the
// merged, sorted sequence together with any errors hit along the way.
// A remote failure drops the project's remote portion entirely; history
// failures are scoped to the repository they occurred in. Partial results
// are still returned so the caller can export what was collected.
func (a *Aggregator) CollectProject(ctx context.Context, project Project) ([]Activity, []error) {
	var all []Activity
	var errs []error

	if a.Remote != nil {
		remote, err := a.fetchRemote(ctx, project)
		if err != nil {
			a.Logger.Errorf("%s retrieval failed for project %s: %v", a.Remote.Name(), project.Code, err)
			errs = append(errs, err)
		} else {
			all = append(all, remote...)
		}
	}

	if a.History != nil {
		for _, gitDir := range project.GitRepositories {
			activities, err := a.History.FetchRepository(ctx, project, gitDir)
			if err != nil {
				a.Logger.Errorf("history walk failed for %s: %v", gitDir, err)
				errs = append(errs, err)
				continue
			}
			all = append(all, activities...)
		}
	}

	// Stable: activities sharing a timestamp keep insertion order, which is
	// remote before local with users in configured order.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})
	return all, errs
}

// fetchRemote retrieves tracker activity for every configured user. Fetches
// run concurrently up to the configured limit, but results are flattened in
// registry order so the merge stays deterministic. The first failure aborts
// the whole remote portion for this project.
func (a *Aggregator) fetchRemote(ctx context.Context, project Project) ([]Activity, error) {
	results := make([][]Activity, len(a.Users))

	g, ctx := errgroup.WithContext(ctx)
	limit := a.Concurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, user := range a.Users {
		g.Go(func() error {
			a.Logger.Infof("retrieving %s activity for %s ...", a.Remote.Name(), user.JiraUser)
			activities, err := a.Remote.FetchUserActivity(ctx, project, user)
			if err != nil {
				return fmt.Errorf("user %s: %w", user.JiraUser, err)
			}
			a.Logger.Infof("found %d entries for %s", len(activities), user.Name)
			results[i] = activities
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Activity
	for _, activities := range results {
		out = append(out, activities...)
	}
	return out, nil
}
