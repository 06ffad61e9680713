package gitlog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devtrail/devtrail/internal/timeline"
)

var (
	windowStart = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)
)

func testProject(t *testing.T, gitDir string) timeline.Project {
	t.Helper()
	w, err := timeline.NewWindow(windowStart, windowEnd)
	require.NoError(t, err)
	return timeline.Project{Name: "Core", Code: "CORE", Window: w, GitRepositories: []string{gitDir}}
}

// initRepo creates a repository in a temp dir and returns it with its path.
func initRepo(t *testing.T) (*git.Worktree, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return wt, dir
}

var commitSeq int

func addCommit(t *testing.T, wt *git.Worktree, dir, email, message string, when time.Time) {
	t.Helper()
	commitSeq++
	name := fmt.Sprintf("file%d.txt", commitSeq)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(message), 0644))
	_, err := wt.Add(name)
	require.NoError(t, err)
	_, err = wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "author", Email: email, When: when},
	})
	require.NoError(t, err)
}

func newTestFetcher(users ...timeline.User) (*Fetcher, *timeline.UnmatchedSet) {
	unmatched := timeline.NewUnmatchedSet()
	return NewFetcher(timeline.NewIdentityIndex(users), unmatched, zap.NewNop().Sugar()), unmatched
}

func TestFetchRepositoryEmitsInWindowCommitsByKnownAuthors(t *testing.T) {
	wt, dir := initRepo(t)
	inWindow := windowStart.Add(10 * 24 * time.Hour)
	addCommit(t, wt, dir, "Jane@Example.org", "fix flaky poller\n", inWindow)

	jane := timeline.User{Name: "Jane White", Emails: []string{"jane@example.org"}, JiraUser: "j-white"}
	fetcher, unmatched := newTestFetcher(jane)

	activities, err := fetcher.FetchRepository(context.Background(), testProject(t, dir), dir)
	require.NoError(t, err)
	require.Len(t, activities, 1)

	activity := activities[0]
	assert.Equal(t, timeline.TypeGit, activity.Type)
	assert.Equal(t, "Jane White", activity.User.Name)
	assert.Equal(t, "fix flaky poller\n", activity.Summary)
	assert.Len(t, activity.ID, 40, "activity id should be the full commit hash")
	assert.True(t, activity.Timestamp.Equal(inWindow))
	assert.Zero(t, unmatched.Len())
}

func TestFetchRepositoryExcludesWindowBoundaries(t *testing.T) {
	wt, dir := initRepo(t)
	jane := timeline.User{Name: "Jane", Emails: []string{"jane@example.org"}}

	addCommit(t, wt, dir, "jane@example.org", "at start", windowStart)
	addCommit(t, wt, dir, "jane@example.org", "at end", windowEnd)
	addCommit(t, wt, dir, "jane@example.org", "inside", windowStart.Add(time.Hour))

	fetcher, _ := newTestFetcher(jane)
	activities, err := fetcher.FetchRepository(context.Background(), testProject(t, dir), dir)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "inside", activities[0].Summary)
}

func TestFetchRepositorySkipsUnknownAuthorsAndAuditsOnce(t *testing.T) {
	wt, dir := initRepo(t)
	jane := timeline.User{Name: "Jane", Emails: []string{"jane@example.org"}}

	inWindow := windowStart.Add(24 * time.Hour)
	addCommit(t, wt, dir, "Stranger@Example.org", "first drive-by", inWindow)
	addCommit(t, wt, dir, "stranger@example.org", "second drive-by", inWindow.Add(time.Hour))
	addCommit(t, wt, dir, "jane@example.org", "known work", inWindow.Add(2*time.Hour))

	fetcher, unmatched := newTestFetcher(jane)
	activities, err := fetcher.FetchRepository(context.Background(), testProject(t, dir), dir)
	require.NoError(t, err)

	require.Len(t, activities, 1)
	assert.Equal(t, "known work", activities[0].Summary)
	assert.Equal(t, []string{"stranger@example.org"}, unmatched.Emails())
}

func TestFetchRepositoryUnreadableLocation(t *testing.T) {
	jane := timeline.User{Name: "Jane", Emails: []string{"jane@example.org"}}
	fetcher, _ := newTestFetcher(jane)

	missing := filepath.Join(t.TempDir(), "nope")
	_, err := fetcher.FetchRepository(context.Background(), testProject(t, missing), missing)
	require.Error(t, err)

	var herr *HistoryError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, missing, herr.GitDir)
}
