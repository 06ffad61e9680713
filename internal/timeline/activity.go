// Package timeline holds the domain model for cross-source activity
// reporting: canonical users and projects, the reporting window, identity
// resolution for raw author emails, and the aggregator that merges remote
// tracker activity with local git history into one ordered sequence.
package timeline

import "time"

// SourceType tags which system an Activity was observed in.
type SourceType int

const (
	TypeJira SourceType = iota
	TypeGit
)

// String returns the literal enum name used in exported output.
func (t SourceType) String() string {
	switch t {
	case TypeJira:
		return "JIRA"
	case TypeGit:
		return "GIT"
	default:
		return "UNKNOWN"
	}
}

// User is one canonical person from the configured registry. Immutable
// after load.
type User struct {
	Name     string
	Emails   []string
	JiraUser string
}

// Project is one reporting scope: a window plus the JIRA sub-projects and
// git repositories that feed it. Immutable after load.
type Project struct {
	Name            string
	Code            string
	Window          Window
	JiraProjects    []string
	GitRepositories []string
}

// Activity is a single reportable event attributed to a known user. It is
// created by the fetchers, lives for one run, and is never persisted beyond
// the exported table.
type Activity struct {
	Project   Project
	User      User
	Type      SourceType
	ID        string
	Timestamp time.Time
	Summary   string
}
