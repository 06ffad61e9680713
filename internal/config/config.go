// Package config loads and validates the YAML model file that drives a
// run: the JIRA endpoint, the user registry and the project registry.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devtrail/devtrail/internal/timeline"
)

type Config struct {
	Jira     JiraConfig      `yaml:"jira"`
	Users    []UserConfig    `yaml:"users"`
	Projects []ProjectConfig `yaml:"projects"`
}

type JiraConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type UserConfig struct {
	Name     string   `yaml:"name"`
	JiraUser string   `yaml:"jira-user"`
	Email    []string `yaml:"email"`
}

type ProjectConfig struct {
	Name            string    `yaml:"name"`
	Code            string    `yaml:"code"`
	StartDate       time.Time `yaml:"start-date"`
	EndDate         time.Time `yaml:"end-date"`
	JiraProjects    []string  `yaml:"jira-projects"`
	GitRepositories []string  `yaml:"git-repositories"`
}

// Load reads the model file and applies environment overrides for the JIRA
// credentials: DEVTRAIL_JIRA_URL, DEVTRAIL_JIRA_USERNAME and
// DEVTRAIL_JIRA_PASSWORD. Credentials in the environment win over the file
// so the file can be committed without secrets.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing model file: %w", err)
	}

	if v := os.Getenv("DEVTRAIL_JIRA_URL"); v != "" {
		cfg.Jira.URL = v
	}
	if v := os.Getenv("DEVTRAIL_JIRA_USERNAME"); v != "" {
		cfg.Jira.Username = v
	}
	if v := os.Getenv("DEVTRAIL_JIRA_PASSWORD"); v != "" {
		cfg.Jira.Password = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Jira.URL == "" {
		return fmt.Errorf("jira.url is required")
	}
	if len(c.Users) == 0 {
		return fmt.Errorf("at least one user is required")
	}
	for i, u := range c.Users {
		if u.Name == "" {
			return fmt.Errorf("user %d: name is required", i)
		}
		if len(u.Email) == 0 {
			return fmt.Errorf("user %s: at least one email is required", u.Name)
		}
	}
	if len(c.Projects) == 0 {
		return fmt.Errorf("at least one project is required")
	}
	for _, p := range c.Projects {
		if p.Code == "" {
			return fmt.Errorf("project %q: code is required", p.Name)
		}
		if !p.StartDate.Before(p.EndDate) {
			return fmt.Errorf("project %s: start-date must be before end-date", p.Code)
		}
	}
	return nil
}

// TimelineUsers converts the registry in configured order. Order matters:
// it decides both identity-collision winners and merge tie-breaking.
func (c *Config) TimelineUsers() []timeline.User {
	users := make([]timeline.User, 0, len(c.Users))
	for _, u := range c.Users {
		users = append(users, timeline.User{
			Name:     u.Name,
			Emails:   u.Email,
			JiraUser: u.JiraUser,
		})
	}
	return users
}

// TimelineProjects converts the project registry, building each window.
func (c *Config) TimelineProjects() ([]timeline.Project, error) {
	projects := make([]timeline.Project, 0, len(c.Projects))
	for _, p := range c.Projects {
		window, err := timeline.NewWindow(p.StartDate, p.EndDate)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", p.Code, err)
		}
		projects = append(projects, timeline.Project{
			Name:            p.Name,
			Code:            p.Code,
			Window:          window,
			JiraProjects:    p.JiraProjects,
			GitRepositories: p.GitRepositories,
		})
	}
	return projects, nil
}
