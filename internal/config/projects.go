package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Project names of the default run configuration
const (
	ProjectLogin     = "login"
	ProjectTeardown  = "teardown"
	ProjectLoggedIn  = "Logged in tests"
	ProjectLoggedOut = "Logged out tests"
)

// ProjectConfig declares one ordered phase of a run
type ProjectConfig struct {
	Name            string   `yaml:"name"`
	TestMatch       []string `yaml:"testMatch"`
	TestIgnore      []string `yaml:"testIgnore"`
	UseStorageState bool     `yaml:"useStorageState"`
	Dependencies    []string `yaml:"dependencies"`
	Teardown        string   `yaml:"teardown"`
}

type projectsFile struct {
	Projects []ProjectConfig `yaml:"projects"`
}

// ErrNoProjects is returned when a projects file declares nothing to run
var ErrNoProjects = errors.New("no projects declared")

// DefaultProjects returns the phases of a normal run: an anonymous login
// phase that saves the session, the authenticated phase reusing it followed by
// the teardown phase, and the logged out phase for specs that must not carry
// a prior session.
func DefaultProjects() []ProjectConfig {
	return []ProjectConfig{
		{
			Name:      ProjectLogin,
			TestMatch: []string{"login.setup"},
		},
		{
			Name:      ProjectTeardown,
			TestMatch: []string{"global.teardown"},
		},
		{
			Name:            ProjectLoggedIn,
			TestMatch:       []string{"*.spec"},
			TestIgnore:      []string{"register-*.spec", "login-*.spec"},
			UseStorageState: true,
			Dependencies:    []string{ProjectLogin},
			Teardown:        ProjectTeardown,
		},
		{
			Name:      ProjectLoggedOut,
			TestMatch: []string{"register-*.spec", "login-*.spec"},
		},
	}
}

// LoadProjects reads the projects from a YAML file, or returns the default
// projects when path is empty.
func LoadProjects(path string) ([]ProjectConfig, error) {
	if path == "" {
		return DefaultProjects(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read projects file: %w", err)
	}

	var file projectsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse projects file %s: %w", path, err)
	}
	if len(file.Projects) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoProjects)
	}

	seen := make(map[string]bool, len(file.Projects))
	for _, p := range file.Projects {
		if p.Name == "" {
			return nil, fmt.Errorf("%s: project name is required", path)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("%s: duplicate project %q", path, p.Name)
		}
		seen[p.Name] = true
	}

	return file.Projects, nil
}
