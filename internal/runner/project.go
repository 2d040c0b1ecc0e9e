package runner

import (
	"errors"
	"fmt"
	"path"

	"github.com/taskflow-qa/taskflow-e2e/internal/config"
)

// Project errors
var (
	ErrProjectCycle   = errors.New("project dependency cycle")
	ErrUnknownProject = errors.New("unknown project")
)

// Project is one ordered phase of a run. It selects specs by name and may
// start every test from a saved storage state.
type Project struct {
	Name       string
	TestMatch  []string
	TestIgnore []string
	// StorageState is the saved session file every test starts from. Empty
	// means a fresh session without cookies or origins.
	StorageState string
	// Dependencies must finish before this project starts. A failed
	// dependency skips every test of this project.
	Dependencies []string
	// Teardown names a project that runs after this project and every
	// project depending on it, whatever their outcome.
	Teardown string
}

// ProjectsFromConfig turns configured projects into runnable ones
func ProjectsFromConfig(cfgs []config.ProjectConfig, storageState string) []Project {
	projects := make([]Project, 0, len(cfgs))
	for _, c := range cfgs {
		p := Project{
			Name:         c.Name,
			TestMatch:    c.TestMatch,
			TestIgnore:   c.TestIgnore,
			Dependencies: c.Dependencies,
			Teardown:     c.Teardown,
		}
		if c.UseStorageState {
			p.StorageState = storageState
		}
		projects = append(projects, p)
	}
	return projects
}

// Matches reports whether the project runs the given spec
func (p Project) Matches(spec string) bool {
	for _, pattern := range p.TestIgnore {
		if ok, _ := path.Match(pattern, spec); ok {
			return false
		}
	}
	for _, pattern := range p.TestMatch {
		if ok, _ := path.Match(pattern, spec); ok {
			return true
		}
	}
	return false
}

// OrderProjects returns the projects in the order they must run. Dependencies
// come before their dependents and a teardown comes after the project that
// declares it and everything depending on that project. Ties keep the
// declaration order.
func OrderProjects(projects []Project) ([]Project, error) {
	index := make(map[string]int, len(projects))
	for i, p := range projects {
		if _, dup := index[p.Name]; dup {
			return nil, fmt.Errorf("duplicate project %q", p.Name)
		}
		index[p.Name] = i
	}

	after := make([][]int, len(projects))
	for i, p := range projects {
		for _, dep := range p.Dependencies {
			j, ok := index[dep]
			if !ok {
				return nil, fmt.Errorf("%w %q in dependencies of %q", ErrUnknownProject, dep, p.Name)
			}
			after[i] = append(after[i], j)
		}
	}
	for i, p := range projects {
		if p.Teardown == "" {
			continue
		}
		td, ok := index[p.Teardown]
		if !ok {
			return nil, fmt.Errorf("%w %q in teardown of %q", ErrUnknownProject, p.Teardown, p.Name)
		}
		after[td] = append(after[td], i)
		for _, d := range dependents(projects, index, i) {
			if d != td {
				after[td] = append(after[td], d)
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(projects))
	ordered := make([]Project, 0, len(projects))

	var visit func(i int, trail []string) error
	visit = func(i int, trail []string) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %v -> %s", ErrProjectCycle, trail, projects[i].Name)
		}
		state[i] = visiting
		next := append(append([]string{}, trail...), projects[i].Name)
		for _, j := range after[i] {
			if err := visit(j, next); err != nil {
				return err
			}
		}
		state[i] = done
		ordered = append(ordered, projects[i])
		return nil
	}

	for i := range projects {
		if err := visit(i, nil); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// dependents returns every project that depends on project i, directly or not
func dependents(projects []Project, index map[string]int, i int) []int {
	var out []int
	seen := map[int]bool{i: true}
	queue := []int{i}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for j, p := range projects {
			if seen[j] {
				continue
			}
			for _, dep := range p.Dependencies {
				if index[dep] == cur {
					seen[j] = true
					out = append(out, j)
					queue = append(queue, j)
					break
				}
			}
		}
	}
	return out
}

// SelectProjects keeps the named projects together with their dependencies
// and teardowns. No names keeps everything.
func SelectProjects(projects []Project, names []string) ([]Project, error) {
	if len(names) == 0 {
		return projects, nil
	}

	byName := make(map[string]Project, len(projects))
	for _, p := range projects {
		byName[p.Name] = p
	}

	keep := make(map[string]bool)
	var add func(name string) error
	add = func(name string) error {
		if keep[name] {
			return nil
		}
		p, ok := byName[name]
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownProject, name)
		}
		keep[name] = true
		for _, dep := range p.Dependencies {
			if err := add(dep); err != nil {
				return err
			}
		}
		if p.Teardown != "" {
			return add(p.Teardown)
		}
		return nil
	}
	for _, name := range names {
		if err := add(name); err != nil {
			return nil, err
		}
	}

	var selected []Project
	for _, p := range projects {
		if keep[p.Name] {
			selected = append(selected, p)
		}
	}
	return selected, nil
}
