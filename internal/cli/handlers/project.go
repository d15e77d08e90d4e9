package handlers

import (
	"errors"
	"fmt"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/service"
)

// ListProjects prints the project registry
func ListProjects(deps *cli.Deps) {
	cli.Title(deps.Stdout, "Projects")
	for _, p := range deps.Services.Project.List() {
		_, _ = fmt.Fprintf(deps.Stdout, "  %s\n", p)
	}
}

// AddProject registers a project name
func AddProject(deps *cli.Deps, name string) {
	if err := deps.Services.Project.Add(name); err != nil {
		if errors.Is(err, service.ErrProjectExists) {
			deps.Fail(err, "Names are case-sensitive; list them with 'tt projects'")
		} else {
			deps.Fail(err)
		}
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Added project: %s\n", name)
}

// RemoveProject drops a project name from the registry. Entries keep it.
func RemoveProject(deps *cli.Deps, name string) {
	if err := deps.Services.Project.Remove(name); err != nil {
		deps.Fail(err)
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Removed project: %s\n", name)
}
