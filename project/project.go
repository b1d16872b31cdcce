// Package project models the remote projects a test case targets and the
// app selectors that expand to sets of them.
package project

import (
	"errors"
	"fmt"
)

// ErrUnknownProject is returned when a name is not a known project.
var ErrUnknownProject = errors.New("unknown project")

// Project identifies one remote project a test case can be mirrored into.
type Project string

const (
	IOS     Project = "ios"
	Android Project = "android"
	Web     Project = "web"
)

// Order returns all projects in their fixed declaration order. Multi-project
// operations apply in this order regardless of how targets were requested,
// so progress output stays deterministic.
func Order() []Project {
	return []Project{IOS, Android, Web}
}

func (p Project) IsValid() bool {
	return p == IOS || p == Android || p == Web
}

// Parse converts a name into a Project.
func Parse(name string) (Project, error) {
	p := Project(name)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownProject, name)
	}
	return p, nil
}

// Sort reorders targets into declaration order, dropping duplicates.
func Sort(targets []Project) []Project {
	requested := make(map[Project]bool, len(targets))
	for _, p := range targets {
		requested[p] = true
	}

	out := make([]Project, 0, len(targets))
	for _, p := range Order() {
		if requested[p] {
			out = append(out, p)
		}
	}
	return out
}
