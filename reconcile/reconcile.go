// Package reconcile decides, per target project, whether a local test case
// definition creates a new remote record or overwrites an existing one.
package reconcile

import (
	"errors"
	"fmt"

	"casectl/project"
)

// Action tags the operation applied for one (title, project) pair.
type Action string

const (
	// ActionNone means no write happened (the pair failed).
	ActionNone Action = ""

	// ActionCreate means a new remote record was created.
	ActionCreate Action = "CREATE"

	// ActionUpdate means an existing remote record was overwritten.
	ActionUpdate Action = "UPDATE"

	// ActionMixed is the summary tag when outcomes disagree.
	ActionMixed Action = "MIXED"
)

// ErrNoMatch is returned by update-only reconciliation when a target
// project has no record with the given title.
var ErrNoMatch = errors.New("no test case found with the given title, use `create` instead")

// AmbiguousTitleError reports more than one remote record sharing a title
// within a single project. The engine never guesses which one to update.
type AmbiguousTitleError struct {
	Title   string
	Project project.Project
	Count   int
}

func (e *AmbiguousTitleError) Error() string {
	return fmt.Sprintf("ambiguous title %q: %d matches in project %q", e.Title, e.Count, e.Project)
}

// Outcome is the result of one reconciliation attempt for one
// (title, project) pair. Failures are attached here, never thrown in a way
// that discards sibling results.
type Outcome struct {
	Project   project.Project
	ProjectID int
	Action    Action
	ID        int
	Err       error
}

// Failed reports whether this pair's reconciliation failed.
func (o Outcome) Failed() bool { return o.Err != nil }

// Summarize collapses a set of outcomes to a dominant action: CREATE when
// every pair created, UPDATE when every pair updated, MIXED otherwise.
// All-failed yields ActionNone.
func Summarize(outcomes []Outcome) Action {
	var summary Action
	anyFailed := false
	for _, o := range outcomes {
		if o.Failed() {
			anyFailed = true
			continue
		}
		if summary == ActionNone {
			summary = o.Action
		} else if summary != o.Action {
			return ActionMixed
		}
	}
	if summary == ActionNone {
		return ActionNone
	}
	if anyFailed {
		return ActionMixed
	}
	return summary
}
