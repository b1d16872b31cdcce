package reconcile

import (
	"context"
	"errors"
	"fmt"

	"casectl/logger"
	"casectl/project"
	"casectl/testcase"
	"casectl/tms"
)

// ErrNoTargets is returned when reconciliation is invoked with no target
// projects.
var ErrNoTargets = errors.New("no target projects")

// Engine reconciles a local test case definition against its remote
// records across a set of target projects. It holds no state between
// invocations; every call starts from a fresh remote search.
type Engine struct {
	client  tms.Client
	mapping project.Mapping
	log     logger.Logger
}

// NewEngine creates an engine with an injected remote client and project
// mapping.
func NewEngine(client tms.Client, mapping project.Mapping, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{client: client, mapping: mapping, log: log}
}

// resolveTargets deduplicates the targets into declaration order and maps
// each to its remote project id. A resolution failure aborts before any
// network call.
func (e *Engine) resolveTargets(targets []project.Project) ([]project.Project, []int, error) {
	targets = project.Sort(targets)
	if len(targets) == 0 {
		return nil, nil, ErrNoTargets
	}

	ids := make([]int, len(targets))
	for i, p := range targets {
		id, err := e.mapping.ProjectID(p)
		if err != nil {
			return nil, nil, err
		}
		ids[i] = id
	}
	return targets, ids, nil
}

// Upsert ensures every target project either gains a new record matching
// the test case or has its existing one overwritten. One batched search
// covers all targets, then each project is applied sequentially in
// declaration order. A failure in one project never aborts its siblings;
// it is recorded in that project's Outcome. The returned error is non-nil
// only when the pre-network phase fails.
func (e *Engine) Upsert(ctx context.Context, tc *testcase.TestCase, targets []project.Project) ([]Outcome, error) {
	targets, ids, err := e.resolveTargets(targets)
	if err != nil {
		return nil, err
	}

	matches, err := e.client.FindByTitle(ctx, tc.Title, ids)
	if err != nil {
		return nil, fmt.Errorf("searching for %q: %w", tc.Title, err)
	}
	byProject := partition(matches)

	outcomes := make([]Outcome, 0, len(targets))
	for i, p := range targets {
		projectID := ids[i]
		outcome := Outcome{Project: p, ProjectID: projectID}

		if err := ctx.Err(); err != nil {
			// Interrupted; already-applied writes stay, nothing rolls back.
			outcome.Err = err
			outcomes = append(outcomes, outcome)
			continue
		}

		switch found := byProject[projectID]; len(found) {
		case 0:
			outcome.Action, outcome.ID, outcome.Err = e.create(ctx, projectID, tc)
		case 1:
			outcome.Action, outcome.ID, outcome.Err = e.update(ctx, projectID, found[0], tc)
		default:
			outcome.Err = &AmbiguousTitleError{Title: tc.Title, Project: p, Count: len(found)}
			e.log.Warn(ctx, "ambiguous title, skipping project", map[string]interface{}{
				"title":   tc.Title,
				"project": string(p),
				"matches": len(found),
			})
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// Create unconditionally creates the test case in every target project.
func (e *Engine) Create(ctx context.Context, tc *testcase.TestCase, targets []project.Project) ([]Outcome, error) {
	targets, ids, err := e.resolveTargets(targets)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(targets))
	for i, p := range targets {
		outcome := Outcome{Project: p, ProjectID: ids[i]}
		if err := ctx.Err(); err != nil {
			outcome.Err = err
		} else {
			outcome.Action, outcome.ID, outcome.Err = e.create(ctx, ids[i], tc)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// Update overwrites existing records only. A target project with no match
// fails with ErrNoMatch; sibling projects continue.
func (e *Engine) Update(ctx context.Context, tc *testcase.TestCase, targets []project.Project) ([]Outcome, error) {
	targets, ids, err := e.resolveTargets(targets)
	if err != nil {
		return nil, err
	}

	matches, err := e.client.FindByTitle(ctx, tc.Title, ids)
	if err != nil {
		return nil, fmt.Errorf("searching for %q: %w", tc.Title, err)
	}
	byProject := partition(matches)

	outcomes := make([]Outcome, 0, len(targets))
	for i, p := range targets {
		projectID := ids[i]
		outcome := Outcome{Project: p, ProjectID: projectID}

		if err := ctx.Err(); err != nil {
			outcome.Err = err
			outcomes = append(outcomes, outcome)
			continue
		}

		switch found := byProject[projectID]; len(found) {
		case 0:
			outcome.Err = ErrNoMatch
		case 1:
			outcome.Action, outcome.ID, outcome.Err = e.update(ctx, projectID, found[0], tc)
		default:
			outcome.Err = &AmbiguousTitleError{Title: tc.Title, Project: p, Count: len(found)}
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

func (e *Engine) create(ctx context.Context, projectID int, tc *testcase.TestCase) (Action, int, error) {
	id, err := e.client.Create(ctx, projectID, tc)
	if err != nil {
		return ActionNone, 0, err
	}
	e.log.Info(ctx, "created test case", map[string]interface{}{
		"title":      tc.Title,
		"project_id": projectID,
		"id":         id,
	})
	return ActionCreate, id, nil
}

func (e *Engine) update(ctx context.Context, projectID int, match tms.Match, tc *testcase.TestCase) (Action, int, error) {
	// The etag comes from the search that just ran; the remote service
	// rejects the write if the record changed in between.
	if _, err := e.client.Update(ctx, projectID, match.ID, tc, match.ETag); err != nil {
		return ActionNone, 0, err
	}
	e.log.Info(ctx, "updated test case", map[string]interface{}{
		"title":      tc.Title,
		"project_id": projectID,
		"id":         match.ID,
	})
	return ActionUpdate, match.ID, nil
}

func partition(matches []tms.Match) map[int][]tms.Match {
	byProject := make(map[int][]tms.Match, len(matches))
	for _, m := range matches {
		byProject[m.ProjectID] = append(byProject[m.ProjectID], m)
	}
	return byProject
}
