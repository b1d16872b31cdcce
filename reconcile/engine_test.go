package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casectl/logger"
	"casectl/project"
	"casectl/testcase"
	"casectl/tms"
)

var testMapping = project.Mapping{
	project.IOS:     17,
	project.Android: 18,
	project.Web:     19,
}

func definition() *testcase.TestCase {
	return &testcase.TestCase{
		Title:           "Login works",
		Preconditions:   []string{"user exists"},
		Steps:           []string{"open login page"},
		ExpectedResults: []string{"dashboard shown"},
	}
}

// fakeClient is an in-memory tms.Client recording the calls the engine makes.
type fakeClient struct {
	matches []tms.Match
	findErr error

	createErr map[int]error
	updateErr map[int]error

	nextID int

	findCalls      int
	findProjectIDs []int
	createdIn      []int
	updated        []updateCall
}

type updateCall struct {
	ProjectID int
	ID        int
	ETag      string
}

func (f *fakeClient) FindByTitle(ctx context.Context, title string, projectIDs []int) ([]tms.Match, error) {
	f.findCalls++
	f.findProjectIDs = append([]int{}, projectIDs...)
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.matches, nil
}

func (f *fakeClient) Create(ctx context.Context, projectID int, tc *testcase.TestCase) (int, error) {
	if err := f.createErr[projectID]; err != nil {
		return 0, err
	}
	f.nextID++
	f.createdIn = append(f.createdIn, projectID)
	return 1000 + f.nextID, nil
}

func (f *fakeClient) Update(ctx context.Context, projectID, id int, tc *testcase.TestCase, etag string) (string, error) {
	if err := f.updateErr[projectID]; err != nil {
		return "", err
	}
	f.updated = append(f.updated, updateCall{ProjectID: projectID, ID: id, ETag: etag})
	return etag + "'", nil
}

func (f *fakeClient) Read(ctx context.Context, id int) (*tms.RemoteTestCase, error) {
	return nil, tms.ErrNotFound
}

func (f *fakeClient) FindProjectID(ctx context.Context, name string) (int, error) {
	return 0, tms.ErrProjectNotFound
}

func (f *fakeClient) ResolveOwner(ctx context.Context) (int, error) { return 7, nil }

func (f *fakeClient) ValidateConnection(ctx context.Context) error { return nil }

func newTestEngine(client tms.Client) *Engine {
	return NewEngine(client, testMapping, logger.NewTestLogger())
}

func TestUpsertCreatesEverywhereWhenNothingMatches(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	eng := newTestEngine(client)

	outcomes, err := eng.Upsert(context.Background(), definition(), []project.Project{project.IOS, project.Android})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	for _, o := range outcomes {
		assert.False(t, o.Failed())
		assert.Equal(t, ActionCreate, o.Action)
		assert.NotZero(t, o.ID)
	}

	// The search phase is exactly one batched call across all targets.
	assert.Equal(t, 1, client.findCalls)
	assert.Equal(t, []int{17, 18}, client.findProjectIDs)
	assert.Equal(t, ActionCreate, Summarize(outcomes))
}

func TestUpsertUpdatesEverywhereWhenAllMatch(t *testing.T) {
	t.Parallel()

	client := &fakeClient{matches: []tms.Match{
		{ID: 100, ProjectID: 17, ETag: "v1"},
		{ID: 200, ProjectID: 18, ETag: "v5"},
	}}
	eng := newTestEngine(client)

	outcomes, err := eng.Upsert(context.Background(), definition(), []project.Project{project.IOS, project.Android})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, ActionUpdate, outcomes[0].Action)
	assert.Equal(t, 100, outcomes[0].ID)
	assert.Equal(t, ActionUpdate, outcomes[1].Action)
	assert.Equal(t, 200, outcomes[1].ID)

	// Each update carries the etag the search returned.
	require.Len(t, client.updated, 2)
	assert.Equal(t, updateCall{ProjectID: 17, ID: 100, ETag: "v1"}, client.updated[0])
	assert.Equal(t, updateCall{ProjectID: 18, ID: 200, ETag: "v5"}, client.updated[1])

	assert.Equal(t, ActionUpdate, Summarize(outcomes))
	assert.Empty(t, client.createdIn)
}

func TestUpsertMixedMode(t *testing.T) {
	t.Parallel()

	// ios has an existing match, android does not: one invocation yields
	// an update and a create, independently tagged.
	client := &fakeClient{matches: []tms.Match{{ID: 100, ProjectID: 17, ETag: "v1"}}}
	eng := newTestEngine(client)

	outcomes, err := eng.Upsert(context.Background(), definition(), []project.Project{project.IOS, project.Android})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, project.IOS, outcomes[0].Project)
	assert.Equal(t, ActionUpdate, outcomes[0].Action)
	assert.Equal(t, 100, outcomes[0].ID)

	assert.Equal(t, project.Android, outcomes[1].Project)
	assert.Equal(t, ActionCreate, outcomes[1].Action)

	assert.Equal(t, ActionMixed, Summarize(outcomes))
}

func TestUpsertAmbiguousTitle(t *testing.T) {
	t.Parallel()

	// Two matches for the same title within one project: that project
	// fails without any write, the sibling continues.
	client := &fakeClient{matches: []tms.Match{
		{ID: 100, ProjectID: 17, ETag: "v1"},
		{ID: 101, ProjectID: 17, ETag: "v2"},
	}}
	eng := newTestEngine(client)

	outcomes, err := eng.Upsert(context.Background(), definition(), []project.Project{project.IOS, project.Android})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	var ambiguous *AmbiguousTitleError
	require.ErrorAs(t, outcomes[0].Err, &ambiguous)
	assert.Equal(t, project.IOS, ambiguous.Project)
	assert.Equal(t, 2, ambiguous.Count)
	assert.Equal(t, ActionNone, outcomes[0].Action)

	assert.False(t, outcomes[1].Failed())
	assert.Equal(t, ActionCreate, outcomes[1].Action)

	// No write reached the ambiguous project.
	assert.Empty(t, client.updated)
	assert.Equal(t, []int{18}, client.createdIn)
}

func TestUpsertProjectFailureIsIndependent(t *testing.T) {
	t.Parallel()

	client := &fakeClient{createErr: map[int]error{17: &tms.APIError{StatusCode: 500, Message: "boom"}}}
	eng := newTestEngine(client)

	outcomes, err := eng.Upsert(context.Background(), definition(), []project.Project{project.IOS, project.Android})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.True(t, outcomes[0].Failed())
	assert.False(t, outcomes[1].Failed())
	assert.Equal(t, []int{18}, client.createdIn)
	assert.Equal(t, ActionMixed, Summarize(outcomes))
}

func TestUpsertStaleETagSurfacesConflict(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		matches:   []tms.Match{{ID: 100, ProjectID: 17, ETag: "stale"}},
		updateErr: map[int]error{17: tms.ErrConflict},
	}
	eng := newTestEngine(client)

	outcomes, err := eng.Upsert(context.Background(), definition(), []project.Project{project.IOS})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	assert.ErrorIs(t, outcomes[0].Err, tms.ErrConflict)
	assert.Equal(t, ActionNone, outcomes[0].Action)
}

func TestUpsertAppliesInDeclarationOrder(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	eng := newTestEngine(client)

	// Request order is web, ios, android; application order is fixed.
	outcomes, err := eng.Upsert(context.Background(), definition(),
		[]project.Project{project.Web, project.IOS, project.Android})
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, project.IOS, outcomes[0].Project)
	assert.Equal(t, project.Android, outcomes[1].Project)
	assert.Equal(t, project.Web, outcomes[2].Project)
	assert.Equal(t, []int{17, 18, 19}, client.createdIn)
}

func TestUpsertSearchFailureAbortsTitle(t *testing.T) {
	t.Parallel()

	client := &fakeClient{findErr: tms.ErrAuth}
	eng := newTestEngine(client)

	outcomes, err := eng.Upsert(context.Background(), definition(), []project.Project{project.IOS})
	assert.ErrorIs(t, err, tms.ErrAuth)
	assert.Nil(t, outcomes)
}

func TestUpsertUnmappedProjectFailsBeforeNetwork(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	eng := NewEngine(client, project.Mapping{project.IOS: 17}, nil)

	_, err := eng.Upsert(context.Background(), definition(), []project.Project{project.IOS, project.Web})
	assert.ErrorIs(t, err, project.ErrProjectNotMapped)
	assert.Zero(t, client.findCalls)
}

func TestUpsertNoTargets(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(&fakeClient{})
	_, err := eng.Upsert(context.Background(), definition(), nil)
	assert.ErrorIs(t, err, ErrNoTargets)
}

func TestUpsertCancelledContext(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	eng := newTestEngine(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, err := eng.Upsert(ctx, definition(), []project.Project{project.IOS, project.Android})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	for _, o := range outcomes {
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
	assert.Empty(t, client.createdIn)
}

func TestUpdateRequiresMatch(t *testing.T) {
	t.Parallel()

	client := &fakeClient{matches: []tms.Match{{ID: 100, ProjectID: 17, ETag: "v1"}}}
	eng := newTestEngine(client)

	outcomes, err := eng.Update(context.Background(), definition(), []project.Project{project.IOS, project.Android})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, ActionUpdate, outcomes[0].Action)
	assert.ErrorIs(t, outcomes[1].Err, ErrNoMatch)
	assert.Empty(t, client.createdIn)
}

func TestCreateIsUnconditional(t *testing.T) {
	t.Parallel()

	// Create never searches, even if a matching record exists remotely.
	client := &fakeClient{matches: []tms.Match{{ID: 100, ProjectID: 17, ETag: "v1"}}}
	eng := newTestEngine(client)

	outcomes, err := eng.Create(context.Background(), definition(), []project.Project{project.IOS})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	assert.Equal(t, ActionCreate, outcomes[0].Action)
	assert.Zero(t, client.findCalls)
}

func TestFindIdempotenceAcrossUpserts(t *testing.T) {
	t.Parallel()

	// Two upserts with the same remote state make the same decision.
	client := &fakeClient{matches: []tms.Match{{ID: 100, ProjectID: 17, ETag: "v1"}}}
	eng := newTestEngine(client)

	first, err := eng.Upsert(context.Background(), definition(), []project.Project{project.IOS})
	require.NoError(t, err)
	second, err := eng.Upsert(context.Background(), definition(), []project.Project{project.IOS})
	require.NoError(t, err)

	assert.Equal(t, first[0].Action, second[0].Action)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, 2, client.findCalls)
}
