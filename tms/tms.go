// Package tms defines the boundary to an external test management system.
// Exactly one provider (Testiny) is implemented today; the interface keeps
// the reconciliation engine testable with an injected fake.
package tms

import (
	"context"
	"errors"
	"fmt"

	"casectl/testcase"
)

var (
	// ErrAuth is returned when the remote service rejects the API key.
	ErrAuth = errors.New("credentials rejected by remote service")

	// ErrNotFound is returned when the referenced test case id does not exist.
	ErrNotFound = errors.New("test case not found")

	// ErrConflict is returned when an update carries a stale concurrency token.
	// The caller decides whether to re-read and retry; the client never does.
	ErrConflict = errors.New("test case changed remotely, concurrency token is stale")

	// ErrNoOwner is returned when no user is associated with the API key.
	ErrNoOwner = errors.New("no user found associated with the given API key")

	// ErrProjectNotFound is returned when a project name resolves to nothing.
	ErrProjectNotFound = errors.New("project not found")

	// ErrInvalidProvider is returned for an unknown provider type.
	ErrInvalidProvider = errors.New("invalid provider type")
)

// APIError represents a remote failure outside the mapped error taxonomy.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote request failed (%d): %s", e.StatusCode, e.Message)
}

// Match is one find-by-title result: a remote test case id, the project it
// lives in, and the concurrency token for its current version.
type Match struct {
	ID        int    `json:"id"`
	ProjectID int    `json:"project_id"`
	ETag      string `json:"_etag"`
}

// RemoteTestCase is a test case as known to the remote service, with the
// flattened text fields already split back into ordered lists.
type RemoteTestCase struct {
	ID              int      `json:"id"`
	ProjectID       int      `json:"project_id"`
	OwnerUserID     int      `json:"owner_user_id"`
	Title           string   `json:"title"`
	Preconditions   []string `json:"preconditions"`
	Steps           []string `json:"steps"`
	ExpectedResults []string `json:"expected_results"`
	ETag            string   `json:"_etag"`
}

// Client is the set of primitive remote operations the reconciliation
// engine depends on. All calls block until the HTTP response or timeout;
// nothing is retried.
type Client interface {
	// FindByTitle searches every given project for test cases with an
	// exactly matching title, in a single batched request.
	FindByTitle(ctx context.Context, title string, projectIDs []int) ([]Match, error)

	// Create submits a new test case in one project and returns the
	// id assigned by the remote service. Not idempotent.
	Create(ctx context.Context, projectID int, tc *testcase.TestCase) (int, error)

	// Update overwrites an existing test case. The etag must match the
	// record's current version; a stale token yields ErrConflict.
	// Returns the new etag on success.
	Update(ctx context.Context, projectID, id int, tc *testcase.TestCase, etag string) (string, error)

	// Read fetches a single test case by id.
	Read(ctx context.Context, id int) (*RemoteTestCase, error)

	// FindProjectID resolves a remote project name to its id.
	FindProjectID(ctx context.Context, name string) (int, error)

	// ResolveOwner returns the user id associated with the API key.
	// Used during configuration, not during steady-state sync.
	ResolveOwner(ctx context.Context) (int, error)

	// ValidateConnection checks that the configured credentials work.
	ValidateConnection(ctx context.Context) error
}
