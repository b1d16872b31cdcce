package testiny

import (
	"strings"

	"casectl/testcase"
	"casectl/tms"
)

// The Testiny test case schema stores structured lists as flattened
// newline-delimited text. This file is the single place that flattens on
// write and splits on read. The encoding is lossy at the edges: an entry
// containing a literal newline, and an empty-string entry, are
// indistinguishable from separators once joined. That asymmetry is part of
// the remote schema, not something to correct here.

// templateText is the fixed template discriminator the remote schema
// requires on every create and update.
const templateText = "TEXT"

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}

// wireTestCase is the create/update request body in the remote vocabulary.
type wireTestCase struct {
	Title              string `json:"title"`
	PreconditionText   string `json:"precondition_text"`
	StepsText          string `json:"steps_text"`
	ExpectedResultText string `json:"expected_result_text"`
	ProjectID          int    `json:"project_id"`
	Template           string `json:"template"`
	OwnerUserID        int    `json:"owner_user_id"`
	ETag               string `json:"_etag,omitempty"`
}

func toWire(projectID int, tc *testcase.TestCase, ownerUserID int) wireTestCase {
	return wireTestCase{
		Title:              tc.Title,
		PreconditionText:   joinLines(tc.Preconditions),
		StepsText:          joinLines(tc.Steps),
		ExpectedResultText: joinLines(tc.ExpectedResults),
		ProjectID:          projectID,
		Template:           templateText,
		OwnerUserID:        ownerUserID,
	}
}

// wireTestCaseResponse is a test case as returned by the remote service.
type wireTestCaseResponse struct {
	ID                 int    `json:"id"`
	ProjectID          int    `json:"project_id"`
	OwnerUserID        int    `json:"owner_user_id"`
	Title              string `json:"title"`
	PreconditionText   string `json:"precondition_text"`
	StepsText          string `json:"steps_text"`
	ExpectedResultText string `json:"expected_result_text"`
	ETag               string `json:"_etag"`
}

func fromWire(w *wireTestCaseResponse) *tms.RemoteTestCase {
	return &tms.RemoteTestCase{
		ID:              w.ID,
		ProjectID:       w.ProjectID,
		OwnerUserID:     w.OwnerUserID,
		Title:           w.Title,
		Preconditions:   splitLines(w.PreconditionText),
		Steps:           splitLines(w.StepsText),
		ExpectedResults: splitLines(w.ExpectedResultText),
		ETag:            w.ETag,
	}
}
