package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"casectl/project"
	"casectl/reconcile"
	"casectl/testcase"
)

// errSyncIncomplete makes the process exit non-zero after per-pair failures
// have already been reported in detail.
var errSyncIncomplete = fmt.Errorf("one or more test cases failed")

type syncOp func(ctx context.Context, eng *reconcile.Engine, tc *testcase.TestCase, targets []project.Project) ([]reconcile.Outcome, error)

// outcomeJSON is the machine-readable form of one (title, project) outcome.
type outcomeJSON struct {
	Title   string `json:"title"`
	Project string `json:"project"`
	Action  string `json:"action,omitempty"`
	ID      int    `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

func newUpsertCmd() *cobra.Command {
	var appName, projectPath string

	cmd := &cobra.Command{
		Use:   "upsert <title>...",
		Short: "Create a new test case or update an existing one (title matching)",
		Long: "For every title, searches each target project for a test case with the same\n" +
			"title: projects with no match get a new test case, projects with exactly one\n" +
			"match have it overwritten. More than one match in a project is an ambiguity\n" +
			"and fails that project without writing.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, args, appName, projectPath, "Synced",
				func(ctx context.Context, eng *reconcile.Engine, tc *testcase.TestCase, targets []project.Project) ([]reconcile.Outcome, error) {
					return eng.Upsert(ctx, tc, targets)
				})
		},
	}

	addTargetFlags(cmd, &appName, &projectPath)
	return cmd
}

func newCreateCmd() *cobra.Command {
	var appName, projectPath string

	cmd := &cobra.Command{
		Use:   "create <title>...",
		Short: "Create test cases from YAML files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, args, appName, projectPath, "Created",
				func(ctx context.Context, eng *reconcile.Engine, tc *testcase.TestCase, targets []project.Project) ([]reconcile.Outcome, error) {
					return eng.Create(ctx, tc, targets)
				})
		},
	}

	addTargetFlags(cmd, &appName, &projectPath)
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var appName, projectPath string

	cmd := &cobra.Command{
		Use:   "update <title>...",
		Short: "Overwrite existing test cases (title matching)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, args, appName, projectPath, "Updated",
				func(ctx context.Context, eng *reconcile.Engine, tc *testcase.TestCase, targets []project.Project) ([]reconcile.Outcome, error) {
					return eng.Update(ctx, tc, targets)
				})
		},
	}

	addTargetFlags(cmd, &appName, &projectPath)
	return cmd
}

func addTargetFlags(cmd *cobra.Command, appName, projectPath *string) {
	cmd.Flags().StringVar(appName, "app", "", "App selector: "+strings.Join(project.AppNames(), ", ")+" (required)")
	cmd.MarkFlagRequired("app")
	cmd.Flags().StringVar(projectPath, "project-path", ".", "Path to the project folder")
}

// runSync drives one engine operation over the titles given on the command
// line, in that order. A failure for one title never prevents a report on
// the others.
func runSync(cmd *cobra.Command, titles []string, appName, projectPath, verb string, op syncOp) error {
	app, err := project.ParseApp(appName)
	if err != nil {
		return err
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	mapping, err := project.LoadMapping(projectPath)
	if err != nil {
		return err
	}

	eng := reconcile.NewEngine(client, mapping, getLogger())

	var results []outcomeJSON
	done, total := 0, 0

	for _, title := range titles {
		path := app.TestFilePath(projectPath, title)

		tc, err := testcase.Load(path)
		if err == nil {
			err = testcase.ValidateWithLimits(tc, testcase.DefaultValidationLimits())
		}
		if err != nil {
			// Local validation failed; nothing was sent for this title.
			total += len(app.Projects)
			results = append(results, outcomeJSON{Title: title, Error: err.Error()})
			if !flagJSON {
				printFailure(fmt.Sprintf("Failed to load test case `%s`: %v", path, err))
			}
			continue
		}

		outcomes, err := op(cmd.Context(), eng, tc, app.Projects)
		if err != nil {
			total += len(app.Projects)
			results = append(results, outcomeJSON{Title: title, Error: err.Error()})
			if !flagJSON {
				printFailure(fmt.Sprintf("Failed to sync `%s`: %v", title, err))
				printRequestHints(err)
			}
			continue
		}

		total += len(outcomes)
		for _, o := range outcomes {
			row := outcomeJSON{Title: title, Project: string(o.Project), Action: string(o.Action), ID: o.ID}
			if o.Failed() {
				row.Error = o.Err.Error()
				if !flagJSON {
					printFailure(fmt.Sprintf("%s [%s]: %v", title, o.Project, o.Err))
					printRequestHints(o.Err)
				}
			} else {
				done++
				if !flagJSON {
					printSuccess(fmt.Sprintf("%s [%s]: %s test case `%d`", title, o.Project, o.Action, o.ID))
				}
			}
			results = append(results, row)
		}

		if !flagJSON && len(outcomes) > 1 {
			printMessage(fmt.Sprintf("  -> %s", describeSummary(reconcile.Summarize(outcomes))))
		}
	}

	if flagJSON {
		printJSON(results)
	} else if len(titles) > 1 || total > 1 {
		printTally(done, total, verb)
	}

	if done != total {
		return errSyncIncomplete
	}
	return nil
}

func describeSummary(a reconcile.Action) string {
	switch a {
	case reconcile.ActionCreate:
		return "all projects: CREATE"
	case reconcile.ActionUpdate:
		return "all projects: UPDATE"
	case reconcile.ActionMixed:
		return "mixed outcome, see per-project lines above"
	default:
		return "no writes applied"
	}
}

func newReadCmd() *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read an existing test case (search by ID)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			remote, err := client.Read(cmd.Context(), id)
			if err != nil {
				printRequestHints(err)
				return err
			}

			if flagJSON {
				printJSON(remote)
				return nil
			}

			printTable([]string{"FIELD", "VALUE"}, [][]string{
				{"ID", fmt.Sprintf("%d", remote.ID)},
				{"Project ID", fmt.Sprintf("%d", remote.ProjectID)},
				{"Title", remote.Title},
				{"Owner user ID", fmt.Sprintf("%d", remote.OwnerUserID)},
			})
			printList("Preconditions", remote.Preconditions)
			printList("Steps", remote.Steps)
			printList("Expected results", remote.ExpectedResults)
			return nil
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "Test case ID (required)")
	cmd.MarkFlagRequired("id")
	return cmd
}

func printList(name string, lines []string) {
	printMessage(name + ":")
	for _, line := range lines {
		printMessage("  - " + line)
	}
}
