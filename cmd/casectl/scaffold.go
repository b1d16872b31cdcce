package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"casectl/project"
	"casectl/testcase"
)

func newGenerateCmd() *cobra.Command {
	var appName, projectPath string

	cmd := &cobra.Command{
		Use:   "generate <title>...",
		Short: "Generate test case file templates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := project.ParseApp(appName)
			if err != nil {
				return err
			}

			for _, title := range args {
				path := app.TestFilePath(projectPath, title)

				if _, err := os.Stat(path); err == nil {
					printFailure(fmt.Sprintf("File already exists: %s", path))
					continue
				}

				if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
					return fmt.Errorf("failed to create app folder: %w", err)
				}
				if err := os.WriteFile(path, []byte(testcase.Template(title)), 0644); err != nil {
					return fmt.Errorf("failed to write template: %w", err)
				}

				printSuccess("Generated " + path)
			}
			return nil
		},
	}

	addTargetFlags(cmd, &appName, &projectPath)
	return cmd
}

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage the project folder",
	}

	cmd.AddCommand(newProjectInitCmd())
	return cmd
}

// project init resolves every known project's remote id and writes the
// .project.yaml mapping the sync commands consume.
func newProjectInitCmd() *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Resolve remote project ids and write " + project.MappingFileName,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			mapping := project.Mapping{}
			for _, p := range project.Order() {
				id, err := client.FindProjectID(cmd.Context(), string(p))
				if err != nil {
					printFailure(fmt.Sprintf("Could not resolve project %q: %v", p, err))
					printRequestHints(err)
					return errSyncIncomplete
				}
				mapping[p] = id
				printSuccess(fmt.Sprintf("Project %q -> %d", p, id))
			}

			if err := mapping.Save(projectPath); err != nil {
				return err
			}

			printSuccess("Wrote " + filepath.Join(projectPath, project.MappingFileName))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "project-path", ".", "Path to the project folder")
	return cmd
}
