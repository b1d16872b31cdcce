package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"casectl/tms"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	partialStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
)

func printMessage(msg string) {
	fmt.Println(msg)
}

func printSuccess(msg string) {
	fmt.Println(successStyle.Render("✔ " + msg))
}

func printFailure(msg string) {
	fmt.Println(failureStyle.Render("[ERR] " + msg))
}

// printTally colors the final summary: green when everything synced, red
// when nothing did, yellow in between.
func printTally(done, total int, verb string) {
	msg := fmt.Sprintf("%s %d/%d test cases.", verb, done, total)
	switch {
	case done == total:
		fmt.Println(successStyle.Render(msg))
	case done == 0:
		fmt.Println(failureStyle.Render(msg))
	default:
		fmt.Println(partialStyle.Render(msg))
	}
}

func printHint(msg string) {
	fmt.Println(hintStyle.Render("Hint: ") + msg)
}

// printRequestHints adds a recovery hint for the remote failures a user can
// act on.
func printRequestHints(err error) {
	switch {
	case errors.Is(err, tms.ErrAuth), errors.Is(err, tms.ErrNoOwner):
		printHint("Are you sure you used the correct API key? Try `casectl config init --api-key <key>`.")
	case errors.Is(err, tms.ErrNotFound):
		printHint("Are you sure you used the correct test case ID?")
		printHint("Are you sure the project mapping in .project.yaml is accurate?")
	}
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to marshal JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printTable(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}
