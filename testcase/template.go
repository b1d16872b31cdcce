package testcase

import "fmt"

// Template returns the scaffold YAML body for a new test case file with the
// given title. The placeholder entries are empty strings so the generated
// document parses and validates as-is.
func Template(title string) string {
	return fmt.Sprintf(
		"title: %s\n"+
			"preconditions:\n"+
			"  - \"\"\n"+
			"steps:\n"+
			"  - \"\"\n"+
			"expected results:\n"+
			"  - \"\"\n",
		title,
	)
}
