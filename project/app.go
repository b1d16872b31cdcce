package project

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrUnknownApp is returned when a name is not a known app selector.
var ErrUnknownApp = errors.New("unknown app")

// App is a selector mapping to the set of remote projects a test title
// should be mirrored into, plus the folder its test files live in.
type App struct {
	Name     string
	Path     string
	Projects []Project
}

// The app selectors. "mobile" and "app" fan out to several projects;
// Projects are listed in declaration order already.
var apps = []App{
	{Name: "ios", Path: filepath.Join("app", "mobile", "ios"), Projects: []Project{IOS}},
	{Name: "android", Path: filepath.Join("app", "mobile", "android"), Projects: []Project{Android}},
	{Name: "mobile", Path: filepath.Join("app", "mobile"), Projects: []Project{IOS, Android}},
	{Name: "web", Path: filepath.Join("app", "web"), Projects: []Project{Web}},
	{Name: "app", Path: "app", Projects: []Project{IOS, Android, Web}},
}

// Apps returns every app selector.
func Apps() []App {
	out := make([]App, len(apps))
	copy(out, apps)
	return out
}

// AppNames returns the selector names, for CLI help text.
func AppNames() []string {
	names := make([]string, len(apps))
	for i, a := range apps {
		names[i] = a.Name
	}
	return names
}

// ParseApp resolves an app selector by name.
func ParseApp(name string) (App, error) {
	for _, a := range apps {
		if a.Name == name {
			return a, nil
		}
	}
	return App{}, fmt.Errorf("%w: %q", ErrUnknownApp, name)
}

// TestFilePath returns the path of a title's test case file inside the
// app's folder under the project root.
func (a App) TestFilePath(projectPath, title string) string {
	return filepath.Join(projectPath, a.Path, title+".yaml")
}
