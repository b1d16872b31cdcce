package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendToFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(content)
	return err
}

func TestParse(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"ios", "android", "web"} {
		p, err := Parse(name)
		require.NoError(t, err)
		assert.Equal(t, name, string(p))
	}

	_, err := Parse("desktop")
	assert.ErrorIs(t, err, ErrUnknownProject)
}

func TestSortIsDeclarationOrder(t *testing.T) {
	t.Parallel()

	// Request order must not matter.
	assert.Equal(t, []Project{IOS, Android, Web}, Sort([]Project{Web, IOS, Android}))
	assert.Equal(t, []Project{IOS, Web}, Sort([]Project{Web, IOS}))
}

func TestSortDropsDuplicates(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []Project{Android}, Sort([]Project{Android, Android}))
}

func TestParseApp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		projects []Project
	}{
		{name: "ios", projects: []Project{IOS}},
		{name: "android", projects: []Project{Android}},
		{name: "mobile", projects: []Project{IOS, Android}},
		{name: "web", projects: []Project{Web}},
		{name: "app", projects: []Project{IOS, Android, Web}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app, err := ParseApp(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.projects, app.Projects)
		})
	}

	_, err := ParseApp("backend")
	assert.ErrorIs(t, err, ErrUnknownApp)
}

func TestTestFilePath(t *testing.T) {
	t.Parallel()

	app, err := ParseApp("ios")
	require.NoError(t, err)
	assert.Equal(t,
		filepath.Join("repo", "app", "mobile", "ios", "Login works.yaml"),
		app.TestFilePath("repo", "Login works"))
}

func TestMappingRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := Mapping{IOS: 17, Android: 18, Web: 19}
	require.NoError(t, m.Save(dir))

	loaded, err := LoadMapping(dir)
	require.NoError(t, err)
	assert.Equal(t, m, loaded)

	id, err := loaded.ProjectID(Android)
	require.NoError(t, err)
	assert.Equal(t, 18, id)
}

func TestMappingMissingProject(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, Mapping{IOS: 17}.Save(dir))

	loaded, err := LoadMapping(dir)
	require.NoError(t, err)

	_, err = loaded.ProjectID(Web)
	assert.ErrorIs(t, err, ErrProjectNotMapped)
}

func TestLoadMappingMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadMapping(t.TempDir())
	assert.Error(t, err)
}

func TestLoadMappingUnknownProject(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, Mapping{IOS: 17}.Save(dir))

	// Corrupt the file with a key Parse rejects.
	path := filepath.Join(dir, MappingFileName)
	require.NoError(t, appendToFile(path, "desktop: 99\n"))

	_, err := LoadMapping(dir)
	assert.ErrorIs(t, err, ErrUnknownProject)
}
