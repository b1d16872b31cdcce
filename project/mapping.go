package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MappingFileName is the per-repo file mapping project names to remote ids.
const MappingFileName = ".project.yaml"

// ErrProjectNotMapped is returned when the mapping file lacks a project.
var ErrProjectNotMapped = errors.New("project is not mapped to a remote id")

// Mapping resolves logical project names to remote project ids. It is
// loaded once per invocation and consumed read-only.
type Mapping map[Project]int

// LoadMapping reads <projectPath>/.project.yaml.
func LoadMapping(projectPath string) (Mapping, error) {
	path := filepath.Join(projectPath, MappingFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project mapping %s: %w", path, err)
	}

	var raw map[string]int
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse project mapping %s: %w", path, err)
	}

	m := make(Mapping, len(raw))
	for name, id := range raw {
		p, err := Parse(name)
		if err != nil {
			return nil, fmt.Errorf("project mapping %s: %w", path, err)
		}
		m[p] = id
	}

	return m, nil
}

// Save writes the mapping to <projectPath>/.project.yaml.
func (m Mapping) Save(projectPath string) error {
	raw := make(map[string]int, len(m))
	for p, id := range m {
		raw[string(p)] = id
	}

	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal project mapping: %w", err)
	}

	path := filepath.Join(projectPath, MappingFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project mapping %s: %w", path, err)
	}
	return nil
}

// ProjectID resolves one project, with a hint to rerun scaffolding when the
// mapping file is incomplete.
func (m Mapping) ProjectID(p Project) (int, error) {
	id, ok := m[p]
	if !ok {
		return 0, fmt.Errorf("%w: %q (run `casectl project init` to regenerate %s)", ErrProjectNotMapped, p, MappingFileName)
	}
	return id, nil
}
