package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/MeKo-Tech/moore/internal/contour"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// ContourFixture pairs a grid with the contour the tracer must produce for
// it, or with the error kind it must fail with.
type ContourFixture struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Grid        []string        `yaml:"grid"`
	Expected    []contour.Point `yaml:"expected,omitempty"`
	Error       string          `yaml:"error,omitempty"`
}

// ParsedGrid parses the fixture's rows.
func (f ContourFixture) ParsedGrid(t *testing.T) contour.Grid {
	t.Helper()

	g, err := contour.ParseGrid(strings.Join(f.Grid, "\n"))
	require.NoError(t, err, "fixture %s has a malformed grid", f.Name)
	return g
}

// LoadFixture loads testdata/fixtures/<name>.yaml.
func LoadFixture(t *testing.T, name string) ContourFixture {
	t.Helper()

	path := filepath.Join(GetFixturesDir(t), name+".yaml")
	data, err := os.ReadFile(path) //nolint:gosec // G304: Reading test fixture files with controlled paths
	require.NoError(t, err, "Failed to read fixture file: %s", path)

	var fixture ContourFixture
	require.NoError(t, yaml.Unmarshal(data, &fixture), "Failed to parse fixture: %s", path)
	if fixture.Name == "" {
		fixture.Name = name
	}
	return fixture
}

// LoadAllFixtures loads every fixture in testdata/fixtures, sorted by name.
func LoadAllFixtures(t *testing.T) []ContourFixture {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(GetFixturesDir(t), "*.yaml"))
	require.NoError(t, err)
	sort.Strings(matches)

	fixtures := make([]ContourFixture, 0, len(matches))
	for _, m := range matches {
		fixtures = append(fixtures, LoadFixture(t, strings.TrimSuffix(filepath.Base(m), ".yaml")))
	}
	return fixtures
}
