package usecase

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `{
  "Sanctions": [
    {"use_case": "Wire transfer sanctions screening", "risk": "High", "scenario": "wire transfer to sanctioned entity"},
    {"use_case": "Name fuzzy matching", "risk": "Medium"}
  ],
  "AML": [
    {"use_case": "Structuring detection", "category": "AML", "scenario": "cash deposits under threshold"}
  ],
  "Fraud": []
}`

func TestParseCatalog_PreservesOrder(t *testing.T) {
	cat, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)

	assert.Equal(t, []string{"Sanctions", "AML", "Fraud"}, cat.Categories())
	assert.Equal(t, 3, cat.Len())
	require.Len(t, cat.Groups[0].UseCases, 2)
	assert.Equal(t, "Wire transfer sanctions screening", cat.Groups[0].UseCases[0].UseCase)
	assert.Equal(t, RiskHigh, cat.Groups[0].UseCases[0].Risk)
	assert.Equal(t, "Name fuzzy matching", cat.Groups[0].UseCases[1].UseCase)
	assert.NotNil(t, cat.Groups[2].UseCases)
	assert.Empty(t, cat.Groups[2].UseCases)
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"array top level", `[{"use_case": "x"}]`},
		{"non-list value", `{"A": {"use_case": "x"}}`},
		{"truncated", `{"A": [`},
		{"trailing data", `{"A": []} {"B": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestParseCatalog_DuplicateCategoryKeepsFirstPosition(t *testing.T) {
	cat, err := ParseCatalog([]byte(`{"A": [{"use_case": "one"}], "B": [], "A": [{"use_case": "two"}]}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, cat.Categories())
	require.Len(t, cat.Groups[0].UseCases, 1)
	assert.Equal(t, "two", cat.Groups[0].UseCases[0].UseCase)
}

func TestCatalog_JSONRoundTripKeepsOrder(t *testing.T) {
	cat, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)

	data, err := json.Marshal(cat)
	require.NoError(t, err)

	var back Catalog
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, cat, back)
}

func TestParseCatalogYAML(t *testing.T) {
	input := `
Sanctions:
  - use_case: Wire transfer sanctions screening
    risk: High
    scenario: wire transfer to sanctioned entity
AML:
  - use_case: Structuring detection
`
	cat, err := ParseCatalogYAML([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"Sanctions", "AML"}, cat.Categories())
	assert.Equal(t, "wire transfer to sanctioned entity", cat.Groups[0].UseCases[0].Scenario)

	_, err = ParseCatalogYAML([]byte("- just\n- a list\n"))
	assert.Error(t, err)
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "current_config.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(sampleCatalog), 0644))
	cat, err := LoadCatalog(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 3, cat.Len())

	yamlPath := filepath.Join(dir, "cases.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("A:\n  - use_case: x\n"), 0644))
	cat, err = LoadCatalog(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())

	_, err = LoadCatalog(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
