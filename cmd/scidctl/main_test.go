package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scid-pd-engine/internal/domain"
)

const testCatalog = `
version: test
modules:
  - id: short_pd
    name: Short Personality Disorder
    cluster: cluster_b
    diagnostic_threshold: 0.5
    dimensional_threshold: 60
    minimum_criteria_count: 1
    questions:
      - {id: q1, response_type: yes_no, trait: impulsivity, dimension: behavioral}
      - {id: q2, response_type: yes_no, trait: anger, dimension: affective}
`

const transcript = `{
  "clinician_notes": "Collateral history pending.",
  "modules": [
    {"module_id": "short_pd", "responses": {"q1": {"value": "yes"}, "q2": {"value": true}}}
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func sqliteConfig(t *testing.T, dir, dbName string) string {
	t.Helper()
	return writeFile(t, dir, dbName+".yaml", "storage:\n  driver: sqlite\n  sqlite_path: "+filepath.Join(dir, dbName+".db")+"\n")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCatalogList(t *testing.T) {
	out, err := execute(t, "catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "avoidant_pd")
	assert.Contains(t, out, "borderline_pd")
	assert.Contains(t, out, "MIN CRITERIA")

	out, err = execute(t, "catalog", "list", "--cluster", "cluster_c")
	require.NoError(t, err)
	assert.Contains(t, out, "avoidant_pd")
	assert.NotContains(t, out, "borderline_pd")
}

func TestCatalogValidate(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "catalog", "validate", writeFile(t, dir, "catalog.yaml", testCatalog))
	require.NoError(t, err)
	assert.Contains(t, out, "1 modules, 2 questions")
	assert.Contains(t, out, "Cluster B: 1")

	_, err = execute(t, "catalog", "validate", writeFile(t, dir, "broken.yaml", "modules: [{id: x}]"))
	assert.Error(t, err)

	_, err = execute(t, "catalog", "validate", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestScore(t *testing.T) {
	dir := t.TempDir()
	catalogPath := writeFile(t, dir, "catalog.yaml", testCatalog)
	responses := writeFile(t, dir, "responses.json", transcript)
	cfg := sqliteConfig(t, dir, "score")

	t.Run("report", func(t *testing.T) {
		out, err := execute(t, "--config", cfg, "score", responses, "--catalog", catalogPath)
		require.NoError(t, err)
		assert.Contains(t, out, "SCID-PD PERSONALITY ASSESSMENT REPORT")
		assert.Contains(t, out, "Personality Disorders Meeting Criteria: 1")
		assert.Contains(t, out, "Collateral history pending.")
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "--config", cfg, "score", responses, "--catalog", catalogPath, "--format", "json")
		require.NoError(t, err)

		var profile domain.Profile
		require.NoError(t, json.Unmarshal([]byte(out), &profile))
		assert.True(t, profile.Completed)
		require.Len(t, profile.ModuleResults, 1)
		assert.True(t, profile.ModuleResults[0].CriteriaMet)
	})

	t.Run("yaml transcript", func(t *testing.T) {
		yamlResponses := writeFile(t, dir, "responses.yaml", `
modules:
  - module_id: short_pd
    responses:
      q1: {value: "no"}
      q2: {value: "no"}
`)
		out, err := execute(t, "--config", cfg, "score", yamlResponses, "--catalog", catalogPath, "--format", "json")
		require.NoError(t, err)

		var profile domain.Profile
		require.NoError(t, json.Unmarshal([]byte(out), &profile))
		require.Len(t, profile.ModuleResults, 1)
		assert.False(t, profile.ModuleResults[0].CriteriaMet)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := execute(t, "--config", cfg, "score", responses, "--catalog", catalogPath, "--format", "xml")
		assert.ErrorContains(t, err, "unknown format")

		unknown := writeFile(t, dir, "unknown.json", `{"modules": [{"module_id": "nope", "responses": {}}]}`)
		_, err = execute(t, "--config", cfg, "score", unknown, "--catalog", catalogPath)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		empty := writeFile(t, dir, "empty.json", `{"modules": []}`)
		_, err = execute(t, "--config", cfg, "score", empty, "--catalog", catalogPath)
		assert.ErrorContains(t, err, "lists no modules")

		invalid := writeFile(t, dir, "invalid.json", `{"modules": [{"module_id": "short_pd", "responses": {"q1": {"value": "maybe"}}}]}`)
		_, err = execute(t, "--config", cfg, "score", invalid, "--catalog", catalogPath)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestScoreSaveExportImport(t *testing.T) {
	dir := t.TempDir()
	catalogPath := writeFile(t, dir, "catalog.yaml", testCatalog)
	responses := writeFile(t, dir, "responses.json", transcript)
	source := sqliteConfig(t, dir, "source")
	target := sqliteConfig(t, dir, "target")

	for i := 0; i < 2; i++ {
		_, err := execute(t, "--config", source, "score", responses, "--catalog", catalogPath, "--save")
		require.NoError(t, err)
	}

	exportPath := filepath.Join(dir, "export.json")
	out, err := execute(t, "--config", source, "export", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 2 profiles")

	out, err = execute(t, "--config", target, "import", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 profiles, skipped 0")

	out, err = execute(t, "--config", target, "import", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 0 profiles, skipped 2")

	out, err = execute(t, "--config", target, "export", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"count": 2`)
}

func TestStoreCommandErrors(t *testing.T) {
	dir := t.TempDir()
	memory := writeFile(t, dir, "memory.yaml", "storage:\n  driver: memory\n")

	_, err := execute(t, "--config", memory, "export", filepath.Join(dir, "out.json"))
	assert.ErrorContains(t, err, "memory driver")

	_, err = execute(t, "--config", memory, "migrate", "up")
	assert.ErrorContains(t, err, "postgres driver only")

	_, err = execute(t, "--config", filepath.Join(dir, "missing.yaml"), "export", "-")
	assert.Error(t, err)
}
