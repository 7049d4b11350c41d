package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// Item data is base64-encoded in the host JSON form; "Mg==" is "2".
const hostNotebookJSON = `{
  "cells": [
    {"kind": 1, "source": "# Report", "language": "markdown"},
    {
      "kind": 2,
      "source": "SELECT 1",
      "language": "sql",
      "outputs": [
        {"id": "o1", "items": [{"mime": "text/plain", "data": "Mg=="}]}
      ]
    }
  ]
}`

func TestConvertCommandRoundTrip(t *testing.T) {
	dir := t.TempDir()
	hostPath := filepath.Join(dir, "notebook.host.json")
	appPath := filepath.Join(dir, "notebook.ipynb")
	backPath := filepath.Join(dir, "notebook.back.json")

	require.NoError(t, os.WriteFile(hostPath, []byte(hostNotebookJSON), 0o644))

	// convert and plan both declare input/output flags; binding them all at
	// init would leave convert reading plan's never-set values. The file
	// paths below only reach runConvert when its own flags are bound.
	require.NoError(t, runCLI(t, "convert", "--direction", "to-app", "--input", hostPath, "--output", appPath))
	assert.Equal(t, hostPath, viper.GetString("input"))
	assert.Equal(t, appPath, viper.GetString("output"))

	appData, err := os.ReadFile(appPath)
	require.NoError(t, err)
	assert.Contains(t, string(appData), `"execute_result"`)
	assert.Contains(t, string(appData), "SELECT 1")

	require.NoError(t, runCLI(t, "convert", "--direction", "to-host", "--input", appPath, "--output", backPath))

	backData, err := os.ReadFile(backPath)
	require.NoError(t, err)
	assert.Contains(t, string(backData), "SELECT 1")
	assert.Contains(t, string(backData), `"o1"`)
}

func TestConvertCommandMissingInput(t *testing.T) {
	err := runCLI(t, "convert", "--direction", "to-app", "--input", filepath.Join(t.TempDir(), "absent.json"), "--output", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read input")
}

func TestPlanCommandFromFile(t *testing.T) {
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.json")
	outPath := filepath.Join(dir, "plan.dot")

	planJSON := `[{"name": "SEQ_SCAN", "extra_info": {"Estimated Cardinality": "10", "Table": "orders"}, "children": []}]`
	require.NoError(t, os.WriteFile(planPath, []byte(planJSON), 0o644))

	require.NoError(t, runCLI(t, "plan", "--input", planPath, "--format", "dot", "--output", outPath))
	assert.Equal(t, planPath, viper.GetString("input"))

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(out), "SEQ_SCAN")
	assert.Contains(t, string(out), "orders")
}

func TestPlanCommandUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.json")
	require.NoError(t, os.WriteFile(planPath, []byte(`[{"name": "SEQ_SCAN", "children": []}]`), 0o644))

	err := runCLI(t, "plan", "--input", planPath, "--format", "jpeg", "--output", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported plan format")
}
