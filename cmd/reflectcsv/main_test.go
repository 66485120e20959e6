package main

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenario = `[
  {"type": "Speed", "mph": 10},
  {"type": "Torque", "nm": 50},
  {"type": "Speed", "mph": 20, "gear": 3}
]`

type result struct {
	err    error
	stdout string
	stderr string
}

func execute(t *testing.T, args ...string) result {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return result{err: err, stdout: stdout.String(), stderr: stderr.String()}
}

func setup(t *testing.T) (input, outDir string) {
	t.Helper()
	dir := t.TempDir()
	input = filepath.Join(dir, "export.json")
	require.NoError(t, os.WriteFile(input, []byte(scenario), 0o600))
	return input, filepath.Join(dir, "out")
}

func outputFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []string{}
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRootCmd_Scenario(t *testing.T) {
	input, out := setup(t)

	res := execute(t, input, out)
	require.NoError(t, res.err)
	assert.Equal(t, []string{"Speed.csv", "Torque.csv"}, outputFiles(t, out))

	speed, err := os.ReadFile(filepath.Join(out, "Speed.csv"))
	require.NoError(t, err)
	assert.Equal(t, "mph,gear\n10,\n20,3\n", string(speed))

	assert.Contains(t, res.stdout, "Speed")
	assert.Contains(t, res.stdout, "Torque")
}

func TestRootCmd_Reflections(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{name: "single", args: []string{"-r", "Torque"}, expected: []string{"Torque.csv"}},
		{name: "unknown", args: []string{"-r", "Unknown"}, expected: []string{}},
		{name: "names after flag", args: []string{"-r", "Torque", "Speed"}, expected: []string{"Speed.csv", "Torque.csv"}},
		{name: "comma is part of the name", args: []string{"--reflections", "Speed,Torque"}, expected: []string{}},
		{name: "repeated", args: []string{"-r", "Speed", "-r", "Torque"}, expected: []string{"Speed.csv", "Torque.csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, out := setup(t)
			res := execute(t, append([]string{input, out, "-q"}, tt.args...)...)
			require.NoError(t, res.err)
			assert.Equal(t, tt.expected, outputFiles(t, out))
			assert.Empty(t, res.stdout)
		})
	}
}

func TestRootCmd_ReflectionNamesAreLiteral(t *testing.T) {
	tests := []struct {
		name     string
		filter   string
		expected []string
	}{
		{name: "comma and space", filter: "Sleep, Wake", expected: []string{"Sleep, Wake.csv"}},
		{name: "embedded quotes", filter: `Say "hi"`, expected: []string{"Say _hi_.csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			input := filepath.Join(dir, "export.json")
			require.NoError(t, os.WriteFile(input,
				[]byte(`[{"type": "Sleep, Wake", "hours": 7}, {"type": "Say \"hi\"", "n": 1}, {"type": "Sleep", "hours": 8}]`), 0o600))
			out := filepath.Join(dir, "out")

			res := execute(t, input, out, "-q", "-r", tt.filter)
			require.NoError(t, res.err)
			assert.Equal(t, tt.expected, outputFiles(t, out))
		})
	}
}

func TestRootCmd_DryRun(t *testing.T) {
	input, out := setup(t)

	res := execute(t, input, out, "--dry-run")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Dry run")
	assert.Contains(t, res.stdout, "Speed.csv")
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestRootCmd_Anonymize(t *testing.T) {
	input, out := setup(t)

	res := execute(t, input, out, "-a", "-q")
	require.NoError(t, res.err)

	files := outputFiles(t, out)
	require.Len(t, files, 2)
	for _, name := range files {
		assert.True(t, strings.HasPrefix(name, "reflection_"), name)
	}
}

func TestRootCmd_MetricsFile(t *testing.T) {
	input, out := setup(t)
	metricsPath := filepath.Join(t.TempDir(), "reflectcsv.prom")

	res := execute(t, input, out, "-q", "--metrics-file", metricsPath)
	require.NoError(t, res.err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "reflectcsv_tables_written_total 2")
}

func TestRootCmd_OptionsFile(t *testing.T) {
	input, out := setup(t)
	opts := filepath.Join(t.TempDir(), "options.yaml")
	require.NoError(t, os.WriteFile(opts, []byte("parsing:\n  column_order: alphabetical\noutput:\n  delimiter: \";\"\n"), 0o600))

	res := execute(t, input, out, "-q", "-o", opts)
	require.NoError(t, res.err)

	speed, err := os.ReadFile(filepath.Join(out, "Speed.csv"))
	require.NoError(t, err)
	assert.Equal(t, "gear;mph\n;10\n3;20\n", string(speed))
}

func TestRootCmd_Errors(t *testing.T) {
	t.Run("missing arguments", func(t *testing.T) {
		res := execute(t, "only-one.json")
		require.Error(t, res.err)
	})

	t.Run("extra arguments without -r", func(t *testing.T) {
		input, out := setup(t)
		res := execute(t, input, out, "Speed")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "reflection names follow -r")
	})

	t.Run("nan without anonymize", func(t *testing.T) {
		input, out := setup(t)
		res := execute(t, input, out, "--nan")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "--nan requires --anonymize")
	})

	t.Run("malformed input", func(t *testing.T) {
		dir := t.TempDir()
		input := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(input, []byte(`[{"type":`), 0o600))
		out := filepath.Join(dir, "out")

		res := execute(t, input, out)
		require.Error(t, res.err)
		assert.Contains(t, res.stderr, "conversion failed")
		assert.Equal(t, []string{}, outputFiles(t, out))
	})

	t.Run("missing input", func(t *testing.T) {
		dir := t.TempDir()
		res := execute(t, filepath.Join(dir, "missing.json"), filepath.Join(dir, "out"))
		require.Error(t, res.err)
	})

	t.Run("bad log level", func(t *testing.T) {
		input, out := setup(t)
		res := execute(t, input, out, "--log-level", "loud")
		require.Error(t, res.err)
	})
}
