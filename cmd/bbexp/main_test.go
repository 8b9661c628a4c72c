package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/iasthc/bb-exp/pkg/experiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(append([]string{"--color", "off"}, args...))
	return rootCmd.Execute()
}

func TestParseRequest(t *testing.T) {
	req, err := parseRequest([]string{"40000", "out", "1", "3", "3600", "ocvn-rest", "not;ARAT-RL"})
	require.NoError(t, err)
	assert.Equal(t, experiment.Request{
		BasePort:       40000,
		Dir:            "out",
		MinSeed:        1,
		MaxSeed:        3,
		MaxTimeSeconds: 3600,
		SUTFilter:      "ocvn-rest",
		ToolFilter:     "not;ARAT-RL",
	}, req)

	_, err = parseRequest([]string{"40000", "out", "one", "3", "3600"})
	require.ErrorIs(t, err, experiment.ErrUsage)
	assert.Contains(t, err.Error(), "minSeed")
}

func TestGenerateUsage(t *testing.T) {
	err := execute(t, "generate", "40000", "out")
	require.ErrorIs(t, err, experiment.ErrUsage)
	assert.Contains(t, err.Error(), generateUsage)
}

func TestGenerate(t *testing.T) {
	t.Setenv(experiment.EnvJavaHome8, "/opt/jdk8")
	t.Setenv(experiment.EnvJavaHome11, "/opt/jdk11")
	dir := filepath.Join(t.TempDir(), "exp")

	require.NoError(t, execute(t, "generate", "40000", dir, "0", "1", "60", "ocvn-rest", "schemathesis"))

	scripts, err := os.ReadDir(filepath.Join(dir, "scripts"))
	require.NoError(t, err)
	assert.Len(t, scripts, 2)

	m, err := experiment.LoadManifest(filepath.Join(dir, experiment.ManifestFile))
	require.NoError(t, err)
	require.Len(t, m.Jobs, 2)
	assert.Equal(t, 40010, m.Jobs[1].Key.Port)

	// a second run must not touch the existing batch
	require.ErrorIs(t, execute(t, "generate", "40000", dir, "0", "1", "60", "ocvn-rest", "schemathesis"), experiment.ErrOutputExists)
}

func TestSetColor(t *testing.T) {
	defer func(prev bool) { color.NoColor = prev }(color.NoColor)

	require.NoError(t, setColor("on"))
	assert.False(t, color.NoColor)
	require.NoError(t, setColor("off"))
	assert.True(t, color.NoColor)
	require.Error(t, setColor("sometimes"))
}

func TestSchemaCommands(t *testing.T) {
	p := filepath.Join(t.TempDir(), "openapi.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"swagger": "2.0", "info": {"title": "t", "version": "1"}, "host": "example.org", "paths": {}}`), 0o644))

	require.NoError(t, execute(t, "schema", "update-url-port", p, "40000"))
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"host":"localhost:40000"`)

	require.NoError(t, execute(t, "schema", "json-to-yaml", p))
	assert.FileExists(t, filepath.Join(filepath.Dir(p), "openapi.yaml"))

	require.Error(t, execute(t, "schema", "update-url-port", p, "port"))
}

func TestTokenRequiresSource(t *testing.T) {
	require.Error(t, execute(t, "token"))
}
