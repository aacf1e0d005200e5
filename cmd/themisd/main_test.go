package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blockberries/themis/script"
	"github.com/blockberries/themis/types"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("THEMIS_LISTEN_ADDRESS", "")
	t.Setenv("THEMIS_LOG_LEVEL", "")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestPrepareCommand(t *testing.T) {
	out, err := run(t, "prepare", script.NameOwnership,
		"--application", "twitter", "--method", "tweet", "--value", "1392033585675317252")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, float64(49), got["source_id"])
	require.Equal(t, float64(0), got["external_id"])
	require.Equal(t, "tweet 1392033585675317252", got["calldata"])
}

func TestExecuteCommand(t *testing.T) {
	out, err := run(t, "execute", script.NameLink,
		"--application", "twitter", "--call-data", "74776565742031",
		"--response", "https://t.co/bLokglOAel\n",
		"--response", "https://t.co/bLokglOAel\n",
		"--min-count", "2")
	require.NoError(t, err)

	var got types.LinkResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.True(t, got.Valid)
	require.Equal(t, "https://t.co/bLokglOAel", got.URL)
}

func TestExecuteCommand_StructuralError(t *testing.T) {
	_, err := run(t, "execute", script.NameLink, "--application", "myspace", "--response", "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "UnsupportedApplication")
}

func TestScriptsCommand(t *testing.T) {
	out, err := run(t, "scripts")
	require.NoError(t, err)
	for _, name := range []string{script.NameLink, script.NameOwnership, script.NameOwnershipUsername, script.NamePresence, script.NameProof} {
		require.Contains(t, out, name+"\n")
	}
	require.True(t, strings.HasPrefix(out, script.NameLink+"\n"), "scripts are listed in name order")
}

func TestConfigSourcesOverride(t *testing.T) {
	t.Setenv("THEMIS_LISTEN_ADDRESS", "")
	t.Setenv("THEMIS_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "themis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources:\n  twitter: 4900\n"), 0644))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", path, "prepare", script.NameOwnership,
		"--application", "twitter", "--method", "tweet", "--value", "1"})
	require.NoError(t, root.Execute())

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Equal(t, float64(4900), got["source_id"])
}

func TestDecodeResult_UnknownShape(t *testing.T) {
	_, err := decodeResult(script.Shape(0), nil)
	require.Error(t, err)
}
