package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with flags reset to their defaults between calls.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	runCleanups()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

type fileOutput struct {
	File   string `json:"file"`
	Tokens []struct {
		Kind  string `json:"kind"`
		Value any    `json:"value"`
	} `json:"tokens"`
	Diagnostics struct {
		Count       int `json:"count"`
		Diagnostics []struct {
			Code string `json:"code"`
		} `json:"diagnostics"`
	} `json:"diagnostics"`
}

func kinds(f fileOutput) []string {
	out := make([]string, len(f.Tokens))
	for i, tok := range f.Tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizeJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.stck", `1 "a" true macro`)

	out, err := execute(t, "tokenize", "--format", "json", "--no-manifest", path)
	require.NoError(t, err)

	var got fileOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"Int", "Str", "Bool", "Macro"}, kinds(got))
	assert.Equal(t, "a", got.Tokens[1].Value)
	assert.Equal(t, 0, got.Diagnostics.Count)
}

func TestTokenizeReportsLexErrors(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.stck", `""`)

	out, err := execute(t, "tokenize", "--format", "json", "--no-manifest", path)
	require.Error(t, err)
	assert.True(t, errorsReported(err))

	var got fileOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, 1, got.Diagnostics.Count)
	assert.Equal(t, "LEX1003", got.Diagnostics.Diagnostics[0].Code)
}

func TestTokenizeMissingFile(t *testing.T) {
	_, err := execute(t, "tokenize", "--no-manifest", filepath.Join(t.TempDir(), "nope.stck"))
	require.Error(t, err)
	assert.False(t, errorsReported(err))
}

func TestPreprocessJSONWithIncludeDir(t *testing.T) {
	dir := t.TempDir()
	mainPath := writeFile(t, dir, "src/main.stck", `include "lib" inc 2`)
	writeFile(t, dir, "libs/lib.stck", `macro "inc" 1 + end`)

	out, err := execute(t, "preprocess", "--format", "json", "--ui", "off", "--no-manifest",
		"-I", filepath.Join(dir, "libs"), mainPath)
	require.NoError(t, err)

	var got []fileOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Int", "Word", "Int"}, kinds(got[0]))
}

func TestPreprocessDirectoryPretty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.stck", `1`)
	writeFile(t, dir, "b.stck", `2`)

	out, err := execute(t, "preprocess", "--format", "pretty", "--ui", "off", "--no-manifest", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "== "+filepath.Join(dir, "a.stck")+" ==")
	assert.Contains(t, out, "== "+filepath.Join(dir, "b.stck")+" ==")
}

func TestPreprocessFailure(t *testing.T) {
	path := writeFile(t, t.TempDir(), "dup.stck", `macro "a" 1 end macro "a" 2 end`)

	out, err := execute(t, "preprocess", "--format", "json", "--ui", "off", "--no-manifest", path)
	require.Error(t, err)
	assert.True(t, errorsReported(err))

	var got []fileOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Tokens)
	require.NotEmpty(t, got[0].Diagnostics.Diagnostics)
	assert.Equal(t, "PRE2002", got[0].Diagnostics.Diagnostics[0].Code)
}

func TestPreprocessUsesManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "stck.toml", "[package]\nname = \"demo\"\n[preprocess]\ninclude_dirs = [\"lib\"]\n")
	writeFile(t, dir, "lib/std.stck", `macro "two" 2 end`)
	mainPath := writeFile(t, dir, "main.stck", `include "std" two`)

	out, err := execute(t, "preprocess", "--format", "json", "--ui", "off", mainPath)
	require.NoError(t, err)

	var got []fileOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Int"}, kinds(got[0]))
}

func TestPreprocessBadManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "stck.toml", "[package\n")
	mainPath := writeFile(t, dir, "main.stck", `1`)

	_, err := execute(t, "preprocess", "--format", "json", "--ui", "off", mainPath)
	require.Error(t, err)
	assert.True(t, errorsReported(err))
}

func TestPreprocessRejectsUnknownFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.stck", `1`)
	_, err := execute(t, "preprocess", "--format", "xml", "--no-manifest", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, "version", "--format", "json")
	require.NoError(t, err)

	var got versionPayload
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "stck", got.Tool)
	assert.NotEmpty(t, got.Version)
}

func TestUseProgressUI(t *testing.T) {
	pretty := outputFlags{format: "pretty"}
	for _, tc := range []struct {
		value string
		flags outputFlags
		want  bool
	}{
		{"on", pretty, true},
		{" ON ", pretty, true},
		{"off", pretty, false},
		{"on", outputFlags{format: "json"}, false},
		{"on", outputFlags{format: "pretty", quiet: true}, false},
	} {
		got, err := useProgressUI(tc.value, tc.flags)
		require.NoError(t, err, tc.value)
		assert.Equal(t, tc.want, got, tc.value)
	}
	_, err := useProgressUI("sometimes", pretty)
	assert.Error(t, err)
}

func TestResolveColor(t *testing.T) {
	on, err := resolveColor("on", os.Stdout)
	require.NoError(t, err)
	assert.True(t, on)
	off, err := resolveColor("off", os.Stdout)
	require.NoError(t, err)
	assert.False(t, off)
	_, err = resolveColor("rainbow", os.Stdout)
	assert.Error(t, err)
}

func TestTraceToFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.stck", `1`)
	tracePath := filepath.Join(dir, "trace.ndjson")

	_, err := execute(t, "--trace", tracePath, "--trace-level", "phase",
		"preprocess", "--format", "json", "--ui", "off", "--no-manifest", path)
	require.NoError(t, err)

	data, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"preprocess"`)
}
