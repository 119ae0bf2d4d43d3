package main

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vecquant/codebook"
)

func TestBuildCmd_Definition(t *testing.T) {
	flags := buildCmd.Flags()

	entries := flags.Lookup("entries")
	require.NotNil(t, entries)
	assert.Equal(t, "k", entries.Shorthand)
	assert.Equal(t, "65536", entries.DefValue)

	dim := flags.Lookup("dim")
	require.NotNil(t, dim)
	assert.Equal(t, "256", dim.DefValue)

	require.NotNil(t, flags.Lookup("embeddings"))
	require.NotNil(t, flags.Lookup("no-pca"))
	require.NotNil(t, flags.Lookup("seed"))
}

// execute resets the flag-bound variables (which persist across Execute
// calls) and runs the root command with the given arguments.
func execute(t *testing.T, args ...string) error {
	t.Helper()

	buildEmbeddings = ""
	buildOutput = "codebook.bin"
	buildEntries = codebook.DefaultEntryCount
	buildDim = codebook.DefaultDim
	buildMaxVocab = 0
	buildBatchSize = codebook.DefaultBatchSize
	buildMaxIter = codebook.DefaultMaxIter
	buildNoPCA = false
	buildSeed = codebook.DefaultSeed
	buildLogLevel = "info"
	buildLogJSON = false
	buildBucket = ""
	buildKey = ""

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestBuildCmd_EntryCountRejected(t *testing.T) {
	// Fails at configuration time: the corpus path is never opened.
	err := execute(t, "build",
		"--embeddings", "does-not-exist.txt",
		"-k", "70000",
	)
	var capacity *codebook.ErrCapacityExceeded
	require.ErrorAs(t, err, &capacity)
	assert.Equal(t, 70000, capacity.Requested)
}

func TestBuildCmd_BadLogLevel(t *testing.T) {
	err := execute(t, "build",
		"--embeddings", "does-not-exist.txt",
		"--log-level", "loud",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
}

func TestBuildCmd_MissingEmbeddings(t *testing.T) {
	err := execute(t, "build", "--embeddings", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	level, err := parseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = parseLevel("loud")
	assert.Error(t, err)
}
