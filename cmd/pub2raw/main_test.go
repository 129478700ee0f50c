package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gopublisher "github.com/VantageDataChat/GoPUB"
)

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage: pub2raw")
	assert.Equal(t, 2, run([]string{"-nope"}, &stdout, &stderr))
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"-version"}, &stdout, &stderr))
	assert.Equal(t, "pub2raw "+gopublisher.LibraryVersion+"\n", stdout.String())
}

func TestRunMissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "missing.pub")
	assert.Equal(t, 1, run([]string{path}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "missing.pub")
}

func TestRunRejectsOtherFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pub")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not a compound file"), 0o644))

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{path}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "unsupported file format")
	assert.Empty(t, stdout.String())
}
