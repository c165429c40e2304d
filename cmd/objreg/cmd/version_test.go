package cmd

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrentVersion(t *testing.T) {
	info := currentVersion()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.NotEmpty(t, info.GitCommit)
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf, versionInfo{
		Binary:    "objreg",
		Version:   "1.2.3",
		GitCommit: "abc123",
		BuildTime: "2026-01-01T00:00:00Z",
		GoVersion: "go1.24.0",
		Platform:  "linux/amd64",
	})

	out := buf.String()
	assert.Contains(t, out, "objreg version 1.2.3")
	assert.Contains(t, out, "Git Commit: abc123")
	assert.Contains(t, out, "OS/Arch:    linux/amd64")
}
