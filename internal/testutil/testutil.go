// Package testutil holds small helpers shared by tests across the
// module: a silenced logger for building tables without log noise, and
// a fixture writer for the CUE, Lua, and YAML files tests lay out.
//
// The package must not import the engine; engine-internal tests use
// it, and an engine import would cycle.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Logger returns a logger that discards everything, keeping test
// output readable when tables are built by the dozen.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WriteFile writes a fixture under dir and returns its full path,
// failing the test on error.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
