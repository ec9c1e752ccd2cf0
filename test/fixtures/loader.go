package fixtures

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixturesDir returns the absolute path to the fixtures directory.
func fixturesDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Dir(file)
}

// LoadManifest loads a fixture deployments manifest and returns its raw
// bytes, ready to be served by a test HTTP server.
func LoadManifest(t *testing.T, filename string) []byte {
	t.Helper()
	path := filepath.Join(fixturesDir(), filename)
	data, err := os.ReadFile(path)
	require.NoError(t, err, "failed to load fixture manifest: %s", filename)
	return data
}
