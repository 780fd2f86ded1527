// Package testenv keeps tests away from the operator's real data directory.
// It has no dependencies on other internal packages to avoid import cycles.
package testenv

import (
	"fmt"
	"os"
	"testing"
)

// DataDirEnv is the variable config.DataDir reads.
const DataDirEnv = "PAPERTRIAGE_DATA_DIR"

// SetDataDir points PAPERTRIAGE_DATA_DIR at a fresh temp directory for the
// duration of t and returns it.
func SetDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(DataDirEnv, dir)
	return dir
}

// RunIsolatedMain runs m with PAPERTRIAGE_DATA_DIR set to a temp directory
// and fails the run if the real config file changed while tests ran.
// Call it from TestMain.
func RunIsolatedMain(m *testing.M) int {
	barrier := NewConfigBarrier(DefaultProdDataDir())

	tmp, err := os.MkdirTemp("", "papertriage-test-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "testenv: %v\n", err)
		return 1
	}
	defer os.RemoveAll(tmp)

	orig, had := os.LookupEnv(DataDirEnv)
	os.Setenv(DataDirEnv, tmp)
	os.Unsetenv("PAPERTRIAGE_SERVER")
	defer func() {
		if had {
			os.Setenv(DataDirEnv, orig)
		} else {
			os.Unsetenv(DataDirEnv)
		}
	}()

	code := m.Run()
	if msg := barrier.Check(); msg != "" {
		fmt.Fprintln(os.Stderr, msg)
		if code == 0 {
			code = 1
		}
	}
	return code
}
