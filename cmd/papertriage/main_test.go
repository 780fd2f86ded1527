package main

import (
	"os"
	"testing"

	"github.com/papertriage/papertriage/internal/testenv"
)

// TestMain keeps `config set` and the TUI debug log out of ~/.papertriage.
func TestMain(m *testing.M) {
	os.Exit(testenv.RunIsolatedMain(m))
}
