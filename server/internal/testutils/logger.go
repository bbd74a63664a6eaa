package testutils

import (
	"testing"

	"github.com/rs/zerolog"
)

// Logger writes through t.Log when tests run with -v and discards everything
// otherwise. Entries carry the test name since store tests share one etcd
// server across subtests.
func Logger(t testing.TB) zerolog.Logger {
	t.Helper()

	if !testing.Verbose() {
		return zerolog.Nop()
	}

	return zerolog.New(zerolog.NewTestWriter(t)).
		With().
		Str("test", t.Name()).
		Logger()
}
