package rendercache

import (
	"context"
	"testing"
)

// testContext returns a context that is canceled when the test ends.
// It stands in for testing.T.Context, which needs Go 1.24; this module
// builds with Go 1.21.
func testContext(t testing.TB) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
