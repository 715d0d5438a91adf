// ABOUTME: Package test entry point.
// ABOUTME: Fails the run if any test leaves goroutines behind.
package history

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
