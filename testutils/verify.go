// Package testutils holds helpers shared by the tests of every pairmesh package.
package testutils

import (
	"go.uber.org/goleak"
)

// VerifyTestMain runs the tests of a package and then fails if any goroutine they started is
// still running. The opencensus view worker lives for the whole process and is ignored.
func VerifyTestMain(m goleak.TestingM) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}
