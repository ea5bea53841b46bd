// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides a buffered slog handler so tests can
// assert on structured log output:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    doWork(logger)
//	    testutil.AssertLogContains(t, logs, "Work done")
//	}
package shared
