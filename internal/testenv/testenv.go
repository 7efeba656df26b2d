// Package testenv centralizes the test-mode guard that provider
// constructors consult before allowing an unauthenticated or
// credential-free client to be built.
package testenv

import "os"

// EnvTestMode is the environment variable that, when set to a non-empty
// value, puts provider clients into test mode: missing credentials are
// tolerated and requests are expected to be served by a local test
// double rather than a real upstream endpoint.
const EnvTestMode = "ZDX_TEST_MODE"

// IsTestMode reports whether the process is running under the test-mode
// guard.
func IsTestMode() bool {
	return os.Getenv(EnvTestMode) != ""
}
