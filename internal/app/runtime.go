package app

import (
	"os"
	"strconv"
	"sync/atomic"
)

// TestModeEnv makes both binaries return before touching the network.
const TestModeEnv = "FABRICDESK_TEST_MODE"

var testMode atomic.Pointer[bool]

// InTestMode reports whether TestModeEnv is set to a true value. The first
// answer is cached until RefreshTestMode.
func InTestMode() bool {
	if v := testMode.Load(); v != nil {
		return *v
	}
	return RefreshTestMode()
}

// RefreshTestMode re-reads TestModeEnv.
func RefreshTestMode() bool {
	on, err := strconv.ParseBool(os.Getenv(TestModeEnv))
	on = err == nil && on
	testMode.Store(&on)
	return on
}
