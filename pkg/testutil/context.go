package testutil

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"
)

// GetTestContext returns a context bounded by the test deadline and testTimeout, whichever is sooner.
// Setting TEST_CONTEXT_TIMEOUT (in minutes) overrides both, which helps when debugging tests.
func GetTestContext(t *testing.T, testTimeout time.Duration) (context.Context, context.CancelFunc) {
	if timeoutStr, found := os.LookupEnv("TEST_CONTEXT_TIMEOUT"); found {
		timeout, err := strconv.ParseUint(timeoutStr, 10, 16)
		if err != nil {
			panic(fmt.Sprintf("Context timeout value '%s' is invalid: %s", timeoutStr, err.Error()))
		}
		return context.WithTimeout(context.Background(), time.Duration(timeout)*time.Minute)
	}

	deadline, haveDeadline := t.Deadline()
	if testTimeout == 0 {
		if haveDeadline {
			return context.WithDeadline(context.Background(), deadline)
		}
		return context.WithCancel(context.Background())
	}

	testDeadline := time.Now().Add(testTimeout)
	if haveDeadline && deadline.Before(testDeadline) {
		testDeadline = deadline
	}
	return context.WithDeadline(context.Background(), testDeadline)
}
