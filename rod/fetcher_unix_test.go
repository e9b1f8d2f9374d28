//go:build integration && !windows

package rod_test

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/fwojciec/warn"
	"github.com/fwojciec/warn/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// alive reports whether pid exists; signal 0 probes without delivering.
func alive(pid int) bool {
	return syscall.Kill(pid, syscall.Signal(0)) == nil
}

func TestFetcher_Close_StopsChrome(t *testing.T) {
	t.Parallel()

	// Given: a fetcher whose Chrome is running
	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)
	pid := fetcher.LauncherPID()
	require.NotZero(t, pid)
	require.True(t, alive(pid))

	// When: a harvest finishes and closes it
	require.NoError(t, fetcher.Close())

	// Then: no Chrome process outlives the harvest
	assert.Eventually(t, func() bool { return !alive(pid) }, 2*time.Second, 50*time.Millisecond)

	_, err = fetcher.Fetch(context.Background(), "https://floridajobs.org")
	assert.Equal(t, warn.EINVALID, warn.ErrorCode(err))
}
