//go:build integration

package rod_test

import (
	"testing"

	"github.com/fwojciec/warn/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserManager_Browser(t *testing.T) {
	t.Parallel()

	t.Run("recycles after max pages", func(t *testing.T) {
		t.Parallel()

		manager, err := rod.NewBrowserManager(rod.WithMaxPages(3))
		require.NoError(t, err)
		defer manager.Close()

		first := manager.Browser()
		require.NotNil(t, first)
		for range 3 {
			manager.IncrementPageCount()
		}

		second := manager.Browser()

		require.NotNil(t, second)
		assert.NotSame(t, first, second)
	})

	t.Run("keeps the browser below max pages", func(t *testing.T) {
		t.Parallel()

		manager, err := rod.NewBrowserManager(rod.WithMaxPages(5))
		require.NoError(t, err)
		defer manager.Close()

		first := manager.Browser()
		manager.IncrementPageCount()
		manager.IncrementPageCount()

		assert.Same(t, first, manager.Browser())
	})

	t.Run("close releases the launcher", func(t *testing.T) {
		t.Parallel()

		manager, err := rod.NewBrowserManager()
		require.NoError(t, err)
		require.NotZero(t, manager.LauncherPID())

		require.NoError(t, manager.Close())
		require.NoError(t, manager.Close())

		assert.Zero(t, manager.LauncherPID())
	})
}
