package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weave/internal/adapters/watcher"
)

type batches struct {
	mu  sync.Mutex
	got [][]string
}

func (b *batches) add(paths []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.got = append(b.got, paths)
}

func (b *batches) snapshot() [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]string(nil), b.got...)
}

func TestDebouncer_CoalescesAndSorts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var b batches
		d := watcher.NewDebouncer(100*time.Millisecond, b.add)

		d.Add("/ws/lib/weave.yaml")
		d.Add("/ws/app/weave.yaml")
		d.Add("/ws/lib/weave.yaml")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Len(t, b.snapshot(), 1)
		assert.Equal(t, []string{"/ws/app/weave.yaml", "/ws/lib/weave.yaml"}, b.snapshot()[0])
	})
}

func TestDebouncer_TimerReset(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var b batches
		d := watcher.NewDebouncer(100*time.Millisecond, b.add)

		d.Add("/ws/a")
		time.Sleep(60 * time.Millisecond)
		d.Add("/ws/b")
		time.Sleep(60 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, b.snapshot(), "the second event restarts the window")

		time.Sleep(60 * time.Millisecond)
		synctest.Wait()
		require.Len(t, b.snapshot(), 1)
		assert.Equal(t, []string{"/ws/a", "/ws/b"}, b.snapshot()[0])
	})
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var b batches
		d := watcher.NewDebouncer(50*time.Millisecond, b.add)

		d.Add("/ws/a")
		time.Sleep(100 * time.Millisecond)
		d.Add("/ws/b")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, [][]string{{"/ws/a"}, {"/ws/b"}}, b.snapshot())
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var b batches
		d := watcher.NewDebouncer(100*time.Millisecond, b.add)

		d.Add("/ws/a")
		d.Flush()
		require.Equal(t, [][]string{{"/ws/a"}}, b.snapshot(), "flush runs the callback synchronously")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Len(t, b.snapshot(), 1, "the stopped timer does not fire again")
	})
}

func TestDebouncer_FlushAfterFire(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var b batches
		d := watcher.NewDebouncer(50*time.Millisecond, b.add)

		d.Add("/ws/a")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		d.Flush()

		assert.Len(t, b.snapshot(), 1)
	})
}

func TestDebouncer_FlushEmpty(t *testing.T) {
	var b batches
	watcher.NewDebouncer(time.Second, b.add).Flush()
	assert.Empty(t, b.snapshot())
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		d := watcher.NewDebouncer(50*time.Millisecond, nil)
		d.Add("/ws/a")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		d.Flush()
	})
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var b batches
		d := watcher.NewDebouncer(100*time.Millisecond, b.add)

		d.Add("/ws/a")
		d.Stop()
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, b.snapshot())

		d.Flush()
		assert.Empty(t, b.snapshot(), "nothing is pending after stop")
	})
}
