package pool

import (
	"cmp"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThreadPool(t *testing.T) {
	t.Run("Jobs run by priority and insertion order", func(t *testing.T) {
		//** Arrange
		pool := NewThreadPool(1, cmp.Compare[int])
		var mutex sync.Mutex
		order := make([]string, 0)
		record := func(name string) func() {
			return func() {
				mutex.Lock()
				defer mutex.Unlock()
				order = append(order, name)
			}
		}
		assert.Nil(t, pool.AddJob(3, record("c")))
		assert.Nil(t, pool.AddJob(1, record("a")))
		assert.Nil(t, pool.AddJob(2, record("b1")))
		assert.Nil(t, pool.AddJob(2, record("b2")))

		//** Act
		assert.Nil(t, pool.Start())
		pool.Finish()

		//** Assert
		assert.Equal(t, []string{"a", "b1", "b2", "c"}, order)
	})

	t.Run("Starting twice fails", func(t *testing.T) {
		//** Arrange
		pool := NewThreadPool(2, cmp.Compare[int])

		//** Act
		first := pool.Start()
		second := pool.Start()
		pool.Finish()

		//** Assert
		assert.Nil(t, first)
		assert.ErrorIs(t, second, ErrPoolStarted)
	})

	t.Run("Closed queues reject jobs", func(t *testing.T) {
		//** Arrange
		pool := NewThreadPool(2, cmp.Compare[int])
		pool.CloseQueue()

		//** Act
		err := pool.AddJob(0, func() {})

		//** Assert
		assert.ErrorIs(t, err, ErrQueueClosed)
	})

	t.Run("Cancel drops queued jobs", func(t *testing.T) {
		//** Arrange
		pool := NewThreadPool(2, cmp.Compare[int])
		var executed atomic.Int64
		for i := range 10 {
			assert.Nil(t, pool.AddJob(i, func() { executed.Add(1) }))
		}

		//** Act
		pool.Cancel()
		assert.Nil(t, pool.Start())
		pool.Wait()
		pool.Finish()

		//** Assert
		assert.Equal(t, int64(0), executed.Load())
		assert.Equal(t, 0, pool.Size())
		assert.ErrorIs(t, pool.AddJob(0, func() {}), ErrQueueClosed)
	})

	t.Run("Wait covers jobs spawned by jobs", func(t *testing.T) {
		//** Arrange
		pool := NewThreadPool(4, cmp.Compare[int])
		var executed atomic.Int64
		var spawn func(depth int)
		spawn = func(depth int) {
			executed.Add(1)
			if depth == 0 {
				return
			}
			for range 2 {
				assert.Nil(t, pool.AddJob(depth-1, func() { spawn(depth - 1) }))
			}
		}
		assert.Nil(t, pool.AddJob(5, func() { spawn(5) }))

		//** Act
		assert.Nil(t, pool.Start())
		pool.Wait()

		//** Assert
		assert.Equal(t, int64(63), executed.Load())
		pool.Finish()
	})

	t.Run("Synchronous access to the queue", func(t *testing.T) {
		//** Arrange
		pool := NewThreadPool(1, cmp.Compare[int])
		pool.Wait()
		assert.Nil(t, pool.AddJob(2, func() {}))
		assert.Nil(t, pool.AddJob(1, func() {}))

		//** Act
		priority, run, ok, err := pool.Pop()

		//** Assert
		assert.Nil(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, priority)
		assert.NotNil(t, run)
		assert.Equal(t, 1, pool.Size())

		assert.Nil(t, pool.Start())
		_, _, _, err = pool.Pop()
		assert.ErrorIs(t, err, ErrPoolStarted)
		pool.Finish()
	})
}
