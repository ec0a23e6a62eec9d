package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRoomLocker_Exclusive(t *testing.T) {
	l := NewLocalRoomLocker()
	var (
		wg      sync.WaitGroup
		holders int32
		maxSeen int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Lock(context.Background(), "hotel:1:room:1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&holders, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&holders, -1)
			release()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen)

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.slots, "idle keys are dropped")
}

func TestLocalRoomLocker_ContextCancel(t *testing.T) {
	l := NewLocalRoomLocker()
	release, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "k")
	require.Error(t, err)

	release()
	release() // second call is a no-op

	again, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	again()
}

func TestLockRooms_OrderAndDedup(t *testing.T) {
	assert.Equal(t, []uint{1, 3, 7}, uniqueSorted([]uint{7, 1, 3, 7, 1}))

	l := NewLocalRoomLocker()
	release, err := lockRooms(context.Background(), l, 1, 5, 2, 5)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, roomLockKey(1, 2))
	assert.Error(t, err, "room 2 is held")

	release()
	r2, err := lockRooms(context.Background(), l, 1, 2)
	require.NoError(t, err)
	r2()
}
