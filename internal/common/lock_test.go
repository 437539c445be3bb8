package common

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_PoolLocker_SerializesPerPool(t *testing.T) {
	locker := NewPoolLocker()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locker.Lock(7)
			counter++
			locker.Unlock(7)
		}()
	}

	wg.Wait()
	require.Equal(t, 50, counter)
}

func Test_QueueLocker_SerializesPerUser(t *testing.T) {
	locker := NewQueueLocker()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locker.Lock("0xaaa")
			counter++
			locker.Unlock("0xaaa")
		}()
	}

	wg.Wait()
	require.Equal(t, 50, counter)
}

func Test_QueueLocker_IndependentUsers(t *testing.T) {
	locker := NewQueueLocker()

	locker.Lock("0xaaa")

	done := make(chan struct{})
	go func() {
		locker.Lock("0xbbb")
		locker.Unlock("0xbbb")
		close(done)
	}()

	<-done
	locker.Unlock("0xaaa")
}
