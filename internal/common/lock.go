package common

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v2"
)

// PoolLocker serializes the write paths of a single pool so prize index
// compaction and outstanding counters never interleave between requests.
// Different pools proceed in parallel.
type PoolLocker struct {
	locks *xsync.MapOf[int64, *sync.Mutex]
}

func NewPoolLocker() *PoolLocker {
	return &PoolLocker{locks: xsync.NewIntegerMapOf[int64, *sync.Mutex]()}
}

func (l *PoolLocker) Lock(poolID int64) {
	mutex, _ := l.locks.LoadOrCompute(poolID, func() *sync.Mutex {
		return &sync.Mutex{}
	})
	mutex.Lock()
}

func (l *PoolLocker) Unlock(poolID int64) {
	mutex, ok := l.locks.Load(poolID)
	if ok {
		mutex.Unlock()
	}
}

// QueueLocker serializes a single user's prize queue so claims and bearer
// conversions never race the positional compaction. Different users proceed
// in parallel.
type QueueLocker struct {
	locks *xsync.MapOf[string, *sync.Mutex]
}

func NewQueueLocker() *QueueLocker {
	return &QueueLocker{locks: xsync.NewMapOf[*sync.Mutex]()}
}

func (l *QueueLocker) Lock(user string) {
	mutex, _ := l.locks.LoadOrCompute(user, func() *sync.Mutex {
		return &sync.Mutex{}
	})
	mutex.Lock()
}

func (l *QueueLocker) Unlock(user string) {
	mutex, ok := l.locks.Load(user)
	if ok {
		mutex.Unlock()
	}
}
