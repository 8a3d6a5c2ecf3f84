package lock

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// KeyedMutex serialises work per sale account within one process. Waiters
// give up when their context is done.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*entry
}

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[uuid.UUID]*entry)}
}

// Lock blocks until accountID is free or ctx is done. The returned func is
// safe to call more than once.
func (k *KeyedMutex) Lock(ctx context.Context, accountID uuid.UUID) (func(), error) {
	k.mu.Lock()
	e, ok := k.locks[accountID]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		k.locks[accountID] = e
	}
	e.refs++
	k.mu.Unlock()

	if err := e.sem.Acquire(ctx, 1); err != nil {
		k.release(accountID, e)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.sem.Release(1)
			k.release(accountID, e)
		})
	}, nil
}

// Len is the number of accounts currently locked or waited on.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

func (k *KeyedMutex) release(accountID uuid.UUID, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, accountID)
	}
}
