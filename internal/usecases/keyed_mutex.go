package usecases

import "sync"

// keyedMutex provides per-key mutual exclusion. Operations against the same
// request id, token or chain counter are linearized; unrelated keys proceed
// in parallel. Lock entries are never evicted; the key space is bounded by
// the number of configured tokens, chains and in-flight request ids.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
