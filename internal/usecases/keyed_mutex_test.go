package usecases

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyedMutex_SerializesPerKey(t *testing.T) {
	locks := newKeyedMutex()

	// one plain counter per key, protected only by that key's lock
	counters := [3]int{}
	keys := []string{"request:1", "request:2", "token:usdc"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for slot, key := range keys {
			wg.Add(1)
			go func(slot int, key string) {
				defer wg.Done()
				unlock := locks.Lock(key)
				defer unlock()
				counters[slot]++
			}(slot, key)
		}
	}
	wg.Wait()

	for slot := range keys {
		require.Equal(t, 50, counters[slot])
	}
}

func TestKeyedMutex_UnlockReleases(t *testing.T) {
	locks := newKeyedMutex()

	unlock := locks.Lock("request:1")
	unlock()

	done := make(chan struct{})
	go func() {
		unlock := locks.Lock("request:1")
		unlock()
		close(done)
	}()
	<-done
}
