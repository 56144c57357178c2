package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockServiceSerializesSameService(t *testing.T) {
	mu := lockService(100)

	entered := make(chan struct{})
	go func() {
		inner := lockService(100)
		close(entered)
		inner.Unlock()
	}()

	select {
	case <-entered:
		t.Fatal("second lock acquired while first was held")
	case <-time.After(50 * time.Millisecond):
	}

	mu.Unlock()

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired after release")
	}
}

func TestLockServiceIndependentServices(t *testing.T) {
	mu := lockService(200)
	defer mu.Unlock()

	done := make(chan struct{})
	go func() {
		other := lockService(201)
		other.Unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for a different service blocked")
	}
}

func TestLockServiceReturnsSameMutexPerService(t *testing.T) {
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mu := lockService(300)
			counter++
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, counter)
}
