package queue

import "sync"

// serviceLocks serializes read-modify-write spans per service. Joins and
// transitions for the same service must never observe the same stale
// serving capacity; operations on different services stay fully parallel.
var serviceLocks sync.Map

func lockService(serviceID uint) *sync.Mutex {
	actual, _ := serviceLocks.LoadOrStore(serviceID, &sync.Mutex{})
	mu := actual.(*sync.Mutex)
	mu.Lock()
	return mu
}
