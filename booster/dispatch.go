package booster

import "sync"

// Dispatcher serializes work per key while keeping distinct keys
// concurrent. Events for the same (guild, user) must apply in arrival
// order, but unrelated members should never wait on each other.
type Dispatcher struct {
	mu     sync.Mutex
	queues map[string][]func()
	wg     sync.WaitGroup
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		queues: make(map[string][]func()),
	}
}

// EventKey builds the serialization key for member-scoped events.
func EventKey(guildID, userID string) string {
	return guildID + ":" + userID
}

// Enqueue schedules fn behind any work already queued for key. The
// first entry for an idle key starts a drain goroutine; later entries
// ride the existing queue.
func (d *Dispatcher) Enqueue(key string, fn func()) {
	d.mu.Lock()
	queue, active := d.queues[key]
	d.queues[key] = append(queue, fn)
	if !active {
		d.wg.Add(1)
		go d.drain(key)
	}
	d.mu.Unlock()
}

func (d *Dispatcher) drain(key string) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		queue := d.queues[key]
		if len(queue) == 0 {
			delete(d.queues, key)
			d.mu.Unlock()
			return
		}
		fn := queue[0]
		d.queues[key] = queue[1:]
		d.mu.Unlock()

		fn()
	}
}

// Wait blocks until every queued function has run.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
