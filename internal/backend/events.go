package backend

import "sync"

// Broadcaster fans auth events out to subscribers. Adapters embed it to
// implement OnAuthChange.
type Broadcaster struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(AuthEvent)
}

func (b *Broadcaster) OnAuthChange(fn func(AuthEvent)) func() {
	b.mu.Lock()
	if b.subs == nil {
		b.subs = make(map[int]func(AuthEvent))
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers event synchronously to every current subscriber.
func (b *Broadcaster) Publish(event AuthEvent) {
	b.mu.RLock()
	subs := make([]func(AuthEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(event)
	}
}
