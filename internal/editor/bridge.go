package editor

import (
	"slices"
	"sync"

	"logevents/internal/logging"
)

// Bridge carries edits from a renderer goroutine to the host tick and
// snapshots back.
type Bridge struct {
	edits chan Edit

	mu        sync.Mutex
	listeners []func(Snapshot)
	last      Snapshot
	published bool
	dropped   int
}

// NewBridge returns a bridge queueing up to buffer edits between ticks.
func NewBridge(buffer int) *Bridge {
	if buffer < 1 {
		buffer = 1
	}
	return &Bridge{edits: make(chan Edit, buffer)}
}

// Send queues e without blocking. It returns false when the queue is full.
func (b *Bridge) Send(e Edit) bool {
	select {
	case b.edits <- e:
		return true
	default:
		b.mu.Lock()
		b.dropped++
		b.mu.Unlock()
		return false
	}
}

// Dropped returns the number of edits refused by Send.
func (b *Bridge) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// OnSnapshot registers fn to receive every published snapshot. fn runs on
// the host tick and must not block.
func (b *Bridge) OnSnapshot(fn func(Snapshot)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
	if b.published {
		fn(b.last)
	}
}

// Sync applies every queued edit to p, then publishes a snapshot if the
// settings changed since the last one. It reports whether an edit asked the
// host to exit.
func (b *Bridge) Sync(p *Projection) (exit bool) {
	for {
		select {
		case e := <-b.edits:
			quit, err := p.Apply(e)
			if err != nil {
				logging.Get(logging.CategoryEditor).Warn("edit %s rejected: %v", e.Kind, err)
				continue
			}
			logging.EditorDebug("applied edit %s key=%q", e.Kind, e.Key)
			exit = exit || quit
		default:
			b.publish(p.Snapshot())
			return exit
		}
	}
}

func (b *Bridge) publish(s Snapshot) {
	b.mu.Lock()
	if b.published && b.last.Equal(s) {
		b.mu.Unlock()
		return
	}
	b.last = s
	b.published = true
	listeners := slices.Clone(b.listeners)
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}
