package genserver

import "sync"

type entryKind int

const (
	entryCast entryKind = iota
	entryCall
	entryStop
)

// reply carries the outcome of one call back to its caller.
type reply struct {
	value any
	err   error
}

// envelope is one mailbox entry: a cast, a call with its reply slot, or the
// stop sentinel.
type envelope struct {
	kind  entryKind
	id    string     // correlation ID, calls only
	msg   any        // payload, nil for stop
	reply chan reply // buffered (cap 1) and written at most once, calls only
}

// mailbox is an unbounded FIFO queue with any number of producers and
// exactly one consumer (the worker goroutine). Enqueue never blocks.
type mailbox struct {
	mu      sync.Mutex
	entries []envelope
	head    int
	waiting bool
	wakeup  chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{wakeup: make(chan struct{}, 1)}
}

// enqueue appends an entry and returns the resulting queue depth.
func (mb *mailbox) enqueue(e envelope) int {
	mb.mu.Lock()
	mb.entries = append(mb.entries, e)
	depth := len(mb.entries) - mb.head
	if mb.waiting {
		mb.waiting = false
		mb.wakeup <- struct{}{}
	}
	mb.mu.Unlock()
	return depth
}

// dequeue pops the oldest entry, blocking while the queue is empty.
// Must only be called from the single consumer goroutine.
func (mb *mailbox) dequeue() envelope {
	for {
		mb.mu.Lock()
		if mb.head < len(mb.entries) {
			e := mb.entries[mb.head]
			mb.entries[mb.head] = envelope{} // release references for GC
			mb.head++
			if mb.head == len(mb.entries) {
				mb.entries = mb.entries[:0]
				mb.head = 0
			}
			mb.mu.Unlock()
			return e
		}
		mb.waiting = true
		mb.mu.Unlock()
		<-mb.wakeup
	}
}

// depth reports the number of pending entries.
func (mb *mailbox) depth() int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return len(mb.entries) - mb.head
}
