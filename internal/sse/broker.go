// Package sse streams memo file changes to HTTP clients as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// Event types.
const (
	EventNotesChanged = "notes.changed"
	EventNotesRemoved = "notes.removed"
)

// RetryInterval is the reconnect delay suggested to clients.
const RetryInterval = 3 * time.Second

const clientBuffer = 64

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Change describes the memo file after a write or removal. It is a full
// snapshot, so the latest one is all a reconnecting client needs.
type Change struct {
	Removed  bool   `json:"removed"`
	Checksum string `json:"checksum,omitempty"`
	Total    int    `json:"total"`
}

type subscription struct {
	ch     chan []byte
	resume bool
	lastID uint64
}

// Broker fans events out to connected clients.
//
// One loop goroutine owns the client set, the event sequence and the last
// frame sent. Public methods talk to it over channels.
type Broker struct {
	keepAlive time.Duration

	subscribeCh   chan subscription
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that sends a keep-alive comment to every client
// each keepAlive interval. A non-positive interval disables keep-alives.
func NewBroker(keepAlive time.Duration) *Broker {
	b := &Broker{
		keepAlive:     keepAlive,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.loop()
	return b
}

func frame(id uint64, event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", id, event.Type, payload)), nil
}

// offer never blocks; a client that cannot keep up misses the frame.
func offer(ch chan []byte, raw []byte) {
	select {
	case ch <- raw:
	default:
	}
}

func (b *Broker) loop() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var (
		seq  uint64
		last []byte
	)

	var tick <-chan time.Time
	if b.keepAlive > 0 {
		ticker := time.NewTicker(b.keepAlive)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			clients[sub.ch] = struct{}{}
			if sub.resume && last != nil && sub.lastID < seq {
				offer(sub.ch, last)
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			raw, err := frame(seq+1, event)
			if err != nil {
				continue
			}
			seq++
			last = raw
			for ch := range clients {
				offer(ch, raw)
			}

		case <-tick:
			for ch := range clients {
				offer(ch, []byte(": keep-alive\n\n"))
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the loop and closes every client channel. It is idempotent.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client that receives events published from now on.
func (b *Broker) Subscribe() chan []byte {
	return b.add(subscription{})
}

// Resume adds a client that has seen events up to lastID. When a newer
// event exists the latest one is queued on the returned channel at once.
func (b *Broker) Resume(lastID uint64) chan []byte {
	return b.add(subscription{resume: true, lastID: lastID})
}

func (b *Broker) add(sub subscription) chan []byte {
	sub.ch = make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(sub.ch)
		return sub.ch
	}

	select {
	case b.subscribeCh <- sub:
	case <-b.stopped:
		close(sub.ch)
	}
	return sub.ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish queues event for every connected client.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishChange publishes notes.removed or notes.changed for c.
func (b *Broker) PublishChange(c Change) {
	typ := EventNotesChanged
	if c.Removed {
		typ = EventNotesRemoved
	}
	b.Publish(Event{Type: typ, Data: c})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). A numeric
// Last-Event-ID header resumes from that event; otherwise only new events
// are streamed.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	var (
		lastID uint64
		resume bool
	)
	if v := r.Header.Get("Last-Event-ID"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			lastID, resume = id, true
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", RetryInterval.Milliseconds())
	flusher.Flush()

	var ch chan []byte
	if resume {
		ch = b.Resume(lastID)
	} else {
		ch = b.Subscribe()
	}
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
