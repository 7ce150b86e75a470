// Package events allows for the registering and receiving of school events.
// A subscriber can ask for every message or only for the named events.
package events

import (
	"fmt"
	"strings"
	"sync"
)

// Prefix marks the messages that carry an emitted event. The format is
// "event: <name>: <json>".
const Prefix = "event: "

// subscriber is a registered channel and the event names it wants.
type subscriber struct {
	ch    chan string
	names map[string]bool
}

func (sub subscriber) wants(msg string) bool {
	if len(sub.names) == 0 {
		return true
	}

	name, ok := Name(msg)
	return ok && sub.names[name]
}

// Events maintains a mapping of unique id and channels so goroutines
// can register and receive events.
type Events struct {
	m  map[string]subscriber
	mu sync.RWMutex
}

// New constructs an events for registering and receiving events.
func New() *Events {
	return &Events{
		m: make(map[string]subscriber),
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, sub := range evt.m {
		delete(evt.m, id)
		close(sub.ch)
	}
}

// Acquire takes a unique id and returns a channel that can be used to
// receive events. When names are provided only messages for those events
// are delivered, otherwise every message is.
func (evt *Events) Acquire(id string, names ...string) chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	sub, exists := evt.m[id]
	if exists {
		return sub.ch
	}

	// Since a message will be dropped if the websocket receiver is
	// not ready to receive, this arbitrary buffer should give the receiver
	// enough time to not lose a message. Websocket send could take long.
	const messageBuffer = 100

	sub = subscriber{
		ch:    make(chan string, messageBuffer),
		names: make(map[string]bool, len(names)),
	}
	for _, name := range names {
		if name != "" {
			sub.names[name] = true
		}
	}

	evt.m[id] = sub
	return sub.ch
}

// Release closes and removes the channel that was provided by
// the call to Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	sub, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(sub.ch)
	return nil
}

// Send signals a message to every registered channel that wants it. Send
// will not block waiting for a receiver on any given channel.
func (evt *Events) Send(s string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, sub := range evt.m {
		if !sub.wants(s) {
			continue
		}

		select {
		case sub.ch <- s:
		default:
		}
	}
}

// Len returns the number of registered subscribers.
func (evt *Events) Len() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}

// Name extracts the event name from an event message.
func Name(msg string) (string, bool) {
	rest, ok := strings.CutPrefix(msg, Prefix)
	if !ok {
		return "", false
	}

	name, _, ok := strings.Cut(rest, ": ")
	if !ok || name == "" {
		return "", false
	}

	return name, true
}
