// Package session provides connected-player tracking and arena presence
// management for the game backend.
package session

import (
	"fmt"
	"sync"
)

// Feed routes outbound text lines to a Go channel, bridging the game
// systems (including the combat resolver, which runs on its own
// goroutines) to the Telnet writer loop for a single connection.
type Feed struct {
	uid    string
	lines  chan string
	mu     sync.Mutex
	closed bool
}

// NewFeed creates a Feed for the given player UID.
//
// Precondition: uid must be non-empty.
// Postcondition: Returns a Feed with an open lines channel.
func NewFeed(uid string, bufferSize int) *Feed {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Feed{
		uid:   uid,
		lines: make(chan string, bufferSize),
	}
}

// UID returns the player's unique identifier.
func (f *Feed) UID() string {
	return f.uid
}

// Push enqueues a line for delivery to the player.
//
// Postcondition: The line is enqueued, or an error if the feed is closed
// or full. A full feed drops the line rather than blocking the caller;
// combat resolution must never stall on a slow client.
func (f *Feed) Push(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return fmt.Errorf("feed %s is closed", f.uid)
	}
	select {
	case f.lines <- line:
		return nil
	default:
		return fmt.Errorf("feed %s buffer full", f.uid)
	}
}

// Lines returns the read-only lines channel. The Telnet writer goroutine
// reads from this channel and forwards each line to the client.
func (f *Feed) Lines() <-chan string {
	return f.lines
}

// Close marks the feed as closed and closes the lines channel.
//
// Postcondition: The lines channel is closed. Further Push calls return
// an error.
func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.closed {
		f.closed = true
		close(f.lines)
	}
	return nil
}

// IsClosed reports whether the feed has been closed.
func (f *Feed) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
