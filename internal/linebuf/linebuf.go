// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

// Package linebuf assembles NMEA sentences from a byte-at-a-time serial
// stream into a pair of fixed-capacity buffers. One buffer is filled while
// the other holds the most recently completed sentence for the consumer.
package linebuf

import (
	"sync"

	"github.com/tevino/abool/v2"
)

// DefaultCapacity is the longest line kept, sentinel included. Standard NMEA
// sentences are at most 82 characters.
const DefaultCapacity = 120

// Line is a completed sentence taken out of the assembler.
type Line struct {
	Text string
	// Truncated is set when the sentence didn't fit and characters past the
	// buffer capacity were dropped.
	Truncated bool
}

type buffer struct {
	data      []byte
	idx       int
	truncated bool
}

func (b *buffer) reset() {
	b.idx = 0
	b.truncated = false
}

func (b *buffer) text() string {
	return string(b.data[:b.idx])
}

// Assembler is the double-buffered line collector. Consume is called for each
// byte read from the receiver, the consumer polls Available and retrieves the
// completed line with Take.
//
// There is no backpressure: a sentence that completes before the previous one
// was taken replaces it. Overruns counts how often that happened.
type Assembler struct {
	mu       sync.Mutex
	bufs     [2]buffer
	current  int
	received bool
	overruns uint64
	paused   *abool.AtomicBool
}

// New creates an Assembler whose buffers hold capacity bytes each. One byte of
// each buffer is reserved for the terminator, so the longest kept line is
// capacity-1 characters.
func New(capacity int) *Assembler {
	if capacity < 2 {
		capacity = DefaultCapacity
	}
	a := &Assembler{
		paused: abool.New(),
	}
	for i := range a.bufs {
		a.bufs[i].data = make([]byte, capacity)
	}
	return a
}

// Capacity returns the size of each buffer.
func (a *Assembler) Capacity() int {
	return len(a.bufs[0].data)
}

// Consume feeds one byte to the assembler. It returns false, leaving all
// state untouched, when the assembler is paused.
func (a *Assembler) Consume(c byte) bool {
	if a.paused.IsSet() {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	cur := &a.bufs[a.current]
	switch c {
	case '$':
		// a start marker discards whatever partial line came before it
		cur.reset()
	case '\n':
		cur.data[cur.idx] = 0
		if a.received {
			a.overruns++
		}
		a.current ^= 1
		a.bufs[a.current].reset()
		a.received = true
		return true
	}

	limit := len(cur.data) - 1
	if cur.idx >= limit {
		cur.idx = limit
		cur.truncated = true
		return true
	}
	cur.data[cur.idx] = c
	cur.idx++
	return true
}

// Available reports whether a completed sentence is waiting to be taken.
func (a *Assembler) Available() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.received
}

// Take returns a copy of the last completed sentence and clears the
// availability flag.
func (a *Assembler) Take() Line {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.received = false
	last := &a.bufs[a.current^1]
	return Line{Text: last.text(), Truncated: last.truncated}
}

// View returns the last completed sentence without copying it and clears the
// availability flag. The returned slice aliases the assembler's buffer and is
// overwritten by the sentence after next; it must not be retained.
func (a *Assembler) View() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.received = false
	last := &a.bufs[a.current^1]
	return last.data[:last.idx]
}

// Peek returns a copy of the last completed sentence, leaving the
// availability flag alone.
func (a *Assembler) Peek() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bufs[a.current^1].text()
}

// Clear drops the availability flag without reading the line.
func (a *Assembler) Clear() {
	a.mu.Lock()
	a.received = false
	a.mu.Unlock()
}

// Reset drops the line in progress and the unread completed line. The
// overrun count is kept.
func (a *Assembler) Reset() {
	a.mu.Lock()
	a.bufs[a.current].reset()
	a.received = false
	a.mu.Unlock()
}

// Pending returns the number of bytes accumulated for the line in progress.
func (a *Assembler) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bufs[a.current].idx
}

// Overruns returns the number of completed sentences that were replaced
// before anyone took them.
func (a *Assembler) Overruns() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.overruns
}

// Pause stops (true) or resumes (false) byte consumption. The partially
// assembled line survives a pause.
func (a *Assembler) Pause(p bool) {
	a.paused.SetTo(p)
}

// Paused reports whether consumption is paused.
func (a *Assembler) Paused() bool {
	return a.paused.IsSet()
}
