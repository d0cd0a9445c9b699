// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ringbuf implements a fixed-capacity circular byte buffer with
// overwrite-oldest semantics.  It is meant to sit in front of a streaming
// byte source: the consumer pushes newly received bytes, linearizes the
// buffered window to search it for a delimiter, and purges the consumed
// prefix once it has been processed.
//
// A Buffer is not safe for concurrent use; callers sharing one across
// goroutines must provide their own synchronization.
package ringbuf

import (
	"bytes"
	"fmt"
)

// Buffer is a fixed-capacity circular byte buffer.  Once full, each pushed
// byte overwrites the oldest buffered byte, so the buffer always holds the
// most recent window of the stream, never more than Cap bytes.
//
// The zero value is not usable; use New.
type Buffer struct {
	ring    []byte // circular store, exactly Cap bytes
	scratch []byte // linearization space backing Bytes
	used    int    // valid bytes, 0 <= used <= Cap
	pos     int    // next write index into ring, 0 <= pos < Cap
}

// New returns an empty buffer that retains the last capacity bytes pushed
// into it.  New panics if capacity is not positive.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		panic(fmt.Sprintf("ringbuf: non-positive capacity %d", capacity))
	}
	return &Buffer{
		ring:    make([]byte, capacity),
		scratch: make([]byte, capacity),
	}
}

// Cap returns the fixed capacity chosen at construction.
func (b *Buffer) Cap() int { return len(b.ring) }

// Len returns the number of valid bytes currently buffered.
func (b *Buffer) Len() int { return b.used }

// Empty reports whether the buffer holds no valid bytes.
func (b *Buffer) Empty() bool { return b.used == 0 }

// Reset discards all buffered bytes.  Storage is retained and not zeroed;
// stale bytes are unreachable since the length is zero.
func (b *Buffer) Reset() {
	b.used = 0
	b.pos = 0
}

// Push appends p to the buffer, overwriting the oldest buffered bytes once
// the buffer is full.  If p is longer than the capacity, only its last Cap
// bytes are retained; the rest could not have survived the overwrites
// anyway.  Push always succeeds: overflow is the defined behavior, not an
// error.
//
// Push invalidates any slice previously returned by Bytes.
func (b *Buffer) Push(p []byte) {
	c := len(b.ring)
	if len(p) > c {
		p = p[len(p)-c:]
	}
	n := copy(b.ring[b.pos:], p)
	copy(b.ring, p[n:])
	b.pos = (b.pos + len(p)) % c
	if b.used += len(p); b.used > c {
		b.used = c
	}
}

// Write pushes p and returns len(p) with a nil error, implementing
// io.Writer so a Buffer can terminate an io.Copy or io.MultiWriter chain.
func (b *Buffer) Write(p []byte) (int, error) {
	b.Push(p)
	return len(p), nil
}

// Bytes returns the buffered window as a contiguous slice of exactly Len
// bytes, oldest first.  The slice aliases storage owned by the buffer and
// is valid only until the next call to Push, Write, Purge or Reset; callers
// that need the bytes beyond that must copy them out.
func (b *Buffer) Bytes() []byte {
	c := len(b.ring)
	oldest := (b.pos - b.used + c) % c
	switch {
	case oldest < b.pos:
		// The window is contiguous in the ring.
		copy(b.scratch, b.ring[oldest:b.pos])
	case oldest > b.pos:
		// The window wraps past the end of the ring.
		n := copy(b.scratch, b.ring[oldest:])
		copy(b.scratch[n:], b.ring[:b.pos])
	case b.used == c:
		// Full: the window is the whole ring, starting at pos.
		n := copy(b.scratch, b.ring[b.pos:])
		copy(b.scratch[n:], b.ring[:b.pos])
	}
	return b.scratch[:b.used]
}

// String returns the buffered window as a string.
func (b *Buffer) String() string { return string(b.Bytes()) }

// Purge logically discards the n oldest buffered bytes without moving any
// data; the window simply shrinks from its oldest end.  Purge reports
// whether it was applied: purging more bytes than are buffered, or a
// negative count, leaves the buffer unchanged and returns false.  Purging
// exactly Len bytes is equivalent to Reset.
//
// Purge invalidates any slice previously returned by Bytes.
func (b *Buffer) Purge(n int) bool {
	switch {
	case n < 0 || n > b.used:
		return false
	case n == b.used:
		b.used = 0
		b.pos = 0
	default:
		b.used -= n
	}
	return true
}

// FirstOccurrence returns the offset within Bytes of the first occurrence
// of pattern, or -1 if pattern is empty, longer than the buffered window,
// or absent from it.
func (b *Buffer) FirstOccurrence(pattern []byte) int {
	return b.occurrence(pattern, 0)
}

// SecondOccurrence returns the offset of the occurrence of pattern starting
// strictly after its first occurrence, or -1 if pattern occurs fewer than
// two times.  Occurrences may overlap: the second search resumes one byte
// past the start of the first match, not past its end.
func (b *Buffer) SecondOccurrence(pattern []byte) int {
	first := b.occurrence(pattern, 0)
	if first < 0 {
		return -1
	}
	return b.occurrence(pattern, first+1)
}

// occurrence returns the lowest offset >= from at which pattern occurs in
// the linearized window, or -1.  An empty pattern, or one that cannot fit
// between from and the end of the window, is never found.
func (b *Buffer) occurrence(pattern []byte, from int) int {
	window := b.Bytes()
	if len(pattern) == 0 || from+len(pattern) > len(window) {
		return -1
	}
	if i := bytes.Index(window[from:], pattern); i >= 0 {
		return from + i
	}
	return -1
}
