/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package mbox

import (
	"github.com/rtxgo/kernel/ring"
)

// Mailbox is one process's FIFO of pending envelopes.
type Mailbox struct {
	q *ring.Ring[Envelope]
}

// NewMailbox creates a mailbox that can hold up to capacity envelopes.
// Senders never block: delivering to a full mailbox panics (ring overflow).
// In practice the count is bounded by the number of pool blocks, so
// capacity is usually config.NumBlocks.
func NewMailbox(capacity int) *Mailbox {
	return &Mailbox{q: ring.New[Envelope](capacity)}
}

// Deliver appends e to the back of the mailbox.
func (m *Mailbox) Deliver(e Envelope) {
	m.q.PushBack(e)
}

// Take removes and returns the oldest pending envelope.
func (m *Mailbox) Take() (Envelope, bool) {
	if m.q.Len() == 0 {
		return Envelope{}, false
	}
	return m.q.PopFront(), true
}

// Len reports how many envelopes are waiting.
func (m *Mailbox) Len() int {
	return m.q.Len()
}

// delayedEntry is one row of the delayed-send queue: an envelope plus the
// absolute tick at which it is due, and the order it was enqueued in so
// that equal deadlines resolve FIFO.
type delayedEntry struct {
	deadline uint64
	seq      uint64
	env      Envelope
}

// DelayedQueue holds envelopes that are due to be delivered at a future
// tick, kept in ascending-deadline order with ties broken by insertion
// order, mirroring message_queue.c's sorted linked list.
type DelayedQueue struct {
	entries []delayedEntry
	nextSeq uint64
}

// NewDelayedQueue creates an empty delayed-send queue.
func NewDelayedQueue() *DelayedQueue {
	return &DelayedQueue{}
}

// Insert places env into the queue, due at deadline (an absolute tick
// count). Insertion is a linear scan to the first strictly-later entry,
// same as the original's sorted insert -- the queue is expected to hold at
// most a handful of entries at once.
func (d *DelayedQueue) Insert(deadline uint64, env Envelope) {
	seq := d.nextSeq
	d.nextSeq++
	e := delayedEntry{deadline: deadline, seq: seq, env: env}
	i := 0
	for ; i < len(d.entries); i++ {
		if d.entries[i].deadline > deadline {
			break
		}
	}
	d.entries = append(d.entries, delayedEntry{})
	copy(d.entries[i+1:], d.entries[i:])
	d.entries[i] = e
}

// Expire removes and returns, in order, every entry whose deadline is <=
// now.
func (d *DelayedQueue) Expire(now uint64) []Envelope {
	i := 0
	for ; i < len(d.entries); i++ {
		if d.entries[i].deadline > now {
			break
		}
	}
	if i == 0 {
		return nil
	}
	due := make([]Envelope, i)
	for k := 0; k < i; k++ {
		due[k] = d.entries[k].env
	}
	d.entries = d.entries[i:]
	return due
}

// Len reports how many envelopes are pending delivery.
func (d *DelayedQueue) Len() int {
	return len(d.entries)
}
