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

// Package pq is the strict priority queue used for both the ready queue and
// the per-resource blocked queues: one FIFO lane per priority level, and
// strict priority order across levels.
package pq

import (
	"github.com/rtxgo/kernel/config"
	"github.com/rtxgo/kernel/ring"
)

// Queue holds at most one lane per priority level, each a FIFO of PIDs.
// capacity bounds every lane identically (in practice config.NumPIDs, since
// a PID can appear in at most one queue at a time).
type Queue struct {
	lanes [config.NumPriorities]*ring.Ring[config.PID]
}

// New creates an empty queue whose lanes can each hold up to capacity PIDs.
func New(capacity int) *Queue {
	q := &Queue{}
	for i := range q.lanes {
		q.lanes[i] = ring.New[config.PID](capacity)
	}
	return q
}

// Push enqueues pid at the back of its priority's lane.
func (q *Queue) Push(pid config.PID, prio config.Priority) {
	q.lanes[prio].PushBack(pid)
}

// PopHighest removes and returns the PID at the front of the highest
// non-empty lane. ok is false if the queue is empty.
func (q *Queue) PopHighest() (pid config.PID, prio config.Priority, ok bool) {
	for p := config.Priority(0); p < config.NumPriorities; p++ {
		if q.lanes[p].Len() > 0 {
			return q.lanes[p].PopFront(), p, true
		}
	}
	return 0, 0, false
}

// PeekHighest reports the PID and priority at the front of the highest
// non-empty lane, without removing it.
func (q *Queue) PeekHighest() (pid config.PID, prio config.Priority, ok bool) {
	for p := config.Priority(0); p < config.NumPriorities; p++ {
		if v, has := q.lanes[p].Front(); has {
			return v, p, true
		}
	}
	return 0, 0, false
}

// HighestPriority reports the priority of the front of the highest
// non-empty lane, used by preemption checks that only care about the level.
func (q *Queue) HighestPriority() (prio config.Priority, ok bool) {
	_, prio, ok = q.PeekHighest()
	return
}

// Remove deletes every occurrence of pid from the queue (at most one,
// normally) and reports whether it found one.
func (q *Queue) Remove(pid config.PID) bool {
	found := false
	for i := range q.lanes {
		if q.lanes[i].Remove(func(v config.PID) bool { return v == pid }) > 0 {
			found = true
		}
	}
	return found
}

// Contains reports whether pid is anywhere in the queue.
func (q *Queue) Contains(pid config.PID) bool {
	found := false
	for i := range q.lanes {
		q.lanes[i].ForEach(func(v config.PID) {
			if v == pid {
				found = true
			}
		})
	}
	return found
}

// Move removes pid from whatever lane it currently sits in (if any) and
// re-pushes it at the back of newPrio's lane. Used by set_process_priority
// to relocate a ready process without disturbing FIFO order within either
// lane it touches.
func (q *Queue) Move(pid config.PID, newPrio config.Priority) {
	q.Remove(pid)
	q.Push(pid, newPrio)
}

// Snapshot returns every queued PID, highest-priority lane first and FIFO
// within each lane, without modifying the queue. Used by the debug dump
// hot-keys.
func (q *Queue) Snapshot() []config.PID {
	var out []config.PID
	for i := range q.lanes {
		q.lanes[i].ForEach(func(v config.PID) { out = append(out, v) })
	}
	return out
}

// Len returns the total number of PIDs queued across all lanes.
func (q *Queue) Len() int {
	n := 0
	for i := range q.lanes {
		n += q.lanes[i].Len()
	}
	return n
}

// DrainAllInto moves every PID queued at any priority, highest lane first
// and FIFO within each lane, onto the back of dst's matching lanes. Used by
// the wake-all-on-release policy for blocked-on-resource queues: every
// waiter becomes ready in one step, highest priority first.
func (q *Queue) DrainAllInto(dst *Queue) {
	for i := range q.lanes {
		q.lanes[i].DrainInto(dst.lanes[i])
	}
}
