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

// Package sched is the executive: the PCB table, the ready and
// blocked-on-resource priority queues, the fixed block pool, every
// mailbox, the delayed-send queue, and the context switch itself.
//
// Go cannot swap machine stacks the way the original kernel's
// k_set_process_SP/restore_sp_and_return pair does, so a process here is a
// goroutine that spends almost all of its life parked on a private,
// buffered (capacity 1) "resume gate" channel. Dispatch is: hold the
// kernel lock just long enough to pick the next PCB and flip bookkeeping,
// release it, send a non-blocking wake to the next process's gate, and --
// if the outgoing process is not the incoming one -- park the outgoing
// goroutine on its own gate. No goroutine ever touches PCB, queue, pool,
// or mailbox state without holding Kernel.mu; the lock models the
// original's single IRQ-disable critical section.
package sched

import (
	"sync"
	"sync/atomic"

	"github.com/rtxgo/kernel/config"
	"github.com/rtxgo/kernel/internal/klog"
	"github.com/rtxgo/kernel/internal/xerr"
	"github.com/rtxgo/kernel/mbox"
	"github.com/rtxgo/kernel/mem"
	"github.com/rtxgo/kernel/pq"
)

// State is a PCB's position in the process lifecycle.
type State int

const (
	StateNew State = iota
	StateReady
	StateRunning
	StateBlockedOnResource
	StateBlockedOnReceive
)

// PCB is one process's control block: everything the scheduler needs to
// know about a process other than the Go stack its goroutine is already
// sitting on.
type PCB struct {
	PID      config.PID
	Priority config.Priority
	State    State
	Mailbox  *mbox.Mailbox

	resume chan struct{}
}

// Kernel is the single instance of kernel state. The zero value is not
// usable; use NewKernel.
type Kernel struct {
	mu sync.Mutex

	pcbs    [config.NumPIDs]*PCB
	ready   *pq.Queue
	blocked *pq.Queue // blocked-on-resource, by priority
	pool    *mem.Pool
	delayed *mbox.DelayedQueue

	current  config.PID
	tick     uint64
	irqDepth int32 // diagnostic only; counts nested lock/unlock pairs

	// eagerDue is set by Tick every EagerPreemptTicks and consumed by the
	// next self-invoked preemption check. Go gives no way to forcibly
	// stop a goroutine that never calls back into the kernel, so the
	// round-robin check the timer ISR would run instantly on real
	// hardware is instead applied lazily, at whichever process's next
	// cooperative entry point (send, release, set-priority) comes along.
	eagerDue bool
}

// NewKernel builds an empty kernel: no processes registered yet, an empty
// ready queue, and a freshly carved memory pool.
func NewKernel() *Kernel {
	return &Kernel{
		ready:   pq.New(int(config.NumPIDs)),
		blocked: pq.New(int(config.NumPIDs)),
		pool:    mem.New(),
		delayed: mbox.NewDelayedQueue(),
	}
}

// lock acquires the kernel mutex and bumps the diagnostic IRQ-depth
// counter, mirroring the original's recursive irq_depth bookkeeping around
// its single disable_irq/enable_irq section. The counter is informational
// only -- Go's mutex is not recursive, and nothing here relies on it being
// one.
func (k *Kernel) lock() {
	k.mu.Lock()
	atomic.AddInt32(&k.irqDepth, 1)
}

func (k *Kernel) unlock() {
	atomic.AddInt32(&k.irqDepth, -1)
	k.mu.Unlock()
}

// wake sends a non-blocking resume signal to pcb's gate. The gate is
// buffered to depth 1, so at most one pending wake can ever be
// outstanding; a second wake before the first is consumed is a no-op,
// which is correct since pcb can only be runnable once at a time.
func (k *Kernel) wake(pcb *PCB) {
	select {
	case pcb.resume <- struct{}{}:
	default:
	}
}

// parkSelf blocks the calling goroutine -- which must be pcb's own process
// goroutine -- until the scheduler wakes it again. It must never be called
// while holding k.mu.
func (k *Kernel) parkSelf(pcb *PCB) {
	<-pcb.resume
}

// RegisterProcess creates a PCB for pid at the given starting priority and
// places it on the ready queue. It must be called before Spawn.
func (k *Kernel) RegisterProcess(pid config.PID, prio config.Priority) {
	k.lock()
	defer k.unlock()
	pcb := &PCB{
		PID:      pid,
		Priority: prio,
		State:    StateReady,
		Mailbox:  mbox.NewMailbox(config.NumBlocks),
		resume:   make(chan struct{}, 1),
	}
	k.pcbs[pid] = pcb
	k.ready.Push(pid, prio)
}

// Spawn launches pid's goroutine. body runs once the scheduler first
// dispatches to pid; until then the goroutine sits parked on its own gate.
// pid must already have been registered with RegisterProcess.
func (k *Kernel) Spawn(pid config.PID, body func(k *Kernel, self config.PID)) {
	pcb := k.pcbs[pid]
	xerr.Assert(pcb != nil, "spawn of unregistered pid")
	go func() {
		defer klog.Recover(pid.String())
		k.parkSelf(pcb)
		body(k, pid)
	}()
}

// Start picks the highest-priority ready process and hands it the
// processor for the first time. It must be called exactly once, from a
// goroutine that is not itself one of the process goroutines (normally
// boot's main goroutine), after every process has been registered.
func (k *Kernel) Start() {
	k.lock()
	pid, _, ok := k.ready.PopHighest()
	xerr.Assert(ok, "no process registered at boot")
	pcb := k.pcbs[pid]
	pcb.State = StateRunning
	k.current = pid
	k.unlock()
	k.wake(pcb)
}

// dispatchLocked must be called with k.mu held and the outgoing process's
// bookkeeping already updated by the caller (pushed onto whatever queue it
// now belongs on, or left off every queue if it has nothing left to do).
// It always releases k.mu before returning.
func (k *Kernel) dispatchLocked() {
	oldPID := k.current
	nextPID, _, ok := k.ready.PopHighest()
	xerr.Assert(ok, "ready queue became empty during dispatch")
	next := k.pcbs[nextPID]
	next.State = StateRunning
	k.current = nextPID
	k.unlock()

	if nextPID == oldPID {
		return
	}
	k.wake(next)
	k.parkSelf(k.pcbs[oldPID])
}

// higherPriority reports whether a outranks b (lower numeric value wins).
func higherPriority(a, b config.Priority) bool { return a < b }

// checkPreemptionLocked must be called with k.mu held, by the goroutine
// that is currently the running process (self-invoked from SendMessage,
// ReleaseMemoryBlock, or SetPriority). It compares the highest-priority
// ready process against the one currently running and preempts on a
// strictly higher priority; if an eager round-robin check has come due
// since the last one, it also preempts on a tie. It always releases k.mu
// before returning.
func (k *Kernel) checkPreemptionLocked() {
	eager := k.eagerDue
	k.eagerDue = false

	cur := k.pcbs[k.current]
	_, topPrio, ok := k.ready.PeekHighest()
	if !ok {
		k.unlock()
		return
	}
	trigger := higherPriority(topPrio, cur.Priority) || (eager && topPrio == cur.Priority)
	if !trigger {
		k.unlock()
		return
	}
	cur.State = StateReady
	k.ready.Push(cur.PID, cur.Priority)
	k.dispatchLocked()
}

// ReleaseProcessor voluntarily gives up the remainder of self's time
// slice.
func (k *Kernel) ReleaseProcessor(self config.PID) {
	k.lock()
	cur := k.pcbs[self]
	cur.State = StateReady
	k.ready.Push(self, cur.Priority)
	k.dispatchLocked()
}

// Tick advances the kernel clock by one and delivers any delayed-send
// envelopes now due, moving their receivers to the ready queue if they
// were blocked awaiting exactly this. It is called from the timer ISR's
// own goroutine, which holds no process identity and so -- unlike
// SendMessage or ReleaseMemoryBlock -- must never itself dispatch or park
// a process: it only ever readies one. The process that is actually
// running picks the newly-readied work up at its own next cooperative
// entry point, same as the eager round-robin flag below.
func (k *Kernel) Tick() {
	k.lock()
	k.tick++
	now := k.tick
	due := k.delayed.Expire(now)
	for _, e := range due {
		k.deliverLocked(e)
	}
	if now%config.EagerPreemptTicks == 0 {
		k.eagerDue = true
	}
	k.unlock()
}

// CurrentTick reports the current tick count.
func (k *Kernel) CurrentTick() uint64 {
	k.lock()
	defer k.unlock()
	return k.tick
}
