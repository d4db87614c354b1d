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

package sched_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rtxgo/kernel/config"
	"github.com/rtxgo/kernel/sched"
)

func recvWithTimeout(t *testing.T, ch <-chan config.PID) config.PID {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for scheduler activity")
		return 0
	}
}

func TestFIFOWithinSamePriorityLevel(t *testing.T) {
	k := sched.NewKernel()
	k.RegisterProcess(config.PIDNull, config.LOWEST)
	k.RegisterProcess(config.PIDTestA, config.MEDIUM)
	k.RegisterProcess(config.PIDTestB, config.MEDIUM)

	order := make(chan config.PID, 2)

	k.Spawn(config.PIDNull, func(k *sched.Kernel, self config.PID) {
		for {
			k.ReleaseProcessor(self)
		}
	})
	k.Spawn(config.PIDTestA, func(k *sched.Kernel, self config.PID) {
		order <- self
		k.ReleaseProcessor(self)
	})
	k.Spawn(config.PIDTestB, func(k *sched.Kernel, self config.PID) {
		order <- self
		k.ReleaseProcessor(self)
	})

	k.Start()

	require.Equal(t, config.PIDTestA, recvWithTimeout(t, order))
	require.Equal(t, config.PIDTestB, recvWithTimeout(t, order))
}

func TestSendMessagePreemptsLowerPriorityRunner(t *testing.T) {
	k := sched.NewKernel()
	k.RegisterProcess(config.PIDNull, config.LOWEST)
	k.RegisterProcess(config.PIDTestA, config.MEDIUM) // receiver, higher priority
	k.RegisterProcess(config.PIDTestB, config.LOW)     // sender, lower priority

	received := make(chan string, 1)

	k.Spawn(config.PIDNull, func(k *sched.Kernel, self config.PID) {
		for {
			k.ReleaseProcessor(self)
		}
	})
	k.Spawn(config.PIDTestA, func(k *sched.Kernel, self config.PID) {
		e := k.ReceiveMessage(self)
		received <- string(e.Text)
	})
	k.Spawn(config.PIDTestB, func(k *sched.Kernel, self config.PID) {
		_ = k.SendMessage(self, config.PIDTestA, config.MsgDefault, []byte("hi"))
	})

	k.Start()

	select {
	case msg := <-received:
		require.Equal(t, "hi", msg)
	case <-time.After(time.Second):
		t.Fatal("receiver never got the message")
	}
}

func TestMemoryBlockWakeAllOnRelease(t *testing.T) {
	k := sched.NewKernel()
	k.RegisterProcess(config.PIDNull, config.LOWEST)
	k.RegisterProcess(config.PIDTestA, config.HIGHEST)
	k.RegisterProcess(config.PIDTestB, config.MEDIUM)

	gotA := make(chan struct{})
	gotB := make(chan struct{})

	// drain the pool down to zero free blocks up front, from the test
	// goroutine, before anyone is spawned.
	held := make([][]byte, 0, config.NumBlocks)
	for {
		if k.FreeBlockCount() == 0 {
			break
		}
		blk := k.RequestMemoryBlock(config.PIDNull)
		held = append(held, blk)
	}
	require.Equal(t, 0, k.FreeBlockCount())

	// Null releases the one block it drained for itself, then idles.
	// Every kernel call must be made by the process it concerns, so the
	// release has to happen inside Null's own goroutine rather than
	// bystander code in the test.
	k.Spawn(config.PIDNull, func(k *sched.Kernel, self config.PID) {
		require.NoError(t, k.ReleaseMemoryBlock(self, held[0]))
		for {
			k.ReleaseProcessor(self)
		}
	})
	k.Spawn(config.PIDTestA, func(k *sched.Kernel, self config.PID) {
		k.RequestMemoryBlock(self)
		close(gotA)
	})
	k.Spawn(config.PIDTestB, func(k *sched.Kernel, self config.PID) {
		k.RequestMemoryBlock(self)
		close(gotB)
	})

	// the wake-all policy puts both A and B back on the ready queue once
	// Null's release frees a block, but only one of them wins the race
	// for it -- the higher-priority one (A) must win.
	k.Start()

	select {
	case <-gotA:
	case <-time.After(time.Second):
		t.Fatal("higher priority waiter never got the freed block")
	}

	select {
	case <-gotB:
		t.Fatal("lower priority waiter should still be blocked")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSetPriorityLetsTargetRunSooner(t *testing.T) {
	k := sched.NewKernel()
	k.RegisterProcess(config.PIDNull, config.LOWEST)
	k.RegisterProcess(config.PIDTestA, config.LOW)     // raised to HIGHEST mid-run
	k.RegisterProcess(config.PIDSetPrio, config.HIGHEST) // calls SetPriority on itself's behalf

	ran := make(chan struct{})

	k.Spawn(config.PIDNull, func(k *sched.Kernel, self config.PID) {
		for {
			k.ReleaseProcessor(self)
		}
	})
	k.Spawn(config.PIDTestA, func(k *sched.Kernel, self config.PID) {
		close(ran)
	})
	// SetPriority must be called by whatever process is actually
	// current, same as every other kernel primitive -- here that's
	// PIDSetPrio itself, dispatched first since it is the only
	// HIGHEST-priority process at boot.
	k.Spawn(config.PIDSetPrio, func(k *sched.Kernel, self config.PID) {
		require.NoError(t, k.SetPriority(config.PIDTestA, config.HIGHEST))
		k.ReleaseProcessor(self) // round-robins to TestA, now tied at HIGHEST
	})

	k.Start()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("raised-priority process never got to run")
	}

	prio, err := k.GetPriority(config.PIDTestA)
	require.NoError(t, err)
	require.Equal(t, config.HIGHEST, prio)
}
