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

// Package boot lays out the process table and starts the executive, the Go
// analogue of k_rtx_init.c's reset vector: bring up memory and the process
// table, wire the interrupt sources, print the banner, dispatch the first
// process.
package boot

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rtxgo/kernel/config"
	"github.com/rtxgo/kernel/internal/klog"
	"github.com/rtxgo/kernel/isr"
	"github.com/rtxgo/kernel/proc"
	"github.com/rtxgo/kernel/sched"
)

// ProcessBody is a user process entry point, spawned onto its own goroutine.
type ProcessBody func(k *sched.Kernel, self config.PID)

// Config describes everything needed to bring up one executive instance.
type Config struct {
	// UserProcesses is the build-time process table for user code (the
	// PROC_INIT array): every PID that isn't NULL or one of the standard
	// collaborators below.
	UserProcesses []config.ProcInit
	Bodies        map[config.PID]ProcessBody

	// RXBytes feeds the UART ISR; nil disables the UART entirely (useful
	// for tests that only exercise the scheduler).
	RXBytes <-chan byte
}

// System is a fully wired, not-yet-started executive.
type System struct {
	Kernel *sched.Kernel
	UART   *isr.UART
	Timer  *isr.Timer
}

// New lays out the process table (NULL, the standard collaborators, and
// cfg.UserProcesses) and wires the timer/UART interrupt sources, but does
// not start the scheduler -- call Run to do that.
func New(cfg Config) *System {
	k := sched.NewKernel()

	k.RegisterProcess(config.PIDNull, config.NullPrio)
	k.Spawn(config.PIDNull, func(k *sched.Kernel, self config.PID) {
		for {
			k.ReleaseProcessor(self)
		}
	})

	k.RegisterProcess(config.PIDKCD, config.HIGHEST)
	k.Spawn(config.PIDKCD, proc.KCD)

	var uart *isr.UART
	if cfg.RXBytes != nil {
		uart = isr.NewUART(k, cfg.RXBytes)
	}

	k.RegisterProcess(config.PIDCRT, config.HIGHEST)
	if uart != nil {
		k.Spawn(config.PIDCRT, proc.NewCRT(uart))
	} else {
		k.Spawn(config.PIDCRT, proc.NewCRT(discardOutput{}))
	}

	k.RegisterProcess(config.PIDClock, config.LOW)
	k.Spawn(config.PIDClock, proc.Clock)

	k.RegisterProcess(config.PIDSetPrio, config.LOW)
	k.Spawn(config.PIDSetPrio, proc.SetPriority)

	for _, p := range cfg.UserProcesses {
		k.RegisterProcess(p.PID, p.Priority)
		body, ok := cfg.Bodies[p.PID]
		if !ok {
			klog.Infof("boot: no body registered for %v, skipping", p.PID)
			continue
		}
		k.Spawn(p.PID, body)
	}

	return &System{Kernel: k, UART: uart, Timer: isr.NewTimer(k)}
}

// Run starts the timer and UART interrupt sources (if wired) and dispatches
// the first process. It blocks until ctx is cancelled. The timer and UART
// loops report no errors, so Run returns nil.
func (s *System) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Timer.Run(gctx)
		return nil
	})
	if s.UART != nil {
		g.Go(func() error {
			s.UART.Run(gctx)
			return nil
		})
	}

	klog.Infof("RTX is starting")
	s.Kernel.Start()

	<-gctx.Done()
	return g.Wait()
}

type discardOutput struct{}

func (discardOutput) Write(p []byte) (accepted int) { return len(p) }
