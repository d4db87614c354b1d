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

// Package isr holds the two interrupt sources: the periodic timer and the
// UART receiver/transmitter. Both are plain goroutines driven off a
// ticker or a channel -- the same event-loop shape as
// internal/iouring's eventloop, just without the io_uring completion
// queue -- rather than pseudo-processes dispatched through the scheduler,
// since neither one ever blocks waiting for a reply and so has no reason
// to hold the run token.
package isr

import (
	"context"
	"time"

	"github.com/rtxgo/kernel/config"
	"github.com/rtxgo/kernel/internal/klog"
	"github.com/rtxgo/kernel/sched"
)

// Timer fires k.Tick() once every config.TimerTickMS.
type Timer struct {
	k      *sched.Kernel
	period time.Duration
}

// NewTimer builds a timer ISR bound to k.
func NewTimer(k *sched.Kernel) *Timer {
	return &Timer{k: k, period: config.TimerTickMS * time.Millisecond}
}

// Run drives the ticker loop until ctx is cancelled.
func (t *Timer) Run(ctx context.Context) {
	defer klog.Recover("timer_iproc")
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.k.Tick()
		case <-ctx.Done():
			return
		}
	}
}
