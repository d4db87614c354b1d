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

package isr_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rtxgo/kernel/config"
	"github.com/rtxgo/kernel/isr"
	"github.com/rtxgo/kernel/sched"
)

func TestUARTLineDeliveredToKCDOnCR(t *testing.T) {
	k := sched.NewKernel()
	k.RegisterProcess(config.PIDNull, config.LOWEST)
	k.RegisterProcess(config.PIDKCD, config.HIGHEST)

	rx := make(chan byte)
	u := isr.NewUART(k, rx)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go u.Run(ctx)

	got := make(chan string, 1)
	k.Spawn(config.PIDNull, func(k *sched.Kernel, self config.PID) {
		for {
			k.ReleaseProcessor(self)
		}
	})
	k.Spawn(config.PIDKCD, func(k *sched.Kernel, self config.PID) {
		e := k.ReceiveMessage(self)
		got <- string(e.Text)
	})
	k.Start()

	for _, b := range []byte("%WS 1\r") {
		rx <- b
	}

	select {
	case line := <-got:
		require.Equal(t, "%WS 1", line)
	case <-time.After(time.Second):
		t.Fatal("KCD never received the line")
	}
}

func TestUARTEchoesPrintableBytes(t *testing.T) {
	k := sched.NewKernel()
	k.RegisterProcess(config.PIDNull, config.LOWEST)

	rx := make(chan byte)
	u := isr.NewUART(k, rx)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go u.Run(ctx)

	rx <- 'x'

	require.Eventually(t, func() bool {
		select {
		case b := <-u.Output():
			return b == 'x'
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}

func TestUARTHotkeyIsNotEchoed(t *testing.T) {
	k := sched.NewKernel()
	k.RegisterProcess(config.PIDNull, config.LOWEST)

	rx := make(chan byte)
	u := isr.NewUART(k, rx)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go u.Run(ctx)

	rx <- config.HotkeyReadyQueue

	select {
	case <-u.Output():
		t.Fatal("hot-key byte should not be echoed to output")
	case <-time.After(50 * time.Millisecond):
	}
}
