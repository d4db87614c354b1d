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

// rtxsim runs the executive against a real terminal: stdin feeds the UART
// RX side byte by byte, the UART TX ring is drained straight to stdout, and
// three demo processes (the classic A -> B -> C stress chain) are wired in
// as user code so there is something to type "%Z" at.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rtxgo/kernel/boot"
	"github.com/rtxgo/kernel/config"
	"github.com/rtxgo/kernel/internal/klog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rx := make(chan byte)
	go readStdin(ctx, rx)

	sys := boot.New(boot.Config{
		RXBytes: rx,
		UserProcesses: []config.ProcInit{
			{PID: config.PIDTestA, Priority: config.LOW},
			{PID: config.PIDTestB, Priority: config.LOW},
			{PID: config.PIDTestC, Priority: config.LOW},
		},
		Bodies: map[config.PID]boot.ProcessBody{
			config.PIDTestA: demoA,
			config.PIDTestB: demoB,
			config.PIDTestC: demoC,
		},
	})

	go writeStdout(ctx, sys.UART.Output())

	fmt.Fprintln(os.Stderr, "rtxsim: type %Z to start the stress chain, %WS hh:mm:ss to set the clock, ctrl-c to quit")
	if err := sys.Run(ctx); err != nil {
		klog.Infof("rtxsim: exited: %v", err)
	}
}

func readStdin(ctx context.Context, rx chan<- byte) {
	defer close(rx)
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			select {
			case rx <- buf[0]:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func writeStdout(ctx context.Context, tx <-chan byte) {
	for {
		select {
		case b, ok := <-tx:
			if !ok {
				return
			}
			os.Stdout.Write([]byte{b})
		case <-ctx.Done():
			return
		}
	}
}
