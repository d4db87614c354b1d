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

package proc

import (
	"github.com/rtxgo/kernel/config"
	"github.com/rtxgo/kernel/internal/klog"
	"github.com/rtxgo/kernel/sched"
)

// TerminalOutput is the one thing CRT needs from the outside world: a
// non-blocking sink for bytes, satisfied by isr.UART.Write.
type TerminalOutput interface {
	Write(p []byte) (accepted int)
}

// NewCRT builds the CRT display process bound to out. It only ever
// receives CRT_DISPLAY messages and streams their text to out, appending a
// newline the way crt_printf's callers expect.
func NewCRT(out TerminalOutput) func(k *sched.Kernel, self config.PID) {
	return func(k *sched.Kernel, self config.PID) {
		for {
			e := k.ReceiveMessage(self)
			if e.Type != config.MsgCRTDisplay {
				klog.Debugf("crt: received non-display message type %d", e.Type)
				releaseIfBlock(k, self, e.Text)
				continue
			}
			out.Write(e.Text)
			out.Write([]byte("\r\n"))
			releaseIfBlock(k, self, e.Text)
		}
	}
}
