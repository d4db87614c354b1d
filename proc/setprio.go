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
	"strconv"
	"strings"

	"github.com/rtxgo/kernel/config"
	"github.com/rtxgo/kernel/internal/klog"
	"github.com/rtxgo/kernel/sched"
)

// SetPriority is the "%C <pid> <priority>" command helper: it registers
// "%C" with KCD and calls set_process_priority for each well-formed
// request, logging (rather than displaying on the CRT) malformed input.
func SetPriority(k *sched.Kernel, self config.PID) {
	register(k, self, "%C")

	for {
		e := k.ReceiveMessage(self)
		fields := strings.Fields(string(e.Text))
		if len(fields) != 3 {
			klog.Debugf("set_prio: malformed command %q", e.Text)
			releaseIfBlock(k, self, e.Text)
			continue
		}
		pid, errPID := strconv.Atoi(fields[1])
		prio, errPrio := strconv.Atoi(fields[2])
		if errPID != nil || errPrio != nil {
			klog.Debugf("set_prio: non-numeric command %q", e.Text)
			releaseIfBlock(k, self, e.Text)
			continue
		}
		if err := k.SetPriority(config.PID(pid), config.Priority(prio)); err != nil {
			crtPrintf(k, self, "Error: illegal PID or priority.")
		}
		releaseIfBlock(k, self, e.Text)
	}
}
