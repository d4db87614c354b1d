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

func TestTimerAdvancesKernelTick(t *testing.T) {
	k := sched.NewKernel()
	k.RegisterProcess(config.PIDNull, config.LOWEST)

	timer := isr.NewTimer(k)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go timer.Run(ctx)

	require.Eventually(t, func() bool {
		return k.CurrentTick() > 5
	}, time.Second, time.Millisecond)
}
