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

package api_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rtxgo/kernel/api"
	"github.com/rtxgo/kernel/config"
	"github.com/rtxgo/kernel/sched"
)

func TestSendReceiveRoundTrip(t *testing.T) {
	k := sched.NewKernel()
	k.RegisterProcess(config.PIDNull, config.LOWEST)
	k.RegisterProcess(config.PIDTestA, config.MEDIUM)
	k.RegisterProcess(config.PIDTestB, config.LOW)

	got := make(chan string, 1)

	k.Spawn(config.PIDNull, func(k *sched.Kernel, self config.PID) {
		for {
			api.ReleaseProcessor(k, self)
		}
	})
	k.Spawn(config.PIDTestA, func(k *sched.Kernel, self config.PID) {
		e := api.ReceiveMessage(k, self)
		got <- string(e.Text)
	})
	k.Spawn(config.PIDTestB, func(k *sched.Kernel, self config.PID) {
		require.NoError(t, api.SendMessage(k, self, config.PIDTestA, config.MsgDefault, []byte("ping")))
	})

	k.Start()

	select {
	case msg := <-got:
		require.Equal(t, "ping", msg)
	case <-time.After(time.Second):
		t.Fatal("message never arrived")
	}
}

func TestSetProcessPriorityRejectsOutOfRangeLevel(t *testing.T) {
	k := sched.NewKernel()
	k.RegisterProcess(config.PIDNull, config.LOWEST)
	k.RegisterProcess(config.PIDTestA, config.MEDIUM)
	require.Error(t, api.SetProcessPriority(k, config.PIDTestA, config.NullPrio))
}

func TestSetProcessPriorityNullOffNullPrioIsNotPermitted(t *testing.T) {
	k := sched.NewKernel()
	k.RegisterProcess(config.PIDNull, config.LOWEST)
	require.Error(t, api.SetProcessPriority(k, config.PIDNull, config.HIGHEST))
}

func TestSetProcessPriorityNullToNullPrioIsNoop(t *testing.T) {
	k := sched.NewKernel()
	k.RegisterProcess(config.PIDNull, config.LOWEST)
	require.NoError(t, api.SetProcessPriority(k, config.PIDNull, config.NullPrio))
}
