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

package pq

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rtxgo/kernel/config"
)

func TestStrictPriorityAcrossLevels(t *testing.T) {
	q := New(8)
	q.Push(config.PIDP1, config.LOW)
	q.Push(config.PIDP2, config.HIGHEST)
	q.Push(config.PIDP3, config.MEDIUM)

	pid, prio, ok := q.PopHighest()
	require.True(t, ok)
	require.Equal(t, config.PIDP2, pid)
	require.Equal(t, config.HIGHEST, prio)

	pid, _, ok = q.PopHighest()
	require.True(t, ok)
	require.Equal(t, config.PIDP3, pid)

	pid, _, ok = q.PopHighest()
	require.True(t, ok)
	require.Equal(t, config.PIDP1, pid)
}

func TestFIFOWithinLevel(t *testing.T) {
	q := New(8)
	q.Push(config.PIDP1, config.MEDIUM)
	q.Push(config.PIDP2, config.MEDIUM)
	q.Push(config.PIDP3, config.MEDIUM)

	var order []config.PID
	for {
		pid, _, ok := q.PopHighest()
		if !ok {
			break
		}
		order = append(order, pid)
	}
	require.Equal(t, []config.PID{config.PIDP1, config.PIDP2, config.PIDP3}, order)
}

func TestMoveRelocatesAndPreservesFIFOOfDestination(t *testing.T) {
	q := New(8)
	q.Push(config.PIDP1, config.MEDIUM)
	q.Push(config.PIDP2, config.MEDIUM)
	q.Push(config.PIDP3, config.LOW)

	q.Move(config.PIDP1, config.LOW)

	require.False(t, q.Contains(config.PIDP1) && q.lanes[config.MEDIUM].Len() > 0 && func() bool {
		found := false
		q.lanes[config.MEDIUM].ForEach(func(v config.PID) {
			if v == config.PIDP1 {
				found = true
			}
		})
		return found
	}())

	pid, prio, ok := q.PopHighest()
	require.True(t, ok)
	require.Equal(t, config.PIDP2, pid)
	require.Equal(t, config.MEDIUM, prio)

	pid, prio, ok = q.PopHighest()
	require.True(t, ok)
	require.Equal(t, config.PIDP3, pid)
	require.Equal(t, config.LOW, prio)

	pid, prio, ok = q.PopHighest()
	require.True(t, ok)
	require.Equal(t, config.PIDP1, pid)
	require.Equal(t, config.LOW, prio)
}

func TestDrainAllIntoPreservesPriorityAndFIFO(t *testing.T) {
	blocked := New(8)
	ready := New(8)

	blocked.Push(config.PIDP1, config.LOW)
	blocked.Push(config.PIDP2, config.HIGHEST)
	blocked.Push(config.PIDP3, config.HIGHEST)

	blocked.DrainAllInto(ready)
	require.Equal(t, 0, blocked.Len())

	pid, _, ok := ready.PopHighest()
	require.True(t, ok)
	require.Equal(t, config.PIDP2, pid)
	pid, _, ok = ready.PopHighest()
	require.True(t, ok)
	require.Equal(t, config.PIDP3, pid)
	pid, _, ok = ready.PopHighest()
	require.True(t, ok)
	require.Equal(t, config.PIDP1, pid)
}

func TestRemoveNotPresent(t *testing.T) {
	q := New(8)
	q.Push(config.PIDP1, config.MEDIUM)
	require.False(t, q.Remove(config.PIDP2))
	require.True(t, q.Remove(config.PIDP1))
}
