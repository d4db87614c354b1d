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

package mem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rtxgo/kernel/config"
)

func TestAcquireReleaseRoundTrip(t *testing.T) {
	p := New()
	require.Equal(t, config.NumBlocks, p.FreeCount())

	blk, ok := p.TryAcquire()
	require.True(t, ok)
	require.Equal(t, config.NumBlocks-1, p.FreeCount())
	require.Len(t, blk, BlockPayloadSize())

	require.NoError(t, p.Release(blk))
	require.Equal(t, config.NumBlocks, p.FreeCount())
}

func TestExhaustion(t *testing.T) {
	p := New()
	var blocks [][]byte
	for i := 0; i < config.NumBlocks; i++ {
		blk, ok := p.TryAcquire()
		require.True(t, ok)
		blocks = append(blocks, blk)
	}
	_, ok := p.TryAcquire()
	require.False(t, ok)

	require.NoError(t, p.Release(blocks[0]))
	blk, ok := p.TryAcquire()
	require.True(t, ok)
	require.NotNil(t, blk)
}

func TestDoubleReleaseDetected(t *testing.T) {
	p := New()
	blk, ok := p.TryAcquire()
	require.True(t, ok)
	require.NoError(t, p.Release(blk))
	require.Error(t, p.Release(blk))
}

func TestForeignPointerRejected(t *testing.T) {
	p := New()
	foreign := make([]byte, BlockPayloadSize())
	require.Error(t, p.Release(foreign))
}

func TestWrongSizeRejected(t *testing.T) {
	p := New()
	blk, ok := p.TryAcquire()
	require.True(t, ok)
	require.Error(t, p.Release(blk[:len(blk)-1]))
}
