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

// Package mbox holds the message envelope and the two queues built on top
// of it: the per-process mailbox and the single delayed-send queue. It has
// no knowledge of the scheduler -- it never blocks or wakes anyone, it only
// stores and orders envelopes. Waking the receiver is sched's job.
package mbox

import (
	"encoding/binary"

	"github.com/rtxgo/kernel/config"
	"github.com/rtxgo/kernel/internal/xerr"
)

// envelopeHeaderSize is the size, in bytes, of the fixed fields encoded
// ahead of the message text: sender pid, receiver pid, message type, and
// the text length, each a little-endian uint32 -- the same fixed-offset
// style as protocol/ttheader's frame header.
const envelopeHeaderSize = 16

// Envelope is a message in flight: who sent it, who it's addressed to,
// its type, and its payload text. It is the in-memory counterpart of a
// MSG_BUF taken from the block pool.
type Envelope struct {
	Sender   config.PID
	Receiver config.PID
	Type     int32
	Text     []byte
}

// MaxTextLen returns the largest Text an envelope can carry once encoded
// into a single pool block, mirroring MTEXT_MAXLEN's derivation from
// MEM_BLOCK_SIZE.
func MaxTextLen(blockPayloadSize int) int {
	return blockPayloadSize - envelopeHeaderSize
}

// Encode serializes e into buf, which must be at least
// envelopeHeaderSize+len(e.Text) bytes. It returns the number of bytes
// written.
func Encode(e Envelope, buf []byte) (int, error) {
	need := envelopeHeaderSize + len(e.Text)
	if len(buf) < need {
		return 0, xerr.ErrBadArg
	}
	binary.LittleEndian.PutUint32(buf[0:4], uint32(e.Sender))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(e.Receiver))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(e.Type))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(len(e.Text)))
	copy(buf[16:need], e.Text)
	return need, nil
}

// Decode parses an envelope previously written by Encode out of buf.
func Decode(buf []byte) (Envelope, error) {
	if len(buf) < envelopeHeaderSize {
		return Envelope{}, xerr.ErrBadArg
	}
	textLen := int(binary.LittleEndian.Uint32(buf[12:16]))
	if textLen < 0 || envelopeHeaderSize+textLen > len(buf) {
		return Envelope{}, xerr.ErrBadArg
	}
	e := Envelope{
		Sender:   config.PID(binary.LittleEndian.Uint32(buf[0:4])),
		Receiver: config.PID(binary.LittleEndian.Uint32(buf[4:8])),
		Type:     int32(binary.LittleEndian.Uint32(buf[8:12])),
	}
	e.Text = append([]byte(nil), buf[16:16+textLen]...)
	return e, nil
}
