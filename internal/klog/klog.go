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

// Package klog is a minimal leveled wrapper around the standard log
// package. The kernel has no business depending on a structured logging
// library for a handful of boot and panic-recovery lines, so -- like
// gopool's own panic handler -- it just calls log.Printf.
package klog

import (
	"log"
	"os"
)

// Level controls which calls to Debugf are emitted. Kernels boot quietly by
// default; set Level to LevelDebug to see per-tick scheduler chatter.
type Level int

const (
	LevelInfo Level = iota
	LevelDebug
)

var std = log.New(os.Stderr, "rtx: ", log.Ltime|log.Lmicroseconds)

var current = LevelInfo

// SetLevel changes the package-global verbosity.
func SetLevel(l Level) { current = l }

// Infof logs unconditionally.
func Infof(format string, args ...interface{}) {
	std.Printf(format, args...)
}

// Debugf logs only when the level is at or above LevelDebug.
func Debugf(format string, args ...interface{}) {
	if current >= LevelDebug {
		std.Printf(format, args...)
	}
}

// Recover is installed as a deferred call at the top of every
// interrupt-service and process goroutine so a single misbehaving
// collaborator cannot take the whole executive down silently.
func Recover(who string) {
	if r := recover(); r != nil {
		std.Printf("panic in %s: %v", who, r)
	}
}
