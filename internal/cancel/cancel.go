// Copyright 2016 Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"). You may not
// use this file except in compliance with the License. A copy of the
// License is located at
//
// http://aws.amazon.com/apache2.0/
//
// or in the "license" file accompanying this file. This file is distributed
// on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
// either express or implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package cancel provides a cooperative, idempotent cancellation signal for the
// rotation scheduler's sleep-until-deadline loop.
package cancel

import "sync"

// Flag is a one-shot cancellation signal. It is safe to call Cancel any number of
// times, from any goroutine, and Wait may be called concurrently with Cancel.
type Flag struct {
	ch       chan struct{}
	once     sync.Once
	canceled bool
	m        sync.RWMutex
}

// New creates an unset cancellation flag.
func New() *Flag {
	return &Flag{ch: make(chan struct{})}
}

// Cancel marks the flag canceled and wakes any goroutine blocked in Wait or C.
// Idempotent: calling it more than once has no additional effect.
func (f *Flag) Cancel() {
	f.once.Do(func() {
		f.m.Lock()
		f.canceled = true
		f.m.Unlock()
		close(f.ch)
	})
}

// Canceled reports whether Cancel has been called.
func (f *Flag) Canceled() bool {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.canceled
}

// C returns a channel that is closed when Cancel is called. Select on it alongside a
// timer to implement a cancellable sleep.
func (f *Flag) C() <-chan struct{} {
	return f.ch
}

// Wait blocks until Cancel is called.
func (f *Flag) Wait() {
	<-f.ch
}
