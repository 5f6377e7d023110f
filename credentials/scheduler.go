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

package credentials

import (
	"sync"
	"time"

	"github.com/aws/rotating-credentials-provider/internal/cancel"
	"github.com/aws/rotating-credentials-provider/internal/clock"
)

// scheduler arms at most one cancellable sleep-until-deadline task at a time. Installing a
// new task cancels whatever was previously armed before arming the replacement, so cancelled
// fires never invoke fire.
type scheduler struct {
	clock clock.Clock

	mu      sync.Mutex
	current *cancel.Flag
}

func newScheduler(c clock.Clock) *scheduler {
	return &scheduler{clock: c}
}

// armAt cancels any previously armed task and arms a new one that calls fire when deadline
// is reached, or immediately if deadline is already in the past. fire runs on its own
// goroutine and must not block the scheduler.
func (s *scheduler) armAt(deadline time.Time, fire func()) {
	s.arm(s.delayUntil(deadline), fire)
}

// arm cancels any previously armed task and arms a new one that calls fire after delay
// (immediately if delay <= 0).
func (s *scheduler) arm(delay time.Duration, fire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.Cancel()
	}
	flag := cancel.New()
	s.current = flag

	go func() {
		if delay > 0 {
			select {
			case <-s.clock.After(delay):
			case <-flag.C():
				return
			}
		}
		if flag.Canceled() {
			return
		}
		fire()
	}()
}

// cancel drops any armed task without firing it.
func (s *scheduler) cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Cancel()
		s.current = nil
	}
}

func (s *scheduler) delayUntil(deadline time.Time) time.Duration {
	return deadline.Sub(s.clock.Now())
}
