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

package cancel

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCancelWakesWaiters(t *testing.T) {
	f := New()
	assert.False(t, f.Canceled())

	done := make(chan struct{})
	go func() {
		f.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before Cancel was called")
	case <-time.After(20 * time.Millisecond):
	}

	f.Cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Cancel")
	}
	assert.True(t, f.Canceled())
}

func TestCancelIsIdempotent(t *testing.T) {
	f := New()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Cancel()
		}()
	}
	wg.Wait()
	assert.True(t, f.Canceled())
}

func TestCSelectableAlongsideTimer(t *testing.T) {
	f := New()
	fired := false
	go func() {
		time.Sleep(10 * time.Millisecond)
		f.Cancel()
	}()
	select {
	case <-f.C():
	case <-time.After(time.Second):
		fired = true
	}
	assert.False(t, fired)
}
