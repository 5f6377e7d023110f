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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStoreSnapshotFailsBeforeInstall(t *testing.T) {
	s := newStore()
	_, err := s.snapshot()
	assert.Error(t, err)
	assert.IsType(t, &MissingCredentialsError{}, err)
}

func TestStoreSnapshotReturnsLastInstalledDuringBackgroundRefresh(t *testing.T) {
	s := newStore()
	creds := ExpiringCredentials{AccessKeyID: "a", SecretAccessKey: "s"}
	s.install(creds)

	op := newPendingRefresh(true)
	s.beginBackgroundPending(op)

	snap, err := s.snapshot()
	assert.NoError(t, err)
	assert.Equal(t, creds, snap)

	r := s.read()
	assert.Equal(t, tagPresent, r.tag)
	assert.Same(t, op, r.op)
}

func TestStoreOnDemandPendingChangesTag(t *testing.T) {
	s := newStore()
	s.install(ExpiringCredentials{AccessKeyID: "a", SecretAccessKey: "s"})

	op := newPendingRefresh(false)
	s.beginOnDemandPending(op)

	r := s.read()
	assert.Equal(t, tagPending, r.tag)
	assert.Same(t, op, r.op)
}

func TestStoreMarkMissingRetainsLastInstalled(t *testing.T) {
	s := newStore()
	creds := ExpiringCredentials{AccessKeyID: "a", SecretAccessKey: "s"}
	s.install(creds)
	s.markMissing()

	r := s.read()
	assert.Equal(t, tagMissing, r.tag)

	snap, err := s.snapshot()
	assert.NoError(t, err)
	assert.Equal(t, creds, snap)
}

func TestStoreSnapshotFailsAfterShutdown(t *testing.T) {
	s := newStore()
	s.install(ExpiringCredentials{AccessKeyID: "a", SecretAccessKey: "s"})
	s.markShutDown()

	_, err := s.snapshot()
	assert.Error(t, err)
	assert.IsType(t, &ProviderShutDownError{}, err)
}

func TestPendingRefreshCoalescesWaiters(t *testing.T) {
	op := newPendingRefresh(false)
	want := ExpiringCredentials{AccessKeyID: "a", SecretAccessKey: "s"}

	results := make(chan ExpiringCredentials, 5)
	for i := 0; i < 5; i++ {
		go func() {
			creds, err := op.wait(context.Background())
			assert.NoError(t, err)
			results <- creds
		}()
	}

	time.Sleep(10 * time.Millisecond)
	op.complete(want, nil)

	for i := 0; i < 5; i++ {
		assert.Equal(t, want, <-results)
	}
}

func TestPendingRefreshWaitRespectsContextCancellation(t *testing.T) {
	op := newPendingRefresh(false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := op.wait(ctx)
	assert.IsType(t, &CancelledError{}, err)
}
