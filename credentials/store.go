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
	"sync"
)

type stateTag int

const (
	tagPresent stateTag = iota
	tagPending
	tagMissing
)

// pendingRefresh is the single in-flight refresh operation waiters join. At most one
// exists at any time, per the provider's single-Retriever-call-in-flight guarantee.
type pendingRefresh struct {
	done       chan struct{}
	result     ExpiringCredentials
	err        error
	background bool
}

func newPendingRefresh(background bool) *pendingRefresh {
	return &pendingRefresh{done: make(chan struct{}), background: background}
}

func (p *pendingRefresh) complete(creds ExpiringCredentials, err error) {
	p.result = creds
	p.err = err
	close(p.done)
}

func (p *pendingRefresh) wait(ctx context.Context) (ExpiringCredentials, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return ExpiringCredentials{}, &CancelledError{}
	}
}

// store is the credential store (C1): the single source of truth for which credentials
// are current and whether a refresh is in flight. All reads and transitions are
// serialized by mu.
type store struct {
	mu sync.Mutex

	tag           stateTag
	lastInstalled ExpiringCredentials
	hasInstalled  bool

	// currentOp is non-nil whenever a Retriever call is in flight, whether it was started
	// by the on-demand path (tag == tagPending) or the background path (tag stays
	// tagPresent; background is true).
	currentOp *pendingRefresh

	shutDown bool
}

func newStore() *store {
	return &store{}
}

// snapshotResult is the immutable view of the store's state a caller reads under a single
// lock acquisition.
type snapshotResult struct {
	tag   stateTag
	creds ExpiringCredentials
	op    *pendingRefresh
}

// read returns the current tag, last-installed credentials, and any in-flight op.
func (s *store) read() snapshotResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotResult{tag: s.tag, creds: s.lastInstalled, op: s.currentOp}
}

// snapshot implements the synchronous legacy accessor: it always returns the most
// recently installed Present value, even mid-refresh, and never blocks on I/O. It fails
// only once shutdown has completed.
func (s *store) snapshot() (ExpiringCredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutDown {
		return ExpiringCredentials{}, &ProviderShutDownError{}
	}
	if !s.hasInstalled {
		return ExpiringCredentials{}, &MissingCredentialsError{Reason: "no credentials installed yet"}
	}
	return s.lastInstalled, nil
}

// beginOnDemandPending transitions the store to Pending and records op as the in-flight
// operation. Callers must already have confirmed no op is in flight.
func (s *store) beginOnDemandPending(op *pendingRefresh) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tag = tagPending
	s.currentOp = op
}

// beginBackgroundPending records op as the in-flight background operation without
// changing the tag: callers continue to observe the current Present credentials.
func (s *store) beginBackgroundPending(op *pendingRefresh) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentOp = op
}

// install sets the state to Present(creds) and clears any in-flight marker.
func (s *store) install(creds ExpiringCredentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tag = tagPresent
	s.lastInstalled = creds
	s.hasInstalled = true
	s.currentOp = nil
}

// markMissing sets the state to Missing and clears any in-flight marker. The
// last-installed credentials are retained for the legacy snapshot accessor.
func (s *store) markMissing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tag = tagMissing
	s.currentOp = nil
}

// clearBackgroundOp clears a failed background op without touching the tag or the
// last-installed credentials: the held creds, if still Present, remain valid.
func (s *store) clearBackgroundOp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentOp = nil
}

// markShutDown marks the store permanently shut down.
func (s *store) markShutDown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutDown = true
}
