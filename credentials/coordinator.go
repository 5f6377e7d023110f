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
	"time"

	"github.com/aws/rotating-credentials-provider/internal/clock"
	"github.com/aws/rotating-credentials-provider/internal/log"
)

// coordinatorOpts carries the tunables the coordinator needs from configuration.
type coordinatorOpts struct {
	expirationBuffer  time.Duration
	backgroundBuffer  time.Duration
	validRetryDelay   time.Duration
	invalidRetryDelay time.Duration
}

// coordinator is the refresh coordinator (C3). It owns the Retriever and coalesces
// concurrent on-demand refreshes with the scheduler-driven background refresh into a
// single in-flight call.
type coordinator struct {
	retriever Retriever
	store     *store
	scheduler *scheduler
	clock     clock.Clock
	logger    log.T
	opts      coordinatorOpts

	// refreshCtx is the parent context for every Retriever call the coordinator makes.
	// The provider cancels it on shutdown so an in-flight refresh unblocks its waiters
	// promptly instead of leaving them parked on a Retriever call that will never return.
	refreshCtx context.Context
}

func newCoordinator(retriever Retriever, s *store, sched *scheduler, c clock.Clock, logger log.T, refreshCtx context.Context, opts coordinatorOpts) *coordinator {
	return &coordinator{
		retriever:  retriever,
		store:      s,
		scheduler:  sched,
		clock:      c,
		logger:     logger,
		opts:       opts,
		refreshCtx: refreshCtx,
	}
}

// get implements the on-demand refresh path described in the coordinator's five steps:
// fast path on fresh creds, otherwise await whichever refresh (background or pending) is
// already in flight, otherwise start a new one.
func (c *coordinator) get(ctx context.Context) (ExpiringCredentials, error) {
	r := c.store.read()

	switch r.tag {
	case tagPresent:
		if !r.creds.HasExpiration || r.creds.Expiration.After(c.clock.Now().Add(c.opts.expirationBuffer)) {
			return r.creds, nil
		}
		if r.op != nil {
			// A background refresh is already in flight for these soon-to-expire creds.
			return r.op.wait(ctx)
		}
	case tagPending:
		if r.op != nil {
			return r.op.wait(ctx)
		}
	case tagMissing:
		if r.op != nil {
			return r.op.wait(ctx)
		}
	}

	return c.beginOnDemandRefresh(ctx)
}

// beginOnDemandRefresh cancels any armed scheduler task, starts a fresh refresh, and
// awaits it. The store state is re-checked under the store lock first, so a caller
// that raced another refresh joins it (or takes its fresh result) instead of starting
// a second one.
func (c *coordinator) beginOnDemandRefresh(ctx context.Context) (ExpiringCredentials, error) {
	c.store.mu.Lock()
	if existing := c.store.currentOp; existing != nil {
		c.store.mu.Unlock()
		return existing.wait(ctx)
	}
	held := c.store.lastInstalled
	if c.store.tag == tagPresent && (!held.HasExpiration || held.Expiration.After(c.clock.Now().Add(c.opts.expirationBuffer))) {
		c.store.mu.Unlock()
		return held, nil
	}
	c.scheduler.cancel()
	op := newPendingRefresh(false)
	c.store.tag = tagPending
	c.store.currentOp = op
	c.store.mu.Unlock()

	c.runRefresh(op)

	return op.wait(ctx)
}

// runRefresh invokes the Retriever and completes op, applying the on-success and
// on-failure sequences for the on-demand path. It runs synchronously on the caller's
// goroutine: the caller is the one who will wait on op anyway, and other joiners wait
// on the same op concurrently.
func (c *coordinator) runRefresh(op *pendingRefresh) {
	creds, err := c.retriever.GetCredentials(c.refreshCtx)
	if err != nil {
		if c.refreshCtx.Err() != nil {
			op.complete(ExpiringCredentials{}, &CancelledError{})
			return
		}
		c.logger.Errorf("on-demand credential refresh failed: %v", err)
		c.store.markMissing()
		op.complete(ExpiringCredentials{}, err)
		return
	}

	c.install(creds)
	op.complete(creds, nil)
}

// install stores fresh credentials and arms the next background refresh task, if the
// credentials carry an expiration.
func (c *coordinator) install(creds ExpiringCredentials) {
	c.store.install(creds)
	if creds.HasExpiration {
		deadline := creds.Expiration.Add(-c.opts.backgroundBuffer)
		c.scheduler.armAt(deadline, c.backgroundRefresh)
	}
}

// backgroundRefresh is the scheduler's fire callback (the background path). It does not
// mark the store Pending: callers keep receiving the still-valid held credentials while
// this runs.
func (c *coordinator) backgroundRefresh() {
	c.store.mu.Lock()
	if c.store.tag != tagPresent || c.store.currentOp != nil {
		// An on-demand refresh has already taken over, or a refresh is already in flight.
		c.store.mu.Unlock()
		return
	}
	held := c.store.lastInstalled
	op := newPendingRefresh(true)
	c.store.currentOp = op
	c.store.mu.Unlock()

	creds, err := c.retriever.GetCredentials(c.refreshCtx)
	if err != nil {
		c.store.clearBackgroundOp()
		if c.refreshCtx.Err() != nil {
			op.complete(ExpiringCredentials{}, &CancelledError{})
			return
		}
		op.complete(ExpiringCredentials{}, err)
		c.rearmAfterBackgroundFailure(held)
		return
	}

	c.install(creds)
	op.complete(creds, nil)
}

// rearmAfterBackgroundFailure implements the V1 rotation discipline: a 60 second retry
// if the held credentials are still valid, or a 3600 second retry if they've already
// expired. The delay is armed directly; it is not routed back through
// expiration-backgroundBuffer deadline arithmetic.
func (c *coordinator) rearmAfterBackgroundFailure(held ExpiringCredentials) {
	delay := c.opts.validRetryDelay
	if held.HasExpiration && !held.Expiration.After(c.clock.Now()) {
		delay = c.opts.invalidRetryDelay
	}

	if held.HasExpiration && held.Expiration.After(c.clock.Now()) {
		c.logger.Warnf("background credential refresh failed, retrying in %s", delay)
	} else {
		c.logger.Errorf("background credential refresh failed, retrying in %s", delay)
	}

	c.scheduler.arm(delay, c.backgroundRefresh)
}
