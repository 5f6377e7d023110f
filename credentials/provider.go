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
	"time"

	"github.com/aws/rotating-credentials-provider/internal/clock"
	"github.com/aws/rotating-credentials-provider/internal/log"
)

// Options configures a Provider.
type Options struct {
	// ExpirationBuffer is the on-demand staleness threshold: credentials within this
	// much of expiring are treated as stale by Get. Defaults to 120s.
	ExpirationBuffer time.Duration
	// BackgroundBuffer is the background pre-fetch lead time: the scheduler fires this
	// much before expiration. Defaults to 300s.
	BackgroundBuffer time.Duration
	// ValidRetryDelay is the V1 re-arm interval after a background refresh failure while
	// the held credentials are still valid. Defaults to 60s.
	ValidRetryDelay time.Duration
	// InvalidRetryDelay is the V1 re-arm interval after a background refresh failure once
	// the held credentials have already expired. Defaults to 3600s.
	InvalidRetryDelay time.Duration
	// RoleSessionName is used for logging only.
	RoleSessionName string
	// Logger receives the provider's diagnostic output. It has no default; New requires
	// one.
	Logger log.T
	// Clock abstracts time for testing. Defaults to clock.DefaultClock.
	Clock clock.Clock
}

func (o Options) withDefaults() Options {
	if o.ExpirationBuffer == 0 {
		o.ExpirationBuffer = 120 * time.Second
	}
	if o.BackgroundBuffer == 0 {
		o.BackgroundBuffer = 300 * time.Second
	}
	if o.ValidRetryDelay == 0 {
		o.ValidRetryDelay = 60 * time.Second
	}
	if o.InvalidRetryDelay == 0 {
		o.InvalidRetryDelay = 3600 * time.Second
	}
	if o.Clock == nil {
		o.Clock = clock.DefaultClock
	}
	return o
}

// Provider is the public facade (C4): it owns the credential store, rotation scheduler,
// and refresh coordinator, and exposes construct/start/get/shutdown/wait.
type Provider struct {
	retriever   Retriever
	store       *store
	scheduler   *scheduler
	coordinator *coordinator
	logger      log.T

	mu     sync.Mutex
	status Status

	terminated chan struct{}
	once       sync.Once

	cancelRefreshes context.CancelFunc
}

// New performs an initial synchronous fetch via retriever so construction either
// succeeds with usable credentials or fails outright. The returned Provider is
// Initialized; call Start to arm background rotation.
func New(ctx context.Context, retriever Retriever, opts Options) (*Provider, error) {
	opts = opts.withDefaults()

	s := newStore()
	sched := newScheduler(opts.Clock)
	refreshCtx, cancelRefreshes := context.WithCancel(context.Background())
	coord := newCoordinator(retriever, s, sched, opts.Clock, opts.Logger, refreshCtx, coordinatorOpts{
		expirationBuffer:  opts.ExpirationBuffer,
		backgroundBuffer:  opts.BackgroundBuffer,
		validRetryDelay:   opts.ValidRetryDelay,
		invalidRetryDelay: opts.InvalidRetryDelay,
	})

	creds, err := retriever.GetCredentials(ctx)
	if err != nil {
		cancelRefreshes()
		return nil, err
	}
	s.install(creds)

	p := &Provider{
		retriever:       retriever,
		store:           s,
		scheduler:       sched,
		coordinator:     coord,
		logger:          opts.Logger,
		status:          Initialized,
		terminated:      make(chan struct{}),
		cancelRefreshes: cancelRefreshes,
	}

	p.logger.Infof("credentials provider initialized for role session %q", opts.RoleSessionName)
	return p, nil
}

// Start transitions Initialized to Running and arms the first background scheduler task
// iff the initial credentials carry an expiration. It is idempotent from any
// non-Initialized state.
func (p *Provider) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status != Initialized {
		return
	}
	p.status = Running

	if r, err := p.store.snapshot(); err == nil && r.HasExpiration {
		deadline := r.Expiration.Add(-p.coordinator.opts.backgroundBuffer)
		p.scheduler.armAt(deadline, p.coordinator.backgroundRefresh)
	}

	p.logger.Info("credentials provider started")
}

// Get returns usable credentials, refreshing on demand per the coordinator's coalescing
// rules if the held value is stale or missing. It may suspend on I/O.
func (p *Provider) Get(ctx context.Context) (ExpiringCredentials, error) {
	if p.isStopped() {
		return ExpiringCredentials{}, &ProviderShutDownError{}
	}
	return p.coordinator.get(ctx)
}

// CurrentCredentials returns the most recently installed credentials without blocking
// on I/O. It fails only once shutdown has completed, or before the first install (which
// New prevents by construction).
func (p *Provider) CurrentCredentials() (ExpiringCredentials, error) {
	return p.store.snapshot()
}

// Shutdown transitions the provider to ShuttingDown, cancels the scheduler and any
// pending refresh, shuts down the underlying Retriever, then transitions to Stopped and
// signals Wait. It is idempotent.
func (p *Provider) Shutdown() error {
	p.mu.Lock()
	if p.status == Stopped {
		p.mu.Unlock()
		return nil
	}
	p.status = ShuttingDown
	p.mu.Unlock()

	p.scheduler.cancel()
	p.store.markShutDown()
	p.cancelRefreshes()

	p.once.Do(func() {
		p.retriever.Shutdown()
		close(p.terminated)
	})

	p.mu.Lock()
	p.status = Stopped
	p.mu.Unlock()

	p.logger.Info("credentials provider stopped")
	return nil
}

// Wait blocks until the provider reaches Stopped. If Shutdown is never called, it blocks
// indefinitely.
func (p *Provider) Wait() {
	<-p.terminated
}

// Status reports the provider's current lifecycle state.
func (p *Provider) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Provider) isStopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status == Stopped
}
