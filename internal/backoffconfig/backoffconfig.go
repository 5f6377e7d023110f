// Copyright 2020 Amazon.com, Inc. or its affiliates. All Rights Reserved.
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

// Package backoffconfig builds cenkalti/backoff/v4 exponential backoff policies with a
// bounded maximum elapsed time derived from a retry count instead of a raw duration.
package backoffconfig

import (
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultMultiplier        = 2.0
	defaultMaxIntervalMillis = 30_000
	defaultJitterFactor      = 0.2
	defaultMaxDelayMillis    = 60_000
	defaultInitialInterval   = 200 * time.Millisecond
	defaultMaxRetries        = 5
)

// GetDefaultExponentialBackoff returns the policy used by retrievers that don't need a
// custom retry budget: a handful of quick retries capped at one minute total.
func GetDefaultExponentialBackoff() (*backoff.ExponentialBackOff, error) {
	return GetExponentialBackoff(defaultInitialInterval, defaultMaxRetries)
}

// GetExponentialBackoff returns an ExponentialBackOff configured so that maxRetries
// attempts, growing geometrically from initialInterval, complete within its
// MaxElapsedTime.
func GetExponentialBackoff(initialInterval time.Duration, maxRetries int) (*backoff.ExponentialBackOff, error) {
	if initialInterval <= 0 {
		initialInterval = backoff.DefaultInitialInterval
	}

	maxRetries, err := bound(maxRetries, 1, 100)
	if err != nil {
		return nil, err
	}

	result := backoff.NewExponentialBackOff()
	result.InitialInterval = initialInterval
	result.MaxInterval = defaultMaxIntervalMillis * time.Millisecond
	result.Multiplier = defaultMultiplier
	result.RandomizationFactor = defaultJitterFactor
	result.MaxElapsedTime, err = getMaxElapsedTime(
		maxRetries,
		initialInterval,
		result.MaxInterval,
		defaultMaxDelayMillis*time.Millisecond,
		defaultMultiplier,
		defaultJitterFactor)
	if err != nil {
		return nil, err
	}

	result.Reset()
	return result, nil
}

func bound(number int, min int, max int) (int, error) {
	if max < min {
		return number, fmt.Errorf("invalid input: min (%d) is greater than max (%d)", min, max)
	}
	if number < min {
		return min, nil
	}
	if number > max {
		return max, nil
	}
	return number, nil
}

func getMaxElapsedTime(
	maxRetries int,
	initialInterval time.Duration,
	maximumInterval time.Duration,
	maximumElapsedTime time.Duration,
	growthFactor float64,
	jitterFactor float64) (time.Duration, error) {

	if maxRetries <= 0 || maxRetries > 100 {
		return maximumElapsedTime, errors.New("maxRetries out of range (0, 100]")
	}

	intervalMillis := initialInterval.Milliseconds()
	if intervalMillis <= 0 || intervalMillis > 10_000 {
		return maximumElapsedTime, errors.New("initialInterval out of range (0ms, 10s]")
	}

	maximumIntervalMillis := maximumInterval.Milliseconds()
	if maximumInterval <= 0 {
		return maximumElapsedTime, errors.New("maximumInterval is non-positive")
	}

	if growthFactor <= 1.0 || growthFactor > 10.0 {
		return maximumElapsedTime, errors.New("growthFactor out of range (1.0, 10.0]")
	}

	if jitterFactor < 0.0 || jitterFactor > 1.0 {
		return maximumElapsedTime, errors.New("jitterFactor out of range [0.0, 1.0]")
	}

	maxElapsedMillis := intervalMillis
	for retry := 1; retry < maxRetries; retry++ {
		nextIntervalMillis := float64(intervalMillis) * growthFactor
		intervalMillis = minInt64(int64(nextIntervalMillis), maximumIntervalMillis)
		maxElapsedMillis += intervalMillis
	}

	maxElapsedMillis = int64(float64(maxElapsedMillis) * (1.0 + jitterFactor))
	maxElapsedMillis = minInt64(maxElapsedMillis, maximumElapsedTime.Milliseconds())
	return time.Duration(maxElapsedMillis) * time.Millisecond, nil
}

func minInt64(a, b int64) int64 {
	if b < a {
		return b
	}
	return a
}
