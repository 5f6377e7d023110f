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

package backoffconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultExponentialBackoff(t *testing.T) {
	b, err := GetDefaultExponentialBackoff()
	require.NoError(t, err)
	assert.Equal(t, defaultInitialInterval, b.InitialInterval)
	assert.Greater(t, b.MaxElapsedTime, time.Duration(0))
}

func TestGetExponentialBackoffFallsBackToDefaultInitialInterval(t *testing.T) {
	b, err := GetExponentialBackoff(0, 3)
	require.NoError(t, err)
	assert.Greater(t, b.InitialInterval, time.Duration(0))
}

func TestGetExponentialBackoffClampsRetryCount(t *testing.T) {
	low, err := GetExponentialBackoff(100*time.Millisecond, -5)
	require.NoError(t, err)

	high, err := GetExponentialBackoff(100*time.Millisecond, 1000)
	require.NoError(t, err)

	assert.LessOrEqual(t, low.MaxElapsedTime, high.MaxElapsedTime)
}
