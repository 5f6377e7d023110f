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

package config

import (
	"io/ioutil"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func resetCache() {
	lock.Lock()
	defer lock.Unlock()
	loadedConfig = nil
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 120*time.Second, cfg.Rotation.ExpirationBuffer)
	assert.Equal(t, 300*time.Second, cfg.Rotation.BackgroundBuffer)
	assert.Equal(t, 60*time.Second, cfg.Rotation.ValidRetryDelay)
	assert.Equal(t, 3600*time.Second, cfg.Rotation.InvalidRetryDelay)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.CloudWatch.Enabled)
}

func TestGetFallsBackToDefaultWithoutOverride(t *testing.T) {
	resetCache()
	os.Unsetenv(EnvConfigPath)
	os.Unsetenv(EnvLogLevel)

	cfg := Get(true)
	assert.Equal(t, Default(), cfg)
}

func TestGetAppliesOverrideFilePreservingDefaults(t *testing.T) {
	resetCache()
	f, err := ioutil.TempFile("", "rotating-credentials-config-*.json")
	assert.NoError(t, err)
	defer os.Remove(f.Name())
	_, err = f.WriteString(`{"Agent":{"Region":"us-west-2"},"CloudWatch":{"Enabled":true,"LogGroup":"my-group"}}`)
	assert.NoError(t, err)
	assert.NoError(t, f.Close())

	os.Setenv(EnvConfigPath, f.Name())
	defer os.Unsetenv(EnvConfigPath)

	cfg := Get(true)
	assert.Equal(t, "us-west-2", cfg.Agent.Region)
	assert.True(t, cfg.CloudWatch.Enabled)
	assert.Equal(t, "my-group", cfg.CloudWatch.LogGroup)
	// fields omitted from the override file keep their defaults
	assert.Equal(t, 120*time.Second, cfg.Rotation.ExpirationBuffer)
}

func TestGetAppliesLogLevelEnvOverride(t *testing.T) {
	resetCache()
	os.Unsetenv(EnvConfigPath)
	os.Setenv(EnvLogLevel, "debug")
	defer os.Unsetenv(EnvLogLevel)

	cfg := Get(true)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestGetCachesUntilReload(t *testing.T) {
	resetCache()
	os.Unsetenv(EnvConfigPath)
	os.Unsetenv(EnvLogLevel)

	first := Get(false)
	os.Setenv(EnvLogLevel, "error")
	defer os.Unsetenv(EnvLogLevel)
	second := Get(false)
	assert.Equal(t, first, second)

	third := Get(true)
	assert.Equal(t, "error", third.Log.Level)
}
