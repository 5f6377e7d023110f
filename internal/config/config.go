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

// Package config holds the tunables for the rotating credentials provider and its
// logging subsystem, loaded from an optional JSON file with sane in-process defaults.
package config

import (
	"os"
	"sync"
	"time"

	"github.com/aws/rotating-credentials-provider/internal/configfile"
)

// EnvConfigPath names the environment variable that, when set, points at a JSON file
// overriding the defaults below.
const EnvConfigPath = "ROTATING_CREDENTIALS_CONFIG"

// EnvLogLevel overrides the configured seelog level.
const EnvLogLevel = "ROTATING_CREDENTIALS_LOG_LEVEL"

// T stores the provider's configuration values.
type T struct {
	Agent struct {
		Region          string
		RoleSessionName string
	}
	Rotation struct {
		ExpirationBuffer  time.Duration
		BackgroundBuffer  time.Duration
		ValidRetryDelay   time.Duration
		InvalidRetryDelay time.Duration
	}
	Log struct {
		Level string
	}
	CloudWatch struct {
		Enabled  bool
		LogGroup string
	}
}

// Default returns the built-in configuration used when no override file is present.
func Default() T {
	var cfg T
	cfg.Rotation.ExpirationBuffer = 120 * time.Second
	cfg.Rotation.BackgroundBuffer = 300 * time.Second
	cfg.Rotation.ValidRetryDelay = 60 * time.Second
	cfg.Rotation.InvalidRetryDelay = 3600 * time.Second
	cfg.Log.Level = "info"
	cfg.CloudWatch.Enabled = false
	return cfg
}

var loadedConfig *T
var lock sync.RWMutex

// Get loads the configuration. If reload is true, or nothing has been loaded yet, it
// (re)reads the override file named by EnvConfigPath, falling back to Default() when the
// variable is unset or the file cannot be read or parsed.
func Get(reload bool) T {
	if reload || !isLoaded() {
		cfg := Default()
		if path := os.Getenv(EnvConfigPath); path != "" {
			// Unmarshal onto the defaults in place: json.Unmarshal only touches keys
			// present in the document, so fields the override omits keep their default.
			if err := configfile.Load(path, &cfg); err != nil {
				cfg = Default()
			}
		}
		if level := os.Getenv(EnvLogLevel); level != "" {
			cfg.Log.Level = level
		}
		cache(cfg)
	}
	return getCached()
}

func isLoaded() bool {
	lock.RLock()
	defer lock.RUnlock()
	return loadedConfig != nil
}

func cache(cfg T) {
	lock.Lock()
	defer lock.Unlock()
	loadedConfig = &cfg
}

func getCached() T {
	lock.RLock()
	defer lock.RUnlock()
	return *loadedConfig
}
