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

// Package log wraps seelog behind the T interface, with optional hot-reload of its
// configuration file and an optional CloudWatch Logs shipping path.
package log

import (
	"fmt"
	"io/ioutil"
	"os"
	"sync"

	"github.com/cihub/seelog"
)

var pkgMutex = new(sync.Mutex)

var loadedLogger *T
var lock sync.RWMutex

var loggerInstance = &DelegateLogger{}

func init() {
	seelog.RegisterReceiver("cloudwatch_receiver", &CloudWatchCustomReceiver{})
}

// Options configure GetLogger.
type Options struct {
	// CloudWatchLogGroup, when non-empty, enables the CloudWatch custom receiver with this
	// log group name. Empty means CloudWatch shipping is disabled.
	CloudWatchLogGroup string

	// Watch, when true, starts an fsnotify watcher on DefaultSeelogConfigFilePath and hot-reloads
	// the logger whenever the file changes.
	Watch bool
}

// GetLogger returns the process-wide logger, creating it on first call. Subsequent calls return
// the cached instance regardless of the options passed.
func GetLogger(opts Options) T {
	if !isLoaded() {
		logger := initLogger(opts)
		cache(logger)
	}
	return getCached()
}

func initLogger(opts Options) T {
	configBytes := loadConfigBytes(opts)
	baseLogger, _ := initBaseLoggerFromBytes(configBytes)
	logger := withContext(baseLogger)
	if opts.Watch {
		startWatcher(logger, opts)
	}
	return logger
}

func loadConfigBytes(opts Options) []byte {
	if _, err := os.Stat(DefaultSeelogConfigFilePath); err == nil {
		if b, err := ioutil.ReadFile(DefaultSeelogConfigFilePath); err == nil {
			return b
		}
	}
	return BuildConfig(DefaultLogDir, LogFile, opts.CloudWatchLogGroup)
}

func withContext(logger seelog.LoggerInterface, context ...string) T {
	loggerInstance.BaseLoggerInstance = logger
	formatFilter := &ContextFormatFilter{Context: context}
	contextLogger := &Wrapper{Format: formatFilter, M: pkgMutex, Delegate: loggerInstance}
	// stack depth 0 prints the wrapper's own call site; 1 prints the caller of the wrapper,
	// which is what callers of T actually want attributed.
	logger.SetAdditionalStackDepth(1)
	return contextLogger
}

func initBaseLoggerFromBytes(config []byte) (seelog.LoggerInterface, error) {
	logger, err := seelog.LoggerFromConfigAsBytes(config)
	if err != nil {
		fmt.Println("error parsing log config, falling back to default:", err)
		logger, _ = seelog.LoggerFromConfigAsBytes(DefaultConfig())
	}
	return logger, err
}

func isLoaded() bool {
	lock.RLock()
	defer lock.RUnlock()
	return loadedLogger != nil
}

func cache(logger T) {
	lock.Lock()
	defer lock.Unlock()
	loadedLogger = &logger
}

func getCached() T {
	lock.RLock()
	defer lock.RUnlock()
	return *loadedLogger
}

func startWatcher(logger T, opts Options) {
	defer func() {
		if msg := recover(); msg != nil {
			logger.Errorf("log config watcher init failed, updates to %s will be ignored: %v", DefaultSeelogConfigFilePath, msg)
		}
	}()
	fw := &FileWatcher{}
	fw.Init(logger, DefaultSeelogConfigFilePath, func() { replaceLogger(opts) })
	fw.Start()
}

func replaceLogger(opts Options) {
	logger := getCached()
	configBytes := loadConfigBytes(opts)
	baseLogger, err := initBaseLoggerFromBytes(configBytes)
	if err != nil {
		logger.Error("new logger creation failed, keeping previous logger")
		return
	}
	baseLogger.SetAdditionalStackDepth(1)

	wrapper, ok := logger.(*Wrapper)
	if !ok {
		logger.Errorf("logger replace failed, cached logger is not a *Wrapper")
		return
	}
	wrapper.ReplaceDelegate(baseLogger)
}
