// Copyright 2017 Amazon.com, Inc. or its affiliates. All Rights Reserved.
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

package log

import (
	"path/filepath"
	"runtime/debug"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches the seelog config file for changes and invokes a callback on write/create/rename.
type FileWatcher struct {
	configFilePath string
	replaceLogger  func()
	log            T
	watcher        *fsnotify.Watcher
}

// Init sets up the watcher's target file and replacement callback.
func (fw *FileWatcher) Init(log T, configFilePath string, replaceLogger func()) {
	fw.replaceLogger = replaceLogger
	fw.configFilePath = configFilePath
	fw.log = log
}

// Start begins watching the parent directory of the config file (fsnotify cannot watch a
// nonexistent file directly).
func (fw *FileWatcher) Start() {
	dirPath := filepath.Dir(fw.configFilePath)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fw.log.Errorf("error initializing log config watcher: %v", err)
		return
	}
	fw.watcher = watcher

	go fw.fileEventHandler()

	if err := fw.watcher.Add(dirPath); err != nil {
		fw.log.Warnf("error adding directory '%s' to log config watcher: %v", dirPath, err)
	}
}

func (fw *FileWatcher) fileEventHandler() {
	defer func() {
		if r := recover(); r != nil {
			fw.log.Errorf("log config watcher panic: %v", r)
			fw.log.Errorf("stacktrace: %s", debug.Stack())
		}
	}()
	for event := range fw.watcher.Events {
		if event.Name == fw.configFilePath {
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create || event.Op&fsnotify.Rename == fsnotify.Rename {
				fw.replaceLogger()
			}
		}
	}
}

// Stop closes the underlying fsnotify watcher.
func (fw *FileWatcher) Stop() {
	if fw.watcher != nil {
		if err := fw.watcher.Close(); err != nil {
			fw.log.Debugf("error closing log config watcher: %v", err)
		}
	}
}
