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

package log

import (
	"sync"
)

// DelegateLogger holds the base logger for logging.
type DelegateLogger struct {
	BaseLoggerInstance BasicT
}

// Wrapper is a logger that can modify the format of a log message before delegating to another logger.
type Wrapper struct {
	Format   FormatFilter
	M        *sync.Mutex
	Delegate *DelegateLogger
}

// FormatFilter can modify the format and or parameters to be passed to a logger.
type FormatFilter interface {
	// Filter modifies parameters that will be passed to log.Debug, log.Info, etc.
	Filter(params ...interface{}) (newParams []interface{})

	// Filterf modifies format and/or parameter strings that will be passed to log.Debugf, log.Infof, etc.
	Filterf(format string, params ...interface{}) (newFormat string, newParams []interface{})
}

// ContextFormatFilter prepends a fixed context to every log line.
type ContextFormatFilter struct {
	Context []string
}

// Filter adds the context at the beginning of the parameter slice.
func (f ContextFormatFilter) Filter(params ...interface{}) (newParams []interface{}) {
	newParams = make([]interface{}, len(f.Context)+len(params))
	for i, param := range f.Context {
		newParams[i] = param + " "
	}
	ctxLen := len(f.Context)
	for i, param := range params {
		newParams[ctxLen+i] = param
	}
	return newParams
}

// Filterf adds the context in front of the format string.
func (f ContextFormatFilter) Filterf(format string, params ...interface{}) (newFormat string, newParams []interface{}) {
	for _, param := range f.Context {
		newFormat += param + " "
	}
	newFormat += format
	newParams = params
	return
}

// WithContext creates a wrapper logger with an additional context.
func (w *Wrapper) WithContext(context ...string) (contextLogger T) {
	formatFilter := &ContextFormatFilter{Context: context}
	return &Wrapper{Format: formatFilter, M: w.M, Delegate: w.Delegate}
}

// Tracef formats message according to format specifier and writes to log with level Trace.
func (w *Wrapper) Tracef(format string, params ...interface{}) {
	format, params = w.Format.Filterf(format, params...)
	w.M.Lock()
	defer w.M.Unlock()
	w.Delegate.BaseLoggerInstance.Tracef(format, params...)
}

// Debugf formats message according to format specifier and writes to log with level Debug.
func (w *Wrapper) Debugf(format string, params ...interface{}) {
	format, params = w.Format.Filterf(format, params...)
	w.M.Lock()
	defer w.M.Unlock()
	w.Delegate.BaseLoggerInstance.Debugf(format, params...)
}

// Infof formats message according to format specifier and writes to log with level Info.
func (w *Wrapper) Infof(format string, params ...interface{}) {
	format, params = w.Format.Filterf(format, params...)
	w.M.Lock()
	defer w.M.Unlock()
	w.Delegate.BaseLoggerInstance.Infof(format, params...)
}

// Warnf formats message according to format specifier and writes to log with level Warn.
func (w *Wrapper) Warnf(format string, params ...interface{}) error {
	format, params = w.Format.Filterf(format, params...)
	w.M.Lock()
	defer w.M.Unlock()
	return w.Delegate.BaseLoggerInstance.Warnf(format, params...)
}

// Errorf formats message according to format specifier and writes to log with level Error.
func (w *Wrapper) Errorf(format string, params ...interface{}) error {
	format, params = w.Format.Filterf(format, params...)
	w.M.Lock()
	defer w.M.Unlock()
	return w.Delegate.BaseLoggerInstance.Errorf(format, params...)
}

// Trace formats message using the default formats for its operands and writes to log with level Trace.
func (w *Wrapper) Trace(v ...interface{}) {
	v = w.Format.Filter(v...)
	w.M.Lock()
	defer w.M.Unlock()
	w.Delegate.BaseLoggerInstance.Trace(v...)
}

// Debug formats message using the default formats for its operands and writes to log with level Debug.
func (w *Wrapper) Debug(v ...interface{}) {
	v = w.Format.Filter(v...)
	w.M.Lock()
	defer w.M.Unlock()
	w.Delegate.BaseLoggerInstance.Debug(v...)
}

// Info formats message using the default formats for its operands and writes to log with level Info.
func (w *Wrapper) Info(v ...interface{}) {
	v = w.Format.Filter(v...)
	w.M.Lock()
	defer w.M.Unlock()
	w.Delegate.BaseLoggerInstance.Info(v...)
}

// Warn formats message using the default formats for its operands and writes to log with level Warn.
func (w *Wrapper) Warn(v ...interface{}) error {
	v = w.Format.Filter(v...)
	w.M.Lock()
	defer w.M.Unlock()
	return w.Delegate.BaseLoggerInstance.Warn(v...)
}

// Error formats message using the default formats for its operands and writes to log with level Error.
func (w *Wrapper) Error(v ...interface{}) error {
	v = w.Format.Filter(v...)
	w.M.Lock()
	defer w.M.Unlock()
	return w.Delegate.BaseLoggerInstance.Error(v...)
}

// Flush flushes all the messages in the logger.
func (w *Wrapper) Flush() {
	w.M.Lock()
	defer w.M.Unlock()
	w.Delegate.BaseLoggerInstance.Flush()
}

// Close flushes all the messages in the logger and closes it. It cannot be used after this operation.
func (w *Wrapper) Close() {
	w.M.Lock()
	defer w.M.Unlock()
	w.Delegate.BaseLoggerInstance.Close()
}

// ReplaceDelegate swaps in a new base logger, flushing the old one first.
func (w *Wrapper) ReplaceDelegate(newLogger BasicT) {
	w.M.Lock()
	defer w.M.Unlock()
	w.Delegate.BaseLoggerInstance.Flush()
	w.Delegate.BaseLoggerInstance = newLogger
	w.Delegate.BaseLoggerInstance.Info("logger replaced")
}
