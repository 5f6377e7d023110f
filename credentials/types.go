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

// Package credentials implements a rotating AWS credentials provider: a long-lived
// in-process component that keeps short-lived IAM credentials fresh by refreshing them
// from a pluggable Retriever before they expire, coalescing concurrent refresh attempts
// and tolerating transient failures without disrupting callers holding still-valid creds.
package credentials

import "time"

// ExpiringCredentials is an immutable snapshot of an AWS credential set.
type ExpiringCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// HasExpiration is false for credentials with no known expiry (e.g. long-lived
	// static keys). Expiration is only meaningful when this is true.
	HasExpiration bool
	Expiration    time.Time
}

// Empty reports whether c has neither an access key id nor a secret access key; the
// session token and expiration are not consulted.
func (c ExpiringCredentials) Empty() bool {
	return c.AccessKeyID == "" && c.SecretAccessKey == ""
}

// Status is the provider's lifecycle state. Transitions are monotonic:
// Initialized -> Running -> ShuttingDown -> Stopped, with Initialized -> Stopped also
// possible via a shutdown before Start. Stopped is terminal.
type Status int

const (
	Initialized Status = iota
	Running
	ShuttingDown
	Stopped
)

// String renders the status for logging.
func (s Status) String() string {
	switch s {
	case Initialized:
		return "Initialized"
	case Running:
		return "Running"
	case ShuttingDown:
		return "ShuttingDown"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}
