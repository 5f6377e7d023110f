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

import "fmt"

// MissingCredentialsError indicates a credential payload failed validation: a null-string
// sentinel field, an already-past expiration, or a decode error.
type MissingCredentialsError struct {
	Reason string
}

func (e *MissingCredentialsError) Error() string {
	return fmt.Sprintf("missing credentials: %s", e.Reason)
}

// RoleAssumptionFailedError wraps a failed sts:AssumeRole call.
type RoleAssumptionFailedError struct {
	Arn   string
	Cause error
}

func (e *RoleAssumptionFailedError) Error() string {
	return fmt.Sprintf("failed to assume role %s: %v", e.Arn, e.Cause)
}

func (e *RoleAssumptionFailedError) Unwrap() error {
	return e.Cause
}

// RetrieverTransportError wraps a lower-level I/O failure from a Retriever (HTTP,
// subprocess, etc).
type RetrieverTransportError struct {
	Cause error
}

func (e *RetrieverTransportError) Error() string {
	return fmt.Sprintf("credential retriever transport error: %v", e.Cause)
}

func (e *RetrieverTransportError) Unwrap() error {
	return e.Cause
}

// ProviderShutDownError is returned from Get when called after shutdown has completed.
type ProviderShutDownError struct{}

func (e *ProviderShutDownError) Error() string {
	return "credentials provider is shut down"
}

// CancelledError is returned to waiters of a refresh that was cancelled by shutdown.
type CancelledError struct{}

func (e *CancelledError) Error() string {
	return "credential refresh cancelled by shutdown"
}
