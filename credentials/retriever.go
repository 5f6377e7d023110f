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

import "context"

// Retriever is the pluggable source of fresh credentials: the ECS/container metadata
// endpoint, STS AssumeRole, a local dev subprocess, or a static environment-variable
// source. Implementations live outside this package; the provider treats all of them
// identically.
type Retriever interface {
	// GetCredentials fetches a fresh set of credentials. It may block on I/O and may fail.
	GetCredentials(ctx context.Context) (ExpiringCredentials, error)

	// Shutdown releases retriever-held resources (HTTP connection pools, subprocess
	// handles, etc). It is idempotent; the provider calls it exactly once.
	Shutdown()
}
