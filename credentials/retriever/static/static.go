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

// Package static wraps a fixed, long-lived credential triple as a credentials.Retriever.
package static

import (
	"context"

	"github.com/aws/rotating-credentials-provider/credentials"
)

// Retriever always returns the same credentials it was constructed with. It carries no
// expiration: the provider never schedules a background refresh for it.
type Retriever struct {
	creds credentials.ExpiringCredentials
}

// New wraps accessKeyID, secretAccessKey and sessionToken (which may be empty) as a
// Retriever with no expiration.
func New(accessKeyID, secretAccessKey, sessionToken string) *Retriever {
	return &Retriever{creds: credentials.ExpiringCredentials{
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretAccessKey,
		SessionToken:    sessionToken,
	}}
}

// GetCredentials always succeeds, returning the wrapped credentials.
func (r *Retriever) GetCredentials(ctx context.Context) (credentials.ExpiringCredentials, error) {
	return r.creds, nil
}

// Shutdown is a no-op: this retriever holds no resources.
func (r *Retriever) Shutdown() {}
