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

//go:build devcreds

// Package dev implements a credentials.Retriever for local development that shells out
// to a helper script instead of calling a real credential source.
package dev

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/aws/rotating-credentials-provider/credentials"
)

// ScriptPath is the helper script this retriever invokes. It is a variable rather than
// a constant so tests can point it at a fixture.
var ScriptPath = "/usr/local/bin/get-credentials.sh"

// DurationSeconds is the lifetime requested from the helper script.
const DurationSeconds = 900

// Retriever invokes ScriptPath with the role ARN it was constructed with and decodes its
// stdout as a credential payload.
type Retriever struct {
	roleArn string
	runner  func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// New builds a Retriever for roleArn.
func New(roleArn string) *Retriever {
	return &Retriever{roleArn: roleArn, runner: runCommand}
}

// GetCredentials runs the helper script and decodes its stdout.
func (r *Retriever) GetCredentials(ctx context.Context) (credentials.ExpiringCredentials, error) {
	out, err := r.runner(ctx, ScriptPath, "-r", r.roleArn, "-d", fmt.Sprintf("%d", DurationSeconds))
	if err != nil {
		return credentials.ExpiringCredentials{}, &credentials.RetrieverTransportError{Cause: err}
	}
	return credentials.DecodeCredentialPayload(out)
}

// Shutdown is a no-op: this retriever holds no resources between invocations.
func (r *Retriever) Shutdown() {}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
