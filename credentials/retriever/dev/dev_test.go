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

package dev

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws/rotating-credentials-provider/credentials"
)

func TestGetCredentialsDecodesScriptOutput(t *testing.T) {
	r := New("arn:aws:iam::123:role/dev")
	r.runner = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		assert.Contains(t, args, "-r")
		assert.Contains(t, args, "arn:aws:iam::123:role/dev")
		return []byte(`{"AccessKeyId":"a","SecretAccessKey":"s","Token":"t"}`), nil
	}

	creds, err := r.GetCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", creds.AccessKeyID)
}

func TestGetCredentialsWrapsRunnerFailure(t *testing.T) {
	r := New("arn:aws:iam::123:role/dev")
	r.runner = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	}

	_, err := r.GetCredentials(context.Background())
	require.Error(t, err)
	assert.IsType(t, &credentials.RetrieverTransportError{}, err)
}
