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

package ecs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws/rotating-credentials-provider/credentials"
)

func TestGetCredentialsAssertsRequestContractAndDecodesPayload(t *testing.T) {
	var gotMethod, gotAccept, gotUserAgent, gotHost string
	var gotContentLength int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotMethod = req.Method
		gotAccept = req.Header.Get("Accept")
		gotUserAgent = req.Header.Get("User-Agent")
		gotHost = req.Host
		gotContentLength = req.ContentLength
		w.Write([]byte(`{"AccessKeyId":"AKIAEXAMPLE","SecretAccessKey":"secret","Token":"token"}`))
	}))
	defer server.Close()

	r := New("/v2/credentials/abc")
	r.client = server.Client()
	r.baseURL = server.URL

	creds, err := r.GetCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIAEXAMPLE", creds.AccessKeyID)
	assert.Equal(t, "secret", creds.SecretAccessKey)
	assert.Equal(t, "token", creds.SessionToken)

	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "*/*", gotAccept)
	assert.Equal(t, UserAgent, gotUserAgent)
	assert.Equal(t, MetadataHost, gotHost)
	assert.Equal(t, int64(0), gotContentLength)
}

func TestGetCredentialsMapsNonSuccessStatusToTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	r := New("creds")
	r.client = server.Client()
	r.baseURL = server.URL

	_, err := r.GetCredentials(context.Background())
	require.Error(t, err)
	assert.IsType(t, &credentials.RetrieverTransportError{}, err)
}
