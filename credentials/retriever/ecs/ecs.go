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

// Package ecs implements a credentials.Retriever against the ECS/Fargate container
// credentials endpoint.
package ecs

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/aws/rotating-credentials-provider/credentials"
)

// MetadataHost is the link-local address ECS and Fargate tasks expose their credentials
// endpoint on.
const MetadataHost = "169.254.170.2"

// UserAgent identifies this provider to the metadata endpoint.
const UserAgent = "rotating-credentials-provider"

// Retriever fetches credentials from the ECS/Fargate container credentials endpoint
// named by relativeURI.
type Retriever struct {
	relativeURI string
	client      *http.Client

	// baseURL overrides the scheme+host the retriever targets; tests set this to an
	// httptest.Server URL. Production callers leave it empty to use MetadataHost.
	baseURL string
}

// New builds a Retriever against relativeURI, the value of
// AWS_CONTAINER_CREDENTIALS_RELATIVE_URI. A leading slash is inserted if missing.
func New(relativeURI string) *Retriever {
	if !strings.HasPrefix(relativeURI, "/") {
		relativeURI = "/" + relativeURI
	}
	return &Retriever{
		relativeURI: relativeURI,
		client:      &http.Client{},
	}
}

// GetCredentials issues the GET request against the metadata endpoint and decodes the
// response body as a credential payload.
func (r *Retriever) GetCredentials(ctx context.Context) (credentials.ExpiringCredentials, error) {
	base := r.baseURL
	if base == "" {
		base = "http://" + MetadataHost
	}
	url := base + r.relativeURI
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return credentials.ExpiringCredentials{}, &credentials.RetrieverTransportError{Cause: err}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "*/*")
	req.ContentLength = 0
	req.Host = MetadataHost

	resp, err := r.client.Do(req)
	if err != nil {
		return credentials.ExpiringCredentials{}, &credentials.RetrieverTransportError{Cause: err}
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return credentials.ExpiringCredentials{}, &credentials.RetrieverTransportError{Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return credentials.ExpiringCredentials{}, &credentials.RetrieverTransportError{
			Cause: fmt.Errorf("ecs metadata endpoint returned status %d: %s", resp.StatusCode, string(body)),
		}
	}

	return credentials.DecodeCredentialPayload(body)
}

// Shutdown closes idle connections held by the retriever's HTTP client.
func (r *Retriever) Shutdown() {
	r.client.CloseIdleConnections()
}
