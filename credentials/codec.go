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

import (
	"encoding/json"
	"time"
)

// nullSentinel is the literal string the container/dev credential endpoints use to mean
// "no credentials available".
const nullSentinel = "null"

// payload mirrors the JSON object produced by the ECS container metadata endpoint, the
// dev-mode subprocess helper, and any file-based retriever.
type payload struct {
	AccessKeyId     string `json:"AccessKeyId"`
	SecretAccessKey string `json:"SecretAccessKey"`
	Expiration      string `json:"Expiration,omitempty"`
	Token           string `json:"Token,omitempty"`
	SessionToken    string `json:"SessionToken,omitempty"`
}

// DecodeCredentialPayload parses the JSON credential payload described by the container
// metadata/dev-subprocess contract. The literal string "null" in AccessKeyId,
// SecretAccessKey, or the resolved session token is treated as "no credentials available"
// and rejected with MissingCredentialsError, as is an Expiration already in the past.
func DecodeCredentialPayload(data []byte) (ExpiringCredentials, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return ExpiringCredentials{}, &MissingCredentialsError{Reason: "decode error: " + err.Error()}
	}
	return payloadToCredentials(p)
}

func payloadToCredentials(p payload) (ExpiringCredentials, error) {
	if p.AccessKeyId == "" || p.AccessKeyId == nullSentinel {
		return ExpiringCredentials{}, &MissingCredentialsError{Reason: "AccessKeyId missing or null"}
	}
	if p.SecretAccessKey == "" || p.SecretAccessKey == nullSentinel {
		return ExpiringCredentials{}, &MissingCredentialsError{Reason: "SecretAccessKey missing or null"}
	}

	sessionToken := p.Token
	if sessionToken == "" {
		sessionToken = p.SessionToken
	}
	if sessionToken == nullSentinel {
		return ExpiringCredentials{}, &MissingCredentialsError{Reason: "session token is null"}
	}

	creds := ExpiringCredentials{
		AccessKeyID:     p.AccessKeyId,
		SecretAccessKey: p.SecretAccessKey,
		SessionToken:    sessionToken,
	}

	if p.Expiration != "" {
		exp, err := time.Parse(time.RFC3339, p.Expiration)
		if err != nil {
			return ExpiringCredentials{}, &MissingCredentialsError{Reason: "invalid Expiration: " + err.Error()}
		}
		if !exp.After(time.Now()) {
			return ExpiringCredentials{}, &MissingCredentialsError{Reason: "Expiration is already past"}
		}
		creds.HasExpiration = true
		creds.Expiration = exp.UTC()
	}

	return creds, nil
}

// EncodeCredentialPayload renders creds back into the JSON payload shape, preferring the
// Token key for the session token. Within this module it is called only by the payload
// round-trip tests; no retriever uses it.
func EncodeCredentialPayload(creds ExpiringCredentials) ([]byte, error) {
	p := payload{
		AccessKeyId:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		Token:           creds.SessionToken,
	}
	if creds.HasExpiration {
		p.Expiration = creds.Expiration.UTC().Format(time.RFC3339)
	}
	return json.Marshal(p)
}
