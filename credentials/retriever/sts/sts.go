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

// Package sts implements a credentials.Retriever that assumes an IAM role via
// sts:AssumeRole, retrying transient SDK failures with exponential backoff.
package sts

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/cenkalti/backoff/v4"

	"github.com/aws/rotating-credentials-provider/credentials"
	"github.com/aws/rotating-credentials-provider/internal/backoffconfig"
)

// Client is the subset of the STS SDK client this retriever depends on.
type Client interface {
	AssumeRoleWithContext(ctx aws.Context, input *sts.AssumeRoleInput, opts ...request.Option) (*sts.AssumeRoleOutput, error)
}

// retryableErrorCodes lists AWS error codes this retriever treats as transient.
var retryableErrorCodes = map[string]bool{
	"Throttling":            true,
	"ThrottlingException":   true,
	"RequestLimitExceeded":  true,
	"ServiceUnavailable":    true,
	"RequestError":          true,
	"RequestTimeout":        true,
	"IDPCommunicationError": true,
	"InternalFailure":       true,
	"InternalServiceError":  true,
}

// Retriever assumes roleArn via sts:AssumeRole.
type Retriever struct {
	client          Client
	roleArn         string
	roleSessionName string
	durationSeconds int64
	newBackOff      func() *backoff.ExponentialBackOff
}

// Options configures an STS Retriever.
type Options struct {
	RoleArn         string
	RoleSessionName string
	// DurationSeconds must lie in [900, 3600] when non-zero; zero means the STS default.
	DurationSeconds int64
	Region          string
}

// New builds a Retriever from an aws-sdk-go session and opts.
func New(sess *session.Session, opts Options) *Retriever {
	cfg := aws.NewConfig()
	if opts.Region != "" {
		cfg = cfg.WithRegion(opts.Region)
	}
	return &Retriever{
		client:          sts.New(sess, cfg),
		roleArn:         opts.RoleArn,
		roleSessionName: opts.RoleSessionName,
		durationSeconds: opts.DurationSeconds,
		newBackOff: func() *backoff.ExponentialBackOff {
			b, err := backoffconfig.GetDefaultExponentialBackoff()
			if err != nil {
				return backoff.NewExponentialBackOff()
			}
			return b
		},
	}
}

// GetCredentials calls sts:AssumeRole, retrying retryable SDK errors with exponential
// backoff, and maps the result into ExpiringCredentials.
func (r *Retriever) GetCredentials(ctx context.Context) (credentials.ExpiringCredentials, error) {
	input := &sts.AssumeRoleInput{
		RoleArn:         aws.String(r.roleArn),
		RoleSessionName: aws.String(r.roleSessionName),
	}
	if r.durationSeconds > 0 {
		input.DurationSeconds = aws.Int64(r.durationSeconds)
	}

	var output *sts.AssumeRoleOutput
	operation := func() error {
		out, err := r.client.AssumeRoleWithContext(ctx, input)
		if err != nil {
			if isRetryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		output = out
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(r.newBackOff(), ctx)); err != nil {
		return credentials.ExpiringCredentials{}, &credentials.RoleAssumptionFailedError{Arn: r.roleArn, Cause: unwrapPermanent(err)}
	}

	if output == nil || output.Credentials == nil {
		return credentials.ExpiringCredentials{}, &credentials.RoleAssumptionFailedError{Arn: r.roleArn, Cause: errNoCredentials}
	}

	creds := output.Credentials
	return credentials.ExpiringCredentials{
		AccessKeyID:     aws.StringValue(creds.AccessKeyId),
		SecretAccessKey: aws.StringValue(creds.SecretAccessKey),
		SessionToken:    aws.StringValue(creds.SessionToken),
		HasExpiration:   creds.Expiration != nil,
		Expiration:      derefTime(creds.Expiration),
	}, nil
}

// Shutdown is a no-op: the STS client shares its HTTP transport with the SDK session,
// which this retriever does not own.
func (r *Retriever) Shutdown() {}

func isRetryable(err error) bool {
	if aErr, ok := err.(awserr.Error); ok {
		return retryableErrorCodes[aErr.Code()]
	}
	return false
}

func unwrapPermanent(err error) error {
	if p, ok := err.(*backoff.PermanentError); ok {
		return p.Err
	}
	return err
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

var errNoCredentials = &credentials.MissingCredentialsError{Reason: "sts:AssumeRole returned no credentials"}
