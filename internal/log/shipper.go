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

package log

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatchlogs"
	"github.com/cenkalti/backoff/v4"

	"github.com/aws/rotating-credentials-provider/internal/backoffconfig"
	"github.com/aws/rotating-credentials-provider/internal/log/cwqueue"
)

const (
	resourceAlreadyExistsErrorCode = "ResourceAlreadyExistsException"
	invalidSequenceTokenErrorCode  = "InvalidSequenceTokenException"

	defaultShipperPollInterval = time.Second
)

// cloudWatchLogsClient is the subset of the CloudWatch Logs SDK client the shipper
// depends on.
type cloudWatchLogsClient interface {
	CreateLogGroupWithContext(ctx aws.Context, in *cloudwatchlogs.CreateLogGroupInput, opts ...request.Option) (*cloudwatchlogs.CreateLogGroupOutput, error)
	CreateLogStreamWithContext(ctx aws.Context, in *cloudwatchlogs.CreateLogStreamInput, opts ...request.Option) (*cloudwatchlogs.CreateLogStreamOutput, error)
	DescribeLogStreamsWithContext(ctx aws.Context, in *cloudwatchlogs.DescribeLogStreamsInput, opts ...request.Option) (*cloudwatchlogs.DescribeLogStreamsOutput, error)
	PutLogEventsWithContext(ctx aws.Context, in *cloudwatchlogs.PutLogEventsInput, opts ...request.Option) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// Shipper drains the cwqueue buffer on a timer and ships batches to CloudWatch Logs,
// creating the log group/stream lazily on first use and retrying transient failures
// with exponential backoff.
type Shipper struct {
	client       cloudWatchLogsClient
	logGroup     string
	logStream    string
	pollInterval time.Duration
	newBackOff   func() *backoff.ExponentialBackOff
	logger       T

	ensured       bool
	sequenceToken *string
}

// NewShipper builds a Shipper targeting logGroup, using sess for CloudWatch Logs API
// calls. The log stream is named after the process host and pid so concurrent
// instances of this provider don't collide on one stream.
func NewShipper(sess *session.Session, logGroup string, logger T) *Shipper {
	host, _ := os.Hostname()
	return &Shipper{
		client:       cloudwatchlogs.New(sess),
		logGroup:     logGroup,
		logStream:    fmt.Sprintf("%s-%d", host, os.Getpid()),
		pollInterval: defaultShipperPollInterval,
		logger:       logger,
		newBackOff: func() *backoff.ExponentialBackOff {
			b, err := backoffconfig.GetDefaultExponentialBackoff()
			if err != nil {
				return backoff.NewExponentialBackOff()
			}
			return b
		},
	}
}

// Run drains the queue until ctx is cancelled. It is meant to run on its own goroutine
// for the lifetime of the process.
func (s *Shipper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.drainOnce(ctx)
		}
	}
}

func (s *Shipper) drainOnce(ctx context.Context) {
	messages, err := cwqueue.Dequeue(s.pollInterval)
	if err != nil || len(messages) == 0 {
		return
	}
	if err := s.ship(ctx, messages); err != nil {
		s.logger.Errorf("cloudwatch logs shipment failed: %v", err)
	}
}

func (s *Shipper) ship(ctx context.Context, messages []*cloudwatchlogs.InputLogEvent) error {
	if err := s.ensureDestination(ctx); err != nil {
		return err
	}

	operation := func() error {
		input := &cloudwatchlogs.PutLogEventsInput{
			LogGroupName:  aws.String(s.logGroup),
			LogStreamName: aws.String(s.logStream),
			LogEvents:     messages,
			SequenceToken: s.sequenceToken,
		}
		out, err := s.client.PutLogEventsWithContext(ctx, input)
		if err != nil {
			if code(err) == invalidSequenceTokenErrorCode {
				s.refreshSequenceToken(ctx)
				return err
			}
			if isTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		s.sequenceToken = out.NextSequenceToken
		return nil
	}

	return backoff.Retry(operation, backoff.WithContext(s.newBackOff(), ctx))
}

// ensureDestination creates the log group and stream on first use. Both calls are
// idempotent: ResourceAlreadyExistsException is swallowed.
func (s *Shipper) ensureDestination(ctx context.Context) error {
	if s.ensured {
		return nil
	}

	if _, err := s.client.CreateLogGroupWithContext(ctx, &cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: aws.String(s.logGroup),
	}); err != nil && code(err) != resourceAlreadyExistsErrorCode {
		return fmt.Errorf("create log group %s: %w", s.logGroup, err)
	}

	if _, err := s.client.CreateLogStreamWithContext(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(s.logGroup),
		LogStreamName: aws.String(s.logStream),
	}); err != nil && code(err) != resourceAlreadyExistsErrorCode {
		return fmt.Errorf("create log stream %s: %w", s.logStream, err)
	}

	s.ensured = true
	return nil
}

// refreshSequenceToken re-fetches the stream's current upload sequence token after a
// rejected PutLogEvents call, the standard recovery for InvalidSequenceTokenException.
func (s *Shipper) refreshSequenceToken(ctx context.Context) {
	out, err := s.client.DescribeLogStreamsWithContext(ctx, &cloudwatchlogs.DescribeLogStreamsInput{
		LogGroupName:        aws.String(s.logGroup),
		LogStreamNamePrefix: aws.String(s.logStream),
	})
	if err != nil || len(out.LogStreams) == 0 {
		return
	}
	s.sequenceToken = out.LogStreams[0].UploadSequenceToken
}

// StartCloudWatchShipping launches a Shipper for logGroup on its own goroutine, which
// runs until ctx is cancelled. It is a no-op if logGroup is empty.
func StartCloudWatchShipping(ctx context.Context, logGroup string, region string, logger T) error {
	if logGroup == "" {
		return nil
	}

	cfg := aws.NewConfig()
	if region != "" {
		cfg = cfg.WithRegion(region)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return fmt.Errorf("create cloudwatch logs session: %w", err)
	}

	shipper := NewShipper(sess, logGroup, logger)
	go shipper.Run(ctx)
	return nil
}

func isTransient(err error) bool {
	switch code(err) {
	case "ThrottlingException", "ServiceUnavailableException", "RequestTimeout":
		return true
	default:
		return false
	}
}

func code(err error) string {
	if aErr, ok := err.(awserr.Error); ok {
		return aErr.Code()
	}
	return ""
}
