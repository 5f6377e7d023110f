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
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/cloudwatchlogs"
	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloudWatchLogsClient struct {
	createGroupCalls  int
	createStreamCalls int
	createGroupErr    error
	createStreamErr   error
	putCalls          int
	putErrs           []error
	lastInput         *cloudwatchlogs.PutLogEventsInput
	describeToken     *string
}

func (f *fakeCloudWatchLogsClient) CreateLogGroupWithContext(ctx aws.Context, in *cloudwatchlogs.CreateLogGroupInput, opts ...request.Option) (*cloudwatchlogs.CreateLogGroupOutput, error) {
	f.createGroupCalls++
	return &cloudwatchlogs.CreateLogGroupOutput{}, f.createGroupErr
}

func (f *fakeCloudWatchLogsClient) CreateLogStreamWithContext(ctx aws.Context, in *cloudwatchlogs.CreateLogStreamInput, opts ...request.Option) (*cloudwatchlogs.CreateLogStreamOutput, error) {
	f.createStreamCalls++
	return &cloudwatchlogs.CreateLogStreamOutput{}, f.createStreamErr
}

func (f *fakeCloudWatchLogsClient) DescribeLogStreamsWithContext(ctx aws.Context, in *cloudwatchlogs.DescribeLogStreamsInput, opts ...request.Option) (*cloudwatchlogs.DescribeLogStreamsOutput, error) {
	return &cloudwatchlogs.DescribeLogStreamsOutput{
		LogStreams: []*cloudwatchlogs.LogStream{{UploadSequenceToken: f.describeToken}},
	}, nil
}

func (f *fakeCloudWatchLogsClient) PutLogEventsWithContext(ctx aws.Context, in *cloudwatchlogs.PutLogEventsInput, opts ...request.Option) (*cloudwatchlogs.PutLogEventsOutput, error) {
	f.putCalls++
	f.lastInput = in
	idx := f.putCalls - 1
	if idx < len(f.putErrs) && f.putErrs[idx] != nil {
		return nil, f.putErrs[idx]
	}
	return &cloudwatchlogs.PutLogEventsOutput{NextSequenceToken: aws.String("token-2")}, nil
}

func fastBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Millisecond
	b.MaxInterval = 5 * time.Millisecond
	b.MaxElapsedTime = 200 * time.Millisecond
	return b
}

func newTestShipper(client cloudWatchLogsClient) *Shipper {
	return &Shipper{
		client:       client,
		logGroup:     "group",
		logStream:    "stream",
		pollInterval: time.Millisecond,
		newBackOff:   fastBackOff,
		logger:       NewMockLog(),
	}
}

func sampleEvents() []*cloudwatchlogs.InputLogEvent {
	return []*cloudwatchlogs.InputLogEvent{{Message: aws.String("hello"), Timestamp: aws.Int64(1)}}
}

func TestShipCreatesDestinationOnceAndSendsSequenceToken(t *testing.T) {
	client := &fakeCloudWatchLogsClient{}
	s := newTestShipper(client)

	require.NoError(t, s.ship(context.Background(), sampleEvents()))
	require.NoError(t, s.ship(context.Background(), sampleEvents()))

	assert.Equal(t, 1, client.createGroupCalls, "log group must be created only once")
	assert.Equal(t, 1, client.createStreamCalls, "log stream must be created only once")
	assert.Equal(t, 2, client.putCalls)
	assert.Equal(t, "token-2", aws.StringValue(s.sequenceToken))
	assert.Equal(t, "token-2", aws.StringValue(client.lastInput.SequenceToken), "second call must send the token returned by the first")
	assert.Equal(t, "group", aws.StringValue(client.lastInput.LogGroupName))
	assert.Equal(t, "stream", aws.StringValue(client.lastInput.LogStreamName))
}

func TestShipIgnoresResourceAlreadyExists(t *testing.T) {
	client := &fakeCloudWatchLogsClient{
		createGroupErr:  awserr.New(resourceAlreadyExistsErrorCode, "exists", nil),
		createStreamErr: awserr.New(resourceAlreadyExistsErrorCode, "exists", nil),
	}
	s := newTestShipper(client)

	require.NoError(t, s.ensureDestination(context.Background()))
	assert.True(t, s.ensured)
}

func TestShipRetriesThrottlingThenSucceeds(t *testing.T) {
	client := &fakeCloudWatchLogsClient{
		putErrs: []error{
			awserr.New("ThrottlingException", "slow down", nil),
			nil,
		},
	}
	s := newTestShipper(client)

	require.NoError(t, s.ship(context.Background(), sampleEvents()))
	assert.Equal(t, 2, client.putCalls)
}

func TestShipRecoversFromInvalidSequenceToken(t *testing.T) {
	client := &fakeCloudWatchLogsClient{
		putErrs: []error{
			awserr.New(invalidSequenceTokenErrorCode, "bad token", nil),
			nil,
		},
		describeToken: aws.String("recovered-token"),
	}
	s := newTestShipper(client)
	s.sequenceToken = aws.String("stale-token")

	require.NoError(t, s.ship(context.Background(), sampleEvents()))
	assert.Equal(t, 2, client.putCalls)
}

func TestShipFailsImmediatelyOnTerminalError(t *testing.T) {
	client := &fakeCloudWatchLogsClient{
		putErrs: []error{awserr.New("AccessDeniedException", "nope", nil)},
	}
	s := newTestShipper(client)

	err := s.ship(context.Background(), sampleEvents())
	assert.Error(t, err)
	assert.Equal(t, 1, client.putCalls)
}
