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
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatchlogs"
	"github.com/cihub/seelog"

	"github.com/aws/rotating-credentials-provider/internal/log/cwqueue"
)

const (
	cloudWatchLogEventMaxLength = int(262144 / 2) // half of the max CW log event size, leaves room for metadata
)

// CloudWatchCustomReceiver implements seelog.CustomReceiver, forwarding parsed log lines into
// the cwqueue buffer for a separate shipper goroutine to drain.
type CloudWatchCustomReceiver struct{}

// ReceiveMessage enqueues the message, chunked to stay under the per-event size limit.
func (r *CloudWatchCustomReceiver) ReceiveMessage(message string, level seelog.LogLevel, context seelog.LogContextInterface) error {
	const maxChunks = 4
	chunks := 0
	for i := 0; i < len(message); i += cloudWatchLogEventMaxLength {
		chunks++
		if chunks == maxChunks {
			return fmt.Errorf("exceeded max chunks for a single cloudwatch log event")
		}
		end := i + cloudWatchLogEventMaxLength
		if end > len(message) {
			end = len(message)
		}
		event := &cloudwatchlogs.InputLogEvent{
			Message:   aws.String(message[i:end]),
			Timestamp: aws.Int64(time.Now().UnixNano() / int64(time.Millisecond)),
		}
		if err := cwqueue.Enqueue(event); err != nil {
			return err
		}
	}
	return nil
}

// AfterParse creates the cwqueue instance using the log group named in the seelog XML config.
func (r *CloudWatchCustomReceiver) AfterParse(initArgs seelog.CustomReceiverInitArgs) error {
	if err := cwqueue.CreateInstance(initArgs); err != nil {
		fmt.Printf("failed to create cloudwatch log queue: %v\n", err)
	}
	return nil
}

// Flush is a no-op; the shipper goroutine drains the queue on its own cadence.
func (r *CloudWatchCustomReceiver) Flush() {}

// Close tears down the cwqueue instance.
func (r *CloudWatchCustomReceiver) Close() error {
	cwqueue.DestroyInstance()
	return nil
}
