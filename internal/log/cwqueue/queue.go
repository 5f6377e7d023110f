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

// Package cwqueue buffers log events produced by the seelog receiver so a
// separate shipper goroutine can batch and send them to CloudWatch Logs
// without blocking the logger.
package cwqueue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Workiva/go-datastructures/queue"
	"github.com/aws/aws-sdk-go/service/cloudwatchlogs"
	"github.com/cihub/seelog"
)

const (
	batchSize            int   = 10000   // The Max Batch Supported by the AWS CW Logs Push API
	batchByteSizeMax     int   = 1000000 // CloudWatch batch size - 1 MB
	initialQueueCapacity int64 = 10      // The initial capacity of slice. Would not need to resize till this length
	queueLimit           int64 = 10000   // The Limit of the number of messages in the queue (~40kB of queue)
	defaultLogGroup            = "RotatingCredentialsProviderLogs"

	logGroupSeelogAttrib = "log-group"
)

// logDataFacade stores the CloudWatchLogs destination and queue being used to store the messages.
type logDataFacade struct {
	logGroup           string
	logSharingEnabled  bool
	sharingDestination string
	messageQueue       *queue.Queue // Access to message queue is restricted from the facade
}

// Event codes for changes in cloudwatchlogs publishing.
type Event int

const (
	QueueActivated            Event = iota // On Queue Activation
	QueueDeactivated                       // On Queue Deactivation
	LoggingDestinationChanged              // On Change in logging destination
)

var logDataFacadeInstance *logDataFacade
var once = new(sync.Once)
var mutex sync.RWMutex
var verifiedLogGroupName string

// EventsChannel is used for communication with the cloudwatch shipper.
var EventsChannel = make(chan Event)

// CreateInstance creates an instance of logDataFacade if not already created.
func CreateInstance(initArgs seelog.CustomReceiverInitArgs) (err error) {
	// Acquiring Read Write Lock on the instance to ensure enqueue/dequeue not happening
	mutex.Lock()
	defer mutex.Unlock()
	if err := verifyLogGroupName(initArgs); err != nil {
		return err
	}
	// Ensuring just one instance is created. Returning the same instance if already created
	once.Do(func() {
		defer func() {
			if msg := recover(); msg != nil {
				// Allow creation of another instance
				once = new(sync.Once)
				err = fmt.Errorf("create cloudwatch logs queue instance failed: %v", msg)
			}
		}()

		logDataFacadeInstance = &logDataFacade{}
		createQueue()
	})
	if !IsActive() {
		return errors.New("cloudwatch logs queue instance not active after create")
	}
	setLogDestination(initArgs)
	return
}

// setLogDestination updates the logGroup if needed.
func setLogDestination(initArgs seelog.CustomReceiverInitArgs) {
	logGroup, sharingDestination, logSharingEnabled := parseXMLConfigs(initArgs)
	if logDataFacadeInstance.logGroup == logGroup && logDataFacadeInstance.logSharingEnabled == logSharingEnabled && logDataFacadeInstance.sharingDestination == sharingDestination {
		return
	}

	logDataFacadeInstance.logGroup = logGroup
	logDataFacadeInstance.logSharingEnabled = logSharingEnabled
	logDataFacadeInstance.sharingDestination = sharingDestination

	// Signal the shipper that there has been a change in destination in a non-blocking way
	select {
	case EventsChannel <- LoggingDestinationChanged:
	default:
	}
}

func verifyLogGroupName(xmlConfig seelog.CustomReceiverInitArgs) error {
	logGroup, ok := xmlConfig.XmlCustomAttrs[logGroupSeelogAttrib]
	if !ok || logGroup == "" {
		logGroup = defaultLogGroup
	}
	verifiedLogGroupName = logGroup
	return nil
}

// parseXMLConfigs parses the logGroup from the seelog config.
func parseXMLConfigs(xmlConfig seelog.CustomReceiverInitArgs) (logGroup, sharingDestination string, logSharingEnabled bool) {
	var err error
	logSharingEnabledParam, ok := xmlConfig.XmlCustomAttrs["log-sharing-enabled"]
	if !ok {
		logSharingEnabled = false
	} else {
		logSharingEnabled, err = strconv.ParseBool(logSharingEnabledParam)
		if err != nil {
			logSharingEnabled = false
		}
	}

	if logSharingEnabled {
		sharingDestination, ok = xmlConfig.XmlCustomAttrs["sharing-destination"]
		if !ok {
			logSharingEnabled = false
		}
	}

	return verifiedLogGroupName, sharingDestination, logSharingEnabled
}

// Dequeue returns the batch of messages present in the queue. Returns an empty batch if the queue is empty,
// and nil with an error if no queue is present.
func Dequeue(pollingWaitTime time.Duration) ([]*cloudwatchlogs.InputLogEvent, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	if !IsActive() {
		return nil, errors.New("cloudwatch logs queue not initialized or destroyed on dequeue")
	}

	messages := make([]*cloudwatchlogs.InputLogEvent, 0, 10)
	cwCurrentBatchSize := 0
	for i := 0; i < batchSize; i++ {
		cwEvent, err := logDataFacadeInstance.messageQueue.Peek()
		if err == nil {
			if message, ok := cwEvent.(*cloudwatchlogs.InputLogEvent); ok {
				if messageByte, marshalErr := json.Marshal(message); marshalErr == nil {
					cwCurrentBatchSize += len(messageByte)
					if cwCurrentBatchSize > batchByteSizeMax {
						err = fmt.Errorf("cw batch byte size exceeded the limit")
					}
				}
			}
		}

		if err != nil {
			if err == queue.ErrEmptyQueue {
				return messages, nil
			}
			return messages, err
		}

		genericMessages, err := logDataFacadeInstance.messageQueue.Poll(1, pollingWaitTime)
		if err != nil {
			if err == queue.ErrTimeout {
				return messages, nil
			}
			return messages, err
		}

		if len(genericMessages) == 0 {
			return nil, nil
		}

		for i := range genericMessages {
			if message, ok := genericMessages[i].(*cloudwatchlogs.InputLogEvent); ok {
				messages = append(messages, message)
			}
		}
	}
	return messages, nil
}

// GetLogGroup returns the log group intended for logging.
func GetLogGroup() string {
	return logDataFacadeInstance.logGroup
}

// IsLogSharingEnabled returns true if log sharing is enabled.
func IsLogSharingEnabled() bool {
	return logDataFacadeInstance.logSharingEnabled
}

// GetSharingDestination returns the destination for sharing.
func GetSharingDestination() string {
	return logDataFacadeInstance.sharingDestination
}

// Enqueue adds a message to the queue.
func Enqueue(message *cloudwatchlogs.InputLogEvent) error {
	mutex.RLock()
	defer mutex.RUnlock()
	if !IsActive() {
		return errors.New("cloudwatch logs queue not initialized or destroyed on enqueue")
	}
	if logDataFacadeInstance.logGroup == "" && (logDataFacadeInstance.sharingDestination == "" || !logDataFacadeInstance.logSharingEnabled) {
		return fmt.Errorf("log group not found")
	}
	if logDataFacadeInstance.messageQueue.Len() < queueLimit {
		return logDataFacadeInstance.messageQueue.Put(message)
	}
	return errors.New("cloudwatch logs queue overflow, enqueue failed")
}

func createQueue() {
	logDataFacadeInstance.messageQueue = queue.New(initialQueueCapacity)
}

// DestroyInstance clears the queue and enables creation of a new instance.
func DestroyInstance() {
	select {
	case EventsChannel <- QueueDeactivated:
	default:
	}
	mutex.Lock()
	defer mutex.Unlock()
	if IsActive() {
		logDataFacadeInstance.messageQueue.Dispose()
		logDataFacadeInstance = nil
	}
	once = new(sync.Once)
}

// IsActive returns true if the queue is active.
func IsActive() bool {
	return logDataFacadeInstance != nil && logDataFacadeInstance.messageQueue != nil
}
