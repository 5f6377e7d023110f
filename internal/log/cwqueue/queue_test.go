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

package cwqueue

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/service/cloudwatchlogs"
	"github.com/cihub/seelog"
	"github.com/stretchr/testify/assert"
)

func TestFacade(t *testing.T) {
	xmlArgs := make(map[string]string)
	xmlArgs["log-group"] = "LogGroup"
	xmlArgs["log-stream"] = "LogStream"

	initArgs := seelog.CustomReceiverInitArgs{
		XmlCustomAttrs: xmlArgs,
	}

	once = new(sync.Once)
	CreateInstance(initArgs)

	messages, err := Dequeue(time.Millisecond)
	assert.NoError(t, err, "Unexpected Error in Dequeueing From Queue")
	assert.Len(t, messages, 0, "No Messages should be present")

	message := &cloudwatchlogs.InputLogEvent{}

	Enqueue(message)

	messages, err = Dequeue(time.Millisecond)

	assert.NoError(t, err, "Unexpected Error in Dequeueing From Queue")
	assert.Len(t, messages, 1, "Messages should be of length 1")

	messages, err = Dequeue(time.Millisecond)
	assert.NoError(t, err, "Unexpected Error in Dequeueing From Queue")
	assert.Len(t, messages, 0, "No Messages should be present")

	Enqueue(message)

	messages, err = Dequeue(time.Millisecond)
	assert.NoError(t, err, "Unexpected Error in Dequeueing From Queue")
	assert.NotNil(t, messages, "Messages should be present")

	s := strings.Repeat("A", batchByteSizeMax/2)
	message = &cloudwatchlogs.InputLogEvent{
		Message: &s,
	}
	Enqueue(message)
	Enqueue(message)
	messages, err = Dequeue(time.Millisecond)
	assert.Equal(t, "cw batch byte size exceeded the limit", err.Error())
	assert.Len(t, messages, 1, "Only the first message should fit in the batch")

	DestroyInstance()

	messages, err = Dequeue(time.Millisecond)
	assert.Error(t, err, "No Error in Dequeueing From Destroyed Queue")
	assert.Len(t, messages, 0, "No Messages should be present")
}

func TestParallelAccessOfQueue(t *testing.T) {
	xmlArgs := make(map[string]string)
	xmlArgs["log-group"] = "LogGroup"
	xmlArgs["log-stream"] = "LogStream"

	initArgs := seelog.CustomReceiverInitArgs{
		XmlCustomAttrs: xmlArgs,
	}

	once = new(sync.Once)
	CreateInstance(initArgs)

	message := &cloudwatchlogs.InputLogEvent{}

	counter := 0

	dequeued := make(chan bool, 6)
	done := make(chan bool, 3)
	enqueuesComplete := false

	go func() {
		for i := 0; i < 500; i++ {
			Enqueue(message)
			counter++
			if i == 100 || i == 300 {
				<-dequeued
			}
		}
		<-dequeued
		done <- true
	}()

	go func() {
		for i := 0; i < 1000; i++ {
			Enqueue(message)
			counter++
			if i == 100 || i == 500 {
				<-dequeued
			}
		}
		<-dequeued
		done <- true
	}()

	go func() {
		for {
			messages, _ := Dequeue(time.Millisecond)
			counter -= len(messages)
			if len(messages) == 0 {
				dequeued <- true
			}
			if enqueuesComplete {
				break
			}
			time.Sleep(time.Millisecond)
		}
		done <- true
	}()

	<-done
	<-done
	enqueuesComplete = true
	<-done

	assert.Equal(t, 0, counter, "Message loss while enqueueing and dequeueing from go routines")
}

func TestOverflow(t *testing.T) {
	xmlArgs := make(map[string]string)
	xmlArgs["log-group"] = "LogGroup"
	xmlArgs["log-stream"] = "LogStream"

	initArgs := seelog.CustomReceiverInitArgs{
		XmlCustomAttrs: xmlArgs,
	}

	once = new(sync.Once)
	CreateInstance(initArgs)

	message := &cloudwatchlogs.InputLogEvent{}

	for i := int64(0); i < (queueLimit + int64(100)); i++ {
		Enqueue(message)
	}

	assert.Equal(t, queueLimit, logDataFacadeInstance.messageQueue.Len(), "No. of messages in Queue do not match queuelimit on enqueueing more than limit")
}

func TestVerifyLogGroupNameDefault(t *testing.T) {
	verifiedLogGroupName = ""
	initArgs := seelog.CustomReceiverInitArgs{XmlCustomAttrs: map[string]string{}}
	err := verifyLogGroupName(initArgs)
	assert.NoError(t, err)
	assert.Equal(t, defaultLogGroup, verifiedLogGroupName)
}

func TestVerifyLogGroupNameCustom(t *testing.T) {
	verifiedLogGroupName = ""
	initArgs := seelog.CustomReceiverInitArgs{XmlCustomAttrs: map[string]string{logGroupSeelogAttrib: "custom-group"}}
	err := verifyLogGroupName(initArgs)
	assert.NoError(t, err)
	assert.Equal(t, "custom-group", verifiedLogGroupName)
}
