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

// Command rotating-credentials-demo wires the bootstrap, provider and logging
// subsystems together and prints the current credentials on a timer, exercising the
// rotation path end to end against whatever retriever the environment selects.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/rotating-credentials-provider/credentials"
	"github.com/aws/rotating-credentials-provider/env"
	"github.com/aws/rotating-credentials-provider/internal/config"
	"github.com/aws/rotating-credentials-provider/internal/log"
)

func main() {
	cfg := config.Get(false)

	logGroup := ""
	if cfg.CloudWatch.Enabled {
		logGroup = cfg.CloudWatch.LogGroup
	}
	logger := log.GetLogger(log.Options{CloudWatchLogGroup: logGroup})
	defer logger.Close()
	defer logger.Flush()

	shipCtx, stopShipping := context.WithCancel(context.Background())
	defer stopShipping()
	if err := log.StartCloudWatchShipping(shipCtx, logGroup, cfg.Agent.Region, logger); err != nil {
		logger.Errorf("could not start cloudwatch logs shipper: %v", err)
	}

	run(cfg, logger)
}

func run(cfg config.T, logger log.T) {
	retriever, err := env.NewFromEnvironment(cfg, logger)
	if err != nil {
		logger.Errorf("could not select a credential retriever: %v", err)
		os.Exit(1)
	}

	provider, err := credentials.New(context.Background(), retriever, credentials.Options{
		ExpirationBuffer:  cfg.Rotation.ExpirationBuffer,
		BackgroundBuffer:  cfg.Rotation.BackgroundBuffer,
		ValidRetryDelay:   cfg.Rotation.ValidRetryDelay,
		InvalidRetryDelay: cfg.Rotation.InvalidRetryDelay,
		RoleSessionName:   cfg.Agent.RoleSessionName,
		Logger:            logger,
	})
	if err != nil {
		logger.Errorf("could not initialize credentials provider: %v", err)
		os.Exit(1)
	}
	provider.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			creds, err := provider.CurrentCredentials()
			if err != nil {
				logger.Errorf("current credentials unavailable: %v", err)
				continue
			}
			logger.Infof("current access key id: %s", creds.AccessKeyID)
		case <-sigCh:
			logger.Info("shutdown signal received")
			provider.Shutdown()
			provider.Wait()
			return
		}
	}
}
