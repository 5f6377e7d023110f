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

// Package env selects a credentials.Retriever implementation from the process
// environment.
package env

import (
	"fmt"
	"os"

	"github.com/aws/rotating-credentials-provider/credentials"
	"github.com/aws/rotating-credentials-provider/credentials/retriever/ecs"
	"github.com/aws/rotating-credentials-provider/credentials/retriever/static"
	"github.com/aws/rotating-credentials-provider/internal/config"
	"github.com/aws/rotating-credentials-provider/internal/log"
)

// Environment variable names recognized by NewFromEnvironment.
const (
	EnvContainerCredentialsRelativeURI = "AWS_CONTAINER_CREDENTIALS_RELATIVE_URI"
	EnvAccessKeyID                     = "AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey                 = "AWS_SECRET_ACCESS_KEY"
	EnvSessionToken                    = "AWS_SESSION_TOKEN"
	EnvDevCredentialsRoleArn           = "DEV_CREDENTIALS_IAM_ROLE_ARN"
)

// NewFromEnvironment inspects the environment in the precedence documented for the
// provider (ECS relative URI first, then the static key pair, then - only in
// devcreds-tagged builds - the dev role ARN) and constructs the matching retriever.
func NewFromEnvironment(cfg config.T, logger log.T) (credentials.Retriever, error) {
	if uri := os.Getenv(EnvContainerCredentialsRelativeURI); uri != "" {
		logger.Infof("selecting ECS container credentials retriever for %s", uri)
		return ecs.New(uri), nil
	}

	accessKeyID := os.Getenv(EnvAccessKeyID)
	secretAccessKey := os.Getenv(EnvSecretAccessKey)
	if accessKeyID != "" && secretAccessKey != "" {
		logger.Info("selecting static credentials retriever")
		return static.New(accessKeyID, secretAccessKey, os.Getenv(EnvSessionToken)), nil
	}

	if retriever, ok := devRetriever(os.Getenv(EnvDevCredentialsRoleArn), logger); ok {
		return retriever, nil
	}

	return nil, fmt.Errorf(
		"no credential source found: inspected %s, %s/%s, and %s",
		EnvContainerCredentialsRelativeURI, EnvAccessKeyID, EnvSecretAccessKey, EnvDevCredentialsRoleArn,
	)
}
