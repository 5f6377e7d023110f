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

//go:build devcreds

package env

import (
	"github.com/aws/rotating-credentials-provider/credentials"
	"github.com/aws/rotating-credentials-provider/credentials/retriever/dev"
	"github.com/aws/rotating-credentials-provider/internal/log"
)

func devRetriever(roleArn string, logger log.T) (credentials.Retriever, bool) {
	if roleArn == "" {
		return nil, false
	}
	logger.Infof("selecting dev subprocess credentials retriever for role %s", roleArn)
	return dev.New(roleArn), true
}
