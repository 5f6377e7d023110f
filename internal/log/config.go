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

import "path/filepath"

const (
	// DefaultLogDir is the directory rolling log files are written to.
	DefaultLogDir = "log"

	// LogFile is the default rolling log file name.
	LogFile = "rotating-credentials-provider.log"

	// ErrorFile is the default rolling error log file name.
	ErrorFile = "errors.log"

	// DefaultSeelogConfigFilePath is the path checked for a seelog XML override in the working directory.
	DefaultSeelogConfigFilePath = "seelog.xml"
)

// DefaultConfig returns the seelog XML configuration used when no override file is present.
func DefaultConfig() []byte {
	return BuildConfig(DefaultLogDir, LogFile, "")
}

// BuildConfig renders a seelog XML configuration rooted at logDir, optionally registering the
// CloudWatch custom receiver when cloudWatchLogGroup is non-empty.
func BuildConfig(logDir string, logFile string, cloudWatchLogGroup string) []byte {
	logFilePath := filepath.Join(logDir, logFile)
	errorFilePath := filepath.Join(logDir, ErrorFile)

	cfg := `
<seelog type="adaptive" mininterval="2000000" maxinterval="100000000" critmsgcount="500" minlevel="info">
    <exceptions>
        <exception filepattern="test*" minlevel="error"/>
    </exceptions>
    <outputs formatid="fmtinfo">
        <console formatid="fmtinfo"/>
        <rollingfile type="size" filename="` + logFilePath + `" maxsize="30000000" maxrolls="5"/>
        <filter levels="error" formatid="fmterror">
            <rollingfile type="size" filename="` + errorFilePath + `" maxsize="10000000" maxrolls="5"/>
        </filter>`

	if cloudWatchLogGroup != "" {
		cfg += `
        <custom name="cloudwatch_receiver" formatid="fmtinfo" log-group="` + cloudWatchLogGroup + `"/>`
	}

	cfg += `
    </outputs>
    <formats>
        <format id="fmterror" format="%Date %Time %LEVEL [%FuncShort @ %File.%Line] %Msg%n"/>
        <format id="fmtinfo" format="%Date %Time %LEVEL %Msg%n"/>
    </formats>
</seelog>
`
	return []byte(cfg)
}
