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

// Package configfile loads the optional JSON override file consulted by
// internal/config, reading it through a stubbable seam so tests don't need a real file
// on disk.
package configfile

import "encoding/json"

// reader abstracts file reads so tests can stub missing/unreadable files without
// touching the filesystem.
var reader fileReader = osReader{}

type fileReader interface {
	ReadFile(path string) ([]byte, error)
}

// Load reads path and unmarshals its JSON content onto dest. dest is typically a
// partially-populated struct: json.Unmarshal only touches fields the document mentions,
// so callers can seed defaults first and have Load merge overrides in place.
func Load(path string, dest interface{}) error {
	content, err := reader.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(content, dest)
}
