/*
Copyright 2024 The Knative Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package http

import (
	"strconv"
	"strings"
)

const (
	// HeaderPrefix is prepended to every attribute and extension name.
	HeaderPrefix = "ce-"

	// ContentType carries the datacontenttype attribute in binary mode.
	ContentType = "content-type"

	// SpecVersionHeader is the header every binary mode message starts with.
	SpecVersionHeader = HeaderPrefix + "specversion"
)

// HeaderName returns the header key used for the attribute or extension name.
func HeaderName(name string) string {
	return HeaderPrefix + name
}

// attributeName returns the attribute name carried by a lower case header
// key, and false when the key does not belong to a CloudEvents attribute.
func attributeName(key string) (string, bool) {
	if !strings.HasPrefix(key, HeaderPrefix) || len(key) == len(HeaderPrefix) {
		return "", false
	}
	return key[len(HeaderPrefix):], true
}

// decodeExtension returns the narrowest CloudEvents scalar whose canonical
// encoding is exactly s, so re-encoding the value reproduces the header.
func decodeExtension(s string) interface{} {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 32); err == nil && strconv.FormatInt(i, 10) == s {
		return int32(i)
	}
	return s
}
