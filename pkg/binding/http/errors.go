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
	"errors"
	"fmt"
)

var (
	// ErrMissingSpecVersion is returned when a binary mode message has no ce-specversion header.
	ErrMissingSpecVersion = errors.New("missing " + SpecVersionHeader + " header")

	// ErrDuplicateHeader is returned when an attribute header carries more than one value.
	ErrDuplicateHeader = errors.New("attribute header repeated")
)

// BuildError is returned when the underlying builder rejects the accumulated
// headers or body. The builder's own error is kept as the cause.
type BuildError struct {
	Err error
}

func (e *BuildError) Error() string {
	return "failed to build binary message: " + e.Err.Error()
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// NewBuildError wraps err in a BuildError, or returns nil when err is nil.
func NewBuildError(err error) error {
	if err == nil {
		return nil
	}
	return &BuildError{Err: err}
}

// ParseError is returned when inbound headers or body do not decode into a
// valid event. Header is empty when the failure is not tied to one header.
type ParseError struct {
	Header string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Header != "" {
		return fmt.Sprintf("malformed event: header %q: %v", e.Header, e.Err)
	}
	return "malformed event: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
