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

package builder

import (
	"errors"
	"fmt"
	nethttp "net/http"

	"golang.org/x/net/http/httpguts"
)

var (
	ErrInvalidHeaderName  = errors.New("invalid header name")
	ErrInvalidHeaderValue = errors.New("invalid header value")
	ErrInvalidStatusCode  = errors.New("invalid status code")
)

// Response is a framework neutral HTTP response with a byte slice body.
// A nil Body means the response was finished without a payload.
type Response struct {
	StatusCode int
	Header     nethttp.Header
	Body       []byte
}

// ResponseBuilder is a fluent builder for Response. Every method consumes
// the receiver and returns the builder to keep using; the first rejected
// input is remembered and returned when the response is built.
type ResponseBuilder struct {
	status int
	header nethttp.Header
	err    error
}

// NewResponseBuilder returns a builder for a 200 OK response.
func NewResponseBuilder() ResponseBuilder {
	return ResponseBuilder{status: nethttp.StatusOK, header: nethttp.Header{}}
}

func (b ResponseBuilder) Status(code int) ResponseBuilder {
	if b.err != nil {
		return b
	}
	if code < 100 || code > 999 {
		b.err = fmt.Errorf("%w: %d", ErrInvalidStatusCode, code)
		return b
	}
	b.status = code
	return b
}

func (b ResponseBuilder) Header(key, value string) ResponseBuilder {
	if b.err != nil {
		return b
	}
	if err := ValidateHeader(key, value); err != nil {
		b.err = err
		return b
	}
	if b.header == nil {
		b.header = nethttp.Header{}
	}
	b.header.Add(key, value)
	return b
}

// Body builds the response. The builder must not be used afterwards.
func (b ResponseBuilder) Body(body []byte) (*Response, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.header == nil {
		b.header = nethttp.Header{}
	}
	return &Response{
		StatusCode: b.status,
		Header:     b.header,
		Body:       body,
	}, nil
}

// ValidateHeader checks that key and value can be written on the wire.
func ValidateHeader(key, value string) error {
	if !httpguts.ValidHeaderFieldName(key) {
		return fmt.Errorf("%w: %q", ErrInvalidHeaderName, key)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("%w for %s: %q", ErrInvalidHeaderValue, key, value)
	}
	return nil
}
