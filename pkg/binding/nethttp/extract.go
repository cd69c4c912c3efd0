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

package nethttp

import (
	"fmt"
	"io"
	"net/http"

	"github.com/cloudevents/sdk-go/v2/event"

	bindinghttp "knative.dev/cebinding/pkg/binding/http"
)

// RequestError is the client facing failure of turning a request into an
// event. StatusCode is the status the request should be answered with.
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func badRequest(err error) error {
	return &RequestError{StatusCode: http.StatusBadRequest, Err: err}
}

// NewEventFromRequest buffers the request body and decodes the event it
// carries. The body is read without a size limit; callers wanting one should
// wrap it with http.MaxBytesReader first.
//
// Both read and decode failures are returned as a 400 RequestError.
func NewEventFromRequest(r *http.Request) (*event.Event, error) {
	return newEvent(r.Header, r.Body)
}

// NewEventFromResponse decodes the event carried by resp, for example the
// reply of a sink. The body is consumed but not closed.
func NewEventFromResponse(resp *http.Response) (*event.Event, error) {
	return newEvent(resp.Header, resp.Body)
}

func newEvent(header http.Header, body io.Reader) (*event.Event, error) {
	var buf []byte
	if body != nil && body != http.NoBody {
		var err error
		if buf, err = io.ReadAll(body); err != nil {
			return nil, badRequest(fmt.Errorf("failed to read body: %w", err))
		}
	}
	e, err := bindinghttp.ToEvent(header, buf)
	if err != nil {
		return nil, badRequest(err)
	}
	return e, nil
}
