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
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/cloudevents/sdk-go/v2/event"

	bindinghttp "knative.dev/cebinding/pkg/binding/http"
	"knative.dev/cebinding/pkg/binding/http/builder"
)

// requestAdapter fills an existing request in place.
type requestAdapter struct {
	req *http.Request
	err error
}

var _ bindinghttp.Builder[*http.Request] = (*requestAdapter)(nil)

func (a *requestAdapter) Header(key, value string) {
	if a.err != nil {
		return
	}
	if err := builder.ValidateHeader(key, value); err != nil {
		a.err = err
		return
	}
	a.req.Header.Add(key, value)
}

func (a *requestAdapter) Body(body []byte) (*http.Request, error) {
	if a.err != nil {
		return nil, bindinghttp.NewBuildError(a.err)
	}
	a.req.ContentLength = int64(len(body))
	a.req.Body = io.NopCloser(bytes.NewReader(body))
	a.req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	return a.req, nil
}

func (a *requestAdapter) Finish() (*http.Request, error) {
	if a.err != nil {
		return nil, bindinghttp.NewBuildError(a.err)
	}
	a.req.ContentLength = 0
	a.req.Body = http.NoBody
	a.req.GetBody = func() (io.ReadCloser, error) {
		return http.NoBody, nil
	}
	return a.req, nil
}

// WriteRequest writes e in binary mode into req, replacing its body. The body
// can be replayed through GetBody, so retrying clients can resend it.
func WriteRequest(ctx context.Context, req *http.Request, e *event.Event) error {
	if req.Header == nil {
		req.Header = http.Header{}
	}
	_, err := bindinghttp.SerializeEvent[*http.Request](ctx, e, &requestAdapter{req: req})
	return err
}

// NewRequest returns a request for url carrying e in binary mode.
func NewRequest(ctx context.Context, method, url string, e *event.Event) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	if err := WriteRequest(ctx, req, e); err != nil {
		return nil, err
	}
	return req, nil
}
