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

// Package nethttp binds binary mode CloudEvents to net/http requests,
// responses and handlers.
package nethttp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/cloudevents/sdk-go/v2/event"

	bindinghttp "knative.dev/cebinding/pkg/binding/http"
	"knative.dev/cebinding/pkg/binding/http/builder"
)

type responseAdapter struct {
	builder builder.ResponseBuilder
}

var _ bindinghttp.Builder[*http.Response] = (*responseAdapter)(nil)

func (a *responseAdapter) Header(key, value string) {
	a.builder = a.builder.Header(key, value)
}

func (a *responseAdapter) Body(body []byte) (*http.Response, error) {
	return a.build(body, io.NopCloser(bytes.NewReader(body)))
}

func (a *responseAdapter) Finish() (*http.Response, error) {
	return a.build(nil, http.NoBody)
}

func (a *responseAdapter) build(body []byte, rc io.ReadCloser) (*http.Response, error) {
	resp, err := a.builder.Body(body)
	if err != nil {
		return nil, bindinghttp.NewBuildError(err)
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		StatusCode:    resp.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        resp.Header,
		Body:          rc,
		ContentLength: int64(len(body)),
	}, nil
}

// ToResponse renders e in binary mode as a 200 OK *http.Response whose body
// streams the payload. Without a payload the body is http.NoBody.
func ToResponse(ctx context.Context, e *event.Event) (*http.Response, error) {
	return bindinghttp.SerializeEvent[*http.Response](ctx, e, &responseAdapter{builder: builder.NewResponseBuilder()})
}
