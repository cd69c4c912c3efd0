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
	"context"
	"net/http"
	"strconv"

	"github.com/cloudevents/sdk-go/v2/event"

	bindinghttp "knative.dev/cebinding/pkg/binding/http"
	"knative.dev/cebinding/pkg/binding/http/builder"
)

// responseHandler writes a built response to whatever ResponseWriter serves it.
type responseHandler struct {
	resp *builder.Response
}

func (h responseHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	for k, v := range h.resp.Header {
		w.Header()[k] = append([]string(nil), v...)
	}
	if h.resp.Body != nil {
		w.Header().Set("Content-Length", strconv.Itoa(len(h.resp.Body)))
	}
	w.WriteHeader(h.resp.StatusCode)
	if len(h.resp.Body) > 0 {
		_, _ = w.Write(h.resp.Body)
	}
}

type handlerAdapter struct {
	builder builder.ResponseBuilder
}

var _ bindinghttp.Builder[http.Handler] = (*handlerAdapter)(nil)

func (a *handlerAdapter) Header(key, value string) {
	a.builder = a.builder.Header(key, value)
}

func (a *handlerAdapter) Body(body []byte) (http.Handler, error) {
	resp, err := a.builder.Body(body)
	if err != nil {
		return nil, bindinghttp.NewBuildError(err)
	}
	return responseHandler{resp: resp}, nil
}

func (a *handlerAdapter) Finish() (http.Handler, error) {
	return a.Body(nil)
}

// EventToHandler renders e in binary mode behind an http.Handler that writes
// the response with the given status code.
func EventToHandler(ctx context.Context, e *event.Event, status int) (http.Handler, error) {
	return bindinghttp.SerializeEvent[http.Handler](ctx, e, &handlerAdapter{
		builder: builder.NewResponseBuilder().Status(status),
	})
}

// Respond writes e in binary mode with a 200 status. When the event cannot be
// rendered the client gets a 500 carrying the error text.
func Respond(w http.ResponseWriter, r *http.Request, e *event.Event) {
	RespondWithStatus(w, r, e, http.StatusOK)
}

// RespondWithStatus is Respond with an explicit status code.
func RespondWithStatus(w http.ResponseWriter, r *http.Request, e *event.Event, status int) {
	h, err := EventToHandler(r.Context(), e, status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.ServeHTTP(w, r)
}
