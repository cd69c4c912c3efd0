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
	"errors"
	"net/http"

	"github.com/cloudevents/sdk-go/v2/event"
	"go.uber.org/zap"

	"knative.dev/cebinding/pkg/logging"
)

// EventHandlerFunc handles one received event. A non-nil reply is sent back
// to the caller in binary mode.
type EventHandlerFunc func(ctx context.Context, e event.Event) (reply *event.Event, err error)

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the logger used when the request context carries none.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithMaxBodyBytes caps the size of inbound bodies. Zero, the default, means
// no limit.
func WithMaxBodyBytes(n int64) HandlerOption {
	return func(h *Handler) {
		h.maxBodyBytes = n
	}
}

// Handler receives binary and structured mode events over HTTP POST.
//
// The response status codes:
//
//	200 - the handler replied with an event, carried in binary mode
//	202 - the event was handled without a reply
//	400 - the request did not carry a valid event
//	405 - the method was not POST
//	500 - the handler failed or its reply could not be rendered
type Handler struct {
	fn           EventHandlerFunc
	logger       *zap.Logger
	maxBodyBytes int64
}

var _ http.Handler = (*Handler)(nil)

func NewHandler(fn EventHandlerFunc, opts ...HandlerOption) *Handler {
	h := &Handler{fn: fn}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.logger != nil {
		ctx = logging.WithLogger(ctx, h.logger)
	}
	logger := logging.FromContext(ctx)

	w.Header().Set("Allow", "POST, OPTIONS")
	if r.Method == http.MethodOptions {
		w.Header().Set("WebHook-Allowed-Origin", "*") // Accept from any Origin:
		w.Header().Set("WebHook-Allowed-Rate", "*")   // Unlimited requests/minute
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	e, err := NewEventFromRequest(r)
	if err != nil {
		status := http.StatusBadRequest
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			status = reqErr.StatusCode
		}
		logger.Warn("Failed to extract event from request", zap.Error(err))
		http.Error(w, err.Error(), status)
		return
	}
	logger.Debug("Received event", zap.String("id", e.ID()), zap.String("type", e.Type()))

	reply, err := h.fn(ctx, *e)
	if err != nil {
		logger.Info("Error in event handler", zap.Error(err), zap.String("id", e.ID()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if reply == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	Respond(w, r.WithContext(ctx), reply)
}
