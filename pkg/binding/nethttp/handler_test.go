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
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/cloudevents/sdk-go/v2/test"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"knative.dev/cebinding/pkg/binding/fixtures"
)

func TestHandler(t *testing.T) {
	echo := func(_ context.Context, e event.Event) (*event.Event, error) {
		return &e, nil
	}
	drop := func(context.Context, event.Event) (*event.Event, error) {
		return nil, nil
	}
	fail := func(context.Context, event.Event) (*event.Event, error) {
		return nil, errors.New("handler failed")
	}

	tests := map[string]struct {
		fn         EventHandlerFunc
		method     string
		header     http.Header
		body       []byte
		opts       []HandlerOption
		wantStatus int
		wantEvent  *event.Event
	}{
		"echo": {
			fn:         echo,
			method:     http.MethodPost,
			header:     fixtures.FullHeaders(),
			body:       fixtures.JSONData(),
			wantStatus: http.StatusOK,
			wantEvent:  ptr(fixtures.Full()),
		},
		"no reply": {
			fn:         drop,
			method:     http.MethodPost,
			header:     fixtures.MinimalWithExtensionHeaders(),
			wantStatus: http.StatusAccepted,
		},
		"handler error": {
			fn:         fail,
			method:     http.MethodPost,
			header:     fixtures.MinimalWithExtensionHeaders(),
			wantStatus: http.StatusInternalServerError,
		},
		"bad spec version": {
			fn:     echo,
			method: http.MethodPost,
			header: func() http.Header {
				h := fixtures.MinimalWithExtensionHeaders()
				h.Set("ce-specversion", "BAD SPECIFICATION")
				return h
			}(),
			wantStatus: http.StatusBadRequest,
		},
		"body too large": {
			fn:         echo,
			method:     http.MethodPost,
			header:     fixtures.FullHeaders(),
			body:       fixtures.JSONData(),
			opts:       []HandlerOption{WithMaxBodyBytes(4)},
			wantStatus: http.StatusBadRequest,
		},
		"options": {
			fn:         echo,
			method:     http.MethodOptions,
			wantStatus: http.StatusOK,
		},
		"get": {
			fn:         echo,
			method:     http.MethodGet,
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for n, tc := range tests {
		t.Run(n, func(t *testing.T) {
			opts := append([]HandlerOption{WithLogger(zap.NewNop())}, tc.opts...)
			h := NewHandler(tc.fn, opts...)

			req := httptest.NewRequest(tc.method, "/", bytes.NewReader(tc.body))
			for k, v := range tc.header {
				req.Header[k] = v
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			if tc.wantEvent == nil {
				return
			}
			got, err := NewEventFromResponse(rec.Result())
			require.NoError(t, err)
			require.NoError(t, test.IsEqualTo(*tc.wantEvent)(*got))
		})
	}
}

func ptr(e event.Event) *event.Event {
	return &e
}
