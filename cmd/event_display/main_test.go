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

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudevents/sdk-go/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"knative.dev/cebinding/pkg/binding/fixtures"
	"knative.dev/cebinding/pkg/logging"
)

func TestDisplayWithoutReply(t *testing.T) {
	ctx := logging.WithLogger(context.Background(), zap.NewNop())
	reply, err := newDisplay(envConfig{})(ctx, fixtures.Full())
	require.NoError(t, err)
	assert.Nil(t, reply)
}

func TestDisplayWithReply(t *testing.T) {
	ctx := logging.WithLogger(context.Background(), zap.NewNop())
	reply, err := newDisplay(envConfig{Reply: true, ReplyType: "dev.knative.reply"})(ctx, fixtures.Full())
	require.NoError(t, err)
	require.NotNil(t, reply)

	assert.NotEqual(t, fixtures.ID, reply.ID())
	require.NoError(t, test.AllOf(
		test.HasType("dev.knative.reply"),
		test.HasSource(fixtures.Source),
		test.HasData(fixtures.JSONData()),
	)(*reply))
}

func TestHealthz(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := healthzMiddleware(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, healthzPath, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
