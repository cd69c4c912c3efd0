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
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/cloudevents/sdk-go/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knative.dev/cebinding/pkg/binding/fixtures"
	bindinghttp "knative.dev/cebinding/pkg/binding/http"
	"knative.dev/cebinding/pkg/binding/http/builder"
)

func TestToResponse(t *testing.T) {
	e := fixtures.MinimalWithExtension()

	resp, err := ToResponse(context.Background(), &e)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1.0", resp.Header.Get("ce-specversion"))
	assert.Equal(t, fixtures.ID, resp.Header.Get("ce-id"))
	assert.Equal(t, fixtures.Type, resp.Header.Get("ce-type"))
	assert.Equal(t, fixtures.Source, resp.Header.Get("ce-source"))
	assert.Equal(t, "10", resp.Header.Get("ce-someint"))
	assert.Equal(t, http.NoBody, resp.Body)
	assert.Equal(t, int64(0), resp.ContentLength)
}

func TestToResponseWithFullData(t *testing.T) {
	e := fixtures.Full()

	resp, err := ToResponse(context.Background(), &e)
	require.NoError(t, err)

	assert.Equal(t, fixtures.JSONContentType, resp.Header.Get("content-type"))
	assert.Equal(t, "10", resp.Header.Get("ce-intex"))
	assert.Equal(t, int64(len(fixtures.JSONData())), resp.ContentLength)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, fixtures.JSONData(), body)
}

func TestToResponseRejectedHeader(t *testing.T) {
	e := fixtures.Minimal()
	e.SetExtension("broken", "a\r\nb")

	_, err := ToResponse(context.Background(), &e)
	var buildErr *bindinghttp.BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.ErrorIs(t, err, builder.ErrInvalidHeaderValue)
}

func TestResponseRoundTrip(t *testing.T) {
	want := fixtures.Full()

	resp, err := ToResponse(context.Background(), &want)
	require.NoError(t, err)

	got, err := NewEventFromResponse(resp)
	require.NoError(t, err)
	require.NoError(t, test.IsEqualTo(want)(*got))
}

func TestEventToHandler(t *testing.T) {
	e := fixtures.Full()
	h, err := EventToHandler(context.Background(), &e, http.StatusCreated)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, fixtures.JSONData(), rec.Body.Bytes())
	assert.Equal(t, fixtures.JSONContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, strconv.Itoa(len(fixtures.JSONData())), rec.Header().Get("Content-Length"))
}

func TestEventToHandlerWithoutPayload(t *testing.T) {
	e := fixtures.Minimal()
	h, err := EventToHandler(context.Background(), &e, http.StatusOK)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
	assert.Empty(t, rec.Header().Get("Content-Length"))
	assert.Equal(t, fixtures.ID, rec.Header().Get("ce-id"))
}

func TestRespondRenderFailure(t *testing.T) {
	e := fixtures.Minimal()
	e.SetExtension("broken", "a\nb")

	rec := httptest.NewRecorder()
	Respond(rec, httptest.NewRequest(http.MethodPost, "/", nil), &e)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), builder.ErrInvalidHeaderValue.Error())
	assert.Empty(t, rec.Header().Get("ce-id"))
}
