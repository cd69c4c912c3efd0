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

package kncloudevents

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cloudevents/sdk-go/v2/binding/format"
	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/hashicorp/go-retryablehttp"
	"go.opencensus.io/plugin/ochttp"
	"knative.dev/pkg/tracing/propagation/tracecontextb3"

	bindinghttp "knative.dev/cebinding/pkg/binding/http"
	cehttp "knative.dev/cebinding/pkg/binding/nethttp"
)

const (
	defaultRetryWaitMin = 1 * time.Second
	defaultRetryWaitMax = 30 * time.Second
)

// StatusError is returned when the target answers with a non 2xx status.
type StatusError struct {
	Target     string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s: %s", e.StatusCode, e.Target, e.Body)
}

// Sender posts events in binary mode and retries according to its RetryConfig.
type Sender struct {
	client *http.Client
	retry  RetryConfig
}

// NewSender returns a Sender with a tracing client. A nil client uses a clone
// of the default transport.
func NewSender(client *http.Client, retry RetryConfig) *Sender {
	if client == nil {
		client = &http.Client{
			Transport: &ochttp.Transport{
				Base:        http.DefaultTransport.(*http.Transport).Clone(),
				Propagation: tracecontextb3.TraceContextEgress,
			},
		}
	}
	if retry.CheckRetry == nil || retry.Backoff == nil {
		retry = NoRetries()
	}
	return &Sender{client: client, retry: retry}
}

// Send posts e to target. It returns the event the target replied with, or
// nil when the reply carried no event.
func (s *Sender) Send(ctx context.Context, target string, e *event.Event) (*event.Event, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	req, err := cehttp.NewRequest(ctx, http.MethodPost, target, e)
	if err != nil {
		return nil, err
	}

	client := s.client
	if s.retry.RequestTimeout != 0 {
		client = &http.Client{
			Transport:     client.Transport,
			CheckRedirect: client.CheckRedirect,
			Jar:           client.Jar,
			Timeout:       s.retry.RequestTimeout,
		}
	}
	retryableClient := retryablehttp.Client{
		HTTPClient:   client,
		RetryWaitMin: defaultRetryWaitMin,
		RetryWaitMax: defaultRetryWaitMax,
		RetryMax:     s.retry.RetryMax,
		CheckRetry:   retryablehttp.CheckRetry(s.retry.CheckRetry),
		Backoff:      backoffFn(&s.retry),
		ErrorHandler: func(resp *http.Response, err error, _ int) (*http.Response, error) {
			return resp, err
		},
	}

	retryableReq, err := retryablehttp.FromRequest(req)
	if err != nil {
		return nil, err
	}
	resp, err := retryableClient.Do(retryableReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send event to %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &StatusError{Target: target, StatusCode: resp.StatusCode, Body: string(body)}
	}
	if resp.Header.Get(bindinghttp.SpecVersionHeader) == "" && !format.IsFormat(resp.Header.Get(bindinghttp.ContentType)) {
		return nil, nil
	}
	return cehttp.NewEventFromResponse(resp)
}
