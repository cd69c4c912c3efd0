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
	"net"
	"net/http"
	"time"

	"go.opencensus.io/plugin/ochttp"
	"knative.dev/pkg/network/handlers"
	"knative.dev/pkg/tracing/propagation/tracecontextb3"
)

const (
	DefaultShutdownTimeout = time.Minute * 1
)

// HTTPEventReceiver serves an http.Handler, typically a nethttp.Handler, and
// drains in-flight requests on shutdown.
type HTTPEventReceiver struct {
	port             int
	drainQuietPeriod time.Duration

	server   *http.Server
	listener net.Listener

	// Ready is closed once the receiver listens.
	Ready chan struct{}
}

type HTTPEventReceiverOption func(*HTTPEventReceiver)

// WithDrainQuietPeriod overrides how long the drainer waits for the last
// request before shutting the server down.
func WithDrainQuietPeriod(d time.Duration) HTTPEventReceiverOption {
	return func(r *HTTPEventReceiver) {
		r.drainQuietPeriod = d
	}
}

// NewHTTPEventReceiver returns a receiver for port. Port 0 picks a free one.
func NewHTTPEventReceiver(port int, opts ...HTTPEventReceiverOption) *HTTPEventReceiver {
	r := &HTTPEventReceiver{
		port:  port,
		Ready: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Addr returns the address the receiver listens on. Only valid after Ready.
func (recv *HTTPEventReceiver) Addr() string {
	return recv.listener.Addr().String()
}

// StartListen serves handler until ctx is done. Blocking.
func (recv *HTTPEventReceiver) StartListen(ctx context.Context, handler http.Handler) error {
	var err error
	if recv.listener, err = net.Listen("tcp", fmt.Sprintf(":%d", recv.port)); err != nil {
		return err
	}

	drainer := &handlers.Drainer{
		Inner:       CreateHandler(handler),
		QuietPeriod: recv.drainQuietPeriod,
	}
	recv.server = &http.Server{
		Addr:              recv.listener.Addr().String(),
		Handler:           drainer,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- recv.server.Serve(recv.listener)
	}()
	close(recv.Ready)

	// wait for the server to return or ctx.Done().
	select {
	case <-ctx.Done():
		// As we start to shutdown, disable keep-alives to avoid clients hanging onto connections.
		recv.server.SetKeepAlivesEnabled(false)
		drainer.Drain()
		ctx, cancel := context.WithTimeout(context.Background(), getShutdownTimeout(ctx))
		defer cancel()
		err := recv.server.Shutdown(ctx)
		<-errChan // Wait for server goroutine to exit
		return err
	case err := <-errChan:
		return err
	}
}

type shutdownTimeoutKey struct{}

func getShutdownTimeout(ctx context.Context) time.Duration {
	v := ctx.Value(shutdownTimeoutKey{})
	if v == nil {
		return DefaultShutdownTimeout
	}
	return v.(time.Duration)
}

func WithShutdownTimeout(ctx context.Context, timeout time.Duration) context.Context {
	return context.WithValue(ctx, shutdownTimeoutKey{}, timeout)
}

// CreateHandler instruments handler with trace context propagation.
func CreateHandler(handler http.Handler) http.Handler {
	return &ochttp.Handler{
		Propagation: tracecontextb3.TraceContextEgress,
		Handler:     handler,
	}
}
