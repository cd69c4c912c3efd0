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
	"testing"
	"time"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/cloudevents/sdk-go/v2/test"
	"github.com/phayes/freeport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knative.dev/cebinding/pkg/binding/fixtures"
	cehttp "knative.dev/cebinding/pkg/binding/nethttp"
)

func TestStartListenOnPort(t *testing.T) {
	port, err := freeport.GetFreePort()
	require.NoError(t, err)

	errChan := make(chan error)
	receiver := NewHTTPEventReceiver(port, WithDrainQuietPeriod(10*time.Millisecond))
	ctx, cancel := context.WithCancel(context.TODO())
	go func() {
		errChan <- receiver.StartListen(ctx, http.NotFoundHandler())
	}()

	<-receiver.Ready
	conn, err := net.DialTCP("tcp", nil, &net.TCPAddr{Port: port})
	require.NoError(t, err)
	conn.Close()

	cancel()
	assert.NoError(t, <-errChan)
}

func TestReceiveAndReply(t *testing.T) {
	port, err := freeport.GetFreePort()
	require.NoError(t, err)

	received := make(chan event.Event, 1)
	handler := cehttp.NewHandler(func(_ context.Context, e event.Event) (*event.Event, error) {
		received <- e
		reply := e.Clone()
		reply.SetType("dev.knative.reply")
		return &reply, nil
	})

	errChan := make(chan error)
	receiver := NewHTTPEventReceiver(port, WithDrainQuietPeriod(10*time.Millisecond))
	ctx, cancel := context.WithCancel(context.TODO())
	go func() {
		errChan <- receiver.StartListen(ctx, handler)
	}()
	<-receiver.Ready

	e := fixtures.Full()
	reply, err := NewSender(nil, NoRetries()).Send(context.Background(), fmt.Sprintf("http://127.0.0.1:%d", port), &e)
	require.NoError(t, err)

	require.NoError(t, test.IsEqualTo(fixtures.Full())(<-received))
	require.NotNil(t, reply)
	require.NoError(t, test.AllOf(
		test.HasId(fixtures.ID),
		test.HasType("dev.knative.reply"),
		test.HasSource(fixtures.Source),
	)(*reply))

	cancel()
	assert.NoError(t, <-errChan)
}

type blockingHandler struct {
	blockFor        time.Duration
	receivedRequest chan struct{}
}

func (h *blockingHandler) ServeHTTP(http.ResponseWriter, *http.Request) {
	close(h.receivedRequest)
	time.Sleep(h.blockFor)
}

func TestWithShutdownTimeout(t *testing.T) {
	shutdownTimeout := 15 * time.Millisecond
	receivedRequest := make(chan struct{})
	errChan := make(chan error)
	receiver := NewHTTPEventReceiver(0, WithDrainQuietPeriod(10*time.Millisecond))
	ctx, cancel := context.WithCancel(context.TODO())

	go func() {
		errChan <- receiver.StartListen(WithShutdownTimeout(ctx, shutdownTimeout), &blockingHandler{
			blockFor:        shutdownTimeout * 100,
			receivedRequest: receivedRequest,
		})
	}()
	<-receiver.Ready

	_, port, err := net.SplitHostPort(receiver.Addr())
	require.NoError(t, err)
	go func() {
		resp, err := http.Get("http://127.0.0.1:" + port)
		if err == nil {
			resp.Body.Close()
		}
	}()

	<-receivedRequest
	cancel()
	assert.ErrorIs(t, <-errChan, context.DeadlineExceeded)
}
