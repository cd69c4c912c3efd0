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
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"knative.dev/pkg/signals"
	"knative.dev/pkg/tracing"
	"knative.dev/pkg/tracing/config"

	cehttp "knative.dev/cebinding/pkg/binding/nethttp"
	"knative.dev/cebinding/pkg/kncloudevents"
	"knative.dev/cebinding/pkg/logging"
)

/*
Example Output:

☁️  cloudevents.Event
Context Attributes,
  specversion: 1.0
  type: dev.knative.eventing.samples.heartbeat
  source: https://knative.dev/eventing/cmd/heartbeats/#event-test/mypod
  id: 2b72d7bf-c38f-4a98-a433-608fbcdd2596
  time: 2019-10-18T15:23:20.809775386Z
  datacontenttype: application/json
Extensions,
  beats: true
  heart: yes
  the: 42
Data,
  {
    "id": 2,
    "label": ""
  }
*/

type envConfig struct {
	Port int `envconfig:"PORT" default:"8080"`

	// Reply echoes every event back with a fresh id.
	Reply bool `envconfig:"REPLY" default:"false"`

	// ReplyType overrides the type of replied events when set.
	ReplyType string `envconfig:"REPLY_TYPE"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// MaxBodyBytes caps inbound bodies, 0 means unlimited.
	MaxBodyBytes int64 `envconfig:"MAX_BODY_BYTES" default:"0"`

	DrainQuietPeriod time.Duration `envconfig:"DRAIN_QUIET_PERIOD" default:"45s"`

	// JSON configuration for tracing
	TracingConfig string `envconfig:"K_CONFIG_TRACING"`
}

// HTTP path of the health endpoint used for probing the service.
const healthzPath = "/healthz"

func main() {
	var env envConfig
	if err := envconfig.Process("", &env); err != nil {
		log.Fatalf("Failed to process env var: %v", err)
	}

	logger, err := logging.New("event_display", env.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	conf, err := config.JSONToTracingConfig(env.TracingConfig)
	if err != nil {
		logger.Warn("Failed to read tracing config, using the no-op default", zap.Error(err))
	}
	if err := tracing.SetupStaticPublishing(logger.Sugar(), "", conf); err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	ctx := logging.WithLogger(signals.NewContext(), logger)

	handler := cehttp.NewHandler(newDisplay(env),
		cehttp.WithLogger(logger),
		cehttp.WithMaxBodyBytes(env.MaxBodyBytes),
	)
	receiver := kncloudevents.NewHTTPEventReceiver(env.Port,
		kncloudevents.WithDrainQuietPeriod(env.DrainQuietPeriod))

	logger.Info("Starting event display", zap.Int("port", env.Port), zap.Bool("reply", env.Reply))
	if err := receiver.StartListen(ctx, healthzMiddleware(handler)); err != nil {
		logger.Fatal("Error during receiver's runtime", zap.Error(err))
	}
}

// newDisplay returns a handler that prints every event in a human-readable
// format and replies with a copy of it when configured to.
func newDisplay(env envConfig) cehttp.EventHandlerFunc {
	return func(ctx context.Context, e event.Event) (*event.Event, error) {
		fmt.Printf("☁️  cloudevents.Event\n%s", e)
		logging.FromContext(ctx).Info("Displayed event",
			zap.String("id", e.ID()),
			zap.String("type", e.Type()),
			zap.String("source", e.Source()))

		if !env.Reply {
			return nil, nil
		}
		reply := e.Clone()
		reply.SetID(uuid.New().String())
		if env.ReplyType != "" {
			reply.SetType(env.ReplyType)
		}
		return &reply, nil
	}
}

// healthzMiddleware exposes a health endpoint in front of next.
func healthzMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.RequestURI == healthzPath {
			w.WriteHeader(http.StatusNoContent)
		} else {
			next.ServeHTTP(w, req)
		}
	})
}
