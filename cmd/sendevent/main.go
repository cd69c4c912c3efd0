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

// Implements a simple utility for sending a binary mode event.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"knative.dev/pkg/signals"

	"knative.dev/cebinding/pkg/kncloudevents"
	"knative.dev/cebinding/pkg/logging"
)

type extensions map[string]string

func (x extensions) String() string {
	pairs := make([]string, 0, len(x))
	for k, v := range x {
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, ",")
}

func (x extensions) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("extension %q is not of the form name=value", s)
	}
	x[name] = value
	return nil
}

type flags struct {
	eventID     string
	eventType   string
	source      string
	data        string
	contentType string
	extensions  extensions
}

type envConfig struct {
	// Sink URL where to send the event, overridden by the positional argument.
	Sink string `envconfig:"K_SINK"`

	RetryMax      int                         `envconfig:"RETRY_MAX" default:"0"`
	BackoffPolicy kncloudevents.BackoffPolicy `envconfig:"BACKOFF_POLICY" default:"exponential"`
	BackoffDelay  string                      `envconfig:"BACKOFF_DELAY" default:"PT0.2S"`
	Timeout       string                      `envconfig:"REQUEST_TIMEOUT"`
	RetryAfterMax string                      `envconfig:"RETRY_AFTER_MAX"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

func main() {
	f := flags{extensions: extensions{}}
	flag.StringVar(&f.eventID, "event-id", "", "Event ID to use. Defaults to a generated UUID")
	flag.StringVar(&f.eventType, "event-type", "dev.knative.cebinding.sample", "The Event Type to use.")
	flag.StringVar(&f.source, "source", "", "Source URI to use. Defaults to the current machine's hostname")
	flag.StringVar(&f.data, "data", `{"hello": "world!"}`, "Event data, empty for no payload")
	flag.StringVar(&f.contentType, "content-type", "application/json", "Content type of the event data")
	flag.Var(f.extensions, "extension", "Extension attribute as name=value, may be repeated")
	flag.Parse()

	var env envConfig
	if err := envconfig.Process("", &env); err != nil {
		log.Fatalf("Failed to process env var: %v", err)
	}

	sink := env.Sink
	if len(flag.Args()) == 1 {
		sink = flag.Arg(0)
	}
	if sink == "" {
		fmt.Println("Usage: sendevent [flags] <sink>\nThe sink may also be set with K_SINK. For details about valid flags, run sendevent --help")
		os.Exit(1)
	}

	logger, err := logging.New("sendevent", env.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	retry, err := kncloudevents.NewRetryConfig(kncloudevents.DeliveryOptions{
		Retry:         env.RetryMax,
		BackoffPolicy: env.BackoffPolicy,
		BackoffDelay:  env.BackoffDelay,
		Timeout:       env.Timeout,
		RetryAfterMax: env.RetryAfterMax,
	})
	if err != nil {
		logger.Fatal("Invalid delivery options", zap.Error(err))
	}

	e, err := buildEvent(f, time.Now().UTC())
	if err != nil {
		logger.Fatal("Failed to build event", zap.Error(err))
	}

	ctx := logging.WithLogger(signals.NewContext(), logger)
	reply, err := kncloudevents.NewSender(nil, retry).Send(ctx, sink, e)
	if err != nil {
		logger.Fatal("Failed to send event", zap.String("sink", sink), zap.Error(err))
	}
	logger.Info("Sent event", zap.String("id", e.ID()), zap.String("sink", sink))
	if reply != nil {
		fmt.Printf("Got reply from %s\n%s", sink, reply)
	}
}

func buildEvent(f flags, now time.Time) (*event.Event, error) {
	e := event.New()
	e.SetID(f.eventID)
	if e.ID() == "" {
		e.SetID(uuid.New().String())
	}
	e.SetType(f.eventType)
	e.SetSource(f.source)
	if e.Source() == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "localhost"
		}
		e.SetSource(hostname)
	}
	e.SetTime(now)
	for name, value := range f.extensions {
		e.SetExtension(name, value)
	}
	if f.data != "" {
		e.SetDataContentType(f.contentType)
		e.DataEncoded = []byte(f.data)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
