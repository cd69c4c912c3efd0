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

// Package fixtures holds events and their binary mode wire form, shared by
// the binding tests.
package fixtures

import (
	nethttp "net/http"
	"time"

	"github.com/cloudevents/sdk-go/v2/event"
)

const (
	ID      = "0001"
	Type    = "test_event.test_application"
	Source  = "http://localhost/"
	Subject = "cloudevents-sdk"

	JSONContentType = "application/json"
)

// Time is the timestamp carried by the full fixtures.
func Time() time.Time {
	return time.Date(2020, time.March, 16, 11, 50, 0, 0, time.UTC)
}

// JSONData is the payload carried by the full fixtures.
func JSONData() []byte {
	return []byte(`{"hello":"world"}`)
}

// Minimal returns an event with only the required attributes.
func Minimal() event.Event {
	e := event.New(event.CloudEventsVersionV1)
	e.SetID(ID)
	e.SetType(Type)
	e.SetSource(Source)
	return e
}

// MinimalWithExtension returns Minimal plus the integer extension someint=10.
func MinimalWithExtension() event.Event {
	e := Minimal()
	e.SetExtension("someint", 10)
	return e
}

// MinimalWithExtensionHeaders is the binary mode form of MinimalWithExtension.
func MinimalWithExtensionHeaders() nethttp.Header {
	h := nethttp.Header{}
	h.Set("ce-specversion", "1.0")
	h.Set("ce-id", ID)
	h.Set("ce-type", Type)
	h.Set("ce-source", Source)
	h.Set("ce-someint", "10")
	return h
}

// Full returns an event with every optional attribute, one extension of each
// scalar kind and a JSON payload.
func Full() event.Event {
	e := Minimal()
	e.SetSubject(Subject)
	e.SetTime(Time())
	e.SetDataContentType(JSONContentType)
	e.SetExtension("stringex", "val")
	e.SetExtension("intex", 10)
	e.SetExtension("boolex", true)
	e.DataEncoded = JSONData()
	return e
}

// FullHeaders is the binary mode form of Full.
func FullHeaders() nethttp.Header {
	h := nethttp.Header{}
	h.Set("ce-specversion", "1.0")
	h.Set("ce-id", ID)
	h.Set("ce-type", Type)
	h.Set("ce-source", Source)
	h.Set("ce-subject", Subject)
	h.Set("ce-time", Time().Format(time.RFC3339))
	h.Set("ce-stringex", "val")
	h.Set("ce-intex", "10")
	h.Set("ce-boolex", "true")
	h.Set("content-type", JSONContentType)
	return h
}
