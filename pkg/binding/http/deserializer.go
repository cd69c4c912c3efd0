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

package http

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/cloudevents/sdk-go/v2/binding"
	"github.com/cloudevents/sdk-go/v2/binding/spec"
	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/cloudevents/sdk-go/v2/types"
)

// BinaryDeserializer is implemented by values that can be walked in binary
// mode. Implementations call Start, then SetAttribute/SetExtension for every
// field, SetData when a payload is present, and finally End.
type BinaryDeserializer interface {
	DeserializeBinary(ctx context.Context, w binding.BinaryWriter) error
}

// BinaryDeserializerFunc adapts a function to BinaryDeserializer.
type BinaryDeserializerFunc func(ctx context.Context, w binding.BinaryWriter) error

func (f BinaryDeserializerFunc) DeserializeBinary(ctx context.Context, w binding.BinaryWriter) error {
	return f(ctx, w)
}

type eventDeserializer struct {
	event *event.Event
}

// EventDeserializer returns the binary mode walk of e.
//
// The order is fixed: specversion, the remaining attributes of the event's
// spec version, extensions sorted by name, datacontenttype, then the payload.
// A nil DataEncoded means no payload; an empty non-nil one is still sent.
func EventDeserializer(e *event.Event) BinaryDeserializer {
	return eventDeserializer{event: e}
}

func (d eventDeserializer) DeserializeBinary(ctx context.Context, w binding.BinaryWriter) error {
	e := d.event
	if e == nil || e.Context == nil {
		return fmt.Errorf("cannot serialize an event without context")
	}
	version := spec.VS.Version(e.SpecVersion())
	if version == nil {
		return fmt.Errorf("invalid spec version %q", e.SpecVersion())
	}

	if err := w.Start(ctx); err != nil {
		return err
	}

	specVersion := version.AttributeFromKind(spec.SpecVersion)
	if err := w.SetAttribute(specVersion, version.String()); err != nil {
		return err
	}

	for _, attr := range version.Attributes() {
		if attr.Kind() == spec.SpecVersion || attr.Kind() == spec.DataContentType {
			continue
		}
		if v := attr.Get(e.Context); !types.IsZero(v) {
			if err := w.SetAttribute(attr, v); err != nil {
				return err
			}
		}
	}

	extensions := e.Extensions()
	names := make([]string, 0, len(extensions))
	for name := range extensions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := w.SetExtension(name, extensions[name]); err != nil {
			return err
		}
	}

	if attr := version.AttributeFromKind(spec.DataContentType); attr != nil {
		if v := attr.Get(e.Context); !types.IsZero(v) {
			if err := w.SetAttribute(attr, v); err != nil {
				return err
			}
		}
	}

	if e.DataEncoded != nil {
		if err := w.SetData(bytes.NewReader(e.DataEncoded)); err != nil {
			return err
		}
	}
	return w.End(ctx)
}

type messageDeserializer struct {
	message binding.Message
}

// MessageDeserializer returns the binary mode walk of an sdk-go message.
// Binary messages are replayed as they are; structured and event messages are
// converted to an event first.
func MessageDeserializer(m binding.Message) BinaryDeserializer {
	return messageDeserializer{message: m}
}

func (d messageDeserializer) DeserializeBinary(ctx context.Context, w binding.BinaryWriter) error {
	if d.message.ReadEncoding() == binding.EncodingBinary {
		if err := w.Start(ctx); err != nil {
			return err
		}
		if err := d.message.ReadBinary(ctx, w); err != nil {
			return err
		}
		return w.End(ctx)
	}
	e, err := binding.ToEvent(ctx, d.message)
	if err != nil {
		return err
	}
	return EventDeserializer(e).DeserializeBinary(ctx, w)
}
