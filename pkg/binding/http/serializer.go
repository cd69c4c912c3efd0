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
	"context"
	"fmt"
	"io"

	"github.com/cloudevents/sdk-go/v2/binding"
	"github.com/cloudevents/sdk-go/v2/binding/spec"
	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/cloudevents/sdk-go/v2/types"
)

// Serializer translates the calls of a binary mode walk into Builder calls:
// one header per attribute or extension, the payload verbatim as the body.
//
// A Serializer is good for a single pass.
type Serializer[T any] struct {
	builder Builder[T]

	data    []byte
	hasData bool

	result T
}

var _ binding.BinaryWriter = (*Serializer[struct{}])(nil)

// NewSerializer returns a Serializer driving b.
func NewSerializer[T any](b Builder[T]) *Serializer[T] {
	return &Serializer[T]{builder: b}
}

func (s *Serializer[T]) Start(context.Context) error {
	return nil
}

func (s *Serializer[T]) SetAttribute(attribute spec.Attribute, value interface{}) error {
	str, err := types.Format(value)
	if err != nil {
		return fmt.Errorf("cannot encode attribute %s: %w", attribute.Name(), err)
	}
	if attribute.Kind() == spec.DataContentType {
		s.builder.Header(ContentType, str)
		return nil
	}
	s.builder.Header(HeaderName(attribute.Name()), str)
	return nil
}

func (s *Serializer[T]) SetExtension(name string, value interface{}) error {
	str, err := types.Format(value)
	if err != nil {
		return fmt.Errorf("cannot encode extension %s: %w", name, err)
	}
	s.builder.Header(HeaderName(name), str)
	return nil
}

// SetData buffers the payload. The body is sent even when r is empty.
func (s *Serializer[T]) SetData(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}
	s.data = data
	s.hasData = true
	return nil
}

// End finalizes the builder with the buffered payload, or without a body when
// SetData was never called.
func (s *Serializer[T]) End(context.Context) error {
	var err error
	if s.hasData {
		s.result, err = s.builder.Body(s.data)
	} else {
		s.result, err = s.builder.Finish()
	}
	return err
}

// Result returns the value produced by the terminal builder call.
func (s *Serializer[T]) Result() T {
	return s.result
}

// SerializeEvent walks e in binary mode through b and returns the built value.
func SerializeEvent[T any](ctx context.Context, e *event.Event, b Builder[T]) (T, error) {
	return SerializeBinary(ctx, EventDeserializer(e), b)
}

// SerializeMessage replays m in binary mode through b and returns the built value.
func SerializeMessage[T any](ctx context.Context, m binding.Message, b Builder[T]) (T, error) {
	return SerializeBinary(ctx, MessageDeserializer(m), b)
}

// SerializeBinary drives b with the walk of d and returns the built value.
func SerializeBinary[T any](ctx context.Context, d BinaryDeserializer, b Builder[T]) (T, error) {
	s := NewSerializer(b)
	if err := d.DeserializeBinary(ctx, s); err != nil {
		var zero T
		return zero, err
	}
	return s.Result(), nil
}
