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
	"fmt"
	"mime"
	nethttp "net/http"
	"strings"

	"github.com/cloudevents/sdk-go/v2/binding/format"
	"github.com/cloudevents/sdk-go/v2/binding/spec"
	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/cloudevents/sdk-go/v2/types"
)

// ToEvent decodes an event from inbound headers and a fully buffered body.
//
// Messages whose content type belongs to the application/cloudevents family
// are decoded in structured mode. Everything else must be a binary mode
// message: ce-specversion names a known spec version, every other ce- header
// becomes an attribute of that version or an extension, content-type becomes
// datacontenttype and a non-empty body becomes the payload.
func ToEvent(header nethttp.Header, body []byte) (*event.Event, error) {
	fields := foldHeader(header)

	if mediaType, ok := structuredMediaType(first(fields[ContentType])); ok {
		f := format.Lookup(mediaType)
		if f == nil {
			return nil, &ParseError{Header: ContentType, Err: fmt.Errorf("unknown event format %q", mediaType)}
		}
		e := event.New()
		if err := f.Unmarshal(body, &e); err != nil {
			return nil, &ParseError{Header: ContentType, Err: err}
		}
		if err := e.Validate(); err != nil {
			return nil, &ParseError{Err: err}
		}
		return &e, nil
	}

	sv := fields[SpecVersionHeader]
	if len(sv) == 0 {
		return nil, &ParseError{Err: ErrMissingSpecVersion}
	}
	if len(sv) > 1 {
		return nil, &ParseError{Header: SpecVersionHeader, Err: ErrDuplicateHeader}
	}
	version := spec.VS.Version(sv[0])
	if version == nil {
		return nil, &ParseError{Header: SpecVersionHeader, Err: fmt.Errorf("unknown spec version %q", sv[0])}
	}

	attributes := make(map[string]spec.Attribute, len(version.Attributes()))
	for _, attr := range version.Attributes() {
		attributes[attr.Name()] = attr
	}

	e := event.New(version.String())
	for key, values := range fields {
		name, ok := attributeName(key)
		if !ok || name == "specversion" {
			continue
		}
		if len(values) > 1 {
			return nil, &ParseError{Header: key, Err: ErrDuplicateHeader}
		}

		attr, ok := attributes[name]
		if !ok {
			e.SetExtension(name, decodeExtension(values[0]))
			continue
		}
		if err := setAttribute(&e, attr, values[0]); err != nil {
			return nil, &ParseError{Header: key, Err: err}
		}
	}

	// content-type wins over a ce-datacontenttype header.
	if ct := first(fields[ContentType]); ct != "" {
		e.SetDataContentType(ct)
	}

	if len(body) > 0 {
		e.DataEncoded = body
	}

	if err := e.Validate(); err != nil {
		return nil, &ParseError{Err: err}
	}
	return &e, nil
}

// foldHeader merges the values of keys that only differ by case, keyed by
// the lower case name. Headers built by hand are not always canonical.
func foldHeader(header nethttp.Header) map[string][]string {
	fields := make(map[string][]string, len(header))
	for key, values := range header {
		key = strings.ToLower(key)
		fields[key] = append(fields[key], values...)
	}
	return fields
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func setAttribute(e *event.Event, attr spec.Attribute, value string) error {
	switch attr.Kind() {
	case spec.ID:
		e.SetID(value)
	case spec.Source:
		e.SetSource(value)
	case spec.Type:
		e.SetType(value)
	case spec.Subject:
		e.SetSubject(value)
	case spec.DataSchema:
		e.SetDataSchema(value)
	case spec.DataContentType:
		e.SetDataContentType(value)
	case spec.Time:
		t, err := types.ToTime(value)
		if err != nil {
			return err
		}
		e.SetTime(t)
	default:
		return attr.Set(e.Context, value)
	}
	return nil
}

func structuredMediaType(contentType string) (string, bool) {
	if contentType == "" {
		return "", false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !format.IsFormat(mediaType) {
		return "", false
	}
	return mediaType, true
}
