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

// Package http implements the binary content mode of the CloudEvents HTTP
// protocol binding: every attribute and extension travels as its own
// "ce-" prefixed header and the payload is carried verbatim in the body.
//
// The package does not depend on a particular HTTP framework. Integrations
// supply a Builder producing their own request or response type, and the
// Serializer drives it.
package http

// Builder accumulates wire level headers and finally produces a framework
// specific value of type T from a body and the accumulated headers.
//
// Exactly one of Body or Finish is invoked per serialization pass. A Builder
// must not be reused after the terminal call.
type Builder[T any] interface {
	// Header appends one header to the value under construction.
	// Invalid names or values are reported by the terminal call.
	Header(key, value string)

	// Body finalizes the value with the given payload. The payload may be
	// empty but it is present.
	Body(body []byte) (T, error)

	// Finish finalizes the value without any payload.
	Finish() (T, error)
}
