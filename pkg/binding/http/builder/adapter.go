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

// Package builder renders events as framework neutral responses.
package builder

import (
	"context"

	"github.com/cloudevents/sdk-go/v2/event"

	bindinghttp "knative.dev/cebinding/pkg/binding/http"
)

type adapter struct {
	builder ResponseBuilder
}

var _ bindinghttp.Builder[*Response] = (*adapter)(nil)

func (a *adapter) Header(key, value string) {
	a.builder = a.builder.Header(key, value)
}

func (a *adapter) Body(body []byte) (*Response, error) {
	resp, err := a.builder.Body(body)
	if err != nil {
		return nil, bindinghttp.NewBuildError(err)
	}
	return resp, nil
}

func (a *adapter) Finish() (*Response, error) {
	return a.Body(nil)
}

// ToResponse renders e in binary mode as a 200 OK Response.
func ToResponse(ctx context.Context, e *event.Event) (*Response, error) {
	return bindinghttp.SerializeEvent[*Response](ctx, e, &adapter{builder: NewResponseBuilder()})
}
