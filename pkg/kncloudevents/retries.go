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
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rickb777/date/period"
)

// BackoffPolicy selects how the delay between two attempts grows.
type BackoffPolicy string

const (
	BackoffPolicyLinear      BackoffPolicy = "linear"
	BackoffPolicyExponential BackoffPolicy = "exponential"
)

// CheckRetry decides after each attempt whether to try again. Returning an
// error stops retrying and returns that error instead of the request's.
type CheckRetry func(ctx context.Context, resp *http.Response, err error) (bool, error)

// Backoff returns how long to wait before attempt attemptNum.
type Backoff func(attemptNum int, resp *http.Response) time.Duration

type RetryConfig struct {
	// Maximum number of retries
	RetryMax int

	CheckRetry CheckRetry
	Backoff    Backoff

	// RequestTimeout bounds every single attempt. Zero means no timeout.
	RequestTimeout time.Duration

	// RetryAfterMaxDuration caps the wait requested by a Retry-After header
	// on 429 and 503 responses. Nil ignores the header.
	RetryAfterMaxDuration *time.Duration
}

func NoRetries() RetryConfig {
	return RetryConfig{
		CheckRetry: func(context.Context, *http.Response, error) (bool, error) {
			return false, nil
		},
		Backoff: func(int, *http.Response) time.Duration {
			return 0
		},
	}
}

// DeliveryOptions is the user facing shape of a RetryConfig. Durations are
// ISO-8601 periods such as "PT0.5S".
type DeliveryOptions struct {
	Retry         int
	BackoffPolicy BackoffPolicy
	BackoffDelay  string
	Timeout       string
	RetryAfterMax string
}

// NewRetryConfig parses opts into a RetryConfig retrying with SelectiveRetry.
func NewRetryConfig(opts DeliveryOptions) (RetryConfig, error) {
	config := NoRetries()
	if opts.Retry < 0 {
		return config, fmt.Errorf("invalid retry count %d", opts.Retry)
	}
	switch opts.BackoffPolicy {
	case BackoffPolicyExponential, BackoffPolicyLinear, "":
	default:
		return config, fmt.Errorf("unknown backoff policy %q", opts.BackoffPolicy)
	}
	config.CheckRetry = SelectiveRetry
	config.RetryMax = opts.Retry

	if opts.BackoffDelay != "" {
		delay, err := parseDuration(opts.BackoffDelay)
		if err != nil {
			return config, fmt.Errorf("failed to parse backoff delay: %w", err)
		}
		if opts.BackoffPolicy == BackoffPolicyExponential {
			config.Backoff = func(attemptNum int, _ *http.Response) time.Duration {
				return delay * time.Duration(math.Exp2(float64(attemptNum)))
			}
		} else {
			config.Backoff = func(attemptNum int, _ *http.Response) time.Duration {
				return delay * time.Duration(attemptNum)
			}
		}
	}

	if opts.Timeout != "" {
		timeout, err := parseDuration(opts.Timeout)
		if err != nil {
			return config, fmt.Errorf("failed to parse timeout: %w", err)
		}
		config.RequestTimeout = timeout
	}

	if opts.RetryAfterMax != "" {
		maxWait, err := parseDuration(opts.RetryAfterMax)
		if err != nil {
			return config, fmt.Errorf("failed to parse retry-after max: %w", err)
		}
		config.RetryAfterMaxDuration = &maxWait
	}
	return config, nil
}

func parseDuration(iso string) (time.Duration, error) {
	p, err := period.Parse(iso)
	if err != nil {
		return 0, err
	}
	d, _ := p.Duration()
	return d, nil
}

// SelectiveRetry retries transport errors, 5xx and the 4xx codes that are
// known to be transient (404, 408, 409, 429).
func SelectiveRetry(_ context.Context, resp *http.Response, err error) (bool, error) {
	if resp == nil || err != nil {
		return true, nil
	}
	switch code := resp.StatusCode; {
	case code >= 500, code == -1:
		return true, nil
	case code == http.StatusNotFound, code == http.StatusRequestTimeout,
		code == http.StatusConflict, code == http.StatusTooManyRequests:
		return true, nil
	}
	return false, nil
}

// backoffFn adapts config.Backoff to retryablehttp, honoring Retry-After on
// 429 and 503 responses when RetryAfterMaxDuration is set.
func backoffFn(config *RetryConfig) retryablehttp.Backoff {
	return func(_, _ time.Duration, attemptNum int, resp *http.Response) time.Duration {
		backoff := config.Backoff(attemptNum, resp)
		if config.RetryAfterMaxDuration == nil || resp == nil {
			return backoff
		}
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
			return backoff
		}
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		if retryAfter > *config.RetryAfterMaxDuration {
			retryAfter = *config.RetryAfterMaxDuration
		}
		if retryAfter > backoff {
			return retryAfter
		}
		return backoff
	}
}

// parseRetryAfter reads delay-seconds or an HTTP-date; anything else is 0.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return time.Until(t)
	}
	return 0
}
