/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package hackload

import (
	"context"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Request is a transport independent http request relative to target url
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header map[string]string
	// Body is sent as application/json when not nil
	Body []byte
}

// Response keeps only what is needed for classification and metrics
type Response struct {
	StatusCode int
	// BytesIn response body bytes received
	BytesIn int64
	// BytesOut request body bytes sent
	BytesOut int64
}

// Requester sends requests to the target, implementations must be safe for concurrent use
type Requester interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// NewRequester creates requester by cfg.Client
func NewRequester(cfg *RunnerConfig) (Requester, error) {
	switch cfg.Client {
	case "", HTTPClientName:
		return &HTTPRequester{
			baseURL: cfg.TargetUrl,
			client:  NewLoggingHTTPClient(cfg.DumpTransport, cfg.RequestTimeoutSec),
		}, nil
	case FastHTTPClientName:
		return &FastHTTPRequester{
			baseURL: cfg.TargetUrl,
			client:  NewLoggingFastHTTPClient(cfg.DumpTransport),
		}, nil
	default:
		return nil, errUnknownClient
	}
}

// JSONRequest builds request with body marshaled by jsoniter
func JSONRequest(method, path string, body interface{}) (*Request, error) {
	b, err := jsoniter.Marshal(body)
	if err != nil {
		return nil, err
	}
	return &Request{Method: method, Path: path, Body: b}, nil
}

func (r *Request) URL(baseURL string) string {
	u := strings.TrimSuffix(baseURL, "/") + r.Path
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}
	return u
}
