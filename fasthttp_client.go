/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package hackload

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
)

const maxRedirects = 5

type FastHTTPClient struct {
	dump bool
	fasthttp.Client
}

// NewLoggingFastHTTPClient creates new client with debug http
func NewLoggingFastHTTPClient(debug bool) *FastHTTPClient {
	return &FastHTTPClient{
		debug,
		fasthttp.Client{
			MaxConnsPerHost:           65535,
			MaxIdleConnDuration:       90 * time.Second,
			MaxIdemponentCallAttempts: 1,
		},
	}
}

func (m *FastHTTPClient) Do(req *fasthttp.Request, resp *fasthttp.Response) error {
	if m.dump {
		log.Printf(RequestHeader, req.String())
	}
	if err := m.Client.DoRedirects(req, resp, maxRedirects); err != nil {
		return err
	}
	if m.dump {
		log.Printf(ResponseHeader, resp.String())
	}
	return nil
}

// DoDeadline same as Do but without redirects, request is aborted at deadline
func (m *FastHTTPClient) DoDeadline(req *fasthttp.Request, resp *fasthttp.Response, deadline time.Time) error {
	if m.dump {
		log.Printf(RequestHeader, req.String())
	}
	if err := m.Client.DoDeadline(req, resp, deadline); err != nil {
		return err
	}
	if m.dump {
		log.Printf(ResponseHeader, resp.String())
	}
	return nil
}

// FastHTTPRequester sends requests with fasthttp client, ctx deadline becomes request deadline
type FastHTTPRequester struct {
	baseURL string
	client  *FastHTTPClient
}

func (m *FastHTTPRequester) Do(ctx context.Context, r *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.URL(m.baseURL))
	req.Header.SetMethod(r.Method)
	if r.Body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(r.Body)
	}
	for k, v := range r.Header {
		req.Header.Set(k, v)
	}
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = m.client.DoDeadline(req, resp, deadline)
	} else {
		err = m.client.Do(req, resp)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err == fasthttp.ErrTimeout {
			return nil, context.DeadlineExceeded
		}
		return nil, err
	}
	return &Response{
		StatusCode: resp.StatusCode(),
		BytesIn:    int64(len(resp.Body())),
		BytesOut:   int64(len(r.Body)),
	}, nil
}
