/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package hackload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/cookiejar"
	"net/http/httputil"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// NewLoggingHTTPClient creates new client with debug http
func NewLoggingHTTPClient(debug bool, transportTimeout int) *http.Client {
	var transport http.RoundTripper
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.MaxConnsPerHost = 65535
	base.MaxIdleConns = 65535
	base.MaxIdleConnsPerHost = 65535
	base.DisableCompression = true
	base.ResponseHeaderTimeout = time.Duration(transportTimeout) * time.Second
	if debug {
		transport = &DumpTransport{
			base,
		}
	} else {
		transport = base
	}
	cookieJar, _ := cookiejar.New(nil)
	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(transportTimeout) * time.Second,
		Jar:       cookieJar,
	}
}

const (
	RequestHeader      = "========== REQUEST ==========\n%s\n"
	RequestHeaderBody  = "========== REQUEST ==========\n%s\n%s\n"
	ResponseHeaderBody = "========== RESPONSE ==========\n%s\n%s\n"
	ResponseHeader     = "========== RESPONSE ==========\n%s\n"
	HTTPBodyDelimiter  = "\r\n\r\n"
)

// DumpTransport log http request/responses, pprint bodies
type DumpTransport struct {
	r http.RoundTripper
}

func (d *DumpTransport) RoundTrip(h *http.Request) (*http.Response, error) {
	var respString string
	var pprintBody string
	dump, _ := httputil.DumpRequestOut(h, true)
	if bodyIsJson(h.Header) {
		req, pprintBody := d.prettyPrintJsonBody(dump)
		fmt.Printf(RequestHeaderBody, req, pprintBody)
	} else {
		fmt.Printf(RequestHeader, dump)
	}
	resp, err := d.r.RoundTrip(h)
	if err != nil {
		return nil, err
	}
	// DumpResponse reads the body and replaces it with an in-memory copy
	dump, _ = httputil.DumpResponse(resp, true)
	if bodyIsJson(resp.Header) {
		respString, pprintBody = d.prettyPrintJsonBody(dump)
		fmt.Printf(ResponseHeaderBody, respString, pprintBody)
		return resp, nil
	}
	fmt.Printf(ResponseHeader, dump)
	return resp, nil
}

// prettyPrintJsonBody returns http format request and pretty printed json body, raw body if it's not a valid json
func (d *DumpTransport) prettyPrintJsonBody(b []byte) (string, string) {
	s := string(b)
	sp := strings.SplitN(s, HTTPBodyDelimiter, 2)
	if len(sp) != 2 {
		return sp[0], ""
	}
	body := sp[1]
	var objmap interface{}
	if err := jsoniter.Unmarshal([]byte(body), &objmap); err != nil {
		return sp[0], body
	}
	pprintBody, err := jsoniter.MarshalIndent(objmap, "", "    ")
	if err != nil {
		return sp[0], body
	}
	return sp[0], string(pprintBody)
}

func bodyIsJson(h http.Header) bool {
	return strings.Contains(h.Get("content-type"), "application/json")
}

// HTTPRequester sends requests with net/http client
type HTTPRequester struct {
	baseURL string
	client  *http.Client
}

func (m *HTTPRequester) Do(ctx context.Context, r *Request) (*Response, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL(m.baseURL), body)
	if err != nil {
		return nil, err
	}
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.Header {
		req.Header.Set(k, v)
	}
	res, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	n, err := io.Copy(ioutil.Discard, res.Body)
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: res.StatusCode,
		BytesIn:    n,
		BytesOut:   int64(len(r.Body)),
	}, nil
}
