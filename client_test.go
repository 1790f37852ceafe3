/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package hackload

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type capturedRequest struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   []byte
}

// captureServer records the last request and answers with status
func captureServer(t *testing.T, status int, sleep time.Duration) (*httptest.Server, chan capturedRequest) {
	captured := make(chan capturedRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := ioutil.ReadAll(r.Body)
		select {
		case captured <- capturedRequest{r.Method, r.URL.Path, r.URL.Query(), r.Header, body}:
		default:
		}
		time.Sleep(sleep)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"message":"pong"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func requesters(target string) map[string]Requester {
	res := make(map[string]Requester)
	for _, client := range []string{HTTPClientName, FastHTTPClientName} {
		cfg := &RunnerConfig{TargetUrl: target, Client: client, RequestTimeoutSec: 5}
		r, err := NewRequester(cfg)
		if err != nil {
			panic(err)
		}
		res[client] = r
	}
	return res
}

func TestClientJSONPost(t *testing.T) {
	srv, captured := captureServer(t, http.StatusCreated, 0)
	for name, c := range requesters(srv.URL) {
		t.Run(name, func(t *testing.T) {
			req, err := JSONRequest(http.MethodPost, "/api/contact", ContactMessage{Name: "User_1000", Email: "contact1000@example.com", Message: ContactMessageText})
			require.NoError(t, err)
			res, err := c.Do(context.Background(), req)
			require.NoError(t, err)
			require.Equal(t, http.StatusCreated, res.StatusCode)
			require.Equal(t, int64(len(`{"message":"pong"}`)), res.BytesIn)
			require.Equal(t, int64(len(req.Body)), res.BytesOut)

			got := <-captured
			require.Equal(t, http.MethodPost, got.method)
			require.Equal(t, "/api/contact", got.path)
			require.Contains(t, got.header.Get("Content-Type"), "application/json")
			require.Equal(t, "User_1000", gjson.GetBytes(got.body, "name").String())
			require.Equal(t, ContactMessageText, gjson.GetBytes(got.body, "message").String())
		})
	}
}

func TestClientQueryAndHeaders(t *testing.T) {
	srv, captured := captureServer(t, http.StatusOK, 0)
	for name, c := range requesters(srv.URL + "/") {
		t.Run(name, func(t *testing.T) {
			res, err := c.Do(context.Background(), &Request{
				Method: http.MethodGet,
				Path:   "/api/team/lead",
				Query:  url.Values{"email": {"test1234@example.com"}, "phone": {"0123456789"}},
				Header: map[string]string{"Authorization": "Bearer hacman@1"},
			})
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, res.StatusCode)

			got := <-captured
			require.Equal(t, http.MethodGet, got.method)
			require.Equal(t, "/api/team/lead", got.path)
			require.Equal(t, "test1234@example.com", got.query.Get("email"))
			require.Equal(t, "0123456789", got.query.Get("phone"))
			require.Equal(t, "Bearer hacman@1", got.header.Get("Authorization"))
			require.Empty(t, got.body)
		})
	}
}

func TestClientTimeout(t *testing.T) {
	srv, _ := captureServer(t, http.StatusOK, 500*time.Millisecond)
	for name, c := range requesters(srv.URL) {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			_, err := c.Do(ctx, &Request{Method: http.MethodGet, Path: "/"})
			require.Error(t, err)
		})
	}
}

func TestClientUnknown(t *testing.T) {
	_, err := NewRequester(&RunnerConfig{Client: "grpc"})
	require.ErrorIs(t, err, errUnknownClient)
}

func TestClientDumpTransportPrettyPrint(t *testing.T) {
	d := &DumpTransport{}
	head, body := d.prettyPrintJsonBody([]byte("POST / HTTP/1.1\r\nHost: x\r\n\r\n{\"a\":1}"))
	require.Equal(t, "POST / HTTP/1.1\r\nHost: x", head)
	require.JSONEq(t, `{"a":1}`, body)

	_, raw := d.prettyPrintJsonBody([]byte("GET / HTTP/1.1\r\n\r\nnot json"))
	require.Equal(t, "not json", raw)
}

func TestClientOwnTransport(t *testing.T) {
	def := http.DefaultTransport.(*http.Transport)
	before := def.MaxConnsPerHost
	c := NewLoggingHTTPClient(false, 7)
	require.Equal(t, before, def.MaxConnsPerHost)
	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	require.NotSame(t, def, tr)
	require.Equal(t, 65535, tr.MaxConnsPerHost)
	require.Equal(t, 7*time.Second, tr.ResponseHeaderTimeout)

	dump := NewLoggingHTTPClient(true, 7)
	d, ok := dump.Transport.(*DumpTransport)
	require.True(t, ok)
	require.NotSame(t, def, d.r)
}
