/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package hackload

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func stubDo(t *testing.T, h http.Handler, method, target string, body interface{}, header map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := jsoniter.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestStubPages(t *testing.T) {
	h := NewTargetStub(StubOptions{})
	for _, path := range []string{"/", "/registration", "/dashboard", "/admin"} {
		w := stubDo(t, h, http.MethodGet, path, nil, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		require.Contains(t, w.Body.String(), "<title>")
	}
	require.Equal(t, http.StatusNotFound, stubDo(t, h, http.MethodGet, "/missing", nil, nil).Code)
}

func TestStubRegistrationFlow(t *testing.T) {
	h := NewTargetStub(StubOptions{})
	reg := NewTeamRegistration(&scriptedRand{seq: []int{1, 2, 3, 4, 5, 0, 7}})
	lead := reg.Members[0]

	w := stubDo(t, h, http.MethodPost, "/api/registration", reg, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	teamCode := gjson.Get(w.Body.String(), "teamCode").String()
	require.Len(t, teamCode, 8)

	w = stubDo(t, h, http.MethodPost, "/api/registration", reg, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, gjson.Get(w.Body.String(), "error").String(), "already registered")

	q := url.Values{"email": {lead.Email}, "phone": {lead.Phone}}
	w = stubDo(t, h, http.MethodGet, "/api/team/lead?"+q.Encode(), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, teamCode, gjson.Get(w.Body.String(), "teamCode").String())
	require.Equal(t, reg.TeamName, gjson.Get(w.Body.String(), "teamName").String())

	q.Set("phone", "9999999999")
	w = stubDo(t, h, http.MethodGet, "/api/team/lead?"+q.Encode(), nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = stubDo(t, h, http.MethodGet, "/api/admin/registrations", nil, map[string]string{"Authorization": "Bearer " + DefaultAdminToken})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, int64(1), gjson.Get(w.Body.String(), "count").Int())
	require.Equal(t, reg.TeamName, gjson.Get(w.Body.String(), "registrations.0.registration.teamName").String())
}

func TestStubRegistrationInvalid(t *testing.T) {
	h := NewTargetStub(StubOptions{})
	reg := NewTeamRegistration(&scriptedRand{})
	reg.Members = reg.Members[:1]
	require.Equal(t, http.StatusBadRequest, stubDo(t, h, http.MethodPost, "/api/registration", reg, nil).Code)

	reg = NewTeamRegistration(&scriptedRand{})
	reg.Members[1].IsTeamLead = true
	require.Equal(t, http.StatusBadRequest, stubDo(t, h, http.MethodPost, "/api/registration", reg, nil).Code)

	reg = NewTeamRegistration(&scriptedRand{})
	reg.Members[0].Phone = "12345"
	require.Equal(t, http.StatusBadRequest, stubDo(t, h, http.MethodPost, "/api/registration", reg, nil).Code)

	require.Equal(t, http.StatusBadRequest, stubDo(t, h, http.MethodPost, "/api/registration", "not a team", nil).Code)
	require.Equal(t, http.StatusBadRequest, stubDo(t, h, http.MethodGet, "/api/team/lead?email=x", nil, nil).Code)
}

func TestStubContact(t *testing.T) {
	h := NewTargetStub(StubOptions{})
	msg := NewContactMessage(&scriptedRand{})
	require.Equal(t, http.StatusOK, stubDo(t, h, http.MethodPost, "/api/contact", msg, nil).Code)
	msg.Email = "not an email"
	require.Equal(t, http.StatusBadRequest, stubDo(t, h, http.MethodPost, "/api/contact", msg, nil).Code)
}

func TestStubAdminAuth(t *testing.T) {
	h := NewTargetStub(StubOptions{AdminToken: "secret"})
	require.Equal(t, http.StatusUnauthorized, stubDo(t, h, http.MethodGet, "/api/admin/registrations", nil, nil).Code)
	w := stubDo(t, h, http.MethodGet, "/api/admin/registrations", nil, map[string]string{"Authorization": "Bearer " + DefaultAdminToken})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	w = stubDo(t, h, http.MethodGet, "/api/admin/registrations", nil, map[string]string{"Authorization": "Bearer secret"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, int64(0), gjson.Get(w.Body.String(), "count").Int())
}
