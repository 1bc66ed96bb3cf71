// Copyright (c) 2026 Herdcount. All rights reserved.

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herdcount/herdcount/internal/auth"
	"github.com/herdcount/herdcount/internal/platform/middleware"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	f := newFixture(t, auth.ThrottleConfig{})
	handler := auth.NewHandler(f.service)

	router := chi.NewRouter()
	handler.PublicRoutes(router)
	router.Group(func(protected chi.Router) {
		protected.Use(middleware.Authenticate(f.service))
		handler.ProtectedRoutes(protected)
	})
	return router
}

func do(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

/*
TestHandler_RegisterLoginVerify walks the full operator flow.
*/
func TestHandler_RegisterLoginVerify(t *testing.T) {
	router := newRouter(t)

	recorder := do(router, http.MethodPost, "/register", `{"username":"rancher","password":"s3cret"}`, "")
	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.JSONEq(t, `{"message":"User registered successfully"}`, recorder.Body.String())

	recorder = do(router, http.MethodPost, "/register", `{"username":"rancher","password":"again"}`, "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = do(router, http.MethodPost, "/login", `{"username":"rancher","password":"s3cret"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var login struct {
		Message   string `json:"message"`
		Token     string `json:"token"`
		Username  string `json:"username"`
		ExpiresAt string `json:"expires_at"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &login))
	assert.Equal(t, "rancher", login.Username)
	assert.Equal(t, "2026-05-03T06:00:00Z", login.ExpiresAt)
	require.NotEmpty(t, login.Token)

	recorder = do(router, http.MethodGet, "/verify", "", login.Token)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"message":"Token is valid","username":"rancher"}`, recorder.Body.String())
}

/*
TestHandler_Errors checks status codes for bad requests.
*/
func TestHandler_Errors(t *testing.T) {
	router := newRouter(t)
	require.Equal(t, http.StatusCreated, do(router, http.MethodPost, "/register", `{"username":"rancher","password":"s3cret"}`, "").Code)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		token      string
		wantStatus int
	}{
		{"register_missing_password", http.MethodPost, "/register", `{"username":"vet"}`, "", http.StatusBadRequest},
		{"register_unknown_field", http.MethodPost, "/register", `{"username":"vet","password":"x","role":"admin"}`, "", http.StatusBadRequest},
		{"register_not_json", http.MethodPost, "/register", `username=vet`, "", http.StatusBadRequest},
		{"login_wrong_password", http.MethodPost, "/login", `{"username":"rancher","password":"nope"}`, "", http.StatusUnauthorized},
		{"login_unknown_user", http.MethodPost, "/login", `{"username":"ghost","password":"nope"}`, "", http.StatusUnauthorized},
		{"login_missing_fields", http.MethodPost, "/login", `{}`, "", http.StatusBadRequest},
		{"verify_without_token", http.MethodGet, "/verify", "", "", http.StatusUnauthorized},
		{"verify_garbage_token", http.MethodGet, "/verify", "", "garbage", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := do(router, tt.method, tt.path, tt.body, tt.token)
			assert.Equal(t, tt.wantStatus, recorder.Code)

			var envelope map[string]any
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
			assert.NotEmpty(t, envelope["message"])
		})
	}
}
