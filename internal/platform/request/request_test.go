// Copyright (c) 2026 Herdcount. All rights reserved.

package requestutil_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/herdcount/herdcount/internal/platform/ctxutil"
	requestutil "github.com/herdcount/herdcount/internal/platform/request"
	"github.com/herdcount/herdcount/internal/platform/sec"
	"github.com/herdcount/herdcount/internal/platform/validate"
)

type payload struct {
	Name  string `json:"name"`
	Count *int64 `json:"count"`
}

/*
TestDecodeJSON covers strict decoding of request bodies.
*/
func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"gate","count":3}`, false},
		{"partial", `{"name":"gate"}`, false},
		{"unknown_field", `{"name":"gate","colour":"red"}`, true},
		{"trailing_object", `{"name":"gate"}{"name":"x"}`, true},
		{"not_json", `name=gate`, true},
		{"empty", ``, true},
		{"wrong_type", `{"count":"three"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var target payload

			err := requestutil.DecodeJSON(httptest.NewRecorder(), request, &target)

			if tt.wantErr {
				assert.ErrorIs(t, err, validate.ErrInvalidJSON)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "gate", target.Name)
			}
		})
	}
}

/*
TestRequiredIdentity rejects anonymous requests.
*/
func TestRequiredIdentity(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := requestutil.RequiredIdentity(request)
	assert.Error(t, err)

	request = request.WithContext(ctxutil.WithIdentity(request.Context(), &sec.Identity{Username: "rancher"}))
	identity, err := requestutil.RequiredIdentity(request)
	assert.NoError(t, err)
	assert.Equal(t, "rancher", identity.Username)
}

/*
TestDecodeOptionalJSON accepts empty bodies, including chunked ones.
*/
func TestDecodeOptionalJSON(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		chunked  bool
		wantErr  bool
		wantName string
	}{
		{"empty", ``, false, false, ""},
		{"empty_chunked", ``, true, false, ""},
		{"whitespace_only", "  \n", false, false, ""},
		{"valid_chunked", `{"name":"gate"}`, true, false, "gate"},
		{"unknown_field", `{"colour":"red"}`, false, true, ""},
		{"truncated", `{"name":`, true, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.chunked {
				request.ContentLength = -1
			}
			var target payload

			err := requestutil.DecodeOptionalJSON(httptest.NewRecorder(), request, &target)

			if tt.wantErr {
				assert.ErrorIs(t, err, validate.ErrInvalidJSON)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantName, target.Name)
			}
		})
	}
}
