// Copyright (c) 2026 Herdcount. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the router's parameter extraction and body decoding, so
every handler rejects malformed payloads the same way.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/herdcount/herdcount/internal/platform/apperr"
	"github.com/herdcount/herdcount/internal/platform/constants"
	"github.com/herdcount/herdcount/internal/platform/ctxutil"
	"github.com/herdcount/herdcount/internal/platform/sec"
	"github.com/herdcount/herdcount/internal/platform/validate"
)

/*
DecodeJSON strictly decodes the request body into target.

Unknown fields, trailing data and bodies larger than
constants.MaxRequestBodyBytes are rejected.

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target interface{}) error {
	return decode(writer, request, target, false)
}

/*
DecodeOptionalJSON behaves like [DecodeJSON] but leaves target untouched when
the body is empty, whether or not a Content-Length was sent.
*/
func DecodeOptionalJSON(writer http.ResponseWriter, request *http.Request, target interface{}) error {
	return decode(writer, request, target, true)
}

func decode(writer http.ResponseWriter, request *http.Request, target interface{}, allowEmpty bool) error {
	if request.Body == nil || request.Body == http.NoBody {
		if allowEmpty {
			return nil
		}
		return validate.ErrInvalidJSON
	}

	body := http.MaxBytesReader(writer, request.Body, constants.MaxRequestBodyBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return validate.ErrInvalidJSON
	}

	// A second value (or garbage) after the object is a caller bug.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return validate.ErrInvalidJSON
	}

	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
RequiredIdentity returns the authenticated caller.

Returns:
  - *sec.Identity: The authenticated caller
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredIdentity(request *http.Request) (*sec.Identity, error) {
	identity := ctxutil.GetIdentity(request.Context())
	if identity == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return identity, nil
}
