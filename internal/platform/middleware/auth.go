// Copyright (c) 2026 Herdcount. All rights reserved.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/herdcount/herdcount/internal/platform/apperr"
	"github.com/herdcount/herdcount/internal/platform/constants"
	"github.com/herdcount/herdcount/internal/platform/ctxutil"
	"github.com/herdcount/herdcount/internal/platform/respond"
	"github.com/herdcount/herdcount/internal/platform/sec"
)

// TokenVerifier resolves a raw session token to the caller it belongs to.
//
// Defined here so the middleware does not depend on the auth service.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*sec.Identity, error)
}

// Authenticate requires a valid 'Authorization: Bearer <token>' header.
//
// # Flow
//  1. Reject a missing or malformed header with 401.
//  2. Verify the token via [TokenVerifier]; reject failures with 401.
//  3. Inject the [*sec.Identity] into the request context.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			token, ok := BearerToken(request)
			if !ok {
				respond.Error(writer, request, apperr.Unauthorized("Authorization header missing or malformed"))
				return
			}

			identity, err := verifier.VerifyToken(request.Context(), token)
			if err != nil {
				// Store failures surface as 500; everything else is a bad token.
				if appError := apperr.As(err); appError != nil &&
					(appError.Code == apperr.CodeUnauthorized || appError.HTTPStatus >= 500) {
					respond.Error(writer, request, appError)
				} else {
					respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				}
				return
			}

			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from the Authorization header.
// The scheme is matched case-insensitively.
func BearerToken(request *http.Request) (string, bool) {
	header := strings.TrimSpace(request.Header.Get(constants.HeaderAuthorization))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, constants.AuthSchemeBearer) {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
