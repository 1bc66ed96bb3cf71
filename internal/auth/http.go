// Copyright (c) 2026 Herdcount. All rights reserved.

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/herdcount/herdcount/internal/platform/request"
	"github.com/herdcount/herdcount/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// PublicRoutes registers endpoints reachable without a session.
//
// # Endpoints
//   - POST /register : Creates a new operator account.
//   - POST /login    : Authenticates and returns a session token.
func (handler *Handler) PublicRoutes(router chi.Router) {
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
}

// ProtectedRoutes registers endpoints that require a verified session.
//
// # Endpoints
//   - GET /verify : Confirms the presented token.
func (handler *Handler) ProtectedRoutes(router chi.Router) {
	router.Get("/verify", handler.verify)
}

// # Request Payloads

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// # Response Payloads

type loginResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

type verifyResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

/*
register handles the creation of a new operator account.

POST /api/register

Response:
  - 201: {message}
  - 400: Invalid JSON, missing fields or username already taken
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.Register(request.Context(), RegisterInput{
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusCreated, "User registered successfully")
}

/*
login authenticates an operator.

POST /api/login

Response:
  - 200: loginResponse
  - 400: Invalid JSON or missing fields
  - 401: Invalid credentials
  - 429: Too many failed attempts
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, loginResponse{
		Message:   "Login successful",
		Token:     session.Token,
		Username:  session.Username,
		ExpiresAt: session.ExpiresAt.UTC(),
	})
}

/*
verify confirms the bearer token attached to the request.

GET /api/verify

Response:
  - 200: verifyResponse
  - 401: Missing, invalid or expired token
*/
func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, verifyResponse{
		Message:  "Token is valid",
		Username: identity.Username,
	})
}
