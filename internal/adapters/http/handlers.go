package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sp3dr4/wren/internal/application"
	"github.com/sp3dr4/wren/internal/domain"
	"github.com/sp3dr4/wren/internal/pkg/logging"
)

const readyTimeout = 5 * time.Second

type Handlers struct {
	service  *application.URLService
	validate *validator.Validate
}

func NewHandlers(service *application.URLService) *Handlers {
	validate := validator.New()
	// Report validation failures under the JSON field name the client sent.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handlers{
		service:  service,
		validate: validate,
	}
}

// ShortenRequest is the body of a shorten call.
type ShortenRequest struct {
	OriginalURL string `json:"originalUrl" validate:"required,url" example:"https://example.com/some/long/path"`
}

// ShortenResponse is returned when a URL has been shortened. ShortCode holds
// the fully-qualified short URL.
type ShortenResponse struct {
	ShortCode   string    `json:"shortCode" example:"http://localhost:8080/api/urls/1C"`
	Code        string    `json:"code" example:"1C"`
	OriginalURL string    `json:"originalUrl" example:"https://example.com/some/long/path"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ReadyResponse describes the state of the service dependencies.
type ReadyResponse struct {
	Status    string `json:"status" example:"ready"`
	Database  string `json:"database" example:"up"`
	Cache     string `json:"cache" example:"up"`
	Timestamp string `json:"timestamp" example:"2024-01-31T12:00:00Z"`
}

// HandleHealth handles the health check endpoint.
//
//	@Summary		Health check endpoint
//	@Description	Check if the service is running
//	@Tags			health
//	@Produce		plain
//	@Success		200	{string}	string	"OK"
//	@Router			/health [get]
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// HandleReady handles the readiness check endpoint.
//
//	@Summary		Readiness check endpoint
//	@Description	Check the record store and the cache. Only the record store decides readiness.
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	ReadyResponse	"Service is ready"
//	@Failure		503	{object}	ReadyResponse	"Service is not ready"
//	@Router			/ready [get]
func (h *Handlers) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	logger := logging.FromContext(ctx)
	readiness := h.service.Readiness(ctx)

	resp := ReadyResponse{
		Status:    "ready",
		Database:  "up",
		Cache:     "up",
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if readiness.Cache != nil {
		logger.Warn("Cache unavailable, serving from record store", "error", readiness.Cache)
		resp.Cache = "degraded"
	}

	status := http.StatusOK
	if !readiness.Ready() {
		logger.Error("Readiness check failed", "error", readiness.Store)
		resp.Status = "not ready"
		resp.Database = "down"
		status = http.StatusServiceUnavailable
	}

	respondWithJSON(w, status, resp)
}

// HandleShorten handles the URL shortening endpoint.
//
//	@Summary		Create a short URL
//	@Description	Allocate an id for the URL and return the short URL built from its base62 code
//	@Tags			urls
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ShortenRequest			true	"URL to shorten"
//	@Success		201		{object}	ShortenResponse			"Successfully created short URL"
//	@Failure		400		{object}	ValidationErrorResponse	"Invalid request or validation error"
//	@Failure		500		{object}	ErrorResponse			"Internal error"
//	@Failure		503		{object}	ErrorResponse			"Storage unavailable"
//	@Router			/api/urls [post]
func (h *Handlers) HandleShorten(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var req ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Failed to decode request", "error", err)
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			handleValidationError(w, validationErrors)
			return
		}
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Shorten(r.Context(), req.OriginalURL)
	if err != nil {
		h.respondWithDomainError(w, r, err, "Failed to create short URL")
		return
	}

	logger.Info("Created short URL", "short_code", result.Code, "original_url", result.OriginalURL)
	respondWithJSON(w, http.StatusCreated, ShortenResponse{
		ShortCode:   result.ShortURL,
		Code:        result.Code,
		OriginalURL: result.OriginalURL,
		CreatedAt:   result.CreatedAt,
	})
}

// HandleRedirect handles the redirect endpoint.
//
//	@Summary		Redirect to original URL
//	@Description	Resolve the short code and redirect to the original URL
//	@Tags			urls
//	@Param			code	path	string	true	"Short code"
//	@Success		302		"Redirect to original URL"
//	@Failure		404		{object}	ErrorResponse	"Short URL not found"
//	@Failure		503		{object}	ErrorResponse	"Storage unavailable"
//	@Router			/api/urls/{code} [get]
func (h *Handlers) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	originalURL, err := h.service.Resolve(r.Context(), code)
	if err != nil {
		h.respondWithDomainError(w, r, err, "Failed to resolve short URL")
		return
	}

	logging.FromContext(r.Context()).Info("Redirecting", "short_code", code, "original_url", originalURL)
	http.Redirect(w, r, originalURL, http.StatusFound)
}

func (h *Handlers) respondWithDomainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	logger := logging.FromContext(r.Context())

	switch {
	case errors.Is(err, domain.ErrInvalidURL):
		respondWithError(w, http.StatusBadRequest, "originalUrl must not be empty")
	case errors.Is(err, domain.ErrURLNotFound):
		respondWithError(w, http.StatusNotFound, "Short URL not found")
	case errors.Is(err, domain.ErrInternal):
		logger.Error(fallback, "error", err)
		respondWithError(w, http.StatusInternalServerError, fallback)
	case errors.Is(err, domain.ErrStorageUnavailable):
		logger.Error(fallback, "error", err)
		respondWithError(w, http.StatusServiceUnavailable, "Storage unavailable")
	default:
		logger.Error(fallback, "error", err)
		respondWithError(w, http.StatusInternalServerError, fallback)
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error     map[string]string `json:"error"`
	Timestamp string            `json:"timestamp" example:"2024-01-31T12:00:00Z"`
}

// ValidationErrorResponse represents a validation error response.
type ValidationErrorResponse struct {
	Details map[string]string `json:"details"`
	Error   string            `json:"error" example:"Validation failed"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{
		Error: map[string]string{
			"message": message,
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func handleValidationError(w http.ResponseWriter, validationErrors validator.ValidationErrors) {
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			errorMessages[field] = fmt.Sprintf("%s is required", field)
		case "url":
			errorMessages[field] = fmt.Sprintf("%s must be a valid URL", field)
		default:
			errorMessages[field] = fmt.Sprintf("%s is invalid", field)
		}
	}

	respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
		Error:   "Validation failed",
		Details: errorMessages,
	})
}
