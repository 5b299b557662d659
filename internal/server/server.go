package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/thedevsaddam/govalidator"

	"ideaforge/internal/app"
	"ideaforge/internal/app/model"
	"ideaforge/internal/render"
)

type Generator interface {
	Generate(ctx context.Context, request app.GenerateRequest) ([]model.Idea, error)
}

type Options struct {
	DefaultCount int
	MaxCount     int
}

type ideasRequest struct {
	Topic    string          `json:"topic"`
	Quantity govalidator.Int `json:"quantity"`
	APIKey   string          `json:"apiKey"`
}

type errorResponse struct {
	Error           string              `json:"error"`
	ValidationError map[string][]string `json:"validationError,omitempty"`
}

func NewRouter(generator Generator, opts Options) *mux.Router {
	if opts.DefaultCount <= 0 {
		opts.DefaultCount = 1
	}

	router := mux.NewRouter().StrictSlash(true)
	router.Use(loggingMiddleware)
	router.HandleFunc("/healthz", health).Methods("GET")
	router.HandleFunc("/api/ideas", generateIdeas(generator, opts)).Methods("POST")
	return router
}

func health(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, http.StatusOK, map[string]string{"status": "ok"})
}

func generateIdeas(generator Generator, opts Options) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		var body ideasRequest
		validator := govalidator.New(govalidator.Options{
			Request: r,
			Data:    &body,
			Rules: govalidator.MapData{
				"topic": []string{"required"},
			},
		})
		if e := validator.ValidateJSON(); len(e) != 0 {
			writeJSON(rw, http.StatusBadRequest, errorResponse{
				Error:           "invalid request",
				ValidationError: e,
			})
			return
		}

		quantity := opts.DefaultCount
		if body.Quantity.IsSet {
			quantity = int(body.Quantity.Value)
		}
		if quantity < 1 || (opts.MaxCount > 0 && quantity > opts.MaxCount) {
			writeJSON(rw, http.StatusBadRequest, errorResponse{
				Error: "invalid request",
				ValidationError: map[string][]string{
					"quantity": {fmt.Sprintf("The quantity field must be between 1 and %d", opts.MaxCount)},
				},
			})
			return
		}

		credential := body.APIKey
		if credential == "" {
			credential = bearerToken(r)
		}

		ideas, err := generator.Generate(r.Context(), app.GenerateRequest{
			Credential: credential,
			Topic:      body.Topic,
			Quantity:   quantity,
		})
		if err != nil {
			status := statusFor(err)
			slog.Warn("Idea generation failed", "status", status, "error", err)
			writeJSON(rw, status, errorResponse{Error: err.Error()})
			return
		}

		writeJSON(rw, http.StatusOK, render.Response{Ideas: ideas})
	}
}

// statusFor maps input errors to 400 and every failed upstream call to 502.
func statusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrMissingCredential),
		errors.Is(err, app.ErrMissingTopic),
		errors.Is(err, app.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(rw, r)
		slog.Info("Request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
