package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"assembld/internal/loader"
	"assembld/internal/manager"
	"assembld/internal/sched"
	"assembld/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.Model
	ListAdapters() []types.Adapter
	Status() types.StatusResponse
	Build(ctx context.Context, req types.BuildRequest) (types.BuildResponse, error)
	Unload(instanceID string) error
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	// ListModels godoc
	// @Summary      List base models
	// @Produce      json
	// @Success      200 {object} types.ModelsResponse
	// @Router       /models [get]
	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.ModelsResponse{Models: svc.ListModels()})
	})

	// ListAdapters godoc
	// @Summary      List LoRA adapters
	// @Produce      json
	// @Success      200 {object} types.AdaptersResponse
	// @Router       /adapters [get]
	r.Get("/adapters", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.AdaptersResponse{Adapters: svc.ListAdapters()})
	})

	// Status godoc
	// @Summary      Daemon and instance status
	// @Produce      json
	// @Success      200 {object} types.StatusResponse
	// @Router       /status [get]
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	})

	// Build godoc
	// @Summary      Assemble a model instance with optional adapters
	// @Accept       json
	// @Produce      json
	// @Param        request body types.BuildRequest true "build request"
	// @Success      200 {object} types.BuildResponse
	// @Failure      400 {object} types.ErrorResponse
	// @Failure      404 {object} types.ErrorResponse
	// @Failure      409 {object} types.ErrorResponse
	// @Failure      503 {object} types.ErrorResponse
	// @Router       /build [post]
	r.Post("/build", func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.BuildRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		start := time.Now()
		lvl := requestLogLevel(r)
		if lvl >= LevelInfo {
			logBuildStart(r, req.Model)
		}
		// Join server base context with request context so shutdown cancels work too.
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		resp, err := svc.Build(joinedCtx, req)
		if err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := buildErrorStatus(err)
			if status == http.StatusConflict {
				IncrementBuildRejected("busy")
			}
			writeJSONError(w, status, err.Error())
			if lvl >= LevelInfo {
				logBuildEnd(r, status, time.Since(start), err)
			}
			return
		}
		writeJSON(w, resp)
		if lvl >= LevelInfo {
			logBuildEnd(r, http.StatusOK, time.Since(start), nil)
		}
	})

	// Unload godoc
	// @Summary      Unload a built instance
	// @Param        id path string true "instance id"
	// @Success      204 "unloaded"
	// @Failure      404 {object} types.ErrorResponse
	// @Router       /models/{id} [delete]
	r.Delete("/models/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := svc.Unload(id); err != nil {
			if manager.IsInstanceNotFound(err) {
				writeJSONError(w, http.StatusNotFound, err.Error())
				return
			}
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// buildErrorStatus maps well-known build errors to HTTP status codes.
func buildErrorStatus(err error) int {
	switch {
	case manager.IsModelNotFound(err), manager.IsAdapterNotFound(err):
		return http.StatusNotFound
	case manager.IsTooBusy(err):
		return http.StatusConflict
	case sched.IsConversion(err):
		return http.StatusBadRequest
	case loader.IsBackendUnavailable(err):
		return http.StatusServiceUnavailable
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}
