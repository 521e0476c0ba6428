package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gradepilot/evaluator-api/internal/handlers"
	"github.com/gradepilot/evaluator-api/internal/middleware"
	"github.com/gradepilot/evaluator-api/internal/registry"
	"github.com/gradepilot/evaluator-api/internal/services"
	"github.com/gradepilot/evaluator-api/internal/utils"
)

func NewRouter(
	pipeline services.EvaluationPipeline,
	providerStore registry.Store,
	reg *registry.Registry,
	logger *utils.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Recovery(logger))

	evalHandler := handlers.NewEvaluationHandler(pipeline, logger)
	providerHandler := handlers.NewProviderHandler(providerStore, reg, logger)

	// Routes
	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	// Submission evaluation
	api.HandleFunc("/submissions/{id}/evaluate", evalHandler.EvaluateSubmission).Methods(http.MethodPost)

	// Provider administration
	api.HandleFunc("/providers", providerHandler.ListProviders).Methods(http.MethodGet)
	api.HandleFunc("/providers", providerHandler.CreateProvider).Methods(http.MethodPost)
	api.HandleFunc("/providers/{name}", providerHandler.UpdateProvider).Methods(http.MethodPut)
	api.HandleFunc("/providers/{name}/active", providerHandler.SetProviderActive).Methods(http.MethodPatch)

	return r
}
