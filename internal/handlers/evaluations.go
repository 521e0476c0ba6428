package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gradepilot/evaluator-api/internal/models"
	"github.com/gradepilot/evaluator-api/internal/services"
	"github.com/gradepilot/evaluator-api/internal/utils"
)

// Inline documents travel base64-encoded inside the JSON body, so the cap
// must clear the resolver's 20MB per-document limit plus base64 overhead.
const maxRequestBody = 32 << 20

type EvaluationHandler struct {
	pipeline services.EvaluationPipeline
	logger   *utils.Logger
}

func NewEvaluationHandler(pipeline services.EvaluationPipeline, logger *utils.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

func (h *EvaluationHandler) EvaluateSubmission(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	if id == "" {
		h.respondError(w, utils.NewBadRequestError("Submission ID is required"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req models.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, utils.NewBadRequestError("Invalid request body"))
		return
	}

	resp, err := h.pipeline.EvaluateSubmission(r.Context(), id, &req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *EvaluationHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (h *EvaluationHandler) respondError(w http.ResponseWriter, err error) {
	var status int
	var message string

	switch e := err.(type) {
	case *utils.AppError:
		status = e.StatusCode
		message = e.Message
	default:
		status = http.StatusInternalServerError
		message = "Internal server error"
	}

	h.logger.Error("Request error", "status", status, "error", message)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
