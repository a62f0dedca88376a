package assessment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/assessgen/backend/internal/extract"
	"github.com/assessgen/backend/internal/models"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, log: log}
}

// Register mounts the assessment routes on r. limit wraps the generation
// route and protect wraps everything except /health; either may be nil.
func (h *Handler) Register(r *mux.Router, limit, protect mux.MiddlewareFunc) {
	r.HandleFunc("/health", h.Health).Methods("GET")

	api := r.PathPrefix("").Subrouter()
	if protect != nil {
		api.Use(protect)
	}

	var generate http.Handler = http.HandlerFunc(h.GenerateQuestions)
	if limit != nil {
		generate = limit(generate)
	}
	api.Handle("/generate-questions", generate).Methods("POST")
	api.HandleFunc("/score-assessment", h.ScoreAssessment).Methods("POST")
	api.HandleFunc("/modules/{moduleId}/questions", h.ListQuestions).Methods("GET")
	api.HandleFunc("/modules/{moduleId}/questions", h.SaveQuestions).Methods("POST")
	api.HandleFunc("/modules/{moduleId}/results", h.ListResults).Methods("GET")
}

func (h *Handler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.GenerateQuestions(r.Context(), req)
	if err != nil {
		h.writeError(w, "generate questions", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ScoreAssessment(w http.ResponseWriter, r *http.Request) {
	var req models.ScoreAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.ScoreAssessment(r.Context(), req)
	if err != nil {
		h.writeError(w, "score assessment", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) SaveQuestions(w http.ResponseWriter, r *http.Request) {
	var req models.SaveQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	resp, err := h.service.SaveQuestions(r.Context(), mux.Vars(r)["moduleId"], req.Questions)
	if err != nil {
		h.writeError(w, "save questions", err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ListQuestions(r.Context(), mux.Vars(r)["moduleId"])
	if err != nil {
		h.writeError(w, "list questions", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.ListResults(r.Context(), mux.Vars(r)["moduleId"])
	if err != nil {
		h.writeError(w, "list results", err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:      "healthy",
		ModelLoaded: h.service.ModelLoaded(),
	})
}

// writeError maps service errors onto status codes and messages.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var extractErr *extract.ExtractionError
	var persistErr *PersistenceError

	switch {
	case errors.Is(err, extract.ErrInsufficientText):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: extract.ErrInsufficientText.Error()})
	case errors.As(err, &extractErr):
		h.log.Warn("extraction failed", zap.String("op", op), zap.Error(err))
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Failed to extract text from PDF: " + extractErr.Err.Error()})
	case errors.Is(err, ErrInvalidRequest):
		msg := strings.TrimPrefix(err.Error(), ErrInvalidRequest.Error()+": ")
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: msg})
	case errors.Is(err, ErrNoQuestions):
		h.log.Warn("no questions generated", zap.String("op", op))
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate questions from PDF"})
	case errors.As(err, &persistErr):
		h.log.Error("persistence failure", zap.String("op", op), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error: " + persistErr.Op})
	default:
		h.log.Error("request failed", zap.String("op", op), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
