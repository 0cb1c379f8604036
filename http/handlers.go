package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"moodfuel/dataset"
)

// WelcomeMessage is returned by GET /.
const WelcomeMessage = "welcome to MoodFuel API - Predict your perfect coffee strength"

// Predictor 由inference.Service实现
type Predictor interface {
	Predict(ctx context.Context, features dataset.Features) (float64, error)
}

// PredictResponse 预测响应
type PredictResponse struct {
	RecommendedStrength float64 `json:"recommended_strength"`
}

type handlers struct {
	predictor Predictor
	logger    *zap.Logger
}

// RegisterHandlers 注册所有路由
func RegisterHandlers(mux *http.ServeMux, predictor Predictor, logger *zap.Logger) {
	h := &handlers{predictor: predictor, logger: logger}

	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, instrument(pattern, fn))
	}
	route("GET /{$}", h.handleRoot)
	route("GET /health", h.handleHealth)
	route("POST /predict", h.handlePredict)
	mux.Handle("GET /metrics", promhttp.Handler())
}

func (h *handlers) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": WelcomeMessage})
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			PredictionsTotal.WithLabelValues("invalid").Inc()
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		PredictionsTotal.WithLabelValues("invalid").Inc()
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	req, err := ParsePredictRequest(body)
	if err != nil {
		PredictionsTotal.WithLabelValues("invalid").Inc()
		var verr *ValidationError
		if errors.As(err, &verr) {
			respondJSON(w, http.StatusUnprocessableEntity, verr)
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	strength, err := h.predictor.Predict(r.Context(), req.Features())
	if err != nil {
		PredictionsTotal.WithLabelValues("error").Inc()
		h.logger.Error("prediction failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Any("features", req),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "prediction failed")
		return
	}

	PredictionsTotal.WithLabelValues("ok").Inc()
	RecommendedStrength.Observe(strength)
	respondJSON(w, http.StatusOK, PredictResponse{RecommendedStrength: strength})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
