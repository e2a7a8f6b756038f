package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"goldpredict/app"
	"goldpredict/apperr"
	"goldpredict/market"
	"goldpredict/monitoring"
)

const maxBodyBytes = 1 << 16

// Handlers 持有启动结果和渲染器
type Handlers struct {
	startup  app.Init
	renderer app.Renderer
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

type errorResponse struct {
	Error string      `json:"error"`
	Kind  apperr.Kind `json:"kind,omitempty"`
}

type predictResponse struct {
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

type historyResponse struct {
	Columns []string            `json:"columns"`
	Rows    [][]string          `json:"rows"`
	Records []map[string]string `json:"records"`
}

func NewHandlers(startup app.Init, renderer app.Renderer, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{startup: startup, renderer: renderer, metrics: metrics, logger: logger.Named("http")}
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("POST /predict", h.handlePredictForm)
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/history", h.handleHistory)
	mux.HandleFunc("POST /api/predict", h.handlePredictAPI)
	mux.HandleFunc("GET /api/ws/predict", h.handlePredictWS)
	mux.Handle("GET /metrics", h.metrics.Handler())
}

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	if h.startup.Halted() {
		h.renderHalted(w, r)
		return
	}
	h.render(w, r, http.StatusOK, h.startup.App.View(app.PriceInput{}, nil, nil))
}

func (h *Handlers) handlePredictForm(w http.ResponseWriter, r *http.Request) {
	if h.startup.Halted() {
		h.renderHalted(w, r)
		return
	}
	a := h.startup.App

	input, err := parseForm(w, r)
	if err != nil {
		h.render(w, r, http.StatusBadRequest, a.View(input, nil, err))
		return
	}

	prediction, err := a.Predict(r.Context(), input)
	if err != nil {
		h.render(w, r, statusFor(err), a.View(input, nil, err))
		return
	}
	h.render(w, r, http.StatusOK, a.View(input, &prediction, nil))
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.startup.Halted() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": string(app.StateHalted),
			"error":  apperr.Message(h.startup.Err),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.startup.Halted() {
		h.writeHaltedJSON(w)
		return
	}

	n := market.DefaultPreviewRows
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "n must be an integer"})
			return
		}
		n = v
	}

	table := h.startup.App.History(n)
	writeJSON(w, http.StatusOK, historyResponse{
		Columns: table.Columns,
		Rows:    table.Rows,
		Records: table.Records(),
	})
}

func (h *Handlers) handlePredictAPI(w http.ResponseWriter, r *http.Request) {
	if h.startup.Halted() {
		h.writeHaltedJSON(w)
		return
	}

	var input app.PriceInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	status, body := h.predictJSON(r, input)
	writeJSON(w, status, body)
}

func (h *Handlers) predictJSON(r *http.Request, input app.PriceInput) (int, interface{}) {
	prediction, err := h.startup.App.Predict(r.Context(), input)
	if err != nil {
		return statusFor(err), errorResponse{Error: apperr.Message(err), Kind: apperr.KindOf(err)}
	}
	return http.StatusOK, predictResponse{Value: prediction.Value, Display: prediction.Display}
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, v app.View) {
	var buf bytes.Buffer
	if err := app.Render(h.renderer, &buf, v); err != nil {
		h.logger.Error("render page", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (h *Handlers) renderHalted(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusServiceUnavailable, app.HaltedView(h.startup.Title, h.startup.Err))
}

func (h *Handlers) writeHaltedJSON(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{
		Error: apperr.Message(h.startup.Err),
		Kind:  apperr.KindOf(h.startup.Err),
	})
}

// parseForm reads the three prices. An empty field counts as 0, like an
// untouched number input.
func parseForm(w http.ResponseWriter, r *http.Request) (app.PriceInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return app.PriceInput{}, apperr.Wrap(apperr.KindValidation, "parse form", "", err, "Invalid form submission.")
	}

	var input app.PriceInput
	fields := []struct {
		name string
		dst  *float64
	}{
		{"open", &input.Open},
		{"high", &input.High},
		{"low", &input.Low},
	}
	var bad []string
	for _, f := range fields {
		raw := strings.TrimSpace(r.PostForm.Get(f.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			bad = append(bad, f.name)
			continue
		}
		*f.dst = v
	}
	if len(bad) > 0 {
		return input, apperr.New(apperr.KindValidation, "parse form", "Prices must be numbers: "+strings.Join(bad, ", "))
	}
	return input, nil
}

func statusFor(err error) int {
	if errors.Is(err, apperr.ErrValidation) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
