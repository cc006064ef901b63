package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"mackflow-bridge/internal/bridge"
	stderrors "mackflow-bridge/internal/common/errors"
	"mackflow-bridge/internal/common/logger"
	"mackflow-bridge/internal/models"
)

// Prober is a read-only connectivity check against an upstream, returning
// the upstream's HTTP status.
type Prober func(ctx context.Context) (int, error)

type Handler struct {
	svc        *bridge.Service
	zproProbe  Prober
	cabmeProbe Prober
	adminKey   string
	logger     logger.Logger
	errors     *stderrors.ErrorHandler
}

func NewHandler(svc *bridge.Service, zproProbe, cabmeProbe Prober, adminKey string, log logger.Logger) *Handler {
	return &Handler{
		svc:        svc,
		zproProbe:  zproProbe,
		cabmeProbe: cabmeProbe,
		adminKey:   adminKey,
		logger:     log,
		errors:     stderrors.NewErrorHandler(log),
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type incomingResponse struct {
	OK        bool   `json:"ok"`
	Step      string `json:"step"`
	Dedup     bool   `json:"dedup,omitempty"`
	Protocol  string `json:"protocol,omitempty"`
	RequestID string `json:"requestId"`
}

// HandleZproIncoming processes a channel webhook: normalize the payload,
// run the conversation, and reply on the channel.
func (h *Handler) HandleZproIncoming(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		h.errors.Respond(w, requestID, stderrors.NewInvalidPayloadError("body is not a JSON object"))
		return
	}

	incoming := ExtractIncoming(body)
	if incoming.Number == "" || incoming.Message == "" {
		h.errors.Respond(w, requestID, stderrors.NewMissingFieldsError("number and message are required"))
		return
	}

	// The external key correlates the whole conversation; a payload without
	// one gets a per-request key and therefore a throwaway session.
	key := incoming.ExternalKey
	if key == "" {
		key = requestID
	}

	outcome, err := h.svc.HandleIncoming(r.Context(), key, incoming.Number, incoming.Message)
	if err != nil {
		h.errors.Respond(w, requestID, err)
		return
	}

	writeJSON(w, http.StatusOK, incomingResponse{
		OK:        true,
		Step:      outcome.Step,
		Dedup:     outcome.Dedup,
		Protocol:  outcome.Protocol,
		RequestID: requestID,
	})
}

type triageRequest struct {
	SessionID   string `json:"sessionId"`
	Message     string `json:"message"`
	Number      string `json:"number"`
	ExternalKey string `json:"externalKey"`
}

type triageData struct {
	Name            string `json:"name,omitempty"`
	Plate           string `json:"plate,omitempty"`
	Location        string `json:"location,omitempty"`
	ServiceType     string `json:"serviceType,omitempty"`
	Phone           string `json:"phone,omitempty"`
	FinancialStatus string `json:"statusFinanceiro,omitempty"`
}

type triageResponse struct {
	SessionID string     `json:"sessionId"`
	Reply     string     `json:"reply"`
	Step      string     `json:"step"`
	Data      triageData `json:"data"`
}

// HandleTriage advances a conversation directly, without any outbound
// channel send. Intended for integrations that deliver replies themselves.
func (h *Handler) HandleTriage(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	var req triageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		h.errors.Respond(w, requestID, stderrors.NewInvalidPayloadError("message is required"))
		return
	}

	key := firstNonEmpty(strings.TrimSpace(req.ExternalKey), strings.TrimSpace(req.SessionID), requestID)

	outcome, err := h.svc.Triage(r.Context(), key, req.Message, req.Number)
	if err != nil {
		h.errors.Respond(w, requestID, err)
		return
	}

	writeJSON(w, http.StatusOK, triageResponse{
		SessionID: key,
		Reply:     outcome.Reply,
		Step:      outcome.Step,
		Data:      snapshotData(outcome.Session),
	})
}

func snapshotData(sess *models.ConversationSession) triageData {
	return triageData{
		Name:            sess.Name,
		Plate:           sess.Plate,
		Location:        sess.Location,
		ServiceType:     sess.ServiceType,
		Phone:           sess.Phone,
		FinancialStatus: sess.FinancialStatus,
	}
}

type probeResult struct {
	StatusCode *int  `json:"statusCode"`
	DurationMs int64 `json:"durationMs"`
}

func timedProbe(ctx context.Context, probe Prober) probeResult {
	start := time.Now()
	status, err := probe(ctx)
	result := probeResult{DurationMs: time.Since(start).Milliseconds()}
	if err == nil {
		result.StatusCode = &status
	}
	return result
}

type smokeResponse struct {
	Cabme probeResult `json:"cabme"`
	Zpro  probeResult `json:"zpro"`
}

// HandleSmoke fans out the two upstream probes in parallel and reports
// their status and latency. Gated by the admin key when one is configured.
func (h *Handler) HandleSmoke(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if h.adminKey != "" && r.Header.Get("x-admin-key") != h.adminKey {
		h.errors.Respond(w, requestID, stderrors.NewUnauthorizedError())
		return
	}

	var resp smokeResponse
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		resp.Cabme = timedProbe(r.Context(), h.cabmeProbe)
	}()
	go func() {
		defer wg.Done()
		resp.Zpro = timedProbe(r.Context(), h.zproProbe)
	}()
	wg.Wait()

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
