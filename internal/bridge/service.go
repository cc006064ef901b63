// Package bridge coordinates one inbound message end to end: load the
// session, advance the conversation, persist it, then either relay the reply
// or run the dispatch protocol when the conversation is ready for an order.
package bridge

import (
	"context"
	"time"

	stderrors "mackflow-bridge/internal/common/errors"
	"mackflow-bridge/internal/common/logger"
	"mackflow-bridge/internal/common/metrics"
	"mackflow-bridge/internal/common/observability"
	"mackflow-bridge/internal/dispatch"
	"mackflow-bridge/internal/models"
	"mackflow-bridge/internal/session"
	"mackflow-bridge/internal/triage"
)

// Outcome is the result of handling one inbound message.
type Outcome struct {
	Reply    string
	Step     string
	Protocol string
	Dedup    bool
	Session  *models.ConversationSession
}

type Service struct {
	store  session.Store
	orch   *dispatch.Orchestrator
	obs    *observability.Observability
	logger logger.Logger
}

// NewService wires the coordinator. obs may be nil outside the full binary.
func NewService(store session.Store, orch *dispatch.Orchestrator, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{
		store:  store,
		orch:   orch,
		obs:    obs,
		logger: log,
	}
}

func (s *Service) record(ctx context.Context, start time.Time, status string) {
	if s.obs == nil {
		return
	}
	s.obs.RecordMessageHandled(ctx, status)
	s.obs.RecordMessageDuration(ctx, time.Since(start), status)
}

// advance loads or creates the session, applies the message, and persists
// the session back. The phone is captured once, from the first message that
// carries one.
func (s *Service) advance(ctx context.Context, key, message, phone string) (*models.ConversationSession, string, error) {
	sess, err := s.store.GetSession(ctx, key)
	if err != nil {
		return nil, "", stderrors.NewSessionStoreFailedError(err)
	}
	if sess == nil {
		sess = models.NewConversationSession()
	}
	if phone != "" && sess.Phone == "" {
		sess.Phone = phone
	}

	reply := triage.Advance(sess, message)
	metrics.MessagesReceived.WithLabelValues(sess.Step).Inc()

	if err := s.store.PutSession(ctx, key, sess); err != nil {
		// The reply is still valid; the conversation just loses memory.
		s.logger.Warn("session persist failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return sess, reply, nil
}

// HandleIncoming processes a channel webhook message and sends the outbound
// reply. When the session sits at the ready step with a funded status, the
// idempotent dispatch protocol decides the outbound message instead of the
// conversational reply.
func (s *Service) HandleIncoming(ctx context.Context, key, number, message string) (*Outcome, error) {
	start := time.Now()

	sess, reply, err := s.advance(ctx, key, message, number)
	if err != nil {
		s.record(ctx, start, "error")
		return nil, err
	}

	outcome := &Outcome{Reply: reply, Step: sess.Step, Session: sess}

	if sess.Step == models.StepReadyToOpenOrder && sess.FinancialStatus == models.FinancialFunded {
		// Once started, the dispatch side effect must survive a client
		// disconnect.
		result, err := s.orch.Execute(context.WithoutCancel(ctx), key, sess, number, key)
		if err != nil {
			s.record(ctx, start, "error")
			return nil, err
		}
		outcome.Protocol = result.Protocol
		outcome.Dedup = result.Dedup
		metrics.RepliesSent.WithLabelValues("dispatch").Inc()
		s.record(ctx, start, "dispatch")
		return outcome, nil
	}

	if err := s.orch.Relay(ctx, number, reply, key); err != nil {
		s.record(ctx, start, "error")
		return nil, err
	}
	metrics.RepliesSent.WithLabelValues("reply").Inc()
	s.record(ctx, start, "reply")
	return outcome, nil
}

// Triage advances the conversation without touching the outbound channel.
// Used by the direct integration endpoint.
func (s *Service) Triage(ctx context.Context, key, message, phone string) (*Outcome, error) {
	sess, reply, err := s.advance(ctx, key, message, phone)
	if err != nil {
		return nil, err
	}
	return &Outcome{Reply: reply, Step: sess.Step, Session: sess}, nil
}
