// Package dispatch implements the idempotent order-creation protocol: at most
// one order per conversation key while the dispatch record lives, with the
// record written before the confirmation is sent.
package dispatch

import (
	"context"
	"fmt"

	stderrors "mackflow-bridge/internal/common/errors"
	"mackflow-bridge/internal/common/logger"
	"mackflow-bridge/internal/common/metrics"
	"mackflow-bridge/internal/connectors/cabme"
	"mackflow-bridge/internal/models"
	"mackflow-bridge/internal/session"
)

// Channel sends a message back to the customer on the chat channel.
type Channel interface {
	SendMessage(ctx context.Context, number, body, externalKey string) error
}

// OrderCreator opens a service order downstream.
type OrderCreator interface {
	CreateOrder(ctx context.Context, sess *models.ConversationSession) (*cabme.OrderResult, error)
}

const fallbackMessage = "Não consegui abrir a OS agora. Vou te direcionar para um atendente. 🙏"

func successMessage(protocol string) string {
	return fmt.Sprintf("OS aberta com sucesso! Protocolo: %s ✅", protocol)
}

// Result reports what the orchestrator did for one trigger.
type Result struct {
	Protocol string
	OrderID  string
	Dedup    bool
}

type Orchestrator struct {
	store   session.Store
	channel Channel
	orders  OrderCreator
	logger  logger.Logger
}

func NewOrchestrator(store session.Store, channel Channel, orders OrderCreator, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		store:   store,
		channel: channel,
		orders:  orders,
		logger:  log,
	}
}

// Execute runs the create-or-reuse protocol for a funded conversation that
// reached the ready step. A cached dispatch record resends its protocol
// without touching the order API. The check-then-create-then-write sequence
// has a race window under concurrent duplicate delivery; dedup is
// best-effort, never worse than one duplicate per genuine race.
func (o *Orchestrator) Execute(ctx context.Context, key string, sess *models.ConversationSession, number, externalKey string) (*Result, error) {
	rec, err := o.store.GetDispatch(ctx, key)
	if err != nil {
		// Degrade to a miss rather than fail the dispatch.
		o.logger.Warn("dispatch record lookup failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		metrics.DispatchFailures.WithLabelValues("store").Inc()
	}

	if rec != nil {
		metrics.DispatchDeduped.Inc()
		o.logger.Info("dispatch deduplicated", map[string]interface{}{
			"key":      key,
			"protocol": rec.Protocol,
		})
		if err := o.channel.SendMessage(ctx, number, successMessage(rec.Protocol), externalKey); err != nil {
			metrics.DispatchFailures.WithLabelValues("channel").Inc()
			return nil, stderrors.NewChannelSendFailedError(err)
		}
		return &Result{Protocol: rec.Protocol, OrderID: rec.OrderID, Dedup: true}, nil
	}

	order, err := o.orders.CreateOrder(ctx, sess)
	if err != nil {
		metrics.DispatchFailures.WithLabelValues("create").Inc()
		o.logger.Error("order creation failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		// Best effort: the customer still gets a polite fallback.
		if sendErr := o.channel.SendMessage(ctx, number, fallbackMessage, externalKey); sendErr != nil {
			o.logger.Warn("fallback message send failed", map[string]interface{}{
				"key":   key,
				"error": sendErr.Error(),
			})
		}
		return nil, stderrors.NewDispatchFailedError(err)
	}

	// Write before notify, so a duplicate trigger arriving right after
	// creation finds the record instead of racing past an empty cache.
	newRec := &models.DispatchRecord{Protocol: order.Protocol, OrderID: order.OrderID}
	if err := o.store.PutDispatch(ctx, key, newRec); err != nil {
		o.logger.Warn("dispatch record write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		metrics.DispatchFailures.WithLabelValues("store").Inc()
	}

	metrics.OrdersCreated.Inc()
	o.logger.Info("order created", map[string]interface{}{
		"key":      key,
		"protocol": order.Protocol,
	})

	if err := o.channel.SendMessage(ctx, number, successMessage(order.Protocol), externalKey); err != nil {
		metrics.DispatchFailures.WithLabelValues("channel").Inc()
		return nil, stderrors.NewChannelSendFailedError(err)
	}

	return &Result{Protocol: order.Protocol, OrderID: order.OrderID}, nil
}

// Relay forwards a conversational reply to the channel without any dispatch
// side effect. Used for non-terminal replies and the not-funded refusal,
// which is relayed verbatim.
func (o *Orchestrator) Relay(ctx context.Context, number, body, externalKey string) error {
	if err := o.channel.SendMessage(ctx, number, body, externalKey); err != nil {
		metrics.DispatchFailures.WithLabelValues("channel").Inc()
		return stderrors.NewChannelSendFailedError(err)
	}
	return nil
}
