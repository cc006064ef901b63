package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "mackflow-bridge/internal/common/errors"
	"mackflow-bridge/internal/common/logger"
	"mackflow-bridge/internal/connectors/cabme"
	"mackflow-bridge/internal/dispatch"
	"mackflow-bridge/internal/models"
	"mackflow-bridge/internal/session"
	"mackflow-bridge/internal/triage"
)

type stubChannel struct {
	sent    []string
	failAll bool
}

func (c *stubChannel) SendMessage(ctx context.Context, number, body, externalKey string) error {
	if c.failAll {
		return errors.New("channel down")
	}
	c.sent = append(c.sent, body)
	return nil
}

type stubOrders struct {
	calls int
	last  *models.ConversationSession
	err   error
}

func (o *stubOrders) CreateOrder(ctx context.Context, sess *models.ConversationSession) (*cabme.OrderResult, error) {
	o.calls++
	o.last = sess
	if o.err != nil {
		return nil, o.err
	}
	return &cabme.OrderResult{Protocol: "OS-777"}, nil
}

func newService(t *testing.T) (*Service, *stubChannel, *stubOrders) {
	store := session.NewMemoryStore(session.TTLs{Session: time.Hour, Dispatch: time.Hour})
	channel := &stubChannel{}
	orders := &stubOrders{}
	log := logger.NewTestLogger(t)
	orch := dispatch.NewOrchestrator(store, channel, orders, log)
	return NewService(store, orch, nil, log), channel, orders
}

func runConversation(t *testing.T, svc *Service, key, number string, messages ...string) *Outcome {
	var outcome *Outcome
	var err error
	for _, msg := range messages {
		outcome, err = svc.HandleIncoming(context.Background(), key, number, msg)
		require.NoError(t, err)
	}
	return outcome
}

func TestHandleIncoming_FullConversationOpensOrder(t *testing.T) {
	svc, channel, orders := newService(t)

	outcome := runConversation(t, svc, "ticket-1", "5511999990000",
		"Maria", "abc1234", "Centro, São Paulo", "pneu furou", "1")

	assert.Equal(t, models.StepReadyToOpenOrder, outcome.Step)
	assert.Equal(t, "OS-777", outcome.Protocol)
	assert.False(t, outcome.Dedup)

	assert.Equal(t, 1, orders.calls)
	require.NotNil(t, orders.last)
	assert.Equal(t, "Maria", orders.last.Name)
	assert.Equal(t, "ABC1234", orders.last.Plate)
	assert.Equal(t, "Pneu", orders.last.ServiceType)
	assert.Equal(t, "5511999990000", orders.last.Phone, "phone captured from channel")

	// Four conversational replies plus the protocol confirmation.
	require.Len(t, channel.sent, 5)
	assert.Contains(t, channel.sent[4], "OS-777")
}

func TestHandleIncoming_RedeliveryDeduplicates(t *testing.T) {
	svc, channel, orders := newService(t)

	runConversation(t, svc, "ticket-1", "5511999990000",
		"Maria", "abc1234", "Centro", "guincho", "1")

	// Duplicate delivery of the funding answer.
	outcome, err := svc.HandleIncoming(context.Background(), "ticket-1", "5511999990000", "1")
	require.NoError(t, err)
	assert.True(t, outcome.Dedup)
	assert.Equal(t, "OS-777", outcome.Protocol)
	assert.Equal(t, 1, orders.calls, "redelivery must not create a second order")
	assert.Contains(t, channel.sent[len(channel.sent)-1], "OS-777")
}

func TestHandleIncoming_NotFundedRelaysRefusal(t *testing.T) {
	svc, channel, orders := newService(t)

	outcome := runConversation(t, svc, "ticket-1", "5511999990000",
		"João", "xyz9a88", "Campinas", "guincho", "2")

	assert.Equal(t, models.StepDone, outcome.Step)
	assert.Empty(t, outcome.Protocol)
	assert.Equal(t, 0, orders.calls, "no dispatch for a not-funded conversation")

	last := channel.sent[len(channel.sent)-1]
	assert.Equal(t, outcome.Reply, last, "refusal is relayed verbatim")
	assert.Contains(t, last, "[STATUS_FINANCEIRO=INADIMPLENTE]")
}

func TestHandleIncoming_EmergencyDoesNotAdvance(t *testing.T) {
	svc, channel, _ := newService(t)

	runConversation(t, svc, "ticket-1", "5511999990000", "Maria")

	outcome, err := svc.HandleIncoming(context.Background(), "ticket-1", "5511999990000", "sofri um acidente")
	require.NoError(t, err)
	assert.Equal(t, models.StepAskPlate, outcome.Step)
	assert.Equal(t, triage.EmergencyReply, channel.sent[len(channel.sent)-1])

	// The conversation resumes where it left off.
	outcome, err = svc.HandleIncoming(context.Background(), "ticket-1", "5511999990000", "abc1234")
	require.NoError(t, err)
	assert.Equal(t, models.StepAskLocation, outcome.Step)
	assert.Equal(t, "ABC1234", outcome.Session.Plate)
}

func TestHandleIncoming_DispatchFailureSendsFallback(t *testing.T) {
	svc, channel, orders := newService(t)
	orders.err = errors.New("upstream 500")

	var err error
	for _, msg := range []string{"Maria", "abc1234", "Centro", "guincho", "1"} {
		_, err = svc.HandleIncoming(context.Background(), "ticket-1", "5511999990000", msg)
	}
	require.Error(t, err)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeDispatchFailed, stdErr.Code)
	assert.Contains(t, channel.sent[len(channel.sent)-1], "atendente")
}

func TestHandleIncoming_ChannelFailureSurfaces(t *testing.T) {
	svc, channel, _ := newService(t)
	channel.failAll = true

	_, err := svc.HandleIncoming(context.Background(), "ticket-1", "5511999990000", "Maria")
	require.Error(t, err)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeChannelSendFailed, stdErr.Code)
}

func TestTriage_NoOutboundSends(t *testing.T) {
	svc, channel, orders := newService(t)

	outcome, err := svc.Triage(context.Background(), "session-1", "Maria", "")
	require.NoError(t, err)
	assert.Equal(t, models.StepAskPlate, outcome.Step)
	assert.Contains(t, outcome.Reply, "Obrigado, Maria!")
	assert.Empty(t, channel.sent)

	// Even the funded terminal answer only advances state here.
	for _, msg := range []string{"abc1234", "Centro", "guincho", "1"} {
		outcome, err = svc.Triage(context.Background(), "session-1", msg, "")
		require.NoError(t, err)
	}
	assert.Equal(t, models.StepReadyToOpenOrder, outcome.Step)
	assert.Empty(t, channel.sent)
	assert.Equal(t, 0, orders.calls)
}

func TestHandleIncoming_PhoneCapturedOnce(t *testing.T) {
	svc, _, _ := newService(t)

	outcome, err := svc.HandleIncoming(context.Background(), "ticket-1", "5511999990000", "Maria")
	require.NoError(t, err)
	assert.Equal(t, "5511999990000", outcome.Session.Phone)

	outcome, err = svc.HandleIncoming(context.Background(), "ticket-1", "5511888880000", "abc1234")
	require.NoError(t, err)
	assert.Equal(t, "5511999990000", outcome.Session.Phone, "first phone wins")
}
