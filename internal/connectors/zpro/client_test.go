package zpro

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mackflow-bridge/internal/common/config"
	"mackflow-bridge/internal/common/logger"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	return NewClient(config.ZproConfig{
		BaseURL: baseURL,
		APIID:   "tenant-1",
		Token:   "secret-token",
		Timeout: 2000,
	}, logger.NewTestLogger(t))
}

func TestSendMessage(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.SendMessage(context.Background(), "5511999990000", "Olá! Qual seu nome? 🙂", "ticket-7")
	require.NoError(t, err)

	assert.Equal(t, "/v2/api/external/tenant-1", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "Olá! Qual seu nome? 🙂", gotBody["body"])
	assert.Equal(t, "5511999990000", gotBody["number"])
	assert.Equal(t, "ticket-7", gotBody["externalKey"])
	assert.Equal(t, false, gotBody["isClosed"])
}

func TestSendMessage_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.SendMessage(context.Background(), "5511999990000", "oi", "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSendMessage_Unreachable(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1")
	err := client.SendMessage(context.Background(), "5511999990000", "oi", "k")
	require.Error(t, err)
}

func TestListTickets(t *testing.T) {
	var gotPath, gotQuery string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	status, err := client.ListTickets(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "/v2/api/external/tenant-1/listTickets", gotPath)
	assert.Equal(t, "pageNumber=1&status=open", gotQuery)
}

func TestListTickets_PropagatesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	status, err := client.ListTickets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, status)
}
