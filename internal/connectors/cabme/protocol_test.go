package cabme

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, raw string) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &body))
	return body
}

func TestExtractProtocol(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"top level protocol", `{"protocol":"OS-123"}`, "OS-123"},
		{"localized field", `{"protocolo":"OS-456"}`, "OS-456"},
		{"id fallback", `{"id":"789"}`, "789"},
		{"requestId fallback", `{"requestId":"req-1"}`, "req-1"},
		{"bookingId fallback", `{"bookingId":"bk-1"}`, "bk-1"},
		{"numeric id stringified", `{"id":12345}`, "12345"},
		{"nested under data", `{"data":{"protocol":"OS-9"}}`, "OS-9"},
		{"nested under result", `{"result":{"id":42}}`, "42"},
		{"nested under order", `{"order":{"bookingId":"bk-2"}}`, "bk-2"},
		{"empty body", `{}`, ""},
		{"no candidates", `{"status":"ok","message":"created"}`, ""},
		{"empty string skipped", `{"protocol":"","id":"55"}`, "55"},
		{"non-string non-number ignored", `{"protocol":{"weird":true},"id":"7"}`, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractProtocol(decodeBody(t, tt.raw)))
		})
	}
}

func TestExtractProtocol_CandidateOrder(t *testing.T) {
	body := decodeBody(t, `{"id":"ignored","protocol":"OS-1"}`)
	assert.Equal(t, "OS-1", ExtractProtocol(body))
}

func TestExtractProtocol_TopLevelBeforeNested(t *testing.T) {
	body := decodeBody(t, `{"id":"top","data":{"protocol":"nested"}}`)
	assert.Equal(t, "top", ExtractProtocol(body))
}

func TestExtractProtocol_DataSearchedFirst(t *testing.T) {
	body := decodeBody(t, `{"result":{"protocol":"from-result"},"data":{"protocol":"from-data"}}`)
	assert.Equal(t, "from-data", ExtractProtocol(body))
}

func TestExtractProtocol_OneLevelOnly(t *testing.T) {
	body := decodeBody(t, `{"data":{"data":{"protocol":"too-deep"}}}`)
	assert.Equal(t, "", ExtractProtocol(body))
}
