package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGatewayConfig(url string) GatewayConfig {
	cfg := DefaultGatewayConfig(url)
	cfg.Timeout = 2 * time.Second
	cfg.FailureThreshold = 3
	return cfg
}

func TestWebhookGateway_DeliversCard(t *testing.T) {
	var gotAuth atomic.Value
	var gotCard noticeCard

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotCard))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := NewWebhookGateway(testGatewayConfig(srv.URL), StaticTokenProvider("tok-123"), nil)

	result := g.NotifyAssignment(context.Background(), AssignmentNotice{
		AssignmentID: 1,
		PersonID:     9,
		RecipientIM:  "im-9",
		Title:        "New assignment from Dana: Audit",
		Summary:      "check the books",
		DetailURL:    "https://x/assignments/1",
	})

	assert.True(t, result.Sent)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Empty(t, result.Error)
	assert.Equal(t, "Bearer tok-123", gotAuth.Load())
	assert.Equal(t, "im-9", gotCard.RecipientIM)
	assert.Equal(t, "check the books", gotCard.Summary)
}

func TestWebhookGateway_ServerErrorIsRecordedNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewWebhookGateway(testGatewayConfig(srv.URL), StaticTokenProvider("tok"), nil)

	result := g.NotifyAssignment(context.Background(), AssignmentNotice{AssignmentID: 2})
	assert.False(t, result.Sent)
	assert.Equal(t, http.StatusBadGateway, result.StatusCode)
	assert.Contains(t, result.Error, "502")
}

func TestWebhookGateway_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewWebhookGateway(testGatewayConfig(srv.URL), StaticTokenProvider("tok"), nil)

	for range 3 {
		result := g.NotifyAssignment(context.Background(), AssignmentNotice{AssignmentID: 3})
		assert.False(t, result.Sent)
	}
	require.Equal(t, int32(3), hits.Load())

	// Breaker is open now; the endpoint must not be hit again.
	result := g.NotifyAssignment(context.Background(), AssignmentNotice{AssignmentID: 3})
	assert.False(t, result.Sent)
	assert.Equal(t, int32(3), hits.Load())
}

func TestWebhookGateway_TokenFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("endpoint must not be reached without a token")
	}))
	defer srv.Close()

	g := NewWebhookGateway(testGatewayConfig(srv.URL), failingTokens{}, nil)

	result := g.NotifyAssignment(context.Background(), AssignmentNotice{AssignmentID: 4})
	assert.False(t, result.Sent)
	assert.Contains(t, result.Error, "acquire token")
}

type failingTokens struct{}

func (failingTokens) Token(ctx context.Context) (string, error) {
	return "", assert.AnError
}
