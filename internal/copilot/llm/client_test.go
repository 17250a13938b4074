package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"xpilot-copilot/internal/common/errors"
	apphttp "xpilot-copilot/internal/common/http"
	"xpilot-copilot/internal/common/logger"
	"xpilot-copilot/internal/copilot/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, timeouts Timeouts) *Client {
	return NewClient(apphttp.NewClient(5*time.Second), timeouts, logger.NewTestLogger(t))
}

func providerAt(base provider.Provider, url string) provider.Provider {
	base.EndpointURL = url
	return base
}

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-o", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Command"}}]}`))
	}))
	defer server.Close()

	c := newTestClient(t, DefaultTimeouts())
	body, err := c.Complete(context.Background(), providerAt(openAIProvider, server.URL), "hi", PurposeClassification)

	require.NoError(t, err)
	text, err := Extract(body, openAIProvider)
	require.NoError(t, err)
	assert.Equal(t, "Command", text)
}

func TestComplete_MissingCredentialSkipsNetwork(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	p := providerAt(openAIProvider, server.URL)
	p.Secret = ""

	_, err := newTestClient(t, DefaultTimeouts()).Complete(context.Background(), p, "hi", PurposeChat)

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeCredentialMissing))
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestComplete_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, DefaultTimeouts()).Complete(context.Background(), providerAt(anthropicProvider, server.URL), "hi", PurposeCommand)

	require.Error(t, err)
	stdErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeTransportFailure, stdErr.Code)
	assert.Equal(t, "Error from LLM provider: 401", stdErr.Message)
	assert.Contains(t, stdErr.Details, "bad key")
	assert.False(t, stdErr.Retryable)
}

func TestComplete_PurposeTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	timeouts := DefaultTimeouts()
	timeouts.Classification = 50 * time.Millisecond

	_, err := newTestClient(t, timeouts).Complete(context.Background(), providerAt(genericProvider, server.URL), "hi", PurposeClassification)

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTransportFailure))
}

func TestComplete_NoEndpoint(t *testing.T) {
	_, err := newTestClient(t, DefaultTimeouts()).Complete(context.Background(), genericProvider, "hi", PurposeChat)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTransportFailure))
}

func TestTimeouts_For(t *testing.T) {
	tt := Timeouts{Classification: 1, Chat: 2, Command: 3}
	assert.Equal(t, time.Duration(1), tt.For(PurposeClassification))
	assert.Equal(t, time.Duration(2), tt.For(PurposeChat))
	assert.Equal(t, time.Duration(3), tt.For(PurposeCommand))
}
