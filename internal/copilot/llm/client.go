package llm

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"xpilot-copilot/internal/common/errors"
	apphttp "xpilot-copilot/internal/common/http"
	"xpilot-copilot/internal/common/logger"
	"xpilot-copilot/internal/common/metrics"
	"xpilot-copilot/internal/common/observability"
	"xpilot-copilot/internal/copilot/provider"

	"go.opentelemetry.io/otel/codes"
)

// Completer performs one provider call and returns the raw response body.
type Completer interface {
	Complete(ctx context.Context, p provider.Provider, prompt string, purpose Purpose) ([]byte, error)
}

// Timeouts are per-purpose deadlines applied on top of the caller context.
type Timeouts struct {
	Classification time.Duration
	Chat           time.Duration
	Command        time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Classification: 10 * time.Second,
		Chat:           60 * time.Second,
		Command:        60 * time.Second,
	}
}

func (t Timeouts) For(purpose Purpose) time.Duration {
	switch purpose {
	case PurposeClassification:
		return t.Classification
	case PurposeCommand:
		return t.Command
	default:
		return t.Chat
	}
}

// bodyLogLimit bounds provider bodies copied into error details.
const bodyLogLimit = 2048

type Client struct {
	http     *apphttp.Client
	timeouts Timeouts
	logger   logger.Logger
}

var _ Completer = (*Client)(nil)

func NewClient(httpClient *apphttp.Client, timeouts Timeouts, log logger.Logger) *Client {
	return &Client{
		http:     httpClient,
		timeouts: timeouts,
		logger:   log.With(map[string]interface{}{"component": "llm-client"}),
	}
}

// Complete checks the credential before any network I/O, then posts the built request.
func (c *Client) Complete(ctx context.Context, p provider.Provider, prompt string, purpose Purpose) ([]byte, error) {
	if err := RequireCredential(p); err != nil {
		return nil, err
	}
	if p.EndpointURL == "" {
		return nil, errors.NewTransportFailureError(p.Name, fmt.Errorf("endpoint URL not configured"))
	}

	body, headers, err := Build(prompt, p, purpose)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	if d := c.timeouts.For(purpose); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	ctx, span := observability.StartSpan(ctx, "llm.complete", map[string]string{
		"llm.provider": p.Name,
		"llm.family":   string(p.Family),
		"llm.model":    p.WireModel(),
		"llm.purpose":  string(purpose),
	})
	defer span.End()

	start := time.Now()
	resp, err := c.http.PostJSON(ctx, p.EndpointURL, body, headers)
	metrics.LLMRequestDuration.WithLabelValues(p.Name, string(purpose)).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.LLMRequests.WithLabelValues(p.Name, string(purpose), "transport_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		c.logger.Warn("LLM provider request failed", map[string]interface{}{
			"provider": p.Name,
			"purpose":  string(purpose),
			"error":    err.Error(),
		})
		return nil, errors.NewTransportFailureError(p.Name, err)
	}

	if !resp.OK() {
		metrics.LLMRequests.WithLabelValues(p.Name, string(purpose), strconv.Itoa(resp.StatusCode)).Inc()
		span.SetStatus(codes.Error, "provider status "+strconv.Itoa(resp.StatusCode))
		c.logger.Warn("LLM provider returned error status", map[string]interface{}{
			"provider": p.Name,
			"purpose":  string(purpose),
			"status":   resp.StatusCode,
		})
		return nil, errors.NewProviderStatusError(p.Name, resp.StatusCode, truncateRunes(string(resp.Body), bodyLogLimit))
	}

	metrics.LLMRequests.WithLabelValues(p.Name, string(purpose), "ok").Inc()
	return resp.Body, nil
}
