package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	invoicedomain "github.com/railzwaylabs/tably/internal/invoice/domain"
	"github.com/railzwaylabs/tably/pkg/retry"
)

var (
	errGeneratorNotConfigured = errors.New("generator_not_configured")
	errGeneratorRequest       = errors.New("generator_request_failed")
	errGeneratorRejected      = errors.New("generator_request_rejected")
	errGeneratorResponse      = errors.New("generator_response_invalid")
)

// remoteGenerator calls the external invoice-generation service. The call
// is hard-capped by the client timeout and retried on transient failure;
// any terminal error here is absorbed by the fallback wrapper.
type remoteGenerator struct {
	baseURL    string
	apiKey     string
	maxRetries int
	client     *http.Client
}

func newRemoteGenerator(baseURL, apiKey string, timeout time.Duration, maxRetries int) invoicedomain.Generator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &remoteGenerator{
		baseURL:    baseURL,
		apiKey:     apiKey,
		maxRetries: maxRetries,
		client:     &http.Client{Timeout: timeout},
	}
}

func (g *remoteGenerator) Name() string { return "remote" }

func (g *remoteGenerator) Generate(ctx context.Context, req invoicedomain.GenerateRequest) (*invoicedomain.GeneratedInvoice, error) {
	if g.baseURL == "" {
		return nil, errGeneratorNotConfigured
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var out invoicedomain.GeneratedInvoice
	err = retry.Do(ctx, g.maxRetries+1, 500*time.Millisecond, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/invoices/generate", bytes.NewReader(payload))
		if err != nil {
			return retry.Permanent(err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if g.apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
		}

		resp, err := g.client.Do(httpReq)
		if err != nil {
			return errGeneratorRequest
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return errGeneratorRequest
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return retry.Permanent(errGeneratorRejected)
		}

		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return retry.Permanent(errGeneratorResponse)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(out.Lines) == 0 || out.GrandTotal.IsNegative() {
		return nil, errGeneratorResponse
	}
	return &out, nil
}
