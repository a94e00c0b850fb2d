package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nextlevelbuilder/goclaw/internal/retry"
)

// HTTPBackend calls an OpenAI-compatible POST /embeddings endpoint. It
// backs config.MemoryConfig.EmbeddingProvider values like "openai" or
// "openrouter", or any self-hosted server speaking the same wire format.
type HTTPBackend struct {
	name    string
	apiKey  string
	apiBase string
	model   string
	dim     int
	client  *http.Client
	policy  retry.Policy
}

// NewHTTPBackend constructs an HTTPBackend. apiBase defaults to the
// canonical OpenAI endpoint when empty.
func NewHTTPBackend(name, apiKey, apiBase, model string, dim int) *HTTPBackend {
	if apiBase == "" {
		apiBase = "https://api.openai.com/v1"
	}
	if dim <= 0 {
		dim = Dim
	}
	return &HTTPBackend{
		name:    name,
		apiKey:  apiKey,
		apiBase: strings.TrimRight(apiBase, "/"),
		model:   model,
		dim:     dim,
		client:  &http.Client{Timeout: 30 * time.Second},
		policy:  retry.DefaultPolicy(),
	}
}

func (h *HTTPBackend) Name() string { return h.name }

func (h *HTTPBackend) EmbedOne(ctx context.Context, text string) (Vec, error) {
	vecs, err := h.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (h *HTTPBackend) EmbedMany(ctx context.Context, texts []string) ([]Vec, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	return retry.Do(ctx, h.policy, classifyHTTPError, nil, func() ([]Vec, error) {
		body, err := json.Marshal(embedRequest{Model: h.model, Input: texts})
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.apiBase+"/embeddings", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if h.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+h.apiKey)
		}

		resp, err := h.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 300 {
			return nil, &httpError{status: resp.StatusCode, body: string(respBody)}
		}

		var parsed embedResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return nil, fmt.Errorf("embedding: decode response: %w", err)
		}
		if len(parsed.Data) != len(texts) {
			return nil, fmt.Errorf("embedding: expected %d vectors, got %d", len(texts), len(parsed.Data))
		}

		out := make([]Vec, len(texts))
		for _, d := range parsed.Data {
			out[d.Index] = d.Embedding
		}
		return out, nil
	})
}

// httpError wraps a non-2xx embeddings-endpoint response.
type httpError struct {
	status int
	body   string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("embedding: http %d: %s", e.status, e.body)
}

func classifyHTTPError(err error) (bool, time.Duration) {
	he, ok := err.(*httpError)
	if !ok {
		return true, 0
	}
	return he.status == 429 || (he.status >= 500 && he.status < 600), 0
}
