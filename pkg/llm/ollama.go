package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// DefaultOllamaURL is the endpoint of a locally running Ollama server.
	DefaultOllamaURL = "http://localhost:11434"

	// DefaultModel is used when no model is configured explicitly.
	DefaultModel = "llama3.1:8b"

	generatePath = "/api/generate"
)

// NewOllama returns a client that generates text via the Ollama API at the
// given endpoint. The timeout applies to every request issued through the
// client; typical inference latency calls for something in the 120s-300s
// range. No network I/O happens here.
func NewOllama(log *zap.Logger, endpoint, model string, timeout time.Duration) (Client, error) {
	if endpoint == "" {
		return nil, errors.New("ollama endpoint must not be empty")
	}
	if model == "" {
		return nil, errors.New("model must not be empty")
	}
	if timeout <= 0 {
		return nil, errors.Errorf("timeout must be positive, got %s", timeout)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ollamaClient{
		log:      log,
		endpoint: endpoint,
		model:    model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type ollamaClient struct {
	log        *zap.Logger
	endpoint   string
	model      string
	httpClient *http.Client
}

// Generate sends a non-streaming generate request and returns the full
// response text. The underlying http.Client is safe for concurrent reuse, so
// Generate may be called from multiple goroutines sharing one client.
func (o *ollamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", &GenerationError{Message: "failed to marshal generate request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint+generatePath, bytes.NewReader(reqBody))
	if err != nil {
		return "", &GenerationError{Message: "failed to init generate request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	o.log.Info("sending generate request", zap.Int("promptChars", len([]rune(prompt))))

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &GenerationError{Message: fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body))}
	}

	var out GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &GenerationError{Message: "failed to unmarshal generate response", Cause: err}
	}
	if !out.Done {
		return "", &GenerationError{Message: "incomplete response"}
	}

	o.log.Info("generate request completed", zap.Int("responseChars", len([]rune(out.Response))))

	return out.Response, nil
}
